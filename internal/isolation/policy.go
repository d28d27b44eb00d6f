// Package isolation decides which collections a search may see. It is a
// pure filter: no I/O, no mutation.
package isolation

import (
	"github.com/pastlight/recollect/internal/domain/memory"
	"github.com/pastlight/recollect/internal/domain/search/request"
)

// Mode is the project-visibility policy.
type Mode string

// Isolation modes.
const (
	// Isolated restricts search to the current project's collections.
	Isolated Mode = "isolated"
	// Shared exposes all collections regardless of project.
	Shared Mode = "shared"
	// Hybrid always exposes the current project; other projects only when
	// the request opts in via crossProject.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Isolated || m == Shared || m == Hybrid
}

// Policy narrows candidate collections per request.
type Policy struct {
	mode    Mode
	project string
}

// New creates a policy for the current project.
func New(mode Mode, currentProject string) Policy {
	return Policy{mode: mode, project: currentProject}
}

// Visible returns the subset of collections the request may search.
func (p Policy) Visible(all []memory.Collection, req *request.Request) []memory.Collection {
	visible := make([]memory.Collection, 0, len(all))
	for _, c := range all {
		if p.allows(c, req) {
			visible = append(visible, c)
		}
	}
	return visible
}

func (p Policy) allows(c memory.Collection, req *request.Request) bool {
	// An explicit project filter narrows to exactly that project in every
	// mode. Isolated mode answers a foreign-project request with an empty
	// set rather than an error.
	if target := req.Project(); target != "" {
		if c.Project != target {
			return false
		}
		return p.mode != Isolated || target == p.project
	}

	switch p.mode {
	case Isolated:
		return c.Project == p.project
	case Shared:
		return true
	case Hybrid:
		return c.Project == p.project || req.CrossProject()
	default:
		return false
	}
}
