package request

import (
	"fmt"

	"github.com/pastlight/recollect/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 5
	MaxLimit       = 100
	// DefaultMinScore is the similarity threshold applied when the caller
	// does not set one.
	DefaultMinScore = 0.7
)

// Defaults carries the process-wide fallbacks from configuration, applied
// when a request leaves a field unset.
type Defaults struct {
	Limit        int
	MinScore     float64
	CrossProject bool
}

// Request is a validated search request. All violations surface as
// domain.ErrInvalidRequest before any store access.
type Request struct {
	query        string
	limit        int
	project      string
	crossProject bool
	minScore     float64
	useDecay     *bool
}

// New validates and normalizes search parameters.
// limit 0 means unset and takes the default; a negative limit is rejected.
// minScore nil means unset and takes the default; out of [0,1] is rejected.
// useDecay nil defers to the process-wide decay setting.
func New(
	query string,
	limit int,
	project string,
	crossProject bool,
	minScore *float64,
	useDecay *bool,
	d Defaults,
) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidRequest, limit)
	}
	if limit == 0 {
		limit = d.Limit
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	// A request can opt into cross-project on top of the config default,
	// never revoke it.
	crossProject = crossProject || d.CrossProject

	score := d.MinScore
	if minScore != nil {
		score = *minScore
	}
	if score < 0 || score > 1 {
		return Request{}, fmt.Errorf("%w: min_score must be between 0 and 1, got %g", domain.ErrInvalidRequest, score)
	}

	return Request{
		query:        query,
		limit:        limit,
		project:      project,
		crossProject: crossProject,
		minScore:     score,
		useDecay:     useDecay,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Project returns the explicit project filter, empty when unset.
func (r *Request) Project() string { return r.project }

// CrossProject reports whether the caller opted into other projects' data.
func (r *Request) CrossProject() bool { return r.crossProject }

// MinScore returns the minimum score threshold.
func (r *Request) MinScore() float64 { return r.minScore }

// DecayEnabled resolves the per-request decay override against the
// process-wide default.
func (r *Request) DecayEnabled(processDefault bool) bool {
	if r.useDecay != nil {
		return *r.useDecay
	}
	return processDefault
}
