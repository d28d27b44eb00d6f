package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/pastlight/recollect/internal/domain/search/result"
)

// renderResults produces the text block shown to the client. The
// structured output carries the same data; this rendering is what a
// human, or a model reading tool output, actually consumes.
func renderResults(results []result.Result, degraded bool) string {
	if len(results) == 0 {
		msg := "No relevant past conversations found. Try a broader query or a lower min_score."
		if degraded {
			msg += "\n(Semantic search is unavailable; only exact keyword matches were considered.)"
		}
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant %s:\n", len(results), pluralize("memory", "memories", len(results)))

	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. [%.3f] %s | %s | project: %s\n",
			i+1,
			r.Score(),
			r.Timestamp().Format(time.DateOnly),
			r.Role(),
			r.Project(),
		)
		b.WriteString(indent(r.Excerpt(), "   "))
		b.WriteString("\n")
		if cid := r.ConversationID(); cid != "" {
			fmt.Fprintf(&b, "   conversation: %s\n", cid)
		}
	}

	if degraded {
		b.WriteString("\n(Semantic search is unavailable; results come from keyword matching.)\n")
	}
	return b.String()
}

// renderStored confirms a write.
func renderStored(id string, tags []string) string {
	if len(tags) == 0 {
		return fmt.Sprintf("Reflection stored (id %s).", id)
	}
	return fmt.Sprintf("Reflection stored (id %s, tags: %s).", id, strings.Join(tags, ", "))
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func pluralize(one, many string, n int) string {
	if n == 1 {
		return one
	}
	return many
}
