package reflect

import (
	"sort"
	"time"

	"github.com/pastlight/recollect/internal/decay"
	"github.com/pastlight/recollect/internal/domain/memory"
	"github.com/pastlight/recollect/internal/domain/search/result"
)

// merge flattens per-collection lists in collection order, stable-sorts by
// score descending, and truncates to limit. No cross-collection dedup: point
// ids are only unique within a collection, so equal ids from different
// collections are distinct results told apart by their source collection.
func merge(
	visible []memory.Collection,
	lists [][]memory.Hit,
	limit int,
	now time.Time,
) []result.Result {
	var total int
	for _, hits := range lists {
		total += len(hits)
	}

	all := make([]result.Result, 0, total)
	for i, hits := range lists {
		for _, h := range hits {
			all = append(all, toResult(h, visible[i].Project, now))
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score() > all[j].Score() })

	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// toResult renders a hit, applying fallbacks for absent payload fields:
// role -> "unknown", timestamp -> now, project -> explicit payload field
// first, then the label derived from the collection name.
func toResult(h memory.Hit, derivedProject string, now time.Time) result.Result {
	role := h.Payload.Role
	if role == "" {
		role = result.UnknownRole
	}

	ts := now
	if parsed, ok := decay.ParseTimestamp(h.Payload.Timestamp); ok {
		ts = parsed
	}

	project := h.Payload.Project
	if project == "" {
		project = derivedProject
	}

	return result.New(h.ID, h.Score, h.Payload.Text, role, ts, project, h.Payload.ConversationID, h.Collection)
}
