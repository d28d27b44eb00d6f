package reflect

import (
	"context"
	"strings"
	"time"

	"github.com/pastlight/recollect/internal/domain/memory"
)

// Lexical fallback parameters. The placeholder score marks matches that
// carry no similarity signal; the page bound keeps full-collection scans off
// the table.
const (
	lexicalScore = 0.5
	scrollPage   = 100
)

// lexicalSearcher is the degraded-mode substitute when no embedding
// capability exists: a case-insensitive presence test over a bounded page
// per collection. OR semantics across query tokens, trading precision for
// recall. Matches keep store scan order; there is nothing to rank by.
type lexicalSearcher struct {
	repo    Repository
	timeout time.Duration
}

func (l *lexicalSearcher) search(
	ctx context.Context, visible []memory.Collection, query string,
) [][]memory.Hit {
	tokens := tokenize(query)

	return scatter(ctx, visible, l.timeout, func(ctx context.Context, col memory.Collection) ([]memory.Hit, error) {
		page, err := l.repo.ScrollPoints(ctx, col.Name, scrollPage)
		if err != nil {
			return nil, err
		}

		var matched []memory.Hit
		for _, h := range page {
			if matchesAny(h.Payload.Text, tokens) {
				h.Score = lexicalScore
				matched = append(matched, h)
			}
		}
		return matched, nil
	})
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	return fields
}

func matchesAny(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
