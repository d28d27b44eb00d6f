package reflect

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pastlight/recollect/internal/decay"
	"github.com/pastlight/recollect/internal/domain/memory"
	"github.com/pastlight/recollect/internal/domain/search/request"
	"github.com/pastlight/recollect/internal/logger"
	"github.com/pastlight/recollect/internal/metrics"
)

// Overfetch factors. Plain mode filters at the store, so a modest margin
// covers the global merge. Decay mode must not threshold before adjustment,
// so it pulls a deeper unfiltered pool per collection.
const (
	plainOverfetch = 1.5
	decayOverfetch = 3
)

// fanOut issues one query per visible collection concurrently. A branch
// failure or timeout is absorbed as an empty list for that collection; the
// aggregator only runs after every branch has settled.
type fanOut struct {
	repo    Repository
	scorer  decay.Scorer
	timeout time.Duration
	now     func() time.Time
}

func (f *fanOut) search(
	ctx context.Context,
	visible []memory.Collection,
	vector []float32,
	req *request.Request,
	useDecay bool,
) [][]memory.Hit {
	return scatter(ctx, visible, f.timeout, func(ctx context.Context, col memory.Collection) ([]memory.Hit, error) {
		if useDecay {
			return f.queryDecay(ctx, col.Name, vector, req)
		}
		return f.queryPlain(ctx, col.Name, vector, req)
	})
}

// queryPlain retrieves thresholded candidates scored by raw similarity.
func (f *fanOut) queryPlain(
	ctx context.Context, collection string, vector []float32, req *request.Request,
) ([]memory.Hit, error) {
	k := int(math.Ceil(float64(req.Limit()) * plainOverfetch))
	minScore := req.MinScore()
	return f.repo.SearchPoints(ctx, collection, vector, k, &minScore)
}

// queryDecay retrieves unthresholded candidates, adjusts every one for
// recency, and only then filters, sorts, and truncates. Thresholding before
// decay would discard old-but-relevant points that adjustment promotes, and
// keep barely-similar recent ones on recency alone.
func (f *fanOut) queryDecay(
	ctx context.Context, collection string, vector []float32, req *request.Request,
) ([]memory.Hit, error) {
	hits, err := f.repo.SearchPoints(ctx, collection, vector, req.Limit()*decayOverfetch, nil)
	if err != nil {
		return nil, err
	}

	now := f.now()
	for i := range hits {
		hits[i].Score = f.scorer.Adjust(hits[i].Score, hits[i].Payload.Timestamp, now)
	}

	kept := hits[:0]
	for _, h := range hits {
		if h.Score >= req.MinScore() {
			kept = append(kept, h)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	if len(kept) > req.Limit() {
		kept = kept[:req.Limit()]
	}
	return kept, nil
}

// scatter runs fn once per collection concurrently, each branch under its
// own deadline, and gathers results by index so merge order stays stable.
// Branch errors are logged and counted, never propagated: partial results
// beat total failure.
func scatter(
	ctx context.Context,
	visible []memory.Collection,
	timeout time.Duration,
	fn func(ctx context.Context, col memory.Collection) ([]memory.Hit, error),
) [][]memory.Hit {
	lists := make([][]memory.Hit, len(visible))

	g := new(errgroup.Group)
	for i, col := range visible {
		g.Go(func() error {
			branchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			hits, err := fn(branchCtx, col)
			if err != nil {
				status := "error"
				if errors.Is(err, context.DeadlineExceeded) {
					status = "timeout"
				}
				metrics.CollectionQueriesTotal.WithLabelValues(status).Inc()
				logger.FromContext(ctx).Warn("collection query failed",
					zap.String("collection", col.Name),
					zap.Error(err),
				)
				return nil
			}

			metrics.CollectionQueriesTotal.WithLabelValues("ok").Inc()
			logger.FromContext(ctx).Debug("collection query complete",
				zap.String("collection", col.Name),
				zap.Int("hits", len(hits)),
			)
			lists[i] = hits
			return nil
		})
	}
	_ = g.Wait() // branches never return errors

	return lists
}
