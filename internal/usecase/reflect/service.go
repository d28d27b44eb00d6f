// Package reflect implements the decayed multi-collection retrieval engine:
// embed (or degrade), enumerate collections, narrow by isolation policy,
// fan out concurrently, then merge, sort, and render.
package reflect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pastlight/recollect/internal/decay"
	"github.com/pastlight/recollect/internal/domain"
	"github.com/pastlight/recollect/internal/domain/memory"
	"github.com/pastlight/recollect/internal/domain/search/request"
	"github.com/pastlight/recollect/internal/domain/search/result"
	"github.com/pastlight/recollect/internal/isolation"
	"github.com/pastlight/recollect/internal/logger"
	"github.com/pastlight/recollect/internal/metrics"
)

// DefaultCollectionTimeout bounds each fan-out branch so one unresponsive
// collection cannot stall the whole request.
const DefaultCollectionTimeout = 5 * time.Second

// Service executes reflection searches.
type Service struct {
	registry CollectionLister
	repo     Repository
	embed    domain.Embedder // nil -> degraded lexical mode
	policy   isolation.Policy
	decayCfg decay.Config
	fan      fanOut
	lexical  lexicalSearcher
	now      func() time.Time
}

// New creates the retrieval engine. embed may be nil, which pins the engine
// to degraded lexical mode for every request.
func New(
	registry CollectionLister,
	repo Repository,
	embed domain.Embedder,
	policy isolation.Policy,
	decayCfg decay.Config,
) *Service {
	s := &Service{
		registry: registry,
		repo:     repo,
		embed:    embed,
		policy:   policy,
		decayCfg: decayCfg,
		now:      time.Now,
	}
	s.fan = fanOut{repo: repo, scorer: decay.NewScorer(decayCfg), timeout: DefaultCollectionTimeout, now: s.clock}
	s.lexical = lexicalSearcher{repo: repo, timeout: DefaultCollectionTimeout}
	return s
}

// WithCollectionTimeout overrides the per-collection deadline.
func (s *Service) WithCollectionTimeout(d time.Duration) *Service {
	if d > 0 {
		s.fan.timeout = d
		s.lexical.timeout = d
	}
	return s
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) clock() time.Time { return s.now() }

// Degraded reports whether the engine runs without an embedding capability.
func (s *Service) Degraded() bool { return s.embed == nil }

// Search executes one reflection search. Per-collection failures are
// absorbed; an embedding failure falls over to lexical matching; a registry
// failure yields an empty-but-successful result set. Only a malformed
// request surfaces as an error, and request validation happens before this
// call, so Search itself never fails.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	start := s.now()
	log := logger.FromContext(ctx).With(zap.String("request_id", uuid.NewString()))
	ctx = logger.ContextWithLogger(ctx, log)

	log.Info("reflection search started",
		zap.Int("limit", req.Limit()),
		zap.Float64("min_score", req.MinScore()),
		zap.Bool("cross_project", req.CrossProject()),
	)

	visible := s.visibleCollections(ctx, req, log)
	if len(visible) == 0 {
		return []result.Result{}, nil
	}

	mode, lists := s.dispatch(ctx, visible, req, log)

	merged := merge(visible, lists, req.Limit(), s.now())

	metrics.SearchesTotal.WithLabelValues(mode, "ok").Inc()
	metrics.SearchDuration.WithLabelValues(mode).Observe(s.now().Sub(start).Seconds())
	metrics.ResultsReturned.Observe(float64(len(merged)))

	log.Info("aggregation complete",
		zap.String("mode", mode),
		zap.Int("collections", len(visible)),
		zap.Int("results", len(merged)),
	)
	return merged, nil
}

// visibleCollections lists and narrows collections. A store failure here is
// degraded to zero collections: an empty answer beats a failed request.
func (s *Service) visibleCollections(
	ctx context.Context, req *request.Request, log *zap.Logger,
) []memory.Collection {
	cols, err := s.registry.List(ctx)
	if err != nil {
		log.Warn("collection listing failed, continuing with zero collections", zap.Error(err))
		return nil
	}
	return s.policy.Visible(cols, req)
}

// dispatch picks the search mode and runs the fan-out. An embedding failure
// mid-request degrades to lexical instead of aborting.
func (s *Service) dispatch(
	ctx context.Context,
	visible []memory.Collection,
	req *request.Request,
	log *zap.Logger,
) (string, [][]memory.Hit) {
	if s.embed == nil {
		log.Debug("no embedding capability, using lexical matching")
		return "lexical", s.lexical.search(ctx, visible, req.Query())
	}

	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		log.Warn("query embedding failed, degrading to lexical matching",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)),
			zap.String("model", s.embed.ModelName()),
		)
		return "lexical", s.lexical.search(ctx, visible, req.Query())
	}

	useDecay := req.DecayEnabled(s.decayCfg.Enabled)
	mode := "plain"
	if useDecay {
		mode = "decay"
		log.Debug("decay scoring active",
			zap.Float64("weight", s.decayCfg.Weight),
			zap.Float64("scale_days", s.decayCfg.ScaleDays),
		)
	}
	return mode, s.fan.search(ctx, visible, emb.Embedding, req, useDecay)
}
