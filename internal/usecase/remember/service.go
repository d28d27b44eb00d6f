// Package remember persists explicit reflections into the current
// project's collection so later searches can retrieve them.
package remember

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pastlight/recollect/internal/domain"
	"github.com/pastlight/recollect/internal/domain/memory"
	"github.com/pastlight/recollect/internal/logger"
)

// MaxContentLength bounds a stored reflection.
const MaxContentLength = 8192

// RoleReflection marks points written through this service, telling
// them apart from imported conversation turns.
const RoleReflection = "reflection"

// Service stores reflections.
type Service struct {
	repo       Repository
	embed      domain.Embedder // nil -> degraded zero-vector storage
	collection string
	project    string
	dimensions int
	now        func() time.Time
}

// New creates the storage service for one project collection. embed may
// be nil; the point is then written with a zero vector so it stays
// reachable through lexical matching until a backfill re-embeds it.
func New(repo Repository, embed domain.Embedder, collection, project string, dimensions int) *Service {
	return &Service{
		repo:       repo,
		embed:      embed,
		collection: collection,
		project:    project,
		dimensions: dimensions,
		now:        time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Store persists one reflection and returns its point id. Tags are
// folded into the stored text so both vector and lexical retrieval can
// see them.
func (s *Service) Store(ctx context.Context, content string, tags []string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content must not be empty", domain.ErrInvalidRequest)
	}
	if len(content) > MaxContentLength {
		return "", fmt.Errorf("%w: content exceeds %d bytes", domain.ErrInvalidRequest, MaxContentLength)
	}

	text := content
	if len(tags) > 0 {
		text = content + "\nTags: " + strings.Join(tags, ", ")
	}

	vector, err := s.vectorFor(ctx, text)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	payload := memory.Payload{
		Text:      text,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Role:      RoleReflection,
		Project:   s.project,
	}

	if err := s.repo.UpsertPoint(ctx, s.collection, id, vector, payload); err != nil {
		return "", fmt.Errorf("store reflection: %w", err)
	}

	logger.FromContext(ctx).Info("reflection stored",
		zap.String("id", id),
		zap.String("collection", s.collection),
		zap.Int("tags", len(tags)),
	)
	return id, nil
}

// vectorFor embeds the text, or falls back to a zero vector when no
// embedding capability exists. A provider failure surfaces: unlike
// search, storage is an explicit request and silently writing an
// unsearchable point would lose data without anyone noticing.
func (s *Service) vectorFor(ctx context.Context, text string) ([]float32, error) {
	if s.embed == nil {
		return make([]float32, s.dimensions), nil
	}

	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed reflection: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return res.Embedding, nil
}
