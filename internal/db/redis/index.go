package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/pastlight/recollect/internal/db"
)

// CreateIndex creates an FT index over hash keys with one HNSW vector field.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// ListIndexes enumerates all FT indexes via FT._LIST. Intentionally not
// cached: the import pipeline creates collections at any time.
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	cmd := s.b().Arbitrary("FT._LIST").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpIndexList, Err: err}
	}

	names := make([]string, 0, len(raw))
	for _, msg := range raw {
		name, err := msg.ToString()
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if def.Name == "" {
		return nil, errors.New("index name is required")
	}
	if def.Prefix == "" {
		return nil, errors.New("key prefix is required")
	}
	vf := def.VectorField
	if vf.Name == "" {
		return nil, errors.New("vector field name is required")
	}
	if vf.Dim <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(vf.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if vf.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(vf.M))
	}
	if vf.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(vf.EFConstruct))
	}

	args := []string{
		def.Name,
		"ON", "HASH",
		"PREFIX", "1", def.Prefix,
		"SCHEMA",
		vf.Name, "VECTOR", "HNSW", strconv.Itoa(len(attrs)),
	}
	args = append(args, attrs...)

	return args, nil
}
