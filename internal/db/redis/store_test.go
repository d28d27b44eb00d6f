package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/pastlight/recollect/internal/db"
)

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "recollect:conv_a_voyage:p1"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "recollect:conv_a_voyage:p1", map[string]string{"text": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "k", map[string]string{"f": "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

// --- kv.go tests ---

func TestGet_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "nope")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSetGet_Roundtrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v")).
		Return(mock.Result(mock.RedisString("OK")))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.Result(mock.RedisString("v")))

	s := NewStoreForTest(c)
	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("got %q", data)
	}
}

// --- index.go tests ---

func TestCreateIndex_ArgsAndSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" &&
				cmd[1] == "recollect:conv_a_voyage:idx" &&
				contains(cmd, "HNSW") && contains(cmd, "COSINE") && contains(cmd, "FLOAT32")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{
		Name:   "recollect:conv_a_voyage:idx",
		Prefix: "recollect:conv_a_voyage:",
		VectorField: db.VectorField{
			Name:        "vector",
			Dim:         1024,
			M:           16,
			EFConstruct: 200,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{
		Name:        "idx",
		Prefix:      "p:",
		VectorField: db.VectorField{Name: "vector", Dim: 4},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestCreateIndex_Validation(t *testing.T) {
	s := NewStoreForTest(nil)

	tests := []struct {
		name string
		def  db.IndexDefinition
	}{
		{"missing name", db.IndexDefinition{Prefix: "p:", VectorField: db.VectorField{Name: "v", Dim: 4}}},
		{"missing prefix", db.IndexDefinition{Name: "i", VectorField: db.VectorField{Name: "v", Dim: 4}}},
		{"missing field", db.IndexDefinition{Name: "i", Prefix: "p:", VectorField: db.VectorField{Dim: 4}}},
		{"zero dim", db.IndexDefinition{Name: "i", Prefix: "p:", VectorField: db.VectorField{Name: "v"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.CreateIndex(context.Background(), &tt.def); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestListIndexes(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT._LIST")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("recollect:conv_a_voyage:idx"),
			mock.RedisString("recollect:conv_b_voyage:idx"),
		)))

	s := NewStoreForTest(c)
	names, err := s.ListIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "recollect:conv_a_voyage:idx" {
		t.Errorf("unexpected names: %v", names)
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "recollect:conv_a_voyage:idx"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("recollect:conv_a_voyage:p1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"), // distance 0.1 -> similarity 0.9
				mock.RedisString("text"),
				mock.RedisString("hello"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "recollect:conv_a_voyage:idx",
		Vector:       []float32{0.1, 0.2},
		K:            10,
		ReturnFields: []string{"text"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	e := result.Entries[0]
	if e.Key != "recollect:conv_a_voyage:p1" {
		t.Errorf("key = %q", e.Key)
	}
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("score = %f, want ~0.9", e.Score)
	}
	if e.Fields["text"] != "hello" {
		t.Errorf("fields = %v", e.Fields)
	}
	if _, ok := e.Fields["__vector_score"]; ok {
		t.Error("raw score field should be stripped from payload fields")
	}
}

func TestSearchKNN_DistanceAboveOneClampsToZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("k"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("1.7"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", Vector: []float32{0.1}, K: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entries[0].Score != 0 {
		t.Errorf("score = %f, want clamp to 0", result.Entries[0].Score)
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", Vector: []float32{0.1}, K: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_PagesFullCandidateSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var captured []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			captured = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", Vector: []float32{0.1}, K: 15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	limitAt := -1
	for i, a := range captured {
		if a == "LIMIT" {
			limitAt = i
		}
	}
	if limitAt < 0 || limitAt+2 >= len(captured) ||
		captured[limitAt+1] != "0" || captured[limitAt+2] != "15" {
		t.Fatalf("expected LIMIT 0 15 so all k candidates come back, got %v", captured)
	}
	if !contains(captured, "SORTBY") || !contains(captured, "__vector_score") {
		t.Errorf("expected SORTBY __vector_score for a deterministic page, got %v", captured)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(nil)

	if _, err := s.SearchKNN(context.Background(), &db.KNNQuery{Vector: []float32{0.1}, K: 1}); err == nil {
		t.Error("expected error for missing index name")
	}
	if _, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "i", K: 1}); err == nil {
		t.Error("expected error for missing vector")
	}
	if _, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "i", Vector: []float32{0.1}}); err == nil {
		t.Error("expected error for non-positive k")
	}
}

func TestSearchPage_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*" && contains(cmd, "LIMIT")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("recollect:conv_a_voyage:p1"),
			mock.RedisArray(
				mock.RedisString("text"),
				mock.RedisString("scrolled"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchPage(context.Background(), "recollect:conv_a_voyage:idx", 100, []string{"text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Fields["text"] != "scrolled" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Entries[0].Score != 0 {
		t.Errorf("page scan must carry no relevance signal, got %f", result.Entries[0].Score)
	}
}

func contains(cmd []string, want string) bool {
	for _, c := range cmd {
		if c == want {
			return true
		}
	}
	return false
}
