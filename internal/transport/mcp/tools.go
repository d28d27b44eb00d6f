package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pastlight/recollect/internal/domain/search/request"
	"github.com/pastlight/recollect/internal/domain/search/result"
	"github.com/pastlight/recollect/internal/logger"
	"github.com/pastlight/recollect/internal/metrics"
)

// ReflectInput is the input schema for the reflect_on_past tool.
type ReflectInput struct {
	Query        string   `json:"query" jsonschema:"the topic to search past conversations for"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of results, default 5"`
	Project      string   `json:"project,omitempty" jsonschema:"restrict results to one project by name"`
	CrossProject bool     `json:"cross_project,omitempty" jsonschema:"in hybrid isolation, also search other projects"`
	MinScore     *float64 `json:"min_score,omitempty" jsonschema:"minimum relevance score between 0 and 1, default 0.7"`
	UseDecay     *bool    `json:"use_decay,omitempty" jsonschema:"override the server default for recency-weighted scoring"`
}

// ReflectOutput is the structured output of the reflect_on_past tool.
type ReflectOutput struct {
	Results []ResultOutput `json:"results" jsonschema:"matched memories, best first"`
}

// ResultOutput is one retrieved memory.
type ResultOutput struct {
	ID             string  `json:"id" jsonschema:"point id within its collection"`
	Score          float64 `json:"score" jsonschema:"relevance score, decay-adjusted when decay is active"`
	Excerpt        string  `json:"excerpt" jsonschema:"stored text, truncated to 500 characters"`
	Role           string  `json:"role" jsonschema:"speaker role of the stored turn"`
	Timestamp      string  `json:"timestamp" jsonschema:"when the turn happened, RFC 3339"`
	Project        string  `json:"project" jsonschema:"project the memory belongs to"`
	ConversationID string  `json:"conversation_id,omitempty" jsonschema:"source conversation, when known"`
	Collection     string  `json:"collection" jsonschema:"collection the memory came from"`
}

// StoreInput is the input schema for the store_reflection tool.
type StoreInput struct {
	Content string   `json:"content" jsonschema:"the insight or decision to remember"`
	Tags    []string `json:"tags,omitempty" jsonschema:"labels to aid later retrieval"`
}

// StoreOutput is the structured output of the store_reflection tool.
type StoreOutput struct {
	ID string `json:"id" jsonschema:"id of the stored reflection"`
}

// reflectHandler is the MCP SDK handler for the reflect_on_past tool.
func (s *Server) reflectHandler(ctx context.Context, _ *mcp.CallToolRequest, input ReflectInput) (
	*mcp.CallToolResult,
	ReflectOutput,
	error,
) {
	req, err := request.New(
		input.Query, input.Limit, input.Project, input.CrossProject,
		input.MinScore, input.UseDecay, s.defaults,
	)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("none", "invalid").Inc()
		return nil, ReflectOutput{}, err
	}

	ctx = logger.ContextWithLogger(ctx, s.logger)
	results, err := s.engine.Search(ctx, &req)
	if err != nil {
		return nil, ReflectOutput{}, err
	}

	output := ReflectOutput{Results: make([]ResultOutput, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, toResultOutput(r))
	}

	return textResult(renderResults(results, s.engine.Degraded())), output, nil
}

// storeHandler is the MCP SDK handler for the store_reflection tool.
func (s *Server) storeHandler(ctx context.Context, _ *mcp.CallToolRequest, input StoreInput) (
	*mcp.CallToolResult,
	StoreOutput,
	error,
) {
	ctx = logger.ContextWithLogger(ctx, s.logger)
	id, err := s.recorder.Store(ctx, input.Content, input.Tags)
	if err != nil {
		s.logger.Warn("store_reflection failed", zap.Error(err))
		return nil, StoreOutput{}, err
	}

	return textResult(renderStored(id, input.Tags)), StoreOutput{ID: id}, nil
}

func toResultOutput(r result.Result) ResultOutput {
	return ResultOutput{
		ID:             r.ID(),
		Score:          r.Score(),
		Excerpt:        r.Excerpt(),
		Role:           r.Role(),
		Timestamp:      r.Timestamp().Format(time.RFC3339),
		Project:        r.Project(),
		ConversationID: r.ConversationID(),
		Collection:     r.Collection(),
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
