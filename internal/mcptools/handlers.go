package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/quill/internal/render"
	"github.com/dusk-indust/quill/internal/workflow"
)

// Generator is the part of workflow.Controller the tools need.
type Generator interface {
	Generate(ctx context.Context, input string, useCache bool) *workflow.Stream
	Cached(ctx context.Context, input string) (string, bool, error)
}

var _ Generator = (*workflow.Controller)(nil)

// PostService handles MCP tool calls for quill.
type PostService struct {
	gen Generator
	log *zap.Logger
}

// NewPostService creates a PostService backed by gen.
func NewPostService(gen Generator, log *zap.Logger) *PostService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostService{gen: gen, log: log}
}

// GeneratePost runs the pipeline to completion and returns the final post
// along with the progress lines it produced.
func (s *PostService) GeneratePost(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GeneratePostInput,
) (*mcp.CallToolResult, GeneratePostOutput, error) {
	if strings.TrimSpace(input.Input) == "" {
		return nil, GeneratePostOutput{Status: "failed", Error: "input is required", Events: []string{}},
			errors.New("input is required")
	}
	useCache := true
	if input.UseCache != nil {
		useCache = *input.UseCache
	}

	out := GeneratePostOutput{Events: []string{}}
	stream := s.gen.Generate(ctx, input.Input, useCache)
	defer stream.Close()
	for ev := range stream.Events() {
		out.RunID = ev.RunID
		out.Events = append(out.Events, workflow.FormatEvent(ev))
		switch ev.Kind {
		case workflow.EventWorkflowCompleted:
			out.Status = "completed"
			out.Content = ev.Content
			out.Cached = ev.Cached
		case workflow.EventWorkflowFailed:
			out.Status = "failed"
			out.Stage = ev.Stage.String()
			out.Error = ev.Error
		}
	}
	if out.Status == "" {
		// The stream ended without a terminal event: the call was cancelled.
		if err := ctx.Err(); err != nil {
			return nil, GeneratePostOutput{Status: "failed", Error: err.Error(), Events: out.Events}, err
		}
		return nil, out, errors.New("generation ended without a result")
	}
	s.log.Info("generate_post", zap.String("run_id", out.RunID), zap.String("status", out.Status))
	return nil, out, nil
}

// GetCachedPost looks a post up by its exact input.
func (s *PostService) GetCachedPost(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCachedPostInput,
) (*mcp.CallToolResult, GetCachedPostOutput, error) {
	post, ok, err := s.gen.Cached(ctx, input.Input)
	if err != nil {
		return nil, GetCachedPostOutput{}, fmt.Errorf("read cache: %w", err)
	}
	if !ok {
		return nil, GetCachedPostOutput{Found: false}, nil
	}

	out := GetCachedPostOutput{
		Found:     true,
		Content:   post,
		Title:     render.Parse(post).Title(),
		WordCount: render.WordCount(post),
	}
	switch strings.ToLower(input.Format) {
	case "", "markdown", "md":
	case "html":
		html, err := render.HTML(post)
		if err != nil {
			return nil, GetCachedPostOutput{}, err
		}
		out.Content = html
	default:
		return nil, GetCachedPostOutput{}, fmt.Errorf("unknown format %q", input.Format)
	}
	return nil, out, nil
}
