// Package server exposes the blog pipeline over HTTP: progress streams as
// Server-Sent Events or WebSocket messages, and cached posts as JSON or HTML.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/quill/internal/render"
	"github.com/dusk-indust/quill/internal/workflow"
)

// Generator is the part of workflow.Controller the server needs.
type Generator interface {
	Generate(ctx context.Context, input string, useCache bool) *workflow.Stream
	Cached(ctx context.Context, input string) (string, bool, error)
}

var _ Generator = (*workflow.Controller)(nil)

// GenerateRequest is the body of POST /api/generate and the first message on
// /api/ws.
type GenerateRequest struct {
	Input    string `json:"input"`
	UseCache *bool  `json:"useCache,omitempty"`
}

func (r GenerateRequest) useCache() bool {
	return r.UseCache == nil || *r.UseCache
}

// PostResponse is the body of GET /api/posts.
type PostResponse struct {
	Input     string `json:"input"`
	Title     string `json:"title,omitempty"`
	WordCount int    `json:"wordCount"`
	Content   string `json:"content"`
}

// Server serves the HTTP API.
type Server struct {
	gen      Generator
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// New creates a Server backed by gen.
func New(gen Generator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		gen: gen,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/ws", s.handleWS)
	mux.HandleFunc("GET /api/posts", s.handlePost)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		httpError(w, "input is required", http.StatusBadRequest)
		return
	}

	sse := NewSSEWriter(w)
	sse.Init()

	stream := s.gen.Generate(r.Context(), req.Input, req.useCache())
	defer stream.Close()
	for ev := range stream.Events() {
		if err := sse.WriteEvent(ev); err != nil {
			s.log.Warn("sse client went away", zap.String("run_id", ev.RunID), zap.Error(err))
			return
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req GenerateRequest
	if err := conn.ReadJSON(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		message := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "expected {\"input\": ...}")
		_ = conn.WriteMessage(websocket.CloseMessage, message)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A read error means the client closed the socket.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	stream := s.gen.Generate(ctx, req.Input, req.useCache())
	defer stream.Close()
	for ev := range stream.Events() {
		if err := conn.WriteJSON(ev); err != nil {
			s.log.Warn("websocket client went away", zap.String("run_id", ev.RunID), zap.Error(err))
			return
		}
	}
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	_ = conn.WriteMessage(websocket.CloseMessage, message)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		httpError(w, "missing input", http.StatusBadRequest)
		return
	}

	post, ok, err := s.gen.Cached(r.Context(), input)
	if err != nil {
		s.log.Error("cache read failed", zap.Error(err))
		httpError(w, "cache unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		httpError(w, "not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		page, err := render.Page(post)
		if err != nil {
			httpError(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
		return
	}

	writeJSON(w, http.StatusOK, PostResponse{
		Input:     input,
		Title:     render.Parse(post).Title(),
		WordCount: render.WordCount(post),
		Content:   post,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
