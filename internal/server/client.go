package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a remote quill server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the server at baseURL. hc may be nil.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		// No overall timeout: a generation stream can run for minutes.
		hc = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Generate starts a run on the server and returns its progress frames. The
// channel closes after the terminal event or when ctx is cancelled.
func (c *Client) Generate(ctx context.Context, input string, useCache bool) (<-chan Frame, error) {
	body, err := json.Marshal(GenerateRequest{Input: input, UseCache: &useCache})
	if err != nil {
		return nil, fmt.Errorf("server client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("server client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server client: generate: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server client: generate: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return ReadEvents(ctx, resp.Body), nil
}

// Post fetches a cached post. found is false when the server has no entry.
func (c *Client) Post(ctx context.Context, input string) (post PostResponse, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	q := url.Values{"input": {input}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/posts?"+q.Encode(), nil)
	if err != nil {
		return PostResponse{}, false, fmt.Errorf("server client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return PostResponse{}, false, fmt.Errorf("server client: get post: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return PostResponse{}, false, nil
	default:
		msg, _ := io.ReadAll(resp.Body)
		return PostResponse{}, false, fmt.Errorf("server client: get post: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return PostResponse{}, false, fmt.Errorf("server client: decode post: %w", err)
	}
	return post, true, nil
}
