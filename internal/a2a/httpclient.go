package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// AgentCardPath is where agents publish their card, relative to the base URL.
const AgentCardPath = "/.well-known/agent-card.json"

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks JSON-RPC over HTTP to remote stage agents.
type HTTPClient struct {
	http      *http.Client
	requestID atomic.Int64
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout. Stage calls can take minutes, so
// the default is generous.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// NewHTTPClient returns a client with a five minute timeout unless overridden.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{http: &http.Client{Timeout: 5 * time.Minute}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-200 HTTP response from an agent.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("a2a: %s: HTTP %d: %s", e.Op, e.Code, e.Body)
}

// SendMessage runs message/send against endpoint.
func (c *HTTPClient) SendMessage(ctx context.Context, endpoint string, req SendMessageRequest) (*Task, error) {
	var task Task
	if err := c.call(ctx, endpoint, MethodSendMessage, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DiscoverAgent fetches the agent card published under baseURL.
func (c *HTTPClient) DiscoverAgent(ctx context.Context, baseURL string) (*AgentCard, error) {
	url := strings.TrimRight(baseURL, "/") + AgentCardPath
	body, err := c.do(ctx, "discover agent", http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var card AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("a2a: decode agent card: %w", err)
	}
	return &card, nil
}

func (c *HTTPClient) call(ctx context.Context, endpoint, method string, params, result any) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("a2a: marshal params: %w", err)
	}
	reqBody, err := json.Marshal(JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  paramsJSON,
	})
	if err != nil {
		return fmt.Errorf("a2a: marshal request: %w", err)
	}

	body, err := c.do(ctx, method, http.MethodPost, endpoint, reqBody)
	if err != nil {
		return err
	}

	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("a2a: decode response: %w", err)
	}
	if e := rpcResp.Error; e != nil {
		return &RPCError{Method: method, Code: e.Code, Message: e.Message, Data: e.Data}
	}
	if result == nil || rpcResp.Result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("a2a: decode result: %w", err)
	}
	return nil
}

// do sends one JSON request and returns the body of a 200 response. A nil
// payload sends no body.
func (c *HTTPClient) do(ctx context.Context, op, verb, url string, payload []byte) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, verb, url, rd)
	if err != nil {
		return nil, fmt.Errorf("a2a: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("a2a: %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("a2a: %s: read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// RPCError is a JSON-RPC error object returned by an agent.
type RPCError struct {
	Method  string
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("a2a: %s: rpc error %d: %s (data: %s)", e.Method, e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("a2a: %s: rpc error %d: %s", e.Method, e.Code, e.Message)
}
