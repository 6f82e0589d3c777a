package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/dusk-indust/quill/internal/a2a"
)

// A2A implements Executor by sending each stage to a remote agent over the
// Agent-to-Agent protocol. The persona's Endpoint selects the agent; stages
// without one use the default endpoint.
//
// Each endpoint's agent card is fetched once and checked against the output
// modes a stage accepts. An agent that publishes no card is trusted as is.
type A2A struct {
	client   a2a.Client
	endpoint string

	mu    sync.Mutex
	cards map[string]*a2a.AgentCard
}

var _ Executor = (*A2A)(nil)

// NewA2A returns an A2A executor. endpoint may be empty when every persona
// names its own agent.
func NewA2A(client a2a.Client, endpoint string) *A2A {
	return &A2A{client: client, endpoint: endpoint, cards: make(map[string]*a2a.AgentCard)}
}

// card returns the cached agent card for endpoint, discovering it on first
// use. Failed discoveries are not cached.
func (e *A2A) card(ctx context.Context, endpoint string) (*a2a.AgentCard, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.cards[endpoint]; ok {
		return c, nil
	}
	c, err := e.client.DiscoverAgent(ctx, endpoint)
	var statusErr *a2a.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		c = &a2a.AgentCard{}
	case err != nil:
		return nil, err
	}
	e.cards[endpoint] = c
	return c, nil
}

// taskMetadata travels in the message metadata so agents can route on stage.
type taskMetadata struct {
	Stage   string `json:"stage"`
	Persona string `json:"persona,omitempty"`
	Input   string `json:"input"`
	System  string `json:"system"`

	// Material is the upstream text edit and publish rewrite.
	Material string `json:"material,omitempty"`
}

// Execute sends a blocking message/send and collects the task artifacts.
func (e *A2A) Execute(ctx context.Context, task Task) (Result, error) {
	endpoint := task.Persona.Endpoint
	if endpoint == "" {
		endpoint = e.endpoint
	}
	if endpoint == "" {
		return Result{}, fmt.Errorf("a2a: %s: no agent endpoint configured", task.Stage)
	}

	meta, err := json.Marshal(taskMetadata{
		Stage:    task.Stage,
		Persona:  task.Persona.Name,
		Input:    task.Input,
		System:   SystemPrompt(task.Persona, task.Structured()),
		Material: task.Material,
	})
	if err != nil {
		return Result{}, fmt.Errorf("a2a: %s: marshal metadata: %w", task.Stage, err)
	}

	msg := a2a.NewUserMessage("", a2a.TextPart(task.Description))
	msg.Metadata = meta
	modes := []string{"text/markdown", "text/plain"}
	if task.Structured() {
		schema, err := task.Schema.Map()
		if err != nil {
			return Result{}, err
		}
		part, err := a2a.DataPart(schema)
		if err != nil {
			return Result{}, fmt.Errorf("a2a: %s: encode schema: %w", task.Stage, err)
		}
		msg.Parts = append(msg.Parts, part)
		modes = []string{"application/json"}
	}

	card, err := e.card(ctx, endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("a2a: %s: %w", task.Stage, err)
	}
	if len(card.DefaultOutputModes) > 0 && !slices.ContainsFunc(modes, func(m string) bool {
		return slices.Contains(card.DefaultOutputModes, m)
	}) {
		return Result{}, fmt.Errorf("a2a: %s: agent %q produces %v, stage accepts %v",
			task.Stage, card.Name, card.DefaultOutputModes, modes)
	}

	t, err := e.client.SendMessage(ctx, endpoint, a2a.SendMessageRequest{
		Message:       msg,
		Configuration: &a2a.SendMessageConfig{AcceptedOutputModes: modes, Blocking: true},
	})
	if err != nil {
		return Result{}, fmt.Errorf("a2a: %s: %w", task.Stage, err)
	}
	if t.Status.State != a2a.TaskStateCompleted {
		return Result{}, fmt.Errorf("a2a: %s: task %s ended %s: %s", task.Stage, t.ID, t.Status.State, t.StatusText())
	}
	return Result{Text: t.Text(), Data: t.Data()}, nil
}
