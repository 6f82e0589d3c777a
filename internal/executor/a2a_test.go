package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/quill/internal/a2a"
	"github.com/dusk-indust/quill/internal/artifact"
)

type mockA2AClient struct {
	sendFn     func(ctx context.Context, endpoint string, req a2a.SendMessageRequest) (*a2a.Task, error)
	discoverFn func(ctx context.Context, baseURL string) (*a2a.AgentCard, error)
}

func (m *mockA2AClient) SendMessage(ctx context.Context, endpoint string, req a2a.SendMessageRequest) (*a2a.Task, error) {
	return m.sendFn(ctx, endpoint, req)
}

func (m *mockA2AClient) DiscoverAgent(ctx context.Context, baseURL string) (*a2a.AgentCard, error) {
	if m.discoverFn == nil {
		return &a2a.AgentCard{}, nil
	}
	return m.discoverFn(ctx, baseURL)
}

func completed(parts ...a2a.Part) *a2a.Task {
	return &a2a.Task{
		ID:        "task-1",
		Status:    a2a.TaskStatus{State: a2a.TaskStateCompleted},
		Artifacts: []a2a.Artifact{{ArtifactID: "a", Parts: parts}},
	}
}

func TestA2A_StructuredStage(t *testing.T) {
	var gotEndpoint string
	var gotReq a2a.SendMessageRequest
	client := &mockA2AClient{sendFn: func(_ context.Context, endpoint string, req a2a.SendMessageRequest) (*a2a.Task, error) {
		gotEndpoint = endpoint
		gotReq = req
		part, err := a2a.DataPart(map[string]any{"title": "T", "summary": "S", "keywords": []string{}})
		require.NoError(t, err)
		return completed(part), nil
	}}

	exec := NewA2A(client, "http://default")
	res, err := exec.Execute(context.Background(), Task{
		Stage:       "topic",
		Persona:     Persona{Name: "Topic Researcher", Endpoint: "http://topic-agent"},
		Description: "Research and suggest a blog topic",
		Schema:      artifact.TopicSchema,
		Input:       "electric vehicles",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://topic-agent", gotEndpoint)
	require.Len(t, gotReq.Message.Parts, 2, "description plus schema")
	assert.Equal(t, "Research and suggest a blog topic", gotReq.Message.Parts[0].Text)
	assert.Equal(t, []string{"application/json"}, gotReq.Configuration.AcceptedOutputModes)
	assert.True(t, gotReq.Configuration.Blocking)

	var meta taskMetadata
	require.NoError(t, json.Unmarshal(gotReq.Message.Metadata, &meta))
	assert.Equal(t, "topic", meta.Stage)
	assert.Equal(t, "electric vehicles", meta.Input)

	topic, err := artifact.DecodeTopic(res.Payload())
	require.NoError(t, err)
	assert.Equal(t, "T", topic.Title)
}

func TestA2A_TextStageUsesDefaultEndpoint(t *testing.T) {
	var gotEndpoint string
	client := &mockA2AClient{sendFn: func(_ context.Context, endpoint string, req a2a.SendMessageRequest) (*a2a.Task, error) {
		gotEndpoint = endpoint
		assert.Len(t, req.Message.Parts, 1)
		return completed(a2a.TextPart("# Post")), nil
	}}

	res, err := NewA2A(client, "http://default").Execute(context.Background(), Task{Stage: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "http://default", gotEndpoint)
	assert.Equal(t, "# Post", res.Text)
}

func TestA2A_Failures(t *testing.T) {
	t.Run("no endpoint", func(t *testing.T) {
		_, err := NewA2A(&mockA2AClient{}, "").Execute(context.Background(), Task{Stage: "edit"})
		assert.ErrorContains(t, err, "no agent endpoint")
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("connection refused")
		client := &mockA2AClient{sendFn: func(context.Context, string, a2a.SendMessageRequest) (*a2a.Task, error) {
			return nil, boom
		}}
		_, err := NewA2A(client, "http://x").Execute(context.Background(), Task{Stage: "edit"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("task failed", func(t *testing.T) {
		client := &mockA2AClient{sendFn: func(context.Context, string, a2a.SendMessageRequest) (*a2a.Task, error) {
			return &a2a.Task{ID: "t9", Status: a2a.TaskStatus{
				State:   a2a.TaskStateFailed,
				Message: &a2a.Message{Parts: []a2a.Part{a2a.TextPart("quota exceeded")}},
			}}, nil
		}}
		_, err := NewA2A(client, "http://x").Execute(context.Background(), Task{Stage: "edit"})
		assert.ErrorContains(t, err, "task t9 ended failed: quota exceeded")
	})
}

func TestA2A_DiscoversEachEndpointOnce(t *testing.T) {
	var discovered []string
	client := &mockA2AClient{
		discoverFn: func(_ context.Context, baseURL string) (*a2a.AgentCard, error) {
			discovered = append(discovered, baseURL)
			return &a2a.AgentCard{Name: "writer", DefaultOutputModes: []string{"text/markdown"}}, nil
		},
		sendFn: func(context.Context, string, a2a.SendMessageRequest) (*a2a.Task, error) {
			return completed(a2a.TextPart("# Post")), nil
		},
	}

	exec := NewA2A(client, "http://default")
	for _, stage := range []string{"draft", "edit", "publish"} {
		_, err := exec.Execute(context.Background(), Task{Stage: stage})
		require.NoError(t, err)
	}
	_, err := exec.Execute(context.Background(), Task{Stage: "edit", Persona: Persona{Endpoint: "http://editor"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"http://default", "http://editor"}, discovered)
}

func TestA2A_AgentCardChecks(t *testing.T) {
	sent := false
	send := func(context.Context, string, a2a.SendMessageRequest) (*a2a.Task, error) {
		sent = true
		return completed(a2a.TextPart("# Post")), nil
	}

	t.Run("output modes do not overlap", func(t *testing.T) {
		sent = false
		client := &mockA2AClient{sendFn: send, discoverFn: func(context.Context, string) (*a2a.AgentCard, error) {
			return &a2a.AgentCard{Name: "imager", DefaultOutputModes: []string{"image/png"}}, nil
		}}
		_, err := NewA2A(client, "http://x").Execute(context.Background(), Task{
			Stage:  "topic",
			Schema: artifact.TopicSchema,
		})
		assert.ErrorContains(t, err, `agent "imager" produces [image/png]`)
		assert.False(t, sent, "no message is sent to an incompatible agent")
	})

	t.Run("no card published", func(t *testing.T) {
		sent = false
		client := &mockA2AClient{sendFn: send, discoverFn: func(context.Context, string) (*a2a.AgentCard, error) {
			return nil, &a2a.StatusError{Op: "discover agent", Code: http.StatusNotFound}
		}}
		_, err := NewA2A(client, "http://x").Execute(context.Background(), Task{Stage: "draft"})
		require.NoError(t, err)
		assert.True(t, sent)
	})

	t.Run("discovery fails", func(t *testing.T) {
		sent = false
		down := errors.New("connection refused")
		client := &mockA2AClient{sendFn: send, discoverFn: func(context.Context, string) (*a2a.AgentCard, error) {
			return nil, down
		}}
		_, err := NewA2A(client, "http://x").Execute(context.Background(), Task{Stage: "draft"})
		assert.ErrorIs(t, err, down)
		assert.ErrorContains(t, err, "a2a: draft:")
		assert.False(t, sent)
	})
}
