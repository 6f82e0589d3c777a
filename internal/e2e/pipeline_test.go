//go:build e2e

// Package e2e runs the whole pipeline against fake A2A agents over real HTTP.
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dusk-indust/quill/internal/a2a"
	"github.com/dusk-indust/quill/internal/cache"
	"github.com/dusk-indust/quill/internal/executor"
	"github.com/dusk-indust/quill/internal/workflow"
)

// agentCall is what a fake agent saw for one message/send.
type agentCall struct {
	Stage string
	Modes []string
	Parts int
}

// fakeAgent serves message/send by running the offline template executor on
// the task carried in the message.
type fakeAgent struct {
	mu        sync.Mutex
	calls     []agentCall
	fail      bool
	cardReads int
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.URL.Path == a2a.AgentCardPath {
		f.mu.Lock()
		f.cardReads++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a2a.AgentCard{
			Name:               "quill-template-agent",
			Version:            "1.0.0",
			DefaultInputModes:  []string{"text/plain"},
			DefaultOutputModes: []string{"application/json", "text/markdown"},
		})
		return
	}
	var req a2a.JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var params a2a.SendMessageRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var meta struct {
		Stage    string `json:"stage"`
		Input    string `json:"input"`
		Material string `json:"material"`
	}
	_ = json.Unmarshal(params.Message.Metadata, &meta)

	f.mu.Lock()
	f.calls = append(f.calls, agentCall{Stage: meta.Stage, Modes: params.Configuration.AcceptedOutputModes, Parts: len(params.Message.Parts)})
	fail := f.fail
	f.mu.Unlock()

	task := a2a.Task{ID: "task-" + meta.Stage, ContextID: "ctx", Status: a2a.TaskStatus{State: a2a.TaskStateCompleted, Timestamp: time.Now()}}
	if fail {
		task.Status.State = a2a.TaskStateFailed
		task.Status.Message = &a2a.Message{Role: a2a.RoleAgent, Parts: []a2a.Part{a2a.TextPart("agent overloaded")}}
	} else {
		res, err := executor.Template{}.Execute(r.Context(), executor.Task{
			Stage:       meta.Stage,
			Input:       meta.Input,
			Description: params.Message.Parts[0].Text,
			Material:    meta.Material,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		part := a2a.TextPart(res.Text)
		if len(res.Data) > 0 {
			part = a2a.Part{Data: json.RawMessage(res.Data), MediaType: "application/json"}
		}
		task.Artifacts = []a2a.Artifact{{ArtifactID: "out", Name: meta.Stage, Parts: []a2a.Part{part}}}
	}

	result, _ := json.Marshal(task)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a2a.JSONRPCResponse{JSONRPC: a2a.JSONRPCVersion, ID: req.ID, Result: result})
}

func (f *fakeAgent) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Stage
	}
	return out
}

func TestPipeline_E2E_A2AAgents(t *testing.T) {
	agent := &fakeAgent{}
	ts := httptest.NewServer(agent)
	defer ts.Close()

	store, err := cache.Open(cache.Options{Backend: cache.BackendSQLite, Path: filepath.Join(t.TempDir(), "posts.db")})
	require.NoError(t, err)
	defer store.Close()

	ctrl, err := workflow.New(executor.NewA2A(a2a.NewHTTPClient(a2a.WithTimeout(30*time.Second)), ts.URL), store,
		workflow.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	events := ctrl.Generate(ctx, "urban beekeeping", true).Collect()
	require.Len(t, events, 13)
	last := events[12]
	require.Equal(t, workflow.EventWorkflowCompleted, last.Kind, "run failed: %s", last.Error)
	assert.True(t, strings.HasPrefix(last.Content, "---\ntitle: \"A Practical Guide to urban beekeeping\"\n"))
	assert.Contains(t, last.Content, "# A Practical Guide to urban beekeeping")

	assert.Equal(t, []string{"topic", "outline", "research", "draft", "edit", "publish"}, agent.stages())
	for _, c := range agent.calls[:3] {
		assert.Equal(t, []string{"application/json"}, c.Modes, c.Stage)
		assert.Equal(t, 2, c.Parts, "structured stages carry the schema as a data part")
	}
	for _, c := range agent.calls[3:] {
		assert.Equal(t, 1, c.Parts, c.Stage)
	}
	assert.Equal(t, 1, agent.cardReads, "the agent card is fetched once per endpoint")

	// The second request is served from the sqlite cache without calling agents.
	again := ctrl.Generate(ctx, "urban beekeeping", true).Collect()
	require.Len(t, again, 1)
	assert.True(t, again[0].Cached)
	assert.Equal(t, last.Content, again[0].Content)
	assert.Len(t, agent.stages(), 6)
}

func TestPipeline_E2E_PerStageAgent(t *testing.T) {
	primary := &fakeAgent{}
	mainTS := httptest.NewServer(primary)
	defer mainTS.Close()

	research := &fakeAgent{fail: true}
	researchTS := httptest.NewServer(research)
	defer researchTS.Close()

	ctrl, err := workflow.New(executor.NewA2A(a2a.NewHTTPClient(), mainTS.URL), nil,
		workflow.WithLogger(zaptest.NewLogger(t)),
		workflow.WithPersonas(map[workflow.Stage]executor.Persona{
			workflow.StageResearch: {Endpoint: researchTS.URL},
		}))
	require.NoError(t, err)

	events := ctrl.Generate(context.Background(), "tidal power", false).Collect()
	require.Len(t, events, 13)

	degraded := events[5]
	assert.Equal(t, workflow.EventStageDegraded, degraded.Kind)
	assert.Equal(t, workflow.StageResearch, degraded.Stage)
	assert.Contains(t, degraded.Error, "agent overloaded")
	assert.Equal(t, workflow.EventWorkflowCompleted, events[12].Kind)

	assert.Equal(t, []string{"research"}, research.stages())
	assert.Equal(t, []string{"topic", "outline", "draft", "edit", "publish"}, primary.stages())
}
