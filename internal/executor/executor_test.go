package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/quill/internal/artifact"
)

func TestSystemPrompt(t *testing.T) {
	p := Persona{
		Name:         "Editor",
		Description:  "You refine content.",
		Instructions: []string{"Fix grammar", "Keep the voice"},
	}

	got := SystemPrompt(p, false)
	assert.Equal(t, "You are the Editor.\nYou refine content.\n\nInstructions:\n- Fix grammar\n- Keep the voice\n\nFormat your response as markdown.", got)

	structured := SystemPrompt(p, true)
	assert.Contains(t, structured, "single JSON object")
	assert.NotContains(t, structured, "markdown")
}

func TestPersona_Merge(t *testing.T) {
	def := DefaultPersonas()["draft"]
	got := Persona{Model: "gpt-4o-mini"}.Merge(def)
	assert.Equal(t, "Blog Writer", got.Name)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, def.Instructions, got.Instructions)

	custom := Persona{Name: "Ghostwriter", Instructions: []string{"Be brief"}}.Merge(def)
	assert.Equal(t, "Ghostwriter", custom.Name)
	assert.Equal(t, []string{"Be brief"}, custom.Instructions)
	assert.Equal(t, def.Description, custom.Description)
}

func TestDefaultPersonas_CoverEveryStage(t *testing.T) {
	personas := DefaultPersonas()
	for _, stage := range []string{"topic", "outline", "research", "draft", "edit", "publish"} {
		p, ok := personas[stage]
		require.True(t, ok, "missing persona for %s", stage)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Instructions)
	}
}

func TestResult_Payload(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(Result{Data: []byte(`{"a":1}`), Text: "ignored"}.Payload()))
	assert.Equal(t, `{"b":2}`, string(Result{Text: "```json\n{\"b\":2}\n```"}.Payload()))
	assert.Empty(t, Result{}.Payload())
}

func TestFunc(t *testing.T) {
	var seen Task
	f := Func(func(_ context.Context, task Task) (Result, error) {
		seen = task
		return Result{Text: "ok"}, nil
	})
	res, err := f.Execute(context.Background(), Task{Stage: "edit", Schema: nil})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, "edit", seen.Stage)
	assert.False(t, seen.Structured())
	assert.True(t, Task{Schema: artifact.TopicSchema}.Structured())
}
