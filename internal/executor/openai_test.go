package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/quill/internal/artifact"
)

func chatServer(t *testing.T, content string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		var body map[string]any
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) && inspect != nil {
			inspect(body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   body["model"],
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestNewOpenAI_Validation(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{Model: "gpt-4o"})
	assert.ErrorContains(t, err, "api key")
	_, err = NewOpenAI(OpenAIConfig{APIKey: "k"})
	assert.ErrorContains(t, err, "model")
}

func TestOpenAI_StructuredStage(t *testing.T) {
	ts := chatServer(t, `{"title":"T","summary":"S","keywords":["k"]}`, func(body map[string]any) {
		assert.Equal(t, "gpt-4o-mini", body["model"], "persona model overrides the default")

		rf, ok := body["response_format"].(map[string]any)
		require.True(t, ok, "structured stages send a response_format")
		assert.Equal(t, "json_schema", rf["type"])
		js, _ := rf["json_schema"].(map[string]any)
		assert.Equal(t, "blog_topic", js["name"])

		msgs, _ := body["messages"].([]any)
		require.Len(t, msgs, 2)
		first, _ := msgs[0].(map[string]any)
		assert.Equal(t, "system", first["role"])
	})
	defer ts.Close()

	exec, err := NewOpenAI(OpenAIConfig{
		APIKey:  "test",
		BaseURL: ts.URL + "/v1/",
		Model:   "gpt-4o",
		Options: []option.RequestOption{option.WithMaxRetries(0)},
	})
	require.NoError(t, err)

	res, err := exec.Execute(context.Background(), Task{
		Stage:       "topic",
		Persona:     Persona{Name: "Topic Researcher", Model: "gpt-4o-mini"},
		Description: "Research and suggest a blog topic based on: go",
		Schema:      artifact.TopicSchema,
	})
	require.NoError(t, err)
	topic, err := artifact.DecodeTopic(res.Payload())
	require.NoError(t, err)
	assert.Equal(t, "T", topic.Title)
}

func TestOpenAI_TextStage(t *testing.T) {
	ts := chatServer(t, "# Edited", func(body map[string]any) {
		_, has := body["response_format"]
		assert.False(t, has, "text stages must not request a response format")
	})
	defer ts.Close()

	exec, err := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: ts.URL + "/v1/", Model: "gpt-4o",
		Options: []option.RequestOption{option.WithMaxRetries(0)}})
	require.NoError(t, err)

	res, err := exec.Execute(context.Background(), Task{Stage: "edit", Description: "Edit this"})
	require.NoError(t, err)
	assert.Equal(t, "# Edited", res.Text)
}

func TestOpenAI_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	exec, err := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: ts.URL + "/v1/", Model: "gpt-4o",
		Options: []option.RequestOption{option.WithMaxRetries(0)}})
	require.NoError(t, err)

	_, err = exec.Execute(context.Background(), Task{Stage: "draft"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai: draft")
}
