package executor

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures the OpenAI chat-completions backend. BaseURL points
// the client at any OpenAI-compatible endpoint, e.g. DeepSeek.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// Options are appended after the ones derived from the fields above.
	Options []option.RequestOption
}

// OpenAI implements Executor using the official openai-go SDK.
type OpenAI struct {
	client openai.Client
	model  string
}

var _ Executor = (*OpenAI)(nil)

// NewOpenAI validates cfg and builds a client.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("executor: openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("executor: openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, cfg.Options...)
	return &OpenAI{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

// Execute sends the persona as the system message and the task description
// as the user message. Structured stages request a JSON-schema response
// format.
func (o *OpenAI) Execute(ctx context.Context, task Task) (Result, error) {
	model := o.model
	if task.Persona.Model != "" {
		model = task.Persona.Model
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt(task.Persona, task.Structured())),
			openai.UserMessage(task.Description),
		},
	}
	if task.Structured() {
		schema, err := task.Schema.Map()
		if err != nil {
			return Result{}, err
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   task.Schema.Name,
					Schema: schema,
				},
			},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("openai: %s: %w", task.Stage, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("openai: %s: empty choices", task.Stage)
	}
	return Result{Text: resp.Choices[0].Message.Content}, nil
}
