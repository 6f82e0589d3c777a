package executor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GenAIConfig configures the Gemini backend.
type GenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GenAI implements Executor using Google's Gemini API.
type GenAI struct {
	client *genai.Client
	model  string
}

var _ Executor = (*GenAI)(nil)

// NewGenAI creates a Gemini client. The model defaults to gemini-2.5-flash.
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("executor: genai api key missing")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("executor: create genai client: %w", err)
	}
	return &GenAI{client: client, model: model}, nil
}

// Execute generates content with the persona as the system instruction.
// Structured stages ask for JSON constrained by the stage schema.
func (g *GenAI) Execute(ctx context.Context, task Task) (Result, error) {
	model := g.model
	if task.Persona.Model != "" {
		model = task.Persona.Model
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(task.Persona, task.Structured()), genai.RoleUser),
	}
	if task.Structured() {
		schema, err := task.Schema.Map()
		if err != nil {
			return Result{}, err
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = schema
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(task.Description), config)
	if err != nil {
		return Result{}, fmt.Errorf("genai: %s: %w", task.Stage, err)
	}
	return Result{Text: resp.Text()}, nil
}
