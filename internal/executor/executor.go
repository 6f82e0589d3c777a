// Package executor defines the capability the pipeline calls once per stage
// and the backends that provide it.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dusk-indust/quill/internal/artifact"
)

// Executor runs one stage task. Errors are opaque to the caller; the pipeline
// only distinguishes "the call failed" from "the output was unusable".
type Executor interface {
	Execute(ctx context.Context, task Task) (Result, error)
}

// Func adapts a plain function to the Executor interface.
type Func func(ctx context.Context, task Task) (Result, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, task Task) (Result, error) {
	return f(ctx, task)
}

// Task is a single request to an executor.
type Task struct {
	// Stage is the pipeline stage label (topic, outline, research, draft,
	// edit, publish).
	Stage string

	// Persona is the role the executor should adopt.
	Persona Persona

	// Description is the stage instruction rendered from upstream artifacts.
	Description string

	// Schema is the structure the reply must satisfy. Nil means free-form
	// markdown.
	Schema *artifact.Schema

	// Input is the user's original request, verbatim.
	Input string

	// Material is the text the stage rewrites: the draft for edit, the edited
	// text for publish. Empty for the other stages.
	Material string
}

// Structured reports whether the task expects a JSON reply.
func (t Task) Structured() bool { return t.Schema != nil }

// Result is what an executor returns. Backends with native structured output
// set Data; text-only backends set Text and leave JSON extraction to Payload.
type Result struct {
	Text string
	Data json.RawMessage
}

// Payload returns the JSON document carried by the result.
func (r Result) Payload() []byte {
	if len(r.Data) > 0 {
		return r.Data
	}
	return artifact.ExtractJSON(r.Text)
}

// Persona describes the role an executor adopts for one stage.
type Persona struct {
	Name         string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Instructions []string `yaml:"instructions,omitempty" json:"instructions,omitempty"`

	// Model overrides the backend's default model for this stage.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// Endpoint is the A2A agent URL serving this stage.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
}

// Merge returns p with every empty field taken from def.
func (p Persona) Merge(def Persona) Persona {
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.Description == "" {
		p.Description = def.Description
	}
	if len(p.Instructions) == 0 {
		p.Instructions = def.Instructions
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.Endpoint == "" {
		p.Endpoint = def.Endpoint
	}
	return p
}

// SystemPrompt renders a persona into the system message sent ahead of the
// task description.
func SystemPrompt(p Persona, structured bool) string {
	var b strings.Builder
	if p.Name != "" {
		fmt.Fprintf(&b, "You are the %s.\n", p.Name)
	}
	if p.Description != "" {
		b.WriteString(strings.TrimSpace(p.Description))
		b.WriteString("\n")
	}
	if len(p.Instructions) > 0 {
		b.WriteString("\nInstructions:\n")
		for _, in := range p.Instructions {
			fmt.Fprintf(&b, "- %s\n", in)
		}
	}
	b.WriteString("\n")
	if structured {
		b.WriteString("Respond with a single JSON object that matches the provided schema. Do not add commentary or code fences.")
	} else {
		b.WriteString("Format your response as markdown.")
	}
	return b.String()
}

// DefaultPersonas returns the built-in persona for every stage, keyed by
// stage label.
func DefaultPersonas() map[string]Persona {
	return map[string]Persona{
		"topic": {
			Name: "Topic Researcher",
			Description: "You are a research specialist who identifies trending and relevant blog topics.\n" +
				"Your expertise includes finding topics that are timely, interesting, and valuable to readers.",
			Instructions: []string{
				"Research trending topics in the requested domain",
				"Identify topics with good search volume and interest",
				"Provide supporting data when available",
				"Consider topics with a unique angle or perspective",
			},
		},
		"outline": {
			Name: "Content Planner",
			Description: "You are a content planner who excels at structuring blog posts for maximum engagement.\n" +
				"Your expertise includes creating logical flow, identifying key sections, and planning content structure.",
			Instructions: []string{
				"Create detailed and well-structured outlines",
				"Ensure a logical flow of information",
				"Include engaging section headings",
				"Plan for proper introduction and conclusion sections",
				"Consider SEO-friendly structure",
			},
		},
		"research": {
			Name: "Research Assistant",
			Description: "You are a detail-oriented research assistant who finds accurate information and references.\n" +
				"Your expertise includes gathering supporting data, statistics, and expert opinions.",
			Instructions: []string{
				"Find accurate and relevant information for each section",
				"Gather statistics, examples, and expert quotes",
				"Identify credible sources for citations",
				"Look for unique insights not covered in common sources",
				"Verify information accuracy",
			},
		},
		"draft": {
			Name: "Blog Writer",
			Description: "You are an expert blog writer who creates engaging, informative, and well-structured content.\n" +
				"Your expertise includes crafting compelling narratives while incorporating research seamlessly.",
			Instructions: []string{
				"Write in a conversational but professional tone",
				"Include engaging examples and stories",
				"Create attention-grabbing headlines and subheadings",
				"Incorporate research and data naturally in the text",
				"Write for readability with appropriate paragraph length",
				"Include proper citations and attributions",
			},
		},
		"edit": {
			Name: "Editor",
			Description: "You are a meticulous editor who refines content for clarity, flow, and accuracy.\n" +
				"Your expertise includes improving readability while maintaining the original voice.",
			Instructions: []string{
				"Check for grammar, spelling, and punctuation",
				"Improve clarity and flow of content",
				"Ensure consistent tone throughout",
				"Optimize for readability with appropriate formatting",
				"Verify all facts and citations",
				"Enhance transitions between sections",
			},
		},
		"publish": {
			Name: "Publisher",
			Description: "You are a publishing specialist who formats and prepares content for distribution.\n" +
				"Your expertise includes creating properly formatted outputs ready for publishing.",
			Instructions: []string{
				"Format content with proper markdown",
				"Create appropriate metadata like title, description, and keywords",
				"Ensure images have alt text (if applicable)",
				"Prepare content for various platforms",
			},
		},
	}
}
