package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Template is an offline executor that fabricates deterministic placeholder
// content from the user input. It lets the whole pipeline run without a model
// and is the default backend.
type Template struct{}

var _ Executor = Template{}

// Execute returns placeholder output shaped for the task's stage.
func (Template) Execute(ctx context.Context, task Task) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	subject := strings.TrimSpace(task.Input)
	title := "A Practical Guide to " + subject

	switch task.Stage {
	case "topic":
		return jsonResult(map[string]any{
			"title":    title,
			"summary":  fmt.Sprintf("What readers need to know about %s, from the basics to what comes next.", subject),
			"keywords": keywords(subject),
		})
	case "outline":
		return jsonResult(map[string]any{
			"title":    title,
			"subtitle": "Everything worth knowing, in one read",
			"sections": []map[string]string{
				{"title": "Introduction", "description": "Why " + subject + " matters right now."},
				{"title": "The Basics", "description": "Core ideas and vocabulary."},
				{"title": "In Practice", "description": "Examples and common pitfalls."},
				{"title": "Conclusion", "description": "Key takeaways and next steps."},
			},
			"target_word_count": 800,
		})
	case "research":
		return jsonResult(map[string]any{
			"references": []map[string]any{{
				"title":      "Background notes on " + subject,
				"key_points": []string{"Summarize the current state of " + subject + ".", "Note open questions readers often ask."},
			}},
		})
	case "draft":
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", title)
		fmt.Fprintf(&b, "This post was drafted offline about %s.\n\n", subject)
		b.WriteString("## Brief\n\n")
		b.WriteString("```\n")
		b.WriteString(task.Description)
		b.WriteString("\n```\n")
		return Result{Text: b.String()}, nil
	case "edit":
		return Result{Text: strings.TrimSpace(task.Material) + "\n"}, nil
	case "publish":
		return Result{Text: fmt.Sprintf("---\ntitle: %q\ngenerator: quill\n---\n\n%s", title, strings.TrimSpace(task.Material)+"\n")}, nil
	}
	return Result{}, fmt.Errorf("template: unknown stage %q", task.Stage)
}

func jsonResult(v any) (Result, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: data}, nil
}

func keywords(subject string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, w := range strings.Fields(strings.ToLower(subject)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) < 3 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
