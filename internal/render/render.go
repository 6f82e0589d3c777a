// Package render turns a finished markdown post into HTML or styled terminal
// output and extracts its title, front matter and word count.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Post is a markdown post split into front matter and body.
type Post struct {
	// Meta is the YAML front matter, if any.
	Meta map[string]any

	// Body is the markdown after the front matter.
	Body string
}

// Parse splits a leading "---" delimited YAML block off the markdown.
// Malformed front matter is left in the body.
func Parse(md string) Post {
	src := strings.TrimPrefix(md, "\ufeff")
	if !strings.HasPrefix(src, "---\n") {
		return Post{Body: md}
	}
	rest := src[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return Post{Body: md}
	}
	var meta map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return Post{Body: md}
	}
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return Post{Meta: meta, Body: strings.TrimLeft(body, "\n")}
}

// Title returns the front matter title, or the text of the first level-one
// heading.
func (p Post) Title() string {
	if t, ok := p.Meta["title"].(string); ok && t != "" {
		return t
	}
	src := []byte(p.Body)
	doc := markdown.Parser().Parse(text.NewReader(src))
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
			title = nodeText(h, src)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// HTML converts the post body to HTML.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Parse(md).Body), &buf); err != nil {
		return "", fmt.Errorf("render: html: %w", err)
	}
	return buf.String(), nil
}

// Page wraps HTML(md) in a minimal standalone document.
func Page(md string) (string, error) {
	post := Parse(md)
	body, err := HTML(md)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(post.Title()))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// WordCount counts the words of prose in the post body, ignoring markup,
// front matter and code.
func WordCount(md string) int {
	src := []byte(Parse(md).Body)
	doc := markdown.Parser().Parse(text.NewReader(src))
	count := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			count += len(strings.Fields(string(n.Segment.Value(src))))
		}
		return ast.WalkContinue, nil
	})
	return count
}

// Terminal renders markdown for display in a terminal wrapped at width.
func Terminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("render: terminal: %w", err)
	}
	out, err := r.Render(Parse(md).Body)
	if err != nil {
		return "", fmt.Errorf("render: terminal: %w", err)
	}
	return out, nil
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
