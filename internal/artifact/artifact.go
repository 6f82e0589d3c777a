// Package artifact defines the immutable values handed from one pipeline
// stage to the next, together with the JSON schemas the Stage Executor is
// asked to honor and the decoders that turn executor output into typed values.
package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the decoders and Validate methods.
var (
	// ErrEmpty means the executor produced no content at all.
	ErrEmpty = errors.New("artifact: empty payload")

	// ErrInvalid means the content does not satisfy the expected structure.
	ErrInvalid = errors.New("artifact: invalid payload")
)

// Topic is produced by the topic discovery stage.
type Topic struct {
	Title    string   `json:"title" jsonschema:"Title of the blog topic."`
	Summary  string   `json:"summary" jsonschema:"Brief summary of the topic."`
	Keywords []string `json:"keywords" jsonschema:"Relevant keywords for the topic."`
}

// Validate checks the fields a JSON schema cannot express.
func (t Topic) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: topic title is blank", ErrInvalid)
	}
	if strings.TrimSpace(t.Summary) == "" {
		return fmt.Errorf("%w: topic summary is blank", ErrInvalid)
	}
	if t.Keywords == nil {
		return fmt.Errorf("%w: topic keywords are missing", ErrInvalid)
	}
	return nil
}

// Section is one entry of an Outline.
type Section struct {
	Title       string `json:"title" jsonschema:"Heading of the section."`
	Description string `json:"description" jsonschema:"What the section should cover."`
}

// Outline is produced by the outline planning stage.
type Outline struct {
	Title           string    `json:"title" jsonschema:"Title of the blog post."`
	Subtitle        string    `json:"subtitle,omitempty" jsonschema:"Subtitle or tagline for the blog post."`
	Sections        []Section `json:"sections" jsonschema:"Ordered sections, each with a title and a brief description of its content."`
	TargetWordCount int       `json:"target_word_count" jsonschema:"Target word count for the full blog post."`
}

// Validate checks the fields a JSON schema cannot express.
func (o Outline) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("%w: outline title is blank", ErrInvalid)
	}
	if len(o.Sections) == 0 {
		return fmt.Errorf("%w: outline has no sections", ErrInvalid)
	}
	for i, s := range o.Sections {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("%w: outline section %d has a blank title", ErrInvalid, i+1)
		}
	}
	if o.TargetWordCount <= 0 {
		return fmt.Errorf("%w: target word count must be positive, got %d", ErrInvalid, o.TargetWordCount)
	}
	return nil
}

// Reference is a source the research stage found for the post.
type Reference struct {
	Title     string   `json:"title" jsonschema:"Title of the reference material."`
	URL       string   `json:"url,omitempty" jsonschema:"URL of the reference, if available."`
	KeyPoints []string `json:"key_points" jsonschema:"Key points from this reference to incorporate."`
}

// Validate checks the fields a JSON schema cannot express.
func (r Reference) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: reference title is blank", ErrInvalid)
	}
	if len(r.KeyPoints) == 0 {
		return fmt.Errorf("%w: reference %q has no key points", ErrInvalid, r.Title)
	}
	for _, p := range r.KeyPoints {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: reference %q has a blank key point", ErrInvalid, r.Title)
		}
	}
	return nil
}

// ReferenceList is the ordered output of the research stage. An empty list
// is a legitimate degraded value.
type ReferenceList []Reference

// Validate validates every reference in order.
func (l ReferenceList) Validate() error {
	for _, r := range l {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Text is a markdown blob: the draft, the edited draft, or the published post.
type Text string

// Empty reports whether the text has no visible content.
func (t Text) Empty() bool {
	return strings.TrimSpace(string(t)) == ""
}

// String returns the markdown.
func (t Text) String() string { return string(t) }
