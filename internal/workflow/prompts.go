package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dusk-indust/quill/internal/artifact"
)

// The builders below are pure: identical artifacts always yield identical
// descriptions.

// TopicTask builds the stage 1 description.
func TopicTask(input string) string {
	return fmt.Sprintf("Research and suggest a blog topic based on: %s. "+
		"Provide a compelling title, brief summary, and relevant keywords.", input)
}

// OutlineTask builds the stage 2 description.
func OutlineTask(topic artifact.Topic) string {
	return fmt.Sprintf("Create a detailed outline for a blog post titled '%s' "+
		"about %s. Include engaging section headings and brief "+
		"descriptions of what each section should cover.", topic.Title, topic.Summary)
}

// ResearchTask builds the stage 3 description, listing every outline section.
func ResearchTask(outline artifact.Outline) string {
	lines := make([]string, len(outline.Sections))
	for i, s := range outline.Sections {
		lines[i] = fmt.Sprintf("- %s: %s", s.Title, s.Description)
	}
	return fmt.Sprintf("Find supporting information, statistics, and expert opinions for a blog post "+
		"titled '%s' with the following sections:\n\n%s\n\n"+
		"For each section, provide at least 2-3 key points with relevant facts, statistics, "+
		"or expert opinions that can be incorporated into the content.",
		outline.Title, strings.Join(lines, "\n"))
}

// writerBrief is the document embedded in the draft description. Field order
// is the order it renders in.
type writerBrief struct {
	Title           string               `json:"title"`
	Subtitle        *string              `json:"subtitle"`
	TargetWordCount int                  `json:"target_word_count"`
	Outline         []artifact.Section   `json:"outline"`
	References      []artifact.Reference `json:"references"`
	Keywords        []string             `json:"keywords"`
}

// DraftTask builds the stage 4 description from the outline, the gathered
// references (possibly none), and the topic keywords.
func DraftTask(outline artifact.Outline, refs artifact.ReferenceList, topic artifact.Topic) string {
	brief := writerBrief{
		Title:           outline.Title,
		TargetWordCount: outline.TargetWordCount,
		Outline:         outline.Sections,
		References:      refs,
		Keywords:        topic.Keywords,
	}
	if outline.Subtitle != "" {
		brief.Subtitle = &outline.Subtitle
	}
	if brief.Outline == nil {
		brief.Outline = []artifact.Section{}
	}
	if brief.References == nil {
		brief.References = []artifact.Reference{}
	}
	if brief.Keywords == nil {
		brief.Keywords = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// Strings, ints and slices of them always encode.
	_ = enc.Encode(brief)

	return fmt.Sprintf("Write a comprehensive blog post based on the following outline and research:\n\n"+
		"%s\n\n"+
		"Write an engaging, informative post that follows the outline structure. "+
		"Incorporate the provided research points naturally. "+
		"Target word count: %d words.",
		strings.TrimRight(buf.String(), "\n"), outline.TargetWordCount)
}

// EditTask builds the stage 5 description.
func EditTask(draft artifact.Text) string {
	return fmt.Sprintf("Edit and refine the following blog post draft:\n\n"+
		"%s\n\n"+
		"Improve clarity, fix any grammar issues, ensure consistent tone, "+
		"and enhance readability. Maintain the original voice while making "+
		"the content more engaging and professional.", draft)
}

// PublishTask builds the stage 6 description.
func PublishTask(edited artifact.Text, outline artifact.Outline, topic artifact.Topic) string {
	return fmt.Sprintf("Format the following blog post for publishing:\n\n"+
		"%s\n\n"+
		"Ensure proper markdown formatting with appropriate headings, "+
		"paragraph spacing, and emphasis. Make sure all links are properly formatted. "+
		"Add metadata including title: '%s', keywords: %s.",
		edited, outline.Title, strings.Join(topic.Keywords, ", "))
}
