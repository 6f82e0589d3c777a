package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dusk-indust/quill/internal/artifact"
)

func TestTopicTask(t *testing.T) {
	assert.Equal(t,
		"Research and suggest a blog topic based on: electric vehicles. Provide a compelling title, brief summary, and relevant keywords.",
		TopicTask("electric vehicles"))
}

func TestOutlineTask(t *testing.T) {
	got := OutlineTask(artifact.Topic{Title: "The EV Shift", Summary: "why cars are going electric"})
	assert.Equal(t,
		"Create a detailed outline for a blog post titled 'The EV Shift' about why cars are going electric. "+
			"Include engaging section headings and brief descriptions of what each section should cover.",
		got)
}

func TestResearchTask(t *testing.T) {
	got := ResearchTask(artifact.Outline{
		Title: "The EV Shift",
		Sections: []artifact.Section{
			{Title: "Intro", Description: "Set the scene"},
			{Title: "Batteries", Description: "Chemistry and cost"},
		},
		TargetWordCount: 900,
	})
	want := "Find supporting information, statistics, and expert opinions for a blog post titled 'The EV Shift' with the following sections:\n\n" +
		"- Intro: Set the scene\n" +
		"- Batteries: Chemistry and cost\n\n" +
		"For each section, provide at least 2-3 key points with relevant facts, statistics, or expert opinions that can be incorporated into the content."
	assert.Equal(t, want, got)
}

func TestDraftTask(t *testing.T) {
	outline := artifact.Outline{
		Title:           "EVs & You",
		Sections:        []artifact.Section{{Title: "Intro", Description: "Set the scene"}},
		TargetWordCount: 500,
	}
	topic := artifact.Topic{Keywords: []string{"ev", "battery"}}

	t.Run("no references", func(t *testing.T) {
		want := "Write a comprehensive blog post based on the following outline and research:\n\n" +
			"{\n" +
			"  \"title\": \"EVs & You\",\n" +
			"  \"subtitle\": null,\n" +
			"  \"target_word_count\": 500,\n" +
			"  \"outline\": [\n" +
			"    {\n" +
			"      \"title\": \"Intro\",\n" +
			"      \"description\": \"Set the scene\"\n" +
			"    }\n" +
			"  ],\n" +
			"  \"references\": [],\n" +
			"  \"keywords\": [\n" +
			"    \"ev\",\n" +
			"    \"battery\"\n" +
			"  ]\n" +
			"}\n\n" +
			"Write an engaging, informative post that follows the outline structure. " +
			"Incorporate the provided research points naturally. Target word count: 500 words."
		assert.Equal(t, want, DraftTask(outline, nil, topic))
		assert.Equal(t, want, DraftTask(outline, artifact.ReferenceList{}, topic), "nil and empty lists render alike")
	})

	t.Run("with references and subtitle", func(t *testing.T) {
		o := outline
		o.Subtitle = "Plugged in"
		refs := artifact.ReferenceList{{Title: "IEA", URL: "https://iea.org", KeyPoints: []string{"Sales doubled"}}}
		got := DraftTask(o, refs, artifact.Topic{})
		assert.Contains(t, got, "  \"subtitle\": \"Plugged in\",\n")
		assert.Contains(t, got, "      \"url\": \"https://iea.org\",\n")
		assert.Contains(t, got, "      \"key_points\": [\n        \"Sales doubled\"\n      ]\n")
		assert.Contains(t, got, "  \"keywords\": []\n")
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, DraftTask(outline, nil, topic), DraftTask(outline, nil, topic))
	})
}

func TestEditTask(t *testing.T) {
	assert.Equal(t,
		"Edit and refine the following blog post draft:\n\n# Draft\n\nBody\n\n"+
			"Improve clarity, fix any grammar issues, ensure consistent tone, and enhance readability. "+
			"Maintain the original voice while making the content more engaging and professional.",
		EditTask("# Draft\n\nBody"))
}

func TestPublishTask(t *testing.T) {
	got := PublishTask("# Edited",
		artifact.Outline{Title: "The EV Shift"},
		artifact.Topic{Keywords: []string{"EV", "battery", "charging"}})
	assert.Equal(t,
		"Format the following blog post for publishing:\n\n# Edited\n\n"+
			"Ensure proper markdown formatting with appropriate headings, paragraph spacing, and emphasis. "+
			"Make sure all links are properly formatted. "+
			"Add metadata including title: 'The EV Shift', keywords: EV, battery, charging.",
		got)
}
