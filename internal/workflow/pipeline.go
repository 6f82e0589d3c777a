package workflow

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/quill/internal/artifact"
	"github.com/dusk-indust/quill/internal/executor"
)

// run holds the artifacts produced so far in one invocation. Each field is
// written once by its stage and only read afterwards.
type run struct {
	input      string
	topic      artifact.Topic
	outline    artifact.Outline
	references artifact.ReferenceList
	draft      artifact.Text
	edited     artifact.Text
	published  artifact.Text
}

// final is the text a completed run caches and returns.
func (r *run) final() artifact.Text { return r.published }

// stageDef describes one stage for the generic loop in Controller.execute.
type stageDef struct {
	stage Stage

	// step is the progress wording shown when the stage starts.
	step string

	// failure is the message carried by workflow_failed when the stage
	// aborts the run.
	failure string

	// degraded is the message carried by stage_degraded.
	degraded string

	schema *artifact.Schema
	policy Policy

	describe func(r *run) string

	// material is the text the stage rewrites, if any.
	material func(r *run) artifact.Text

	// accept decodes the executor result into r and returns a summary for
	// stage_completed.
	accept func(r *run, res executor.Result) (string, error)

	// fallback fills r with the degraded value. Nil means the stage cannot
	// degrade.
	fallback func(r *run)
}

var pipeline = []stageDef{
	{
		stage:    StageTopic,
		step:     "Researching blog topic...",
		failure:  "Failed to generate blog topic. Please try again.",
		schema:   artifact.TopicSchema,
		policy:   PolicyAbort,
		describe: func(r *run) string { return TopicTask(r.input) },
		accept: func(r *run, res executor.Result) (string, error) {
			t, err := artifact.DecodeTopic(res.Payload())
			if err != nil {
				return "", err
			}
			r.topic = t
			return "Generated blog topic: " + t.Title, nil
		},
	},
	{
		stage:    StageOutline,
		step:     "Creating blog outline...",
		failure:  "Failed to create blog outline. Please try again.",
		schema:   artifact.OutlineSchema,
		policy:   PolicyAbort,
		describe: func(r *run) string { return OutlineTask(r.topic) },
		accept: func(r *run, res executor.Result) (string, error) {
			o, err := artifact.DecodeOutline(res.Payload())
			if err != nil {
				return "", err
			}
			r.outline = o
			return fmt.Sprintf("Created blog outline with %d sections", len(o.Sections)), nil
		},
	},
	{
		stage:    StageResearch,
		step:     "Gathering supporting research...",
		failure:  "Failed to gather research. Please try again.",
		degraded: "Failed to gather research. Continuing with limited references.",
		schema:   artifact.ReferencesSchema,
		policy:   PolicyDegrade,
		describe: func(r *run) string { return ResearchTask(r.outline) },
		accept: func(r *run, res executor.Result) (string, error) {
			refs, err := artifact.DecodeReferences(res.Payload())
			if err != nil {
				return "", err
			}
			r.references = refs
			return fmt.Sprintf("Gathered %d research references", len(refs)), nil
		},
		fallback: func(r *run) { r.references = artifact.ReferenceList{} },
	},
	{
		stage:    StageDraft,
		step:     "Writing blog post draft...",
		failure:  "Failed to write blog draft. Please try again.",
		policy:   PolicyAbort,
		describe: func(r *run) string { return DraftTask(r.outline, r.references, r.topic) },
		accept: func(r *run, res executor.Result) (string, error) {
			text, err := textOutput(res)
			if err != nil {
				return "", err
			}
			r.draft = text
			return fmt.Sprintf("Created blog draft with approximately %d words", len(strings.Fields(string(text)))), nil
		},
	},
	{
		stage:    StageEdit,
		step:     "Editing and refining content...",
		failure:  "Failed to edit blog post. Please try again.",
		degraded: "Editing failed, using unedited draft",
		policy:   PolicyDegrade,
		describe: func(r *run) string { return EditTask(r.draft) },
		material: func(r *run) artifact.Text { return r.draft },
		accept: func(r *run, res executor.Result) (string, error) {
			text, err := textOutput(res)
			if err != nil {
				return "", err
			}
			r.edited = text
			return "Successfully edited and refined blog content", nil
		},
		fallback: func(r *run) { r.edited = r.draft },
	},
	{
		stage:    StagePublish,
		step:     "Formatting final blog post...",
		failure:  "Failed to format blog post. Please try again.",
		degraded: "Formatting failed, using unformatted content",
		policy:   PolicyDegrade,
		describe: func(r *run) string { return PublishTask(r.edited, r.outline, r.topic) },
		material: func(r *run) artifact.Text { return r.edited },
		accept: func(r *run, res executor.Result) (string, error) {
			text, err := textOutput(res)
			if err != nil {
				return "", err
			}
			r.published = text
			return "Successfully formatted blog post for publishing", nil
		},
		fallback: func(r *run) { r.published = r.edited },
	},
}

// textOutput accepts any non-blank text as-is.
func textOutput(res executor.Result) (artifact.Text, error) {
	text := artifact.Text(res.Text)
	if text.Empty() {
		return "", artifact.ErrEmpty
	}
	return text, nil
}
