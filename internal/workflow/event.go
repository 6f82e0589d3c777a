package workflow

import (
	"fmt"
	"time"
)

// EventKind classifies a progress event.
type EventKind string

const (
	EventStageStarted      EventKind = "stage_started"
	EventStageDegraded     EventKind = "stage_degraded"
	EventStageCompleted    EventKind = "stage_completed"
	EventWorkflowCompleted EventKind = "workflow_completed"
	EventWorkflowFailed    EventKind = "workflow_failed"
)

// Event is one observable step of a run. A stream carries exactly one
// terminal event (workflow_completed or workflow_failed) and it is last.
type Event struct {
	RunID string    `json:"runId"`
	Kind  EventKind `json:"kind"`
	Stage Stage     `json:"stage,omitempty"`
	Time  time.Time `json:"time"`

	// Message is the human-readable status text.
	Message string `json:"message,omitempty"`

	// Content is the final post on workflow_completed.
	Content string `json:"content,omitempty"`

	// Cached is set when workflow_completed was served from the cache.
	Cached bool `json:"cached,omitempty"`

	// References is the reference count on research's stage_completed.
	References int `json:"references,omitempty"`

	// Error describes the failure on stage_degraded and workflow_failed.
	Error string `json:"error,omitempty"`

	// Err is the underlying *StageError, for in-process consumers.
	Err error `json:"-"`
}

// Terminal reports whether e ends its stream.
func (e Event) Terminal() bool {
	return e.Kind == EventWorkflowCompleted || e.Kind == EventWorkflowFailed
}

// FormatEvent formats an Event as a human-readable status line.
func FormatEvent(e Event) string {
	switch e.Kind {
	case EventStageStarted:
		return fmt.Sprintf("  ● %s", e.Message)
	case EventStageCompleted:
		return fmt.Sprintf("  ✓ %s", e.Message)
	case EventStageDegraded:
		return fmt.Sprintf("  ! %s (%s)", e.Message, e.Error)
	case EventWorkflowCompleted:
		if e.Cached {
			return "✓ Using cached blog post"
		}
		return "✓ Blog post ready"
	case EventWorkflowFailed:
		return fmt.Sprintf("✗ %s (%s)", e.Message, e.Error)
	default:
		return fmt.Sprintf("  ? %s (unknown event)", e.Kind)
	}
}

// StepMessage renders the start-of-stage wording, e.g. "Step 1/6: Researching
// blog topic...".
func StepMessage(s Stage, step string) string {
	return fmt.Sprintf("Step %d/%d: %s", int(s), StageCount, step)
}
