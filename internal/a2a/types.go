package a2a

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state of a remote agent task.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateRejected      TaskState = "rejected"
)

// IsTerminal returns true if the task state is a final state.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
		return true
	}
	return false
}

// Role identifies the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Task is the unit of work a remote agent returns for message/send.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// TaskStatus tracks the current state and when it changed.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Text concatenates the text parts of every artifact, separated by blank
// lines.
func (t *Task) Text() string {
	var parts []string
	for _, art := range t.Artifacts {
		for _, p := range art.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// Data returns the first structured data part across all artifacts, or nil.
func (t *Task) Data() json.RawMessage {
	for _, art := range t.Artifacts {
		for _, p := range art.Parts {
			if len(p.Data) > 0 {
				return p.Data
			}
		}
	}
	return nil
}

// StatusText returns the text of the status message, if any. Agents put
// their failure reason there.
func (t *Task) StatusText() string {
	if t.Status.Message == nil {
		return ""
	}
	var parts []string
	for _, p := range t.Status.Message.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Message is a unit of communication between client and agent.
type Message struct {
	MessageID string          `json:"messageId"`
	ContextID string          `json:"contextId,omitempty"`
	Role      Role            `json:"role"`
	Parts     []Part          `json:"parts"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// NewUserMessage builds a user message with a fresh ID from the given parts.
func NewUserMessage(contextID string, parts ...Part) Message {
	return Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		Role:      RoleUser,
		Parts:     parts,
	}
}

// Part carries content within a message or artifact.
// Exactly one of Text or Data is set.
type Part struct {
	Text      string          `json:"text,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	MediaType string          `json:"mediaType,omitempty"`
}

// TextPart creates a Part with text content.
func TextPart(text string) Part {
	return Part{Text: text, MediaType: "text/plain"}
}

// DataPart creates a Part with structured JSON data.
func DataPart(v any) (Part, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Part{}, err
	}
	return Part{Data: data, MediaType: "application/json"}, nil
}

// Artifact is an output produced by an agent for a task.
type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name"`
	Parts      []Part `json:"parts"`
}

// AgentCard is the self-describing manifest served by an A2A agent.
type AgentCard struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Version            string       `json:"version"`
	DefaultInputModes  []string     `json:"defaultInputModes"`
	DefaultOutputModes []string     `json:"defaultOutputModes"`
	Skills             []AgentSkill `json:"skills"`
}

// AgentSkill declares a distinct capability of an agent.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// SendMessageRequest initiates a task.
type SendMessageRequest struct {
	Message       Message            `json:"message"`
	Configuration *SendMessageConfig `json:"configuration,omitempty"`
}

// SendMessageConfig controls message handling behavior.
type SendMessageConfig struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	Blocking            bool     `json:"blocking"`
}
