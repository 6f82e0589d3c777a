// Package a2a is a minimal Agent-to-Agent protocol client. It lets a pipeline
// stage be served by a remote agent: the task description goes out as a
// message/send call and the completed task's artifacts come back as the
// stage output.
package a2a

import "context"

// Client sends stage tasks to remote agents.
type Client interface {
	// SendMessage sends a message to an agent and returns the task.
	// For blocking mode, waits until the task reaches a terminal or interrupted state.
	SendMessage(ctx context.Context, endpoint string, req SendMessageRequest) (*Task, error)

	// DiscoverAgent fetches the Agent Card from a well-known URI.
	DiscoverAgent(ctx context.Context, baseURL string) (*AgentCard, error)
}
