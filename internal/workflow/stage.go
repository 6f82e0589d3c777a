package workflow

import (
	"fmt"
	"strings"
)

// Stage identifies a pipeline stage (1–6).
type Stage int

const (
	StageTopic    Stage = 1
	StageOutline  Stage = 2
	StageResearch Stage = 3
	StageDraft    Stage = 4
	StageEdit     Stage = 5
	StagePublish  Stage = 6
)

// StageCount is the number of stages in a full run.
const StageCount = 6

var stageNames = map[Stage]string{
	StageTopic:    "topic",
	StageOutline:  "outline",
	StageResearch: "research",
	StageDraft:    "draft",
	StageEdit:     "edit",
	StagePublish:  "publish",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// MarshalText encodes the stage as its label.
func (s Stage) MarshalText() ([]byte, error) {
	if _, ok := stageNames[s]; !ok {
		return nil, fmt.Errorf("workflow: unknown stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage label.
func (s *Stage) UnmarshalText(text []byte) error {
	st, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStage maps a stage label (case-insensitive) to its Stage.
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("workflow: unknown stage %q", name)
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{StageTopic, StageOutline, StageResearch, StageDraft, StageEdit, StagePublish}
}

// Policy decides what a stage failure does to the run.
type Policy string

const (
	// PolicyAbort ends the run with workflow_failed.
	PolicyAbort Policy = "abort"

	// PolicyDegrade substitutes the stage's fallback value and continues.
	PolicyDegrade Policy = "degrade"
)

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyAbort, PolicyDegrade:
		return p, nil
	}
	return "", fmt.Errorf("workflow: unknown policy %q", name)
}

// DefaultPolicies returns the built-in failure policy of every stage.
func DefaultPolicies() map[Stage]Policy {
	out := make(map[Stage]Policy, StageCount)
	for _, d := range pipeline {
		out[d.stage] = d.policy
	}
	return out
}

// HasFallback reports whether a stage can run degraded.
func HasFallback(s Stage) bool {
	for _, d := range pipeline {
		if d.stage == s {
			return d.fallback != nil
		}
	}
	return false
}
