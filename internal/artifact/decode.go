package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// fenceRe matches a fenced code block, optionally tagged json.
var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\n(.*?)\n?```")

// ExtractJSON returns the JSON payload carried by executor text. Models often
// wrap structured replies in a markdown code fence; the first fenced block is
// preferred when present.
func ExtractJSON(text string) []byte {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return bytes.TrimSpace([]byte(m[1]))
	}
	return bytes.TrimSpace([]byte(text))
}

// DecodeTopic decodes and validates a Topic.
func DecodeTopic(raw []byte) (Topic, error) {
	var t Topic
	if err := decode(TopicSchema, raw, &t); err != nil {
		return Topic{}, err
	}
	if err := t.Validate(); err != nil {
		return Topic{}, err
	}
	return t, nil
}

// DecodeOutline decodes and validates an Outline.
func DecodeOutline(raw []byte) (Outline, error) {
	var o Outline
	if err := decode(OutlineSchema, raw, &o); err != nil {
		return Outline{}, err
	}
	if err := o.Validate(); err != nil {
		return Outline{}, err
	}
	return o, nil
}

// DecodeReferences decodes and validates a ReferenceList. Both the wire
// envelope {"references": [...]} and a bare JSON array are accepted. An empty
// list is reported as ErrEmpty.
func DecodeReferences(raw []byte) (ReferenceList, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		wrapped := make([]byte, 0, len(raw)+16)
		wrapped = append(wrapped, `{"references":`...)
		wrapped = append(wrapped, raw...)
		wrapped = append(wrapped, '}')
		raw = wrapped
	}

	var env referenceEnvelope
	if err := decode(ReferencesSchema, raw, &env); err != nil {
		return nil, err
	}
	if len(env.References) == 0 {
		return nil, fmt.Errorf("%w: no references", ErrEmpty)
	}
	list := ReferenceList(env.References)
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// decode runs the schema check on the generic JSON value before binding it
// to v, so type mismatches surface as schema errors rather than partial
// struct fills.
func decode(s *Schema, raw []byte, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrEmpty
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, s.Name, err)
	}
	if err := s.Validate(instance); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, s.Name, err)
	}
	return nil
}
