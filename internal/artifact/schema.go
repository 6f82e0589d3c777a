package artifact

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema pairs an inferred JSON schema with its resolved form so the same
// value can be sent to an executor and used to validate its reply.
type Schema struct {
	// Name identifies the schema in structured-output requests.
	Name string

	// JSON is the schema document inferred from the Go type. It is the
	// strict form sent to executors: no undeclared properties.
	JSON *jsonschema.Schema

	resolved *jsonschema.Resolved
}

// referenceEnvelope is the wire shape of a ReferenceList. Structured-output
// APIs require an object at the root.
type referenceEnvelope struct {
	References []Reference `json:"references" jsonschema:"Reference sources supporting the post, in the order they should be used."`
}

// Schemas for the structured stages.
var (
	TopicSchema      = mustSchema[Topic]("blog_topic")
	OutlineSchema    = mustSchema[Outline]("blog_outline")
	ReferencesSchema = mustSchema[referenceEnvelope]("blog_references")
)

func mustSchema[T any](name string) *Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("artifact: infer schema %s: %v", name, err))
	}
	walkObjects(s, adjustNullability)

	// Replies are validated leniently: undeclared properties are ignored.
	lenient := s.CloneSchemas()
	walkObjects(lenient, func(obj *jsonschema.Schema) { obj.AdditionalProperties = nil })
	resolved, err := lenient.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("artifact: resolve schema %s: %v", name, err))
	}
	return &Schema{Name: name, JSON: s, resolved: resolved}
}

// adjustNullability lets optional properties be null and stops required
// arrays from being null.
func adjustNullability(obj *jsonschema.Schema) {
	for name, p := range obj.Properties {
		switch {
		case slices.Contains(obj.Required, name):
			if slices.Equal(p.Types, []string{"null", "array"}) {
				p.Type, p.Types = "array", nil
			}
		case p.Type != "":
			p.Type, p.Types = "", []string{"null", p.Type}
		}
	}
}

// walkObjects calls fn on every object schema reachable through properties
// and array items.
func walkObjects(s *jsonschema.Schema, fn func(*jsonschema.Schema)) {
	if s == nil {
		return
	}
	if s.Type == "object" || slices.Contains(s.Types, "object") {
		fn(s)
	}
	for _, p := range s.Properties {
		walkObjects(p, fn)
	}
	walkObjects(s.Items, fn)
}

// Validate checks a decoded JSON value (maps, slices, float64, string, bool,
// nil) against the schema.
func (s *Schema) Validate(instance any) error {
	if err := s.resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, s.Name, err)
	}
	return nil
}

// Map returns the schema as a generic JSON object, the form the OpenAI and
// Gemini SDKs accept.
func (s *Schema) Map() (map[string]any, error) {
	data, err := json.Marshal(s.JSON)
	if err != nil {
		return nil, fmt.Errorf("artifact: marshal schema %s: %w", s.Name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("artifact: unmarshal schema %s: %w", s.Name, err)
	}
	return m, nil
}
