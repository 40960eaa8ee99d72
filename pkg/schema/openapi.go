package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-voiceform/pkg/model"
)

// Patterns describing canonical answer shapes. Answers are stored as strings,
// so numeric fields are expressed as a pattern rather than a number type.
const (
	PatternDate   = `^\d{4}-\d{2}-\d{2}$`
	PatternPhone  = `^\(\d{3}\) \d{3}-\d{4}$`
	PatternSSN    = `^\d{3}-\d{2}-\d{4}$`
	PatternEmail  = `^[^@\s]+@[^@\s]+\.[^@\s]+$`
	PatternNumber = `^-?\d+(\.\d+)?$`
)

// Issue reports one answer that does not conform to its field declaration.
// Issues are advisory: the interview stores lenient values regardless.
type Issue struct {
	FieldID string `json:"fieldId"`
	Reason  string `json:"reason"`
}

func (i Issue) String() string {
	return i.FieldID + ": " + i.Reason
}

// OpenAPI projects s onto an object schema with one string property per
// field. Required fields are listed in schema order.
func OpenAPI(s *model.Schema) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	if s == nil {
		return root
	}
	root.Title = s.Title

	var required []string
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			root.WithProperty(field.ID, fieldSchema(field))
			if field.Required {
				required = append(required, field.ID)
			}
		}
	}
	root.Required = required
	return root
}

// ExportJSON renders the OpenAPI projection of s as indented JSON.
func ExportJSON(s *model.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(OpenAPI(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: export openapi: %w", err)
	}
	return data, nil
}

func fieldSchema(field model.FieldDescriptor) *openapi3.Schema {
	prop := openapi3.NewStringSchema()
	prop.Title = field.Label
	if field.Format != "" {
		prop.Description = field.Format
	}

	switch {
	case field.Type.HasOptions():
		values := make([]any, len(field.Options))
		for i, option := range field.Options {
			values[i] = option
		}
		prop.WithEnum(values...)
	case field.Type == model.FieldTypePhone:
		prop.WithPattern(PatternPhone)
	case field.Type == model.FieldTypeSSN:
		prop.WithPattern(PatternSSN)
	case field.Type == model.FieldTypeEmail:
		prop.WithPattern(PatternEmail)
	case field.Type == model.FieldTypeNumber:
		prop.WithPattern(PatternNumber)
	case field.Type == model.FieldTypeDate:
		prop.WithFormat("date").WithPattern(PatternDate)
	}

	if field.MaxLength > 0 {
		prop.WithMaxLength(int64(field.MaxLength))
	}
	return prop
}

// Conformance checks answers against the OpenAPI projection of s and returns
// one issue per offending field, in schema order: unknown ids, missing
// required answers and values violating the field's shape.
func Conformance(s *model.Schema, answers map[string]string) []Issue {
	if s == nil {
		return nil
	}
	root := OpenAPI(s)

	var issues []Issue
	for _, id := range s.FieldIDs() {
		field, _ := s.Lookup(id)
		value, ok := answers[id]
		if !ok || value == "" {
			if field.Required {
				issues = append(issues, Issue{FieldID: id, Reason: "required answer missing"})
			}
			continue
		}
		ref, ok := root.Properties[id]
		if !ok || ref.Value == nil {
			continue
		}
		if err := ref.Value.VisitJSON(value); err != nil {
			issues = append(issues, Issue{FieldID: id, Reason: reason(err)})
		}
	}

	var unknown []string
	for id := range answers {
		if !s.Has(id) {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		issues = append(issues, Issue{FieldID: id, Reason: "unknown field"})
	}
	return issues
}

func reason(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Reason != "" {
		return schemaErr.Reason
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx > 0 {
		msg = msg[:idx]
	}
	return msg
}
