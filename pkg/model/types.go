package model

import "strings"

// FieldType enumerates the input kinds a questionnaire field can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeSSN      FieldType = "ssn"
	FieldTypePhone    FieldType = "phone"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
)

// FieldTypes lists every supported type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeDate,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeSSN,
	FieldTypePhone,
	FieldTypeEmail,
	FieldTypeNumber,
	FieldTypeTextarea,
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	for _, candidate := range FieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether the type presents a fixed option set.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// FieldDescriptor describes one questionnaire field.
type FieldDescriptor struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Label       string    `json:"label" yaml:"label" validate:"required"`
	Type        FieldType `json:"type" yaml:"type" validate:"required,oneof=text date select radio ssn phone email number textarea"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Format      string    `json:"format,omitempty" yaml:"format,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	MaxLength   int       `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"gte=0"`
}

// IsDateLike reports whether values for the field are treated as calendar
// dates. Besides the date type, ids mentioning "date" or "dob" qualify.
func (f FieldDescriptor) IsDateLike() bool {
	if f.Type == FieldTypeDate {
		return true
	}
	id := strings.ToLower(f.ID)
	return strings.Contains(id, "date") || strings.Contains(id, "dob")
}

// HasOption reports whether value is one of the declared options.
func (f FieldDescriptor) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

// Section groups an ordered list of fields under a unique name. A section
// without fields is valid and always considered complete.
type Section struct {
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldDescriptor `json:"fields" yaml:"fields" validate:"dive"`
}

// RequiredFields returns the required descriptors in declaration order.
func (s Section) RequiredFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Required {
			out = append(out, field)
		}
	}
	return out
}
