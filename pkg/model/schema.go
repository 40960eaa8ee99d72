package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptySchema indicates a schema without sections.
	ErrEmptySchema = errors.New("model: schema has no sections")
	// ErrDuplicateField indicates two fields sharing an id.
	ErrDuplicateField = errors.New("model: duplicate field id")
	// ErrDuplicateSection indicates two sections sharing a name.
	ErrDuplicateSection = errors.New("model: duplicate section name")
	// ErrNormalizedCollision indicates two distinct ids that fold to the same
	// normalized form and would be indistinguishable to fuzzy resolution.
	ErrNormalizedCollision = errors.New("model: normalized field id collision")
	// ErrMissingOptions indicates a select or radio field without options.
	ErrMissingOptions = errors.New("model: option field declares no options")
)

// Position locates a field inside the schema.
type Position struct {
	Section int
	Index   int
}

// Schema is the ordered set of sections making up one interview. Build it
// with NewSchema so the field index is populated and invariants are checked.
type Schema struct {
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []Section `json:"sections" yaml:"sections" validate:"required,min=1,dive"`

	ids   []string
	index map[string]Position
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func schemaValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// NewSchema validates the sections and returns an indexed schema.
func NewSchema(title string, sections ...Section) (*Schema, error) {
	s := &Schema{Title: title, Sections: sections}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.buildIndex()
	return s, nil
}

// Validate checks structural tags and the identity invariants: unique section
// names, unique field ids, no normalized-id collisions and options present
// for select/radio fields.
func (s *Schema) Validate() error {
	if s == nil || len(s.Sections) == 0 {
		return ErrEmptySchema
	}
	if err := schemaValidator().Struct(s); err != nil {
		return fmt.Errorf("model: invalid schema: %w", err)
	}

	sections := make(map[string]struct{}, len(s.Sections))
	ids := make(map[string]struct{})
	normalized := make(map[string]string)

	for _, section := range s.Sections {
		name := strings.TrimSpace(section.Name)
		if _, dup := sections[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSection, name)
		}
		sections[name] = struct{}{}

		for _, field := range section.Fields {
			if _, dup := ids[field.ID]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateField, field.ID)
			}
			ids[field.ID] = struct{}{}

			key := NormalizeID(field.ID)
			if other, clash := normalized[key]; clash {
				return fmt.Errorf("%w: %q and %q both normalize to %q", ErrNormalizedCollision, other, field.ID, key)
			}
			normalized[key] = field.ID

			if field.Type.HasOptions() && len(field.Options) == 0 {
				return fmt.Errorf("%w: %q", ErrMissingOptions, field.ID)
			}
		}
	}
	return nil
}

func (s *Schema) buildIndex() {
	s.ids = s.ids[:0]
	s.index = make(map[string]Position)
	for si, section := range s.Sections {
		for fi, field := range section.Fields {
			s.ids = append(s.ids, field.ID)
			s.index[field.ID] = Position{Section: si, Index: fi}
		}
	}
}

func (s *Schema) ensureIndex() {
	if s.index == nil {
		s.buildIndex()
	}
}

// FieldIDs returns every field id in canonical order: sections in order,
// fields in declaration order within each section.
func (s *Schema) FieldIDs() []string {
	if s == nil {
		return nil
	}
	s.ensureIndex()
	return append([]string(nil), s.ids...)
}

// Lookup returns the descriptor registered under id.
func (s *Schema) Lookup(id string) (FieldDescriptor, bool) {
	if s == nil {
		return FieldDescriptor{}, false
	}
	s.ensureIndex()
	pos, ok := s.index[id]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.Sections[pos.Section].Fields[pos.Index], true
}

// Has reports whether id names a schema field.
func (s *Schema) Has(id string) bool {
	_, ok := s.Lookup(id)
	return ok
}

// SectionOf returns the index of the section owning id, or -1.
func (s *Schema) SectionOf(id string) int {
	if s == nil {
		return -1
	}
	s.ensureIndex()
	pos, ok := s.index[id]
	if !ok {
		return -1
	}
	return pos.Section
}

// TotalFields counts fields across all sections.
func (s *Schema) TotalFields() int {
	if s == nil {
		return 0
	}
	s.ensureIndex()
	return len(s.ids)
}

// SectionCount returns the number of sections.
func (s *Schema) SectionCount() int {
	if s == nil {
		return 0
	}
	return len(s.Sections)
}

// Section returns the section at index i.
func (s *Schema) Section(i int) (Section, bool) {
	if s == nil || i < 0 || i >= len(s.Sections) {
		return Section{}, false
	}
	return s.Sections[i], true
}

// SectionNames returns section names in order.
func (s *Schema) SectionNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Sections))
	for i, section := range s.Sections {
		names[i] = section.Name
	}
	return names
}

// StartingQuestionNumber returns the 1-based number of the first question in
// section i, counting the fields of every earlier section.
func (s *Schema) StartingQuestionNumber(i int) int {
	if s == nil {
		return 1
	}
	n := 1
	for idx := 0; idx < i && idx < len(s.Sections); idx++ {
		n += len(s.Sections[idx].Fields)
	}
	return n
}
