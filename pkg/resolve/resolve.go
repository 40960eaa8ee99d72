// Package resolve maps loosely specified field references ("dob",
// "DateOfBirth ", "date_of_birth") onto exactly one canonical field id.
//
// Resolution is deterministic. Steps run in a fixed order and each step walks
// the schema in canonical order, so the first match wins:
//
//  1. alias table (keyed by normalized hint, only ids present in the schema)
//  2. exact, case-sensitive id match
//  3. normalized equality (lowercase, alphanumerics only)
//  4. normalized containment in either direction, only for hints whose
//     normalized form is longer than MinContainmentLength
//
// A failed resolution never creates an id.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-voiceform/pkg/model"
)

// MinContainmentLength is the normalized hint length that must be exceeded
// before containment matching is attempted.
const MinContainmentLength = 4

// Strategy names the step that produced a resolution.
type Strategy string

const (
	StrategyAlias       Strategy = "alias"
	StrategyExact       Strategy = "exact"
	StrategyNormalized  Strategy = "normalized"
	StrategyContainment Strategy = "containment"
)

var (
	// ErrUnresolvedField matches every *UnresolvedFieldError.
	ErrUnresolvedField = errors.New("resolve: unresolved field")
	// ErrEmptySchema is returned when the resolver has no fields to match.
	ErrEmptySchema = errors.New("resolve: schema has no fields")
)

// UnresolvedFieldError names the hint that could not be resolved.
type UnresolvedFieldError struct {
	Hint string
}

func (e *UnresolvedFieldError) Error() string {
	return fmt.Sprintf("unknown field: %s", e.Hint)
}

// Is lets errors.Is match ErrUnresolvedField.
func (e *UnresolvedFieldError) Is(target error) bool {
	return target == ErrUnresolvedField
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	FieldID  string   `json:"fieldId"`
	Strategy Strategy `json:"strategy"`
}

// DefaultAliases are common synonyms used by voice agents.
func DefaultAliases() map[string]string {
	return map[string]string{
		"dob":            "dateOfBirth",
		"birthdate":      "dateOfBirth",
		"birthday":       "dateOfBirth",
		"name":           "fullName",
		"fullname":       "fullName",
		"legalname":      "fullName",
		"phone":          "phoneNumber",
		"mobile":         "phoneNumber",
		"email":          "emailAddress",
		"address":        "currentAddress",
		"homeaddress":    "currentAddress",
		"social":         "ssn",
		"socialsecurity": "ssn",
		"sex":            "gender",
		"marital":        "maritalStatus",
	}
}

type entry struct {
	id         string
	normalized string
}

// Resolver resolves hints against one schema. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	fields  []entry
	exact   map[string]struct{}
	aliases map[string]string
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithAliases replaces the alias table. Keys are normalized before use and
// targets missing from the schema are ignored.
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		r.aliases = make(map[string]string, len(aliases))
		for hint, id := range aliases {
			r.aliases[model.NormalizeID(hint)] = id
		}
	}
}

// WithoutAliases disables the alias step.
func WithoutAliases() Option {
	return func(r *Resolver) {
		r.aliases = nil
	}
}

// New builds a resolver over the schema's fields in canonical order.
func New(schema *model.Schema, opts ...Option) *Resolver {
	r := &Resolver{exact: make(map[string]struct{})}
	WithAliases(DefaultAliases())(r)
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	for _, id := range schema.FieldIDs() {
		r.fields = append(r.fields, entry{id: id, normalized: model.NormalizeID(id)})
		r.exact[id] = struct{}{}
	}

	for hint, id := range r.aliases {
		if _, ok := r.exact[id]; !ok {
			delete(r.aliases, hint)
		}
	}
	return r
}

// Resolve maps hint to a canonical field id.
func (r *Resolver) Resolve(hint string) (Resolution, error) {
	if r == nil || len(r.fields) == 0 {
		return Resolution{}, ErrEmptySchema
	}

	normalized := model.NormalizeID(hint)

	if id, ok := r.aliases[normalized]; ok && normalized != "" {
		return Resolution{FieldID: id, Strategy: StrategyAlias}, nil
	}

	if _, ok := r.exact[hint]; ok {
		return Resolution{FieldID: hint, Strategy: StrategyExact}, nil
	}

	if normalized == "" {
		return Resolution{}, &UnresolvedFieldError{Hint: hint}
	}

	for _, f := range r.fields {
		if f.normalized == normalized {
			return Resolution{FieldID: f.id, Strategy: StrategyNormalized}, nil
		}
	}

	if len(normalized) > MinContainmentLength {
		for _, f := range r.fields {
			if strings.Contains(f.normalized, normalized) || strings.Contains(normalized, f.normalized) {
				return Resolution{FieldID: f.id, Strategy: StrategyContainment}, nil
			}
		}
	}

	return Resolution{}, &UnresolvedFieldError{Hint: hint}
}

// Candidates returns every id the containment step would accept for hint, in
// schema order. It is used to surface ambiguity in diagnostics.
func (r *Resolver) Candidates(hint string) []string {
	if r == nil {
		return nil
	}
	normalized := model.NormalizeID(hint)
	if len(normalized) <= MinContainmentLength {
		return nil
	}
	var out []string
	for _, f := range r.fields {
		if strings.Contains(f.normalized, normalized) || strings.Contains(normalized, f.normalized) {
			out = append(out, f.id)
		}
	}
	return out
}
