// Package review builds the end-of-interview summary: the products the
// applicant is applying for, coverage, per-section completion and schema
// conformance issues. It also renders that summary as text and gates
// submission.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/schema"
)

var (
	// ErrNoProductSelected is returned by Submit when every product is
	// deselected.
	ErrNoProductSelected = errors.New("review: select at least one insurance product")
	// ErrIncomplete is returned by Submit when required answers are missing.
	ErrIncomplete = errors.New("review: required answers missing")
	// ErrUnknownProduct is returned by Toggle for ids outside the catalogue.
	ErrUnknownProduct = errors.New("review: unknown product")
)

// IncompleteError lists the required field ids still unanswered.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncomplete.Error(), strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

// Coverage is the requested amount and payment frequency.
type Coverage struct {
	Amount    string `json:"amount,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// Highlight is one applicant detail shown on the summary.
type Highlight struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SectionStatus reports completion for one section.
type SectionStatus struct {
	Index            int    `json:"index"`
	Name             string `json:"name"`
	Answered         int    `json:"answered"`
	Total            int    `json:"total"`
	Required         int    `json:"required"`
	RequiredAnswered int    `json:"requiredAnswered"`
	Complete         bool   `json:"complete"`
}

// Summary is the review page model.
type Summary struct {
	Title         string          `json:"title"`
	Products      []Product       `json:"products"`
	Coverage      Coverage        `json:"coverage"`
	Highlights    []Highlight     `json:"highlights,omitempty"`
	Sections      []SectionStatus `json:"sections"`
	Missing       []string        `json:"missing,omitempty"`
	Issues        []schema.Issue  `json:"issues,omitempty"`
	AnsweredCount int             `json:"answeredCount"`
	TotalFields   int             `json:"totalFields"`
}

var highlightFields = []struct {
	id    string
	label string
}{
	{"fullName", "Applicant"},
	{"dateOfBirth", "Date of Birth"},
	{"employmentStatus", "Employment"},
	{"tobaccoLast12Months", "Tobacco Use"},
}

// Build assembles the summary for answers collected against s.
func Build(s *model.Schema, answers map[string]string) Summary {
	summary := Summary{
		Title:       s.Title,
		Products:    Products(answers),
		TotalFields: s.TotalFields(),
		Coverage: Coverage{
			Amount:    answers["desiredCoverageAmount"],
			Frequency: answers["premiumPaymentFrequency"],
		},
	}

	for _, h := range highlightFields {
		if v := answers[h.id]; v != "" && s.Has(h.id) {
			summary.Highlights = append(summary.Highlights, Highlight{Label: h.label, Value: v})
		}
	}

	for i, section := range s.Sections {
		status := SectionStatus{Index: i, Name: section.Name, Total: len(section.Fields)}
		for _, field := range section.Fields {
			_, answered := answers[field.ID]
			if answered {
				status.Answered++
			}
			if !field.Required {
				continue
			}
			status.Required++
			if answered {
				status.RequiredAnswered++
			} else {
				summary.Missing = append(summary.Missing, field.ID)
			}
		}
		status.Complete = status.Required == status.RequiredAnswered
		summary.AnsweredCount += status.Answered
		summary.Sections = append(summary.Sections, status)
	}

	summary.Issues = schema.Conformance(s, answers)
	return summary
}

// Toggle flips the selection of product id.
func (s *Summary) Toggle(id string) error {
	for i := range s.Products {
		if s.Products[i].ID == id {
			s.Products[i].Selected = !s.Products[i].Selected
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
}

// Select sets the selection to exactly ids. Unknown ids are rejected and
// leave the selection unchanged.
func (s *Summary) Select(ids ...string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !s.hasProduct(id) {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
		}
		want[id] = true
	}
	for i := range s.Products {
		s.Products[i].Selected = want[s.Products[i].ID]
	}
	return nil
}

func (s *Summary) hasProduct(id string) bool {
	for _, p := range s.Products {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Selected lists the selected product ids in catalogue order.
func (s Summary) Selected() []string {
	var out []string
	for _, p := range s.Products {
		if p.Selected {
			out = append(out, p.ID)
		}
	}
	return out
}

// Complete reports whether every required field is answered.
func (s Summary) Complete() bool {
	return len(s.Missing) == 0
}

// Receipt acknowledges a submitted application.
type Receipt struct {
	ID          string    `json:"id"`
	Products    []string  `json:"products"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submit validates the summary for submission.
func Submit(summary Summary) (Receipt, error) {
	selected := summary.Selected()
	if len(selected) == 0 {
		return Receipt{}, ErrNoProductSelected
	}
	if !summary.Complete() {
		missing := append([]string(nil), summary.Missing...)
		return Receipt{}, &IncompleteError{Missing: missing}
	}

	noun := "products"
	if len(selected) == 1 {
		noun = "product"
	}
	return Receipt{
		ID:          ulid.Make().String(),
		Products:    selected,
		Message:     fmt.Sprintf("Application submitted: %d %s selected", len(selected), noun),
		SubmittedAt: time.Now().UTC(),
	}, nil
}
