package interview

import (
	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/progress"
)

// FieldView is the display projection of one field.
type FieldView struct {
	model.FieldDescriptor
	Number   int    `json:"number"`
	Value    string `json:"value,omitempty"`
	Answered bool   `json:"answered"`
}

// SectionView is the display projection of one section.
type SectionView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Current  bool   `json:"current"`
	Complete bool   `json:"complete"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

// View is a read-only snapshot for display layers. Mutations go through
// Assign and the navigation methods, never through a View.
type View struct {
	Cursor           int               `json:"cursor"`
	Section          string            `json:"section"`
	Description      string            `json:"description,omitempty"`
	StartingQuestion int               `json:"startingQuestion"`
	Fields           []FieldView       `json:"fields"`
	Sections         []SectionView     `json:"sections"`
	Answers          map[string]string `json:"answers"`
	AnsweredCount    int               `json:"answeredCount"`
	TotalFields      int               `json:"totalFields"`
	RemainingMinutes int               `json:"remainingMinutes"`
	Completion       float64           `json:"completion"`
	CanAdvance       bool              `json:"canAdvance"`
	CanGoBack        bool              `json:"canGoBack"`
	IsReview         bool              `json:"isReview"`
}

// View captures a consistent snapshot of the interview.
func (i *Interview) View() View {
	i.mu.Lock()
	defer i.mu.Unlock()

	last := i.schema.SectionCount() - 1
	current, _ := i.schema.Section(i.cursor)
	start := i.schema.StartingQuestionNumber(i.cursor)

	fields := make([]FieldView, len(current.Fields))
	for idx, field := range current.Fields {
		value := i.answers[field.ID]
		fields[idx] = FieldView{
			FieldDescriptor: field,
			Number:          start + idx,
			Value:           value,
			Answered:        value != "",
		}
	}

	sections := make([]SectionView, i.schema.SectionCount())
	for idx, section := range i.schema.Sections {
		answered := 0
		for _, field := range section.Fields {
			if i.answers[field.ID] != "" {
				answered++
			}
		}
		sections[idx] = SectionView{
			Index:    idx,
			Name:     section.Name,
			Current:  idx == i.cursor,
			Complete: i.sectionCompleteLocked(idx),
			Answered: answered,
			Total:    len(section.Fields),
		}
	}

	total := i.schema.TotalFields()
	return View{
		Cursor:           i.cursor,
		Section:          current.Name,
		Description:      current.Description,
		StartingQuestion: start,
		Fields:           fields,
		Sections:         sections,
		Answers:          i.copyAnswersLocked(),
		AnsweredCount:    len(i.answers),
		TotalFields:      total,
		RemainingMinutes: i.estimator.Remaining(len(i.answers), total),
		Completion:       progress.Fraction(len(i.answers), total),
		CanAdvance:       i.cursor < last && i.sectionCompleteLocked(i.cursor),
		CanGoBack:        i.cursor > 0,
		IsReview:         i.cursor == last,
	}
}
