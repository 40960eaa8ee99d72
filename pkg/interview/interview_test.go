package interview_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/model"
)

func gatedSchema(t *testing.T) *model.Schema {
	t.Helper()
	s, err := model.NewSchema("gated",
		model.Section{Name: "Required", Fields: []model.FieldDescriptor{
			{ID: "a", Label: "A", Type: model.FieldTypeText, Required: true},
			{ID: "b", Label: "B", Type: model.FieldTypeText, Required: true},
		}},
		model.Section{Name: "Optional", Fields: []model.FieldDescriptor{
			{ID: "c", Label: "C", Type: model.FieldTypeText},
		}},
		model.Section{Name: "Review"},
	)
	require.NoError(t, err)
	return s
}

func newInterview(t *testing.T, opts ...interview.Option) *interview.Interview {
	t.Helper()
	iv, err := interview.New(gatedSchema(t), opts...)
	require.NoError(t, err)
	return iv
}

func TestNext_GatedOnRequiredFields(t *testing.T) {
	iv := newInterview(t)

	require.NoError(t, iv.Assign("a", "x"))
	assert.False(t, iv.CanAdvance())
	assert.False(t, iv.Next())
	assert.Equal(t, 0, iv.Cursor())

	require.NoError(t, iv.Assign("b", "y"))
	assert.True(t, iv.Next())
	assert.Equal(t, 1, iv.Cursor())
}

func TestNext_HoldsForEverySubset(t *testing.T) {
	ids := []string{"a", "b"}
	for mask := 0; mask < 1<<len(ids); mask++ {
		iv := newInterview(t)
		for bit, id := range ids {
			if mask&(1<<bit) != 0 {
				require.NoError(t, iv.Assign(id, "v"))
			}
		}
		want := mask == 3
		assert.Equal(t, want, iv.Next(), "mask %b", mask)
	}
}

func TestNext_NoOpAtTerminalSection(t *testing.T) {
	iv := newInterview(t)
	require.NoError(t, iv.JumpTo(2))
	assert.True(t, iv.IsReview())
	assert.False(t, iv.CanAdvance())
	assert.False(t, iv.Next())
	assert.Equal(t, 2, iv.Cursor())
}

func TestSectionWithoutRequiredFieldsIsComplete(t *testing.T) {
	iv := newInterview(t)
	assert.True(t, iv.SectionComplete(1))
	assert.True(t, iv.SectionComplete(2))
	assert.False(t, iv.SectionComplete(0))
	assert.False(t, iv.SectionComplete(9))
}

func TestPreviousAndJump(t *testing.T) {
	iv := newInterview(t)

	assert.False(t, iv.Previous())
	require.NoError(t, iv.JumpTo(2))
	assert.Equal(t, 2, iv.Cursor())
	assert.True(t, iv.Previous())
	assert.Equal(t, 1, iv.Cursor())

	assert.ErrorIs(t, iv.JumpTo(3), interview.ErrSectionOutOfRange)
	assert.ErrorIs(t, iv.JumpTo(-1), interview.ErrSectionOutOfRange)
	assert.Equal(t, 1, iv.Cursor())
}

func TestNavigationKeepsAnswers(t *testing.T) {
	iv := newInterview(t)
	require.NoError(t, iv.Assign("a", "1"))
	require.NoError(t, iv.Assign("c", "3"))

	require.NoError(t, iv.JumpTo(2))
	iv.Previous()
	iv.Previous()
	require.NoError(t, iv.JumpTo(1))

	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, iv.Answers())
}

func TestAssign(t *testing.T) {
	iv := newInterview(t)

	assert.ErrorIs(t, iv.Assign("nope", "x"), interview.ErrUnknownField)
	assert.Equal(t, 0, iv.AnsweredCount())

	require.NoError(t, iv.Assign("a", "first"))
	require.NoError(t, iv.Assign("a", "second"))
	v, ok := iv.Value("a")
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, iv.Assign("a", ""))
	_, ok = iv.Value("a")
	assert.False(t, ok, "empty value clears the answer")

	answers := iv.Answers()
	answers["b"] = "mutated copy"
	_, ok = iv.Value("b")
	assert.False(t, ok, "Answers must return a copy")
}

func TestObservers(t *testing.T) {
	var events []interview.Event
	iv := newInterview(t, interview.WithObserver(func(ev interview.Event) {
		events = append(events, ev)
	}))

	require.NoError(t, iv.Assign("a", "1"))
	require.NoError(t, iv.Assign("a", ""))
	require.NoError(t, iv.JumpTo(1))
	assert.True(t, iv.Next())
	_ = iv.Assign("missing", "x")

	kinds := make([]interview.EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []interview.EventKind{
		interview.EventAssigned,
		interview.EventCleared,
		interview.EventNavigated,
		interview.EventNavigated,
	}, kinds)
}

func TestView(t *testing.T) {
	iv := newInterview(t)
	require.NoError(t, iv.Assign("a", "1"))
	require.NoError(t, iv.Assign("b", "2"))
	require.True(t, iv.Next())

	view := iv.View()
	assert.Equal(t, 1, view.Cursor)
	assert.Equal(t, "Optional", view.Section)
	assert.Equal(t, 3, view.StartingQuestion)
	require.Len(t, view.Fields, 1)
	assert.Equal(t, 3, view.Fields[0].Number)
	assert.False(t, view.Fields[0].Answered)
	assert.True(t, view.CanAdvance)
	assert.True(t, view.CanGoBack)
	assert.False(t, view.IsReview)
	assert.Equal(t, 2, view.AnsweredCount)
	assert.Equal(t, 3, view.TotalFields)
	assert.Equal(t, 5, view.RemainingMinutes)
	assert.InDelta(t, 2.0/3.0, view.Completion, 1e-9)

	require.Len(t, view.Sections, 3)
	assert.True(t, view.Sections[0].Complete)
	assert.Equal(t, 2, view.Sections[0].Answered)
	assert.True(t, view.Sections[1].Current)
}

func TestConcurrentAssignmentsAreSerialized(t *testing.T) {
	iv := newInterview(t)

	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = iv.Assign("c", fmt.Sprintf("v%d", n))
			_ = iv.View()
			iv.Next()
			iv.Previous()
		}(n)
	}
	wg.Wait()

	v, ok := iv.Value("c")
	assert.True(t, ok)
	assert.NotEmpty(t, v)
}

func TestNew_RequiresSections(t *testing.T) {
	_, err := interview.New(nil)
	assert.ErrorIs(t, err, interview.ErrNoSections)
}
