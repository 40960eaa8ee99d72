package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-voiceform/pkg/model"
)

var (
	answerCheck     *validator.Validate
	answerCheckOnce sync.Once
)

func checker() *validator.Validate {
	answerCheckOnce.Do(func() {
		answerCheck = validator.New()
	})
	return answerCheck
}

// answerValidator builds the prompt-side check for field. Empty answers and
// slash commands always pass; dates are left to the canonicalizer, which
// keeps unparseable input as typed.
func answerValidator(field model.FieldDescriptor) func(string) error {
	expected := field.Format
	if expected == "" {
		expected = string(field.Type)
	}

	return func(answer string) error {
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" || strings.HasPrefix(trimmed, "/") {
			return nil
		}
		if field.MaxLength > 0 && utf8.RuneCountInString(answer) > field.MaxLength {
			return fmt.Errorf("%s allows at most %d characters", field.Label, field.MaxLength)
		}

		switch field.Type {
		case model.FieldTypePhone:
			if countDigits(trimmed) < 10 {
				return fmt.Errorf("expected %s", expected)
			}
		case model.FieldTypeSSN:
			if countDigits(trimmed) != 9 || strings.ContainsFunc(trimmed, notSSNRune) {
				return fmt.Errorf("expected %s", expected)
			}
		case model.FieldTypeEmail:
			if err := checker().Var(trimmed, "email"); err != nil {
				return errors.New("expected an email address")
			}
		case model.FieldTypeNumber:
			if err := checker().Var(trimmed, "numeric"); err != nil {
				return fmt.Errorf("expected %s", expected)
			}
		}
		return nil
	}
}

func notSSNRune(r rune) bool {
	return !unicode.IsDigit(r) && r != '-' && r != ' '
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
