// Package tui runs an interview session from a terminal. Each question is
// prompted in section order; typed answers go through the same pipeline as
// voice tool calls, and slash commands expose utterances, raw tool calls and
// navigation.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/review"
	"github.com/goliatone/go-voiceform/pkg/session"
)

const skipOption = "(skip)"

const commandHelp = "Commands: /say <utterance>, /tool <json>, /skip, /clear, /next, /back, /jump <n>, /status, /quit"

type action int

const (
	actionStay action = iota
	actionField
	actionNext
	actionMoved
	actionQuit
)

// Runner drives one session from a terminal.
type Runner struct {
	driver  PromptDriver
	session *session.Session
	theme   Theme
	logger  *logrus.Logger
}

// New constructs a runner over sess using the survey driver unless
// overridden.
func New(sess *session.Session, options ...Option) (*Runner, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := &Runner{
		session: sess,
		theme:   DefaultTheme,
		logger:  logger,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Run prompts until the application is submitted or the user quits. Quitting
// returns ErrAborted.
func (r *Runner) Run(ctx context.Context) (review.Receipt, error) {
	if ctx == nil {
		return review.Receipt{}, errors.New("tui: context is required")
	}

	for {
		if err := ctx.Err(); err != nil {
			return review.Receipt{}, err
		}

		view := r.session.View()
		if view.IsReview {
			receipt, done, err := r.runReview(ctx, view)
			if err != nil || done {
				return receipt, err
			}
			continue
		}

		if err := r.info(ctx, sectionHeader(view)); err != nil {
			return review.Receipt{}, err
		}

		act, err := r.promptSection(ctx, view)
		if err != nil {
			return review.Receipt{}, err
		}
		switch act {
		case actionQuit:
			return review.Receipt{}, ErrAborted
		case actionMoved:
			continue
		}

		if !r.session.Next() {
			missing := missingRequired(r.session.View())
			r.errorf(ctx, "Complete the required questions before continuing: %s", strings.Join(missing, ", "))
		}
	}
}

func sectionHeader(view interview.View) string {
	header := fmt.Sprintf("Section %d of %d: %s (%.0f%% answered, about %d min remaining)",
		view.Cursor+1, len(view.Sections), view.Section, view.Completion*100, view.RemainingMinutes)
	if view.Description != "" {
		header += "\n" + view.Description
	}
	return header
}

func missingRequired(view interview.View) []string {
	var out []string
	for _, field := range view.Fields {
		if field.Required && !field.Answered {
			out = append(out, field.Label)
		}
	}
	return out
}

func (r *Runner) promptSection(ctx context.Context, view interview.View) (action, error) {
	for idx := 0; idx < len(view.Fields); {
		field := view.Fields[idx]
		current, _ := r.session.Interview().Value(field.ID)

		resp, err := r.promptField(ctx, field, current)
		if err != nil {
			return 0, err
		}

		act := r.handle(ctx, field, current, resp)
		switch act {
		case actionStay:
			continue
		case actionField:
			idx++
		default:
			return act, nil
		}
	}
	return actionNext, nil
}

func (r *Runner) promptField(ctx context.Context, field interview.FieldView, current string) (string, error) {
	label := fmt.Sprintf("%d. %s", field.Number, field.Label)
	if field.Required {
		label += " *"
	}
	help := fieldHelp(field.FieldDescriptor)
	check := answerValidator(field.FieldDescriptor)

	switch field.Type {
	case model.FieldTypeSelect, model.FieldTypeRadio:
		options := append(append([]string(nil), field.Options...), skipOption)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: indexOf(field.Options, current),
			Help:         help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	case model.FieldTypeTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: help, Validator: check})
	}

	cfg := InputConfig{
		Message:     label,
		Default:     current,
		Help:        help,
		Placeholder: field.Placeholder,
		Validator:   check,
	}
	if field.Type == model.FieldTypeSSN {
		return r.driver.Password(ctx, cfg)
	}
	return r.driver.Input(ctx, cfg)
}

func fieldHelp(field model.FieldDescriptor) string {
	var parts []string
	if field.Format != "" {
		parts = append(parts, field.Format)
	}
	parts = append(parts, commandHelp)
	return strings.Join(parts, " | ")
}

func (r *Runner) handle(ctx context.Context, field interview.FieldView, current, resp string) action {
	trimmed := strings.TrimSpace(resp)
	switch {
	case trimmed == "" || resp == current:
		return actionField
	case strings.HasPrefix(trimmed, "/"):
		return r.command(ctx, field, trimmed)
	}

	r.session.HandleToolCall(ctx, map[string]any{"fieldId": field.ID, "value": resp})
	r.report(ctx)
	return actionField
}

func (r *Runner) command(ctx context.Context, field interview.FieldView, input string) action {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/say":
		if outcomes := r.session.HandleUtterance(ctx, arg); len(outcomes) == 0 {
			r.errorf(ctx, "Nothing recognized in %q", arg)
		}
		r.report(ctx)
		return actionStay
	case "/tool":
		var payload map[string]any
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(arg, &payload); err != nil {
			r.errorf(ctx, "Invalid tool payload: %v", err)
			return actionStay
		}
		r.session.HandleToolCall(ctx, payload)
		r.report(ctx)
		return actionStay
	case "/skip":
		return actionField
	case "/clear":
		if _, err := r.session.Edit(ctx, field.ID, ""); err != nil {
			r.errorf(ctx, "%v", err)
		}
		return actionStay
	case "/next":
		return actionNext
	case "/back":
		if !r.session.Previous() {
			r.errorf(ctx, "Already at the first section")
			return actionStay
		}
		return actionMoved
	case "/jump":
		n, err := strconv.Atoi(arg)
		if err == nil {
			err = r.session.JumpTo(n - 1)
		}
		if err != nil {
			r.errorf(ctx, "Cannot jump to section %q", arg)
			return actionStay
		}
		return actionMoved
	case "/status":
		view := r.session.View()
		_ = r.info(ctx, fmt.Sprintf("%d of %d answered, about %d min remaining",
			view.AnsweredCount, view.TotalFields, view.RemainingMinutes))
		return actionStay
	case "/quit":
		return actionQuit
	case "/help":
		_ = r.info(ctx, commandHelp)
		return actionStay
	default:
		r.errorf(ctx, "Unknown command %s", name)
		return actionStay
	}
}

func (r *Runner) runReview(ctx context.Context, view interview.View) (review.Receipt, bool, error) {
	summary := review.Build(r.session.Schema(), view.Answers)

	text, err := review.Render(summary)
	if err != nil {
		return review.Receipt{}, true, err
	}
	if err := r.info(ctx, text); err != nil {
		return review.Receipt{}, true, err
	}

	options := make([]string, len(summary.Products))
	var defaults []int
	for i, p := range summary.Products {
		options[i] = p.Name
		if p.Selected {
			defaults = append(defaults, i)
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Life insurance products applied for",
		Options:  options,
		Defaults: defaults,
	})
	if err != nil {
		return review.Receipt{}, true, err
	}
	ids := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(summary.Products) {
			ids = append(ids, summary.Products[idx].ID)
		}
	}
	if err := summary.Select(ids...); err != nil {
		return review.Receipt{}, true, err
	}

	confirmed, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit application?", Default: true})
	if err != nil {
		return review.Receipt{}, true, err
	}
	if !confirmed {
		if !r.session.Previous() {
			return review.Receipt{}, true, ErrAborted
		}
		return review.Receipt{}, false, nil
	}

	receipt, err := review.Submit(summary)
	if err != nil {
		r.errorf(ctx, "%v", err)
		var incomplete *review.IncompleteError
		if errors.As(err, &incomplete) && len(incomplete.Missing) > 0 {
			if idx := r.session.Schema().SectionOf(incomplete.Missing[0]); idx >= 0 {
				_ = r.session.JumpTo(idx)
			}
		}
		return review.Receipt{}, false, nil
	}

	r.logger.WithFields(logrus.Fields{
		"session_id": r.session.ID(),
		"receipt":    receipt.ID,
	}).Info("application submitted")
	_ = r.info(ctx, receipt.Message)
	return receipt, true, nil
}

func (r *Runner) report(ctx context.Context) {
	for _, n := range r.session.Notifications() {
		switch n.Level {
		case session.LevelError, session.LevelWarning:
			r.errorf(ctx, "%s", n.Message)
		default:
			_ = r.info(ctx, n.Message)
		}
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) errorf(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}
