package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single-line answer prompt. Placeholder is shown
// next to the message while the field has no answer; Validator runs on every
// submission and a non-nil error re-prompts.
type InputConfig struct {
	Message     string
	Default     string
	Help        string
	Placeholder string
	Validator   func(string) error
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single or multi-select prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int // multi-select only; indices into Options
	Help         string
	PageSize     int
}

// TextAreaConfig configures a multi-line answer prompt.
type TextAreaConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// PromptDriver abstracts the terminal so the interview loop can be tested
// without one and callers can swap implementations.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the interactive driver backed by survey. Info
// messages are written to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

// ask runs one survey prompt, honouring ctx and mapping interrupts to
// ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, out any, validator func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var opts []survey.AskOpt
	if validator != nil {
		opts = append(opts, survey.WithValidator(stringValidator(validator)))
	}
	if err := survey.AskOne(prompt, out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// stringValidator adapts a typed check to survey's answer validator. Non
// string answers (selects, confirms) are never passed a validator.
func stringValidator(fn func(string) error) survey.Validator {
	return func(ans any) error {
		s, ok := ans.(string)
		if !ok {
			return nil
		}
		return fn(s)
	}
}

func promptMessage(message, placeholder, current string) string {
	if placeholder == "" || current != "" {
		return message
	}
	return fmt.Sprintf("%s [%s]", message, placeholder)
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	err := ask(ctx, &survey.Input{
		Message: promptMessage(cfg.Message, cfg.Placeholder, cfg.Default),
		Help:    cfg.Help,
		Default: cfg.Default,
	}, &out, cfg.Validator)
	return out, err
}

// Password masks the answer. survey cannot prefill a masked prompt, so an
// empty submission keeps cfg.Default.
func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	err := ask(ctx, &survey.Password{
		Message: promptMessage(cfg.Message, cfg.Placeholder, cfg.Default),
		Help:    cfg.Help,
	}, &out, cfg.Validator)
	if err == nil && out == "" {
		out = cfg.Default
	}
	return out, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var out bool
	err := ask(ctx, &survey.Confirm{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}, &out, nil)
	return out, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var out string
	if err := ask(ctx, prompt, &out, nil); err != nil {
		return -1, err
	}
	return indexOf(cfg.Options, out), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	if len(cfg.Defaults) > 0 {
		prompt.Default = pick(cfg.Options, cfg.Defaults)
	}
	var out []string
	if err := ask(ctx, prompt, &out, nil); err != nil {
		return nil, err
	}
	return indicesOf(cfg.Options, out), nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var out string
	err := ask(ctx, &survey.Multiline{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}, &out, cfg.Validator)
	return out, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

func indicesOf(options, values []string) []int {
	chosen := make(map[string]bool, len(values))
	for _, v := range values {
		chosen[v] = true
	}
	var out []int
	for i, option := range options {
		if chosen[option] {
			out = append(out, i)
		}
	}
	return out
}

func pick(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
