// Package mcptools exposes interview sessions to a voice agent as Model
// Context Protocol tools.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/review"
	"github.com/goliatone/go-voiceform/pkg/session"
)

// Toolset binds the tool handlers to a session registry. Calls without a
// session_id share one default session created on first use.
type Toolset struct {
	registry *session.Registry
	logger   *logrus.Logger

	mu        sync.Mutex
	defaultID string
}

// NewToolset returns handlers backed by registry.
func NewToolset(registry *session.Registry, logger *logrus.Logger) *Toolset {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Toolset{registry: registry, logger: logger}
}

func (t *Toolset) session(id string) (*session.Session, error) {
	if id = strings.TrimSpace(id); id != "" {
		return t.registry.Get(id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.defaultID != "" {
		if sess, err := t.registry.Get(t.defaultID); err == nil {
			return sess, nil
		}
	}
	sess, err := t.registry.Create()
	if err != nil {
		return nil, err
	}
	t.defaultID = sess.ID()
	t.logger.WithField("session_id", sess.ID()).Info("default session created")
	return sess, nil
}

func textResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

// FillFormField stores one answer. Unresolvable fields and missing
// parameters are reported in the message rather than as tool errors.
func (t *Toolset) FillFormField(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, OutputFillFormField, error) {
	sessionID, _ := input["session_id"].(string)
	sess, err := t.session(sessionID)
	if err != nil {
		return nil, OutputFillFormField{}, err
	}

	payload := make(map[string]any, len(input))
	for k, v := range input {
		if k != "session_id" {
			payload[k] = v
		}
	}

	message := sess.HandleToolCall(ctx, payload)
	return textResult(message), OutputFillFormField{Message: message}, nil
}

// ProcessUtterance extracts and stores every recognized value.
func (t *Toolset) ProcessUtterance(ctx context.Context, _ *mcp.CallToolRequest, input InputProcessUtterance) (*mcp.CallToolResult, OutputProcessUtterance, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, OutputProcessUtterance{}, fmt.Errorf("text is required")
	}
	sess, err := t.session(input.SessionID)
	if err != nil {
		return nil, OutputProcessUtterance{}, err
	}

	out := OutputProcessUtterance{Outcomes: []Outcome{}}
	messages := make([]string, 0)
	for _, o := range sess.HandleUtterance(ctx, input.Text) {
		out.Outcomes = append(out.Outcomes, Outcome{
			Rule:     string(o.Rule),
			FieldID:  o.FieldID,
			Strategy: string(o.Strategy),
			Value:    o.Value,
			Message:  o.Message,
			Stored:   o.OK(),
		})
		messages = append(messages, o.Message)
	}
	if len(messages) == 0 {
		messages = append(messages, "No answers recognized")
	}
	return textResult(strings.Join(messages, "\n")), out, nil
}

// Navigate moves between sections.
func (t *Toolset) Navigate(ctx context.Context, _ *mcp.CallToolRequest, input InputNavigate) (*mcp.CallToolResult, OutputNavigate, error) {
	sess, err := t.session(input.SessionID)
	if err != nil {
		return nil, OutputNavigate{}, err
	}

	var moved bool
	switch input.Action {
	case "next":
		moved = sess.Next()
	case "previous":
		moved = sess.Previous()
	case "jump":
		if input.Section == nil {
			return nil, OutputNavigate{}, fmt.Errorf("section is required for jump")
		}
		if err := sess.JumpTo(*input.Section); err != nil {
			return nil, OutputNavigate{}, err
		}
		moved = true
	default:
		return nil, OutputNavigate{}, fmt.Errorf("unknown action %q", input.Action)
	}

	view := sess.View()
	out := OutputNavigate{Moved: moved, Cursor: view.Cursor, Section: view.Section}
	switch {
	case moved:
		out.Message = fmt.Sprintf("Now on section %d: %s", view.Cursor+1, view.Section)
	case input.Action == "next" && !view.IsReview:
		out.Message = "Answer the required questions in " + view.Section + " before continuing"
	default:
		out.Message = "Staying on " + view.Section
	}
	return textResult(out.Message), out, nil
}

// GetInterviewState reports the current section and progress.
func (t *Toolset) GetInterviewState(ctx context.Context, _ *mcp.CallToolRequest, input InputGetInterviewState) (*mcp.CallToolResult, OutputGetInterviewState, error) {
	sess, err := t.session(input.SessionID)
	if err != nil {
		return nil, OutputGetInterviewState{}, err
	}

	view := sess.View()
	out := OutputGetInterviewState{
		SessionID:        sess.ID(),
		Cursor:           view.Cursor,
		SectionCount:     len(view.Sections),
		Section:          view.Section,
		Description:      view.Description,
		Fields:           make([]FieldState, 0, len(view.Fields)),
		AnsweredCount:    view.AnsweredCount,
		TotalFields:      view.TotalFields,
		RemainingMinutes: view.RemainingMinutes,
		CanAdvance:       view.CanAdvance,
		IsReview:         view.IsReview,
	}
	for _, f := range view.Fields {
		out.Fields = append(out.Fields, FieldState{
			Number:   f.Number,
			ID:       f.ID,
			Label:    f.Label,
			Type:     string(f.Type),
			Required: f.Required,
			Options:  f.Options,
			Value:    f.Value,
		})
	}
	return nil, out, nil
}

// SubmitApplication validates and submits the review.
func (t *Toolset) SubmitApplication(ctx context.Context, _ *mcp.CallToolRequest, input InputSubmitApplication) (*mcp.CallToolResult, OutputSubmitApplication, error) {
	sess, err := t.session(input.SessionID)
	if err != nil {
		return nil, OutputSubmitApplication{}, err
	}

	summary := review.Build(sess.Schema(), sess.Interview().Answers())
	if input.Products != nil {
		if err := summary.Select(input.Products...); err != nil {
			return nil, OutputSubmitApplication{}, err
		}
	}

	receipt, err := review.Submit(summary)
	if err != nil {
		var incomplete *review.IncompleteError
		if errors.As(err, &incomplete) {
			return nil, OutputSubmitApplication{}, fmt.Errorf("%d required answers missing, first: %s",
				len(incomplete.Missing), incomplete.Missing[0])
		}
		return nil, OutputSubmitApplication{}, err
	}

	t.logger.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"receipt_id": receipt.ID,
	}).Info("application submitted")
	return textResult(receipt.Message), OutputSubmitApplication{
		ReceiptID:   receipt.ID,
		Products:    receipt.Products,
		Message:     receipt.Message,
		SubmittedAt: receipt.SubmittedAt.Format(time.RFC3339),
	}, nil
}
