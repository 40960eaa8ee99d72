package httpserver

import (
	"context"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/review"
	"github.com/goliatone/go-voiceform/pkg/session"
)

type sessionHandler struct {
	srv *Server
}

func newSessionHandler(srv *Server) *sessionHandler {
	return &sessionHandler{srv: srv}
}

func (h *sessionHandler) Start(router fiber.Router) {
	sessions := router.Group("/sessions")

	sessions.Post("/", h.Create)
	sessions.Get("/", h.List)
	sessions.Get("/:id", h.Get)
	sessions.Delete("/:id", h.Delete)

	sessions.Post("/:id/tool-calls", h.ToolCall)
	sessions.Post("/:id/utterances", h.Utterance)
	sessions.Put("/:id/fields/:field", h.EditField)

	sessions.Post("/:id/next", h.Next)
	sessions.Post("/:id/previous", h.Previous)
	sessions.Post("/:id/jump", h.Jump)

	sessions.Get("/:id/notifications", h.Notifications)
	sessions.Get("/:id/review", h.Review)
	sessions.Post("/:id/submit", h.Submit)
}

func requestContext(c *fiber.Ctx) context.Context {
	return session.WithRequestID(c.UserContext(), GetRequestID(c))
}

func decodeBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return ErrInvalidBody
	}
	if err := jsoniter.Unmarshal(c.Body(), v); err != nil {
		return &Error{Code: fiber.StatusBadRequest, Err: err}
	}
	return nil
}

func (h *sessionHandler) lookup(c *fiber.Ctx) (*session.Session, error) {
	return h.srv.registry.Get(c.Params("id"))
}

func (h *sessionHandler) Create(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.srv.registry.Create()
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "create_session")
	}

	h.srv.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sess.ID(),
	}).Info("Session created")
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusCreated, sessionResponse{ID: sess.ID(), View: sess.View()})
}

func (h *sessionHandler) List(c *fiber.Ctx) error {
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, fiber.Map{"sessions": h.srv.registry.IDs()})
}

func (h *sessionHandler) Get(c *fiber.Ctx) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, GetRequestID(c), err, "get_session")
	}
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, sessionResponse{ID: sess.ID(), View: sess.View()})
}

func (h *sessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.srv.registry.Delete(c.Params("id")); err != nil {
		return h.srv.errHandler.Handle(c, GetRequestID(c), err, "delete_session")
	}
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusNoContent, nil)
}

// ToolCall forwards the raw payload; a rejected payload still answers 200
// with the acknowledgement text, matching what a voice agent receives.
func (h *sessionHandler) ToolCall(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "tool_call")
	}

	var payload map[string]any
	if err := decodeBody(c, &payload); err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "tool_call")
	}

	message := sess.HandleToolCall(requestContext(c), payload)
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, toolCallResponse{Message: message, View: sess.View()})
}

func (h *sessionHandler) Utterance(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "utterance")
	}

	var req utteranceRequest
	if err := decodeBody(c, &req); err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "utterance")
	}
	if err := h.srv.validator.Struct(req); err != nil {
		return h.srv.errHandler.HandleValidationError(c, requestID, err)
	}

	outcomes := sess.HandleUtterance(requestContext(c), req.Text)
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, utteranceResponse{Outcomes: outcomes, View: sess.View()})
}

func (h *sessionHandler) EditField(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "edit_field")
	}

	var req editRequest
	if err := decodeBody(c, &req); err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "edit_field")
	}
	if err := h.srv.validator.Struct(req); err != nil {
		return h.srv.errHandler.HandleValidationError(c, requestID, err)
	}

	fieldID := c.Params("field")
	value, err := sess.Edit(requestContext(c), fieldID, *req.Value)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "edit_field")
	}
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, editResponse{FieldID: fieldID, Value: value})
}

func (h *sessionHandler) Next(c *fiber.Ctx) error {
	return h.navigate(c, "next", (*session.Session).Next)
}

func (h *sessionHandler) Previous(c *fiber.Ctx) error {
	return h.navigate(c, "previous", (*session.Session).Previous)
}

func (h *sessionHandler) navigate(c *fiber.Ctx, operation string, move func(*session.Session) bool) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, GetRequestID(c), err, operation)
	}
	moved := move(sess)
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, navigationResponse{Moved: moved, View: sess.View()})
}

func (h *sessionHandler) Jump(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "jump")
	}

	var req jumpRequest
	if err := decodeBody(c, &req); err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "jump")
	}
	if err := h.srv.validator.Struct(req); err != nil {
		return h.srv.errHandler.HandleValidationError(c, requestID, err)
	}

	if err := sess.JumpTo(*req.Section); err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "jump")
	}
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, navigationResponse{Moved: true, View: sess.View()})
}

func (h *sessionHandler) Notifications(c *fiber.Ctx) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, GetRequestID(c), err, "notifications")
	}
	notes := sess.Notifications()
	if notes == nil {
		notes = []session.Notification{}
	}
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, fiber.Map{"notifications": notes})
}

// Review answers JSON, or the rendered text summary with ?format=text.
func (h *sessionHandler) Review(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "review")
	}

	summary := review.Build(sess.Schema(), sess.Interview().Answers())
	if c.Query("format") != "text" {
		return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, summary)
	}

	text, err := review.Render(summary)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "review")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(text)
}

func (h *sessionHandler) Submit(c *fiber.Ctx) error {
	requestID := GetRequestID(c)
	sess, err := h.lookup(c)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "submit")
	}

	var req submitRequest
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &req); err != nil {
			return h.srv.errHandler.Handle(c, requestID, err, "submit")
		}
		if err := h.srv.validator.Struct(req); err != nil {
			return h.srv.errHandler.HandleValidationError(c, requestID, err)
		}
	}

	summary := review.Build(sess.Schema(), sess.Interview().Answers())
	if req.Products != nil {
		if err := summary.Select(req.Products...); err != nil {
			return h.srv.errHandler.Handle(c, requestID, err, "submit")
		}
	}

	receipt, err := review.Submit(summary)
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "submit")
	}

	h.srv.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sess.ID(),
		"receipt_id": receipt.ID,
		"products":   receipt.Products,
	}).Info("Application submitted")
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusCreated, receipt)
}
