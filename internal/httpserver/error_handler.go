package httpserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/review"
	"github.com/goliatone/go-voiceform/pkg/session"
)

// ErrorHandler maps domain errors to HTTP responses and logs them.
type ErrorHandler struct {
	logger *logrus.Logger
}

// NewErrorHandler returns an ErrorHandler logging to logger.
func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{session.ErrSessionNotFound, fiber.StatusNotFound, "SESSION_NOT_FOUND"},
	{interview.ErrUnknownField, fiber.StatusNotFound, "UNKNOWN_FIELD"},
	{interview.ErrSectionOutOfRange, fiber.StatusUnprocessableEntity, "SECTION_OUT_OF_RANGE"},
	{review.ErrUnknownProduct, fiber.StatusBadRequest, "UNKNOWN_PRODUCT"},
	{review.ErrNoProductSelected, fiber.StatusUnprocessableEntity, "NO_PRODUCT_SELECTED"},
	{review.ErrIncomplete, fiber.StatusUnprocessableEntity, "INCOMPLETE_APPLICATION"},
}

// Handle writes the response for err raised by operation.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, operation string) error {
	fields := logrus.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       c.Path(),
		"operation":  operation,
	}

	var respErr *Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(fields).WithField("code", respErr.Code).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: err.Error()})
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		h.logger.WithFields(fields).Warn("Operation rejected")
		body := ErrorResponse{Error: err.Error(), Code: m.code}
		var incomplete *review.IncompleteError
		if errors.As(err, &incomplete) {
			body.Missing = incomplete.Missing
		}
		return c.Status(m.status).JSON(body)
	}

	h.logger.WithFields(fields).Error("Unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL_ERROR",
	})
}

// HandleValidationError answers 400 for a rejected request body.
func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error) error {
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       c.Path(),
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

// HandleSuccess writes data with statusCode, or only the status when data is
// nil.
func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data any) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
