package httpserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

// NewFiber returns the fiber app with the JSON codec and error envelope used
// by every handler.
func NewFiber() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "Voiceform",
		BodyLimit:             1 * 1024 * 1024,
		StrictRouting:         false,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
		ErrorHandler:          fallbackErrorHandler,
	})
}

func fallbackErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
