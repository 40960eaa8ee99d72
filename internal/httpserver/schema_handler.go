package httpserver

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-voiceform/pkg/schema"
)

type schemaHandler struct {
	srv *Server
}

func newSchemaHandler(srv *Server) *schemaHandler {
	return &schemaHandler{srv: srv}
}

func (h *schemaHandler) Start(router fiber.Router) {
	router.Get("/schema", h.Schema)
	router.Get("/schema/openapi", h.OpenAPI)
}

func (h *schemaHandler) Schema(c *fiber.Ctx) error {
	return h.srv.errHandler.HandleSuccess(c, fiber.StatusOK, h.srv.registry.Schema())
}

func (h *schemaHandler) OpenAPI(c *fiber.Ctx) error {
	doc, err := schema.ExportJSON(h.srv.registry.Schema())
	if err != nil {
		return h.srv.errHandler.Handle(c, GetRequestID(c), err, "export_schema")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(doc)
}
