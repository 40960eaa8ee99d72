package httpserver

import (
	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/session"
)

type utteranceRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type editRequest struct {
	Value *string `json:"value" validate:"required,max=2000"`
}

type jumpRequest struct {
	Section *int `json:"section" validate:"required,gte=0"`
}

type submitRequest struct {
	Products []string `json:"products" validate:"omitempty,dive,required"`
}

type sessionResponse struct {
	ID   string         `json:"id"`
	View interview.View `json:"view"`
}

type toolCallResponse struct {
	Message string         `json:"message"`
	View    interview.View `json:"view"`
}

type utteranceResponse struct {
	Outcomes []session.Outcome `json:"outcomes"`
	View     interview.View    `json:"view"`
}

type editResponse struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

type navigationResponse struct {
	Moved bool           `json:"moved"`
	View  interview.View `json:"view"`
}
