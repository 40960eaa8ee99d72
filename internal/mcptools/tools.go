package mcptools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/goliatone/go-voiceform/pkg/review"
)

var sessionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Interview session id. Omit to use the default session.",
}

// MetadataFillFormField describes the fill_form_field tool.
var MetadataFillFormField = &mcp.Tool{
	Name: "fill_form_field",
	Description: "Set one questionnaire answer. The field may be named by its id, its label, or a " +
		"spoken alias such as \"dob\" or \"phone\"; the value is normalized for the field type " +
		"(dates become YYYY-MM-DD, phone numbers (XXX) XXX-XXXX, SSNs XXX-XX-XXXX). " +
		"Returns \"Updated <fieldId>\" or a message explaining why nothing was stored.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty,
			"fieldId": map[string]interface{}{
				"type":        "string",
				"description": "Field identifier or hint. Aliases: field_id, fieldName, name, id.",
			},
			"value": map[string]interface{}{
				"type":        "string",
				"description": "Answer to store. Aliases: text, answer, response.",
			},
		},
	},
}

// MetadataProcessUtterance describes the process_utterance tool.
var MetadataProcessUtterance = &mcp.Tool{
	Name: "process_utterance",
	Description: "Scan a transcribed utterance for answers (name, email, phone, SSN, date of birth, " +
		"address, gender, marital status) and store every value recognized.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty,
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Transcribed speech",
			},
		},
	},
}

// MetadataNavigate describes the navigate tool.
var MetadataNavigate = &mcp.Tool{
	Name: "navigate",
	Description: "Move between questionnaire sections. \"next\" only advances when every required " +
		"question of the current section is answered; \"previous\" and \"jump\" are never blocked.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"action"},
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty,
			"action": map[string]interface{}{
				"type":        "string",
				"description": "Navigation action",
				"enum":        []string{"next", "previous", "jump"},
			},
			"section": map[string]interface{}{
				"type":        "integer",
				"description": "Zero-based section index for jump",
				"minimum":     0,
			},
		},
	},
}

// MetadataGetInterviewState describes the get_interview_state tool.
var MetadataGetInterviewState = &mcp.Tool{
	Name:        "get_interview_state",
	Description: "Return the current section, its questions and answers, and the estimated minutes remaining.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty,
		},
	},
}

// MetadataSubmitApplication describes the submit_application tool.
var MetadataSubmitApplication = &mcp.Tool{
	Name: "submit_application",
	Description: "Submit the application for the selected insurance products. Fails when no product " +
		"is selected or required questions are unanswered.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty,
			"products": map[string]interface{}{
				"type":        "array",
				"description": "Product ids; omit to keep the recommended selection.",
				"items": map[string]interface{}{
					"type": "string",
					"enum": []string{
						review.ProductTermLife,
						review.ProductWholeLife,
						review.ProductMortgage,
						review.ProductIncomeReplacement,
						review.ProductFinalExpense,
					},
				},
			},
		},
	},
}

// OutputFillFormField is the output for the fill_form_field tool.
type OutputFillFormField struct {
	Message string `json:"message"`
}

// InputProcessUtterance is the input for the process_utterance tool.
type InputProcessUtterance struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Outcome reports one value recognized in an utterance.
type Outcome struct {
	Rule     string `json:"rule"`
	FieldID  string `json:"field_id,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Value    string `json:"value,omitempty"`
	Message  string `json:"message"`
	Stored   bool   `json:"stored"`
}

// OutputProcessUtterance is the output for the process_utterance tool.
type OutputProcessUtterance struct {
	Outcomes []Outcome `json:"outcomes"`
}

// InputNavigate is the input for the navigate tool.
type InputNavigate struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Section   *int   `json:"section,omitempty"`
}

// OutputNavigate is the output for the navigate tool.
type OutputNavigate struct {
	Moved   bool   `json:"moved"`
	Cursor  int    `json:"cursor"`
	Section string `json:"section"`
	Message string `json:"message"`
}

// InputGetInterviewState is the input for the get_interview_state tool.
type InputGetInterviewState struct {
	SessionID string `json:"session_id"`
}

// FieldState is one question of the current section.
type FieldState struct {
	Number   int      `json:"number"`
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// OutputGetInterviewState is the output for the get_interview_state tool.
type OutputGetInterviewState struct {
	SessionID        string       `json:"session_id"`
	Cursor           int          `json:"cursor"`
	SectionCount     int          `json:"section_count"`
	Section          string       `json:"section"`
	Description      string       `json:"description,omitempty"`
	Fields           []FieldState `json:"fields"`
	AnsweredCount    int          `json:"answered_count"`
	TotalFields      int          `json:"total_fields"`
	RemainingMinutes int          `json:"remaining_minutes"`
	CanAdvance       bool         `json:"can_advance"`
	IsReview         bool         `json:"is_review"`
}

// InputSubmitApplication is the input for the submit_application tool.
type InputSubmitApplication struct {
	SessionID string   `json:"session_id"`
	Products  []string `json:"products"`
}

// OutputSubmitApplication is the output for the submit_application tool.
type OutputSubmitApplication struct {
	ReceiptID   string   `json:"receipt_id"`
	Products    []string `json:"products"`
	Message     string   `json:"message"`
	SubmittedAt string   `json:"submitted_at"`
}
