package dto

import (
	"encoding/json"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// FormSubmission is one decoded request against the form workflow.
type FormSubmission struct {
	Kind      models.EntityKind
	Mode      models.FormMode
	ID        string
	Partial   bool
	Payload   json.RawMessage
	Actor     models.Actor
	IP        string
	UserAgent string
}

// FormState is the outcome reported back to the dashboard form.
type FormState struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
}

