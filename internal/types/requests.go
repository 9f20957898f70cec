package types

import (
	"github.com/go-playground/validator/v10"
)

// ValidateRequest is the request body for POST /api/validate. The document
// payload is the untyped record produced by the extraction collaborator;
// its internal shape is the sanitizer's concern, not the transport's.
type ValidateRequest struct {
	ProjectID string         `json:"project_id,omitempty" validate:"omitempty,uuid4"`
	Document  map[string]any `json:"document" validate:"required"`
	Persist   bool           `json:"persist,omitempty"`
}

// ExtractRequest is the request body for POST /api/extract.
type ExtractRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	MimeType    string `json:"mime_type,omitempty" validate:"omitempty,oneof=image/jpeg image/png application/pdf"`
}

// CreateProjectRequest is the request body for POST /api/projects.
type CreateProjectRequest struct {
	Name        string            `json:"name" validate:"required,min=1"`
	ContextText string            `json:"context_text,omitempty"`
	MasterPlan  *MasterSafetyPlan `json:"master_plan,omitempty"`
}

// Validate validates the ValidateRequest using the validator.
func (r *ValidateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ExtractRequest using the validator.
func (r *ExtractRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateProjectRequest using the validator.
func (r *CreateProjectRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
