package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/minjae/safety-inspector/internal/config"
	"github.com/minjae/safety-inspector/internal/sanitize"
)

// ErrProjectNotFound indicates the referenced project does not exist.
type ErrProjectNotFound struct {
	ProjectID uuid.UUID
}

func (e *ErrProjectNotFound) Error() string {
	return fmt.Sprintf("project not found: %s", e.ProjectID)
}

// ErrReportNotFound indicates the referenced report does not exist.
type ErrReportNotFound struct {
	ReportID uuid.UUID
}

func (e *ErrReportNotFound) Error() string {
	return fmt.Sprintf("report not found: %s", e.ReportID)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// The two fatal validation error kinds are user-input problems, not server
// faults; configuration errors are the opposite.
func HTTPStatus(err error) int {
	var schemaErr *sanitize.SchemaError
	var nonSafetyErr *sanitize.NonSafetyDocumentError
	var configErr *config.ConfigurationError

	switch {
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &nonSafetyErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	}

	switch err.(type) {
	case *ErrProjectNotFound, *ErrReportNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage maps an error to the non-technical message shown to end
// users. Fatal sanitizer errors get their distinct, stable wording; other
// errors fall back to their own text.
func UserMessage(err error) string {
	var schemaErr *sanitize.SchemaError
	var nonSafetyErr *sanitize.NonSafetyDocumentError

	switch {
	case errors.As(err, &schemaErr):
		return "document content missing"
	case errors.As(err, &nonSafetyErr):
		return "not recognized as a safety document"
	default:
		return err.Error()
	}
}
