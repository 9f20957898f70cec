// Package sanitize normalizes untrusted extraction payloads into the
// canonical document model.
package sanitize

import "fmt"

// SchemaError indicates the input record is structurally unusable and no
// partial result can be produced. It is fatal to the validation request.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("document content missing: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("document content missing: %s", e.Message)
}

// NonSafetyDocumentError indicates the record parsed but carries no
// discernible safety-document signal: no checklist, no core fields, no
// declared risk level and no signature evidence. It is fatal and maps to a
// distinct user-facing response.
type NonSafetyDocumentError struct{}

func (e *NonSafetyDocumentError) Error() string {
	return "not recognized as a safety document"
}
