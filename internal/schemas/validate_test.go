package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"doc_type": {"type": ["string", "null"]},
		"checklist": {"type": ["array", "null"]}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	assert.NoError(t, ValidateJSONString(testSchema, `{"doc_type": "tbm_log", "checklist": []}`))
	assert.NoError(t, ValidateJSONString(testSchema, `{"doc_type": null}`))
	assert.NoError(t, ValidateJSONString(testSchema, `{}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"doc_type": 42, "checklist": "nope"}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 2)
	assert.Contains(t, err.Error(), "doc_type")
	assert.Contains(t, err.Error(), "checklist")
}

func TestValidateJSONString_BrokenSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": ["not-a-type"]}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateDocumentPayload(t *testing.T) {
	// The repo schema resolves from the package directory via the parent
	// fallbacks in ResolveSchemaPath.
	require.NotEmpty(t, ResolveSchemaPath(DocumentSchemaPath))

	assert.NoError(t, ValidateDocumentPayload(`{"doc_type": "daily_checklist", "checklist": [{"id": "fall_01", "value": "양호"}]}`))
	assert.NoError(t, ValidateDocumentPayload(`{"doc_type": null, "fields": null}`))

	err := ValidateDocumentPayload(`{"checklist": {"id": "fall_01"}}`)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestResolveSchemaPath_Missing(t *testing.T) {
	assert.Empty(t, ResolveSchemaPath("schemas/does_not_exist.schema.json"))
}
