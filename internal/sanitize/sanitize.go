package sanitize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/minjae/safety-inspector/internal/types"
)

// Sanitize converts an untyped extraction record into a canonical Document.
//
// The upstream extractor is probabilistic, so partial data is expected:
// missing optional fields become nil/unknown/unset, unrecognized doc types
// coerce to unknown, and malformed checklist entries are filtered rather
// than propagated. Only two conditions are fatal: a structurally unusable
// record (*SchemaError) and a record with no safety-document signal at all
// (*NonSafetyDocumentError).
func Sanitize(raw map[string]any) (*types.Document, error) {
	if raw == nil {
		return nil, &SchemaError{Message: "record is empty"}
	}

	doc := &types.Document{
		DocType: types.DocTypeUnknown,
		Signatures: types.Signatures{
			Supervisor:  types.SignatureUnknown,
			SiteManager: types.SignatureUnknown,
		},
		Checklist: []types.ChecklistItem{},
	}

	if s, ok := stringField(raw, "doc_type"); ok {
		doc.DocType = types.ParseDocType(s)
	}

	// Core fields may arrive nested under "fields" or flat at the top
	// level depending on the extractor prompt version. Nested wins.
	fieldSrc := raw
	if nested, ok := raw["fields"].(map[string]any); ok {
		fieldSrc = nested
	} else if _, present := raw["fields"]; present && raw["fields"] != nil {
		return nil, &SchemaError{Field: "fields", Message: "must be an object"}
	}
	doc.Fields = sanitizeFields(fieldSrc)

	if sigs, ok := raw["signatures"].(map[string]any); ok {
		if s, ok := stringField(sigs, "supervisor"); ok {
			doc.Signatures.Supervisor = types.ParseSignatureStatus(s)
		}
		if s, ok := stringField(sigs, "site_manager"); ok {
			doc.Signatures.SiteManager = types.ParseSignatureStatus(s)
		}
	}

	if s, ok := stringField(raw, "inspector_name"); ok && strings.TrimSpace(s) != "" {
		name := strings.TrimSpace(s)
		doc.InspectorName = &name
	}

	if s, ok := stringField(raw, "declared_risk_level"); ok {
		if level, known := types.ParseRiskLevel(s); known {
			doc.DeclaredRiskLevel = &level
		}
	}

	checklist, err := sanitizeChecklist(raw["checklist"])
	if err != nil {
		return nil, err
	}
	doc.Checklist = checklist

	if !hasSafetySignal(doc) {
		return nil, &NonSafetyDocumentError{}
	}

	return doc, nil
}

// SanitizeJSON parses a raw JSON payload and sanitizes it. Payloads that are
// not a JSON object are structural failures.
func SanitizeJSON(data []byte) (*types.Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaError{Message: "record is not a JSON object"}
	}
	return Sanitize(raw)
}

func sanitizeFields(src map[string]any) types.DocumentFields {
	var f types.DocumentFields
	if s, ok := stringField(src, "inspection_date"); ok && strings.TrimSpace(s) != "" {
		v := strings.TrimSpace(s)
		f.InspectionDate = &v
	}
	if s, ok := stringField(src, "site_name"); ok && strings.TrimSpace(s) != "" {
		v := strings.TrimSpace(s)
		f.SiteName = &v
	}
	if s, ok := stringField(src, "work_description"); ok && strings.TrimSpace(s) != "" {
		v := strings.TrimSpace(s)
		f.WorkDescription = &v
	}
	if n, ok := intField(src, "worker_count"); ok && n >= 0 {
		f.WorkerCount = &n
	}
	return f
}

// sanitizeChecklist filters malformed entries instead of propagating them.
// An entry without a usable id cannot be keyed and is dropped; an entry with
// an id but no readable value is kept as Unset so completeness scoring can
// see it. Duplicate ids keep the first occurrence.
func sanitizeChecklist(raw any) ([]types.ChecklistItem, error) {
	if raw == nil {
		return []types.ChecklistItem{}, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &SchemaError{Field: "checklist", Message: "must be an array"}
	}

	items := make([]types.ChecklistItem, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, _ := stringField(m, "id")
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}

		item := types.ChecklistItem{ID: id, Value: types.CheckUnset}
		if s, ok := stringField(m, "category"); ok {
			item.Category = strings.TrimSpace(s)
		}
		if s, ok := stringField(m, "name_ko"); ok {
			item.NameKo = strings.TrimSpace(s)
		}
		switch v := m["value"].(type) {
		case string:
			item.Value = types.ParseCheckValue(v)
		case bool:
			if v {
				item.Value = types.CheckChecked
			} else {
				item.Value = types.CheckUnchecked
			}
		}

		seen[id] = true
		items = append(items, item)
	}
	return items, nil
}

// hasSafetySignal reports whether the record contains anything that marks it
// as a safety document: a checklist entry, a core field, a declared risk
// level, or signature evidence.
func hasSafetySignal(doc *types.Document) bool {
	if len(doc.Checklist) > 0 {
		return true
	}
	f := doc.Fields
	if f.InspectionDate != nil || f.SiteName != nil || f.WorkDescription != nil || f.WorkerCount != nil {
		return true
	}
	if doc.DeclaredRiskLevel != nil || doc.InspectorName != nil {
		return true
	}
	if doc.Signatures.Supervisor != types.SignatureUnknown || doc.Signatures.SiteManager != types.SignatureUnknown {
		return true
	}
	return doc.DocType != types.DocTypeUnknown
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
