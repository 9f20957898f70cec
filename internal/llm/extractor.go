// Package llm - extractor.go turns a scanned safety document into the
// untyped structured record consumed by the sanitizer.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// extractionPrompt describes the canonical record shape. Field names must
// match what the sanitizer reads; the model is told to emit null rather than
// guess, because downstream treats absent data as "no evidence".
const extractionPrompt = `You are an expert reader of Korean industrial-safety inspection documents
(daily checklists, risk assessments, TBM logs, work permits).
Extract the document in the image into JSON. COPY VALUES FROM THE DOCUMENT - do not infer or invent.

Return ONLY valid JSON matching this exact structure:
{
  "doc_type": "daily_checklist" | "risk_assessment" | "tbm_log" | "work_permit" | "unknown",
  "fields": {
    "inspection_date": "YYYY-MM-DD or null",
    "site_name": "string or null",
    "work_description": "string or null",
    "worker_count": number or null
  },
  "signatures": {
    "supervisor": "present" | "missing",
    "site_manager": "present" | "missing"
  },
  "inspector_name": "string or null",
  "declared_risk_level": "low" | "medium" | "high" | "critical" | null,
  "checklist": [
    {"id": "taxonomy id like fall_01, ppe_03", "category": "string", "name_ko": "original Korean item text", "value": "checked" | "unchecked" | "not_applicable" | "unset"}
  ]
}

Checklist taxonomy ids by category:
- fall (fall-prevention): fall_01 work at height, fall_02 guardrail/safety net, ppe_03 safety harness
- fire: fire_01 hot work, fire_02 fire extinguisher placed
- confined (confined-space): confined_01 entry, confined_02 oxygen measurement, confined_03 ventilation
- excavation: excav_01 excavation work, excav_02 shoring, excav_03 exit ladder
- electrical: elec_01 electrical work, elec_02 lockout/tagout
- ppe: ppe_01 helmet, ppe_02 safety shoes, ppe_03 safety harness

IMPORTANT:
- A cell you cannot read is null (fields) or "unset" (checklist values), never a guess.
- Keep the original Korean item text in name_ko.
- Return ONLY the JSON object, no markdown, no explanation, no code blocks.`

// ExtractDocument sends a scanned document image to the model and returns
// the raw record for the sanitizer. The record is untrusted: the sanitizer
// owns all structural decisions about it.
func ExtractDocument(ctx context.Context, client Client, image []byte, mimeType string) (map[string]any, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	text, err := client.GenerateVisionJSON(ctx, extractionPrompt, image, mimeType, TierStandard)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, fmt.Errorf("extraction returned non-JSON output: %w", err)
	}
	return record, nil
}
