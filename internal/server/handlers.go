package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/minjae/safety-inspector/internal/llm"
	"github.com/minjae/safety-inspector/internal/schemas"
	"github.com/minjae/safety-inspector/internal/types"
)

// handleValidate runs the full validation pipeline over an extraction
// payload. With persist=true and a project id, the validated report is
// filed under the project and the new report id is returned.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req types.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Envelope check before the sanitizer sees the payload. Only structural
	// garbage is rejected here; partial content is the sanitizer's job.
	payloadJSON, err := json.Marshal(req.Document)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid document payload")
		return
	}
	if err := schemas.ValidateDocumentPayload(string(payloadJSON)); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			s.errorResponse(w, http.StatusBadRequest, ve.Error())
			return
		}
		log.Printf("[WARN] document schema unavailable, continuing: %v", err)
	}

	projectID := uuid.Nil
	if req.ProjectID != "" {
		projectID, err = uuid.Parse(req.ProjectID)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid project_id")
			return
		}
	}

	result, err := s.engine.Validate(r.Context(), req.Document, projectID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	response := map[string]any{
		"document": result.Document,
		"issues":   result.Issues,
		"risk":     result.Risk,
		"stages":   result.Stages,
	}

	if req.Persist && projectID != uuid.Nil {
		reportID, err := s.store.SaveReport(r.Context(), projectID, result.Document, result.Issues, result.Risk)
		if err != nil {
			s.handleError(w, err)
			return
		}
		response["report_id"] = reportID
	}

	s.jsonResponse(w, http.StatusOK, response)
}

// handleExtract runs vision extraction over an uploaded document image and
// returns the raw payload, ready to be reviewed and posted to /api/validate.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "extraction is not configured")
		return
	}

	var req types.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "image_base64 is not valid base64")
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if mimeType != "application/pdf" {
		prepared, preparedType, err := llm.PrepareImage(image)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "could not decode image")
			return
		}
		image, mimeType = prepared, preparedType
	}

	payload, err := llm.ExtractDocument(r.Context(), s.llm, image, mimeType)
	if err != nil {
		log.Printf("[ERROR] extraction failed: %v", err)
		s.errorResponse(w, http.StatusBadGateway, "extraction failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"document": payload})
}

// handleCreateProject registers a project with an optional master safety plan.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var contextText *string
	if req.ContextText != "" {
		contextText = &req.ContextText
	}

	id, err := s.store.CreateProject(r.Context(), req.Name, contextText, req.MasterPlan)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{"id": id})
}

// handleGetProject returns one project with its master plan.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if project == nil {
		s.handleError(w, &ErrProjectNotFound{ProjectID: projectID})
		return
	}

	s.jsonResponse(w, http.StatusOK, project)
}

// handleGetReport returns one stored report with its validation output.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := s.store.GetReport(r.Context(), reportID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if report == nil {
		s.handleError(w, &ErrReportNotFound{ReportID: reportID})
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleListProjectReports returns prior report summaries for a project,
// most recent first. The optional limit query parameter caps the page size.
func (s *Server) handleListProjectReports(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid project id")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 100 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
	}

	reports, err := s.store.ListProjectReports(r.Context(), projectID, limit)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if reports == nil {
		reports = []types.Report{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"reports": reports})
}
