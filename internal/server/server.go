package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/minjae/safety-inspector/internal/config"
	"github.com/minjae/safety-inspector/internal/db"
	"github.com/minjae/safety-inspector/internal/engine"
	"github.com/minjae/safety-inspector/internal/llm"
	"github.com/minjae/safety-inspector/internal/server/middleware"
	"github.com/minjae/safety-inspector/internal/types"
)

// Validator runs the validation pipeline over a raw extraction record.
// Satisfied by *engine.Engine; faked in handler tests.
type Validator interface {
	Validate(ctx context.Context, raw map[string]any, projectID uuid.UUID) (*engine.ValidationResult, error)
}

// Store is the persistence surface the handlers need. Satisfied by *db.DB.
type Store interface {
	CreateProject(ctx context.Context, name string, contextText *string, plan *types.MasterSafetyPlan) (uuid.UUID, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*types.Project, error)
	SaveReport(ctx context.Context, projectID uuid.UUID, doc *types.Document, issues []types.ValidationIssue, riskCalc *types.RiskCalculation) (uuid.UUID, error)
	GetReport(ctx context.Context, reportID uuid.UUID) (*db.StoredReport, error)
	ListProjectReports(ctx context.Context, projectID uuid.UUID, limit int) ([]types.Report, error)
}

// Config holds server configuration.
type Config struct {
	ListenAddr  string
	DatabaseURL string
	APIKey      string
}

// Server wraps the HTTP server and its collaborators.
type Server struct {
	httpServer *http.Server

	engine Validator
	store  Store
	llm    llm.Client
	tokens *TokenService

	database *db.DB
}

// New creates a server: connects to the database, runs migrations, builds
// the validation engine on top of it, and wires the routes. The extraction
// endpoint is only available when an API key is configured; everything else
// works without one.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.DatabaseURL == "" {
		return nil, &config.ConfigurationError{Key: "database_url", Message: "required for serve mode (env DATABASE_URL)"}
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, err
	}

	var llmClient llm.Client
	if cfg.APIKey != "" {
		llmClient, err = llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	} else {
		log.Println("[WARN] GEMINI_API_KEY not set; POST /api/extract disabled")
	}

	validationEngine := engine.New(engine.Options{
		Projects: database,
		History:  database,
	})

	s := &Server{
		engine:   validationEngine,
		store:    database,
		llm:      llmClient,
		tokens:   NewTokenService(jwtConfig),
		database: database,
	}

	addr := cfg.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the mux. Everything under /api/ requires a valid service
// token; /health does not.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.tokens)

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /api/validate", auth(http.HandlerFunc(s.handleValidate)))
	mux.Handle("POST /api/extract", auth(http.HandlerFunc(s.handleExtract)))
	mux.Handle("POST /api/projects", auth(http.HandlerFunc(s.handleCreateProject)))
	mux.Handle("GET /api/projects/{id}", auth(http.HandlerFunc(s.handleGetProject)))
	mux.Handle("GET /api/projects/{id}/reports", auth(http.HandlerFunc(s.handleListProjectReports)))
	mux.Handle("GET /api/reports/{id}", auth(http.HandlerFunc(s.handleGetReport)))

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.llm != nil {
		if err := s.llm.Close(); err != nil {
			log.Printf("[WARN] failed to close LLM client: %v", err)
		}
	}
	if s.database != nil {
		s.database.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError maps a domain error to its HTTP status and user-facing
// message, logging the underlying cause server-side.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= 500 {
		log.Printf("[ERROR] %v", err)
	}
	s.errorResponse(w, status, UserMessage(err))
}
