package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minjae/safety-inspector/internal/config"
	"github.com/minjae/safety-inspector/internal/db"
	"github.com/minjae/safety-inspector/internal/engine"
	"github.com/minjae/safety-inspector/internal/observability"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an extracted inspection document",
	Long: `Validate an extracted inspection document from a JSON file.

Runs the rule checks and risk matrix unconditionally. When --project and a
database connection are available, the master-plan coverage, inspector
pattern, and cross-document stages run as well. With --persist the validated
report is filed under the project.`,
	RunE: runValidate,
}

var (
	validateInput   string
	validateProject string
	validatePersist bool
	validateJSONOut bool
	validateVerbose bool
	configPath      string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Path to extracted document JSON (required)")
	validateCmd.Flags().StringVarP(&validateProject, "project", "p", "", "Project UUID for history-aware stages")
	validateCmd.Flags().BoolVar(&validatePersist, "persist", false, "File the validated report under the project")
	validateCmd.Flags().BoolVar(&validateJSONOut, "json", false, "Emit the full result as JSON instead of formatted output")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Print document summary and per-stage diagnostics")
	validateCmd.Flags().StringVar(&configPath, "config", "", "Path to JSON config file")

	validateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg = cfg.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(validateInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("input is not valid JSON: %w", err)
	}

	projectID := uuid.Nil
	projectArg := validateProject
	if projectArg == "" {
		projectArg = cfg.ProjectID
	}
	if projectArg != "" {
		projectID, err = uuid.Parse(projectArg)
		if err != nil {
			return fmt.Errorf("invalid project id %q: %w", projectArg, err)
		}
	}

	// The history-aware stages need persistence; without a database they
	// are skipped and validation still runs.
	opts := engine.Options{HistoryWindow: cfg.HistoryWindow}
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		opts.Projects = database
		opts.History = database
	} else if validatePersist {
		return fmt.Errorf("--persist requires a database connection (env DATABASE_URL)")
	}

	result, err := engine.New(opts).Validate(cmd.Context(), raw, projectID)
	if err != nil {
		return err
	}

	if validateJSONOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printer := observability.NewPrinter(os.Stdout)
		if validateVerbose || cfg.Verbose {
			printer.PrintDocument(result.Document)
			printer.PrintRiskCalculation(result.Risk)
			printer.PrintStages(result.Stages)
		}
		printer.PrintIssues(result.Issues)
	}

	if validatePersist && projectID != uuid.Nil {
		reportID, err := database.SaveReport(cmd.Context(), projectID, result.Document, result.Issues, result.Risk)
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Report filed: %s\n", reportID)
	}

	return nil
}
