package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minjae/safety-inspector/internal/llm"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a document payload from a scanned inspection form",
	Long: `Extract structured content from a photographed or scanned inspection form
using vision extraction. The output JSON can be reviewed and then passed to
the validate command.`,
	RunE: runExtract,
}

var (
	extractImage string
	extractOut   string
)

func init() {
	extractCmd.Flags().StringVarP(&extractImage, "image", "i", "", "Path to document image (required)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Output file (default: stdout)")

	extractCmd.MarkFlagRequired("image")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	data, err := os.ReadFile(extractImage)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	image, mimeType := data, "application/pdf"
	if strings.ToLower(filepath.Ext(extractImage)) != ".pdf" {
		image, mimeType, err = llm.PrepareImage(data)
		if err != nil {
			return fmt.Errorf("failed to prepare image: %w", err)
		}
	}

	client, err := llm.NewClient(cmd.Context(), llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	payload, err := llm.ExtractDocument(cmd.Context(), client, image, mimeType)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	out = append(out, '\n')

	if extractOut == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(extractOut, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Extracted payload: %s\n", extractOut)
	return nil
}
