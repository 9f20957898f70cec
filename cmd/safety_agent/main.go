// Package main provides the entry point for the safety inspection validator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "safety_agent",
	Short: "Safety inspection document validator",
	Long:  "Safety agent validates extracted Korean industrial-safety inspection documents: rule checks, risk matrix scoring, master-plan coverage, and historical pattern analysis via CLI or REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
