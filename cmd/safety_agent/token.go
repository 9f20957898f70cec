package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minjae/safety-inspector/internal/config"
	"github.com/minjae/safety-inspector/internal/server"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "mint-token",
	Short: "Mint a service token for the REST API",
	Long:  `Mint a signed service token for a calling service, using the same JWT_SECRET the server validates against.`,
	RunE:  runMintToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Name of the calling service (required)")

	tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(tokenCmd)
}

func runMintToken(_ *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewTokenService(jwtConfig).GenerateToken(tokenSubject)
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}

	fmt.Fprintln(os.Stdout, token)
	return nil
}
