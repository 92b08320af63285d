// Package main provides the match_agent CLI for ranking roommate candidates.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "match_agent",
	Short: "Roommate compatibility ranking",
	Long:  "match_agent scores candidate roommates against a user's profile and weighted preferences, from local files or through the HTTP API.",
	// Errors are printed once by main.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
