// Package main provides the entry point for the session processing service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "processor",
	Short: "Coaching session processing service",
	Long:  "Processor turns uploaded coaching-session recordings into transcripts and structured insights through a durable Postgres-backed job pipeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
