// Package main implements the recipepdf CLI: one-shot extraction and
// classification of recipe PDFs, and the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is an optional YAML config file
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recipepdf",
	Short: "Extract recipes and cooking times from PDF documents",
	Long: `recipepdf downloads a PDF, decides whether it is a cooking recipe and
extracts the recipe name, ingredients and total cooking time with a language model.

Configuration is read from the optional --config YAML file and RECIPEPDF_*
environment variables. OPENAI_API_KEY is used when llm.api_key is unset.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}
