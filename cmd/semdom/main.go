// Command semdom audits HTML documents for shadow-root semantic
// delegation, serves the audit API over HTTP, and exposes the same
// tools over MCP stdio.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "semdom",
	Short: "Semantic delegation tooling for shadow DOM",
	Long: "semdom parses declarative shadow DOM, resolves semantic delegate chains,\n" +
		"and reports how labels and ARIA relationships land after delegation.",
	SilenceUsage: true,
}

func main() {
	setupLogging()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
