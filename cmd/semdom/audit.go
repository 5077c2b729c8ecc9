package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/veilmark/semdom/audit"
	"github.com/veilmark/semdom/internal/config"
	"github.com/veilmark/semdom/internal/store"
)

var (
	auditPolicyFile string
	auditDBPath     string
)

var auditCmd = &cobra.Command{
	Use:   "audit <file.html>",
	Short: "Audit an HTML file and print the delegation report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditPolicyFile, "policy", "", "YAML category policy file")
	auditCmd.Flags().StringVar(&auditDBPath, "db", "", "also persist the report to this SQLite database")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	opts := audit.Options{Logger: slog.Default()}
	if auditPolicyFile != "" {
		p, err := config.LoadPolicyFile(auditPolicyFile)
		if err != nil {
			return err
		}
		opts.Policy = p
	}

	rep, err := audit.Run(src, opts)
	if err != nil {
		return err
	}

	if auditDBPath != "" {
		st, err := store.Open(auditDBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.InsertReport(context.Background(), rep); err != nil {
			return err
		}
		slog.Info("report persisted", "id", rep.ID, "db", auditDBPath)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
