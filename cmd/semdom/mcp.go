package main

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/veilmark/semdom/internal/config"
	"github.com/veilmark/semdom/internal/service"
	"github.com/veilmark/semdom/internal/store"
)

var mcpConfigFile string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP stdio server exposing semdom_audit and semdom_resolve",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpConfigFile, "config", "", "YAML config file")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg := &config.Config{}
	if mcpConfigFile != "" {
		var err error
		cfg, err = config.LoadFile(mcpConfigFile)
		if err != nil {
			return err
		}
	}
	cfg.Defaults()

	var st *store.Store
	if cfg.DBPath != "" {
		var err error
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	svc := service.New(cfg.ResolvedPolicy(), st, slog.Default())
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "semdom",
		Version: "0.1.0",
	}, nil)
	svc.RegisterMCP(srv)

	slog.Info("semdom MCP serving", "transport", "stdio")
	return srv.Run(cmd.Context(), &mcp.StdioTransport{})
}
