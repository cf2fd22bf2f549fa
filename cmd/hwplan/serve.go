package main

import (
	"context"
	"fmt"

	"github.com/evanschultz/hwplan/internal/adapters/daywatch"
	"github.com/evanschultz/hwplan/internal/adapters/server"
	servercommon "github.com/evanschultz/hwplan/internal/adapters/server/common"
	"github.com/spf13/cobra"
)

// serveCommandRunner is replaced in tests so serve does not bind a port.
var serveCommandRunner = server.Run

func newServeCommand(flags *rootFlags) *cobra.Command {
	var (
		bind        string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the JSON API and MCP tools, rescheduling at each day boundary",
		GroupID: "data",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				cfg := server.Config{
					HTTPBind:      e.cfg.Serve.HTTPBind,
					APIEndpoint:   e.cfg.Serve.APIEndpoint,
					MCPEndpoint:   e.cfg.Serve.MCPEndpoint,
					ServerName:    flags.appName,
					ServerVersion: version,
				}
				if cmd.Flags().Changed("http") {
					cfg.HTTPBind = bind
				}
				if cmd.Flags().Changed("api-endpoint") {
					cfg.APIEndpoint = apiEndpoint
				}
				if cmd.Flags().Changed("mcp-endpoint") {
					cfg.MCPEndpoint = mcpEndpoint
				}

				loc, err := e.cfg.Schedule.Location()
				if err != nil {
					return fmt.Errorf("resolve timezone: %w", err)
				}
				watcher, err := daywatch.New(e.cfg.Schedule.DayBoundaryCron, loc, e.svc, e.logger)
				if err != nil {
					return fmt.Errorf("configure day watcher: %w", err)
				}
				watcher.Start(ctx)
				defer watcher.Stop()

				e.logger.Info("serve listening", "http", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
				err = serveCommandRunner(ctx, cfg, server.Dependencies{
					Planner: servercommon.NewAppServiceAdapter(e.svc),
					Storage: e.repo,
				})
				if err != nil {
					return fmt.Errorf("run serve command: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bind, "http", "", "listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "JSON API path prefix")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP path")
	return cmd
}
