package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/quill/internal/mcptools"
	"github.com/dusk-indust/quill/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, mcpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (SSE and WebSocket progress streams)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctrl, closeStore, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return server.New(ctrl, a.log).Run(ctx, addr)
			})
			if mcpAddr != "" {
				g.Go(func() error {
					a.log.Info("serving mcp", zap.String("addr", mcpAddr))
					return mcptools.RunHTTP(ctx, mcptools.NewPostMCPServer(mcptools.NewPostService(ctrl, a.log)), mcpAddr)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from quill.yml, else :8080)")
	cmd.Flags().StringVar(&mcpAddr, "mcp-addr", "", "also serve MCP over streamable HTTP on this address")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeStore, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			srv := mcptools.NewPostMCPServer(mcptools.NewPostService(ctrl, a.log))
			if httpAddr != "" {
				a.log.Info("serving mcp", zap.String("addr", httpAddr))
				return mcptools.RunHTTP(cmd.Context(), srv, httpAddr)
			}
			return mcptools.RunStdio(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}
