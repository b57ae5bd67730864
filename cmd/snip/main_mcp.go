package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/mcp"
)

func mcpCommand(c *cli.Context) error {
	// stdout carries JSON-RPC; keep debug output off it
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	mcpServer, err := mcp.NewServer(cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- mcpServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return debug.Fatal("MCP server error: %v\n", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...\n", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()

		select {
		case err := <-errChan:
			debug.LogMCP("Server shutdown completed\n")
			return err
		case <-shutdownTimer.C:
			debug.LogMCP("Graceful shutdown timeout, forcing exit\n")
			// Closing stdin breaks the stdio transport read loop
			os.Stdin.Close()
			return nil
		}
	}
}
