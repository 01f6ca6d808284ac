package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mcp-document-service/internal/server"
	"mcp-document-service/pkg/config"
)

func main() {
	var (
		transport  = flag.String("transport", "stdio", "transport binding: stdio or sse")
		configPath = flag.String("config", "", "path to a TOML configuration file")
		addr       = flag.String("addr", "", "listen address for the sse transport (overrides config)")
		logLevel   = flag.String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR (overrides config)")
	)
	flag.Parse()

	// Diagnostics must not share stdout with the stdio transport.
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}

	if err := run(*transport, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(transport string, cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	mcpServer, err := server.NewMCPServer(cfg)
	if err != nil {
		return err
	}
	if err := mcpServer.Bootstrap(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mcpServer.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	switch transport {
	case "stdio":
		return mcpServer.ServeStdio(ctx, os.Stdin, os.Stdout)
	case "sse":
		return server.NewHTTPServer(mcpServer).Run(ctx)
	default:
		return fmt.Errorf("unknown transport %q (expected stdio or sse)", transport)
	}
}
