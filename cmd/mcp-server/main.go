// Command mcp-server exposes the geosymbol tools over HTTP for agent
// frameworks, without persistence or configuration files.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/server"
	"github.com/njchilds90/geosymbol/internal/service"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logCfg := logging.ProductionConfig()
	logCfg.Level = *level
	logger := logging.Init(logCfg)

	cfg := server.DefaultConfig()
	cfg.Addr = fmt.Sprintf(":%d", *port)
	cfg.ServiceName = "geosymbol-mcp"

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := service.New(service.WithLogger(logger))
	if err := server.New(cfg, svc, logger).Run(ctx); err != nil {
		logging.Error().Add(logging.ErrorField(err)).Msg("server stopped")
		os.Exit(1)
	}
}
