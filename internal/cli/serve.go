package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/server"
	"github.com/njchilds90/geosymbol/internal/telemetry"
)

type serveOptions struct {
	addr    string
	noStore bool
}

func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Start the HTTP API:

  POST   /v1/solve       run the rules over {"facts": [...], "known": {...}}
  GET    /v1/runs        list stored runs
  GET    /v1/runs/:id    fetch one stored run
  DELETE /v1/runs/:id    delete one stored run
  GET    /v1/rules       list rules
  POST   /tool           MCP-style tool call
  GET    /schema         tool schema
  GET    /health         liveness
  GET    /metrics        Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address; overrides config")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "Run without persistence")
	return cmd
}

func (a *App) runServe(ctx context.Context, opts *serveOptions) error {
	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		ServiceName: a.cfg.Telemetry.ServiceName,
		Version:     Version,
		Exporter:    a.cfg.Telemetry.TraceExporter,
		Output:      a.stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("tracing shutdown")
		}
	}()

	svc, release, err := a.newService(!opts.noStore)
	if err != nil {
		return err
	}
	defer release()

	sc := a.cfg.Server
	cfg := server.Config{
		Addr:            sc.Addr,
		ServiceName:     a.cfg.Telemetry.ServiceName,
		Rate:            sc.Rate,
		Burst:           sc.Burst,
		MaxBodyBytes:    sc.MaxBodyBytes,
		ReadTimeout:     sc.ReadTimeout,
		WriteTimeout:    sc.WriteTimeout,
		ShutdownTimeout: sc.ShutdownTimeout,
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	return server.New(cfg, svc, a.logger).Run(ctx)
}
