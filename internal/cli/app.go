// Package cli provides the geosymbol command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/spf13/cobra"

	"github.com/njchilds90/geosymbol/internal/config"
	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/service"
	"github.com/njchilds90/geosymbol/internal/store"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *bolt.Logger
}

func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "geosymbol",
		Short: "Symbolic reasoning about angles in geometric figures",
		Long: `geosymbol derives angle equations from geometric facts such as
isosceles(A,B,C) or bisectriz(A,B,C,D), then solves them for every angle it can
pin down, printing the chain of reasoning that got there.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return app.setup() },
	}

	flags := app.root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "Path to a YAML or JSON configuration file")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error); overrides config")
	flags.StringVar(&app.logFormat, "log-format", "", "Log format (console, json); overrides config")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newSolveCmd(),
		app.newRulesCmd(),
		app.newServeCmd(),
		app.newRunsCmd(),
		app.newWatchCmd(),
	)
	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application until it finishes or a signal arrives.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// setup loads the configuration and builds the logger, which writes to
// stderr so stdout carries only command output.
func (a *App) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.cfg = cfg
	a.logger = logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: a.stderr,
	})
	logging.Debug().
		Add(logging.Str("config", a.configPath)).
		Add(logging.Str("rules", strings.Join(cfg.Engine.Rules, ","))).
		Msg("configuration loaded")
	return nil
}

func (a *App) openStore() (*store.Store, error) {
	sc := store.DefaultConfig()
	sc.Path = a.cfg.Store.Path
	sc.InMemory = a.cfg.Store.InMemory
	sc.SyncWrites = a.cfg.Store.SyncWrites
	sc.Logger = a.logger
	return store.Open(sc)
}

// newService builds a service over the configured rules, with a store when
// withStore is set. The returned function releases the store.
func (a *App) newService(withStore bool) (*service.Service, func(), error) {
	rules, err := a.cfg.RuleSet()
	if err != nil {
		return nil, nil, err
	}
	opts := []service.Option{service.WithRules(rules), service.WithLogger(a.logger)}
	closeFn := func() {}
	if withStore {
		st, err := a.openStore()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, service.WithStore(st))
		closeFn = func() {
			if err := st.Close(); err != nil {
				logging.Warn().Add(logging.ErrorField(err)).Msg("close store")
			}
		}
	}
	return service.New(opts...), closeFn, nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "geosymbol version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}
