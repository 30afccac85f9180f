package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lifeforge/internal/config"
	"lifeforge/internal/logging"
	"lifeforge/pkg/lifeforge"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globalFlags are shared by every subcommand. A flag the user set wins over
// the config file, which wins over the defaults.
type globalFlags struct {
	configPath   string
	storeKind    string
	dbPath       string
	artifactsDir string
	logLevel     string
	logFormat    string
}

type app struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	defaults := config.Default()

	root := &cobra.Command{
		Use:           "lifeforgectl",
		Short:         "Evolve Game of Life boards whose populations stay large",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.flags.storeKind, "store", defaults.Store.Kind, "store backend: memory|sqlite")
	pf.StringVar(&a.flags.dbPath, "db-path", defaults.Store.DBPath, "sqlite database path")
	pf.StringVar(&a.flags.artifactsDir, "artifacts-dir", defaults.Output.ArtifactsDir, "run artifacts directory")
	pf.StringVar(&a.flags.logLevel, "log-level", defaults.Log.Level, "log level: debug|info|warn|error")
	pf.StringVar(&a.flags.logFormat, "log-format", defaults.Log.Format, "log format: auto|text|json")

	root.AddCommand(
		a.newInitCommand(),
		a.newResetCommand(),
		a.newEvolveCommand(),
		a.newStepCommand(),
		a.newScoreCommand(),
		a.newRunsCommand(),
		a.newHistoryCommand(),
		a.newExportCommand(),
	)
	return root
}

// loadConfig reads --config when given and applies the persistent flags the
// user changed on top of it.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if a.flags.configPath != "" {
		loaded, err := config.Load(a.flags.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Kind = a.flags.storeKind
	}
	if flags.Changed("db-path") {
		cfg.Store.DBPath = a.flags.dbPath
	}
	if flags.Changed("artifacts-dir") {
		cfg.Output.ArtifactsDir = a.flags.artifactsDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.flags.logFormat
	}
	return cfg, nil
}

func (a *app) newClient(cfg config.Config) (*lifeforge.Client, error) {
	logger, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return lifeforge.New(lifeforge.Options{
		StoreKind:    cfg.Store.Kind,
		DBPath:       cfg.Store.DBPath,
		ArtifactsDir: cfg.Output.ArtifactsDir,
		Logger:       logger,
	})
}

// withClient loads the configuration, opens a client and closes it once fn
// returns.
func (a *app) withClient(cmd *cobra.Command, fn func(context.Context, config.Config, *lifeforge.Client) error) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	client, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	return fn(cmd.Context(), cfg, client)
}

func (a *app) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, cfg config.Config, client *lifeforge.Client) error {
				if err := client.Init(ctx); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "initialized store=%s\n", cfg.Store.Kind)
				return nil
			})
		},
	}
}

func (a *app) newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every run from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, cfg config.Config, client *lifeforge.Client) error {
				if err := client.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "reset store=%s\n", cfg.Store.Kind)
				return nil
			})
		},
	}
}
