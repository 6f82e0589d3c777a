package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/quill/internal/a2a"
	"github.com/dusk-indust/quill/internal/cache"
	"github.com/dusk-indust/quill/internal/config"
	"github.com/dusk-indust/quill/internal/executor"
	"github.com/dusk-indust/quill/internal/logging"
	"github.com/dusk-indust/quill/internal/workflow"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded the project config.
type app struct {
	dir      string
	verbose  bool
	provider string

	cfg *config.ProjectConfig
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "quill",
		Short: "Generate blog posts with a six-stage agent pipeline",
		Long: `quill takes a topic and runs it through six stages: topic research,
outline, reference gathering, drafting, editing and publishing. Results are
cached per input so repeated requests are answered instantly.

Configuration is read from quill.yml in the project directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.dir, "dir", ".", "project directory containing quill.yml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.provider, "provider", "", "executor provider (template, openai, genai, a2a); overrides quill.yml")

	root.AddCommand(
		newGenerateCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newCacheCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.dir)
	if err != nil {
		return err
	}
	if a.provider != "" {
		cfg.Executor.Provider = a.provider
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(a.dir, cfg.Cache.Path)
	}
	a.cfg = cfg

	log, err := logging.New(a.verbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.log = log
	return nil
}

// controller wires the executor, the cache and the stage settings into a
// workflow controller. The returned func closes the cache.
func (a *app) controller(ctx context.Context) (*workflow.Controller, func(), error) {
	exec, err := buildExecutor(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.Open(a.cfg.CacheOptions())
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			a.log.Warn("close cache", zap.Error(err))
		}
	}

	ctrl, err := workflow.New(exec, store,
		workflow.WithLogger(a.log),
		workflow.WithPolicies(a.cfg.Policies()),
		workflow.WithPersonas(a.cfg.Personas()),
	)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	a.log.Debug("controller ready",
		zap.String("provider", a.cfg.Executor.Provider),
		zap.String("cache", a.cfg.Cache.Backend),
		zap.String("session", a.cfg.SessionID),
	)
	return ctrl, closeStore, nil
}

func buildExecutor(ctx context.Context, cfg *config.ProjectConfig) (executor.Executor, error) {
	switch cfg.Executor.Provider {
	case config.ProviderOpenAI:
		return executor.NewOpenAI(executor.OpenAIConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.Executor.BaseURL,
			Model:   cfg.Executor.Model,
		})
	case config.ProviderGenAI:
		return executor.NewGenAI(ctx, executor.GenAIConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.Executor.BaseURL,
			Model:   cfg.Executor.Model,
		})
	case config.ProviderA2A:
		return executor.NewA2A(a2a.NewHTTPClient(), cfg.Executor.Endpoint), nil
	case config.ProviderTemplate, "":
		return executor.Template{}, nil
	default:
		return nil, fmt.Errorf("unknown executor provider %q", cfg.Executor.Provider)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
