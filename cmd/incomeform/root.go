package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-incomeform/pkg/config"
	"github.com/goliatone/go-incomeform/pkg/orchestrator"
	"github.com/goliatone/go-incomeform/pkg/predict"
)

// app carries state resolved by the root command for its subcommands.
type app struct {
	configPath string
	envFile    string
	endpoint   string
	timeout    time.Duration
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "incomeform",
		Short: "Census income prediction form",
		Long: "incomeform collects the fourteen census attributes of a person, posts them\n" +
			"to an income prediction service and shows the predicted bracket.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "dotenv file with INCOMEFORM_* settings (ignored when missing)")
	flags.StringVar(&a.endpoint, "endpoint", "", "prediction endpoint URL (default "+config.DefaultEndpoint+")")
	flags.DurationVar(&a.timeout, "timeout", 0, "prediction request timeout, 0 waits indefinitely")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPromptCmd(a))
	root.AddCommand(newPredictCmd(a))
	root.AddCommand(newSchemaCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = a.endpoint
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout.String()
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.GetLogLevel())
	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// orchestrator wires the prediction client and optional field preset.
func (a *app) orchestrator(extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	client := predict.New(
		predict.WithEndpoint(a.cfg.Endpoint),
		predict.WithTimeout(a.cfg.GetTimeout()),
		predict.WithLogger(a.logger),
	)

	options := []orchestrator.Option{
		orchestrator.WithEndpoint(a.cfg.Endpoint),
		orchestrator.WithPredictor(client),
		orchestrator.WithDefaultTheme(orchestrator.DefaultThemeName, a.cfg.ThemeVariant),
		orchestrator.WithLogger(a.logger),
	}

	if a.cfg.Preset != "" {
		preset, err := orchestrator.NewJSONPresetTransformerFromFS(
			os.DirFS(filepath.Dir(a.cfg.Preset)), filepath.Base(a.cfg.Preset))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithSchemaTransformer(preset))
	}

	return orchestrator.New(append(options, extra...)...), nil
}
