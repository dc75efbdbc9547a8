package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teapotsmashers/calcd/internal/calculator"
	"github.com/teapotsmashers/calcd/internal/config"
	"github.com/teapotsmashers/calcd/internal/history"
)

var (
	configFile     string
	historyPath    string
	historyBackend string
	angleFlag      string
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "Scientific calculator",
	Long: `Calc evaluates calculator expressions such as 2+3×4, sin(90) or sqrt(2)^2.

- eval: evaluate one expression and print the result
- repl: interactive session with saved history

If no subcommand is specified, the interactive session starts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runREPL,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CALC_CONFIG"), "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&historyBackend, "backend", "", "History store: memory, file or sqlite")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "History file (implies --backend file unless set)")
	rootCmd.PersistentFlags().StringVar(&angleFlag, "angle", "", "Angle mode: deg, rad or grad")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")
}

// loadConfig layers the command line over the config file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.History.Backend = historyBackend
	}
	if flags.Changed("history") {
		cfg.History.Path = historyPath
		if !flags.Changed("backend") && cfg.History.Backend == history.BackendMemory {
			cfg.History.Backend = history.BackendFile
		}
	}
	if flags.Changed("angle") {
		cfg.AngleMode = angleFlag
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newLogger writes human-readable logs to stderr so they stay out of the
// calculator output. Only warnings show unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func openSession(ctx context.Context, cfg config.Config, logger *zap.Logger) (*calculator.Session, history.Store, error) {
	store, err := history.Open(ctx, cfg.History.Backend, cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}

	session := calculator.NewSession(ctx, store,
		calculator.WithAngleMode(cfg.Mode()),
		calculator.WithHistoryLimit(cfg.History.Limit),
		calculator.WithLogger(logger),
	)
	return session, store, nil
}
