package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hookd/internal/callbacks"
	"hookd/internal/common/fsutil"
	"hookd/internal/config"
	"hookd/internal/observers"
)

// defaultConfigPaths are tried in order when --config is not given.
var defaultConfigPaths = []string{"./hookd.yaml", "~/.config/hookd/config.yaml"}

// Execute runs the hookd command tree.
func Execute(ctx context.Context) error {
	return buildRootCmd().ExecuteContext(ctx)
}

// flagValues mirrors the CLI flags; zero values leave config untouched.
type flagValues struct {
	configPath string
	cfg        config.Config
}

func buildRootCmd() *cobra.Command {
	fv := &flagValues{}
	root := &cobra.Command{
		Use:           "hookd",
		Short:         "Model serving pipeline with lifecycle callbacks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&fv.configPath, "config", "", "Config file (.yaml|.json|.toml)")
	root.PersistentFlags().StringVar(&fv.cfg.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&fv.cfg.LogFormat, "log-format", "", "Log format: json|console")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(fv, cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
	f := serveCmd.Flags()
	f.StringVar(&fv.cfg.Addr, "addr", "", "HTTP listen address, e.g. :8080")
	f.StringSliceVar(&fv.cfg.Callbacks, "callbacks", nil, "Callbacks to register, in order ("+joinNames()+")")
	f.StringVar(&fv.cfg.RequestLog, "request-log", "", "Default per-request log level: off|error|info|debug")
	f.Int64Var(&fv.cfg.MaxBodyBytes, "max-body-bytes", 0, "Maximum /predict body size in bytes")
	f.Int64Var(&fv.cfg.PredictTimeoutSeconds, "predict-timeout", 0, "Per-request predict timeout in seconds (0 disables)")
	f.BoolVar(&fv.cfg.Upper, "upper", false, "Upper-case echo output")
	f.BoolVar(&fv.cfg.CORSEnabled, "cors-enabled", false, "Enable CORS")
	f.StringSliceVar(&fv.cfg.CORSOrigins, "cors-origins", nil, "Allowed CORS origins")

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "List lifecycle events callbacks can observe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printEvents(cmd.OutOrStdout())
		},
	}

	root.AddCommand(serveCmd, eventsCmd)
	// bare `hookd` serves
	root.RunE = serveCmd.RunE
	root.Flags().AddFlagSet(serveCmd.Flags())
	return root
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(fv *flagValues, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()
	path := fv.configPath
	if path == "" {
		path, _ = fsutil.FirstExisting(defaultConfigPaths...)
	}
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		cfg = cfg.Merge(fileCfg)
	}
	override := fv.cfg
	// only flags the user set replace list values
	if !cmd.Flags().Changed("callbacks") {
		override.Callbacks = nil
	}
	if !cmd.Flags().Changed("cors-origins") {
		override.CORSOrigins = nil
	}
	return cfg.Merge(override), nil
}

func printEvents(w io.Writer) error {
	for _, e := range callbacks.Events() {
		if _, err := fmt.Fprintf(w, "%-28s %s\n", e, e.Stage()); err != nil {
			return err
		}
	}
	return nil
}

func joinNames() string { return strings.Join(observers.Names(), "|") }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "hookd:", err)
	return 1
}

// Main is the process entrypoint used by cmd/hookd.
func Main(ctx context.Context) int { return exitCode(Execute(ctx)) }
