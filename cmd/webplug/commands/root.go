package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/justyntemme/webplug/pkg/config"
	"github.com/justyntemme/webplug/pkg/framework/debug"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	verbose  bool

	globalConfig config.Config
	logger       *debug.Logger
)

var rootCmd = &cobra.Command{
	Use:   "webplug",
	Short: "Web GUI bridge for audio plugins",
	Long: `webplug serves a plugin's web GUI and bridges it to the plugin's parameters.

The GUI talks to the plugin over a websocket using tagged messages:
  "Init"                                   request every parameter value
  {"ParamChange": {"id": ..., "value": ...}} change a normalized value
  {"Message": ...}                         application-defined payload

Configuration is read from --config (YAML) and WEBPLUG_* environment variables.

Examples:
  # Serve the bundled demo GUI
  webplug serve

  # Set a parameter from the command line
  webplug probe --set gain=0.75
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(paramsCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	globalConfig = cfg

	logger, err = newLogger(cfg.Log, os.Stderr)
	return err
}

// newLogger writes to the configured file, or to w. Terminals get short lines
// without timestamps.
func newLogger(c config.LogConfig, w io.Writer) (*debug.Logger, error) {
	level, err := debug.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var l *debug.Logger
	if c.File != "" {
		l, err = debug.NewFileLogger(c.File, "webplug", debug.DefaultFlags)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	} else {
		flags := debug.DefaultFlags
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			flags = debug.FlagLevel | debug.FlagPrefix
		}
		l = debug.New(w, "webplug", flags)
	}
	l.SetLevel(level)
	return l, nil
}
