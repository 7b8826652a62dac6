package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/config"
	"github.com/dshills/modalkeys/internal/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "modalkeys",
		Short: "A modal, vim-style key mapping engine",
		Long: `modalkeys interprets key presses through vim-style modes, multi-key
mappings and operator/motion composition.

The subcommands inspect key notation and keymaps, or run a terminal
playground that edits one buffer through the engine.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: .modalkeys/config.yaml, then ~/.config/modalkeys/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "",
		"write logs to this file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level (debug, info, warn, error); overrides log.level")

	cmd.AddCommand(
		newNormalizeCmd(),
		newSplitCmd(),
		newKeymapsCmd(opts),
		newRunCmd(opts),
	)
	return cmd
}

// findConfig returns the configuration file to load. Lookup order:
//  1. the --config flag
//  2. .modalkeys/config.yaml (current directory)
//  3. ~/.config/modalkeys/config.yaml (user config)
//
// An empty result means defaults and environment only.
func (o *rootOptions) findConfig() string {
	if o.configPath != "" {
		return o.configPath
	}
	candidates := []string{filepath.Join(".modalkeys", "config.yaml")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "modalkeys", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.findConfig())
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		if !logging.ValidLevel(o.logLevel) {
			return nil, fmt.Errorf("%w: --log-level %q is not a level", config.ErrInvalid, o.logLevel)
		}
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// newLogger opens the log destination. Without --log-file, logs go to
// fallback. The returned closer is never nil.
func (o *rootOptions) newLogger(cfg *config.Config, fallback io.Writer) (*logging.Logger, func() error, error) {
	out := fallback
	closer := func() error { return nil }
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f.Close
	}
	log := logging.New(logging.Config{
		Level:  logging.ParseLogLevel(cfg.Log.Level),
		Output: out,
		Prefix: "modalkeys",
	})
	return log, closer, nil
}
