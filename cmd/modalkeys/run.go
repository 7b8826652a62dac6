package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/config"
	"github.com/dshills/modalkeys/internal/host"
	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/input/surface"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Edit a file in the terminal playground",
		Long: `Edit one file in a terminal playground driven by the engine.

The playground understands the built-in mappings plus three host commands
that mappings may bind: "quit", "write [path]" and "echo <text>". The
configuration file, its keymap files and its script are reloaded when
they change.

Examples:
  modalkeys run notes.txt
  modalkeys run -c keys.yaml --log-file /tmp/modalkeys.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runPlayground(cmd.Context(), opts, path, !noWatch)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the configuration when it changes")
	return cmd
}

func runPlayground(ctx context.Context, opts *rootOptions, path string, watch bool) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	// The screen owns the terminal; logs go to --log-file or nowhere.
	log, closeLog, err := opts.newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	text, err := readText(path)
	if err != nil {
		return err
	}

	term, err := host.NewTerminal()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	p := host.New(term, surface.NewTextArea(text), host.Options{Path: path, Logger: log})

	s, err := newSession(cfg, input.Options{
		Executor: p,
		Notifier: p,
		Surfaces: p.Surfaces(),
	}, log)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := p.Attach(s.engine); err != nil {
		return err
	}

	if watch && cfg.Path != "" {
		w, err := config.NewWatcher(cfg, reloadHandler(s, p), config.WithLogger(log))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("watching configuration: %w", err)
		}
		defer func() { _ = w.Stop() }()
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
			p.Quit()
		case <-p.Done():
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	return p.Run(ctx)
}

// readText returns the contents of path. A missing file starts empty and
// is created by the first write.
func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// messenger shows status messages.
type messenger interface {
	SetMessage(msg string, t host.MessageType)
}

// reloadHandler applies configurations read by the watcher and reports
// the outcome in the status line.
func reloadHandler(s *session, m messenger) config.ReloadFunc {
	return func(ev config.Event, cfg *config.Config, err error) {
		if err != nil {
			m.SetMessage(err.Error(), host.MessageError)
			return
		}
		if err := s.Reload(cfg); err != nil {
			m.SetMessage(err.Error(), host.MessageError)
			return
		}
		m.SetMessage(fmt.Sprintf("reloaded (%s %s)", ev.Op, ev.Path), host.MessageInfo)
	}
}
