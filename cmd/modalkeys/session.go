package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/modalkeys/internal/config"
	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/logging"
	"github.com/dshills/modalkeys/internal/script"
)

// session is a configured engine together with the script runtime that
// extended it.
type session struct {
	engine *input.Engine
	log    *logging.Logger

	mu     sync.Mutex
	cfg    *config.Config
	script *script.Runtime
}

// newSession creates an engine from cfg, loads its keymap files and runs
// its script. opts supplies the host side: executor, notifier, surfaces.
func newSession(cfg *config.Config, opts input.Options, log *logging.Logger) (*session, error) {
	opts.Logger = log
	e, err := input.New(cfg.EngineOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	s := &session{engine: e, log: log}
	if err := s.apply(cfg, false); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// apply pushes cfg into the engine and runs the script again. Keymap
// files replace every mapping, so the script's mappings are rebuilt on
// each reload.
func (s *session) apply(cfg *config.Config, rerun bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	applyErr := cfg.Apply(s.engine)
	scriptErr := s.runScriptLocked(cfg, rerun)
	s.cfg = cfg
	return errors.Join(applyErr, scriptErr)
}

// Reload applies a configuration read by the watcher.
func (s *session) Reload(cfg *config.Config) error {
	return s.apply(cfg, true)
}

func (s *session) runScriptLocked(cfg *config.Config, rerun bool) error {
	if s.script != nil {
		_ = s.script.Close()
		s.script = nil
	}
	path := cfg.ScriptPath()
	if path == "" {
		return nil
	}

	rt, err := script.New(s.engine, script.Options{
		Logger:         s.log,
		MappingTimeout: cfg.MappingTimeout,
		Leader:         cfg.Leader,
		Layout:         cfg.LayoutOptions(),
		Rerun:          rerun,
	})
	if err != nil {
		return err
	}
	if err := rt.LoadFile(path); err != nil {
		_ = rt.Close()
		return fmt.Errorf("running script %s: %w", path, err)
	}
	s.script = rt
	return nil
}

// Config returns the configuration last applied.
func (s *session) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Close stops the engine and the script runtime.
func (s *session) Close() {
	s.engine.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.script != nil {
		_ = s.script.Close()
		s.script = nil
	}
}
