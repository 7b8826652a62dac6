package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/vim"
	"github.com/dshills/modalkeys/internal/logging"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "MODALKEYS"

// Config is the engine configuration.
type Config struct {
	// MappingTimeout is how long a partial sequence waits for its next
	// key. Zero disables the timeout.
	MappingTimeout time.Duration `mapstructure:"mapping_timeout"`

	// Leader is the key <leader> stands for.
	Leader string `mapstructure:"leader"`

	Keyboard KeyboardConfig `mapstructure:"keyboard"`
	Motions  MotionsConfig  `mapstructure:"motions"`
	Log      LogConfig      `mapstructure:"log"`

	// KeymapFiles are JSON, YAML or TOML keymap documents.
	KeymapFiles []string `mapstructure:"keymap_files"`

	// Script is a Lua configuration file run after the keymap files.
	Script string `mapstructure:"script"`

	// Path is the file the configuration was read from, if any.
	Path string `mapstructure:"-"`
}

// KeyboardConfig controls physical layout translation.
type KeyboardConfig struct {
	UsePhysicalLayout string `mapstructure:"use_physical_layout"`
	Layout            string `mapstructure:"layout"`

	// Layouts are user layouts: physical code -> [unshifted, shifted].
	Layouts map[string]map[string][]string `mapstructure:"layouts"`
}

// MotionsConfig configures word motions.
type MotionsConfig struct {
	CaseBoundaries bool `mapstructure:"case_boundaries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		MappingTimeout: input.DefaultMappingTimeout,
		Leader:         string(keymap.DefaultLeader),
		Keyboard: KeyboardConfig{
			UsePhysicalLayout: string(key.PhysicalForOptionModifier),
			Layout:            key.DefaultLayoutName,
		},
		Motions: MotionsConfig{CaseBoundaries: true},
		Log:     LogConfig{Level: "info"},
	}
}

// newViper returns a viper instance carrying the defaults and the
// environment bindings.
func newViper() *viper.Viper {
	d := Defaults()
	v := viper.New()
	v.SetDefault("mapping_timeout", d.MappingTimeout)
	v.SetDefault("leader", d.Leader)
	v.SetDefault("keyboard.use_physical_layout", d.Keyboard.UsePhysicalLayout)
	v.SetDefault("keyboard.layout", d.Keyboard.Layout)
	v.SetDefault("motions.case_boundaries", d.Motions.CaseBoundaries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("keymap_files", []string{})
	v.SetDefault("script", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path, applies environment
// overrides and validates the result. An empty path loads the defaults
// and the environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		cfg.Path = abs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.MappingTimeout < 0 {
		invalid("mapping_timeout must not be negative, got %s", c.MappingTimeout)
	}
	if seq, err := key.ParseSequence(c.Leader); err != nil || len(seq) != 1 || seq[0] == key.Leader {
		invalid("leader %q is not a single key", c.Leader)
	}
	if !key.ValidMode(key.PhysicalLayoutMode(c.Keyboard.UsePhysicalLayout)) {
		invalid("keyboard.use_physical_layout %q must be never, for_macos_option_modifier or force", c.Keyboard.UsePhysicalLayout)
	}
	for name, codes := range c.Keyboard.Layouts {
		for code, chars := range codes {
			if len(chars) == 0 || len(chars) > 2 {
				invalid("keyboard.layouts.%s.%s needs one or two characters", name, code)
			}
		}
	}
	if _, ok := c.LayoutOptions().Lookup(); !ok {
		invalid("keyboard.layout %q is not defined", c.Keyboard.Layout)
	}
	if !logging.ValidLevel(c.Log.Level) {
		invalid("log.level %q is not a level", c.Log.Level)
	}
	if c.Script != "" && filepath.Ext(c.Script) != ".lua" {
		invalid("script %q is not a .lua file", c.Script)
	}
	return errors.Join(errs...)
}

// LayoutOptions converts the keyboard section for the key package.
// Viper lowercases map keys, so layout and code names are matched
// case-insensitively against the built-in code names.
func (c *Config) LayoutOptions() key.LayoutOptions {
	opts := key.LayoutOptions{
		UsePhysicalLayout: key.PhysicalLayoutMode(c.Keyboard.UsePhysicalLayout),
		Layout:            strings.ToLower(c.Keyboard.Layout),
	}
	if len(c.Keyboard.Layouts) == 0 {
		return opts
	}

	codes := make(map[string]string, len(key.Qwerty))
	for code := range key.Qwerty {
		codes[strings.ToLower(code)] = code
	}
	opts.Layouts = make(map[string]key.Layout, len(c.Keyboard.Layouts))
	for name, table := range c.Keyboard.Layouts {
		layout := make(key.Layout, len(table))
		for code, chars := range table {
			if canonical, ok := codes[strings.ToLower(code)]; ok {
				code = canonical
			}
			var pair [2]string
			copy(pair[:], chars)
			layout[code] = pair
		}
		opts.Layouts[strings.ToLower(name)] = layout
	}
	return opts
}

// MotionOptions converts the motions section.
func (c *Config) MotionOptions() vim.Options {
	return vim.Options{CaseBoundaries: c.Motions.CaseBoundaries}
}

// EngineTimeout is MappingTimeout in input.Options terms, where zero
// means the default and a negative value disables the timer.
func (c *Config) EngineTimeout() time.Duration {
	if c.MappingTimeout == 0 {
		return -1
	}
	return c.MappingTimeout
}

// EngineOptions fills the configured fields of opts.
func (c *Config) EngineOptions(opts input.Options) input.Options {
	motions := c.MotionOptions()
	opts.MappingTimeout = c.EngineTimeout()
	opts.Layout = c.LayoutOptions()
	opts.Motions = &motions
	return opts
}

// Resolve returns path relative to the configuration file's directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.Path), path)
}

// ScriptPath returns the resolved script path, or "" when none is set.
func (c *Config) ScriptPath() string {
	return c.Resolve(c.Script)
}

// KeymapPaths returns the resolved keymap file paths.
func (c *Config) KeymapPaths() []string {
	paths := make([]string, len(c.KeymapFiles))
	for i, p := range c.KeymapFiles {
		paths[i] = c.Resolve(p)
	}
	return paths
}

// LoadKeymaps parses every keymap file. All files are attempted; the
// error joins the failures.
func (c *Config) LoadKeymaps() ([]*keymap.File, error) {
	var (
		files []*keymap.File
		errs  []error
	)
	for _, p := range c.KeymapPaths() {
		f, err := keymap.LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}
	return files, errors.Join(errs...)
}

// Apply pushes the configuration into a running engine: timeout, leader
// and layout, then a bulk reload of the keymap files. Motion options
// are fixed when the engine is created.
func (c *Config) Apply(e *input.Engine) error {
	e.SetMappingTimeout(c.MappingTimeout)
	e.SetLayout(c.LayoutOptions())

	// A leader set by a keymap file overrides the configured one.
	leaderErr := e.SetLeader(c.Leader)
	files, loadErr := c.LoadKeymaps()
	reloadErr := e.ReloadKeymaps(files...)
	return errors.Join(leaderErr, loadErr, reloadErr)
}
