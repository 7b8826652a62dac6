package keymap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/modalkeys/internal/input/mode"
)

// File is a keymap document loaded from JSON, YAML or TOML.
type File struct {
	// Path is the source of the document.
	Path string `json:"-" yaml:"-" toml:"-"`

	// Leader optionally sets the leader key.
	Leader string `json:"leader,omitempty" yaml:"leader,omitempty" toml:"leader,omitempty"`

	Keymaps []FileEntry `json:"keymaps" yaml:"keymaps" toml:"keymaps"`
}

// FileEntry is one mapping as written in a keymap file. Mode and Modes
// may both be given; an entry naming neither applies to normal mode.
type FileEntry struct {
	Mode          string   `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Modes         []string `json:"modes,omitempty" yaml:"modes,omitempty" toml:"modes,omitempty"`
	LHS           string   `json:"lhs" yaml:"lhs" toml:"lhs"`
	Action        string   `json:"action" yaml:"action" toml:"action"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Buffer        string   `json:"buffer,omitempty" yaml:"buffer,omitempty" toml:"buffer,omitempty"`
	RetainDisplay bool     `json:"retain_display,omitempty" yaml:"retain_display,omitempty" toml:"retain_display,omitempty"`
}

// ModeIDs returns the modes the entry applies to.
func (fe FileEntry) ModeIDs() []mode.ID {
	var ids []mode.ID
	if fe.Mode != "" {
		ids = append(ids, mode.ID(fe.Mode))
	}
	for _, m := range fe.Modes {
		ids = append(ids, mode.ID(m))
	}
	if len(ids) == 0 {
		ids = append(ids, mode.Normal)
	}
	return ids
}

// ParseError reports a keymap file that could not be decoded.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadFile reads a keymap file, choosing the decoder by extension.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keymap file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes keymap data. The extension of path selects the format.
func Parse(path string, data []byte) (*File, error) {
	var (
		f   *File
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err = parseJSON(data)
	case ".yaml", ".yml":
		f, err = parseYAML(data)
	case ".toml":
		f, err = parseTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	f.Path = path
	return f, nil
}

// parseJSON reads the document with gjson so that "mode" may be either a
// string or a list of strings.
func parseJSON(data []byte) (*File, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	f := &File{Leader: doc.Get("leader").String()}

	keymaps := doc.Get("keymaps")
	if keymaps.Exists() && !keymaps.IsArray() {
		return nil, errors.New("keymaps must be an array")
	}

	var err error
	keymaps.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			err = fmt.Errorf("keymaps[%d]: expected an object", len(f.Keymaps))
			return false
		}
		fe := FileEntry{
			LHS:           v.Get("lhs").String(),
			Action:        v.Get("action").String(),
			Description:   v.Get("description").String(),
			Buffer:        v.Get("buffer").String(),
			RetainDisplay: v.Get("retain_display").Bool(),
		}
		for _, field := range []string{"mode", "modes"} {
			m := v.Get(field)
			if m.IsArray() {
				for _, item := range m.Array() {
					fe.Modes = append(fe.Modes, item.String())
				}
			} else if m.Exists() {
				fe.Modes = append(fe.Modes, m.String())
			}
		}
		f.Keymaps = append(f.Keymaps, fe)
		return true
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func parseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func parseTOML(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply registers every mapping of the file in the store. All entries are
// attempted; the returned error joins every failure.
func (f *File) Apply(s *Store) error {
	var errs []error
	if f.Leader != "" {
		if err := s.SetLeader(f.Leader); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
		}
	}
	for _, fe := range f.Keymaps {
		opts := SetOptions{
			BufferID:      fe.Buffer,
			Description:   fe.Description,
			RetainDisplay: fe.RetainDisplay,
		}
		for _, m := range fe.ModeIDs() {
			if _, err := s.Set(m, fe.LHS, Excmd(fe.Action), opts); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ExportJSON renders entries as a keymap document that LoadFile accepts.
// Callback actions have no textual form and are written under "callback".
func ExportJSON(leader string, entries []Entry) ([]byte, error) {
	out := []byte(`{"keymaps":[]}`)
	var err error
	if leader != "" {
		if out, err = sjson.SetBytes(out, "leader", leader); err != nil {
			return nil, err
		}
	}

	for i, e := range entries {
		base := fmt.Sprintf("keymaps.%d.", i)
		fields := []struct {
			path  string
			value any
			skip  bool
		}{
			{"mode", string(e.Mode), false},
			{"lhs", e.Sequence.String(), false},
			{"action", e.Action.Excmd, e.Action.Kind != ActionExcmd},
			{"callback", e.Action.Name, e.Action.Kind != ActionCallback},
			{"description", e.Description, e.Description == ""},
			{"buffer", e.BufferID, e.BufferID == ""},
			{"retain_display", true, !e.RetainDisplay},
		}
		for _, fld := range fields {
			if fld.skip {
				continue
			}
			if out, err = sjson.SetBytes(out, base+fld.path, fld.value); err != nil {
				return nil, fmt.Errorf("exporting %s: %w", e.LHS, err)
			}
		}
	}
	return out, nil
}
