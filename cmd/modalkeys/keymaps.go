package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/input/finder"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// keymapFlags select the mappings a keymaps subcommand works on.
type keymapFlags struct {
	mode   string
	prefix string
}

func (f *keymapFlags) filter() (keymap.Filter, error) {
	filter := keymap.Filter{Mode: mode.ID(f.mode)}
	if f.prefix != "" {
		seq, err := key.ParseSequence(f.prefix)
		if err != nil {
			return keymap.Filter{}, fmt.Errorf("--prefix: %w", err)
		}
		filter.Prefix = seq
	}
	return filter, nil
}

func newKeymapsCmd(opts *rootOptions) *cobra.Command {
	flags := &keymapFlags{}
	cmd := &cobra.Command{
		Use:   "keymaps",
		Short: "Inspect the configured keymaps",
		Long: `Inspect the mappings the engine holds after loading the defaults, the
configured keymap files and the configured script.`,
	}
	cmd.PersistentFlags().StringVarP(&flags.mode, "mode", "m", "", "only mappings of this mode")
	cmd.PersistentFlags().StringVar(&flags.prefix, "prefix", "", "only mappings starting with these keys")

	cmd.AddCommand(
		newKeymapsListCmd(opts, flags),
		newKeymapsExportCmd(opts, flags),
		newKeymapsSearchCmd(opts, flags),
	)
	return cmd
}

// loadKeymaps builds a session from the configuration and returns the
// mappings selected by flags along with the leader in effect.
func loadKeymaps(cmd *cobra.Command, opts *rootOptions, flags *keymapFlags) ([]keymap.Entry, key.Notation, error) {
	filter, err := flags.filter()
	if err != nil {
		return nil, "", err
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, "", err
	}
	log, closeLog, err := opts.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = closeLog() }()

	s, err := newSession(cfg, input.Options{}, log)
	if err != nil {
		return nil, "", err
	}
	defer s.Close()

	if filter.Mode != "" && !s.engine.Modes().Has(filter.Mode) {
		return nil, "", fmt.Errorf("%w: %s", mode.ErrUnknownMode, filter.Mode)
	}
	return s.engine.ListKeymaps(filter), s.engine.Store().Leader(), nil
}

func newKeymapsListCmd(opts *rootOptions, flags *keymapFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List mappings as a table",
		Long: `List mappings as a table of mode, keys, action and description.

Examples:
  modalkeys keymaps list
  modalkeys keymaps list --mode normal --prefix g`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, _, err := loadKeymaps(cmd, opts, flags)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), entries)
		},
	}
}

func writeTable(w io.Writer, entries []keymap.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tKEYS\tACTION\tDESCRIPTION")
	for _, e := range entries {
		keys := e.Sequence.String()
		if !e.IsGlobal() {
			keys += " [" + e.BufferID + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Mode, keys, e.Action, e.Description)
	}
	return tw.Flush()
}

func newKeymapsExportCmd(opts *rootOptions, flags *keymapFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export mappings as a JSON keymap file",
		Long: `Export mappings as a JSON keymap document that keymap_files accepts.

Examples:
  modalkeys keymaps export > keymaps.json
  modalkeys keymaps export --mode insert -o insert.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, leader, err := loadKeymaps(cmd, opts, flags)
			if err != nil {
				return err
			}
			data, err := keymap.ExportJSON(string(leader), entries)
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, append(data, '\n'), 0o644)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newKeymapsSearchCmd(opts *rootOptions, flags *keymapFlags) *cobra.Command {
	var (
		limit         int
		caseSensitive bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search mappings by keys, action and description",
		Long: `Fuzzy-search mappings by keys, action and description, best match first.

Examples:
  modalkeys keymaps search undo
  modalkeys keymaps search --mode normal --limit 5 motion`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, _, err := loadKeymaps(cmd, opts, flags)
			if err != nil {
				return err
			}
			f := finder.New(finder.Options{CaseSensitive: caseSensitive})
			matches := f.Find(args[0], entries, limit)
			found := make([]keymap.Entry, len(matches))
			for i, m := range matches {
				found[i] = m.Entry
			}
			return writeTable(cmd.OutOrStdout(), found)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "match case exactly")
	return cmd
}
