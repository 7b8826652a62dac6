package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/input/key"
)

func newNormalizeCmd() *cobra.Command {
	var parse bool
	cmd := &cobra.Command{
		Use:   "normalize <key>...",
		Short: "Print the canonical notation of each key",
		Long: `Print the canonical notation of each key, one per line.

Examples:
  modalkeys normalize '<s-a>' '<A-C-x>' '<esc>'
  modalkeys normalize --parse '<S-h>'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				if !parse {
					fmt.Fprintln(out, key.Normalize(arg))
					continue
				}
				p, err := key.Parse(arg)
				if err != nil {
					return fmt.Errorf("parsing %q: %w", arg, err)
				}
				data, err := json.Marshal(map[string]any{
					"key":   p.Key,
					"ctrl":  p.Ctrl,
					"alt":   p.Alt,
					"meta":  p.Meta,
					"shift": p.Shift,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parse, "parse", "p", false, "print the structured parse as JSON instead")
	return cmd
}

func newSplitCmd() *cobra.Command {
	var normalize, strict bool
	cmd := &cobra.Command{
		Use:   "split <keys>",
		Short: "Split a key sequence into keys",
		Long: `Split an authored key sequence into keys, separated by spaces. Keys are
printed as written unless --normalize or --strict is given.

Examples:
  modalkeys split 'd2w'
  modalkeys split --normalize '<c-w>gh'
  modalkeys split --strict '<leader>ff'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seq key.Sequence
			switch {
			case strict:
				var err error
				if seq, err = key.ParseSequence(args[0]); err != nil {
					return err
				}
			case normalize:
				seq = key.NormalizeSequence(args[0])
			default:
				seq = key.Split(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(seq.Strings(), " "))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&normalize, "normalize", "n", false, "print each key in canonical notation")
	cmd.Flags().BoolVar(&strict, "strict", false, "like --normalize, but fail on keys that do not decode")
	return cmd
}
