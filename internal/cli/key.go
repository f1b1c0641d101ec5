package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/pkg/keys"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

func (a *app) keyCmd() *cobra.Command {
	var (
		date       string
		typ        string
		namespaced bool
	)
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the period keys of a date",
		Long: `Print the keys a date maps to. Without --type all four are printed.

Example:
  planbook key --date 2024-12-30
  planbook key --date 2025-07-01 --type week --namespaced`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.parseDate(date)
			if err != nil {
				return err
			}
			strategy := keys.Plain()
			if namespaced {
				strategy = keys.Namespaced()
			}

			if typ != "" {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				k := strategy.Key(d, t)
				return a.emit(cmd, map[string]string{"type": string(t), "key": k}, func(w io.Writer) {
					fmt.Fprintln(w, k)
				})
			}

			all := strategy.Keys(d)
			return a.emit(cmd, all, func(w io.Writer) {
				for _, t := range types.PeriodTypes {
					fmt.Fprintf(w, "%-6s %s\n", t, all.Get(t))
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&typ, "type", "", "print only the key of this period type")
	cmd.Flags().BoolVar(&namespaced, "namespaced", false, "print notes:<type>:<key> keys")

	cmd.AddCommand(a.keyParseCmd())
	return cmd
}

// parsedKey is the output of key parse.
type parsedKey struct {
	Key        string           `json:"key"`
	Namespaced bool             `json:"namespaced"`
	Type       types.PeriodType `json:"type"`
	Fragment   string           `json:"fragment"`
	Start      string           `json:"start,omitempty"`
}

func (a *app) keyParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <key>",
		Short: "Recover the period type and start date from a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := parsedKey{Key: args[0], Fragment: args[0]}

			if p, ok := keys.ParseNamespaced(args[0]); ok {
				out.Namespaced = true
				out.Type = p.Type
				out.Fragment = p.Fragment
			}
			t, start, ok := keys.ParsePlain(out.Fragment)
			switch {
			case ok && (out.Type == "" || out.Type == t):
				out.Type = t
				out.Start = start.Format(keys.DayLayout)
			case !out.Namespaced:
				return userError(fmt.Errorf("unrecognized key %q", args[0]))
			}

			return a.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "type:       %s\n", out.Type)
				fmt.Fprintf(w, "fragment:   %s\n", out.Fragment)
				fmt.Fprintf(w, "namespaced: %t\n", out.Namespaced)
				if out.Start != "" {
					fmt.Fprintf(w, "starts:     %s\n", out.Start)
				}
			})
		},
	}
}
