package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/pkg/notebook"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

func (a *app) noteCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "note",
		Short: "Read and write the note for a calendar period",
		Long: `Notes are addressed by a date and a period type. The date picks the
day, ISO week, month or year that contains it; it defaults to today.

Period types: day, week, month, year`,
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "date inside the period, YYYY-MM-DD (default: today)")

	cmd.AddCommand(
		a.noteSetCmd(&date),
		a.noteGetCmd(&date),
		a.noteShowCmd(&date),
		a.noteRmCmd(&date),
	)
	return cmd
}

func (a *app) noteSetCmd(date *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <type> [content]",
		Short: "Write the note for a period, replacing its content",
		Long: `Write the note for a period. Without a content argument, or with "-",
the content is read from stdin.

Example:
  planbook note set week "Ship the importer" --date 2025-07-01
  cat notes.html | planbook note set day`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseType(args[0])
			if err != nil {
				return err
			}
			d, err := a.parseDate(*date)
			if err != nil {
				return err
			}
			content, err := readContent(cmd, args[1:])
			if err != nil {
				return err
			}

			return a.withNotebook(func(nb *notebook.Service) error {
				p, err := nb.Save(cmd.Context(), d, t, content)
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, p, func(w io.Writer) {
					fmt.Fprintf(w, "Saved %s note %s (id %d)\n", p.Type, p.Key, p.ID)
				})
			})
		},
	}
}

func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", sysError(fmt.Errorf("read stdin: %w", err))
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func (a *app) noteGetCmd(date *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type>",
		Short: "Print the note for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseType(args[0])
			if err != nil {
				return err
			}
			d, err := a.parseDate(*date)
			if err != nil {
				return err
			}

			return a.withNotebook(func(nb *notebook.Service) error {
				p, ok, err := nb.Note(cmd.Context(), d, t)
				if err != nil {
					return storeError(err)
				}
				if !ok {
					return userError(fmt.Errorf("no %s note for %s: %w", t, nb.Key(d, t), types.ErrNotFound))
				}
				return a.emit(cmd, p, func(w io.Writer) {
					fmt.Fprintln(w, p.Content)
				})
			})
		},
	}
}

func (a *app) noteShowCmd(date *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the day, week, month and year notes around a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.parseDate(*date)
			if err != nil {
				return err
			}

			return a.withNotebook(func(nb *notebook.Service) error {
				notes, err := nb.NotesForDate(cmd.Context(), d)
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, notes, func(w io.Writer) {
					for _, t := range types.PeriodTypes {
						p, ok := notes[t]
						if !ok {
							fmt.Fprintf(w, "%-6s %-12s (none)\n", t, nb.Key(d, t))
							continue
						}
						fmt.Fprintf(w, "%-6s %-12s %s\n", t, p.Key, preview(p.Content))
					}
				})
			})
		},
	}
}

func (a *app) noteRmCmd(date *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <type>",
		Short: "Delete the note for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseType(args[0])
			if err != nil {
				return err
			}
			d, err := a.parseDate(*date)
			if err != nil {
				return err
			}

			return a.withNotebook(func(nb *notebook.Service) error {
				removed, err := nb.Remove(cmd.Context(), d, t)
				if err != nil {
					return storeError(err)
				}
				key := nb.Key(d, t)
				return a.emit(cmd, map[string]any{"key": key, "type": t, "removed": removed}, func(w io.Writer) {
					if removed {
						fmt.Fprintf(w, "Removed %s note %s\n", t, key)
						return
					}
					fmt.Fprintf(w, "No %s note %s\n", t, key)
				})
			})
		},
	}
}
