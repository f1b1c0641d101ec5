package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/pkg/sqlite"
)

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every plan to a JSONL file, one plan per line",
		Long: `Write every plan to a JSONL file ordered by id. The file is replaced
atomically. Use "-" to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store sqlite.Store) error {
				if args[0] == "-" {
					_, err := store.Export(cmd.Context(), cmd.OutOrStdout())
					return storeError(err)
				}
				n, err := store.ExportFile(cmd.Context(), args[0])
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, map[string]any{"exported": n, "path": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Exported %d plan(s) to %s\n", n, args[0])
				})
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load plans from a JSONL file",
		Long: `Load plans from a JSONL file in one transaction. Records with an id
replace the plan with that id; records without one are created. Any bad
record aborts the import and nothing is written. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store sqlite.Store) error {
				var (
					n   int
					err error
				)
				if args[0] == "-" {
					n, err = store.Import(cmd.Context(), cmd.InOrStdin())
				} else {
					n, err = store.ImportFile(cmd.Context(), args[0])
				}
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, map[string]any{"imported": n, "path": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Imported %d plan(s) from %s\n", n, args[0])
				})
			})
		},
	}
}
