package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/pkg/sqlite"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

func (a *app) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Work with stored plans directly by id, type, key or time",
	}
	cmd.AddCommand(
		a.planListCmd(),
		a.planGetCmd(),
		a.planUpdateCmd(),
		a.planDeleteCmd(),
		a.planClearCmd(),
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("invalid plan id %q: %w", s, types.ErrMissingID))
	}
	return id, nil
}

func (a *app) planListCmd() *cobra.Command {
	var (
		typ      string
		key      string
		from, to int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans, optionally filtered",
		Long: `List plans. At most one filter may be given: --type, --key, or a
--from/--to time range in epoch milliseconds (inclusive). With --key and
--type together the single matching plan is listed.

Example:
  planbook plan list
  planbook plan list --type week
  planbook plan list --from 1751328000000 --to 1751414399999`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ranged := cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
			if ranged && (typ != "" || key != "") {
				return userError(errors.New("--from/--to cannot be combined with --type or --key"))
			}
			if ranged && !(cmd.Flags().Changed("from") && cmd.Flags().Changed("to")) {
				return userError(errors.New("--from and --to must be given together"))
			}
			var t types.PeriodType
			if typ != "" {
				var err error
				if t, err = parseType(typ); err != nil {
					return err
				}
			}

			return a.withStore(func(store sqlite.Store) error {
				ctx := cmd.Context()
				var (
					plans []types.Plan
					err   error
				)
				switch {
				case ranged:
					plans, err = store.GetByTimeRange(ctx, from, to)
				case key != "" && t != "":
					var (
						p  types.Plan
						ok bool
					)
					p, ok, err = store.GetByKeyAndType(ctx, key, t)
					plans = []types.Plan{}
					if ok {
						plans = append(plans, p)
					}
				case key != "":
					plans, err = store.GetByKey(ctx, key)
				case t != "":
					plans, err = store.GetByType(ctx, t)
				default:
					plans, err = store.GetAll(ctx)
				}
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, plans, func(w io.Writer) { printPlans(w, plans) })
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "period type: day, week, month, year")
	cmd.Flags().StringVar(&key, "key", "", "period key, e.g. 2025-W27")
	cmd.Flags().Int64Var(&from, "from", 0, "range start, epoch milliseconds")
	cmd.Flags().Int64Var(&to, "to", 0, "range end, epoch milliseconds")
	return cmd
}

func (a *app) planGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one plan by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(store sqlite.Store) error {
				p, ok, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return storeError(err)
				}
				if !ok {
					return userError(fmt.Errorf("plan %d: %w", id, types.ErrNotFound))
				}
				return a.emit(cmd, p, func(w io.Writer) { printPlan(w, p) })
			})
		},
	}
}

func (a *app) planUpdateCmd() *cobra.Command {
	var (
		content   string
		key       string
		typ       string
		timestamp int64
		touch     bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a plan; unset fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := types.PlanPatch{ID: id}
			flags := cmd.Flags()
			if flags.Changed("content") {
				patch.Content = &content
			}
			if flags.Changed("key") {
				patch.Key = &key
			}
			if flags.Changed("type") {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			switch {
			case flags.Changed("timestamp"):
				patch.Timestamp = &timestamp
			case touch:
				now := a.now().UnixMilli()
				patch.Timestamp = &now
			}
			if patch.Empty() {
				return userError(errors.New("nothing to update: pass at least one of --content, --key, --type, --timestamp, --touch"))
			}

			return a.withStore(func(store sqlite.Store) error {
				p, err := store.Update(cmd.Context(), patch)
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, p, func(w io.Writer) { printPlan(w, p) })
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&key, "key", "", "new period key")
	cmd.Flags().StringVar(&typ, "type", "", "new period type")
	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "new timestamp, epoch milliseconds")
	cmd.Flags().BoolVar(&touch, "touch", false, "set the timestamp to now")
	return cmd
}

func (a *app) planDeleteCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete plans by id, or every plan of one type",
		Long: `Delete the given plan ids in one transaction, or with --type every plan
of that period type. Missing ids are ignored.

Example:
  planbook plan delete 3 7 12
  planbook plan delete --type week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (typ == "") == (len(args) == 0) {
				return userError(errors.New("give plan ids or --type, not both"))
			}
			if typ != "" {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				return a.withStore(func(store sqlite.Store) error {
					if err := store.DeleteByType(cmd.Context(), t); err != nil {
						return storeError(err)
					}
					return a.emit(cmd, map[string]any{"deletedType": t}, func(w io.Writer) {
						fmt.Fprintf(w, "Deleted all %s plans\n", t)
					})
				})
			}

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return a.withStore(func(store sqlite.Store) error {
				var err error
				if len(ids) == 1 {
					err = store.DeleteByID(cmd.Context(), ids[0])
				} else {
					err = store.DeleteMany(cmd.Context(), ids)
				}
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, map[string]any{"deletedIds": ids}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %d plan(s)\n", len(ids))
				})
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "delete every plan of this period type")
	return cmd
}

func (a *app) planClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return userError(errors.New("clear deletes every plan; pass --yes to confirm"))
			}
			return a.withStore(func(store sqlite.Store) error {
				if err := store.DeleteAll(cmd.Context()); err != nil {
					return storeError(err)
				}
				return a.emit(cmd, map[string]any{"cleared": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Deleted all plans")
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every plan")
	return cmd
}
