package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/pkg/keys"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

const previewLen = 48

// emit writes v as indented JSON in --json mode and calls text otherwise.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if a.flags.jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return sysError(fmt.Errorf("encode output: %w", err))
		}
		return nil
	}
	text(w)
	return nil
}

func printPlans(w io.Writer, plans []types.Plan) {
	if len(plans) == 0 {
		fmt.Fprintln(w, "no plans")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tKEY\tUPDATED\tCONTENT")
	for _, p := range plans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Type, p.Key, formatTimestamp(p.Timestamp), preview(p.Content))
	}
	tw.Flush()
}

func printPlan(w io.Writer, p types.Plan) {
	fmt.Fprintf(w, "id:        %d\n", p.ID)
	fmt.Fprintf(w, "type:      %s\n", p.Type)
	fmt.Fprintf(w, "key:       %s\n", p.Key)
	fmt.Fprintf(w, "updated:   %s\n", formatTimestamp(p.Timestamp))
	fmt.Fprintf(w, "content:\n%s\n", p.Content)
}

// formatTimestamp renders epoch milliseconds in UTC.
func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05Z")
}

func preview(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if r := []rune(s); len(r) > previewLen {
		return string(r[:previewLen-1]) + "…"
	}
	return s
}

// parseDate reads a YYYY-MM-DD date in local time; empty means today.
func (a *app) parseDate(s string) (time.Time, error) {
	if s == "" {
		return a.now(), nil
	}
	d, err := time.ParseInLocation(keys.DayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, userError(fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s))
	}
	return d, nil
}

func parseType(s string) (types.PeriodType, error) {
	t, err := types.ParsePeriodType(s)
	if err != nil {
		return "", userError(err)
	}
	return t, nil
}
