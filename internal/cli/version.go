package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "0.1.0-dev"

const modulePath = "github.com/mesh-intelligence/planbook"

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the planbook version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version": Version,
				"module":  modulePath,
				"go":      runtime.Version(),
			}
			return a.emit(cmd, info, func(w io.Writer) {
				fmt.Fprintf(w, "planbook v%s\nmodule: %s\n", Version, modulePath)
			})
		},
	}
}
