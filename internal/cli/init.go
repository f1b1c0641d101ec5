package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/internal/paths"
	"github.com/mesh-intelligence/planbook/pkg/sqlite"
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize planbook storage",
		Long: `Create the configuration directory with a default config.yaml, then
create the plan database in the data directory. Running init again is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}
			wrote, err := writeConfigIfMissing(a.configDir, a.flags.dataDir)
			if err != nil {
				return sysError(err)
			}

			// Attaching creates the database and brings the schema up to date.
			if err := a.withStore(func(sqlite.Store) error { return nil }); err != nil {
				return err
			}

			out := map[string]any{
				"configFile":    paths.ConfigFile(a.configDir),
				"configWritten": wrote,
				"dataDir":       cfg.DataDir,
			}
			return a.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "planbook initialized\nconfig: %s\ndata:   %s\n", paths.ConfigFile(a.configDir), cfg.DataDir)
			})
		},
	}
}
