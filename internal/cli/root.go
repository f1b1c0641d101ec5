// Package cli implements the planbook command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/planbook/internal/logging"
	"github.com/mesh-intelligence/planbook/internal/paths"
	"github.com/mesh-intelligence/planbook/pkg/keys"
	"github.com/mesh-intelligence/planbook/pkg/notebook"
	"github.com/mesh-intelligence/planbook/pkg/sqlite"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by one invocation of the command tree.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	log       *zap.Logger
	now       func() time.Time
}

// NewRootCmd creates the top-level "planbook" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newApp(time.Now).rootCmd()
}

func newApp(now func() time.Time) *app {
	return &app{log: zap.NewNop(), now: now}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planbook",
		Short: "A planning notebook with one note per day, week, month and year",
		Long: "planbook keeps notes for calendar periods in a local SQLite store.\n" +
			"Each day, ISO week, month and year has at most one note.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		a.versionCmd(),
		a.initCmd(),
		a.noteCmd(),
		a.planCmd(),
		a.keyCmd(),
		a.calCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

// setup resolves the config directory, loads config.yaml and builds the
// logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = configDir
	a.config = cfg

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	log, err := logging.NewWithWriter(cmd.ErrOrStderr(), level, logging.FormatConsole)
	if err != nil {
		return userError(err)
	}
	a.log = log.With(zap.String(logging.FieldCommand, cmd.CommandPath()))
	return nil
}

// storeConfig builds the backend configuration from flags, config.yaml and
// the environment.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError(fmt.Errorf("config %s: %w", cfgKeyBackend, err))
	}
	return cfg, nil
}

// withStore attaches the plan store for the duration of fn.
func (a *app) withStore(fn func(store sqlite.Store) error) (err error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	store := sqlite.NewBackend(sqlite.WithLogger(a.log))
	if err := store.Attach(cfg); err != nil {
		return sysError(fmt.Errorf("attach store: %w", err))
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = sysError(derr)
		}
	}()
	return fn(store)
}

// withNotebook attaches the store and wraps it in a notebook service.
func (a *app) withNotebook(fn func(nb *notebook.Service) error) error {
	strategy, err := a.strategy()
	if err != nil {
		return err
	}
	return a.withStore(func(store sqlite.Store) error {
		return fn(notebook.New(store,
			notebook.WithStrategy(strategy),
			notebook.WithClock(a.now),
			notebook.WithLogger(a.log)))
	})
}

func (a *app) strategy() (keys.Strategy, error) {
	switch name := a.config.GetString(cfgKeyKeyStrategy); name {
	case strategyPlain, "":
		return keys.Plain(), nil
	case strategyNamespaced:
		return keys.Namespaced(), nil
	default:
		return nil, userError(fmt.Errorf("config %s: unknown strategy %q (valid: %s, %s)",
			cfgKeyKeyStrategy, name, strategyPlain, strategyNamespaced))
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(context.Background(), newApp(time.Now), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, a *app, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	code := exitCode(err)
	if code == exitSysError {
		a.log.Error("command failed", zap.Error(err))
	}
	fmt.Fprintln(stderr, "Error:", err)
	return code
}
