package main

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/engine"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/ui"
	"github.com/vanderheijden86/arbor/pkg/version"
)

// app holds state shared by all commands.
type app struct {
	out    io.Writer
	errOut io.Writer
	logger *log.Logger

	configPath string
	verbose    bool
	rootID     string
	cfg        config.Config

	// Replaced in tests.
	runTUI  func(ctx context.Context, m ui.Model) error
	askNode func(nodes []model.Node, root model.ID, in *ui.NewNodeInput) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:     out,
		errOut:  errOut,
		logger:  newLogger(errOut, log.InfoLevel),
		cfg:     config.DefaultConfig(),
		runTUI:  runTUIProgram,
		askNode: ui.RunNewNodeForm,
	}
}

// rootCommand creates the root cobra command with all subcommands
// registered. Without a subcommand, arbor browses the given file.
func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "arbor [file]",
		Short: "Browse, search and edit parent-linked trees",
		Long: `arbor works on trees stored as flat lists of nodes that point at their
parent. Snapshots may be JSON, JSONC, YAML, CBOR or SQLite files.`,
		Version:           version.Version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.browse(cmd.Context(), args[0])
		},
	}
	root.SetVersionTemplate(version.Template())
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $ARBOR_CONFIG or ~/.config/arbor/config.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&a.rootID, "root", "", "id of the implicit root (overrides tree.root_id)")

	root.AddCommand(a.browseCommand())
	root.AddCommand(a.flattenCommand())
	root.AddCommand(a.searchCommand())
	root.AddCommand(a.moveCommand())
	root.AddCommand(a.addCommand())
	root.AddCommand(a.validateCommand())
	root.AddCommand(a.diffCommand())
	root.AddCommand(a.exportCommand())
	root.AddCommand(a.statsCommand())
	return root
}

// setup configures logging and loads the configuration before any command
// runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger.SetLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), a.logger))

	path := a.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	var err error
	if path == "" {
		a.cfg = config.DefaultConfig()
	} else {
		a.cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return err
	}
	if a.rootID != "" {
		a.cfg.Tree.RootID = a.rootID
	}
	a.logger.Debug("config loaded", "path", path, "root", a.cfg.Tree.RootID)
	return nil
}

func (a *app) root() model.ID {
	if a.cfg.Tree.RootID == "" {
		return model.DefaultRootID
	}
	return model.ID(a.cfg.Tree.RootID)
}

func (a *app) load(ctx context.Context, path string) ([]model.Node, error) {
	nodes, err := datasource.Load(path)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("loaded snapshot", "path", path, "nodes", len(nodes))
	return nodes, nil
}

// newEngine builds an engine over nodes from the loaded configuration.
// adjust may override settings from flags. Graph faults are logged, not
// fatal: the engine still shows what it can.
func (a *app) newEngine(ctx context.Context, nodes []model.Node, adjust func(*engine.Config) error) (*engine.Engine, error) {
	ec := a.cfg.EngineConfig()
	if adjust != nil {
		if err := adjust(&ec); err != nil {
			return nil, err
		}
	}
	e, err := engine.New(ec, nodes)
	if err != nil {
		return nil, err
	}
	if faults := e.Faults(); faults != nil {
		loggerFromContext(ctx).Warn("snapshot has faults", "err", faults)
	}
	return e, nil
}
