// Package cli wires the cobra command tree of the duty-roster tool.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/database"
	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/scheduler"
	"github.com/opsdesk/duty-roster/internal/swap"
)

// App carries the shared dependencies of all commands.
type App struct {
	Config    *config.Config
	DB        *database.DB
	Store     *database.Store
	Assembler *scheduler.Assembler
	Applier   *swap.Applier
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// newApp loads configuration, opens the database and builds the engine.
func newApp(cfgFile string, verbose bool) (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logging.Initialize(verbose)
	if !verbose {
		logging.SetLogLevel(cfg.Service.LogLevel)
	}

	db, err := database.New(database.NewDefaultOptions(cfg.Database.Path))
	if err != nil {
		return nil, err
	}
	if err := db.MigrateDatabase(); err != nil {
		db.Close()
		return nil, err
	}

	store := database.NewStore(db)
	return &App{
		Config:    cfg,
		DB:        db,
		Store:     store,
		Assembler: scheduler.NewAssembler(cfg.Scheduling, store),
		Applier:   swap.NewApplier(cfg.Scheduling, store),
	}, nil
}

// NewRootCommand builds the duty-roster command tree.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile string
		verbose bool
		app     *App
	)

	root := &cobra.Command{
		Use:   "duty-roster",
		Short: "Fair, auditable duty scheduling for operations teams",
		Long: `duty-roster generates daily ATM shift coverage and weekly SysAid
maker/checker pairs from a fairness ledger, with a full audit trail of
every decision and a peer/admin approved swap workflow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = newApp(cfgFile, verbose)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	appRef := func() *App { return app }
	registerHooks(appRef)
	root.AddCommand(
		newGenerateCommand(appRef),
		newExportCommand(appRef),
		newMemberCommand(appRef),
		newUnavailableCommand(appRef),
		newScheduleCommand(appRef),
		newSwapCommand(appRef),
		newLedgerCommand(appRef),
	)
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
