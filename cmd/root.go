// Package cmd wires the raptorflow CLI.
package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/raptorflow/raptorflow/internal/config"
	"github.com/raptorflow/raptorflow/internal/events"
	"github.com/raptorflow/raptorflow/internal/infrastructure/sqlite"
	"github.com/raptorflow/raptorflow/internal/log"
	"github.com/raptorflow/raptorflow/internal/telemetry"
	"github.com/raptorflow/raptorflow/internal/ui/dashboard"
	"github.com/raptorflow/raptorflow/internal/ui/wizardview"
)

var (
	cfgFile           string
	cfg               config.Config
	telemetryShutdown telemetry.Shutdown
)

var rootCmd = &cobra.Command{
	Use:   "raptorflow",
	Short: "Positioning-first marketing workspace",
	Long: `RaptorFlow keeps positioning, cohorts, and growth numbers in one place.

Running without a subcommand opens the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := log.Init(cfg.LogPath(), cfg.Log.Level); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		telemetryShutdown, err = telemetry.Setup(cmd.Context(), cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if telemetryShutdown != nil {
			if err := telemetryShutdown(cmd.Context()); err != nil {
				log.ErrorErr(log.CatConfig, "Telemetry shutdown failed", err)
			}
		}
		log.Sync()
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.raptorflow/config.yaml)")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDB opens the workspace database from the configured location.
func openDB() (*sqlite.DB, error) {
	db, err := sqlite.NewDB(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening workspace database: %w", err)
	}
	return db, nil
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// One bus for the whole session: the embedded workshop publishes on
	// it and the dashboard's activity panel consumes it.
	bus := events.NewBus()
	opts := []dashboard.Option{dashboard.WithBus(bus)}
	if cfg.AutoRefresh {
		opts = append(opts, dashboard.WithAutoRefresh(cfg.DatabasePath(), cfg.AutoRefreshDebounce))
	}

	app := appModel{
		dash: dashboard.New(db.CohortRepository(), db.DraftRepository(), cfg.MetricsSeed, opts...),
		makeWizard: func() (wizardview.Model, error) {
			ctrl, err := buildWorkshop(db, false)
			if err != nil {
				return wizardview.Model{}, err
			}
			return wizardview.New(ctrl, renderPositioningMap, bus).Embedded(), nil
		},
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// appModel hosts the dashboard and, on demand, an embedded workshop run
// over the same event bus.
type appModel struct {
	dash       dashboard.Model
	wiz        *wizardview.Model
	makeWizard func() (wizardview.Model, error)
}

func (a appModel) Init() tea.Cmd {
	return a.dash.Init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(wizardview.DoneMsg); ok {
		a.wiz = nil
		return a, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		if a.wiz != nil {
			next, cmd := a.wiz.Update(key)
			w := next.(wizardview.Model)
			a.wiz = &w
			return a, cmd
		}
		if key.String() == "w" && a.makeWizard != nil {
			w, err := a.makeWizard()
			if err != nil {
				log.ErrorErr(log.CatUI, "Failed to open workshop", err)
				return a, nil
			}
			a.wiz = &w
			return a, w.Init()
		}
		next, cmd := a.dash.Update(key)
		a.dash = next.(dashboard.Model)
		return a, cmd
	}

	// Non-key messages fan out to both models; each ignores the other's
	// message types.
	var cmds []tea.Cmd
	if a.wiz != nil {
		next, cmd := a.wiz.Update(msg)
		w := next.(wizardview.Model)
		a.wiz = &w
		cmds = append(cmds, cmd)
	}
	next, cmd := a.dash.Update(msg)
	a.dash = next.(dashboard.Model)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a appModel) View() string {
	if a.wiz != nil {
		return a.wiz.View()
	}
	return a.dash.View()
}
