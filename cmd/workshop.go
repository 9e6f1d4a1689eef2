package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/raptorflow/raptorflow/internal/backend"
	"github.com/raptorflow/raptorflow/internal/infrastructure/sqlite"
	"github.com/raptorflow/raptorflow/internal/positioning"
	"github.com/raptorflow/raptorflow/internal/ui/styles"
	"github.com/raptorflow/raptorflow/internal/ui/wizardview"
	"github.com/raptorflow/raptorflow/internal/wizard"
)

var workshopOffline bool

var workshopCmd = &cobra.Command{
	Use:   "workshop",
	Short: "Run the positioning workshop",
	Long: `Walk through the positioning workshop step by step and generate a
positioning map. The map is saved both locally and to your RaptorFlow account.`,
	RunE: runWorkshop,
}

func init() {
	workshopCmd.Flags().BoolVar(&workshopOffline, "offline", false, "skip the generation service and use the local template")
	rootCmd.AddCommand(workshopCmd)
}

func runWorkshop(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctrl, err := buildWorkshop(db, workshopOffline)
	if err != nil {
		return fmt.Errorf("building workshop: %w", err)
	}

	m := wizardview.New(ctrl, renderPositioningMap, nil)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running workshop: %w", err)
	}
	return nil
}

// buildWorkshop wires a fresh workshop controller. Every run gets its own
// draft GUID; offline skips the backend entirely.
func buildWorkshop(db *sqlite.DB, offline bool) (*wizard.Controller, error) {
	guid := uuid.NewString()

	var gen wizard.Generator
	var saver wizard.Saver = &localDraftSaver{repo: db.DraftRepository(), guid: guid}
	if !offline {
		client := backend.New(cfg.Backend.URL,
			backend.WithTimeout(cfg.Backend.Timeout),
			backend.WithCacheTTL(cfg.Backend.CacheTTL),
		)
		gen = backend.NewPositioningGenerator(client)
		saver = &dualSaver{
			local:  saver,
			remote: backend.NewPositioningSaver(client, guid),
		}
	}

	return wizard.New(positioning.Schema(), gen, positioning.Fallback, saver)
}

// localDraftSaver persists workshop outcomes to the workspace database.
type localDraftSaver struct {
	repo positioning.DraftRepository
	guid string
}

func (s *localDraftSaver) Save(_ context.Context, fields map[string]string, result any) error {
	m, ok := result.(positioning.Map)
	if !ok {
		return fmt.Errorf("unexpected result type %T", result)
	}

	now := time.Now()
	title := fields[positioning.FieldCohort]
	if title == "" {
		title = "Untitled workshop"
	}
	return s.repo.Save(&positioning.Draft{
		GUID:      s.guid,
		Title:     title,
		Fields:    fields,
		Map:       m,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// dualSaver writes locally first, then to the backend. Either failure is
// reported; the local copy survives a backend failure.
type dualSaver struct {
	local  wizard.Saver
	remote wizard.Saver
}

func (s *dualSaver) Save(ctx context.Context, fields map[string]string, result any) error {
	localErr := s.local.Save(ctx, fields, result)
	remoteErr := s.remote.Save(ctx, fields, result)
	return errors.Join(localErr, remoteErr)
}

// renderPositioningMap formats a generated map for the terminal step.
func renderPositioningMap(result wizard.Result) string {
	m, ok := result.Value.(positioning.Map)
	if !ok {
		return fmt.Sprintf("%v", result.Value)
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Primary claim"))
	b.WriteString("\n")
	b.WriteString(m.PrimaryClaim)
	b.WriteString("\n\n")
	b.WriteString(styles.TitleStyle.Render("Supporting points"))
	b.WriteString("\n")
	for _, p := range m.SupportingPoints {
		b.WriteString(fmt.Sprintf("• %s\n", p.Claim))
		b.WriteString(styles.HintStyle.Render(fmt.Sprintf("  %s — %s (%s)\n", p.Evidence, p.EmotionalHook, p.JourneyStage)))
	}
	return strings.TrimRight(b.String(), "\n")
}
