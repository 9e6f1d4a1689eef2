package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/raptorflow/raptorflow/internal/cohorts"
	"github.com/raptorflow/raptorflow/internal/ui/wizardview"
	"github.com/raptorflow/raptorflow/internal/wizard"
)

var cohortsCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "Manage audience cohorts",
	RunE:  runCohortsList,
}

var cohortsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a cohort through the cohort wizard",
	RunE:  runCohortsNew,
}

var cohortsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a cohort",
	Args:  cobra.ExactArgs(1),
	RunE:  runCohortsDelete,
}

func init() {
	cohortsCmd.AddCommand(cohortsNewCmd)
	cohortsCmd.AddCommand(cohortsDeleteCmd)
	rootCmd.AddCommand(cohortsCmd)
}

func runCohortsList(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.CohortRepository().List()
	if err != nil {
		return fmt.Errorf("listing cohorts: %w", err)
	}

	fmt.Println("Cohorts:")
	if len(list) == 0 {
		fmt.Println("  (none — create one with 'raptorflow cohorts new')")
		return nil
	}

	maxLen := maxNameLen(list)
	for _, c := range list {
		fmt.Printf("  %-*s  %-6s  %s\n", maxLen, c.Name, c.SizeBand, c.Segment)
	}
	return nil
}

// maxNameLen returns the length of the longest cohort name in the slice.
func maxNameLen(list []*cohorts.Cohort) int {
	maxLen := 0
	for _, c := range list {
		if len(c.Name) > maxLen {
			maxLen = len(c.Name)
		}
	}
	return maxLen
}

func runCohortsNew(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	saver := &cohortSaver{repo: db.CohortRepository()}
	ctrl, err := wizard.New(cohorts.WizardSchema(), nil, cohorts.Fallback, saver)
	if err != nil {
		return fmt.Errorf("building cohort wizard: %w", err)
	}

	m := wizardview.New(ctrl, renderCohortSummary, nil)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running cohort wizard: %w", err)
	}
	return nil
}

func runCohortsDelete(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CohortRepository().Delete(args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted", args[0])
	return nil
}

// cohortSaver persists the wizard's answers as a cohort.
type cohortSaver struct {
	repo cohorts.Repository
}

func (s *cohortSaver) Save(_ context.Context, fields map[string]string, _ any) error {
	return s.repo.Save(cohorts.FromFields(fields))
}

// renderCohortSummary formats the review step of the cohort wizard.
func renderCohortSummary(result wizard.Result) string {
	return fmt.Sprintf("%v", result.Value)
}
