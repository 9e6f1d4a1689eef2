package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/raptorflow/raptorflow/internal/ui/roiview"
)

var roiCmd = &cobra.Command{
	Use:   "roi",
	Short: "Estimate time savings and payback for a team",
	RunE:  runROI,
}

func init() {
	rootCmd.AddCommand(roiCmd)
}

func runROI(cmd *cobra.Command, _ []string) error {
	p := tea.NewProgram(roiview.New(cfg.ROI.PlanAnnualPrice), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running roi calculator: %w", err)
	}
	return nil
}
