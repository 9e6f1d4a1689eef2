package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raptorflow/raptorflow/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "config.yaml")
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}
