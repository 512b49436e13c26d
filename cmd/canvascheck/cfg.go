package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/canvascheck/canvascheck/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML",
	Long: `Print the effective configuration after merging defaults, config
files and environment variables. With --verbose the loaded file paths
go to stderr.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to the user config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if verbose {
		for _, p := range config.Global().GetPaths() {
			fmt.Fprintln(os.Stderr, styled(mutedStyle, "loaded "+p))
		}
	}

	cfg := activeConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.Global().Save(); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	fmt.Println("wrote", filepath.Join(home, ".canvascheck", "config.yaml"))
	return nil
}
