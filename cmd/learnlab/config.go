package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/learnlab/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify learnlab configuration.

Without arguments, displays the current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/learnlab/config.yaml
Project-specific overrides can be placed in .learnlab.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 0:
			return displayAllConfig(cfg)
		case 1:
			value, err := config.Lookup(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		default:
			if err := config.Save(args[0], args[1]); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			printStatus("✓", fmt.Sprintf("Set %s = %s in %s", args[0], args[1], config.GetUserConfigPath()), color.FgGreen)
			return nil
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) error {
	for _, key := range config.Keys() {
		value, err := config.Lookup(cfg, key)
		if err != nil {
			return err
		}
		if value == "" {
			value = "(not set)"
		}
		fmt.Printf("%s: %s\n", key, value)
	}
	return nil
}
