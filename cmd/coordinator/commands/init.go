package commands

import (
	"fmt"
	"os"

	"github.com/corefs/docfs/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample coordinator configuration file at
$XDG_CONFIG_HOME/docfs/config.yaml (or --config, if given).

Examples:
  # Initialize with default location
  coordinator init

  # Force overwrite an existing config file
  coordinator init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	var path string
	var err error
	if configFile := GetConfigFile(); configFile != "" {
		path = configFile
		if _, statErr := os.Stat(path); statErr == nil && !initForce {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
		err = config.SaveYAML(config.GetDefaultCoordinatorConfig(), path)
	} else {
		path, err = config.InitCoordinatorConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to choose a persistence backend")
	fmt.Println("  2. Start the coordinator with: coordinator start")
	fmt.Printf("  3. Or specify a custom config: coordinator start --config %s\n", path)
	return nil
}
