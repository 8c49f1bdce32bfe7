package commands

import (
	"fmt"
	"net"
	"time"

	"github.com/corefs/docfs/internal/cli/output"
	"github.com/corefs/docfs/pkg/config"
	"github.com/spf13/cobra"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether a coordinator is accepting client connections",
	Long: `Dial the coordinator's client listener to check whether it is up.

This does not require the admin API: it is a plain TCP reachability check
against the configured client_port, so it also works against a coordinator
started with the admin API disabled.

Examples:
  # Check status using the default config location
  coordinator status

  # Output as JSON
  coordinator status -o json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// reachabilityStatus reports whether the coordinator's client port accepted
// a connection.
type reachabilityStatus struct {
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Address   string `json:"address" yaml:"address"`
	Message   string `json:"message" yaml:"message"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	cfg, err := config.LoadCoordinator(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", displayAddr(cfg.BindAddress), cfg.ClientPort)
	status := reachabilityStatus{Address: addr}

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		status.Message = fmt.Sprintf("coordinator is not reachable at %s: %v", addr, err)
	} else {
		_ = conn.Close()
		status.Reachable = true
		status.Message = fmt.Sprintf("coordinator is accepting connections at %s", addr)
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), status)
	case output.FormatYAML:
		return output.PrintYAML(cmd.OutOrStdout(), status)
	default:
		printStatusTable(status)
	}
	return nil
}

func printStatusTable(status reachabilityStatus) {
	fmt.Println()
	fmt.Println("Coordinator Status")
	fmt.Println("==================")
	fmt.Println()
	if status.Reachable {
		fmt.Printf("  Status:  \033[32m● Reachable\033[0m\n")
	} else {
		fmt.Printf("  Status:  \033[31m○ Unreachable\033[0m\n")
	}
	fmt.Printf("  Address: %s\n", status.Address)
	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}

func displayAddr(bind string) string {
	if bind == "" {
		return "localhost"
	}
	return bind
}
