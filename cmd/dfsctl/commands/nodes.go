package commands

import (
	"fmt"
	"os"

	"github.com/corefs/docfs/cmd/dfsctl/cmdutil"
	"github.com/corefs/docfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List storage nodes known to the coordinator",
	Long: `Display the coordinator's cluster membership table: every storage
node it has ever registered, whether it currently answers heartbeats, and
how many files it is assigned.

Examples:
  # List as a table
  dfsctl nodes

  # List as JSON
  dfsctl nodes -o json`,
	RunE: runNodes,
}

// nodeList wraps a slice of nodes for table rendering.
type nodeList []apiclient.Node

func (nl nodeList) Headers() []string {
	return []string{"ID", "ADDRESS", "FILES", "ALIVE", "LAST SEEN"}
}

func (nl nodeList) Rows() [][]string {
	rows := make([][]string, 0, len(nl))
	for _, n := range nl {
		rows = append(rows, []string{
			n.ID,
			n.IP,
			itoa(n.FileCount),
			cmdutil.BoolToYesNo(n.Alive),
			n.LastSeen.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

func runNodes(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	nodes, err := client.ListNodes()
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(os.Stdout, nodes, len(nodes) == 0, "No storage nodes registered.", nodeList(nodes))
}
