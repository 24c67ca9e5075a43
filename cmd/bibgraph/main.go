package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibgraph/bibgraph/cmd/bibgraph/commands"
	"github.com/bibgraph/bibgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bibgraph",
	Short: "bibgraph - literature review classification and visualization",
	Long: `bibgraph - classify bibliographic exports and visualize the result.

bibgraph parses tag-based bibliographic export files, groups records under a
collection → query → tag hierarchy, overlays curator-selected highlights, and
lays the whole thing out as a node/edge graph for a visualization front end.

Available commands:
  serve   - Start the review server (HTTP API + WebSocket graph push)
  build   - Run one build and write the result as JSON
  config  - Show or initialize configuration
  version - Show version information

Examples:
  bibgraph serve               # Start the server
  bibgraph build -o graph.json # One-shot build to a file
  bibgraph config init         # Write a starter config file
  bibgraph config show         # Show the resolved configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.BuildCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
