package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/errors"
	"github.com/bibgraph/bibgraph/review"
)

// BuildCmd runs one build and writes the result as JSON
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run one full build and write the result as JSON",
	Long: `Parse the configured export files, build the hierarchy, overlay the
curated files, lay out the graph, and write everything as JSON. Useful for
static deployments and for inspecting what the server would serve.`,
	RunE: runBuild,
}

var (
	buildOutput    string
	buildGraphOnly bool
	buildConfig    string
)

func init() {
	BuildCmd.Flags().StringVarP(&buildOutput, "out", "o", "", "Write JSON to a file instead of stdout")
	BuildCmd.Flags().BoolVar(&buildGraphOnly, "graph", false, "Emit only the graph, not the full result")
	BuildCmd.Flags().StringVar(&buildConfig, "config", "", "Load configuration from a specific file")
}

func runBuild(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if buildConfig != "" {
		cfg, err = config.LoadFromFile(buildConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	result, err := review.Build(cfg)
	if err != nil {
		return errors.Wrap(err, "build failed")
	}

	var payload interface{} = result
	if buildGraphOnly {
		payload = result.Graph
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}

	if buildOutput == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(buildOutput, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", buildOutput)
	}
	pterm.Success.Printf("Wrote %s (%d papers, %d nodes)\n",
		buildOutput, len(result.Papers), len(result.Graph.Nodes))
	return nil
}
