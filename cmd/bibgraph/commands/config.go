package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/errors"
)

// ConfigCmd groups configuration operations
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize bibgraph configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}

		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to render configuration")
		}
		fmt.Print(string(data))

		queries, err := cfg.ResolveQueries()
		if err != nil {
			pterm.Warning.Printf("Query resolution: %v\n", err)
			return nil
		}
		for _, q := range queries {
			if q.SourceFile == "" {
				pterm.Warning.Printf("%s: no export file found\n", q.Name)
				continue
			}
			pterm.Info.Printf("%s -> %s\n", q.Name, q.SourceFile)
		}
		return nil
	},
}

var configInitForce bool
var configInitPath string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefaultConfig(configInitPath, configInitForce); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %s\n", configInitPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file (rotates backups)")
	configInitCmd.Flags().StringVar(&configInitPath, "path", "bibgraph.toml", "Where to write the config file")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}
