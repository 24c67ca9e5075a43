package commands

import (
	"fmt"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/logger"
	"github.com/bibgraph/bibgraph/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, cfg *config.Config) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                           ║\n")
	fmt.Printf("   ║   ██████  ██ ██████   ██████  ██████      ║\n")
	fmt.Printf("   ║   ██   ██ ██ ██   ██ ██      ██   ██      ║\n")
	fmt.Printf("   ║   ██████  ██ ██████  ██  ███ ██████       ║\n")
	fmt.Printf("   ║   ██   ██ ██ ██   ██ ██   ██ ██   ██      ║\n")
	fmt.Printf("   ║   ██████  ██ ██████   ██████ ██   ██      ║\n")
	fmt.Printf("   ║                                           ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ bibgraph ──────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:   %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:     %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	fmt.Printf("%s│%s Sources:   %s\n", green, reset, cfg.Sources.Dir)
	fmt.Printf("%s│%s Port:      %d\n", green, reset, cfg.GetServerPort())
	fmt.Printf("%s└─────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Edit source files to see live graph updates%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
