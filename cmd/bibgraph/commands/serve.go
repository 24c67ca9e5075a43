package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/errors"
	"github.com/bibgraph/bibgraph/review"
	"github.com/bibgraph/bibgraph/server"
)

// ServeCmd starts the bibgraph review server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the review server with graph visualization",
	Long: `Launch the bibgraph server: JSON API for papers, hierarchy and graph,
plus a WebSocket channel that pushes the graph again whenever a source file
changes.`,
	RunE: runServe,
}

var (
	serveNoBrowser bool
	serveNoWatch   bool
	serveConfig    string
)

func init() {
	ServeCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", true, "Disable automatic browser opening")
	ServeCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Disable the source-directory watcher")
	ServeCmd.Flags().StringVar(&serveConfig, "config", "", "Load configuration from a specific file")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = 1
	}

	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	printStartupBanner(verbosity, cfg)

	cache := review.NewCache(cfg)
	srv := server.New(cfg, cache, nil)

	// Prime the cache so the first request is fast and config problems
	// surface before the listener comes up.
	result, err := cache.Load()
	if err != nil {
		return errors.Wrap(err, "initial build failed")
	}
	pterm.Info.Printf("Loaded %d papers across %d queries\n", len(result.Papers), len(result.Queries))

	if !serveNoWatch {
		watcher, err := review.NewSourceWatcher(cache, cfg.Sources.Dir, cfg.GetCuratedDir())
		if err != nil {
			pterm.Warning.Printf("Source watching disabled: %v\n", err)
		} else {
			watcher.OnReload(func(result *review.Result) {
				srv.BroadcastGraph(result.Graph)
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	if !serveNoBrowser {
		go openBrowser(fmt.Sprintf("http://localhost:%d", cfg.GetServerPort()))
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			shutdownDone <- srv.Shutdown(ctx)
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}

// loadConfig loads from the --config file when given, otherwise through the
// merged system/user/project chain.
func loadConfig() (*config.Config, error) {
	if serveConfig != "" {
		return config.LoadFromFile(serveConfig)
	}
	return config.Load()
}

// openBrowser attempts to open the URL in the default browser
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = exec.Command("open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		pterm.Warning.Printf("Could not open browser: %v\n", err)
	}
}
