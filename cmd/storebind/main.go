package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storebind/internal/config"
	"github.com/vango-dev/storebind/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "storebind",
		Short: "Bind a store to a tree of nodes",
		Long: `storebind keeps a tree of connected nodes in sync with a store.

Every commit notifies the tree top-down, each node recomputing its
props before its children do. This tool runs a small demo tree and
serves the devtools inspector for it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: storebind.yaml in the working directory)")

	load := func() (*config.Config, error) {
		return loadConfig(configPath)
	}
	rootCmd.AddCommand(
		demoCmd(load),
		serveCmd(load),
		versionCmd(),
	)

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		errors.DisableColors()
	}
	if err := rootCmd.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads path, or the working directory's configuration file.
// Without any file the defaults are used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if stderrors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
