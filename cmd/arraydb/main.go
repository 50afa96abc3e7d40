package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "arraydb",
		Short: "Page cache of the arraydb storage engine",
		Long: `arraydb runs a buffer pool over one of the page stores (mmap file,
LevelDB or memory) and exercises it with concurrent guarded page access.`,
		Version:      fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")

	rootCmd.AddCommand(newBenchCmd(&configPath))
	rootCmd.AddCommand(newConfigCmd(&configPath))
	return rootCmd
}
