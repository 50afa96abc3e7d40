package main

import (
	"fmt"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/spf13/cobra"
)

// loadOptions returns the defaults when no config file is given.
func loadOptions(path string) (util.Options, error) {
	if path == "" {
		return util.DefaultOptions(), nil
	}
	return util.LoadOptions(path)
}

func newConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(*configPath)
			if err != nil {
				return err
			}
			printOptions(cmd, opts)
			return nil
		},
	}
}

func printOptions(cmd *cobra.Command, opts util.Options) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[storage]\n")
	fmt.Fprintf(out, "path = %q\n", opts.Path)
	fmt.Fprintf(out, "backend = %q\n", opts.Backend)
	fmt.Fprintf(out, "initial_pages = %d\n", opts.InitialPages)
	fmt.Fprintf(out, "sync_writes = %t\n\n", opts.SyncWrites)
	fmt.Fprintf(out, "[buffer]\n")
	fmt.Fprintf(out, "pool_size = %d\n", opts.BufferPoolSize)
	fmt.Fprintf(out, "replacer_k = %d\n", opts.ReplacerK)
	fmt.Fprintf(out, "policy = %q\n\n", opts.ReplacerPolicy)
	fmt.Fprintf(out, "[log]\n")
	fmt.Fprintf(out, "level = %q\n", opts.LogLevel)
}
