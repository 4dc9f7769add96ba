package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var VERSION = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "navbake",
		Short:        "bake walkable navigation meshes from triangle geometry",
		Version:      VERSION,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		BakeCmd(),
		LayersCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
