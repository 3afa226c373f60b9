package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dealsctl",
		Short:         "dealboard admin tooling",
		Long:          "Offline ranking, schema migrations and admin token helpers for the dealboard API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRankCmd(),
		newMigrateCmd(),
		newGenKeysCmd(),
		newMintTokenCmd(),
	)
	return root
}

func Execute() {
	cobra.OnInitialize(func() { _ = godotenv.Load() })

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
