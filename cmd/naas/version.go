package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/naas"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of naas",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "naas version %s\n", strings.TrimSpace(naas.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
