package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tonesCmd = &cobra.Command{
	Use:   "tones",
	Short: "List the accepted tones",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tones, err := cfg.ToneSet()
		if err != nil {
			return err
		}
		for _, t := range tones.Tones() {
			marker := " "
			if t == tones.Default() {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tonesCmd)
}
