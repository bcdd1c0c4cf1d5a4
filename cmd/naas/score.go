package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/naas/internal/presentation/tui"
	"github.com/aretw0/naas/pkg/tact"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Rate how tactful a refusal reads",
	Long:  `Scores the given text from 0 to 100. Without arguments the text is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return errors.New("text is required")
		}

		a := tact.Analyze(text)
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}

		fmt.Fprintln(out, tui.Meter(a.Score))
		fmt.Fprintf(out, "  base %d, length %d (+%d)\n", a.Base, a.Length, a.LengthBonus)
		if len(a.Softening) > 0 {
			fmt.Fprintf(out, "  softening (+%d each): %s\n", tact.SofteningBonus, strings.Join(a.Softening, ", "))
		}
		if len(a.Bluntness) > 0 {
			fmt.Fprintf(out, "  bluntness (-%d each): %s\n", tact.BluntnessPenalty, strings.Join(a.Bluntness, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().Bool("json", false, "Print the breakdown as JSON")
}
