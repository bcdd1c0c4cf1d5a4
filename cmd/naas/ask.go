package main

import (
	"os"
	"strings"

	"github.com/aretw0/naas/internal/cli"
	"github.com/aretw0/naas/internal/config"
	"github.com/aretw0/naas/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [situation...]",
	Short: "Generate a refusal, or start the interactive prompt",
	Long: `With arguments, prints one refusal for the described situation and exits.
Without arguments, starts an interactive session; type :help for its commands.

Use --server to relay through a running 'naas serve' instead of calling Gemini.`,
	Example: `  naas ask --tone firm "my neighbour wants to borrow my car"
  naas ask --session work`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		stack, err := loadStack(cmd, true, func(c *config.Config) {
			if server != "" {
				c.Relay.Remote = server
			}
		})
		if err != nil {
			return err
		}
		defer stack.Close()

		opts := cli.AskOptions{Situation: strings.Join(args, " ")}
		opts.Tone, _ = cmd.Flags().GetString("tone")
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		if !tui.IsTerminal(os.Stdout) {
			opts.Plain = true
		}
		return cli.RunAsk(stack, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("tone", "t", "", "Tone of the refusal (see 'naas tones')")
	askCmd.Flags().StringP("session", "s", "", "Resume or create a named session")
	askCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	askCmd.Flags().Bool("json", false, "Print the one-shot result as JSON")
	askCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
	askCmd.Flags().String("server", "", "Relay through a naas server at this URL")
}
