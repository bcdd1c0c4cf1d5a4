package main

import (
	"fmt"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show the display theme preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()

		theme, err := stack.Themes.Load(cmd.Context())
		if err != nil {
			stack.Logger.Warn("Failed to load theme preference", "err", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Store the display theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := domain.ParseTheme(args[0])
		if err != nil {
			return err
		}
		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()

		if err := stack.Themes.Set(cmd.Context(), theme); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()

		theme, err := stack.Themes.Toggle(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeToggleCmd)
}
