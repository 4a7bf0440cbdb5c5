package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the colour theme",
	Long: `Show the current colour theme, or set it.

The theme is stored under the "theme" key of config.toml and is applied
by the terminal UI, including a running one.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{domain.ThemeLight.String(), domain.ThemeDark.String()},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	if len(args) == 0 {
		cmd.Println(settingsService.Theme())
		return nil
	}

	theme := domain.Theme(args[0])
	if !theme.IsValid() {
		return fmt.Errorf("%w: theme %q (expected light or dark)", domain.ErrInvalidInput, args[0])
	}
	if err := settingsService.SetTheme(theme); err != nil {
		return err
	}
	cmd.Printf("Theme set to %s\n", theme)
	return nil
}
