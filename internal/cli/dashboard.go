package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/storage"
	"github.com/aayushbajaj/activity-telemetry/internal/tui"
)

func newDashboardCmd(g *globals) *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Open the live terminal dashboard",
		Long: `Open a terminal dashboard with today's totals, an hourly graph, the last
seven days and the top applications. It refreshes every few seconds while
'acttel run' collects in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if theme != "" {
				if _, ok := tui.Themes[theme]; !ok {
					return fmt.Errorf("unknown theme %q (want one of %v)", theme, tui.ThemeNames)
				}
				if err := st.SetTheme(theme); err != nil {
					return err
				}
			}
			name, _ := st.GetSetting(storage.SettingTheme)
			if name == "" {
				name = cfg.Theme
			}
			tui.SetTheme(name)

			m := tui.New(st).WithLayout(layoutFor(cfg)).WithThemeStore(st)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "colour theme to use and remember")
	return cmd
}
