package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	cfg "dclinabox/internal/config"
	"dclinabox/internal/params"
	"dclinabox/internal/window"
)

var (
	openHosts  string
	openSizes  string
	openConfig string
	openYes    bool
)

func init() {
	rootCmd.AddCommand(openCmd)
	f := openCmd.Flags()
	f.StringVar(&openHosts, "hosts", "", "comma list of host[=description]; an empty item means the default host")
	f.StringVar(&openSizes, "sizes", strings.Join(cfg.DefaultResizeOptions, ","), "comma list of WxH sizes")
	f.StringVarP(&openConfig, "config", "c", "", "local configuration file passed on to the instance")
	f.BoolVarP(&openYes, "yes", "y", false, "skip the form and open the first host and size")
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a standalone terminal in a new window",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := localScope(&connectOptions{config: openConfig}, cmd.Flags(), nil)
		if err != nil {
			return err
		}
		res := params.New(nil, nil, scope)
		settings := cfg.Resolve(res)

		hosts, host := window.ParseHosts(openHosts, settings.Host)
		sizes, size := window.ParseSizes(openSizes)
		if !openYes {
			if err := openForm(hosts, sizes, &host, &size); err != nil {
				return err
			}
		}

		l := newLauncher(settings, scope)
		l.WxH = size
		c, err := l.Open(host)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ opened %s (pid %d)\n", orDefault(host, settings.Host), c.Process.Pid)
		return nil
	},
}

// openForm lets the user pick host and size. Lists with fewer than two
// entries are not asked about.
func openForm(hosts []window.HostOption, sizes []string, host, size *string) error {
	green := lipgloss.Color("#03BF87")
	theme := huh.ThemeCharm()
	theme.FieldSeparator = lipgloss.NewStyle()
	theme.Blurred.Title = theme.Blurred.Title.Width(10).Foreground(lipgloss.Color("7"))
	theme.Focused.Title = theme.Focused.Title.Width(10).Foreground(green).Bold(true)
	theme.Focused.SelectedOption = lipgloss.NewStyle().Foreground(green)

	var fields []huh.Field
	fields = append(fields, huh.NewNote().Title("DCLinabox").Description("Open a standalone terminal"))
	if len(hosts) > 1 {
		opts := make([]huh.Option[string], 0, len(hosts))
		for _, h := range hosts {
			opts = append(opts, huh.NewOption(h.Label, h.Value))
		}
		fields = append(fields, huh.NewSelect[string]().Title("Host").Options(opts...).Value(host))
	}
	if len(sizes) > 1 {
		height := len(sizes)
		if height > 12 {
			height = 12
		}
		fields = append(fields, huh.NewSelect[string]().Title("Size").Options(huh.NewOptions(sizes...)...).Height(height).Value(size))
	}
	if len(fields) == 1 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(theme).WithWidth(50).WithOutput(os.Stderr).Run()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
