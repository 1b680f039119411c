package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dclinabox/internal/app"
	cfg "dclinabox/internal/config"
	"dclinabox/internal/params"
	"dclinabox/internal/session"
	"dclinabox/internal/system"
	"dclinabox/internal/term"
	"dclinabox/internal/ui"
	"dclinabox/internal/window"
)

type connectOptions struct {
	config    string
	host      string
	script    string
	wxh       string
	title     string
	secure    bool
	immediate bool
	another   bool
	scroll    int
}

var connectOpts connectOptions

func init() {
	rootCmd.AddCommand(connectCmd)
	addConnectFlags(connectCmd, &connectOpts)
}

var connectCmd = &cobra.Command{
	Use:   "connect [ws[s]://host/path[;WxH]]",
	Short: "Open a terminal and connect to a DCLinabox server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnect(cmd, &connectOpts, args)
	},
}

func addConnectFlags(cmd *cobra.Command, o *connectOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "local configuration file (default ~/.dclinabox/config.yaml)")
	f.StringVar(&o.host, "host", "", "host[:port], optionally prefixed ws:// or wss://")
	f.StringVar(&o.script, "script", "", "endpoint script name or path")
	f.StringVar(&o.wxh, "wxh", "", "opening geometry, e.g. 132x48")
	f.StringVar(&o.title, "title", "", "pinned window title")
	f.BoolVar(&o.secure, "secure", true, "always connect with wss://")
	f.BoolVarP(&o.immediate, "immediate", "i", false, "connect as soon as the terminal opens")
	f.BoolVar(&o.another, "another", false, "allow opening further instances")
	f.IntVar(&o.scroll, "scroll", 0, "scrollback lines (0 disables the scrollbar)")
}

// localScope builds the current instance's scope: the configuration file,
// then a launch fragment, then explicitly set flags.
func localScope(o *connectOptions, flags *pflag.FlagSet, args []string) (*params.Scope, error) {
	path := o.config
	if path == "" {
		p, err := cfg.File()
		if err != nil {
			return nil, err
		}
		path = p
	}
	vals, err := cfg.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	scope := params.NewScope(vals)
	if len(args) == 1 {
		frag, err := cfg.ParseFragment(args[0])
		if err != nil {
			return nil, err
		}
		frag.Apply(scope)
	}
	set := func(flag, opt string, v any) {
		if flags.Changed(flag) {
			scope.Set(opt, v)
		}
	}
	set("host", cfg.OptHost, o.host)
	set("script", cfg.OptScriptName, o.script)
	set("wxh", cfg.OptWxH, o.wxh)
	set("title", cfg.OptTitle, o.title)
	set("secure", cfg.OptSecureAlways, o.secure)
	set("immediate", cfg.OptImmediate, o.immediate)
	set("another", cfg.OptAnother, o.another)
	set("scroll", cfg.OptScroll, o.scroll)
	return scope, nil
}

// watchedSource opens the file named by env, reloading it on change.
func watchedSource(ctx context.Context, env string) (params.Source, error) {
	path := os.Getenv(env)
	if path == "" {
		return nil, nil
	}
	fs, err := params.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env, err)
	}
	if err := fs.Watch(ctx, func() {
		system.Logger.Debug("reloaded", "source", env, "path", path)
	}); err != nil {
		system.Logger.Warn("not watching", "source", env, "err", err)
	}
	return fs, nil
}

func runConnect(cmd *cobra.Command, o *connectOptions, args []string) error {
	scope, err := localScope(o, cmd.Flags(), args)
	if err != nil {
		return err
	}
	mode := window.Detect(os.Getenv)
	window.Prime(mode, scope)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opener, err := watchedSource(ctx, window.EnvOpener)
	if err != nil {
		return err
	}
	parent, err := watchedSource(ctx, window.EnvParent)
	if err != nil {
		return err
	}
	res := params.New(opener, parent, scope)
	settings := cfg.Resolve(res)

	// the TUI owns the screen from here on
	if logPath, err := cfg.LogFile(); err == nil {
		if restore, err := system.LogToFile(logPath); err == nil {
			defer restore()
		}
	}
	system.Logger.Info("starting", "mode", mode, "host", settings.Host, "geometry", settings.Geometry)

	metrics := term.Measure(int(os.Stdout.Fd()))
	uopts := ui.Options{
		Settings: &settings,
		Resolver: res,
		Dialer:   session.NewWSDialer(),
		Mode:     mode,
		Metrics:  metrics,
		Bell:     os.Stdout,
	}
	switch mode {
	case window.Standalone:
		uopts.Popup = window.NewPopup(os.Stdout, metrics)
	case window.Embedded:
		uopts.Embed = &window.Embed{
			Frame: &window.TmuxFrame{Metrics: metrics},
			Ref:   os.Getenv(window.EnvPane),
		}
	}
	if settings.Another {
		uopts.Launcher = newLauncher(settings, scope)
	}
	return app.Start(ctx, uopts)
}

func newLauncher(s cfg.Settings, scope *params.Scope) *window.Launcher {
	exe, err := os.Executable()
	if err != nil {
		exe = "dclinabox"
	}
	dir, err := cfg.OpenerDir()
	if err != nil {
		dir = os.TempDir()
	}
	l := window.NewLauncher(s.TerminalCommand, exe, dir, scope)
	l.Host = s.Host
	return l
}
