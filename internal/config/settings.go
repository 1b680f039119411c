// Package config resolves the configuration set of a terminal instance.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"dclinabox/internal/geom"
	"dclinabox/internal/params"
)

// Option names recognised by the resolver.
const (
	OptOrigin          = "origin"
	OptHost            = "host"
	OptScriptName      = "script_name"
	OptWxH             = "wxh"
	OptWidth           = "width"
	OptHeight          = "height"
	OptSecureAlways    = "secure_always"
	OptImmediate       = "immediate"
	OptAnother         = "another"
	OptLogoutClose     = "logout_close"
	OptScroll          = "scroll"
	OptTitle           = "title"
	OptResizeEmbedded  = "resize_embedded"
	OptResizeOptions   = "resize_options"
	OptMessages        = "messages"
	OptPrintFile       = "print_file"
	OptTerminalCommand = "terminal_command"
	OptVisualBell      = "visual_bell"
)

// Defaults.
const (
	DefaultOrigin          = "http://localhost"
	DefaultScriptName      = "dclinabox"
	DefaultTerminalCommand = "xterm -geometry +{left}+{top} -e"
)

// DefaultResizeOptions is the size-selector list offered when none is
// configured.
var DefaultResizeOptions = []string{
	"80x12", "80x16", "80x20", "80x24", "80x28", "80x32",
	"80x36", "80x40", "80x44", "80x48",
	"132x24", "132x28", "132x32", "132x36", "132x40",
	"132x44", "132x48", "132x52", "132x56", "132x60",
	"132x64",
	"255x24", "255x48", "255x64", "255x96", "255x255",
}

// Message keys.
const (
	MsgNotSupported = "NOTSUP"
	MsgConnect      = "CONNEC"
	MsgDisconnect   = "DISCON"
	MsgDisconnectOK = "DISURE"
	MsgPrint        = "PRINT"
	MsgFailed       = "FAILED"
	MsgNoResponse   = "NORESP"
	MsgBroken       = "BROKEN"
	MsgDisconnected = "DISCED"
	MsgLogout       = "LOGOUT"
	MsgTerminated   = "TERMIN"
	MsgCompat       = "COMPAT"
)

// Messages maps message keys to user-facing text.
type Messages map[string]string

// DefaultMessages holds the built-in English strings.
var DefaultMessages = Messages{
	MsgNotSupported: "WebSocket not supported!",
	MsgConnect:      "CONNECT",
	MsgDisconnect:   "DISCONNECT",
	MsgDisconnectOK: "DISCONNECT: Are you sure?",
	MsgPrint:        "Print",
	MsgFailed:       "FAILED to connect",
	MsgNoResponse:   "CONNECTED but no response",
	MsgBroken:       "CONNECTION broken",
	MsgDisconnected: "DISCONNECTED",
	MsgLogout:       "LOGOUT",
	MsgTerminated:   "TERMINATED",
	MsgCompat:       "Client and executable incompatible.\n(Expect quirky or broken behaviour!)",
}

// Get returns the text for key, falling back to the default.
func (m Messages) Get(key string) string {
	if s, ok := m[key]; ok {
		return s
	}
	return DefaultMessages[key]
}

// Settings is the resolved configuration set of one terminal instance.
type Settings struct {
	Origin          string
	Host            string
	ScriptName      string
	Geometry        geom.Geometry
	SecureAlways    bool
	Immediate       bool
	Another         bool
	LogoutClose     bool
	Scroll          int
	Title           string
	ResizeEmbedded  bool
	ResizeOptions   []string
	Messages        Messages
	PrintFile       string
	TerminalCommand string
	VisualBell      bool
}

// Resolve resolves every option once, in the order the values depend on
// each other.
func Resolve(r *params.Resolver) Settings {
	s := Settings{}
	s.Messages = ResolveMessages(r)
	s.ResizeOptions = r.Strings(OptResizeOptions, DefaultResizeOptions)
	s.ResizeEmbedded = r.Bool(OptResizeEmbedded, false)
	s.SecureAlways = r.Bool(OptSecureAlways, true)
	s.Immediate = r.Bool(OptImmediate, false)
	s.Another = r.Bool(OptAnother, false)
	s.LogoutClose = r.Bool(OptLogoutClose, true)
	s.Scroll = r.Int(OptScroll, 0)
	if s.Scroll < 0 {
		s.Scroll = 0
	}
	s.ScriptName = r.String(OptScriptName, DefaultScriptName)
	s.Title = r.String(OptTitle, "")
	s.Origin = r.String(OptOrigin, DefaultOrigin)
	s.Host = ResolveHost(r, s.Origin)
	s.PrintFile = r.String(OptPrintFile, "")
	s.TerminalCommand = r.String(OptTerminalCommand, DefaultTerminalCommand)
	s.VisualBell = r.Bool(OptVisualBell, true)
	s.Geometry = ResolveGeometry(r)
	return s
}

// ResolveHost resolves the host option, defaulting to the origin's host.
// It is called again before every connection attempt since an opener's
// host selector may have changed it.
func ResolveHost(r *params.Resolver, origin string) string {
	def := ""
	if p, err := ParseOrigin(origin); err == nil {
		def = p.HostPort()
	}
	return r.String(OptHost, def)
}

// ResolveMessages merges per-key overrides over DefaultMessages.
func ResolveMessages(r *params.Resolver) Messages {
	over := r.StringMap(OptMessages, nil)
	out := make(Messages, len(DefaultMessages))
	for k, v := range DefaultMessages {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// ResolveGeometry applies a "wxh" option, if any, over width and height,
// then resolves and clamps both.
func ResolveGeometry(r *params.Resolver) geom.Geometry {
	if wxh := r.String(OptWxH, ""); wxh != "" {
		if g, err := geom.Parse(wxh); err == nil {
			r.Local.Set(OptWidth, g.Cols)
			r.Local.Set(OptHeight, g.Rows)
		}
	}
	g := geom.Geometry{
		Cols: r.Int(OptWidth, geom.DefaultCols),
		Rows: r.Int(OptHeight, geom.DefaultRows),
	}
	g = geom.Clamp(g)
	r.Local.Set(OptWidth, g.Cols)
	r.Local.Set(OptHeight, g.Rows)
	return g
}

// Page describes the origin the client acts on behalf of, standing in for
// the location of the page that served a browser client.
type Page struct {
	Hostname string
	Port     string
	Secure   bool
}

// HostPort returns host[:port].
func (p Page) HostPort() string {
	if p.Port == "" {
		return p.Hostname
	}
	return p.Hostname + ":" + p.Port
}

// ParseOrigin parses an http(s) origin URL.
func ParseOrigin(origin string) (Page, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return Page{}, fmt.Errorf("origin %q: %w", origin, err)
	}
	switch u.Scheme {
	case "http", "ws":
	case "https", "wss":
	default:
		return Page{}, fmt.Errorf("origin %q: unsupported scheme %q", origin, u.Scheme)
	}
	if u.Hostname() == "" {
		return Page{}, fmt.Errorf("origin %q: missing host", origin)
	}
	return Page{
		Hostname: u.Hostname(),
		Port:     u.Port(),
		Secure:   u.Scheme == "https" || u.Scheme == "wss",
	}, nil
}
