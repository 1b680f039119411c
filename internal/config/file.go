package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"dclinabox/internal/params"
)

// FileOptions documents the local configuration file. It exists to produce
// the JSON Schema; values are read generically through params.
type FileOptions struct {
	Origin          string            `json:"origin,omitempty" jsonschema:"description=URL standing in for the serving page (scheme decides ws/wss, host and port are defaults)"`
	Host            string            `json:"host,omitempty" jsonschema:"description=host[:port] of the DCLinabox server; may be prefixed ws:// or wss://"`
	ScriptName      string            `json:"script_name,omitempty" jsonschema:"description=endpoint name under /cgiplus-bin/ or an absolute path"`
	WxH             string            `json:"wxh,omitempty" jsonschema:"pattern=^[0-9]+x[0-9]+$"`
	Width           int               `json:"width,omitempty" jsonschema:"enum=80,enum=132"`
	Height          int               `json:"height,omitempty" jsonschema:"minimum=12,maximum=96"`
	SecureAlways    *bool             `json:"secure_always,omitempty" jsonschema:"description=always connect with wss://"`
	Immediate       bool              `json:"immediate,omitempty" jsonschema:"description=connect as soon as the terminal opens"`
	Another         bool              `json:"another,omitempty" jsonschema:"description=allow opening further standalone instances"`
	LogoutClose     *bool             `json:"logout_close,omitempty" jsonschema:"description=close a standalone terminal on LOGOUT"`
	Scroll          int               `json:"scroll,omitempty" jsonschema:"minimum=0,description=scrollback lines; 0 disables the scrollbar"`
	Title           string            `json:"title,omitempty" jsonschema:"description=pinned window title; suppresses remote title updates"`
	ResizeEmbedded  bool              `json:"resize_embedded,omitempty"`
	ResizeOptions   []string          `json:"resize_options,omitempty"`
	Messages        map[string]string `json:"messages,omitempty"`
	PrintFile       string            `json:"print_file,omitempty"`
	TerminalCommand string            `json:"terminal_command,omitempty" jsonschema:"description=command prefix used to open another instance; {top} and {left} are replaced"`
	VisualBell      *bool             `json:"visual_bell,omitempty"`
}

// template is written by Init. Keep it in sync with FileOptions.
const template = `# DCLinabox local configuration.
# Values here are overridden by an opener (launcher) or parent (embedding host).

# always connect via "wss:" (true or false)
secure_always: true

# connect immediately the terminal opens
immediate: false

# opening terminal width (80 or 132) and height (12..96)
width: 80
height: 24

# suppress scrollback using 0 or set to number of lines in buffer (e.g. 500)
scroll: 0

# host: vms.example.com:443
# script_name: dclinabox
# title: ""
# another: false
# logout_close: true
# messages:
#   CONNEC: CONNECT
`

// LoadFile reads the local configuration file. A missing file yields an
// empty map.
func LoadFile(path string) (map[string]any, error) {
	return params.ReadFile(path)
}

// Init writes the default template to path unless it exists. It reports
// whether the file was created.
func Init(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, []byte(template), 0o644)
}

// Schema returns the JSON Schema of the local configuration file.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	sch := r.Reflect(&FileOptions{})
	sch.Title = "dclinabox local configuration"
	return sch
}

// MarshalSchema indents the schema to JSON bytes.
func MarshalSchema(sch *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(sch, "", "  ")
}
