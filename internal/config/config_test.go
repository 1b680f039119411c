package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dclinabox/internal/geom"
	"dclinabox/internal/params"
	tu "dclinabox/internal/testutil"
)

type mapSource map[string]any

func (m mapSource) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func TestResolveDefaults(t *testing.T) {
	s := Resolve(params.New(nil, nil, nil))
	if s.Geometry != geom.Default {
		t.Fatalf("geometry = %v", s.Geometry)
	}
	if !s.SecureAlways || s.Immediate || s.Another || !s.LogoutClose {
		t.Fatalf("unexpected flag defaults: %+v", s)
	}
	if s.Host != "localhost" || s.ScriptName != DefaultScriptName {
		t.Fatalf("host/script = %q/%q", s.Host, s.ScriptName)
	}
	if len(s.ResizeOptions) != len(DefaultResizeOptions) {
		t.Fatalf("resize options = %v", s.ResizeOptions)
	}
	if s.Messages.Get(MsgConnect) != "CONNECT" {
		t.Fatalf("messages = %v", s.Messages)
	}
}

func TestResolveClamp(t *testing.T) {
	cases := []struct {
		w, h int
		want geom.Geometry
	}{
		{132, 48, geom.Geometry{Cols: 132, Rows: 48}},
		{200, 24, geom.Geometry{Cols: 80, Rows: 24}},
		{80, 5, geom.Geometry{Cols: 80, Rows: 24}},
		{80, 150, geom.Geometry{Cols: 80, Rows: 24}},
	}
	for _, c := range cases {
		local := params.NewScope(map[string]any{OptWidth: c.w, OptHeight: c.h})
		s := Resolve(params.New(nil, nil, local))
		if s.Geometry != c.want {
			t.Fatalf("%dx%d -> %v; want %v", c.w, c.h, s.Geometry, c.want)
		}
	}
}

func TestResolveWxH(t *testing.T) {
	local := params.NewScope(map[string]any{OptWxH: "132x36", OptWidth: 80})
	s := Resolve(params.New(nil, nil, local))
	if s.Geometry != (geom.Geometry{Cols: 132, Rows: 36}) {
		t.Fatalf("geometry = %v", s.Geometry)
	}
	// an opener still wins over a local wxh
	local = params.NewScope(map[string]any{OptWxH: "132x36"})
	s = Resolve(params.New(mapSource{OptHeight: 48}, nil, local))
	if s.Geometry != (geom.Geometry{Cols: 132, Rows: 48}) {
		t.Fatalf("geometry with opener = %v", s.Geometry)
	}
}

func TestResolvePrecedence(t *testing.T) {
	opener := mapSource{OptTitle: "from opener"}
	parent := mapSource{OptTitle: "from parent", OptHost: "parent.example"}
	local := params.NewScope(map[string]any{OptTitle: "local", OptHost: "local.example", OptScroll: 500})
	s := Resolve(params.New(opener, parent, local))
	if s.Title != "from opener" || s.Host != "parent.example" || s.Scroll != 500 {
		t.Fatalf("precedence broken: %+v", s)
	}
}

func TestResolveMessagesOverride(t *testing.T) {
	local := params.NewScope(map[string]any{OptMessages: map[string]any{MsgConnect: "VERBINDEN"}})
	m := ResolveMessages(params.New(nil, nil, local))
	if m.Get(MsgConnect) != "VERBINDEN" || m.Get(MsgDisconnect) != "DISCONNECT" {
		t.Fatalf("messages = %v", m)
	}
	if (Messages{}).Get(MsgPrint) != "Print" {
		t.Fatalf("Get fallback failed")
	}
}

func TestParseOrigin(t *testing.T) {
	p, err := ParseOrigin("https://vms.example:8443/dclinabox/")
	if err != nil || !p.Secure || p.Hostname != "vms.example" || p.Port != "8443" {
		t.Fatalf("ParseOrigin = %+v, %v", p, err)
	}
	if p.HostPort() != "vms.example:8443" {
		t.Fatalf("HostPort = %q", p.HostPort())
	}
	if _, err := ParseOrigin("ftp://x"); err == nil {
		t.Fatalf("expected scheme error")
	}
	if _, err := ParseOrigin("http://"); err == nil {
		t.Fatalf("expected host error")
	}
}

func TestParseFragment(t *testing.T) {
	f, err := ParseFragment("#wss://vms.example:443/cgiplus-bin/dclinabox;132x24")
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if f.Host != "wss://vms.example:443" || f.ScriptName != "/cgiplus-bin/dclinabox" || f.WxH != "132x24" {
		t.Fatalf("fragment = %+v", f)
	}
	f, err = ParseFragment("ws://host/x")
	if err != nil || f.WxH != "" || f.Host != "ws://host" {
		t.Fatalf("fragment = %+v, %v", f, err)
	}
	for _, bad := range []string{"http://host/x", "wss://host", "wss:///x"} {
		if _, err := ParseFragment(bad); err == nil || !strings.HasPrefix(err.Error(), "ERROR:") {
			t.Fatalf("ParseFragment(%q) err = %v", bad, err)
		}
	}

	scope := params.NewScope(nil)
	f, _ = ParseFragment("wss://h/p;80x48")
	f.Apply(scope)
	s := Resolve(params.New(nil, nil, scope))
	if s.Host != "wss://h" || s.ScriptName != "/p" || s.Geometry.Rows != 48 {
		t.Fatalf("applied fragment = %+v", s)
	}
}

func TestInitAndLoadFile(t *testing.T) {
	tmp := t.TempDir()
	defer tu.WithEnv(t, "HOME", tmp)()
	path, err := File()
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if path != filepath.Join(tmp, ".dclinabox", "config.yaml") {
		t.Fatalf("File = %q", path)
	}
	created, err := Init(path)
	if err != nil || !created {
		t.Fatalf("Init = %v, %v", created, err)
	}
	created, err = Init(path)
	if err != nil || created {
		t.Fatalf("second Init = %v, %v", created, err)
	}
	vals, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if vals[OptWidth] != 80 || vals[OptSecureAlways] != true {
		t.Fatalf("template values = %v", vals)
	}
	if err := os.WriteFile(path, []byte("width: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected YAML error")
	}
}

func TestSchema(t *testing.T) {
	b, err := MarshalSchema(Schema())
	if err != nil {
		t.Fatalf("MarshalSchema: %v", err)
	}
	for _, want := range []string{`"script_name"`, `"resize_options"`, `"dclinabox local configuration"`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("schema missing %s", want)
		}
	}
}
