package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"dclinabox/internal/config"
	"dclinabox/internal/escape"
	"dclinabox/internal/geom"
	"dclinabox/internal/params"
)

type fakeTransport struct {
	sent    []string
	closed  int
	capable bool
}

func (f *fakeTransport) Send(data string) error { f.sent = append(f.sent, data); return nil }
func (f *fakeTransport) Close() error           { f.closed++; return nil }
func (f *fakeTransport) Capable() bool          { return f.capable }

type fakeDialer struct {
	urls []string
	next *fakeTransport
	err  error
}

func (d *fakeDialer) Open(url string, _ chan<- Event) (Transport, error) {
	d.urls = append(d.urls, url)
	if d.err != nil {
		return nil, d.err
	}
	if d.next == nil {
		d.next = &fakeTransport{capable: true}
	}
	return d.next, nil
}

type fakeHost struct {
	fed     []string
	alerts  []string
	status  []string
	titles  []string
	resized []geom.Geometry
	closedW int
	opened  int
	closed  int
}

func (h *fakeHost) Feed(data string)       { h.fed = append(h.fed, data) }
func (h *fakeHost) Alert(msg string)       { h.alerts = append(h.alerts, msg) }
func (h *fakeHost) Status(msg string)      { h.status = append(h.status, msg) }
func (h *fakeHost) Title(title string)     { h.titles = append(h.titles, title) }
func (h *fakeHost) Resize(g geom.Geometry) { h.resized = append(h.resized, g) }
func (h *fakeHost) CloseWindow()           { h.closedW++ }
func (h *fakeHost) Opened()                { h.opened++ }
func (h *fakeHost) Closed()                { h.closed++ }

func (h *fakeHost) lastStatus() string {
	if len(h.status) == 0 {
		return ""
	}
	return h.status[len(h.status)-1]
}

type fixture struct {
	m    *Manager
	d    *fakeDialer
	h    *fakeHost
	cfg  *config.Settings
	res  *params.Resolver
	tr   *fakeTransport
	when time.Time
}

func newFixture(t *testing.T, local map[string]any) *fixture {
	t.Helper()
	if local == nil {
		local = map[string]any{}
	}
	if _, ok := local[config.OptOrigin]; !ok {
		local[config.OptOrigin] = "https://vms.example"
	}
	res := params.New(nil, nil, params.NewScope(local))
	cfg := config.Resolve(res)
	f := &fixture{d: &fakeDialer{}, h: &fakeHost{}, res: res, cfg: &cfg}
	f.m = New(res, f.cfg, f.d, f.h)
	f.when = time.Date(2012, 10, 1, 9, 30, 0, 0, time.UTC)
	f.m.Now = func() time.Time { return f.when }
	return f
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	if err := f.m.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	f.tr = f.d.next
	f.m.Handle(Event{Kind: EventOpen, Transport: f.tr})
}

func (f *fixture) recv(data string) {
	f.m.Handle(Event{Kind: EventMessage, Data: data, Transport: f.tr})
}

func (f *fixture) closeEv(code int, reason string) {
	f.m.Handle(Event{Kind: EventClose, Code: code, Reason: reason, Transport: f.tr})
}

func TestNormalSessionLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	if f.m.Status() != Unconnected {
		t.Fatalf("initial status %v", f.m.Status())
	}
	if err := f.m.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if f.m.Status() != Connecting {
		t.Fatalf("status after Connect = %v", f.m.Status())
	}
	if f.d.urls[0] != "wss://vms.example/cgiplus-bin/dclinabox" {
		t.Fatalf("url = %q", f.d.urls[0])
	}
	f.tr = f.d.next
	f.m.Handle(Event{Kind: EventOpen, Transport: f.tr})
	if f.m.Status() != Connected || f.h.opened != 1 {
		t.Fatalf("status after open = %v", f.m.Status())
	}
	if !f.cfg.Immediate {
		t.Fatalf("immediate not armed after open")
	}
	if v, _ := f.res.Local.Lookup(config.OptImmediate); v != true {
		t.Fatalf("immediate not defined locally")
	}

	f.recv(escape.Encode(escape.Frame{Op: escape.Version, Payload: "1.1.1"}))
	if f.m.Status() != Receiving {
		t.Fatalf("status after version = %v", f.m.Status())
	}
	f.recv("$ ")
	f.recv("DIR\r\n")
	if f.m.Status() != Receiving+2 || !f.m.Status().Receiving() {
		t.Fatalf("status not incrementing: %v", f.m.Status())
	}
	if len(f.h.fed) != 2 || f.h.fed[1] != "DIR\r\n" {
		t.Fatalf("fed = %q", f.h.fed)
	}
	if len(f.h.alerts) != 0 {
		t.Fatalf("unexpected alerts %q", f.h.alerts)
	}

	f.m.Disconnect()
	if f.m.Status() != UserDisconnected || f.tr.closed != 1 {
		t.Fatalf("after Disconnect status=%v closed=%d", f.m.Status(), f.tr.closed)
	}
	f.closeEv(1000, "")
	if f.m.Status() != Unconnected || f.m.Live() {
		t.Fatalf("after close status=%v", f.m.Status())
	}
	if got := f.h.lastStatus(); got != "DISCONNECTED Mon Oct 01 2012 09:30:00" {
		t.Fatalf("status text = %q", got)
	}
	if f.tr.closed != 1 {
		t.Fatalf("transport closed %d times", f.tr.closed)
	}
	// a second Disconnect with nothing live is a no-op
	f.m.Disconnect()
	if f.tr.closed != 1 {
		t.Fatalf("transport closed again")
	}
}

func TestKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.m.Keys("a")
	if len(f.d.urls) != 0 {
		t.Fatalf("keystroke connected")
	}
	f.m.Keys(EscKey)
	if len(f.d.urls) != 1 {
		t.Fatalf("ESC did not connect")
	}
	f.tr = f.d.next
	// not open yet: dropped
	f.m.Keys("x")
	if len(f.tr.sent) != 0 {
		t.Fatalf("sent before open: %q", f.tr.sent)
	}
	f.m.Handle(Event{Kind: EventOpen, Transport: f.tr})
	f.m.Keys("x")
	f.m.Keys(EscKey)
	f.m.Respond("\x1b[?1;2c")
	f.m.Respond("")
	if strings.Join(f.tr.sent, "|") != "x|\x1b|\x1b[?1;2c" {
		t.Fatalf("sent = %q", f.tr.sent)
	}
	f.m.SendSize(geom.Geometry{Cols: 132, Rows: 24})
	if f.tr.sent[3] != escape.Marker+"4132x24" {
		t.Fatalf("size frame = %q", f.tr.sent[3])
	}
}

func TestLogout(t *testing.T) {
	cases := []struct {
		another, closeOnLogout bool
		wantClose              int
	}{
		{true, true, 1},
		{true, false, 0},
		{false, true, 0},
		{false, false, 0},
	}
	for _, c := range cases {
		f := newFixture(t, map[string]any{config.OptAnother: c.another, config.OptLogoutClose: c.closeOnLogout})
		f.connect(t)
		f.recv(escape.Encode(escape.Frame{Op: escape.Logout}))
		if f.h.closedW != c.wantClose {
			t.Fatalf("%+v: CloseWindow called %d times", c, f.h.closedW)
		}
		if f.m.Status() != LoggedOut || f.tr.closed != 1 {
			t.Fatalf("%+v: status=%v closed=%d", c, f.m.Status(), f.tr.closed)
		}
		f.closeEv(1000, "")
		if !strings.HasPrefix(f.h.lastStatus(), "LOGOUT ") {
			t.Fatalf("status text = %q", f.h.lastStatus())
		}
	}
}

func TestTerminate(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	f.recv(escape.Encode(escape.Frame{Op: escape.Terminate}))
	if f.m.Status() != Terminated || f.tr.closed != 1 {
		t.Fatalf("status=%v closed=%d", f.m.Status(), f.tr.closed)
	}
	f.closeEv(1000, "")
	if !strings.HasPrefix(f.h.lastStatus(), "TERMINATED ") {
		t.Fatalf("status text = %q", f.h.lastStatus())
	}
}

func TestCloseClassification(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.m.Connect(); err != nil {
		t.Fatal(err)
	}
	f.tr = f.d.next
	f.closeEv(1006, "")
	if got := f.h.lastStatus(); got != "FAILED to connect (1006)" {
		t.Fatalf("connecting close = %q", got)
	}

	f = newFixture(t, nil)
	f.connect(t)
	f.closeEv(1011, "server error")
	if got := f.h.lastStatus(); got != "CONNECTED but no response (1011 server error)" {
		t.Fatalf("connected close = %q", got)
	}

	f = newFixture(t, nil)
	f.connect(t)
	f.recv(escape.Encode(escape.Frame{Op: escape.Version, Payload: "1.1.0"}))
	f.recv("output")
	f.closeEv(1006, "")
	if got := f.h.lastStatus(); got != "CONNECTION broken Mon Oct 01 2012 09:30:00 (1006)" {
		t.Fatalf("receiving close = %q", got)
	}
	if f.h.closed != 1 || f.m.Status() != Unconnected {
		t.Fatalf("host.Closed=%d status=%v", f.h.closed, f.m.Status())
	}
}

func TestStaleEventsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	old := f.tr
	f.closeEv(1006, "")
	f.m.Handle(Event{Kind: EventMessage, Data: "late", Transport: old})
	if len(f.h.fed) != 0 {
		t.Fatalf("stale message fed")
	}
	other := &fakeTransport{capable: true}
	f.d.next = other
	f.connect(t)
	f.m.Handle(Event{Kind: EventClose, Code: 1000, Transport: old})
	if f.m.Status() != Connected {
		t.Fatalf("stale close changed status to %v", f.m.Status())
	}
}

func TestCompatibilityAlert(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	f.recv(escape.Encode(escape.Frame{Op: escape.Version, Payload: "1.1.1"}))
	f.recv("hello")
	if len(f.h.alerts) != 0 || f.m.CompatibilityAlert() {
		t.Fatalf("compatible version still alerted: %q", f.h.alerts)
	}

	for _, v := range []string{"0.9", ""} {
		f = newFixture(t, nil)
		f.connect(t)
		f.recv(escape.Encode(escape.Frame{Op: escape.Version, Payload: v}))
		f.recv("hello")
		f.recv("again")
		if len(f.h.alerts) != 1 || !strings.Contains(f.h.alerts[0], "incompatible") {
			t.Fatalf("version %q: alerts = %q", v, f.h.alerts)
		}
	}

	// no version frame at all
	f = newFixture(t, nil)
	f.connect(t)
	f.recv("hello")
	if len(f.h.alerts) != 1 {
		t.Fatalf("missing version: alerts = %q", f.h.alerts)
	}
}

func TestSidebandDispatch(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	f.recv(escape.Encode(escape.Frame{Op: escape.Size, Payload: "132x48"}))
	f.recv(escape.Encode(escape.Frame{Op: escape.Size, Payload: "80"}))
	if len(f.h.resized) != 1 || f.h.resized[0] != (geom.Geometry{Cols: 132, Rows: 48}) {
		t.Fatalf("resized = %v", f.h.resized)
	}
	f.recv(escape.Encode(escape.Frame{Op: escape.Alert, Payload: "idle"}))
	if f.h.alerts[len(f.h.alerts)-1] != "idle" {
		t.Fatalf("alerts = %q", f.h.alerts)
	}
	f.recv(escape.Encode(escape.Frame{Op: escape.Title, Payload: "SYSTEM@VMS"}))
	f.recv(escape.Encode(escape.Frame{Op: escape.Title, Payload: "?"}))
	n := len(f.h.titles)
	if f.h.titles[n-2] != "SYSTEM@VMS" || f.h.titles[n-1] != "DCLinabox: vms.example" {
		t.Fatalf("titles = %q", f.h.titles)
	}
	before := len(f.h.alerts)
	f.recv(escape.Marker + "9")
	if len(f.h.alerts) != before+1 || f.h.alerts[before] != UnknownEscapeMsg {
		t.Fatalf("unknown escape not alerted: %q", f.h.alerts)
	}
	if len(f.h.fed) != 0 {
		t.Fatalf("sideband leaked to emulator: %q", f.h.fed)
	}
}

func TestPinnedTitle(t *testing.T) {
	f := newFixture(t, map[string]any{config.OptTitle: "Production"})
	f.connect(t)
	f.recv(escape.Encode(escape.Frame{Op: escape.Title, Payload: "SYSTEM@VMS"}))
	for _, title := range f.h.titles {
		if title != "Production" {
			t.Fatalf("pinned title overridden: %q", f.h.titles)
		}
	}
}

func TestConnectFailures(t *testing.T) {
	f := newFixture(t, nil)
	f.d.err = errors.New("dial refused")
	if err := f.m.Connect(); err == nil {
		t.Fatalf("expected error")
	}
	if f.m.Status() != Unconnected || len(f.h.alerts) != 1 {
		t.Fatalf("status=%v alerts=%q", f.m.Status(), f.h.alerts)
	}

	f = newFixture(t, nil)
	f.d.next = &fakeTransport{capable: false}
	if err := f.m.Connect(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v", err)
	}
	if f.d.next.closed != 1 || f.m.Live() || f.h.lastStatus() != "WebSocket not supported!" {
		t.Fatalf("unsupported transport not torn down: closed=%d status=%q", f.d.next.closed, f.h.lastStatus())
	}

	f = newFixture(t, map[string]any{config.OptHost: ":"})
	f.cfg.Origin = "ftp://nowhere"
	if err := f.m.Connect(); err == nil || len(f.d.urls) != 0 {
		t.Fatalf("bad origin should abort before dialing")
	}
}

func TestHostRefreshedBeforeConnect(t *testing.T) {
	f := newFixture(t, map[string]any{config.OptHost: "first"})
	f.res.Parent = mapSource{config.OptHost: "second:8443"}
	if err := f.m.Connect(); err != nil {
		t.Fatal(err)
	}
	if f.d.urls[0] != "wss://second:8443/cgiplus-bin/dclinabox" {
		t.Fatalf("url = %q", f.d.urls[0])
	}
}

func TestUnload(t *testing.T) {
	f := newFixture(t, nil)
	f.m.Unload()
	f.connect(t)
	f.m.Unload()
	if f.tr.closed != 1 {
		t.Fatalf("unload closed %d", f.tr.closed)
	}
}

type mapSource map[string]any

func (m mapSource) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}
