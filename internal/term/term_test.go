package term

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"dclinabox/internal/config"
	"dclinabox/internal/geom"
)

type fakeEmu struct {
	fed     []string
	reflows []geom.Geometry
	resets  int
	focus   int
	visual  bool
	text    string
	resp    chan string
}

func (f *fakeEmu) Feed(data string)         { f.fed = append(f.fed, data) }
func (f *fakeEmu) Reflow(g geom.Geometry)   { f.reflows = append(f.reflows, g) }
func (f *fakeEmu) Reset()                   { f.resets++ }
func (f *fakeEmu) SetVisualBell(on bool)    { f.visual = on }
func (f *fakeEmu) VisualBell() bool         { return f.visual }
func (f *fakeEmu) Focus()                   { f.focus++ }
func (f *fakeEmu) Render() string           { return f.text }
func (f *fakeEmu) Text() string             { return f.text }
func (f *fakeEmu) Cursor() (int, int)       { return 0, 0 }
func (f *fakeEmu) Responses() <-chan string { return f.resp }
func (f *fakeEmu) Close() error             { return nil }

type fakeFit struct {
	layouts []Layout
}

func (f *fakeFit) Fit(l Layout, _ geom.Geometry) { f.layouts = append(f.layouts, l) }

func newController(o Options) (*Controller, *fakeEmu, *fakeFit) {
	emu, fit := &fakeEmu{}, &fakeFit{}
	if o.Metrics == (Metrics{}) {
		o.Metrics = Metrics{CellWidth: 7, CellHeight: 15}
	}
	c := NewController(o, emu, fit)
	c.Init()
	return c, emu, fit
}

func TestLayout(t *testing.T) {
	c, emu, fit := newController(Options{Geometry: geom.Default})
	l := c.Layout()
	want := Layout{
		TermWidth: 7*80 + 2, TermHeight: 15*24 + 2,
		StatusWidth: 7*80 + 2, StatusHeight: 20,
		BoxWidth: 7*80 + 2, BoxHeight: 15*24 + 2 + 20,
	}
	if l != want {
		t.Fatalf("layout = %+v; want %+v", l, want)
	}
	if len(fit.layouts) != 1 || emu.resets != 1 || len(emu.reflows) != 1 {
		t.Fatalf("init: fits=%d resets=%d reflows=%d", len(fit.layouts), emu.resets, len(emu.reflows))
	}

	c, _, _ = newController(Options{Geometry: geom.Default, Scroll: 500})
	if c.Layout().TermWidth != 7*80+2+7 {
		t.Fatalf("scrollbar allowance missing: %d", c.Layout().TermWidth)
	}
}

func TestResize(t *testing.T) {
	c, emu, fit := newController(Options{Geometry: geom.Default})
	if c.Resize(geom.Default) {
		t.Fatalf("resize to same geometry should be a no-op")
	}
	g := geom.Geometry{Cols: 132, Rows: 48}
	if !c.Resize(g) {
		t.Fatalf("resize reported no change")
	}
	if c.Geometry() != g || emu.reflows[len(emu.reflows)-1] != g {
		t.Fatalf("emulator not reflowed to %v", g)
	}
	if len(fit.layouts) != 2 || fit.layouts[1].TermHeight != 15*48+2 {
		t.Fatalf("window not refitted: %+v", fit.layouts)
	}
	if emu.focus < 2 {
		t.Fatalf("focus not restored")
	}
}

func TestBells(t *testing.T) {
	c, _, _ := newController(Options{})
	for i := 0; i < MaxBells; i++ {
		if !c.Ding() {
			t.Fatalf("ding %d refused", i)
		}
	}
	if c.Ding() || c.Bells() != MaxBells {
		t.Fatalf("cap not enforced: %d", c.Bells())
	}
	for i := 0; i < MaxBells+3; i++ {
		c.Undings()
	}
	if c.Bells() != 0 {
		t.Fatalf("bells = %d", c.Bells())
	}
	if BellDuration != 900*time.Millisecond || SelectorIdle != 15*time.Second {
		t.Fatalf("unexpected timings")
	}
}

func TestBarButtons(t *testing.T) {
	c, _, _ := newController(Options{Messages: config.DefaultMessages})
	b := c.Bar(false)
	if len(b.Buttons) != 2 || b.Buttons[0].Label != "CONNECT" || b.Buttons[1].ID != BtnPrint {
		t.Fatalf("bar = %+v", b)
	}
	c, _, _ = newController(Options{Another: true})
	c.SetMessage("FAILED to connect (1006)")
	b = c.Bar(true)
	ids := []string{}
	for _, bt := range b.Buttons {
		ids = append(ids, bt.ID)
	}
	if strings.Join(ids, ",") != "toggle,another,size,print" {
		t.Fatalf("buttons = %v", ids)
	}
	if b.Buttons[0].Label != "DISCONNECT" || b.Buttons[2].Label != "80x24" || b.Message == "" {
		t.Fatalf("bar = %+v", b)
	}
	if b.Vanity != "DCLinabox" || b.Version == "" {
		t.Fatalf("vanity = %q %q", b.Vanity, b.Version)
	}
}

func TestSelector(t *testing.T) {
	opts := []string{"80x24", "80x48", "132x24", "132x48"}
	c, _, _ := newController(Options{ResizeEmbedded: true, ResizeOptions: opts})
	if _, ok := c.OpenSelector(false); ok {
		t.Fatalf("selector opened while disconnected")
	}
	gen, ok := c.OpenSelector(true)
	if !ok || c.Selector() == nil {
		t.Fatalf("selector did not open")
	}
	if cur, _ := c.Selector().Current(); cur != "80x24" {
		t.Fatalf("current = %q", cur)
	}
	// input re-arms; the first idle timer is now stale
	gen2 := c.TouchSelector()
	c.HideSelector(gen)
	if c.Selector() == nil {
		t.Fatalf("stale idle timer hid the selector")
	}
	c.Selector().Move(2)
	g, ok := c.ChooseSize()
	if !ok || g != (geom.Geometry{Cols: 132, Rows: 24}) {
		t.Fatalf("ChooseSize = %v, %v", g, ok)
	}
	if c.Selector() != nil {
		t.Fatalf("selector still open")
	}
	c.HideSelector(gen2)
	if b := c.Bar(true); b.Buttons[1].Label != "132x24" {
		t.Fatalf("size label = %q", b.Buttons[1].Label)
	}
	c.Resize(g)
	if b := c.Bar(true); b.Buttons[1].Label != "132x24" {
		t.Fatalf("size label after resize = %q", b.Buttons[1].Label)
	}

	gen, _ = c.OpenSelector(true)
	c.HideSelector(gen)
	if c.Selector() != nil {
		t.Fatalf("idle timer did not hide selector")
	}

	c2, _, _ := newController(Options{ResizeOptions: opts})
	if _, ok := c2.OpenSelector(true); ok {
		t.Fatalf("selector available without size control")
	}
}

func TestSelectorFilter(t *testing.T) {
	s := NewSelector([]string{"80x24", "80x48", "132x24", "132x48"}, "132x48")
	if s.Cursor() != 3 {
		t.Fatalf("cursor = %d", s.Cursor())
	}
	s.Type('1')
	s.Type('3')
	for _, o := range s.Options() {
		if !strings.HasPrefix(o, "132") {
			t.Fatalf("filter kept %q", o)
		}
	}
	s.Move(-5)
	if s.Cursor() != 0 {
		t.Fatalf("cursor not clamped")
	}
	s.Backspace()
	s.Backspace()
	s.Backspace()
	if len(s.Options()) != 4 || s.Query() != "" {
		t.Fatalf("filter not cleared: %v %q", s.Options(), s.Query())
	}
	s.Type('z')
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no match")
	}
}

func TestPrint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "print.txt")
	c, emu, _ := newController(Options{PrintFile: path})
	emu.text = "$ SHOW TIME\n  1-OCT-2012 09:30:00\n"
	got, err := c.Print(time.Date(2012, 10, 1, 9, 30, 0, 0, time.UTC))
	if err != nil || got != path {
		t.Fatalf("Print = %q, %v", got, err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "SHOW TIME") || !strings.HasPrefix(string(b), "DCLinabox 2012-10-01 09:30:00") {
		t.Fatalf("print file = %q", b)
	}
}

func TestRenderBar(t *testing.T) {
	c, _, _ := newController(Options{Another: true})
	c.SetMessage("CONNECTION broken")
	c.Ding()
	marked := map[string]bool{}
	out := RenderBar(c.Bar(true), 100, func(id, s string) string { marked[id] = true; return s })
	plain := xansi.Strip(out)
	for _, want := range []string{"DISCONNECT", "^", "80x24", "Print", "CONNECTION broken", BellGlyph, "DCLinabox"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("bar missing %q: %q", want, plain)
		}
	}
	if !marked[BtnToggle] || !marked[BtnSize] {
		t.Fatalf("buttons not marked: %v", marked)
	}
	if w := xansi.StringWidth(out); w != 100 {
		t.Fatalf("bar width = %d", w)
	}
	narrow := xansi.Strip(RenderBar(c.Bar(true), 30, nil))
	if !strings.Contains(narrow, "DCLinabox") {
		t.Fatalf("vanity dropped: %q", narrow)
	}
}

func TestRenderSelector(t *testing.T) {
	s := NewSelector([]string{"80x24", "132x24"}, "132x24")
	out := xansi.Strip(RenderSelector(s, 10))
	if !strings.Contains(out, "80x24") || !strings.Contains(out, "132x24") {
		t.Fatalf("selector = %q", out)
	}
	if RenderSelector(nil, 5) != "" {
		t.Fatalf("nil selector rendered")
	}
}

func TestVT(t *testing.T) {
	v := NewVT(geom.Geometry{Cols: 20, Rows: 4}, nil)
	v.Feed("hello")
	if !strings.Contains(v.Text(), "hello") {
		t.Fatalf("text = %q", v.Text())
	}
	v.Reflow(geom.Geometry{Cols: 40, Rows: 6})
	v.SetVisualBell(true)
	if !v.VisualBell() {
		t.Fatalf("visual bell not set")
	}
	v.Focus()
	if !v.Focused() {
		t.Fatalf("not focused")
	}
}

func TestVTRepliesDoNotBlockFeed(t *testing.T) {
	v := NewVT(geom.Geometry{Cols: 80, Rows: 24}, nil)
	defer v.Close()

	fed := make(chan struct{})
	go func() {
		v.Feed(strings.Repeat("\x1b[6n", 40))
		close(fed)
	}()
	select {
	case <-fed:
	case <-time.After(5 * time.Second):
		t.Fatalf("Feed blocked on unread replies")
	}

	var got string
	deadline := time.After(5 * time.Second)
	for strings.Count(got, "R") < 40 {
		select {
		case s := <-v.Responses():
			got += s
		case <-deadline:
			t.Fatalf("replies = %q", got)
		}
	}
	if !strings.HasPrefix(got, "\x1b[1;1R") {
		t.Fatalf("first reply = %q", got)
	}
}
