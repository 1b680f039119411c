// Package term is the presentation side of a terminal instance: geometry
// and the pixel layout derived from it, the status bar, the bell
// indicator, the size selector and printing. Terminal emulation itself is
// delegated to an Emulator.
package term

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dclinabox/internal/config"
	"dclinabox/internal/geom"
	"dclinabox/internal/version"
)

// Timing of self-expiring status bar elements.
const (
	BellDuration   = 900 * time.Millisecond
	SelectorIdle   = 15 * time.Second
	MaxBells       = 10
	borderPixels   = 2
	statusPadPixel = 5
)

// Layout is the pixel size of the terminal surface, the status bar and the
// box containing both.
type Layout struct {
	TermWidth    int
	TermHeight   int
	StatusWidth  int
	StatusHeight int
	BoxWidth     int
	BoxHeight    int
}

// Fitter adjusts the window chrome around the terminal after a geometry
// change.
type Fitter interface {
	Fit(l Layout, g geom.Geometry)
}

// Options configure a Controller.
type Options struct {
	Geometry       geom.Geometry
	Metrics        Metrics
	Scroll         int
	ResizeOptions  []string
	Another        bool
	ResizeEmbedded bool
	Messages       config.Messages
	PrintFile      string
}

// Controller owns geometry and status bar state.
type Controller struct {
	opts    Options
	emu     Emulator
	fit     Fitter
	geom    geom.Geometry
	metrics Metrics
	layout  Layout
	ready   bool

	message string
	bells   int
	sel     *Selector
	selGen  int
	sizeTag string
}

// NewController returns a controller; call Init before use.
func NewController(o Options, emu Emulator, fit Fitter) *Controller {
	if !o.Metrics.valid() {
		o.Metrics = DefaultMetrics
	}
	if o.Messages == nil {
		o.Messages = config.DefaultMessages
	}
	if o.Geometry.IsZero() {
		o.Geometry = geom.Default
	}
	return &Controller{
		opts:    o,
		emu:     emu,
		fit:     fit,
		geom:    o.Geometry,
		metrics: o.Metrics.WithScroll(o.Scroll),
	}
}

// Init lays out the terminal at its opening geometry and resets the
// emulator.
func (c *Controller) Init() {
	c.apply()
	c.emu.Reflow(c.geom)
	c.emu.Reset()
	c.ready = true
	c.emu.Focus()
}

// Geometry returns the current geometry.
func (c *Controller) Geometry() geom.Geometry { return c.geom }

// Layout returns the current pixel layout.
func (c *Controller) Layout() Layout { return c.layout }

// Metrics returns the cell metrics in use.
func (c *Controller) Metrics() Metrics { return c.metrics }

// Resize switches to g. It returns false, doing nothing, when g is the
// current geometry.
func (c *Controller) Resize(g geom.Geometry) bool {
	if c.ready && g == c.geom {
		return false
	}
	c.geom = g
	c.sizeTag = ""
	c.apply()
	c.emu.Reflow(g)
	c.ready = true
	c.emu.Focus()
	return true
}

func (c *Controller) apply() {
	m, g := c.metrics, c.geom
	l := Layout{
		TermHeight:   m.CellHeight*g.Rows + borderPixels,
		StatusHeight: m.CellHeight + statusPadPixel,
		TermWidth:    m.CellWidth*g.Cols + borderPixels + m.ScrollWidth,
	}
	l.StatusWidth = l.TermWidth
	l.BoxWidth = l.TermWidth
	l.BoxHeight = l.TermHeight + l.StatusHeight
	c.layout = l
	if c.fit != nil {
		c.fit.Fit(l, g)
	}
}

// Reset clears the emulator, as done before every manual connect.
func (c *Controller) Reset() {
	c.emu.Reflow(c.geom)
	c.emu.Reset()
}

// SetMessage sets the transient status message; empty clears it.
func (c *Controller) SetMessage(msg string) { c.message = msg }

// Message returns the status message.
func (c *Controller) Message() string { return c.message }

// Ding adds a bell indicator. It reports whether one was added, in which
// case the caller must call Undings after BellDuration.
func (c *Controller) Ding() bool {
	if c.bells >= MaxBells {
		return false
	}
	c.bells++
	return true
}

// Undings expires one bell indicator.
func (c *Controller) Undings() {
	if c.bells > 0 {
		c.bells--
	}
}

// Bells returns the number of visible bell indicators.
func (c *Controller) Bells() int { return c.bells }

// SizeControl reports whether the size selector control is shown.
func (c *Controller) SizeControl() bool { return c.opts.Another || c.opts.ResizeEmbedded }

// OpenSelector shows the size dropdown. It is only available while
// connected. The returned generation identifies the idle timer to arm;
// HideSelector with an older generation does nothing.
func (c *Controller) OpenSelector(connected bool) (gen int, ok bool) {
	if !connected || !c.SizeControl() {
		return 0, false
	}
	c.sel = NewSelector(c.opts.ResizeOptions, c.geom.String())
	c.selGen++
	return c.selGen, true
}

// Selector returns the open selector or nil.
func (c *Controller) Selector() *Selector { return c.sel }

// TouchSelector re-arms the idle timer after selector input.
func (c *Controller) TouchSelector() int {
	c.selGen++
	return c.selGen
}

// HideSelector closes the selector if gen is still current.
func (c *Controller) HideSelector(gen int) {
	if gen == c.selGen {
		c.sel = nil
	}
}

// CloseSelector closes the selector and cancels its idle timer.
func (c *Controller) CloseSelector() {
	c.sel = nil
	c.selGen++
}

// ChooseSize closes the selector and returns the highlighted geometry. The
// size control shows it until the peer confirms with a resize.
func (c *Controller) ChooseSize() (geom.Geometry, bool) {
	if c.sel == nil {
		return geom.Geometry{}, false
	}
	choice, ok := c.sel.Current()
	c.CloseSelector()
	if !ok {
		return geom.Geometry{}, false
	}
	g, err := geom.Parse(choice)
	if err != nil {
		return geom.Geometry{}, false
	}
	c.sizeTag = g.String()
	return g, true
}

// Print appends the screen text to the print file and returns its path.
func (c *Controller) Print(now time.Time) (string, error) {
	path := c.opts.PrintFile
	if path == "" {
		dir, err := config.DotDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, "print.txt")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()
	text := strings.TrimRight(c.emu.Text(), "\n")
	if _, err := fmt.Fprintf(f, "%s %s\n%s\n\f\n", version.Product, now.Format(time.DateTime), text); err != nil {
		return "", err
	}
	return path, nil
}

// Button identifiers, also used as click zones.
const (
	BtnToggle  = "toggle"
	BtnAnother = "another"
	BtnSize    = "size"
	BtnPrint   = "print"
)

// Button is one clickable status bar control.
type Button struct {
	ID    string
	Label string
}

// Bar is the status bar content.
type Bar struct {
	Buttons []Button
	Message string
	Bells   int
	Vanity  string
	Version string
}

// Bar builds the status bar for the given connection state. live is true
// for any status other than unconnected.
func (c *Controller) Bar(live bool) Bar {
	msgs := c.opts.Messages
	b := Bar{Message: c.message, Bells: c.bells, Vanity: version.Product, Version: version.AppVersion}
	toggle := Button{ID: BtnToggle, Label: msgs.Get(config.MsgConnect)}
	if live {
		toggle.Label = msgs.Get(config.MsgDisconnect)
	}
	b.Buttons = append(b.Buttons, toggle)
	if c.opts.Another {
		b.Buttons = append(b.Buttons, Button{ID: BtnAnother, Label: "^"})
	}
	if c.SizeControl() {
		label := c.geom.String()
		if c.sizeTag != "" {
			label = c.sizeTag
		}
		b.Buttons = append(b.Buttons, Button{ID: BtnSize, Label: label})
	}
	b.Buttons = append(b.Buttons, Button{ID: BtnPrint, Label: msgs.Get(config.MsgPrint)})
	return b
}
