package window

import (
	"fmt"
	"io"
	"sync"
	"time"

	"dclinabox/internal/geom"
	"dclinabox/internal/system"
	"dclinabox/internal/term"
)

// Debounce is how long window-size events must settle before a standalone
// window is fitted again.
const Debounce = 500 * time.Millisecond

// Size is a host terminal window size in cells.
type Size struct {
	Cols int
	Rows int
}

// Popup fits a standalone host terminal window to the terminal box with
// XTWINOPS resize requests. Window managers and font rounding mean a
// request is not always honoured exactly, so every window-size event
// re-arms a debounced convergence step.
type Popup struct {
	mu      sync.Mutex
	out     io.Writer
	metrics term.Metrics
	want    Size
	have    Size
	gen     int
}

// NewPopup writes resize requests to out, usually the controlling tty.
func NewPopup(out io.Writer, m term.Metrics) *Popup {
	return &Popup{out: out, metrics: m}
}

// Fit records the box wanted for l and requests it at once when the
// window is known to differ.
func (p *Popup) Fit(l term.Layout, _ geom.Geometry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.want = p.cells(l)
	p.request()
}

// cells converts the box to whole cells, dropping the border and the
// status bar padding.
func (p *Popup) cells(l term.Layout) Size {
	cw, ch := p.metrics.CellWidth, p.metrics.CellHeight
	if cw <= 0 || ch <= 0 {
		cw, ch = term.DefaultMetrics.CellWidth, term.DefaultMetrics.CellHeight
	}
	return Size{Cols: (l.BoxWidth - 2) / cw, Rows: (l.BoxHeight - 2) / ch}
}

// Want returns the size last asked for.
func (p *Popup) Want() Size {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.want
}

// Observe records a window-size event and returns the generation of the
// debounce timer to arm. Earlier generations become stale.
func (p *Popup) Observe(s Size) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.have = s
	p.gen++
	return p.gen
}

// Settle runs when the debounce timer for gen fires. It reports whether a
// new resize request was written.
func (p *Popup) Settle(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false
	}
	return p.request()
}

func (p *Popup) request() bool {
	if p.want == (Size{}) || p.want == p.have {
		return false
	}
	if _, err := fmt.Fprintf(p.out, "\x1b[8;%d;%dt", p.want.Rows, p.want.Cols); err != nil {
		system.Logger.Warn("window resize request failed", "err", err)
		return false
	}
	return true
}
