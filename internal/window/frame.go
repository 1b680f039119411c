package window

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"dclinabox/internal/geom"
	"dclinabox/internal/system"
	"dclinabox/internal/term"
)

// FramePadding is added to each pixel dimension handed to the parent.
const FramePadding = 10

// Frame is the parent's resize entry point. ref names the frame holding
// this instance; width and height are in pixels.
type Frame interface {
	ResizeFrame(ref string, width, height int) error
}

// Embed fits the parent frame to the terminal box.
type Embed struct {
	Frame Frame
	Ref   string
}

// Fit asks the parent for the box plus padding.
func (e *Embed) Fit(l term.Layout, _ geom.Geometry) {
	if e.Frame == nil {
		return
	}
	if err := e.Frame.ResizeFrame(e.Ref, l.BoxWidth+FramePadding, l.BoxHeight+FramePadding); err != nil {
		system.Logger.Warn("frame resize failed", "ref", e.Ref, "err", err)
	}
}

// TmuxFrame resizes a tmux pane. Pixels are converted back to cells with
// the measured metrics.
type TmuxFrame struct {
	Metrics term.Metrics
	// Run executes tmux; nil runs the real binary.
	Run func(ctx context.Context, args ...string) error
}

// ResizeFrame runs `tmux resize-pane -t ref -x cols -y rows`.
func (f *TmuxFrame) ResizeFrame(ref string, width, height int) error {
	cw, ch := f.Metrics.CellWidth, f.Metrics.CellHeight
	if cw <= 0 || ch <= 0 {
		cw, ch = term.DefaultMetrics.CellWidth, term.DefaultMetrics.CellHeight
	}
	cols, rows := ceilDiv(width, cw), ceilDiv(height, ch)
	args := []string{"resize-pane", "-t", ref, "-x", strconv.Itoa(cols), "-y", strconv.Itoa(rows)}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	run := f.Run
	if run == nil {
		run = runTmux
	}
	if err := run(ctx, args...); err != nil {
		return fmt.Errorf("tmux resize-pane %s: %w", ref, err)
	}
	return nil
}

func runTmux(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "tmux", args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, out)
	}
	return err
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
