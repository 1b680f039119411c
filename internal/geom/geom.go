// Package geom holds terminal geometry in character cells.
package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Opening geometry limits for a freshly configured terminal.
const (
	DefaultCols = 80
	DefaultRows = 24
	WideCols    = 132
	MinRows     = 12
	MaxRows     = 96
)

// ErrMalformed is returned when a WxH string is not two integers.
var ErrMalformed = errors.New("malformed geometry")

// Geometry is a terminal size in columns and rows.
type Geometry struct {
	Cols int
	Rows int
}

// Default is the 80x24 opening geometry.
var Default = Geometry{Cols: DefaultCols, Rows: DefaultRows}

func (g Geometry) String() string { return fmt.Sprintf("%dx%d", g.Cols, g.Rows) }

// IsZero reports whether g is unset.
func (g Geometry) IsZero() bool { return g.Cols == 0 && g.Rows == 0 }

// Parse reads "WIDTHxHEIGHT". Exactly two integer tokens separated by a
// single 'x' are required.
func Parse(s string) (Geometry, error) {
	parts := strings.Split(strings.TrimSpace(s), "x")
	if len(parts) != 2 {
		return Geometry{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if w <= 0 || h <= 0 {
		return Geometry{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return Geometry{Cols: w, Rows: h}, nil
}

// ParseList splits a comma-separated list of WxH strings. Empty items are
// skipped; malformed items are returned in bad.
func ParseList(s string) (out []Geometry, bad []string) {
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		g, err := Parse(item)
		if err != nil {
			bad = append(bad, item)
			continue
		}
		out = append(out, g)
	}
	return out, bad
}

// Clamp applies the opening-size rules: width must be 80 or 132, height
// must be within 12..96; anything else falls back to the default.
func Clamp(g Geometry) Geometry {
	if g.Cols != DefaultCols && g.Cols != WideCols {
		g.Cols = DefaultCols
	}
	if g.Rows < MinRows || g.Rows > MaxRows {
		g.Rows = DefaultRows
	}
	return g
}
