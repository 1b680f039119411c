package term

// Metrics is the pixel size of one character cell, measured once at
// startup, plus the width a scrollbar takes when scrollback is enabled.
type Metrics struct {
	CellWidth   int
	CellHeight  int
	ScrollWidth int
}

// DefaultMetrics is used when the host terminal does not report pixels.
var DefaultMetrics = Metrics{CellWidth: 8, CellHeight: 16}

func (m Metrics) valid() bool { return m.CellWidth > 0 && m.CellHeight > 0 }

// WithScroll returns m with a one-cell scrollbar allowance when lines > 0.
func (m Metrics) WithScroll(lines int) Metrics {
	m.ScrollWidth = 0
	if lines > 0 {
		m.ScrollWidth = m.CellWidth
	}
	return m
}
