//go:build !unix

package term

// Measure returns DefaultMetrics; pixel sizes are not available here.
func Measure(fd int) Metrics { return DefaultMetrics }

// WindowSize is not available here.
func WindowSize(fd int) (cols, rows int, ok bool) { return 0, 0, false }
