//go:build unix

package term

import "golang.org/x/sys/unix"

// Measure reads the cell size of the terminal on fd from its window size
// in pixels. Terminals that report no pixel size get DefaultMetrics.
func Measure(fd int) Metrics {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return DefaultMetrics
	}
	m := Metrics{
		CellWidth:  int(ws.Xpixel) / int(ws.Col),
		CellHeight: int(ws.Ypixel) / int(ws.Row),
	}
	if !m.valid() {
		return DefaultMetrics
	}
	return m
}

// WindowSize returns the host terminal size in cells, or false.
func WindowSize(fd int) (cols, rows int, ok bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}
