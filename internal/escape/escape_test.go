package escape

import (
	"errors"
	"testing"

	"dclinabox/internal/geom"
)

func TestDecodeOrdinary(t *testing.T) {
	for _, msg := range []string{"", "hello\r\n", "\r\x02DCLinabo", "x" + Marker + "1"} {
		_, ok, err := Decode(msg)
		if ok || err != nil {
			t.Fatalf("Decode(%q) ok=%v err=%v; want ordinary", msg, ok, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	frames := []Frame{
		{Op: Version, Payload: "1.1.1"},
		{Op: Title, Payload: "SYSTEM@NODE"},
		{Op: Terminate},
		{Op: Size, Payload: "132x48"},
		{Op: Logout},
		{Op: Alert, Payload: "idle terminal will be disconnected"},
	}
	for _, f := range frames {
		wire := Encode(f)
		got, ok, err := Decode(wire)
		if !ok || err != nil {
			t.Fatalf("Decode(Encode(%v)) ok=%v err=%v", f, ok, err)
		}
		if got != f {
			t.Fatalf("round trip %v -> %v", f, got)
		}
		if Encode(got) != wire {
			t.Fatalf("re-encode mismatch for %v", f)
		}
	}
}

func TestWireMarker(t *testing.T) {
	if Encode(Frame{Op: Logout}) != "\r\x02DCLinabox\x03\r\\5" {
		t.Fatalf("unexpected logout wire form %q", Encode(Frame{Op: Logout}))
	}
}

func TestDecodeUnknown(t *testing.T) {
	for _, msg := range []string{Marker, Marker + "9", Marker + "3extra", Marker + "5x"} {
		_, ok, err := Decode(msg)
		if !ok || !errors.Is(err, ErrUnknown) {
			t.Fatalf("Decode(%q) ok=%v err=%v; want ErrUnknown", msg, ok, err)
		}
	}
}

func TestGeometry(t *testing.T) {
	f, _, err := Decode(Marker + "480x24")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	g, err := f.Geometry()
	if err != nil || g != (geom.Geometry{Cols: 80, Rows: 24}) {
		t.Fatalf("Geometry = %v, %v", g, err)
	}
	f, _, _ = Decode(Marker + "480")
	if _, err := f.Geometry(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
	if _, err := (Frame{Op: Title}).Geometry(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed for non-size frame, got %v", err)
	}
	if got := Encode(SizeFrame(geom.Geometry{Cols: 132, Rows: 24})); got != Marker+"4132x24" {
		t.Fatalf("SizeFrame wire = %q", got)
	}
}
