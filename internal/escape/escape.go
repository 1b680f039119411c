// Package escape encodes and decodes the sideband control frames the
// DCLinabox executable multiplexes into the terminal data stream.
//
// A sideband frame is a whole WebSocket text message that starts with
// Marker, followed by a one-character opcode and an optional payload.
// Any other message is ordinary terminal output.
package escape

import (
	"errors"
	"fmt"
	"strings"

	"dclinabox/internal/geom"
	"dclinabox/internal/version"
)

// Marker prefixes every sideband frame.
const Marker = "\r\x02" + version.Product + "\x03\r\\"

// Opcode selects the sideband operation. Values reflect the order in which
// they were introduced, not any priority.
type Opcode byte

const (
	Version   Opcode = '1' // payload: peer version string
	Title     Opcode = '2' // payload: window title
	Terminate Opcode = '3' // no payload
	Size      Opcode = '4' // payload: WxH
	Logout    Opcode = '5' // no payload
	Alert     Opcode = '6' // payload: message text
)

func (o Opcode) String() string {
	switch o {
	case Version:
		return "version"
	case Title:
		return "title"
	case Terminate:
		return "terminate"
	case Size:
		return "terminal-size"
	case Logout:
		return "logout"
	case Alert:
		return "alert"
	}
	return fmt.Sprintf("opcode(%q)", byte(o))
}

var (
	// ErrUnknown reports a frame that carries the marker but no opcode
	// this client understands.
	ErrUnknown = errors.New("unknown DCLinabox escape")
	// ErrMalformed reports a known frame whose payload cannot be used.
	ErrMalformed = errors.New("malformed DCLinabox escape payload")
)

// Frame is one decoded sideband message.
type Frame struct {
	Op      Opcode
	Payload string
}

// IsSideband reports whether msg starts with Marker.
func IsSideband(msg string) bool { return strings.HasPrefix(msg, Marker) }

// Decode classifies msg. ok is false for ordinary terminal output, in which
// case msg must be forwarded to the emulator untouched. A marked message
// with an unrecognised opcode returns ok and ErrUnknown.
func Decode(msg string) (f Frame, ok bool, err error) {
	if !IsSideband(msg) {
		return Frame{}, false, nil
	}
	rest := msg[len(Marker):]
	if rest == "" {
		return Frame{}, true, ErrUnknown
	}
	f = Frame{Op: Opcode(rest[0]), Payload: rest[1:]}
	switch f.Op {
	case Terminate, Logout:
		if f.Payload != "" {
			return f, true, fmt.Errorf("%w: %s with payload", ErrUnknown, f.Op)
		}
	case Version, Title, Size, Alert:
	default:
		return f, true, fmt.Errorf("%w: %s", ErrUnknown, f.Op)
	}
	return f, true, nil
}

// Encode renders f as a wire message.
func Encode(f Frame) string {
	return Marker + string(rune(f.Op)) + f.Payload
}

// SizeFrame builds the terminal-size frame for g.
func SizeFrame(g geom.Geometry) Frame {
	return Frame{Op: Size, Payload: g.String()}
}

// Geometry parses the payload of a terminal-size frame.
func (f Frame) Geometry() (geom.Geometry, error) {
	if f.Op != Size {
		return geom.Geometry{}, fmt.Errorf("%w: %s is not terminal-size", ErrMalformed, f.Op)
	}
	g, err := geom.Parse(f.Payload)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return g, nil
}
