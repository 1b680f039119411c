package session

import "fmt"

// Status is the integer-coded connection status. Values of Receiving and
// above count inbound frames and only serve to tell an idle connection
// from an active one.
type Status int

const (
	Terminated       Status = -3
	LoggedOut        Status = -2
	UserDisconnected Status = -1
	Unconnected      Status = 0
	Connecting       Status = 1
	Connected        Status = 2
	Receiving        Status = 3
)

// Receiving reports whether at least one frame arrived on the connection.
func (s Status) Receiving() bool { return s >= Receiving }

// Open reports whether the transport acknowledged the connection.
func (s Status) Open() bool { return s >= Connected }

// Ended reports one of the explicit terminal outcomes.
func (s Status) Ended() bool { return s < Unconnected }

func (s Status) String() string {
	switch {
	case s == Terminated:
		return "terminated"
	case s == LoggedOut:
		return "logged-out"
	case s == UserDisconnected:
		return "disconnected"
	case s == Unconnected:
		return "unconnected"
	case s == Connecting:
		return "connecting"
	case s == Connected:
		return "connected"
	case s >= Receiving:
		return fmt.Sprintf("receiving(%d)", int(s))
	}
	return fmt.Sprintf("status(%d)", int(s))
}
