package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dclinabox/internal/version"
)

// ErrNotOpen is returned by Send before the handshake completes.
var ErrNotOpen = errors.New("websocket not open")

// closeWait bounds how long Close waits for the peer's close reply, and
// how long the close event waits for an owner that stopped pulling.
var closeWait = 2 * time.Second

// WSDialer opens gorilla/websocket transports.
type WSDialer struct {
	Dialer *websocket.Dialer
	Header http.Header
}

// NewWSDialer returns a dialer with the package defaults.
func NewWSDialer() *WSDialer {
	d := *websocket.DefaultDialer
	d.ReadBufferSize = 8192
	d.WriteBufferSize = 8192
	h := http.Header{}
	h.Set("User-Agent", version.Product+"/"+version.AppVersion)
	return &WSDialer{Dialer: &d, Header: h}
}

// Open implements Dialer.
func (d *WSDialer) Open(rawURL string, events chan<- Event) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("bad websocket scheme %q", u.Scheme)
	}
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{url: rawURL, events: events, cancel: cancel, closed: make(chan struct{}), done: make(chan struct{})}
	go t.run(ctx, dialer, d.Header)
	return t, nil
}

type wsTransport struct {
	url    string
	events chan<- Event
	cancel context.CancelFunc

	mu      sync.Mutex // guards conn, closing and writes
	conn    *websocket.Conn
	closing bool
	closed  chan struct{} // closed by Close

	closeOnce sync.Once
	done      chan struct{} // closed when run returns
}

func (t *wsTransport) Capable() bool { return true }

func (t *wsTransport) run(ctx context.Context, dialer *websocket.Dialer, header http.Header) {
	defer close(t.done)
	conn, resp, err := dialer.DialContext(ctx, t.url, header)
	if err != nil {
		reason := err.Error()
		if resp != nil {
			reason = resp.Status
		}
		t.emitClose(websocket.CloseAbnormalClosure, reason)
		return
	}
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		_ = conn.Close()
		t.emitClose(websocket.CloseAbnormalClosure, "")
		return
	}
	t.conn = conn
	t.mu.Unlock()

	t.post(Event{Kind: EventOpen, Transport: t})
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			code, reason := closeInfo(err)
			_ = conn.Close()
			t.emitClose(code, reason)
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		t.post(Event{Kind: EventMessage, Data: string(data), Transport: t})
	}
}

func (t *wsTransport) emitClose(code int, reason string) {
	t.closeOnce.Do(func() {
		t.cancel()
		t.post(Event{Kind: EventClose, Code: code, Reason: reason, Transport: t})
	})
}

// post hands ev to the owner. After Close the owner may no longer pull
// events: traffic is dropped and the close event waits at most closeWait.
func (t *wsTransport) post(ev Event) {
	select {
	case t.events <- ev:
		return
	case <-t.closed:
	}
	if ev.Kind != EventClose {
		return
	}
	select {
	case t.events <- ev:
	case <-time.After(closeWait):
	}
}

// Send writes one text message.
func (t *wsTransport) Send(data string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil || t.closing {
		return ErrNotOpen
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(data))
}

// Close starts the closing handshake. The close event follows once the
// peer replies, or after closeWait.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		return nil
	}
	t.closing = true
	close(t.closed)
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		// still dialing
		t.cancel()
		return nil
	}
	deadline := time.Now().Add(closeWait)
	err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = conn.SetReadDeadline(deadline)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return nil
}

// closeInfo extracts the close code and reason from a read error.
func closeInfo(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}
	return websocket.CloseAbnormalClosure, ""
}
