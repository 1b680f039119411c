package session

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"dclinabox/internal/config"
)

// ScriptPrefix is the conventional path an endpoint name is served under.
const ScriptPrefix = "/cgiplus-bin/"

// Endpoint holds what BuildURL needs.
type Endpoint struct {
	Host         string // host[:port], optionally prefixed ws:// or wss://
	ScriptName   string // endpoint name, or a path when it contains '/'
	SecureAlways bool
	Page         config.Page
}

// BuildURL composes scheme://host[:port]/path.
//
// The scheme comes from a ws:// or wss:// prefix on the host (ws:// is
// still upgraded when SecureAlways), else SecureAlways, else the page's
// own security. A :port in the host overrides the page port; a bare :port
// keeps the page host. Ports 80 and 443 are never written.
func BuildURL(ep Endpoint) (string, error) {
	host := strings.TrimSpace(ep.Host)
	var scheme string
	switch {
	case strings.HasPrefix(host, "wss://"):
		scheme, host = "wss://", host[len("wss://"):]
	case strings.HasPrefix(host, "ws://"):
		scheme, host = "ws://", host[len("ws://"):]
		if ep.SecureAlways {
			scheme = "wss://"
		}
	case ep.SecureAlways, ep.Page.Secure:
		scheme = "wss://"
	default:
		scheme = "ws://"
	}

	port := ep.Page.Port
	if i := strings.Index(host, ":"); i >= 0 {
		port = host[i+1:]
		host = host[:i]
		if host == "" {
			host = ep.Page.Hostname
		}
	}
	if host == "" {
		return "", errors.New("no host to connect to")
	}

	u := scheme + host
	if port != "" && port != "80" && port != "443" {
		u += ":" + port
	}
	if strings.Contains(ep.ScriptName, "/") {
		u += ep.ScriptName
	} else {
		u += ScriptPrefix + ep.ScriptName
	}
	if _, err := url.Parse(u); err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	return u, nil
}
