package config

import (
	"fmt"
	"strings"

	"dclinabox/internal/params"
)

// Fragment is a bookmarklet-style launch target:
//
//	ws[s]://host[:port]/path[;WxH]
type Fragment struct {
	Host       string // scheme included, e.g. "wss://vms.example"
	ScriptName string // absolute path, e.g. "/cgiplus-bin/dclinabox"
	WxH        string // optional
}

// ParseFragment parses s, tolerating a leading '#'.
func ParseFragment(s string) (Fragment, error) {
	hash := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var scheme string
	switch {
	case strings.HasPrefix(hash, "wss://"):
		scheme = "wss://"
	case strings.HasPrefix(hash, "ws://"):
		scheme = "ws://"
	default:
		return Fragment{}, fmt.Errorf("ERROR:%s", hash)
	}
	rest := hash[len(scheme):]

	var wxh string
	if at := strings.Index(rest, ";"); at > 0 {
		wxh = rest[at+1:]
		rest = rest[:at]
	}
	at := strings.Index(rest, "/")
	if at <= 0 {
		return Fragment{}, fmt.Errorf("ERROR:%s", hash)
	}
	return Fragment{Host: scheme + rest[:at], ScriptName: rest[at:], WxH: wxh}, nil
}

// Apply defines the fragment's values in the local scope.
func (f Fragment) Apply(s *params.Scope) {
	s.Set(OptHost, f.Host)
	s.Set(OptScriptName, f.ScriptName)
	if f.WxH != "" {
		s.Set(OptWxH, f.WxH)
	}
}
