// Package params resolves named configuration values from the contexts a
// terminal instance can inherit from.
//
// Precedence, highest first: the opener (the instance or launcher that
// spawned this one), the parent (an embedding host), the local scope
// (local config file and command-line flags), then the supplied default.
// Every resolved value is written back into the local scope so later code,
// and any instance opened from this one, sees it directly.
package params

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Source is a named-value lookup.
type Source interface {
	Lookup(name string) (any, bool)
}

// Scope is the current instance's own set of values.
type Scope struct {
	mu   sync.RWMutex
	vals map[string]any
}

// NewScope returns a scope seeded with a copy of init.
func NewScope(init map[string]any) *Scope {
	s := &Scope{vals: make(map[string]any, len(init))}
	for k, v := range init {
		s.vals[k] = v
	}
	return s
}

// Lookup implements Source.
func (s *Scope) Lookup(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vals[name]
	return v, ok
}

// Set defines name in the scope.
func (s *Scope) Set(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[name] = v
}

// Merge sets every entry of m that is not already defined.
func (s *Scope) Merge(m map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range m {
		if _, ok := s.vals[k]; !ok {
			s.vals[k] = v
		}
	}
}

// Snapshot returns a copy of the scope contents.
func (s *Scope) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// Names returns the defined names, sorted.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.vals))
	for k := range s.vals {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolver applies the opener, parent, local, default precedence.
// Opener and Parent may be nil.
type Resolver struct {
	Opener Source
	Parent Source
	Local  *Scope
}

// New returns a resolver over the given sources. A nil local scope is
// replaced with an empty one.
func New(opener, parent Source, local *Scope) *Resolver {
	if local == nil {
		local = NewScope(nil)
	}
	return &Resolver{Opener: opener, Parent: parent, Local: local}
}

// Resolve returns the value of name and defines it in the local scope.
func (r *Resolver) Resolve(name string, def any) any {
	v, ok := r.lookup(name)
	if !ok {
		v = def
	}
	r.Local.Set(name, v)
	return v
}

func (r *Resolver) lookup(name string) (any, bool) {
	for _, src := range []Source{r.Opener, r.Parent} {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(name); ok && v != nil {
			return v, true
		}
	}
	if v, ok := r.Local.Lookup(name); ok && v != nil {
		return v, true
	}
	return nil, false
}

// String resolves name as a string.
func (r *Resolver) String(name, def string) string {
	if s, ok := asString(r.Resolve(name, def)); ok {
		return s
	}
	r.Local.Set(name, def)
	return def
}

// Bool resolves name as a boolean. Strings such as "true", "1" or "no"
// are accepted.
func (r *Resolver) Bool(name string, def bool) bool {
	switch v := r.Resolve(name, def).(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "on":
			return true
		case "no", "off", "":
			return false
		}
	}
	r.Local.Set(name, def)
	return def
}

// Int resolves name as an integer.
func (r *Resolver) Int(name string, def int) int {
	if n, ok := asInt(r.Resolve(name, def)); ok {
		return n
	}
	r.Local.Set(name, def)
	return def
}

// Strings resolves name as a list. A single string is split on commas.
func (r *Resolver) Strings(name string, def []string) []string {
	switch v := r.Resolve(name, def).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := asString(e); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	r.Local.Set(name, def)
	return def
}

// StringMap resolves name as a string-keyed map of strings.
func (r *Resolver) StringMap(name string, def map[string]string) map[string]string {
	switch v := r.Resolve(name, def).(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, e := range v {
			if s, ok := asString(e); ok {
				out[k] = s
			}
		}
		return out
	}
	r.Local.Set(name, def)
	return def
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	case int, int64, float64, bool:
		return fmt.Sprint(s), true
	}
	return "", false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
