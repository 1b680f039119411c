package term

import "github.com/sahilm/fuzzy"

// Selector is the size dropdown: a list of WxH options with a highlighted
// entry, narrowed by typed text.
type Selector struct {
	options []string
	query   string
	visible []string
	cursor  int
}

// NewSelector highlights current when it is among options.
func NewSelector(options []string, current string) *Selector {
	s := &Selector{options: options}
	s.refilter()
	for i, o := range s.visible {
		if o == current {
			s.cursor = i
		}
	}
	return s
}

// Options returns the visible options.
func (s *Selector) Options() []string { return s.visible }

// Cursor returns the highlighted index.
func (s *Selector) Cursor() int { return s.cursor }

// Query returns the filter text.
func (s *Selector) Query() string { return s.query }

// Current returns the highlighted option.
func (s *Selector) Current() (string, bool) {
	if s.cursor < 0 || s.cursor >= len(s.visible) {
		return "", false
	}
	return s.visible[s.cursor], true
}

// Move shifts the highlight by delta, clamped to the list.
func (s *Selector) Move(delta int) {
	s.cursor += delta
	if s.cursor >= len(s.visible) {
		s.cursor = len(s.visible) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Type appends to the filter text.
func (s *Selector) Type(r rune) {
	s.query += string(r)
	s.refilter()
}

// Backspace removes the last filter character.
func (s *Selector) Backspace() {
	if s.query == "" {
		return
	}
	rs := []rune(s.query)
	s.query = string(rs[:len(rs)-1])
	s.refilter()
}

func (s *Selector) refilter() {
	s.cursor = 0
	if s.query == "" {
		s.visible = append([]string(nil), s.options...)
		return
	}
	matches := fuzzy.Find(s.query, s.options)
	s.visible = s.visible[:0]
	for _, m := range matches {
		s.visible = append(s.visible, m.Str)
	}
}
