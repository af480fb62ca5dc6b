package filter

import "strings"

// Hint is shown in an empty, unfocused filter field.
const Hint = "Filter your search..."

// Tokenize turns raw filter input into lowercase search terms. Every rune
// outside [0-9a-z:] becomes a single space and the result is split on each
// space, so empty tokens are kept. A shown placeholder counts as empty input.
func Tokenize(raw string, placeholderActive bool) []string {
	if placeholderActive {
		raw = ""
	}
	return strings.Split(Normalize(raw), " ")
}

// Normalize is the pre-split form of Tokenize.
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if keep(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return b.String()
}

func keep(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || r == ':'
}

// State is the filter field: its text, whether the hint is showing and the
// tokens derived from both.
type State struct {
	RawText          string
	PlaceholderShown bool
	Tokens           []string
}

func NewState() State {
	s := State{PlaceholderShown: true}
	s.retokenize()
	return s
}

// SetText replaces the field text. Empty text shows the hint again.
func (s *State) SetText(text string) {
	s.RawText = text
	s.PlaceholderShown = text == ""
	s.retokenize()
}

// Edit records a keystroke-level change while the field has focus.
func (s *State) Edit(text string) {
	s.RawText = text
	s.PlaceholderShown = false
	s.retokenize()
}

func (s *State) Focus() {
	if s.PlaceholderShown {
		s.PlaceholderShown = false
		s.RawText = ""
	}
	s.retokenize()
}

func (s *State) Blur() {
	if s.RawText == "" {
		s.PlaceholderShown = true
	}
	s.retokenize()
}

// Text is the effective filter text, empty while the hint shows.
func (s State) Text() string {
	if s.PlaceholderShown {
		return ""
	}
	return s.RawText
}

func (s *State) retokenize() {
	s.Tokens = Tokenize(s.RawText, s.PlaceholderShown)
}
