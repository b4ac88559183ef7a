// Package text provides the locale-tagged text model shared by the LIFT
// staging tree and the lexicon graph.
//
// A Multi holds at most one Str per locale (writing system) tag. A Str is a
// sequence of runs; runs carry the formatting a LIFT <span> can express: a
// different language, a character style, or a hyperlink / file reference.
package text

import (
	"strings"
)

// Run is a contiguous piece of text with uniform properties.
// Empty Lang means the run inherits the locale of its alternative.
type Run struct {
	Text  string `json:"text" yaml:"text"`
	Lang  string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
	Href  string `json:"href,omitempty" yaml:"href,omitempty"`
}

// IsPlain reports whether the run carries no formatting.
func (r Run) IsPlain() bool {
	return r.Lang == "" && r.Style == "" && r.Href == ""
}

// Str is a possibly formatted string.
type Str struct {
	Runs []Run `json:"runs" yaml:"runs"`
}

// Plain returns a Str holding a single unformatted run.
func Plain(s string) Str {
	if s == "" {
		return Str{}
	}
	return Str{Runs: []Run{{Text: s}}}
}

// String returns the concatenated text of all runs.
func (s Str) String() string {
	if len(s.Runs) == 1 {
		return s.Runs[0].Text
	}
	var b strings.Builder
	for _, r := range s.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// IsEmpty reports whether the string has no text.
func (s Str) IsEmpty() bool {
	for _, r := range s.Runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// HasFormatting reports whether any run carries properties.
func (s Str) HasFormatting() bool {
	for _, r := range s.Runs {
		if !r.IsPlain() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s Str) Clone() Str {
	if s.Runs == nil {
		return Str{}
	}
	runs := make([]Run, len(s.Runs))
	copy(runs, s.Runs)
	return Str{Runs: runs}
}

// Truncate cuts the string to at most limit runes, keeping run boundaries.
func (s Str) Truncate(limit int) Str {
	out := Str{}
	remaining := limit
	for _, r := range s.Runs {
		if remaining <= 0 {
			break
		}
		rs := []rune(r.Text)
		if len(rs) > remaining {
			r.Text = string(rs[:remaining])
		}
		remaining -= len([]rune(r.Text))
		out.Runs = append(out.Runs, r)
	}
	return out
}

// Len returns the length of the string in runes.
func (s Str) Len() int {
	n := 0
	for _, r := range s.Runs {
		n += len([]rune(r.Text))
	}
	return n
}

// Alt is one alternative of a Multi.
type Alt struct {
	Lang  string `json:"lang" yaml:"lang"`
	Value Str    `json:"value" yaml:"value"`
}

// Multi is a locale-tagged text value.
// The zero value is an empty Multi ready to use. Copies share storage; Clone
// before mutating a copy.
type Multi struct {
	alts []Alt
}

// NewMulti builds a Multi from tag/plain-text pairs.
func NewMulti(pairs ...string) Multi {
	var m Multi
	for i := 0; i+1 < len(pairs); i += 2 {
		m.SetString(pairs[i], pairs[i+1])
	}
	return m
}

func (m *Multi) index(lang string) int {
	for i, a := range m.alts {
		if a.Lang == lang {
			return i
		}
	}
	return -1
}

// Set stores value for lang, replacing any previous value.
// Storing an empty value removes the alternative.
func (m *Multi) Set(lang string, value Str) {
	i := m.index(lang)
	if value.IsEmpty() {
		if i >= 0 {
			m.alts = append(m.alts[:i], m.alts[i+1:]...)
		}
		return
	}
	if i >= 0 {
		m.alts[i].Value = value
		return
	}
	m.alts = append(m.alts, Alt{Lang: lang, Value: value})
}

// SetString stores plain text for lang.
func (m *Multi) SetString(lang, s string) {
	m.Set(lang, Plain(s))
}

// Get returns the value for lang.
func (m Multi) Get(lang string) (Str, bool) {
	i := m.index(lang)
	if i < 0 {
		return Str{}, false
	}
	return m.alts[i].Value, true
}

// String returns the plain text for lang, or "".
func (m Multi) String(lang string) string {
	s, _ := m.Get(lang)
	return s.String()
}

// Remove deletes the alternative for lang.
func (m *Multi) Remove(lang string) {
	m.Set(lang, Str{})
}

// Tags returns the locale tags in storage order.
func (m Multi) Tags() []string {
	tags := make([]string, len(m.alts))
	for i, a := range m.alts {
		tags[i] = a.Lang
	}
	return tags
}

// Alts returns the alternatives in storage order.
func (m Multi) Alts() []Alt {
	return m.alts
}

// Len returns the number of non-empty alternatives.
func (m Multi) Len() int {
	return len(m.alts)
}

// IsEmpty reports whether no alternative has text.
func (m Multi) IsEmpty() bool {
	return len(m.alts) == 0
}

// Best returns the first non-empty alternative among prefs, falling back to
// the first stored alternative.
func (m Multi) Best(prefs ...string) string {
	for _, p := range prefs {
		if s := m.String(p); s != "" {
			return s
		}
	}
	if len(m.alts) > 0 {
		return m.alts[0].Value.String()
	}
	return ""
}

// Clone returns a deep copy.
func (m Multi) Clone() Multi {
	if len(m.alts) == 0 {
		return Multi{}
	}
	alts := make([]Alt, len(m.alts))
	for i, a := range m.alts {
		alts[i] = Alt{Lang: a.Lang, Value: a.Value.Clone()}
	}
	return Multi{alts: alts}
}

// Equal reports whether both values hold the same tags with the same
// normalized text.
func (m Multi) Equal(o Multi) bool {
	if len(m.alts) != len(o.alts) {
		return false
	}
	for _, a := range m.alts {
		b, ok := o.Get(a.Lang)
		if !ok || !SameText(a.Value.String(), b.String()) {
			return false
		}
	}
	return true
}

// Conflicts reports whether some locale present in both values holds two
// different non-empty texts.
func Conflicts(a, b Multi) bool {
	for _, alt := range a.alts {
		other, ok := b.Get(alt.Lang)
		if !ok || other.IsEmpty() || alt.Value.IsEmpty() {
			continue
		}
		if !SameText(alt.Value.String(), other.String()) {
			return true
		}
	}
	return false
}

// Overlap counts the locales whose normalized non-empty texts are identical.
func Overlap(a, b Multi) int {
	n := 0
	for _, alt := range a.alts {
		other, ok := b.Get(alt.Lang)
		if !ok {
			continue
		}
		if SameText(alt.Value.String(), other.String()) {
			n++
		}
	}
	return n
}
