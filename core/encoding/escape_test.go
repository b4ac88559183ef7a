package encoding

import "testing"

func TestEscapeXMLText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"entities", "<a> & <b>", "&lt;a&gt; &amp; &lt;b&gt;"},
		{"quotes untouched", `"x"`, `"x"`},
		{"newline kept", "a\nb", "a\nb"},
		{"control stripped", "a\x01b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLText(tt.input); got != tt.want {
				t.Errorf("EscapeXMLText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quote", `a"b`, "a&quot;b"},
		{"ampersand", "x&y", "x&amp;y"},
		{"newline", "line1\nline2", "line1&#xA;line2"},
		{"tab", "a\tb", "a&#x9;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLAttr(tt.input); got != tt.want {
				t.Errorf("EscapeXMLAttr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripInvalidXMLChars(t *testing.T) {
	if got := StripInvalidXMLChars("clean"); got != "clean" {
		t.Errorf("StripInvalidXMLChars(clean) = %q", got)
	}
	if got := StripInvalidXMLChars("a\x00b\x1Fc"); got != "abc" {
		t.Errorf("StripInvalidXMLChars = %q, want abc", got)
	}
	if got := StripInvalidXMLChars("a\xffb"); got != "ab" {
		t.Errorf("invalid utf-8 not stripped: %q", got)
	}
}
