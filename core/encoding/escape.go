// Package encoding provides the text escaping used when writing LIFT XML.
package encoding

import (
	"strings"
	"unicode/utf8"
)

// EscapeXMLText escapes only the basic XML entities for text content.
// Whitespace, including newlines, is kept as-is.
func EscapeXMLText(s string) string {
	s = StripInvalidXMLChars(s)
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Line breaks and tabs become character references so that attribute value
// normalization on re-read does not turn them into spaces.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "\n", "&#xA;")
	s = strings.ReplaceAll(s, "\r", "&#xD;")
	s = strings.ReplaceAll(s, "\t", "&#x9;")
	return s
}

// StripInvalidXMLChars removes runes that XML 1.0 cannot carry at all,
// such as most C0 control characters and invalid UTF-8 bytes.
func StripInvalidXMLChars(s string) string {
	clean := true
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && isBadByte(s, i)) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && isBadByte(s, i)) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isBadByte(s string, i int) bool {
	_, size := utf8.DecodeRuneInString(s[i:])
	return size == 1
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
