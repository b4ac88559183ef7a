package lift

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
)

// GUIDFromID extracts the guid carried by a LIFT id. Ids are either a bare
// guid or a headword followed by "_" and a guid, e.g. "dog_0c1e…".
func GUIDFromID(id string) (uuid.UUID, bool) {
	id = strings.TrimSpace(id)
	if len(id) < 36 {
		return uuid.Nil, false
	}
	tail := id[len(id)-36:]
	if len(id) > 36 && id[len(id)-37] != '_' {
		return uuid.Nil, false
	}
	g, err := uuid.Parse(tail)
	if err != nil || g == uuid.Nil {
		return uuid.Nil, false
	}
	return g, true
}

// MakeID builds the id written for an object with the given headword.
func MakeID(headword string, guid uuid.UUID) string {
	headword = strings.TrimSpace(headword)
	if headword == "" {
		return guid.String()
	}
	return headword + "_" + guid.String()
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads a LIFT date: a plain date, or a date-time with or without
// zone. Times without zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &errors.ValidationError{Field: "date", Value: s, Message: "unrecognised date format"}
}

// FormatDate writes a date-time in the form LIFT producers emit.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// SameSecond reports whether two times agree to the second.
func SameSecond(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}
