package merge

import (
	"strings"
	"time"

	"github.com/sillsdev/liftbridge/core/errors"
)

// Policy decides what happens when imported data meets existing data.
type Policy int

const (
	// KeepOld fills only empty fields; existing values win conflicts.
	KeepOld Policy = iota
	// KeepNew overwrites existing values with imported ones.
	KeepNew
	// KeepBoth duplicates an entry or sense whose fields conflict.
	KeepBoth
	// KeepOnlyNew behaves like KeepNew and then deletes every entry the
	// import did not touch.
	KeepOnlyNew
)

var policyNames = [...]string{"keep-old", "keep-new", "keep-both", "keep-only-new"}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// MarshalText writes the policy name.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText reads a policy name.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePolicy decodes a policy name. Underscores and case are ignored, so
// "KeepOld", "keep_old" and "keep-old" are all accepted.
func ParsePolicy(s string) (Policy, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "keepold", "old":
		return KeepOld, nil
	case "keepnew", "new":
		return KeepNew, nil
	case "keepboth", "both":
		return KeepBoth, nil
	case "keeponlynew", "onlynew":
		return KeepOnlyNew, nil
	}
	return KeepOld, &errors.ValidationError{Field: "policy", Value: s, Message: "unknown merge policy"}
}

// overwrites reports whether imported values replace existing ones.
func (p Policy) overwrites() bool {
	return p == KeepNew || p == KeepOnlyNew
}

// Options configure a merge.
type Options struct {
	Policy Policy
	// TrustModTimes skips entries whose modification time equals the
	// existing entry's to the second.
	TrustModTimes bool
	// CaseInsensitiveLabels lets list labels match ignoring case when no
	// exact match exists.
	CaseInsensitiveLabels bool
	// MaxTextLength limits stored text values, in runes. Zero means no limit.
	MaxTextLength int
	// MaxAbbrevLength limits list-item abbreviations. Zero means no limit.
	MaxAbbrevLength int
	// AnalysisLocale is the locale new list items are named in.
	AnalysisLocale string
	// Now supplies timestamps for objects the import creates.
	Now func() time.Time
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Policy:                KeepOld,
		CaseInsensitiveLabels: true,
		AnalysisLocale:        "en",
		Now:                   time.Now,
	}
}

func (o *Options) normalize() {
	if o.AnalysisLocale == "" {
		o.AnalysisLocale = "en"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
