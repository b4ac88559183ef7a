package merge

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// DiagnosticKind classifies a per-item problem found during a merge.
type DiagnosticKind string

// Diagnostic kinds.
const (
	KindParse            DiagnosticKind = "parse"
	KindIdentityConflict DiagnosticKind = "identity-conflict"
	KindDataConflict     DiagnosticKind = "data-conflict"
	KindUnresolved       DiagnosticKind = "unresolved-reference"
	KindCapacity         DiagnosticKind = "capacity"
	KindUnknownField     DiagnosticKind = "unknown-field"
	KindUnknownMorphType DiagnosticKind = "unknown-morph-type"
	KindInvalid          DiagnosticKind = "invalid"
)

// EntryState is where a staged entry ended up.
type EntryState int

// Entry states. An entry starts NotSeen and is either Matched to an
// existing entry or Created. A matched entry is Merged, or under KeepBoth
// moves through ConflictDetected to a Created sibling.
const (
	NotSeen EntryState = iota
	Matched
	Created
	ConflictDetected
	Merged
)

var stateNames = [...]string{"not-seen", "matched", "created", "conflict-detected", "merged"}

func (s EntryState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText writes the state name.
func (s EntryState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads a state name written by MarshalText.
func (s *EntryState) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = EntryState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown entry state %q", b)
}

// Diagnostic describes one unsafe decision the merge made.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind" yaml:"kind"`
	// Owner is the kind of the owning object, e.g. "LexEntry".
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`
	// OwnerID is the guid of the owning object, or the staged id when the
	// owner was never resolved.
	OwnerID string `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Message string `json:"message" yaml:"message"`
	Err     error  `json:"-" yaml:"-"`
}

func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.OwnerID != "" {
		s += " " + d.Owner + " " + d.OwnerID
	}
	if d.Field != "" {
		s += " [" + d.Field + "]"
	}
	return s + ": " + d.Message
}

// EntryOutcome records the final state of one staged entry.
type EntryOutcome struct {
	ID    string     `json:"id,omitempty" yaml:"id,omitempty"`
	GUID  string     `json:"guid" yaml:"guid"`
	State EntryState `json:"state" yaml:"state"`
}

// ListItem is a list item created by the merge.
type ListItem struct {
	List  string `json:"list" yaml:"list"`
	Label string `json:"label" yaml:"label"`
	GUID  string `json:"guid" yaml:"guid"`
}

// Duplication pairs an existing object with the sibling created for
// conflicting imported data.
type Duplication struct {
	Kind      string `json:"kind" yaml:"kind"`
	Original  string `json:"original" yaml:"original"`
	Duplicate string `json:"duplicate" yaml:"duplicate"`
	Field     string `json:"field,omitempty" yaml:"field,omitempty"`
}

// Truncation records a value shortened to fit its field.
type Truncation struct {
	OwnerID  string `json:"owner_id" yaml:"owner_id"`
	Field    string `json:"field" yaml:"field"`
	Lang     string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Original string `json:"original" yaml:"original"`
	Limit    int    `json:"limit" yaml:"limit"`
}

// Unresolved records a relation whose target was never found.
type Unresolved struct {
	OwnerID string `json:"owner_id" yaml:"owner_id"`
	Type    string `json:"type" yaml:"type"`
	Target  string `json:"target" yaml:"target"`
}

// Report summarizes a merge.
type Report struct {
	Policy   Policy    `json:"policy" yaml:"policy"`
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`

	EntriesAdded   int `json:"entries_added" yaml:"entries_added"`
	EntriesMerged  int `json:"entries_merged" yaml:"entries_merged"`
	EntriesSkipped int `json:"entries_skipped" yaml:"entries_skipped"`
	EntriesDeleted int `json:"entries_deleted" yaml:"entries_deleted"`

	Entries           []EntryOutcome `json:"entries,omitempty" yaml:"entries,omitempty"`
	ListItemsCreated  []ListItem     `json:"list_items_created,omitempty" yaml:"list_items_created,omitempty"`
	Duplications      []Duplication  `json:"duplications,omitempty" yaml:"duplications,omitempty"`
	Truncations       []Truncation   `json:"truncations,omitempty" yaml:"truncations,omitempty"`
	Unresolved        []Unresolved   `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	UnknownMorphTypes []string       `json:"unknown_morph_types,omitempty" yaml:"unknown_morph_types,omitempty"`
	NewLocales        []string       `json:"new_locales,omitempty" yaml:"new_locales,omitempty"`
	Diagnostics       []Diagnostic   `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// HasProblems reports whether the merge left anything for a person to look at.
func (r *Report) HasProblems() bool {
	return len(r.Diagnostics) > 0 || len(r.Unresolved) > 0 || len(r.Duplications) > 0
}

// Count returns the number of diagnostics of kind k.
func (r *Report) Count(k DiagnosticKind) int {
	return lo.CountBy(r.Diagnostics, func(d Diagnostic) bool { return d.Kind == k })
}

// Summary is a one-line description of the outcome.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d added, %d merged, %d skipped, %d deleted, %d list items created, %d duplications, %d unresolved, %d diagnostics",
		r.EntriesAdded, r.EntriesMerged, r.EntriesSkipped, r.EntriesDeleted,
		len(r.ListItemsCreated), len(r.Duplications), len(r.Unresolved), len(r.Diagnostics))
}

// State returns the recorded state of the staged entry with the given guid.
func (r *Report) State(guid string) (EntryState, bool) {
	o, ok := lo.Find(r.Entries, func(o EntryOutcome) bool { return o.GUID == guid })
	return o.State, ok
}

func (r *Report) addUnknownMorphType(label string) {
	if !lo.Contains(r.UnknownMorphTypes, label) {
		r.UnknownMorphTypes = append(r.UnknownMorphTypes, label)
	}
}
