package residue

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/lexicon"
)

func newEntry(t *testing.T) *lexicon.Entry {
	t.Helper()
	e, err := lexicon.NewGraph().NewEntry(uuid.Nil)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}

func TestEncodeDecode(t *testing.T) {
	r := &Residue{
		ID:        `dog "1"`,
		Created:   "2020-01-01T00:00:00Z",
		Fragments: []string{`<a x="1"/>`, `<b>text</b>`},
	}
	s := r.Encode()
	if !strings.HasPrefix(s, `<lift-residue id="dog &quot;1&quot;"`) {
		t.Errorf("Encode() = %s", s)
	}
	got := Decode(s)
	if got.ID != r.ID || got.Created != r.Created || got.Modified != "" {
		t.Errorf("Decode attrs = %+v", got)
	}
	if len(got.Fragments) != 2 || got.Fragments[1] != `<b>text</b>` {
		t.Errorf("Decode fragments = %q", got.Fragments)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		fragments int
		opaque    bool
	}{
		{"empty", "", 0, false},
		{"blank", "  \n", 0, false},
		{"malformed", "<lift-residue><a></lift-residue>", 1, true},
		{"foreign root", "<other/>", 1, true},
		{"no fragments", `<lift-residue id="x"></lift-residue>`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Decode(tt.in)
			if len(r.Fragments) != tt.fragments {
				t.Fatalf("fragments = %q, want %d", r.Fragments, tt.fragments)
			}
			if tt.opaque && r.Fragments[0] != tt.in {
				t.Errorf("opaque fragment = %q, want input", r.Fragments[0])
			}
		})
	}
}

func TestEmptyEncodesToNothing(t *testing.T) {
	if s := (&Residue{}).Encode(); s != "" {
		t.Errorf("Encode() = %q, want empty", s)
	}
}

func TestAttachDeduplicates(t *testing.T) {
	e := newEntry(t)
	if n := Attach(e, `<x/>`, `<y/>`); n != 2 {
		t.Fatalf("first Attach added %d", n)
	}
	if n := Attach(e, `<x/>`, "  "); n != 0 {
		t.Errorf("second Attach added %d, want 0", n)
	}
	if got := Replay(e); got != `<x/><y/>` {
		t.Errorf("Replay() = %q", got)
	}
}

func TestOriginalIDAndDates(t *testing.T) {
	e := newEntry(t)
	Attach(e, `<x/>`)
	SetOriginalID(e, "dog_1")
	SetDates(e, "2020-01-01T00:00:00Z", "2021-01-01T00:00:00Z")
	if got := OriginalID(e); got != "dog_1" {
		t.Errorf("OriginalID() = %q", got)
	}
	c, m := Dates(e)
	if c != "2020-01-01T00:00:00Z" || m != "2021-01-01T00:00:00Z" {
		t.Errorf("Dates() = %q, %q", c, m)
	}
	if got := Fragments(e); len(got) != 1 || got[0] != `<x/>` {
		t.Errorf("Fragments() = %q after setting id and dates", got)
	}
}

func TestAttachCanonicalizesFragments(t *testing.T) {
	e := newEntry(t)
	if n := Attach(e, `<trait name="mystery" value="x"/>`); n != 1 {
		t.Fatalf("first Attach added %d", n)
	}
	for i, frag := range []string{
		`<trait name="mystery" value="x"/>`,
		`<trait name="mystery" value="x"></trait>`,
		"\n  <trait name=\"mystery\" value=\"x\" />  ",
	} {
		if n := Attach(e, frag); n != 0 {
			t.Errorf("Attach #%d (%s) added %d, want 0", i, frag, n)
		}
	}
	if got := Replay(e); got != `<trait name="mystery" value="x"/>` {
		t.Errorf("Replay() = %q", got)
	}
}

func TestAttachSplitsSiblings(t *testing.T) {
	e := newEntry(t)
	if n := Attach(e, `<a/><b>t</b>`); n != 1 {
		t.Fatalf("Attach added %d, want 1 call", n)
	}
	if n := Attach(e, `<b>t</b>`); n != 0 {
		t.Errorf("sibling already stored, Attach added %d", n)
	}
	if got := Fragments(e); len(got) != 2 || got[0] != `<a/>` || got[1] != `<b>t</b>` {
		t.Errorf("Fragments() = %q", got)
	}
}

func TestTextFragmentSurvivesDecode(t *testing.T) {
	e := newEntry(t)
	Attach(e, `a &amp; b`, `<x/>`)
	if got := Fragments(e); len(got) != 2 || got[0] != `a &amp; b` || got[1] != `<x/>` {
		t.Errorf("Fragments() = %q", got)
	}
	if n := Attach(e, `a &amp; b`); n != 0 {
		t.Errorf("text fragment added twice")
	}
}
