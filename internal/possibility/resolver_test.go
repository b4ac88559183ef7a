package possibility

import (
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
)

func TestFindCaseSensitivity(t *testing.T) {
	g := lexicon.NewGraph()
	p, err := g.NewPossibility(lexicon.ListUsageTypes, uuid.Nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Name.SetString("en", "Archaic")
	p.Abbrev.SetString("en", "arch")

	tests := []struct {
		name            string
		caseInsensitive bool
		label           string
		want            bool
	}{
		{"exact name", false, "Archaic", true},
		{"exact abbrev", false, "arch", true},
		{"folded strict", false, "archaic", false},
		{"folded lenient", true, "ARCHAIC", true},
		{"missing", true, "Slang", false},
		{"blank", true, "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(g, CaseInsensitive(tt.caseInsensitive))
			got := r.Find(lexicon.ListUsageTypes, tt.label)
			if (got == p) != tt.want {
				t.Errorf("Find(%q) = %v, want found=%v", tt.label, got, tt.want)
			}
		})
	}
}

func TestFindSearchesHierarchy(t *testing.T) {
	g := lexicon.NewGraph()
	top, _ := g.NewPossibility(lexicon.ListSemanticDomains, uuid.Nil, nil)
	top.Name.SetString("en", "Universe")
	child, _ := g.NewPossibility(lexicon.ListSemanticDomains, uuid.Nil, top)
	child.Name.SetString("en", "Sky")

	if got := New(g).Find(lexicon.ListSemanticDomains, "Sky"); got != child {
		t.Errorf("Find(Sky) = %v, want nested item", got)
	}
}

func TestFindOrCreateStandardPOS(t *testing.T) {
	g := lexicon.NewGraph()
	var created []Created
	r := New(g, CaseInsensitive(true), OnCreate(func(c Created) { created = append(created, c) }))

	p, isNew, err := r.FindOrCreate(lexicon.ListPartsOfSpeech, "vt", nil)
	if err != nil || !isNew {
		t.Fatalf("FindOrCreate = %v, %v, %v", p, isNew, err)
	}
	if p.Name.String("en") != "Transitive verb" || p.Name.String("fr") != "Verbe transitif" {
		t.Errorf("names = %v", p.Name.Tags())
	}
	if p.CatalogID != "TransitiveVerb" || p.Parent == nil || p.Parent.Name.String("en") != "Verb" {
		t.Errorf("catalog %q parent %v", p.CatalogID, p.Parent)
	}
	if len(created) != 2 {
		t.Errorf("created %d items, want the verb parent and the transitive verb", len(created))
	}

	again, isNew, _ := r.FindOrCreate(lexicon.ListPartsOfSpeech, "Transitive verb", nil)
	if again != p || isNew {
		t.Error("second FindOrCreate created a duplicate")
	}
}

func TestFindOrCreatePlain(t *testing.T) {
	g := lexicon.NewGraph()
	r := New(g)
	p, isNew, err := r.FindOrCreate(lexicon.ListStatus, "Confirmed", nil)
	if err != nil || !isNew || p.Name.String("en") != "Confirmed" {
		t.Fatalf("FindOrCreate = %v, %v, %v", p, isNew, err)
	}
	if p.List != lexicon.ListStatus {
		t.Errorf("list = %s", p.List)
	}
}

func TestFindOrCreateNestsOutlineNumbers(t *testing.T) {
	g := lexicon.NewGraph()
	universe, _ := g.NewPossibility(lexicon.ListSemanticDomains, uuid.Nil, nil)
	universe.Name.SetString("en", "Universe, creation")
	universe.Abbrev.SetString("en", "1")
	sky, _ := g.NewPossibility(lexicon.ListSemanticDomains, uuid.Nil, universe)
	sky.Name.SetString("en", "1.1 Sky")
	r := New(g)

	tests := []struct {
		label string
		want  func() *lexicon.Possibility
	}{
		{"1.1.1 Sun", func() *lexicon.Possibility { return sky }},
		{"1.4.2 Wind", func() *lexicon.Possibility { return universe }},
		{"1.1.1.1 Moon", func() *lexicon.Possibility { return r.Find(lexicon.ListSemanticDomains, "1.1.1 Sun") }},
		{"9.1 Grammar", func() *lexicon.Possibility { return nil }},
		{"Weather", func() *lexicon.Possibility { return nil }},
		{"1.x Odd", func() *lexicon.Possibility { return nil }},
	}
	for _, tt := range tests {
		p, isNew, err := r.FindOrCreate(lexicon.ListSemanticDomains, tt.label, nil)
		if err != nil || !isNew {
			t.Fatalf("FindOrCreate(%q) = %v, %v, %v", tt.label, p, isNew, err)
		}
		want := tt.want()
		if p.Parent != want {
			t.Errorf("%q parent = %v, want %v", tt.label, p.Parent, want)
		}
		if want != nil && !slices.Contains(want.Children, p) {
			t.Errorf("%q missing from its parent's children", tt.label)
		}
	}
}

func TestEnsure(t *testing.T) {
	g := lexicon.NewGraph()
	r := New(g)
	el := &lift.RangeElement{
		ID:     "Noun",
		GUID:   "a8e41fd3-e343-4c7c-aa05-01ea3dd5cfb5",
		Label:  text.NewMulti("en", "Noun"),
		Abbrev: text.NewMulti("en", "n"),
	}
	p, isNew, err := r.Ensure(lexicon.ListPartsOfSpeech, el, nil, false)
	if err != nil || !isNew {
		t.Fatalf("Ensure = %v, %v, %v", p, isNew, err)
	}
	if p.GUID().String() != el.GUID {
		t.Errorf("guid = %s, want range guid", p.GUID())
	}

	// Same element with an extra locale, matched by guid.
	el2 := *el
	el2.Label = text.NewMulti("en", "Noun", "fr", "Nom")
	p2, isNew, _ := r.Ensure(lexicon.ListPartsOfSpeech, &el2, nil, false)
	if p2 != p || isNew || p.Name.String("fr") != "Nom" {
		t.Errorf("second Ensure = %v new=%v fr=%q", p2, isNew, p.Name.String("fr"))
	}

	// Different guid, same label: matched by label.
	el3 := &lift.RangeElement{ID: "Noun", GUID: uuid.NewString(), Abbrev: text.NewMulti("en", "N")}
	p3, _, _ := r.Ensure(lexicon.ListPartsOfSpeech, el3, nil, false)
	if p3 != p || p.Abbrev.String("en") != "n" {
		t.Errorf("label match = %v, abbrev %q (KeepOld keeps existing)", p3, p.Abbrev.String("en"))
	}
	r.Ensure(lexicon.ListPartsOfSpeech, el3, nil, true)
	if p.Abbrev.String("en") != "N" {
		t.Errorf("overwrite abbrev = %q", p.Abbrev.String("en"))
	}
}

func TestMorphType(t *testing.T) {
	g := lexicon.NewGraph()
	tests := []struct {
		label           string
		caseInsensitive bool
		want            bool
	}{
		{"suffix", false, true},
		{"sfx", false, true},
		{"Suffix", false, false},
		{"Suffix", true, true},
		{" SFX ", true, true},
		{"banana", true, false},
	}
	for _, tt := range tests {
		r := New(g, CaseInsensitive(tt.caseInsensitive))
		p := r.MorphType(tt.label)
		if got := p != nil && p.Name.String("en") == "suffix"; got != tt.want {
			t.Errorf("MorphType(%q) case-insensitive=%v = %v, want found=%v", tt.label, tt.caseInsensitive, p, tt.want)
		}
	}
}

func TestLookupPOS(t *testing.T) {
	tests := []struct {
		label, want string
	}{
		{"Noun", "Noun"},
		{"nprop", "ProperNoun"},
		{"verbe", "Verb"},
		{"ProperNoun", "ProperNoun"},
	}
	for _, tt := range tests {
		got, ok := LookupPOS(tt.label)
		if !ok || got.CatalogID != tt.want {
			t.Errorf("LookupPOS(%q) = %q, %v", tt.label, got.CatalogID, ok)
		}
	}
	if _, ok := LookupPOS("widget"); ok {
		t.Error("LookupPOS(widget) found something")
	}
}
