package lexicon

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/text"
)

func newRelationType(t *testing.T, g *Graph, name string, m MappingType) *Possibility {
	t.Helper()
	p, err := g.NewPossibility(ListLexicalRelations, uuid.Nil, nil)
	if err != nil {
		t.Fatalf("NewPossibility: %v", err)
	}
	p.Name = text.NewMulti("en", name)
	p.Relation = &RelationTypeInfo{Mapping: m}
	return p
}

func newEntry(t *testing.T, g *Graph, form string) *Entry {
	t.Helper()
	e, err := g.NewEntry(uuid.Nil)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	a, err := g.NewAllomorph(e, uuid.Nil)
	if err != nil {
		t.Fatalf("NewAllomorph: %v", err)
	}
	a.Form = text.NewMulti("seh", form)
	e.LexemeForm = a
	return e
}

func TestNewGraphSeedsMorphTypes(t *testing.T) {
	g := NewGraph()
	if n := g.List(ListMorphTypes).Len(); n != len(standardMorphTypes) {
		t.Errorf("morph types = %d, want %d", n, len(standardMorphTypes))
	}
	sfx := g.MorphType(MorphSuffix)
	if sfx == nil {
		t.Fatal("suffix morph type missing")
	}
	if sfx.GUID().String() != "d7f713dd-e8cf-11d3-9764-00c04f186933" {
		t.Errorf("suffix guid = %s", sfx.GUID())
	}
	for _, id := range StandardLists {
		if !g.HasList(id) {
			t.Errorf("list %s missing", id)
		}
	}
}

func TestDeletedGUIDNeverReused(t *testing.T) {
	g := NewGraph()
	e := newEntry(t, g, "mbuzi")
	id := e.GUID()
	g.DeleteEntry(e)

	if !g.IsDeleted(id) {
		t.Fatal("deleted guid not recorded")
	}
	if g.IsFree(id) {
		t.Error("deleted guid reported free")
	}
	_, err := g.NewEntry(id)
	if !errors.Is(err, errors.ErrIdentityConflict) {
		t.Errorf("NewEntry(deleted guid) error = %v, want identity conflict", err)
	}
}

func TestRegisterRejectsDuplicateGUID(t *testing.T) {
	g := NewGraph()
	e := newEntry(t, g, "a")
	if _, err := g.NewSense(e, e.GUID()); !errors.Is(err, errors.ErrIdentityConflict) {
		t.Errorf("NewSense(entry guid) error = %v, want identity conflict", err)
	}
}

func TestMappingCodes(t *testing.T) {
	tests := []struct {
		code int
		want MappingType
	}{
		{0, MappingType{ShapeCollection, TargetSense}},
		{1, MappingType{ShapePair, TargetSense}},
		{2, MappingType{ShapeTree, TargetSense}},
		{3, MappingType{ShapeSequence, TargetSense}},
		{4, MappingType{ShapeCollection, TargetEntry}},
		{5, MappingType{ShapePair, TargetEntry}},
		{7, MappingType{ShapeSequence, TargetEntry}},
		{8, MappingType{ShapeCollection, TargetEntryOrSense}},
		{10, MappingType{ShapeTree, TargetEntryOrSense}},
		{11, MappingType{ShapeSequence, TargetEntryOrSense}},
		{12, MappingType{ShapeAsymmetricPair, TargetSense}},
		{13, MappingType{ShapeAsymmetricPair, TargetEntry}},
		{14, MappingType{ShapeAsymmetricPair, TargetEntryOrSense}},
	}
	for _, tt := range tests {
		got, err := MappingFromCode(tt.code)
		if err != nil {
			t.Fatalf("MappingFromCode(%d): %v", tt.code, err)
		}
		if got != tt.want {
			t.Errorf("MappingFromCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
		if got.Code() != tt.code {
			t.Errorf("Code() = %d, want %d", got.Code(), tt.code)
		}
	}
	for _, code := range []int{-1, 15} {
		if _, err := MappingFromCode(code); err == nil {
			t.Errorf("MappingFromCode(%d) should fail", code)
		}
	}
	if got := (MappingType{Shape(9), TargetSense}).Code(); got != -1 {
		t.Errorf("unknown shape Code() = %d, want -1", got)
	}
}

func TestNewLexReferenceArity(t *testing.T) {
	g := NewGraph()
	a, b, c := newEntry(t, g, "a"), newEntry(t, g, "b"), newEntry(t, g, "c")
	pair := newRelationType(t, g, "Antonym", MappingType{ShapePair, TargetEntry})
	coll := newRelationType(t, g, "Synonyms", MappingType{ShapeCollection, TargetEntry})
	senses := newRelationType(t, g, "Compare", MappingType{ShapeCollection, TargetSense})

	if _, err := g.NewLexReference(pair, []Object{a, b, c}); err == nil {
		t.Error("pair with three members accepted")
	}
	if _, err := g.NewLexReference(coll, []Object{a}); err == nil {
		t.Error("collection with one member accepted")
	}
	if _, err := g.NewLexReference(senses, []Object{a, b}); err == nil {
		t.Error("sense relation accepted entries")
	}
	r, err := g.NewLexReference(coll, []Object{a, b, c})
	if err != nil {
		t.Fatalf("NewLexReference: %v", err)
	}
	if !r.SameMembers([]Object{c, a, b}) {
		t.Error("collection members should compare as a set")
	}
	if err := g.AddTarget(r, a); err != nil || len(r.Targets) != 3 {
		t.Errorf("AddTarget(existing) = %v, targets %d", err, len(r.Targets))
	}
}

func TestEnsureMSAShares(t *testing.T) {
	g := NewGraph()
	e := newEntry(t, g, "a")
	noun, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)
	verb, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)

	m1, created, err := g.EnsureMSA(e, &StemInfo{POS: noun})
	if err != nil || !created {
		t.Fatalf("first EnsureMSA = %v, %v", created, err)
	}
	m2, created, _ := g.EnsureMSA(e, &StemInfo{POS: noun})
	if created || m1 != m2 {
		t.Error("equal stem info should reuse the MSA")
	}
	m3, created, _ := g.EnsureMSA(e, &StemInfo{POS: verb})
	if !created || m3 == m1 {
		t.Error("different POS should create a new MSA")
	}
	if _, created, _ := g.EnsureMSA(e, &UnclassifiedAffixInfo{POS: noun}); !created {
		t.Error("different MSA variant should not match")
	}
	if len(e.MSAs) != 3 {
		t.Errorf("MSAs = %d, want 3", len(e.MSAs))
	}
}

func TestGramInfoEqual(t *testing.T) {
	g := NewGraph()
	p1, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)
	p2, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)
	s1, _ := g.NewPossibility(ListInflectionSlot, uuid.Nil, nil)
	s2, _ := g.NewPossibility(ListInflectionSlot, uuid.Nil, nil)

	tests := []struct {
		name string
		a, b GramInfo
		want bool
	}{
		{"same stem", &StemInfo{POS: p1}, &StemInfo{POS: p1}, true},
		{"stem pos differs", &StemInfo{POS: p1}, &StemInfo{POS: p2}, false},
		{"slots any order", &InflAffixInfo{POS: p1, Slots: []*Possibility{s1, s2}}, &InflAffixInfo{POS: p1, Slots: []*Possibility{s2, s1}}, true},
		{"deriv to differs", &DerivAffixInfo{FromPOS: p1, ToPOS: p1}, &DerivAffixInfo{FromPOS: p1, ToPOS: p2}, false},
		{"variant differs", &DerivStepInfo{POS: p1}, &StemInfo{POS: p1}, false},
		{"both nil", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GramInfoEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("GramInfoEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeleteEntryCascade(t *testing.T) {
	g := NewGraph()
	a, b, c := newEntry(t, g, "a"), newEntry(t, g, "b"), newEntry(t, g, "c")
	sense, err := g.NewSense(c, uuid.Nil)
	if err != nil {
		t.Fatal(err)
	}
	ex, _ := g.NewExample(sense)
	pos, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)
	msa, _, _ := g.EnsureMSA(c, &StemInfo{POS: pos})
	sense.MSA = msa

	pair := newRelationType(t, g, "Antonym", MappingType{ShapePair, TargetEntry})
	ref, err := g.NewLexReference(pair, []Object{a, c})
	if err != nil {
		t.Fatal(err)
	}
	er, _ := g.NewEntryRef(b, ComplexFormRef)
	er.Components = []Object{a, c}
	er.Primary = []Object{c}

	g.DeleteEntry(c)

	for _, id := range []uuid.UUID{c.GUID(), sense.GUID(), ex.GUID(), msa.GUID()} {
		if _, ok := g.Lookup(id); ok {
			t.Errorf("object %s survived deletion", id)
		}
		if !g.IsDeleted(id) {
			t.Errorf("guid %s not recorded as deleted", id)
		}
	}
	if len(g.Entries()) != 2 {
		t.Errorf("entries = %d, want 2", len(g.Entries()))
	}
	if len(er.Components) != 1 || er.Components[0] != a || len(er.Primary) != 0 {
		t.Errorf("entry ref not scrubbed: %v / %v", er.Components, er.Primary)
	}
	empty := g.EmptyReferences()
	if len(empty) != 1 || empty[0] != ref {
		t.Fatalf("EmptyReferences = %v, want the broken pair", empty)
	}
	g.DeleteReference(ref)
	if len(g.References()) != 0 {
		t.Error("reference not removed")
	}
}

func TestUnreferencedMSAs(t *testing.T) {
	g := NewGraph()
	e := newEntry(t, g, "a")
	s, _ := g.NewSense(e, uuid.Nil)
	noun, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)
	verb, _ := g.NewPossibility(ListPartsOfSpeech, uuid.Nil, nil)
	used, _, _ := g.EnsureMSA(e, &StemInfo{POS: noun})
	unused, _, _ := g.EnsureMSA(e, &StemInfo{POS: verb})
	s.MSA = used

	got := g.UnreferencedMSAs()
	if len(got) != 1 || got[0] != unused {
		t.Fatalf("UnreferencedMSAs = %v, want [unused]", got)
	}
	g.DeleteMSA(unused)
	if len(e.MSAs) != 1 {
		t.Errorf("MSAs = %d, want 1", len(e.MSAs))
	}
}

func TestStripMarkers(t *testing.T) {
	tests := []struct {
		in       string
		bare     string
		morphTyp string
	}{
		{"ka-", "ka", MorphPrefix},
		{"-ni", "ni", MorphSuffix},
		{"-um-", "um", MorphInfix},
		{"=la", "la", MorphEnclitic},
		{"se=", "se", MorphProclitic},
		{"=a=", "a", MorphSimulfix},
		{"~H~", "H", MorphSuprafix},
		{"*bu", "bu", MorphBoundRoot},
		{"mbuzi", "mbuzi", MorphStem},
		{"kick the bucket", "kick the bucket", MorphPhrase},
		{"-", "-", MorphStem},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bare, mt := StripMarkers(tt.in)
			if bare != tt.bare || mt != tt.morphTyp {
				t.Errorf("StripMarkers(%q) = %q, %q; want %q, %q", tt.in, bare, mt, tt.bare, tt.morphTyp)
			}
		})
	}
}

func TestAddTrimMarkers(t *testing.T) {
	g := NewGraph()
	pfx := g.MorphType(MorphPrefix)
	if got := AddMarkers("ka", pfx); got != "ka-" {
		t.Errorf("AddMarkers = %q, want ka-", got)
	}
	if got := TrimMarkers("ka-", pfx); got != "ka" {
		t.Errorf("TrimMarkers = %q, want ka", got)
	}
	if got := TrimMarkers("ka", pfx); got != "ka" {
		t.Errorf("TrimMarkers(bare) = %q, want ka", got)
	}
}

func TestCustomFields(t *testing.T) {
	g := NewGraph()
	f, err := g.DeclareCustomField(&CustomField{Class: ClassEntry, Label: "Plural", Type: CustomMultiUnicode})
	if err != nil {
		t.Fatal(err)
	}
	again, err := g.DeclareCustomField(&CustomField{Class: ClassEntry, Label: "Plural", Type: CustomMultiUnicode})
	if err != nil || again != f {
		t.Errorf("redeclare = %v, %v; want existing", again, err)
	}
	if _, err := g.DeclareCustomField(&CustomField{Class: ClassEntry, Label: "Plural", Type: CustomInteger}); err == nil {
		t.Error("type change accepted")
	}

	e := newEntry(t, g, "a")
	e.SetCustom("Plural", CustomValue{Text: text.NewMulti("seh", "ma-a")})
	e.SetCustom("Count", CustomValue{Int: 3})
	if labels := e.CustomLabels(); len(labels) != 2 || labels[0] != "Plural" {
		t.Errorf("CustomLabels = %v", labels)
	}
	e.SetCustom("Count", CustomValue{})
	if _, ok := e.Custom("Count"); ok {
		t.Error("empty value not removed")
	}
}

func TestReparentRejectsCycle(t *testing.T) {
	g := NewGraph()
	a, _ := g.NewPossibility(ListSemanticDomains, uuid.Nil, nil)
	b, _ := g.NewPossibility(ListSemanticDomains, uuid.Nil, a)
	if err := g.Reparent(a, b); err == nil {
		t.Error("cycle accepted")
	}
	if err := g.Reparent(b, nil); err != nil {
		t.Fatal(err)
	}
	if len(a.Children) != 0 || len(g.List(ListSemanticDomains).Items) != 2 {
		t.Error("reparent to top level failed")
	}
}
