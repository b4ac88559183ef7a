package merge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/progress"
	"github.com/sillsdev/liftbridge/internal/residue"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func testOptions(p Policy) Options {
	o := DefaultOptions()
	o.Policy = p
	o.Now = func() time.Time { return fixedNow }
	return o
}

func liftDoc(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<lift producer="test" version="0.13">` + strings.Join(entries, "\n") + `</lift>`
}

func runMerge(t *testing.T, g *lexicon.Graph, src string, opts Options) *Report {
	t.Helper()
	return runMergeRanges(t, g, src, "", opts)
}

func runMergeRanges(t *testing.T, g *lexicon.Graph, src, ranges string, opts Options) *Report {
	t.Helper()
	doc, err := lift.ParseDocument(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	var rs *lift.Ranges
	if ranges != "" {
		rs, err = lift.ParseRangesDocument(strings.NewReader(ranges))
		if err != nil {
			t.Fatalf("ParseRangesDocument: %v", err)
		}
	}
	rep, err := Merge(context.Background(), g, doc, rs, opts)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	return rep
}

func entryByForm(t *testing.T, g *lexicon.Graph, form string) *lexicon.Entry {
	t.Helper()
	for _, e := range g.Entries() {
		if e.LexemeForm != nil && e.LexemeForm.Form.String("seh") == form {
			return e
		}
	}
	t.Fatalf("no entry with lexeme form %q", form)
	return nil
}

func simpleEntry(id, form, gloss string) string {
	return `<entry id="` + id + `">
  <lexical-unit><form lang="seh"><text>` + form + `</text></form></lexical-unit>
  <sense id="` + id + `-s1"><gloss lang="en"><text>` + gloss + `</text></gloss></sense>
</entry>`
}

func relatedEntry(id, form, relType, ref string) string {
	return `<entry id="` + id + `">
  <lexical-unit><form lang="seh"><text>` + form + `</text></form></lexical-unit>
  <relation type="` + relType + `" ref="` + ref + `"/>
</entry>`
}

func TestMergePolicies(t *testing.T) {
	first := liftDoc(simpleEntry("mbuzi", "mbuzi", "goat"))
	second := liftDoc(simpleEntry("mbuzi", "mbuzi", "kid"))

	tests := []struct {
		name      string
		policy    Policy
		wantGloss string
		wantSense int
	}{
		{"keep old", KeepOld, "goat", 1},
		{"keep new", KeepNew, "kid", 1},
		{"keep only new", KeepOnlyNew, "kid", 1},
		{"keep both", KeepBoth, "goat", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := lexicon.NewGraph()
			runMerge(t, g, first, testOptions(KeepOld))
			rep := runMerge(t, g, second, testOptions(tt.policy))

			if n := len(g.Entries()); n != 1 {
				t.Fatalf("entries = %d, want 1", n)
			}
			e := g.Entries()[0]
			if len(e.Senses) != tt.wantSense {
				t.Fatalf("senses = %d, want %d", len(e.Senses), tt.wantSense)
			}
			if got := e.Senses[0].Gloss.String("en"); got != tt.wantGloss {
				t.Errorf("gloss = %q, want %q", got, tt.wantGloss)
			}
			if rep.EntriesMerged != 1 || rep.EntriesAdded != 0 {
				t.Errorf("report = %s", rep.Summary())
			}
			if tt.policy == KeepBoth && len(rep.Duplications) != 1 {
				t.Errorf("duplications = %v, want one", rep.Duplications)
			}
		})
	}
}

func TestMergeKeepOldIsIdempotent(t *testing.T) {
	src := liftDoc(
		relatedEntry("a", "kala", "Synonyms", "b"),
		simpleEntry("b", "kale", "old"),
	)
	g := lexicon.NewGraph()
	runMerge(t, g, src, testOptions(KeepOld))
	count := g.Count()

	rep := runMerge(t, g, src, testOptions(KeepOld))
	if g.Count() != count {
		t.Errorf("object count changed from %d to %d", count, g.Count())
	}
	if rep.EntriesAdded != 0 || rep.EntriesMerged != 2 {
		t.Errorf("report = %s", rep.Summary())
	}
	if n := len(g.References()); n != 1 {
		t.Errorf("references = %d, want 1", n)
	}
	if n := len(entryByForm(t, g, "kale").Senses); n != 1 {
		t.Errorf("senses = %d, want 1", n)
	}
}

func TestReimportKeepsResidueOnce(t *testing.T) {
	src := liftDoc(`<entry id="a">
  <lexical-unit><form lang="seh"><text>kala</text></form></lexical-unit>
  <trait name="mystery" value="x"/>
  <x-flag></x-flag>
</entry>`)
	g := lexicon.NewGraph()
	for range 3 {
		runMerge(t, g, src, testOptions(KeepOld))
	}
	got := residue.Fragments(entryByForm(t, g, "kala"))
	want := []string{`<trait name="mystery" value="x"/>`, `<x-flag/>`}
	if len(got) != len(want) {
		t.Fatalf("fragments after three imports = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %s, want %s", i, got[i], want[i])
		}
	}
}

const notesHeader = `<header><fields>
  <field tag="Notes2"><form lang="qaa-x-spec"><text>Class=LexEntry; Type=MultiUnicode</text></form></field>
</fields></header>`

func TestCustomFieldKeepsItsTraits(t *testing.T) {
	src := liftDoc(notesHeader, `<entry id="a">
  <lexical-unit><form lang="seh"><text>kala</text></form></lexical-unit>
  <field type="Notes2" dateModified="2023-02-03T04:05:06Z">
    <form lang="en"><text>hello</text></form>
    <trait name="checked" value="yes"/>
    <x-extra>more</x-extra>
  </field>
</entry>`)
	g := lexicon.NewGraph()
	rep := runMerge(t, g, src, testOptions(KeepOld))
	runMerge(t, g, src, testOptions(KeepOld))

	e := entryByForm(t, g, "kala")
	v, ok := e.Custom("Notes2")
	if !ok {
		t.Fatal("custom field Notes2 not set")
	}
	if got := v.Text.String("en"); got != "hello" {
		t.Errorf("custom text = %q, want hello", got)
	}
	want := []string{`<trait name="checked" value="yes"/>`, `<x-extra>more</x-extra>`}
	if len(v.Extra) != len(want) || v.Extra[0] != want[0] || v.Extra[1] != want[1] {
		t.Errorf("custom extras = %q, want %q", v.Extra, want)
	}
	if v.Modified != "2023-02-03T04:05:06Z" {
		t.Errorf("custom modified = %q", v.Modified)
	}
	if rep.Count(KindUnknownField) != 1 {
		t.Errorf("unknown-field diagnostics = %d, want 1", rep.Count(KindUnknownField))
	}
}

func TestMergeKeepBothDuplicatesEntry(t *testing.T) {
	const guid = "0ae89610-fc01-4bfd-a0d6-1125b7281dd1"
	entry := func(form string) string {
		return `<entry id="x_` + guid + `" guid="` + guid + `">
  <lexical-unit><form lang="seh"><text>` + form + `</text></form></lexical-unit>
</entry>`
	}
	g := lexicon.NewGraph()
	runMerge(t, g, liftDoc(entry("mbuzi")), testOptions(KeepOld))
	rep := runMerge(t, g, liftDoc(entry("mbudzi")), testOptions(KeepBoth))

	if n := len(g.Entries()); n != 2 {
		t.Fatalf("entries = %d, want 2", n)
	}
	if len(rep.Duplications) != 1 {
		t.Fatalf("duplications = %v, want one", rep.Duplications)
	}
	if rep.Duplications[0].Original != guid {
		t.Errorf("original = %s, want %s", rep.Duplications[0].Original, guid)
	}
	if rep.Count(KindDataConflict) == 0 {
		t.Error("expected a data-conflict diagnostic")
	}
	entryByForm(t, g, "mbuzi")
	entryByForm(t, g, "mbudzi")

	// A second import of the same data adds no further sibling.
	runMerge(t, g, liftDoc(entry("mbuzi")), testOptions(KeepBoth))
	if n := len(g.Entries()); n != 2 {
		t.Errorf("entries after re-import = %d, want 2", n)
	}
}

func TestRelationsIgnoreDocumentOrder(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
	}{
		{"target after owner", []string{relatedEntry("a", "kala", "Synonyms", "b"), simpleEntry("b", "kale", "x")}},
		{"target before owner", []string{simpleEntry("b", "kale", "x"), relatedEntry("a", "kala", "Synonyms", "b")}},
		{"both directions", []string{relatedEntry("a", "kala", "Synonyms", "b"), relatedEntry("b", "kale", "Synonyms", "a")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := lexicon.NewGraph()
			rep := runMerge(t, g, liftDoc(tt.entries...), testOptions(KeepOld))
			refs := g.References()
			if len(refs) != 1 {
				t.Fatalf("references = %d, want 1", len(refs))
			}
			a, b := entryByForm(t, g, "kala"), entryByForm(t, g, "kale")
			if !refs[0].Contains(a) || !refs[0].Contains(b) || len(refs[0].Targets) != 2 {
				t.Errorf("targets = %v", refs[0].Targets)
			}
			if len(rep.Unresolved) != 0 {
				t.Errorf("unresolved = %v", rep.Unresolved)
			}
		})
	}
}

func TestCollectionsJoinTransitively(t *testing.T) {
	src := liftDoc(
		relatedEntry("a", "a", "Synonyms", "b"),
		relatedEntry("b", "b", "Synonyms", "c"),
		simpleEntry("c", "c", "x"),
	)
	g := lexicon.NewGraph()
	runMerge(t, g, src, testOptions(KeepOld))
	refs := g.References()
	if len(refs) != 1 || len(refs[0].Targets) != 3 {
		t.Fatalf("references = %v, want one with three targets", refs)
	}
}

const treeRanges = `<?xml version="1.0" encoding="UTF-8"?>
<lift-ranges>
  <range id="lexical-relation">
    <range-element id="Part">
      <label><form lang="en"><text>Part</text></form></label>
      <field type="reverse-label"><form lang="en"><text>Whole</text></form></field>
      <trait name="referenceType" value="10"/>
    </range-element>
  </range>
</lift-ranges>`

func TestTreeRelationsMergeIntoOneTree(t *testing.T) {
	src := liftDoc(
		`<entry id="body">
  <lexical-unit><form lang="seh"><text>thupi</text></form></lexical-unit>
  <relation type="Part" ref="arm"/>
  <relation type="Part" ref="leg"/>
</entry>`,
		relatedEntry("arm", "dzanja", "Whole", "body"),
		relatedEntry("leg", "mwendo", "Whole", "body"),
	)
	g := lexicon.NewGraph()
	rep := runMergeRanges(t, g, src, treeRanges, testOptions(KeepOld))

	refs := g.References()
	if len(refs) != 1 {
		t.Fatalf("references = %d, want 1", len(refs))
	}
	body := entryByForm(t, g, "thupi")
	if refs[0].Root() != body {
		t.Errorf("root = %v, want %v", refs[0].Root(), body)
	}
	if len(refs[0].Targets) != 3 {
		t.Errorf("targets = %d, want 3", len(refs[0].Targets))
	}
	if len(rep.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v", rep.Diagnostics)
	}

	// Importing again neither duplicates nor grows the tree.
	runMergeRanges(t, g, src, treeRanges, testOptions(KeepOld))
	if refs := g.References(); len(refs) != 1 || len(refs[0].Targets) != 3 {
		t.Errorf("after re-import: %d references", len(refs))
	}
}

func TestUnresolvedRelationKeptAsResidue(t *testing.T) {
	g := lexicon.NewGraph()
	rep := runMerge(t, g, liftDoc(relatedEntry("a", "kala", "Synonyms", "missing")), testOptions(KeepOld))

	if len(rep.Unresolved) != 1 || rep.Unresolved[0].Target != "missing" {
		t.Fatalf("unresolved = %v", rep.Unresolved)
	}
	if rep.Count(KindUnresolved) != 1 {
		t.Errorf("unresolved diagnostics = %d, want 1", rep.Count(KindUnresolved))
	}
	e := entryByForm(t, g, "kala")
	if got := residue.Replay(e); !strings.Contains(got, `ref="missing"`) {
		t.Errorf("residue = %q, want the relation", got)
	}
	if len(g.References()) != 0 {
		t.Error("no reference should be created")
	}
}

func TestComplexFormComponents(t *testing.T) {
	src := liftDoc(
		simpleEntry("black", "black", "black"),
		simpleEntry("bird", "bird", "bird"),
		`<entry id="blackbird">
  <lexical-unit><form lang="seh"><text>blackbird</text></form></lexical-unit>
  <relation type="_component-lexeme" ref="black"><trait name="complex-form-type" value="Compound"/><trait name="is-primary" value="true"/></relation>
  <relation type="_component-lexeme" ref="bird"><trait name="complex-form-type" value="Compound"/></relation>
</entry>`,
	)
	g := lexicon.NewGraph()
	runMerge(t, g, src, testOptions(KeepOld))
	runMerge(t, g, src, testOptions(KeepOld))

	e := entryByForm(t, g, "blackbird")
	if len(e.EntryRefs) != 1 {
		t.Fatalf("entry refs = %d, want 1", len(e.EntryRefs))
	}
	r := e.EntryRefs[0]
	if r.RefType != lexicon.ComplexFormRef || len(r.Components) != 2 {
		t.Errorf("ref = %+v", r)
	}
	if !r.IsPrimary(entryByForm(t, g, "black")) || r.IsPrimary(entryByForm(t, g, "bird")) {
		t.Errorf("primary = %v", r.Primary)
	}
	if len(r.ComplexFormTypes) != 1 || r.ComplexFormTypes[0].Label("en") != "Compound" {
		t.Errorf("types = %v", r.ComplexFormTypes)
	}
	if len(g.References()) != 0 {
		t.Error("component links are not lexical relations")
	}
}

func TestKeepOnlyNewSweepsOrphans(t *testing.T) {
	seed := liftDoc(
		`<entry id="a">
  <lexical-unit><form lang="seh"><text>a</text></form></lexical-unit>
  <relation type="Synonyms" ref="b"/>
  <relation type="Synonyms" ref="c"/>
</entry>`,
		simpleEntry("b", "b", "x"),
		simpleEntry("c", "c", "y"),
	)

	tests := []struct {
		name        string
		doc         string
		wantEntries int
		wantTargets int // 0 means the reference is gone
	}{
		{"two of three kept", liftDoc(relatedEntry("a", "a", "Synonyms", "b"), simpleEntry("b", "b", "x")), 2, 2},
		{"one of three kept", liftDoc(simpleEntry("a", "a", "z")), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := lexicon.NewGraph()
			runMerge(t, g, seed, testOptions(KeepOld))
			if refs := g.References(); len(refs) != 1 || len(refs[0].Targets) != 3 {
				t.Fatalf("seed references = %v", refs)
			}

			rep := runMerge(t, g, tt.doc, testOptions(KeepOnlyNew))
			if n := len(g.Entries()); n != tt.wantEntries {
				t.Fatalf("entries = %d, want %d", n, tt.wantEntries)
			}
			if rep.EntriesDeleted != 3-tt.wantEntries {
				t.Errorf("deleted = %d, want %d", rep.EntriesDeleted, 3-tt.wantEntries)
			}
			refs := g.References()
			switch {
			case tt.wantTargets == 0 && len(refs) != 0:
				t.Errorf("references = %v, want none", refs)
			case tt.wantTargets > 0 && (len(refs) != 1 || len(refs[0].Targets) != tt.wantTargets):
				t.Errorf("references = %v, want one with %d targets", refs, tt.wantTargets)
			}
		})
	}
}

func TestDateDeleted(t *testing.T) {
	const guid = "1be89610-fc01-4bfd-a0d6-1125b7281dd1"
	seed := liftDoc(`<entry id="k_` + guid + `" guid="` + guid + `" dateCreated="2020-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
  <lexical-unit><form lang="seh"><text>kala</text></form></lexical-unit>
</entry>`)
	deletion := liftDoc(`<entry id="k_` + guid + `" guid="` + guid + `" dateDeleted="2022-01-01T00:00:00Z"/>`)

	tests := []struct {
		name    string
		policy  Policy
		deleted bool
	}{
		{"keep new deletes", KeepNew, true},
		{"keep old keeps a later edit", KeepOld, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := lexicon.NewGraph()
			runMerge(t, g, seed, testOptions(KeepOld))
			rep := runMerge(t, g, deletion, testOptions(tt.policy))
			if got := len(g.Entries()) == 0; got != tt.deleted {
				t.Fatalf("deleted = %v, want %v", got, tt.deleted)
			}
			if tt.deleted && rep.EntriesDeleted != 1 {
				t.Errorf("EntriesDeleted = %d", rep.EntriesDeleted)
			}
			if !tt.deleted && rep.Count(KindDataConflict) != 1 {
				t.Errorf("data conflicts = %d, want 1", rep.Count(KindDataConflict))
			}
		})
	}
}

func TestTrustModTimesSkipsUnchangedEntries(t *testing.T) {
	src := liftDoc(`<entry id="a" dateModified="2021-02-03T04:05:06Z">
  <lexical-unit><form lang="seh"><text>kala</text></form></lexical-unit>
</entry>`)
	g := lexicon.NewGraph()
	runMerge(t, g, src, testOptions(KeepOld))

	opts := testOptions(KeepNew)
	opts.TrustModTimes = true
	rep := runMerge(t, g, src, opts)
	if rep.EntriesSkipped != 1 || rep.EntriesMerged != 0 {
		t.Errorf("report = %s", rep.Summary())
	}
	guid := g.Entries()[0].GUID().String()
	if st, ok := rep.State(guid); !ok || st != NotSeen {
		t.Errorf("state = %v, %v", st, ok)
	}
}

const featureRanges = `<?xml version="1.0" encoding="UTF-8"?>
<lift-ranges>
  <range id="feature-values">
    <range-element id="sg" parent="number"><label><form lang="en"><text>singular</text></form></label></range-element>
  </range>
</lift-ranges>`

func TestFeatureFixupResolvesPendingGramInfo(t *testing.T) {
	src := liftDoc(`<entry id="k">
  <lexical-unit><form lang="seh"><text>kitabu</text></form></lexical-unit>
  <sense id="k-s1">
    <grammatical-info value="Noun"><trait name="features" value="[number:sg]"/></grammatical-info>
  </sense>
</entry>`)
	g := lexicon.NewGraph()
	rep := runMergeRanges(t, g, src, featureRanges, testOptions(KeepOld))

	if g.Features.Symbol("number", "sg") == nil {
		t.Fatal("number:sg was not declared")
	}
	var created bool
	for _, li := range rep.ListItemsCreated {
		if li.List == lift.RangeFeatureDefinitions && li.Label == "number" {
			created = true
		}
	}
	if !created {
		t.Errorf("list items = %v, want the missing feature", rep.ListItemsCreated)
	}
	sn := g.Entries()[0].Senses[0]
	if sn.MSA == nil {
		t.Fatal("sense has no MSA")
	}
	stem, ok := sn.MSA.Info.(*lexicon.StemInfo)
	if !ok {
		t.Fatalf("info = %T, want stem", sn.MSA.Info)
	}
	if stem.Features == nil || len(stem.Features.Specs) != 1 {
		t.Errorf("features = %+v", stem.Features)
	}
	if rep.Count(KindParse) != 0 {
		t.Errorf("parse diagnostics = %v", rep.Diagnostics)
	}
}

func TestCapacityTruncation(t *testing.T) {
	opts := testOptions(KeepOld)
	opts.MaxTextLength = 6
	g := lexicon.NewGraph()
	rep := runMerge(t, g, liftDoc(simpleEntry("n", "ndovu", "elephant")), opts)

	if got := g.Entries()[0].Senses[0].Gloss.String("en"); got != "elepha" {
		t.Errorf("gloss = %q, want %q", got, "elepha")
	}
	if len(rep.Truncations) != 1 || rep.Truncations[0].Original != "elephant" || rep.Truncations[0].Field != "gloss" {
		t.Errorf("truncations = %v", rep.Truncations)
	}
	if rep.Count(KindCapacity) != 1 {
		t.Errorf("capacity diagnostics = %d, want 1", rep.Count(KindCapacity))
	}
}

func TestMergeReportsProgress(t *testing.T) {
	rec := &progress.Recorder{}
	doc, err := lift.ParseDocument(strings.NewReader(liftDoc(simpleEntry("a", "a", "x"), simpleEntry("b", "b", "y"))))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	rep, err := Merge(context.Background(), lexicon.NewGraph(), doc, nil, testOptions(KeepOld), WithSink(rec))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rep.EntriesAdded != 2 {
		t.Errorf("added = %d", rep.EntriesAdded)
	}
	if _, ok := rec.Last(); !ok {
		t.Error("no progress recorded")
	}
}

func TestMergeStopsOnCancel(t *testing.T) {
	doc, err := lift.ParseDocument(strings.NewReader(liftDoc(simpleEntry("a", "a", "x"))))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Merge(ctx, lexicon.NewGraph(), doc, nil, testOptions(KeepOld)); err == nil {
		t.Error("expected the cancellation error")
	}
}
