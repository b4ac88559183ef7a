package lift

import (
	"strings"
	"testing"
	"time"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
)

const sampleLIFT = `<?xml version="1.0" encoding="UTF-8"?>
<lift producer="test" version="0.13">
  <header>
    <ranges>
      <range id="grammatical-info" href="file://sample.lift-ranges"/>
    </ranges>
    <fields>
      <field tag="Plural">
        <form lang="en"><text>plural form</text></form>
        <form lang="qaa-x-spec"><text>Class=LexEntry; Type=MultiUnicode; WsSelector=kwsVern</text></form>
      </field>
    </fields>
  </header>
  <entry id="mbuzi_0ae89610-fc01-4bfd-a0d6-1125b7281dd1" guid="0ae89610-fc01-4bfd-a0d6-1125b7281dd1" dateCreated="2020-01-02T03:04:05Z" dateModified="2021-02-03T04:05:06Z" order="2">
    <lexical-unit><form lang="seh"><text>mbuzi</text></form></lexical-unit>
    <trait name="morph-type" value="stem"/>
    <pronunciation>
      <form lang="seh-fonipa"><text>mbuzi</text></form>
      <media href="mbuzi.wav"><label><form lang="en"><text>male</text></form></label></media>
    </pronunciation>
    <sense id="5b7a0a7c-7e7f-4b0e-9c48-3e1ab1f1e0a1" order="1">
      <grammatical-info value="Noun"><trait name="type" value="stem"/></grammatical-info>
      <gloss lang="en"><text>goat</text></gloss>
      <gloss lang="en"><text>kid</text></gloss>
      <definition><form lang="en"><text>a <span lang="la" class="emph">Capra</span> animal</text></form></definition>
      <example source="Txt 1">
        <form lang="seh"><text>Mbuzi ili.</text></form>
        <translation type="Free translation"><form lang="en"><text>A goat.</text></form></translation>
      </example>
      <relation type="Synonyms" ref="mbudzi_1be89610-fc01-4bfd-a0d6-1125b7281dd1"/>
      <reversal type="en"><form lang="en"><text>goat</text></form><main><form lang="en"><text>animal</text></form></main></reversal>
      <illustration href="goat.png"/>
      <subsense id="sub1"><gloss lang="en"><text>young goat</text></gloss></subsense>
      <trait name="semantic-domain-ddp4" value="1.6.1.1 Mammal"/>
    </sense>
    <field type="Plural"><form lang="seh"><text>mbuzi</text></form></field>
    <field type="Plural"><form lang="en"><text>goats</text></form></field>
    <relation type="_component-lexeme" ref="x_2ce89610-fc01-4bfd-a0d6-1125b7281dd1" order="0">
      <trait name="complex-form-type" value="Compound"/>
    </relation>
    <note type="grammar"><form lang="en"><text>irregular</text></form></note>
    <etymology type="borrowed" source="Swahili"><form lang="swh"><text>mbuzi</text></form><gloss lang="en"><text>goat</text></gloss></etymology>
    <frobnicate level="3">keep me</frobnicate>
  </entry>
  <entry id="gone" dateDeleted="2022-01-01T00:00:00Z"/>
  <mystery/>
</lift>`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sampleLIFT))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Producer != "test" || doc.Version != "0.13" {
		t.Errorf("producer/version = %q/%q", doc.Producer, doc.Version)
	}
	if len(doc.Header.Ranges) != 1 || doc.Header.Ranges[0].ID != "grammatical-info" {
		t.Errorf("header ranges = %+v", doc.Header.Ranges)
	}
	if len(doc.Header.Fields) != 1 || doc.Header.Fields[0].Spec == "" {
		t.Fatalf("header fields = %+v", doc.Header.Fields)
	}
	if got := doc.Header.Fields[0].Description.String("en"); got != "plural form" {
		t.Errorf("field description = %q", got)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(doc.Entries))
	}
	if len(doc.Residue) != 1 || !strings.Contains(doc.Residue[0], "mystery") {
		t.Errorf("document residue = %v", doc.Residue)
	}

	e := doc.Entries[0]
	if e.Order != 2 || e.LexicalUnit.String("seh") != "mbuzi" {
		t.Errorf("entry = order %d, lexical unit %q", e.Order, e.LexicalUnit.String("seh"))
	}
	if v, _ := e.TraitValue("morph-type"); v != "stem" {
		t.Errorf("morph-type trait = %q", v)
	}
	if len(e.Pronunciations) != 1 || len(e.Pronunciations[0].Media) != 1 ||
		e.Pronunciations[0].Media[0].Label.String("en") != "male" {
		t.Errorf("pronunciation = %+v", e.Pronunciations)
	}
	if len(e.Fields) != 1 {
		t.Fatalf("fields = %d, want the two Plural fields merged into one", len(e.Fields))
	}
	if e.Fields[0].Content.Len() != 2 {
		t.Errorf("merged field alternatives = %d, want 2", e.Fields[0].Content.Len())
	}
	if len(e.Relations) != 1 || e.Relations[0].Order != 0 {
		t.Errorf("entry relations = %+v", e.Relations)
	}
	if len(e.Notes) != 1 || e.Notes[0].Type != "grammar" {
		t.Errorf("notes = %+v", e.Notes)
	}
	if len(e.Etymologies) != 1 || e.Etymologies[0].Gloss.String("en") != "goat" {
		t.Errorf("etymology = %+v", e.Etymologies)
	}
	if len(e.Residue) != 1 || !strings.Contains(e.Residue[0], `<frobnicate level="3">keep me</frobnicate>`) {
		t.Errorf("entry residue = %v", e.Residue)
	}

	s := e.Senses[0]
	if s.GramInfo == nil || s.GramInfo.Value != "Noun" || s.GramInfo.TraitValue("type") != "stem" {
		t.Errorf("grammatical info = %+v", s.GramInfo)
	}
	if got := s.Gloss.String("en"); got != "goat; kid" {
		t.Errorf("gloss = %q, want joined glosses", got)
	}
	def, _ := s.Definition.Get("en")
	if len(def.Runs) != 3 || def.Runs[1].Lang != "la" || def.Runs[1].Style != "emph" {
		t.Errorf("definition runs = %+v", def.Runs)
	}
	if len(s.Examples) != 1 || s.Examples[0].Source != "Txt 1" || len(s.Examples[0].Translations) != 1 {
		t.Errorf("examples = %+v", s.Examples)
	}
	if len(s.Relations) != 1 || s.Relations[0].Order != -1 {
		t.Errorf("sense relations = %+v", s.Relations)
	}
	if len(s.Reversals) != 1 || s.Reversals[0].Main == nil || s.Reversals[0].Main.Form.String("en") != "animal" {
		t.Errorf("reversals = %+v", s.Reversals)
	}
	if len(s.Illustrations) != 1 || s.Illustrations[0].Href != "goat.png" {
		t.Errorf("illustrations = %+v", s.Illustrations)
	}
	if len(s.Subsenses) != 1 || s.Subsenses[0].Gloss.String("en") != "young goat" {
		t.Errorf("subsenses = %+v", s.Subsenses)
	}

	if doc.Entries[1].DateDeleted == "" {
		t.Error("dateDeleted not read")
	}
}

type recorder struct {
	*DocumentBuilder
	calls []string
}

func (r *recorder) BeginEntry(e *Entry) {
	r.calls = append(r.calls, "entry:"+e.ID)
	r.DocumentBuilder.BeginEntry(e)
}

func (r *recorder) BeginSense(e *Entry, s *Sense) {
	r.calls = append(r.calls, "sense:"+s.ID)
	r.DocumentBuilder.BeginSense(e, s)
}

func (r *recorder) BeginSubsense(p *Sense, s *Sense) {
	r.calls = append(r.calls, "subsense:"+s.ID)
	r.DocumentBuilder.BeginSubsense(p, s)
}

func (r *recorder) EndEntry(e *Entry) {
	r.calls = append(r.calls, "end:"+e.ID)
}

func TestParseCallbackOrder(t *testing.T) {
	rec := &recorder{DocumentBuilder: NewDocumentBuilder()}
	if err := Parse(strings.NewReader(sampleLIFT), rec); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"entry:mbuzi_0ae89610-fc01-4bfd-a0d6-1125b7281dd1",
		"sense:5b7a0a7c-7e7f-4b0e-9c48-3e1ab1f1e0a1",
		"subsense:sub1",
		"end:mbuzi_0ae89610-fc01-4bfd-a0d6-1125b7281dd1",
		"entry:gone",
		"end:gone",
	}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not well formed", `<lift><entry></lift>`},
		{"wrong root", `<dictionary/>`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error = %v, want a parse error", err)
			}
		})
	}
}

const sampleRanges = `<?xml version="1.0" encoding="UTF-8"?>
<lift-ranges>
  <range id="grammatical-info">
    <range-element id="Noun" guid="a8e41fd3-e343-4c7c-aa05-01ea3dd5cfb5">
      <label><form lang="en"><text>Noun</text></form></label>
      <abbrev><form lang="en"><text>n</text></form></abbrev>
    </range-element>
    <range-element id="Proper Noun" parent="Noun">
      <label><form lang="en"><text>Proper Noun</text></form></label>
      <trait name="catalog-source-id" value="ProperNoun"/>
    </range-element>
  </range>
  <range id="lexical-relation">
    <range-element id="Antonym">
      <field type="reverse-label"><form lang="en"><text>Antonym</text></form></field>
      <trait name="referenceType" value="1"/>
    </range-element>
  </range>
</lift-ranges>`

func TestParseRangesDocument(t *testing.T) {
	rng, err := ParseRangesDocument(strings.NewReader(sampleRanges))
	if err != nil {
		t.Fatal(err)
	}
	pos := rng.Range("grammatical-info")
	if pos == nil || len(pos.Elements) != 2 {
		t.Fatalf("grammatical-info = %+v", pos)
	}
	if pos.Elements[0].Abbrev.String("en") != "n" || pos.Elements[1].Parent != "Noun" {
		t.Errorf("elements = %+v %+v", pos.Elements[0], pos.Elements[1])
	}
	if v, _ := pos.Elements[1].TraitValue("catalog-source-id"); v != "ProperNoun" {
		t.Errorf("catalog id = %q", v)
	}
	rel := rng.Range("lexical-relation").Elements[0]
	if rel.Field("reverse-label") == nil {
		t.Error("reverse-label field missing")
	}
}

func TestGUIDFromID(t *testing.T) {
	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{"dog_0ae89610-fc01-4bfd-a0d6-1125b7281dd1", "0ae89610-fc01-4bfd-a0d6-1125b7281dd1", true},
		{"0ae89610-fc01-4bfd-a0d6-1125b7281dd1", "0ae89610-fc01-4bfd-a0d6-1125b7281dd1", true},
		{"dog0ae89610-fc01-4bfd-a0d6-1125b7281dd1", "", false},
		{"dog", "", false},
		{"dog_00000000-0000-0000-0000-000000000000", "", false},
	}
	for _, tt := range tests {
		got, ok := GUIDFromID(tt.id)
		if ok != tt.ok || (ok && got.String() != tt.want) {
			t.Errorf("GUIDFromID(%q) = %v, %v; want %v, %v", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"2020-01-02T03:04:05Z", "2020-01-02T03:04:05", "2020-01-02T05:04:05+02:00"} {
		got, err := ParseDate(s)
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v", s, got, err)
		}
	}
	if d, err := ParseDate("2020-01-02"); err != nil || d.Day() != 2 {
		t.Errorf("ParseDate(date only) = %v, %v", d, err)
	}
	if _, err := ParseDate("yesterday"); err == nil {
		t.Error("ParseDate(yesterday) should fail")
	}
	if got := FormatDate(want); got != "2020-01-02T03:04:05Z" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestRangeTable(t *testing.T) {
	rt := NewRangeTable()
	tests := []struct {
		name string
		want lexicon.ListID
	}{
		{"semantic-domain-ddp4", lexicon.ListSemanticDomains},
		{"semantic-domain", lexicon.ListSemanticDomains},
		{"Anthro-Code", lexicon.ListAnthroCodes},
		{"complex-form-type", lexicon.ListComplexFormTypes},
		{"publishin", lexicon.ListPublications},
	}
	for _, tt := range tests {
		got, ok := rt.List(tt.name)
		if !ok || got != tt.want {
			t.Errorf("List(%q) = %q, %v; want %q", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := rt.List("no-such-range"); ok {
		t.Error("unknown range accepted")
	}
	if !rt.IsLegacy("semantic-domain") || rt.IsLegacy("semantic-domain-ddp4") {
		t.Error("IsLegacy misclassifies")
	}
	if rt.RangeID(lexicon.ListSemanticDomains) != "semantic-domain-ddp4" {
		t.Error("RangeID should be canonical")
	}
}
