package export

import (
	"strconv"

	"github.com/sillsdev/liftbridge/core/featstruct"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/residue"
)

func formatDate(d lexicon.Dated) (created, modified string) {
	if c := d.Created(); !c.IsZero() {
		created = lift.FormatDate(c)
	}
	if m := d.Modified(); !m.IsZero() {
		modified = lift.FormatDate(m)
	}
	return created, modified
}

func (x *Exporter) writeEntry(w *lift.Writer, e *lexicon.Entry) {
	created, modified := formatDate(e)
	var order string
	if e.HomographNumber > 0 {
		order = strconv.Itoa(e.HomographNumber)
	}
	w.Open("entry",
		"id", x.objectID(e),
		"guid", e.GUID().String(),
		"order", order,
		"dateCreated", created,
		"dateModified", modified)

	if lf := e.LexemeForm; lf != nil {
		w.Multi("lexical-unit", markForms(lf.Form, lf.MorphType))
		if lf.MorphType != nil {
			w.TraitValue(lift.TraitMorphType, morphTypeName(lf.MorphType))
		}
	}
	w.Multi("citation", e.CitationForm)
	writeNotes(w, e.Notes)
	for _, a := range e.AlternateForms {
		x.writeVariant(w, a)
	}
	if et := e.Etymology; et != nil {
		w.Etymology(&lift.Etymology{
			Type:       et.Type,
			Source:     et.Source,
			Form:       et.Form,
			Gloss:      et.Gloss,
			Extensible: lift.Extensible{Residue: residue.Fragments(et)},
		})
	}
	for _, ref := range e.EntryRefs {
		x.writeEntryRef(w, ref)
	}
	for _, p := range e.Pronunciations {
		x.writePronunciation(w, p)
	}
	for _, sn := range e.Senses {
		x.writeSense(w, sn, "sense")
	}
	for _, r := range x.relations[e] {
		w.Relation(r)
	}
	for _, f := range []struct {
		typ string
		m   text.Multi
	}{
		{lift.FieldLiteralMeaning, e.LiteralMeaning},
		{lift.FieldSummaryDefinition, e.SummaryDefinition},
		{lift.FieldImportResidue, e.ImportResidue},
	} {
		if !f.m.IsEmpty() {
			w.Field(&lift.Field{Type: f.typ, Content: f.m})
		}
	}
	if e.ExcludeAsHeadword {
		w.TraitValue(lift.TraitExcludeAsHeadword, "true")
	}
	for _, l := range x.labels(e.DoNotPublishIn) {
		w.TraitValue(lift.TraitDoNotPublishIn, l)
	}
	x.writeCustom(w, e)
	writeResidue(w, e)
	w.Close("entry")
}

// morphTypeName returns the English name of a morph type, which is how the
// fixed morph-type list is looked up on import.
func morphTypeName(p *lexicon.Possibility) string {
	if s := p.Name.String("en"); s != "" {
		return s
	}
	return p.Label()
}

// markForms decorates every alternative of m with the affix markers of its
// morph type.
func markForms(m text.Multi, mt *lexicon.Possibility) text.Multi {
	if mt == nil || mt.Markers == nil {
		return m
	}
	var out text.Multi
	for _, a := range m.Alts() {
		s := a.Value.Clone()
		if len(s.Runs) > 0 {
			s.Runs[0].Text = mt.Markers.Leading + s.Runs[0].Text
			last := len(s.Runs) - 1
			s.Runs[last].Text += mt.Markers.Trailing
		}
		out.Set(a.Lang, s)
	}
	return out
}

func (x *Exporter) writePronunciation(w *lift.Writer, p *lexicon.Pronunciation) {
	w.Open("pronunciation")
	w.Forms(p.Form)
	for _, m := range p.Media {
		href := x.placeMedia(mediaAudio, m.Href)
		if m.Label.IsEmpty() {
			w.Empty("media", "href", href)
			continue
		}
		w.Open("media", "href", href)
		w.Multi("label", m.Label)
		w.Close("media")
	}
	if !p.CVPattern.IsEmpty() {
		w.Field(&lift.Field{Type: lift.FieldCVPattern, Content: p.CVPattern})
	}
	if !p.Tone.IsEmpty() {
		w.Field(&lift.Field{Type: lift.FieldTone, Content: p.Tone})
	}
	w.TraitValue(lift.TraitLocation, x.label(p.Location))
	writeResidue(w, p)
	w.Close("pronunciation")
}

func (x *Exporter) writeVariant(w *lift.Writer, a *lexicon.Allomorph) {
	w.Open("variant", "ref", residue.OriginalID(a))
	w.Forms(markForms(a.Form, a.MorphType))
	if a.MorphType != nil {
		w.TraitValue(lift.TraitMorphType, morphTypeName(a.MorphType))
	}
	for _, env := range a.Environments {
		w.TraitValue(lift.TraitEnvironment, env.Representation)
	}
	x.writeCustom(w, a)
	writeResidue(w, a)
	w.Close("variant")
}

func (x *Exporter) writeSense(w *lift.Writer, sn *lexicon.Sense, element string) {
	created, modified := residue.Dates(sn)
	w.Open(element,
		"id", x.objectID(sn),
		"guid", sn.GUID().String(),
		"dateCreated", created,
		"dateModified", modified)
	if sn.MSA != nil {
		x.writeGramInfo(w, sn.MSA.Info)
	}
	w.Glosses(sn.Gloss)
	w.Multi("definition", sn.Definition)
	writeNotes(w, sn.Notes)
	for _, ex := range sn.Examples {
		x.writeExample(w, ex)
	}
	for _, r := range sn.ReversalEntries {
		x.writeReversal(w, r, "reversal")
	}
	for _, pic := range sn.Pictures {
		href := x.placeMedia(mediaPictures, pic.File)
		if pic.Caption.IsEmpty() {
			w.Empty("illustration", "href", href)
			continue
		}
		w.Open("illustration", "href", href)
		w.Multi("label", pic.Caption)
		w.Close("illustration")
	}
	for _, r := range x.relations[sn] {
		w.Relation(r)
	}
	if !sn.ScientificName.IsEmpty() {
		w.Field(&lift.Field{Type: lift.FieldScientificName, Content: sn.ScientificName})
	}
	for _, c := range []struct {
		list  lexicon.ListID
		items []*lexicon.Possibility
	}{
		{lexicon.ListSemanticDomains, sn.SemanticDomains},
		{lexicon.ListAnthroCodes, sn.AnthroCodes},
		{lexicon.ListDomainTypes, sn.DomainTypes},
		{lexicon.ListUsageTypes, sn.UsageTypes},
		{lexicon.ListPublications, sn.DoNotPublishIn},
	} {
		for _, l := range x.labels(c.items) {
			w.TraitValue(x.ranges.RangeID(c.list), l)
		}
	}
	w.TraitValue(x.ranges.RangeID(lexicon.ListSenseTypes), x.label(sn.SenseType))
	w.TraitValue(x.ranges.RangeID(lexicon.ListStatus), x.label(sn.Status))
	x.writeCustom(w, sn)
	writeResidue(w, sn)
	for _, sub := range sn.Subsenses {
		x.writeSense(w, sub, "subsense")
	}
	w.Close(element)
}

// writeGramInfo writes the grammatical-info element of an MSA. The value is
// the main part of speech; everything else is carried by traits.
func (x *Exporter) writeGramInfo(w *lift.Writer, gi lexicon.GramInfo) {
	if gi == nil {
		return
	}
	var traits []*lift.Trait
	add := func(name, value string) {
		if value != "" {
			traits = append(traits, &lift.Trait{Name: name, Value: value})
		}
	}
	addAll := func(name string, ps []*lexicon.Possibility) {
		for _, l := range x.labels(ps) {
			add(name, l)
		}
	}
	add(lift.TraitMSAType, gi.MSAType())
	switch v := gi.(type) {
	case *lexicon.StemInfo:
		add(lift.TraitInflectionClass, x.label(v.InflectionClass))
		add(lift.TraitFeatures, featstruct.Format(v.Features))
		addAll(lift.TraitExceptionFeature, v.ProdRestrict)
	case *lexicon.InflAffixInfo:
		addAll(lift.TraitSlot, v.Slots)
		add(lift.TraitFeatures, featstruct.Format(v.Features))
		addAll(lift.TraitExceptionFeature, v.ProdRestrict)
	case *lexicon.DerivAffixInfo:
		add(lift.TraitToPartOfSpeech, x.label(v.ToPOS))
		add(lift.TraitFromInflectionClass, x.label(v.FromInflectionClass))
		add(lift.TraitToInflectionClass, x.label(v.ToInflectionClass))
		add(lift.TraitFromFeatures, featstruct.Format(v.FromFeatures))
		add(lift.TraitToFeatures, featstruct.Format(v.ToFeatures))
		addAll(lift.TraitFromExceptionFeature, v.FromProdRestrict)
		addAll(lift.TraitToExceptionFeature, v.ToProdRestrict)
	case *lexicon.DerivStepInfo:
		add(lift.TraitInflectionClass, x.label(v.InflectionClass))
	}
	value := x.label(lexicon.MainPOS(gi))
	w.Open("grammatical-info", "value", value)
	for _, t := range traits {
		w.Trait(t)
	}
	w.Close("grammatical-info")
}

func (x *Exporter) writeExample(w *lift.Writer, ex *lexicon.Example) {
	w.Open("example", "source", ex.Reference)
	w.Forms(ex.Form)
	for _, tr := range ex.Translations {
		w.Open("translation", "type", x.label(tr.Type))
		w.Forms(tr.Form)
		writeResidue(w, tr)
		w.Close("translation")
	}
	writeNotes(w, ex.Notes)
	x.writeCustom(w, ex)
	writeResidue(w, ex)
	w.Close("example")
}

// writeReversal writes a reversal entry with its parents nested in <main>.
func (x *Exporter) writeReversal(w *lift.Writer, r *lexicon.ReversalEntry, element string) {
	w.Open(element, "type", r.Index)
	w.Forms(r.Form)
	if r.Parent != nil {
		x.writeReversal(w, r.Parent, "main")
	}
	if r.POS != nil {
		w.Empty("grammatical-info", "value", x.label(r.POS))
	}
	w.Close(element)
}
