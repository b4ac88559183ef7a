package export

import (
	"strconv"

	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
)

func (x *Exporter) writeList(w *lift.Writer, l *lexicon.List) {
	w.Open("range", "id", x.ranges.RangeID(l.ID))
	l.Walk(func(p *lexicon.Possibility) bool {
		x.writeElement(w, p)
		return true
	})
	w.Close("range")
}

func (x *Exporter) writeElement(w *lift.Writer, p *lexicon.Possibility) {
	var parent string
	if p.Parent != nil {
		parent = x.elementIDs[p.Parent]
	}
	w.Open("range-element", "id", x.elementIDs[p], "parent", parent, "guid", p.GUID().String())
	w.Multi("label", p.Name)
	w.Multi("abbrev", p.Abbrev)
	w.Multi("description", p.Description)
	if info := p.Relation; info != nil {
		if !info.ReverseName.IsEmpty() {
			w.Field(&lift.Field{Type: lift.FieldReverseLabel, Content: info.ReverseName})
		}
		if !info.ReverseAbbrev.IsEmpty() {
			w.Field(&lift.Field{Type: lift.FieldReverseAbbrev, Content: info.ReverseAbbrev})
		}
		if code := info.Mapping.Code(); code >= 0 {
			w.TraitValue(lift.TraitReferenceType, strconv.Itoa(code))
		}
	}
	if m := p.Markers; m != nil {
		w.Trait(&lift.Trait{Name: lift.TraitLeadingSymbol, Value: m.Leading})
		w.Trait(&lift.Trait{Name: lift.TraitTrailingSymbol, Value: m.Trailing})
	}
	w.TraitValue(lift.TraitCatalogSourceID, p.CatalogID)
	writeResidue(w, p)
	w.Close("range-element")
}

// writeFeatureRanges writes the feature system as the three feature
// ranges. Values name their feature through the parent attribute.
func (x *Exporter) writeFeatureRanges(w *lift.Writer) {
	fs := x.graph.Features
	if len(fs.Features) == 0 && len(fs.Types) == 0 {
		return
	}
	if len(fs.Features) > 0 {
		w.Open("range", "id", lift.RangeFeatureDefinitions)
		for _, f := range fs.Features {
			w.Open("range-element", "id", f.ID, "guid", f.GUID().String())
			w.Multi("label", f.Name)
			w.Multi("abbrev", f.Abbrev)
			w.TraitValue(lift.TraitFeatureKind, f.Variant.String())
			if f.Type != nil {
				w.TraitValue(lift.TraitFeatureType, f.Type.ID)
			}
			writeResidue(w, f)
			w.Close("range-element")
		}
		w.Close("range")

		w.Open("range", "id", lift.RangeFeatureValues)
		for _, f := range fs.Features {
			for _, v := range f.Values {
				w.Open("range-element", "id", v.ID, "parent", f.ID, "guid", v.GUID().String())
				w.Multi("label", v.Name)
				w.Multi("abbrev", v.Abbrev)
				writeResidue(w, v)
				w.Close("range-element")
			}
		}
		w.Close("range")
	}
	if len(fs.Types) > 0 {
		w.Open("range", "id", lift.RangeFeatureTypes)
		for _, t := range fs.Types {
			w.Open("range-element", "id", t.ID, "guid", t.GUID().String())
			w.Multi("label", t.Name)
			w.Multi("abbrev", t.Abbrev)
			for _, f := range t.Features {
				w.TraitValue(lift.TraitFeature, f.ID)
			}
			writeResidue(w, t)
			w.Close("range-element")
		}
		w.Close("range")
	}
}
