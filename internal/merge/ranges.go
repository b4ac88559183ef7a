package merge

import (
	"strconv"

	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/residue"
)

var defaultMapping = lexicon.MappingType{Shape: lexicon.ShapeCollection, Target: lexicon.TargetEntryOrSense}

// rangeElementTraits are consumed by importRange; other traits on range
// elements are kept as residue.
var rangeElementTraits = map[string]bool{
	lift.TraitReferenceType:   true,
	lift.TraitLeadingSymbol:   true,
	lift.TraitTrailingSymbol:  true,
	lift.TraitCatalogSourceID: true,
}

// importRanges merges the lists of a ranges document. Ranges that are not
// standard lists become custom lists.
func (s *Session) importRanges(r *lift.Ranges) error {
	for _, rng := range r.Ranges {
		if lift.IsFeatureRange(rng.ID) {
			if err := s.importFeatureRange(rng); err != nil {
				return err
			}
			continue
		}
		list, ok := s.ranges.List(rng.ID)
		if !ok {
			list = s.customList(rng.ID)
		}
		if err := s.importRange(list, rng); err != nil {
			return err
		}
	}
	for _, frag := range r.Residue {
		s.diagnose(Diagnostic{Kind: KindUnknownField, Owner: "lift-ranges", Value: frag, Message: "unrecognised ranges element dropped"})
	}
	return nil
}

func (s *Session) importRange(list lexicon.ListID, rng *lift.Range) error {
	byID := make(map[string]*lexicon.Possibility)
	type orphan struct {
		item   *lexicon.Possibility
		parent string
	}
	var orphans []orphan
	for i, el := range rng.Elements {
		var parent *lexicon.Possibility
		if el.Parent != "" {
			parent = byID[el.Parent]
			if parent == nil {
				parent = s.lists.Find(list, el.Parent)
			}
		}
		p, _, err := s.lists.Ensure(list, el, parent, s.opts.Policy.overwrites())
		if err != nil {
			return err
		}
		if el.Parent != "" && parent == nil {
			orphans = append(orphans, orphan{p, el.Parent})
		}
		if el.ID != "" {
			byID[el.ID] = p
		}
		s.limitAbbrev(p)
		switch list {
		case lexicon.ListLexicalRelations:
			s.applyRelationType(p, el)
		case lexicon.ListMorphTypes:
			s.applyMarkers(p, el)
		}
		s.keepElementExtras(p, el)
		s.sink.Progress(i+1, len(rng.Elements), "range "+rng.ID)
	}
	for _, o := range orphans {
		parent := byID[o.parent]
		if parent == nil {
			parent = s.lists.Find(list, o.parent)
		}
		if parent == nil {
			s.diagnoseOn(o.item, KindUnresolved, "parent", o.parent, nil)
			continue
		}
		if err := s.graph.Reparent(o.item, parent); err != nil {
			s.diagnoseOn(o.item, KindInvalid, "parent", o.parent, err)
		}
	}
	return nil
}

// limitAbbrev truncates abbreviations longer than the configured limit.
func (s *Session) limitAbbrev(p *lexicon.Possibility) {
	limit := s.opts.MaxAbbrevLength
	if limit <= 0 {
		return
	}
	for _, a := range p.Abbrev.Alts() {
		if a.Value.Len() > limit {
			p.Abbrev.Set(a.Lang, s.truncate(p, "abbrev", a.Lang, a.Value, limit))
		}
	}
}

// applyRelationType reads the mapping and reverse labels of a
// lexical-relation type.
func (s *Session) applyRelationType(p *lexicon.Possibility, el *lift.RangeElement) {
	fresh := p.Relation == nil
	if fresh {
		p.Relation = &lexicon.RelationTypeInfo{Mapping: defaultMapping}
	}
	if v, ok := el.TraitValue(lift.TraitReferenceType); ok {
		code, err := strconv.Atoi(v)
		if err != nil {
			s.diagnoseOn(p, KindParse, lift.TraitReferenceType, v, err)
		} else if m, err := lexicon.MappingFromCode(code); err != nil {
			s.diagnoseOn(p, KindInvalid, lift.TraitReferenceType, v, err)
		} else if fresh || s.opts.Policy.overwrites() {
			p.Relation.Mapping = m
		}
	}
	if f := el.Field(lift.FieldReverseLabel); f != nil {
		p.Relation.ReverseName = s.mergeText(p, f.Type, p.Relation.ReverseName, f.Content)
	}
	if f := el.Field(lift.FieldReverseAbbrev); f != nil {
		p.Relation.ReverseAbbrev = s.mergeText(p, f.Type, p.Relation.ReverseAbbrev, f.Content)
	}
}

// applyMarkers reads the affix markers of a morph type.
func (s *Session) applyMarkers(p *lexicon.Possibility, el *lift.RangeElement) {
	leading, hasLeading := el.TraitValue(lift.TraitLeadingSymbol)
	trailing, hasTrailing := el.TraitValue(lift.TraitTrailingSymbol)
	if !hasLeading && !hasTrailing {
		return
	}
	if p.Markers == nil || s.opts.Policy.overwrites() {
		p.Markers = &lexicon.MorphMarkers{Leading: leading, Trailing: trailing}
	}
}

// keepElementExtras stores the fields and traits of a range element that
// have no property as residue on its item.
func (s *Session) keepElementExtras(p *lexicon.Possibility, el *lift.RangeElement) {
	var frags []string
	for _, f := range el.Fields {
		if f.Type == lift.FieldReverseLabel || f.Type == lift.FieldReverseAbbrev {
			continue
		}
		frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Field(f) }))
	}
	for _, t := range el.Traits {
		if rangeElementTraits[t.Name] {
			continue
		}
		frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Trait(t) }))
	}
	frags = append(frags, el.Residue...)
	residue.Attach(p, frags...)
}
