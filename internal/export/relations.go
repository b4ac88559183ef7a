package export

import (
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// indexRelations turns every lexical reference into the relation records
// its members carry, so that importing the result rebuilds the same
// reference:
//
//   - collections and symmetric pairs: every member points at every other
//     member under the forward name;
//   - asymmetric pairs: the first member uses the forward name, the second
//     the reverse name;
//   - trees: the root points at each child under the forward name, and each
//     child back at the root under the reverse name;
//   - sequences: the first member points at the others with their position
//     as order.
func (x *Exporter) indexRelations() {
	x.relations = make(map[lexicon.Object][]*lift.Relation)
	for _, r := range x.graph.References() {
		if r.Type == nil || len(r.Targets) < 2 {
			continue
		}
		fwd := x.label(r.Type)
		var rev string
		if info := r.Type.Relation; info != nil {
			rev = info.ReverseName.Best(x.opts.Locale)
			if rev == "" {
				rev = info.ReverseAbbrev.Best(x.opts.Locale)
			}
		}
		created, modified := formatDate(r)
		frags := residue.Fragments(r)
		add := func(owner lexicon.Object, name string, target lexicon.Object, order int) {
			x.relations[owner] = append(x.relations[owner], &lift.Relation{
				Type:  name,
				Ref:   x.objectID(target),
				Order: order,
				Extensible: lift.Extensible{
					DateCreated:  created,
					DateModified: modified,
					Residue:      frags,
				},
			})
		}

		ts := r.Targets
		switch r.Mapping().Shape {
		case lexicon.ShapeAsymmetricPair:
			add(ts[0], fwd, ts[1], -1)
			if rev != "" {
				add(ts[1], rev, ts[0], -1)
			}
		case lexicon.ShapeTree:
			for _, child := range ts[1:] {
				add(ts[0], fwd, child, -1)
				if rev != "" {
					add(child, rev, ts[0], -1)
				}
			}
		case lexicon.ShapeSequence:
			for i, t := range ts[1:] {
				add(ts[0], fwd, t, i+1)
			}
		default:
			for i, a := range ts {
				for j, b := range ts {
					if i != j {
						add(a, fwd, b, -1)
					}
				}
			}
		}
	}
}

// writeEntryRef writes a complex-form or variant reference as one
// _component-lexeme relation per component. Every record carries the
// types and dates so that the records group back into one reference.
func (x *Exporter) writeEntryRef(w *lift.Writer, ref *lexicon.EntryRef) {
	if len(ref.Components) == 0 {
		return
	}
	created, modified := residue.Dates(ref)
	var typeTraits []*lift.Trait
	if ref.RefType == lexicon.VariantRef {
		for _, l := range x.labels(ref.VariantTypes) {
			typeTraits = append(typeTraits, &lift.Trait{Name: lift.TraitVariantType, Value: l})
		}
		if len(typeTraits) == 0 {
			typeTraits = append(typeTraits, &lift.Trait{Name: lift.TraitVariantType})
		}
	} else {
		for _, l := range x.labels(ref.ComplexFormTypes) {
			typeTraits = append(typeTraits, &lift.Trait{Name: lift.TraitComplexFormType, Value: l})
		}
	}

	for i, c := range ref.Components {
		rel := &lift.Relation{
			Type:  lift.RelationComponentLexeme,
			Ref:   x.objectID(c),
			Order: i,
			Extensible: lift.Extensible{
				DateCreated:  created,
				DateModified: modified,
			},
		}
		rel.Traits = append(rel.Traits, typeTraits...)
		if ref.IsPrimary(c) {
			rel.Traits = append(rel.Traits, &lift.Trait{Name: lift.TraitIsPrimary, Value: "true"})
		}
		if i == 0 {
			if ref.HideMinorEntry {
				rel.Traits = append(rel.Traits, &lift.Trait{Name: lift.TraitHideMinorEntry, Value: "1"})
			}
			if !ref.Summary.IsEmpty() {
				rel.Fields = append(rel.Fields, &lift.Field{Type: lift.FieldSummary, Content: ref.Summary})
			}
			rel.Residue = residue.Fragments(ref)
		}
		w.Relation(rel)
	}
}
