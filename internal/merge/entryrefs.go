package merge

import (
	"context"
	"slices"
	"strings"

	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// refKey groups the relation records of one entry that describe the same
// entry reference.
type refKey struct {
	kind     lexicon.EntryRefType
	types    string
	created  string
	modified string
}

func entryRefKind(r *lift.Relation) lexicon.EntryRefType {
	if _, ok := r.TraitValue(lift.TraitVariantType); ok || r.Type == lift.RelationBaseForm {
		return lexicon.VariantRef
	}
	return lexicon.ComplexFormRef
}

func keyOf(r *lift.Relation) refKey {
	k := refKey{kind: entryRefKind(r), created: r.DateCreated, modified: r.DateModified}
	name := lift.TraitComplexFormType
	if k.kind == lexicon.VariantRef {
		name = lift.TraitVariantType
	}
	types := r.TraitValues(name)
	slices.Sort(types)
	k.types = strings.Join(types, "\x00")
	return k
}

// resolveEntryRefs builds the complex-form and variant references of every
// entry. Consecutive records with the same kind, types and dates form one
// reference; an order that does not increase starts a new one.
func (s *Session) resolveEntryRefs(ctx context.Context) error {
	var owners []*lexicon.Entry
	byOwner := make(map[*lexicon.Entry][]*pendingEntryRef)
	for _, p := range s.entryRefs {
		if _, seen := byOwner[p.owner]; !seen {
			owners = append(owners, p.owner)
		}
		byOwner[p.owner] = append(byOwner[p.owner], p)
	}
	for i, e := range owners {
		s.sink.Progress(i+1, len(owners), "entry references")
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.live(e) {
			continue
		}
		var run []*pendingEntryRef
		var key refKey
		for _, p := range byOwner[e] {
			k := keyOf(p.rel)
			if len(run) > 0 && (k != key || outOfOrder(run[len(run)-1].rel, p.rel)) {
				if err := s.applyRun(e, run); err != nil {
					return err
				}
				run = nil
			}
			key = k
			run = append(run, p)
		}
		if len(run) > 0 {
			if err := s.applyRun(e, run); err != nil {
				return err
			}
		}
	}
	s.entryRefs = nil
	return nil
}

func outOfOrder(prev, next *lift.Relation) bool {
	return next.Order >= 0 && prev.Order >= 0 && next.Order <= prev.Order
}

// applyRun turns one run of records into an entry reference on e, merging
// into an existing reference of the same kind and components.
func (s *Session) applyRun(e *lexicon.Entry, run []*pendingEntryRef) error {
	first := run[0].rel
	kind := entryRefKind(first)
	var components, primary []lexicon.Object
	for _, p := range run {
		target, ok := s.lookup(p.rel.Ref)
		if !ok {
			s.unresolved(e, p.rel)
			continue
		}
		if target == e || ownerEntry(target) == e {
			s.rejectRelation(&pendingRelation{owner: e, rel: p.rel}, lexicon.MappingType{Target: lexicon.TargetEntryOrSense})
			continue
		}
		if slices.Contains(components, target) {
			continue
		}
		components = append(components, target)
		if v, _ := p.rel.TraitValue(lift.TraitIsPrimary); parseBool(v) {
			primary = append(primary, target)
		}
	}
	if len(components) == 0 {
		return nil
	}
	if len(primary) == 0 && (first.Type == lift.RelationMain || first.Type == lift.RelationBaseForm) {
		primary = components[:1]
	}

	ref := s.findEntryRef(e, kind, components)
	if ref == nil {
		created, err := s.graph.NewEntryRef(e, kind)
		if err != nil {
			return err
		}
		ref = created
		ref.Components = components
	}
	for _, c := range primary {
		if !ref.IsPrimary(c) {
			ref.Primary = append(ref.Primary, c)
		}
	}
	if kind == lexicon.VariantRef {
		ref.VariantTypes = s.mergeRefs(ref.VariantTypes, s.listItems(e, lexicon.ListVariantTypes, first.TraitValues(lift.TraitVariantType)))
	} else {
		ref.ComplexFormTypes = s.mergeRefs(ref.ComplexFormTypes, s.listItems(e, lexicon.ListComplexFormTypes, first.TraitValues(lift.TraitComplexFormType)))
	}

	for _, p := range run {
		for _, t := range p.rel.Traits {
			switch t.Name {
			case lift.TraitHideMinorEntry:
				if hide := parseBool(t.Value); hide || s.opts.Policy.overwrites() {
					ref.HideMinorEntry = hide
				}
			case lift.TraitIsPrimary, lift.TraitVariantType, lift.TraitComplexFormType:
			default:
				s.keepTrait(ref, t)
			}
		}
		for _, f := range p.rel.Fields {
			if f.Type == lift.FieldSummary {
				ref.Summary = s.mergeText(ref, f.Type, ref.Summary, f.Content)
				continue
			}
			s.keepField(ref, f)
		}
		if !p.rel.Usage.IsEmpty() {
			rel := p.rel
			residue.Attach(ref, lift.Fragment(func(w *lift.Writer) { w.Multi("usage", rel.Usage) }))
		}
		residue.Attach(ref, p.rel.Residue...)
	}
	s.applyResidueDates(ref, &first.Extensible)
	return nil
}

// findEntryRef returns the reference of e with the given kind and exactly
// the given components.
func (s *Session) findEntryRef(e *lexicon.Entry, kind lexicon.EntryRefType, components []lexicon.Object) *lexicon.EntryRef {
	for _, r := range e.EntryRefs {
		if r.RefType != kind || len(r.Components) != len(components) {
			continue
		}
		if !slices.ContainsFunc(components, func(c lexicon.Object) bool { return !r.HasComponent(c) }) {
			return r
		}
	}
	return nil
}
