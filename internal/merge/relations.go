package merge

import (
	"context"
	"slices"
	"strings"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// pendingRelation is a lexical relation waiting for the relation pass.
type pendingRelation struct {
	owner lexicon.Object
	rel   *lift.Relation
	seq   int
}

// pendingEntryRef is a complex-form or variant link waiting for the
// entry-ref pass.
type pendingEntryRef struct {
	owner *lexicon.Entry
	rel   *lift.Relation
	seq   int
}

// isEntryRef reports whether a staged relation links a complex form or
// variant to its components rather than naming a lexical relation.
func isEntryRef(r *lift.Relation) bool {
	switch r.Type {
	case lift.RelationComponentLexeme, lift.RelationMain, lift.RelationBaseForm:
		return true
	}
	_, complexForm := r.TraitValue(lift.TraitComplexFormType)
	_, variant := r.TraitValue(lift.TraitVariantType)
	return complexForm || variant
}

// queueRelations defers the relations of owner until every entry exists.
func (s *Session) queueRelations(owner lexicon.Object, rels []*lift.Relation) {
	for _, r := range rels {
		if isEntryRef(r) {
			if e := ownerEntry(owner); e != nil {
				s.entryRefs = append(s.entryRefs, &pendingEntryRef{owner: e, rel: r, seq: len(s.entryRefs)})
			}
			continue
		}
		s.relations = append(s.relations, &pendingRelation{owner: owner, rel: r, seq: len(s.relations)})
	}
}

// lookup resolves a relation target: by the ids of this import, then by
// the guid inside the id, then by a LIFT id recorded on an earlier import.
func (s *Session) lookup(ref string) (lexicon.Object, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	if obj, ok := s.ids.Get(ref); ok && s.live(obj) {
		return obj, true
	}
	if g, ok := lift.GUIDFromID(ref); ok {
		if obj, found := s.graph.Lookup(g); found {
			switch obj.(type) {
			case *lexicon.Entry, *lexicon.Sense:
				return obj, true
			}
		}
	}
	if obj, ok := s.originals[ref]; ok && s.live(obj) {
		return obj, true
	}
	return nil, false
}

// unresolved keeps a relation whose target was not found as residue on its
// owner and reports it.
func (s *Session) unresolved(owner lexicon.Object, rel *lift.Relation) {
	if h, ok := owner.(lexicon.ResidueHolder); ok {
		residue.Attach(h, lift.Fragment(func(w *lift.Writer) { w.Relation(rel) }))
	}
	s.report.Unresolved = append(s.report.Unresolved, Unresolved{
		OwnerID: owner.GUID().String(),
		Type:    rel.Type,
		Target:  rel.Ref,
	})
	s.diagnoseOn(owner, KindUnresolved, rel.Type, rel.Ref,
		&errors.UnresolvedReferenceError{Relation: rel.Type, Target: rel.Ref})
}

// relationType returns the lexical-relation type named name and whether
// name is its reverse label. Unknown names create a collection type.
func (s *Session) relationType(owner lexicon.Object, name string) (*lexicon.Possibility, bool) {
	if p := s.lists.Find(lexicon.ListLexicalRelations, name); p != nil {
		ensureRelationInfo(p)
		return p, false
	}
	eq := text.SameText
	if s.opts.CaseInsensitiveLabels {
		eq = text.FoldEqual
	}
	for _, p := range s.graph.List(lexicon.ListLexicalRelations).All() {
		if p.Relation == nil {
			continue
		}
		for _, m := range []text.Multi{p.Relation.ReverseName, p.Relation.ReverseAbbrev} {
			for _, a := range m.Alts() {
				if eq(a.Value.String(), name) {
					return p, true
				}
			}
		}
	}
	p := s.listItem(owner, lexicon.ListLexicalRelations, name)
	if p != nil {
		ensureRelationInfo(p)
	}
	return p, false
}

func ensureRelationInfo(p *lexicon.Possibility) {
	if p.Relation == nil {
		p.Relation = &lexicon.RelationTypeInfo{Mapping: defaultMapping}
	}
}

// link is one resolved relation record.
type link struct {
	pr     *pendingRelation
	typ    *lexicon.Possibility
	target lexicon.Object
}

type groupKey struct {
	owner lexicon.Object
	typ   *lexicon.Possibility
}

// resolveRelations turns the queued relations into lexical references.
// Pairs are created as they come; sequences and trees are grouped by owner
// and type; collections are joined with a union-find per type. Tree
// members found only from the member side are added after every tree
// exists.
func (s *Session) resolveRelations(ctx context.Context) error {
	var (
		seqOrder  []groupKey
		sequences = make(map[groupKey][]link)
		treeOrder []groupKey
		trees     = make(map[groupKey][]link)
		remaining []link
		collTypes []*lexicon.Possibility
		unions    = make(map[*lexicon.Possibility]*unionFind[lexicon.Object])
		collLinks = make(map[*lexicon.Possibility][]link)
	)
	total := len(s.relations)
	for i, pr := range s.relations {
		s.sink.Progress(i+1, total, "relations")
		if err := ctx.Err(); err != nil {
			return err
		}
		typ, reversed := s.relationType(pr.owner, pr.rel.Type)
		if typ == nil {
			s.unresolved(pr.owner, pr.rel)
			continue
		}
		target, ok := s.lookup(pr.rel.Ref)
		if !ok {
			s.unresolved(pr.owner, pr.rel)
			continue
		}
		m := typ.Relation.Mapping
		if target == pr.owner || !m.Accepts(pr.owner) || !m.Accepts(target) {
			s.rejectRelation(pr, m)
			continue
		}
		l := link{pr: pr, typ: typ, target: target}
		switch m.Shape {
		case lexicon.ShapePair, lexicon.ShapeAsymmetricPair:
			members := []lexicon.Object{pr.owner, target}
			if reversed && m.Shape == lexicon.ShapeAsymmetricPair {
				members[0], members[1] = members[1], members[0]
			}
			s.ensureReference(typ, members, l)
		case lexicon.ShapeSequence:
			k := groupKey{pr.owner, typ}
			if _, seen := sequences[k]; !seen {
				seqOrder = append(seqOrder, k)
			}
			sequences[k] = append(sequences[k], l)
		case lexicon.ShapeTree:
			if reversed {
				remaining = append(remaining, l)
				continue
			}
			k := groupKey{pr.owner, typ}
			if _, seen := trees[k]; !seen {
				treeOrder = append(treeOrder, k)
			}
			trees[k] = append(trees[k], l)
		default:
			u := unions[typ]
			if u == nil {
				u = newUnionFind[lexicon.Object]()
				unions[typ] = u
				collTypes = append(collTypes, typ)
			}
			u.union(pr.owner, target)
			collLinks[typ] = append(collLinks[typ], l)
		}
	}

	for _, k := range seqOrder {
		s.ensureReference(k.typ, sequenceMembers(k.owner, sequences[k]), sequences[k]...)
	}
	for _, k := range treeOrder {
		members := []lexicon.Object{k.owner}
		for _, l := range trees[k] {
			if !slices.Contains(members, l.target) {
				members = append(members, l.target)
			}
		}
		s.mergeTree(k.typ, members, trees[k]...)
	}
	for _, l := range remaining {
		s.mergeTree(l.typ, []lexicon.Object{l.target, l.pr.owner}, l)
	}
	for _, typ := range collTypes {
		s.mergeCollections(typ, unions[typ], collLinks[typ])
	}
	s.relations = nil
	return nil
}

func (s *Session) rejectRelation(pr *pendingRelation, m lexicon.MappingType) {
	if h, ok := pr.owner.(lexicon.ResidueHolder); ok {
		residue.Attach(h, lift.Fragment(func(w *lift.Writer) { w.Relation(pr.rel) }))
	}
	s.diagnoseOn(pr.owner, KindInvalid, pr.rel.Type, pr.rel.Ref,
		errors.NewValidation("relation", "target does not fit a "+m.String()+" relation"))
}

// sequenceMembers orders a sequence from the order attributes of the
// owner's records. The owner takes the position no record names.
func sequenceMembers(owner lexicon.Object, links []link) []lexicon.Object {
	slots := make([]lexicon.Object, len(links)+1)
	var overflow []lexicon.Object
	for _, l := range links {
		o := l.pr.rel.Order
		if o >= 0 && o < len(slots) && slots[o] == nil && !slices.Contains(slots, l.target) {
			slots[o] = l.target
			continue
		}
		if !slices.Contains(slots, l.target) && !slices.Contains(overflow, l.target) {
			overflow = append(overflow, l.target)
		}
	}
	pending := append([]lexicon.Object{owner}, overflow...)
	for i := range slots {
		if slots[i] == nil && len(pending) > 0 {
			slots[i], pending = pending[0], pending[1:]
		}
	}
	members := slices.DeleteFunc(slots, func(o lexicon.Object) bool { return o == nil })
	return append(members, pending...)
}

// ensureReference creates a reference with exactly members unless an
// identical one of the same type exists.
func (s *Session) ensureReference(typ *lexicon.Possibility, members []lexicon.Object, links ...link) {
	for _, r := range s.graph.ReferencesOfType(typ) {
		if r.SameMembers(members) {
			s.decorateReference(r, links, false)
			return
		}
	}
	r, err := s.graph.NewLexReference(typ, members)
	if err != nil {
		s.diagnoseOn(links[0].pr.owner, KindInvalid, links[0].pr.rel.Type, links[0].pr.rel.Ref, err)
		return
	}
	s.decorateReference(r, links, true)
}

// mergeTree adds members[1:] to the tree of typ rooted at members[0],
// creating the tree when there is none.
func (s *Session) mergeTree(typ *lexicon.Possibility, members []lexicon.Object, links ...link) {
	root := members[0]
	for _, r := range s.graph.ReferencesOfType(typ) {
		if r.Root() != root {
			continue
		}
		for _, m := range members[1:] {
			if err := s.graph.AddTarget(r, m); err != nil {
				s.diagnoseOn(root, KindInvalid, typ.Label(), m.GUID().String(), err)
			}
		}
		s.decorateReference(r, links, false)
		return
	}
	s.ensureReference(typ, members, links...)
}

// mergeCollections turns each connected set of a collection type into one
// reference. A set sharing a member with an existing reference of the type
// is absorbed into it.
func (s *Session) mergeCollections(typ *lexicon.Possibility, u *unionFind[lexicon.Object], links []link) {
	for _, set := range u.sets() {
		var setLinks []link
		for _, l := range links {
			if slices.Contains(set, l.pr.owner) {
				setLinks = append(setLinks, l)
			}
		}
		var target *lexicon.LexReference
		for _, r := range s.graph.ReferencesOfType(typ) {
			if slices.ContainsFunc(set, r.Contains) {
				target = r
				break
			}
		}
		if target == nil {
			s.ensureReference(typ, set, setLinks...)
			continue
		}
		for _, m := range set {
			if err := s.graph.AddTarget(target, m); err != nil {
				s.diagnoseOn(m, KindInvalid, typ.Label(), m.GUID().String(), err)
			}
		}
		s.decorateReference(target, setLinks, false)
	}
}

// decorateReference copies dates and leftovers of the staged records onto
// r. Usage text has no property on a reference and is kept as residue.
func (s *Session) decorateReference(r *lexicon.LexReference, links []link, fresh bool) {
	for _, l := range links {
		rel := l.pr.rel
		s.applyDates(r, &rel.Extensible, fresh)
		fresh = false
		var frags []string
		if !rel.Usage.IsEmpty() {
			s.noteLocales(rel.Usage)
			frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Multi("usage", rel.Usage) }))
		}
		for _, f := range rel.Fields {
			frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Field(f) }))
		}
		for _, t := range rel.Traits {
			frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Trait(t) }))
		}
		for _, a := range rel.Annotations {
			frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Annotation(a) }))
		}
		frags = append(frags, rel.Residue...)
		residue.Attach(r, frags...)
	}
}
