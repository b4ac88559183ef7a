package lexicon

import (
	"maps"
	"slices"
)

// DeleteEntry removes e and every object it owns from the graph, and drops
// the deleted entry and senses from lexical references, entry references and
// other entries' links. The guids of all removed objects are remembered as
// deleted.
func (g *Graph) DeleteEntry(e *Entry) {
	if cur, ok := g.objects[e.GUID()]; !ok || cur != e {
		return
	}
	removed := make(map[Object]bool)
	removed[e] = true

	if e.LexemeForm != nil {
		g.forget(e.LexemeForm)
	}
	for _, a := range e.AlternateForms {
		g.forget(a)
	}
	for _, p := range e.Pronunciations {
		g.forget(p)
	}
	if e.Etymology != nil {
		g.forget(e.Etymology)
	}
	for _, r := range e.EntryRefs {
		g.forget(r)
	}
	for _, m := range e.MSAs {
		g.forget(m)
	}
	for _, s := range e.AllSenses() {
		removed[s] = true
		g.forgetSenseContent(s)
		g.forget(s)
	}
	g.forget(e)
	g.entries = removeItem(g.entries, e)

	g.scrubTargets(removed)
}

func (g *Graph) forgetSenseContent(s *Sense) {
	for _, ex := range s.Examples {
		for _, tr := range ex.Translations {
			g.forget(tr)
		}
		g.forget(ex)
	}
	for _, p := range s.Pictures {
		g.forget(p)
	}
}

// DeleteSense removes s and its subsenses from their owner.
func (g *Graph) DeleteSense(s *Sense) {
	removed := make(map[Object]bool)
	var walk func(*Sense)
	walk = func(x *Sense) {
		removed[x] = true
		g.forgetSenseContent(x)
		for _, sub := range x.Subsenses {
			walk(sub)
		}
		g.forget(x)
	}
	walk(s)
	switch o := s.owner.(type) {
	case *Entry:
		o.Senses = removeItem(o.Senses, s)
	case *Sense:
		o.Subsenses = removeItem(o.Subsenses, s)
	}
	g.scrubTargets(removed)
}

// scrubTargets drops removed objects from every reference that points at them.
func (g *Graph) scrubTargets(removed map[Object]bool) {
	for _, r := range g.references {
		kept := r.Targets[:0]
		for _, t := range r.Targets {
			if !removed[t] {
				kept = append(kept, t)
			}
		}
		r.Targets = kept
	}
	for _, e := range g.entries {
		for _, er := range e.EntryRefs {
			er.Components = dropRemoved(er.Components, removed)
			er.Primary = dropRemoved(er.Primary, removed)
		}
	}
}

func dropRemoved(objs []Object, removed map[Object]bool) []Object {
	kept := objs[:0]
	for _, o := range objs {
		if !removed[o] {
			kept = append(kept, o)
		}
	}
	return kept
}

// DeleteReference removes a lexical reference.
func (g *Graph) DeleteReference(r *LexReference) {
	g.forget(r)
	g.references = removeItem(g.references, r)
}

// DeleteEntryRef removes an entry reference from its owner.
func (g *Graph) DeleteEntryRef(r *EntryRef) {
	g.forget(r)
	if r.owner != nil {
		r.owner.EntryRefs = removeItem(r.owner.EntryRefs, r)
	}
}

// DeleteMSA removes an MSA from its owner. Senses still pointing at it lose
// their grammatical info.
func (g *Graph) DeleteMSA(m *MSA) {
	g.forget(m)
	if m.owner == nil {
		return
	}
	m.owner.MSAs = removeItem(m.owner.MSAs, m)
	for _, s := range m.owner.AllSenses() {
		if s.MSA == m {
			s.MSA = nil
		}
	}
}

// DeleteReversal removes a reversal entry with no children.
func (g *Graph) DeleteReversal(r *ReversalEntry) {
	g.forget(r)
	if r.Parent != nil {
		r.Parent.Children = removeItem(r.Parent.Children, r)
		return
	}
	if idx := g.reversals[r.Index]; idx != nil {
		idx.Entries = removeItem(idx.Entries, r)
	}
}

// EmptyReferences returns lexical references left with fewer than two
// targets, or a pair with anything other than two.
func (g *Graph) EmptyReferences() []*LexReference {
	var out []*LexReference
	for _, r := range g.references {
		if checkArity(r.Mapping(), len(r.Targets)) != nil {
			out = append(out, r)
		}
	}
	return out
}

// EmptyEntryRefs returns entry references with no remaining components.
func (g *Graph) EmptyEntryRefs() []*EntryRef {
	var out []*EntryRef
	for _, e := range g.entries {
		for _, r := range e.EntryRefs {
			if len(r.Components) == 0 {
				out = append(out, r)
			}
		}
	}
	return out
}

// UnreferencedMSAs returns MSAs that no sense of their entry uses.
func (g *Graph) UnreferencedMSAs() []*MSA {
	var out []*MSA
	for _, e := range g.entries {
		if len(e.MSAs) == 0 {
			continue
		}
		used := make(map[*MSA]bool)
		for _, s := range e.AllSenses() {
			if s.MSA != nil {
				used[s.MSA] = true
			}
		}
		for _, m := range e.MSAs {
			if !used[m] {
				out = append(out, m)
			}
		}
	}
	return out
}

// OrphanReversals returns reversal entries that no live sense links to and
// that have no children.
func (g *Graph) OrphanReversals() []*ReversalEntry {
	linked := make(map[*ReversalEntry]bool)
	for _, e := range g.entries {
		for _, s := range e.AllSenses() {
			for _, r := range s.ReversalEntries {
				linked[r] = true
			}
		}
	}
	var out []*ReversalEntry
	var walk func([]*ReversalEntry)
	walk = func(rs []*ReversalEntry) {
		for _, r := range rs {
			walk(r.Children)
			if len(r.Children) == 0 && !linked[r] {
				out = append(out, r)
			}
		}
	}
	for _, lang := range slices.Sorted(maps.Keys(g.reversals)) {
		walk(g.reversals[lang].Entries)
	}
	return out
}
