package lexicon

import (
	"fmt"

	"github.com/sillsdev/liftbridge/core/errors"
)

// LexReference is one lexical-relation set: a pair, collection, sequence or
// tree of entries and senses typed by a lexical-relation possibility.
// For trees the first target is the root.
type LexReference struct {
	base
	dates

	Type    *Possibility
	Targets []Object
}

func (*LexReference) Kind() Kind { return KindLexReference }

// Mapping returns the mapping type of the reference's relation type.
func (r *LexReference) Mapping() MappingType {
	if r.Type == nil || r.Type.Relation == nil {
		return MappingType{Shape: ShapeCollection, Target: TargetEntryOrSense}
	}
	return r.Type.Relation.Mapping
}

// Contains reports whether obj is a target.
func (r *LexReference) Contains(obj Object) bool {
	return r.IndexOf(obj) >= 0
}

// IndexOf returns the position of obj among the targets, or -1.
func (r *LexReference) IndexOf(obj Object) int {
	for i, t := range r.Targets {
		if t == obj {
			return i
		}
	}
	return -1
}

// Root returns the tree root, or nil for other shapes.
func (r *LexReference) Root() Object {
	if r.Mapping().Shape != ShapeTree || len(r.Targets) == 0 {
		return nil
	}
	return r.Targets[0]
}

// SameMembers reports whether r has exactly the given targets, in order for
// sequences and pairs, as a set otherwise. Trees also require the same root.
func (r *LexReference) SameMembers(targets []Object) bool {
	if len(r.Targets) != len(targets) {
		return false
	}
	switch r.Mapping().Shape {
	case ShapeSequence, ShapeAsymmetricPair:
		for i := range targets {
			if r.Targets[i] != targets[i] {
				return false
			}
		}
		return true
	case ShapeTree:
		if len(targets) > 0 && r.Targets[0] != targets[0] {
			return false
		}
	}
	for _, t := range targets {
		if !r.Contains(t) {
			return false
		}
	}
	return true
}

// NewLexReference creates a lexical reference of type typ linking targets.
// Pair types take exactly two targets; other shapes at least two. Every
// target must match the type's mapping target.
func (g *Graph) NewLexReference(typ *Possibility, targets []Object) (*LexReference, error) {
	if typ == nil || typ.Relation == nil {
		return nil, errors.NewValidation("type", "not a lexical-relation type")
	}
	m := typ.Relation.Mapping
	if err := checkArity(m, len(targets)); err != nil {
		return nil, err
	}
	seen := make(map[Object]bool, len(targets))
	for _, t := range targets {
		if !m.Accepts(t) {
			return nil, errors.NewValidation("targets", fmt.Sprintf("%s relation cannot link a %s", m, t.Kind()))
		}
		if seen[t] {
			return nil, errors.NewValidation("targets", "duplicate target "+t.GUID().String())
		}
		seen[t] = true
	}
	r := &LexReference{base: base{guid: g.NewGUID()}, Type: typ, Targets: append([]Object(nil), targets...)}
	if err := g.Register(r); err != nil {
		return nil, err
	}
	g.references = append(g.references, r)
	return r, nil
}

// AddTarget appends obj to a non-pair reference. Adding an existing target is
// a no-op.
func (g *Graph) AddTarget(r *LexReference, obj Object) error {
	m := r.Mapping()
	if m.IsPair() {
		return errors.NewValidation("targets", "pair relations have exactly two members")
	}
	if !m.Accepts(obj) {
		return errors.NewValidation("targets", fmt.Sprintf("%s relation cannot link a %s", m, obj.Kind()))
	}
	if r.Contains(obj) {
		return nil
	}
	r.Targets = append(r.Targets, obj)
	return nil
}

func checkArity(m MappingType, n int) error {
	if m.IsPair() && n != 2 {
		return &errors.ValidationError{Field: "targets", Value: fmt.Sprint(n), Message: fmt.Sprintf("%s relation needs exactly 2 members, got %d", m, n)}
	}
	if n < 2 {
		return &errors.ValidationError{Field: "targets", Value: fmt.Sprint(n), Message: fmt.Sprintf("%s relation needs at least 2 members, got %d", m, n)}
	}
	return nil
}

// ReferencesOfType returns the lexical references of the given type.
func (g *Graph) ReferencesOfType(typ *Possibility) []*LexReference {
	var out []*LexReference
	for _, r := range g.references {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}
