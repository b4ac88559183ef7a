package lexicon

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/text"
)

// ListID names a possibility list. Standard lists use their canonical LIFT
// range id.
type ListID string

// Standard possibility lists.
const (
	ListPartsOfSpeech    ListID = "grammatical-info"
	ListMorphTypes       ListID = "morph-type"
	ListSemanticDomains  ListID = "semantic-domain-ddp4"
	ListAnthroCodes      ListID = "anthro-code"
	ListDomainTypes      ListID = "domain-type"
	ListUsageTypes       ListID = "usage-type"
	ListSenseTypes       ListID = "sense-type"
	ListStatus           ListID = "status"
	ListLocations        ListID = "location"
	ListTranslationTypes ListID = "translation-type"
	ListLexicalRelations ListID = "lexical-relation"
	ListComplexFormTypes ListID = "complex-form-types"
	ListVariantTypes     ListID = "variant-types"
	ListExceptionFeature ListID = "exception-feature"
	ListInflectionClass  ListID = "inflection-class"
	ListInflectionSlot   ListID = "inflection-slot"
	ListPublications     ListID = "do-not-publish-in"
)

// StandardLists are created by NewGraph, in export order.
var StandardLists = []ListID{
	ListPartsOfSpeech,
	ListMorphTypes,
	ListSemanticDomains,
	ListAnthroCodes,
	ListDomainTypes,
	ListUsageTypes,
	ListSenseTypes,
	ListStatus,
	ListLocations,
	ListTranslationTypes,
	ListLexicalRelations,
	ListComplexFormTypes,
	ListVariantTypes,
	ListExceptionFeature,
	ListInflectionClass,
	ListInflectionSlot,
	ListPublications,
}

// IsStandard reports whether id is one of the standard lists.
func (id ListID) IsStandard() bool {
	for _, s := range StandardLists {
		if s == id {
			return true
		}
	}
	return false
}

// List is a hierarchical catalog of possibilities.
type List struct {
	ID    ListID
	Items []*Possibility
	// Custom is set for lists that exist only to back a custom field.
	Custom bool
}

// Walk visits every item depth-first in hierarchy order. Returning false
// stops the walk.
func (l *List) Walk(fn func(*Possibility) bool) {
	var walk func([]*Possibility) bool
	walk = func(ps []*Possibility) bool {
		for _, p := range ps {
			if !fn(p) || !walk(p.Children) {
				return false
			}
		}
		return true
	}
	walk(l.Items)
}

// All returns every item depth-first.
func (l *List) All() []*Possibility {
	var out []*Possibility
	l.Walk(func(p *Possibility) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Len returns the number of items at every level.
func (l *List) Len() int {
	n := 0
	l.Walk(func(*Possibility) bool { n++; return true })
	return n
}

// Possibility is one item of a list.
type Possibility struct {
	base

	List        ListID
	Name        text.Multi
	Abbrev      text.Multi
	Description text.Multi
	Parent      *Possibility
	Children    []*Possibility
	CatalogID   string

	// Relation is set for lexical-relation and entry-ref types.
	Relation *RelationTypeInfo
	// Markers is set for morph types.
	Markers *MorphMarkers
}

func (*Possibility) Kind() Kind { return KindPossibility }

// Label returns the best name of the possibility, falling back to its
// abbreviation.
func (p *Possibility) Label(prefs ...string) string {
	if s := p.Name.Best(prefs...); s != "" {
		return s
	}
	return p.Abbrev.Best(prefs...)
}

// RelationTypeInfo holds what a lexical-relation type adds to a possibility.
type RelationTypeInfo struct {
	ReverseName   text.Multi
	ReverseAbbrev text.Multi
	Mapping       MappingType
}

// List returns the list with the given id, creating an empty custom list when
// it does not exist.
func (g *Graph) List(id ListID) *List {
	if l, ok := g.lists[id]; ok {
		return l
	}
	l := &List{ID: id, Custom: !id.IsStandard()}
	g.lists[id] = l
	g.listOrder = append(g.listOrder, id)
	return l
}

// HasList reports whether the list exists.
func (g *Graph) HasList(id ListID) bool {
	_, ok := g.lists[id]
	return ok
}

// Lists returns every list in creation order.
func (g *Graph) Lists() []*List {
	out := make([]*List, len(g.listOrder))
	for i, id := range g.listOrder {
		out[i] = g.lists[id]
	}
	return out
}

// NewPossibility creates an item in list under parent (nil for top level).
// A nil id requests a fresh guid.
func (g *Graph) NewPossibility(list ListID, id uuid.UUID, parent *Possibility) (*Possibility, error) {
	if parent != nil && parent.List != list {
		return nil, errors.NewValidation("parent", fmt.Sprintf("parent belongs to list %s, not %s", parent.List, list))
	}
	id, err := g.guidOrNew(id)
	if err != nil {
		return nil, err
	}
	p := &Possibility{base: base{guid: id}, List: list, Parent: parent}
	if err := g.Register(p); err != nil {
		return nil, err
	}
	if parent != nil {
		parent.Children = append(parent.Children, p)
	} else {
		l := g.List(list)
		l.Items = append(l.Items, p)
	}
	return p, nil
}

// Possibility returns the list item with the given guid.
func (g *Graph) Possibility(id uuid.UUID) (*Possibility, bool) {
	p, ok := g.objects[id].(*Possibility)
	return p, ok
}

// Reparent moves p under parent within its list.
func (g *Graph) Reparent(p, parent *Possibility) error {
	if parent == p.Parent {
		return nil
	}
	for a := parent; a != nil; a = a.Parent {
		if a == p {
			return errors.NewValidation("parent", "would create a cycle")
		}
	}
	if parent != nil && parent.List != p.List {
		return errors.NewValidation("parent", "parent belongs to another list")
	}
	if p.Parent != nil {
		p.Parent.Children = removeItem(p.Parent.Children, p)
	} else {
		l := g.List(p.List)
		l.Items = removeItem(l.Items, p)
	}
	p.Parent = parent
	if parent != nil {
		parent.Children = append(parent.Children, p)
	} else {
		l := g.List(p.List)
		l.Items = append(l.Items, p)
	}
	return nil
}

func removeItem[T comparable](s []T, v T) []T {
	for i, x := range s {
		if x == v {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// Shape is the structural form of a lexical relation.
type Shape int

// Relation shapes.
const (
	ShapeCollection Shape = iota
	ShapePair
	ShapeAsymmetricPair
	ShapeTree
	ShapeSequence
)

var shapeNames = [...]string{"collection", "pair", "asymmetric-pair", "tree", "sequence"}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// Target is the kind of object a lexical relation links.
type Target int

// Relation targets.
const (
	TargetSense Target = iota
	TargetEntry
	TargetEntryOrSense
)

var targetNames = [...]string{"sense", "entry", "entry-or-sense"}

func (t Target) String() string {
	if t >= 0 && int(t) < len(targetNames) {
		return targetNames[t]
	}
	return "unknown"
}

// MappingType is the shape and target of a lexical-relation type.
type MappingType struct {
	Shape  Shape
	Target Target
}

// mappingCodes lists mapping types by FLEx code: collection, pair, tree and
// sequence for senses, entries and entries-or-senses, then the asymmetric
// pairs.
var mappingCodes = [...]MappingType{
	{ShapeCollection, TargetSense}, {ShapePair, TargetSense}, {ShapeTree, TargetSense}, {ShapeSequence, TargetSense},
	{ShapeCollection, TargetEntry}, {ShapePair, TargetEntry}, {ShapeTree, TargetEntry}, {ShapeSequence, TargetEntry},
	{ShapeCollection, TargetEntryOrSense}, {ShapePair, TargetEntryOrSense}, {ShapeTree, TargetEntryOrSense}, {ShapeSequence, TargetEntryOrSense},
	{ShapeAsymmetricPair, TargetSense}, {ShapeAsymmetricPair, TargetEntry}, {ShapeAsymmetricPair, TargetEntryOrSense},
}

// Code returns the FLEx numeric mapping code (0..14), or -1 for a shape or
// target FLEx has no code for.
func (m MappingType) Code() int {
	for i, c := range mappingCodes {
		if c == m {
			return i
		}
	}
	return -1
}

// MappingFromCode decodes a FLEx numeric mapping code.
func MappingFromCode(code int) (MappingType, error) {
	if code < 0 || code >= len(mappingCodes) {
		return MappingType{}, errors.NewValidation("referenceType", fmt.Sprintf("mapping code %d out of range", code))
	}
	return mappingCodes[code], nil
}

func (m MappingType) String() string {
	return m.Target.String() + "-" + m.Shape.String()
}

// IsPair reports whether the shape is a two-member pair.
func (m MappingType) IsPair() bool {
	return m.Shape == ShapePair || m.Shape == ShapeAsymmetricPair
}

// Directed reports whether members play different roles, so that the reverse
// label names the relation seen from the other side.
func (m MappingType) Directed() bool {
	return m.Shape == ShapeAsymmetricPair || m.Shape == ShapeTree
}

// Accepts reports whether obj may be a member of a relation of this type.
func (m MappingType) Accepts(obj Object) bool {
	switch m.Target {
	case TargetSense:
		return obj.Kind() == KindSense
	case TargetEntry:
		return obj.Kind() == KindEntry
	default:
		return obj.Kind() == KindSense || obj.Kind() == KindEntry
	}
}
