// Package lexicon is the in-memory, GUID-addressable lexicon graph that LIFT
// documents are merged into and exported from.
//
// The graph owns every object through a guid index. Guids are unique across
// the whole graph, and a guid that has been deleted is remembered so that it
// is never registered again.
package lexicon

import (
	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/text"
)

// Kind identifies the class of a graph object.
type Kind int

// Object kinds.
const (
	KindEntry Kind = iota + 1
	KindSense
	KindExample
	KindTranslation
	KindPicture
	KindPronunciation
	KindAllomorph
	KindEtymology
	KindMSA
	KindLexReference
	KindEntryRef
	KindPossibility
	KindFeature
	KindSymbolValue
	KindFeatureType
	KindEnvironment
	KindReversalEntry
)

var kindNames = map[Kind]string{
	KindEntry:         "LexEntry",
	KindSense:         "LexSense",
	KindExample:       "LexExampleSentence",
	KindTranslation:   "CmTranslation",
	KindPicture:       "CmPicture",
	KindPronunciation: "LexPronunciation",
	KindAllomorph:     "MoForm",
	KindEtymology:     "LexEtymology",
	KindMSA:           "MoMorphSynAnalysis",
	KindLexReference:  "LexReference",
	KindEntryRef:      "LexEntryRef",
	KindPossibility:   "CmPossibility",
	KindFeature:       "FsFeatDefn",
	KindSymbolValue:   "FsSymFeatVal",
	KindFeatureType:   "FsFeatStrucType",
	KindEnvironment:   "PhEnvironment",
	KindReversalEntry: "ReversalIndexEntry",
}

// String returns the class name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Object is anything stored in the graph's guid index.
type Object interface {
	GUID() uuid.UUID
	Kind() Kind
}

// ResidueHolder is implemented by objects that can carry opaque leftover XML.
type ResidueHolder interface {
	Object
	Residue() string
	SetResidue(string)
}

// base carries the identity and residue common to all graph objects.
type base struct {
	guid    uuid.UUID
	residue string
}

func (b *base) GUID() uuid.UUID       { return b.guid }
func (b *base) Residue() string       { return b.residue }
func (b *base) SetResidue(xml string) { b.residue = xml }

// Graph is the lexicon: entries plus the catalogs and relations they use.
type Graph struct {
	objects map[uuid.UUID]Object
	deleted map[uuid.UUID]struct{}

	entries      []*Entry
	lists        map[ListID]*List
	listOrder    []ListID
	references   []*LexReference
	environments []*Environment
	reversals    map[string]*ReversalIndex
	customFields []*CustomField

	Features *FeatureSystem
	Locales  *text.Registry
}

// NewGraph returns an empty graph with the standard lists created and the
// standard morph types seeded.
func NewGraph() *Graph {
	g := &Graph{
		objects:   make(map[uuid.UUID]Object),
		deleted:   make(map[uuid.UUID]struct{}),
		lists:     make(map[ListID]*List),
		reversals: make(map[string]*ReversalIndex),
		Features:  newFeatureSystem(),
		Locales:   text.NewRegistry(),
	}
	for _, id := range StandardLists {
		g.List(id)
	}
	g.seedMorphTypes()
	return g
}

// Register adds obj to the guid index.
// It fails when the guid is nil, already used by another object, or belonged
// to a deleted object.
func (g *Graph) Register(obj Object) error {
	id := obj.GUID()
	if id == uuid.Nil {
		return errors.NewValidation("guid", "nil guid")
	}
	if _, gone := g.deleted[id]; gone {
		return &errors.IdentityConflictError{GUID: id.String(), Reason: "guid belongs to a deleted object"}
	}
	if existing, ok := g.objects[id]; ok && existing != obj {
		return &errors.IdentityConflictError{GUID: id.String(), Reason: "guid already used by " + existing.Kind().String()}
	}
	g.objects[id] = obj
	return nil
}

// Lookup returns the object registered under id.
func (g *Graph) Lookup(id uuid.UUID) (Object, bool) {
	obj, ok := g.objects[id]
	return obj, ok
}

// IsDeleted reports whether id belonged to an object that has been deleted.
func (g *Graph) IsDeleted(id uuid.UUID) bool {
	_, ok := g.deleted[id]
	return ok
}

// IsFree reports whether id may be used for a new object.
func (g *Graph) IsFree(id uuid.UUID) bool {
	if id == uuid.Nil || g.IsDeleted(id) {
		return false
	}
	_, used := g.objects[id]
	return !used
}

// NewGUID returns a guid that is neither in use nor deleted.
func (g *Graph) NewGUID() uuid.UUID {
	for {
		id := uuid.New()
		if g.IsFree(id) {
			return id
		}
	}
}

// guidOrNew returns id when it is free, a fresh guid when id is nil, and an
// identity conflict otherwise.
func (g *Graph) guidOrNew(id uuid.UUID) (uuid.UUID, error) {
	if id == uuid.Nil {
		return g.NewGUID(), nil
	}
	if !g.IsFree(id) {
		reason := "guid already in use"
		if g.IsDeleted(id) {
			reason = "guid belongs to a deleted object"
		}
		return uuid.Nil, &errors.IdentityConflictError{GUID: id.String(), Reason: reason}
	}
	return id, nil
}

func (g *Graph) forget(obj Object) {
	if obj == nil {
		return
	}
	id := obj.GUID()
	if cur, ok := g.objects[id]; ok && cur == obj {
		delete(g.objects, id)
		g.deleted[id] = struct{}{}
	}
}

// Count returns the number of live objects.
func (g *Graph) Count() int {
	return len(g.objects)
}

// Entries returns the entries in graph order.
func (g *Graph) Entries() []*Entry {
	return g.entries
}

// Entry returns the entry with the given guid.
func (g *Graph) Entry(id uuid.UUID) (*Entry, bool) {
	e, ok := g.objects[id].(*Entry)
	return e, ok
}

// Sense returns the sense with the given guid.
func (g *Graph) Sense(id uuid.UUID) (*Sense, bool) {
	s, ok := g.objects[id].(*Sense)
	return s, ok
}

// References returns all lexical references.
func (g *Graph) References() []*LexReference {
	return g.references
}

// ReferencesTo returns the lexical references that include obj as a target.
func (g *Graph) ReferencesTo(obj Object) []*LexReference {
	var out []*LexReference
	for _, r := range g.references {
		if r.Contains(obj) {
			out = append(out, r)
		}
	}
	return out
}

// Environments returns the phonological environments.
func (g *Graph) Environments() []*Environment {
	return g.environments
}

// Environment returns the environment with the given representation,
// creating it when missing.
func (g *Graph) Environment(repr string) (*Environment, error) {
	for _, e := range g.environments {
		if text.SameText(e.Representation, repr) {
			return e, nil
		}
	}
	env := &Environment{base: base{guid: g.NewGUID()}, Representation: repr}
	if err := g.Register(env); err != nil {
		return nil, err
	}
	g.environments = append(g.environments, env)
	return env, nil
}

// Environment is a phonological environment such as "/ _ [V]".
type Environment struct {
	base
	Representation string
}

func (*Environment) Kind() Kind { return KindEnvironment }
