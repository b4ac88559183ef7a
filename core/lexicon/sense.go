package lexicon

import (
	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/text"
)

// Sense is one meaning of an entry. Senses nest through Subsenses.
type Sense struct {
	base
	customData

	Gloss           text.Multi
	Definition      text.Multi
	Examples        []*Example
	MSA             *MSA
	Subsenses       []*Sense
	ReversalEntries []*ReversalEntry
	Pictures        []*Picture
	Notes           Notes
	ScientificName  text.Multi
	SemanticDomains []*Possibility
	AnthroCodes     []*Possibility
	DomainTypes     []*Possibility
	UsageTypes      []*Possibility
	DoNotPublishIn  []*Possibility
	SenseType       *Possibility
	Status          *Possibility

	owner Object
}

func (*Sense) Kind() Kind { return KindSense }

// CustomClass implements CustomHolder.
func (*Sense) CustomClass() string { return ClassSense }

// Owner returns the owning entry or parent sense.
func (s *Sense) Owner() Object { return s.owner }

// Entry returns the entry that ultimately owns s.
func (s *Sense) Entry() *Entry {
	for o := s.owner; o != nil; {
		switch v := o.(type) {
		case *Entry:
			return v
		case *Sense:
			o = v.owner
		default:
			return nil
		}
	}
	return nil
}

// NewSense creates a sense and appends it to owner, which must be an *Entry
// or a *Sense. A nil id requests a fresh guid.
func (g *Graph) NewSense(owner Object, id uuid.UUID) (*Sense, error) {
	id, err := g.guidOrNew(id)
	if err != nil {
		return nil, err
	}
	s := &Sense{base: base{guid: id}, owner: owner, Notes: Notes{}}
	if err := g.Register(s); err != nil {
		return nil, err
	}
	switch o := owner.(type) {
	case *Entry:
		o.Senses = append(o.Senses, s)
	case *Sense:
		o.Subsenses = append(o.Subsenses, s)
	}
	return s, nil
}

// Example is an example sentence illustrating a sense.
type Example struct {
	base
	customData

	Form         text.Multi
	Reference    string
	Translations []*Translation
	Notes        Notes
	owner        *Sense
}

func (*Example) Kind() Kind { return KindExample }

// CustomClass implements CustomHolder.
func (*Example) CustomClass() string { return ClassExample }

// NewExample creates an example and appends it to s.
func (g *Graph) NewExample(s *Sense) (*Example, error) {
	ex := &Example{base: base{guid: g.NewGUID()}, owner: s, Notes: Notes{}}
	if err := g.Register(ex); err != nil {
		return nil, err
	}
	s.Examples = append(s.Examples, ex)
	return ex, nil
}

// Translation is a translation of an example sentence.
type Translation struct {
	base

	Type *Possibility
	Form text.Multi
}

func (*Translation) Kind() Kind { return KindTranslation }

// NewTranslation creates a translation and appends it to ex.
func (g *Graph) NewTranslation(ex *Example) (*Translation, error) {
	tr := &Translation{base: base{guid: g.NewGUID()}}
	if err := g.Register(tr); err != nil {
		return nil, err
	}
	ex.Translations = append(ex.Translations, tr)
	return tr, nil
}

// Picture is an illustration of a sense.
type Picture struct {
	base

	File    string
	Caption text.Multi
}

func (*Picture) Kind() Kind { return KindPicture }

// NewPicture creates a picture and appends it to s.
func (g *Graph) NewPicture(s *Sense) (*Picture, error) {
	p := &Picture{base: base{guid: g.NewGUID()}}
	if err := g.Register(p); err != nil {
		return nil, err
	}
	s.Pictures = append(s.Pictures, p)
	return p, nil
}

// ReversalIndex holds the reversal entries of one locale.
type ReversalIndex struct {
	Lang    string
	Entries []*ReversalEntry
}

// ReversalEntry is a headword in a reversal index; entries nest through Parent.
type ReversalEntry struct {
	base

	Index    string
	Form     text.Multi
	Parent   *ReversalEntry
	Children []*ReversalEntry
	POS      *Possibility
}

func (*ReversalEntry) Kind() Kind { return KindReversalEntry }

// ReversalIndexes returns the reversal indexes keyed by locale.
func (g *Graph) ReversalIndexes() map[string]*ReversalIndex {
	return g.reversals
}

// FindReversal returns the reversal entry in index lang with the given form
// under parent (nil for top level).
func (g *Graph) FindReversal(lang string, form string, parent *ReversalEntry) *ReversalEntry {
	idx := g.reversals[lang]
	if idx == nil {
		return nil
	}
	candidates := idx.Entries
	if parent != nil {
		candidates = parent.Children
	}
	for _, r := range candidates {
		if text.SameText(r.Form.String(lang), form) {
			return r
		}
	}
	return nil
}

// NewReversal creates a reversal entry in index lang under parent.
func (g *Graph) NewReversal(lang string, form text.Multi, parent *ReversalEntry) (*ReversalEntry, error) {
	r := &ReversalEntry{base: base{guid: g.NewGUID()}, Index: lang, Form: form, Parent: parent}
	if err := g.Register(r); err != nil {
		return nil, err
	}
	if parent != nil {
		parent.Children = append(parent.Children, r)
		return r, nil
	}
	idx := g.reversals[lang]
	if idx == nil {
		idx = &ReversalIndex{Lang: lang}
		g.reversals[lang] = idx
	}
	idx.Entries = append(idx.Entries, r)
	return r, nil
}
