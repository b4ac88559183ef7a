package lexicon

import (
	"time"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/text"
)

// Dated is implemented by objects that track creation and modification times.
type Dated interface {
	Object
	Created() time.Time
	Modified() time.Time
	SetDates(created, modified time.Time)
}

type dates struct {
	created  time.Time
	modified time.Time
}

func (d *dates) Created() time.Time  { return d.created }
func (d *dates) Modified() time.Time { return d.modified }
func (d *dates) SetDates(created, modified time.Time) {
	d.created = created
	d.modified = modified
}

// Notes holds one locale-tagged note per note type.
type Notes map[string]text.Multi

// Set stores a note, removing it when empty.
func (n Notes) Set(noteType string, m text.Multi) {
	if m.IsEmpty() {
		delete(n, noteType)
		return
	}
	n[noteType] = m
}

// Entry is a lexical entry.
type Entry struct {
	base
	dates
	customData

	HomographNumber   int
	LexemeForm        *Allomorph
	CitationForm      text.Multi
	Senses            []*Sense
	Pronunciations    []*Pronunciation
	AlternateForms    []*Allomorph
	Etymology         *Etymology
	EntryRefs         []*EntryRef
	MSAs              []*MSA
	Notes             Notes
	LiteralMeaning    text.Multi
	SummaryDefinition text.Multi
	ImportResidue     text.Multi
	DoNotPublishIn    []*Possibility
	ExcludeAsHeadword bool
}

func (*Entry) Kind() Kind { return KindEntry }

// CustomClass implements CustomHolder.
func (*Entry) CustomClass() string { return ClassEntry }

// NewEntry creates and registers an entry. A nil id requests a fresh guid.
func (g *Graph) NewEntry(id uuid.UUID) (*Entry, error) {
	id, err := g.guidOrNew(id)
	if err != nil {
		return nil, err
	}
	e := &Entry{base: base{guid: id}, Notes: Notes{}}
	if err := g.Register(e); err != nil {
		return nil, err
	}
	g.entries = append(g.entries, e)
	return e, nil
}

// Headword returns the citation form, or else the lexeme form, in lang.
func (e *Entry) Headword(lang string) string {
	if s := e.CitationForm.String(lang); s != "" {
		return s
	}
	if e.LexemeForm != nil {
		if s := e.LexemeForm.Form.String(lang); s != "" {
			return s
		}
		return e.LexemeForm.Form.Best()
	}
	return e.CitationForm.Best()
}

// AllSenses returns the senses of e depth-first, subsenses after their parent.
func (e *Entry) AllSenses() []*Sense {
	var out []*Sense
	var walk func([]*Sense)
	walk = func(ss []*Sense) {
		for _, s := range ss {
			out = append(out, s)
			walk(s.Subsenses)
		}
	}
	walk(e.Senses)
	return out
}

// Allomorph is a form of a morpheme: the lexeme form or an alternate form.
type Allomorph struct {
	base
	customData

	Form         text.Multi
	MorphType    *Possibility
	Environments []*Environment
	owner        *Entry
}

func (*Allomorph) Kind() Kind { return KindAllomorph }

// CustomClass implements CustomHolder.
func (*Allomorph) CustomClass() string { return ClassAllomorph }

// Owner returns the entry owning the allomorph.
func (a *Allomorph) Owner() *Entry { return a.owner }

// NewAllomorph creates an allomorph owned by e. It is not attached; set it as
// the lexeme form or append it to the alternate forms.
func (g *Graph) NewAllomorph(e *Entry, id uuid.UUID) (*Allomorph, error) {
	id, err := g.guidOrNew(id)
	if err != nil {
		return nil, err
	}
	a := &Allomorph{base: base{guid: id}, owner: e}
	if err := g.Register(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Media is a media file reference with an optional caption.
type Media struct {
	Href  string
	Label text.Multi
}

// Pronunciation is a spoken form of an entry.
type Pronunciation struct {
	base

	Form      text.Multi
	Media     []Media
	CVPattern text.Multi
	Tone      text.Multi
	Location  *Possibility
	owner     *Entry
}

func (*Pronunciation) Kind() Kind { return KindPronunciation }

// NewPronunciation creates a pronunciation and appends it to e.
func (g *Graph) NewPronunciation(e *Entry) (*Pronunciation, error) {
	p := &Pronunciation{base: base{guid: g.NewGUID()}, owner: e}
	if err := g.Register(p); err != nil {
		return nil, err
	}
	e.Pronunciations = append(e.Pronunciations, p)
	return p, nil
}

// Etymology describes the origin of an entry.
type Etymology struct {
	base

	Type   string
	Source string
	Form   text.Multi
	Gloss  text.Multi
}

func (*Etymology) Kind() Kind { return KindEtymology }

// NewEtymology creates the etymology of e, replacing any previous one.
func (g *Graph) NewEtymology(e *Entry) (*Etymology, error) {
	if e.Etymology != nil {
		g.forget(e.Etymology)
	}
	et := &Etymology{base: base{guid: g.NewGUID()}}
	if err := g.Register(et); err != nil {
		return nil, err
	}
	e.Etymology = et
	return et, nil
}

// EntryRefType distinguishes complex-form references from variant references.
type EntryRefType int

// Entry reference types.
const (
	VariantRef EntryRefType = iota
	ComplexFormRef
)

// EntryRef links an entry to the entries or senses it is built from or is a
// variant of.
type EntryRef struct {
	base

	RefType          EntryRefType
	Components       []Object
	Primary          []Object
	ComplexFormTypes []*Possibility
	VariantTypes     []*Possibility
	HideMinorEntry   bool
	Summary          text.Multi
	owner            *Entry
}

func (*EntryRef) Kind() Kind { return KindEntryRef }

// Owner returns the entry that owns the reference.
func (r *EntryRef) Owner() *Entry { return r.owner }

// NewEntryRef creates an entry reference owned by e.
func (g *Graph) NewEntryRef(e *Entry, refType EntryRefType) (*EntryRef, error) {
	r := &EntryRef{base: base{guid: g.NewGUID()}, RefType: refType, owner: e}
	if err := g.Register(r); err != nil {
		return nil, err
	}
	e.EntryRefs = append(e.EntryRefs, r)
	return r, nil
}

// HasComponent reports whether obj is one of the components.
func (r *EntryRef) HasComponent(obj Object) bool {
	for _, c := range r.Components {
		if c == obj {
			return true
		}
	}
	return false
}

// IsPrimary reports whether obj is a primary component.
func (r *EntryRef) IsPrimary(obj Object) bool {
	for _, c := range r.Primary {
		if c == obj {
			return true
		}
	}
	return false
}
