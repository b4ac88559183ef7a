// Package lift holds the LIFT 0.13 staging model, the parser that builds it
// and the field-name to range-id table shared by import and export.
//
// Staging nodes mirror the LIFT grammar and carry no merge logic. Child
// elements the parser does not understand are kept verbatim in each node's
// Residue so they can be written back out.
package lift

import (
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/text"
)

// Version is the LIFT version produced and accepted.
const Version = "0.13"

// Extensible is the content LIFT allows on most elements: dates, fields,
// traits and annotations, plus the residue and resolved handle kept by this
// package.
type Extensible struct {
	DateCreated  string
	DateModified string
	Fields       []*Field
	Traits       []*Trait
	Annotations  []*Annotation

	// Residue holds raw XML of children the parser did not recognise.
	Residue []string
	// Resolved is the graph object the node was merged into.
	Resolved lexicon.Object
}

// Ext returns x. It lets every staging node be used as a Holder.
func (x *Extensible) Ext() *Extensible { return x }

// Holder is implemented by every staging node that embeds Extensible.
type Holder interface {
	Ext() *Extensible
}

// Field returns the first field of the given type.
func (x *Extensible) Field(typ string) *Field {
	for _, f := range x.Fields {
		if f.Type == typ {
			return f
		}
	}
	return nil
}

// TraitValues returns the values of every trait with the given name, in
// document order.
func (x *Extensible) TraitValues(name string) []string {
	var out []string
	for _, t := range x.Traits {
		if t.Name == name {
			out = append(out, t.Value)
		}
	}
	return out
}

// TraitValue returns the first value of the named trait.
func (x *Extensible) TraitValue(name string) (string, bool) {
	for _, t := range x.Traits {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// Document is a parsed LIFT file.
type Document struct {
	Producer string
	Version  string
	Header   *Header
	Entries  []*Entry
	Residue  []string
}

// Header is the LIFT header: range references and custom field definitions.
type Header struct {
	Ranges  []*Range
	Fields  []*FieldDef
	Residue []string
}

// FieldDef declares a custom field in the header. Spec holds the compact type
// descriptor found under the qaa-x-spec locale, when present.
type FieldDef struct {
	Tag         string
	Description text.Multi
	Spec        string
}

// SpecLang is the locale tag under which header field definitions carry their
// type descriptor.
const SpecLang = "qaa-x-spec"

// Entry is a staged lexical entry.
type Entry struct {
	Extensible

	ID          string
	GUID        string
	Order       int
	DateDeleted string

	LexicalUnit    text.Multi
	Citation       text.Multi
	Pronunciations []*Pronunciation
	Variants       []*Variant
	Senses         []*Sense
	Notes          []*Note
	Relations      []*Relation
	Etymologies    []*Etymology
}

// Sense is a staged sense or subsense.
type Sense struct {
	Extensible

	ID    string
	GUID  string
	Order int

	GramInfo      *GramInfo
	Gloss         text.Multi
	Definition    text.Multi
	Relations     []*Relation
	Notes         []*Note
	Examples      []*Example
	Reversals     []*Reversal
	Illustrations []*Illustration
	Subsenses     []*Sense
}

// GramInfo is a grammatical-info element.
type GramInfo struct {
	Value   string
	Traits  []*Trait
	Residue []string
}

// TraitValues returns the values of every trait with the given name.
func (g *GramInfo) TraitValues(name string) []string {
	var out []string
	for _, t := range g.Traits {
		if t.Name == name {
			out = append(out, t.Value)
		}
	}
	return out
}

// TraitValue returns the first value of the named trait.
func (g *GramInfo) TraitValue(name string) string {
	for _, t := range g.Traits {
		if t.Name == name {
			return t.Value
		}
	}
	return ""
}

// Example is a staged example sentence.
type Example struct {
	Extensible

	Source       string
	Form         text.Multi
	Translations []*Translation
	Notes        []*Note
}

// Translation is a translation of an example.
type Translation struct {
	Type    string
	Form    text.Multi
	Residue []string
}

// Variant is an alternate form of an entry.
type Variant struct {
	Extensible

	Ref            string
	Form           text.Multi
	Pronunciations []*Pronunciation
	Relations      []*Relation
}

// Relation is a staged lexical relation or entry reference. Order is -1 when
// the attribute is absent.
type Relation struct {
	Extensible

	Type  string
	Ref   string
	Order int
	Usage text.Multi
}

// Etymology is a staged etymology.
type Etymology struct {
	Extensible

	Type   string
	Source string
	Form   text.Multi
	Gloss  text.Multi
}

// Pronunciation is a staged pronunciation.
type Pronunciation struct {
	Extensible

	Form  text.Multi
	Media []*Media
}

// Media is a media reference.
type Media struct {
	Href  string
	Label text.Multi
}

// Note is a typed note.
type Note struct {
	Extensible

	Type    string
	Content text.Multi
}

// Field is a typed multi-locale value.
type Field struct {
	Type         string
	Content      text.Multi
	DateCreated  string
	DateModified string
	Traits       []*Trait
	Residue      []string
}

// Trait is a name/value pair.
type Trait struct {
	Name        string
	Value       string
	Annotations []*Annotation
}

// Annotation is a LIFT annotation.
type Annotation struct {
	Name    string
	Value   string
	Who     string
	When    string
	Content text.Multi
}

// Illustration is a picture reference with an optional caption.
type Illustration struct {
	Href  string
	Label text.Multi
}

// Reversal is a reversal-index entry; Main points at its parent entry.
type Reversal struct {
	Type     string
	Form     text.Multi
	Main     *Reversal
	GramInfo *GramInfo
}

// Ranges is a parsed LIFT-ranges document, or the inline ranges of a header.
type Ranges struct {
	Ranges  []*Range
	Residue []string
}

// Range returns the range with the given id.
func (r *Ranges) Range(id string) *Range {
	if r == nil {
		return nil
	}
	for _, x := range r.Ranges {
		if x.ID == id {
			return x
		}
	}
	return nil
}

// Range is one controlled list.
type Range struct {
	ID       string
	GUID     string
	Href     string
	Elements []*RangeElement
	Residue  []string
}

// RangeElement is one list item.
type RangeElement struct {
	ID          string
	Parent      string
	GUID        string
	Label       text.Multi
	Abbrev      text.Multi
	Description text.Multi
	Fields      []*Field
	Traits      []*Trait
	Residue     []string
}

// Field returns the first field of the given type.
func (el *RangeElement) Field(typ string) *Field {
	for _, f := range el.Fields {
		if f.Type == typ {
			return f
		}
	}
	return nil
}

// TraitValue returns the first value of the named trait.
func (el *RangeElement) TraitValue(name string) (string, bool) {
	for _, t := range el.Traits {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}
