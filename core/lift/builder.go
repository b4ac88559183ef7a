package lift

// Builder receives the parse of a LIFT or LIFT-ranges document in document
// order. Leaf content of a node (forms, glosses, attributes) is filled in on
// the node itself before the callback for its next structural child fires;
// callers that need the complete node should wait for the matching End call.
type Builder interface {
	BeginDocument(producer, version string)
	HeaderField(def *FieldDef)
	// HeaderRange receives a range declared in the LIFT header; its inline
	// elements, if any, follow through ProcessRangeElement.
	HeaderRange(r *Range)
	// BeginRange receives a range of a LIFT-ranges document.
	BeginRange(r *Range)
	ProcessRangeElement(r *Range, el *RangeElement)

	BeginEntry(e *Entry)
	BeginSense(e *Entry, s *Sense)
	BeginSubsense(parent *Sense, s *Sense)
	EndSense(s *Sense)
	AddExample(s *Sense, ex *Example)
	AddVariant(e *Entry, v *Variant)
	AddPronunciation(owner Holder, p *Pronunciation)
	AddEtymology(e *Entry, et *Etymology)
	AddRelation(owner Holder, r *Relation)
	AddNote(owner Holder, n *Note)
	MergeInField(owner Holder, f *Field)
	MergeInTrait(owner Holder, t *Trait)
	AddAnnotation(owner Holder, a *Annotation)
	AddResidue(owner Holder, xml string)
	EndEntry(e *Entry)

	// DocumentResidue receives unrecognised top-level elements.
	DocumentResidue(xml string)
	EndDocument()
}

// DocumentBuilder is the Builder that assembles the staging tree.
type DocumentBuilder struct {
	Doc    *Document
	Ranges *Ranges
}

// NewDocumentBuilder returns a builder with an empty document and ranges.
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{
		Doc:    &Document{Header: &Header{}},
		Ranges: &Ranges{},
	}
}

func (b *DocumentBuilder) BeginDocument(producer, version string) {
	b.Doc.Producer = producer
	b.Doc.Version = version
}

func (b *DocumentBuilder) HeaderField(def *FieldDef) {
	b.Doc.Header.Fields = append(b.Doc.Header.Fields, def)
}

func (b *DocumentBuilder) HeaderRange(r *Range) {
	b.Doc.Header.Ranges = append(b.Doc.Header.Ranges, r)
}

func (b *DocumentBuilder) BeginRange(r *Range) {
	b.Ranges.Ranges = append(b.Ranges.Ranges, r)
}

func (b *DocumentBuilder) ProcessRangeElement(r *Range, el *RangeElement) {
	r.Elements = append(r.Elements, el)
}

func (b *DocumentBuilder) BeginEntry(e *Entry) {
	b.Doc.Entries = append(b.Doc.Entries, e)
}

func (b *DocumentBuilder) BeginSense(e *Entry, s *Sense) {
	e.Senses = append(e.Senses, s)
}

func (b *DocumentBuilder) BeginSubsense(parent *Sense, s *Sense) {
	parent.Subsenses = append(parent.Subsenses, s)
}

func (b *DocumentBuilder) EndSense(*Sense) {}

func (b *DocumentBuilder) AddExample(s *Sense, ex *Example) {
	s.Examples = append(s.Examples, ex)
}

func (b *DocumentBuilder) AddVariant(e *Entry, v *Variant) {
	e.Variants = append(e.Variants, v)
}

func (b *DocumentBuilder) AddPronunciation(owner Holder, p *Pronunciation) {
	switch o := owner.(type) {
	case *Entry:
		o.Pronunciations = append(o.Pronunciations, p)
	case *Variant:
		o.Pronunciations = append(o.Pronunciations, p)
	}
}

func (b *DocumentBuilder) AddEtymology(e *Entry, et *Etymology) {
	e.Etymologies = append(e.Etymologies, et)
}

func (b *DocumentBuilder) AddRelation(owner Holder, r *Relation) {
	switch o := owner.(type) {
	case *Entry:
		o.Relations = append(o.Relations, r)
	case *Sense:
		o.Relations = append(o.Relations, r)
	case *Variant:
		o.Relations = append(o.Relations, r)
	}
}

func (b *DocumentBuilder) AddNote(owner Holder, n *Note) {
	switch o := owner.(type) {
	case *Entry:
		o.Notes = append(o.Notes, n)
	case *Sense:
		o.Notes = append(o.Notes, n)
	case *Example:
		o.Notes = append(o.Notes, n)
	}
}

// MergeInField adds f to owner. A second field of the same type is merged
// into the first, locale by locale.
func (b *DocumentBuilder) MergeInField(owner Holder, f *Field) {
	x := owner.Ext()
	if existing := x.Field(f.Type); existing != nil {
		for _, alt := range f.Content.Alts() {
			if _, ok := existing.Content.Get(alt.Lang); !ok {
				existing.Content.Set(alt.Lang, alt.Value)
			}
		}
		existing.Traits = append(existing.Traits, f.Traits...)
		existing.Residue = append(existing.Residue, f.Residue...)
		return
	}
	x.Fields = append(x.Fields, f)
}

func (b *DocumentBuilder) MergeInTrait(owner Holder, t *Trait) {
	x := owner.Ext()
	x.Traits = append(x.Traits, t)
}

func (b *DocumentBuilder) AddAnnotation(owner Holder, a *Annotation) {
	x := owner.Ext()
	x.Annotations = append(x.Annotations, a)
}

func (b *DocumentBuilder) AddResidue(owner Holder, xml string) {
	x := owner.Ext()
	x.Residue = append(x.Residue, xml)
}

func (b *DocumentBuilder) EndEntry(*Entry) {}

func (b *DocumentBuilder) DocumentResidue(xml string) {
	b.Doc.Residue = append(b.Doc.Residue, xml)
}

func (b *DocumentBuilder) EndDocument() {}
