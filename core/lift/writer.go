package lift

import (
	"strconv"
	"strings"

	"github.com/sillsdev/liftbridge/core/encoding"
	"github.com/sillsdev/liftbridge/core/text"
)

// Writer builds LIFT XML. Elements are written one per line and indented
// by depth; text content stays on the line of its element. A Writer with
// Compact set writes no whitespace between elements, which is the form
// used for residue fragments.
type Writer struct {
	b       strings.Builder
	depth   int
	Compact bool
	// Locales orders alternatives; nil keeps storage order.
	Locales *text.Registry
}

// NewWriter returns an indenting writer.
func NewWriter(locales *text.Registry) *Writer {
	return &Writer{Locales: locales}
}

// Fragment renders fn with a compact writer and returns the XML.
func Fragment(fn func(w *Writer)) string {
	w := &Writer{Compact: true}
	fn(w)
	return w.String()
}

// String returns everything written so far.
func (w *Writer) String() string { return w.b.String() }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.b.Len() }

func (w *Writer) indent() {
	if w.Compact {
		return
	}
	for i := 0; i < w.depth; i++ {
		w.b.WriteString("  ")
	}
}

func (w *Writer) newline() {
	if !w.Compact {
		w.b.WriteByte('\n')
	}
}

func (w *Writer) startTag(name string, attrs []string) {
	w.b.WriteByte('<')
	w.b.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		w.b.WriteByte(' ')
		w.b.WriteString(attrs[i])
		w.b.WriteString(`="`)
		w.b.WriteString(encoding.EscapeXMLAttr(attrs[i+1]))
		w.b.WriteByte('"')
	}
}

// Header writes the XML declaration.
func (w *Writer) Header() {
	w.b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	w.newline()
}

// Open writes a start tag. Attributes are name/value pairs; pairs with an
// empty value are left out.
func (w *Writer) Open(name string, attrs ...string) {
	w.indent()
	w.startTag(name, attrs)
	w.b.WriteByte('>')
	w.newline()
	w.depth++
}

// Close writes an end tag.
func (w *Writer) Close(name string) {
	w.depth--
	w.indent()
	w.b.WriteString("</" + name + ">")
	w.newline()
}

// Empty writes a self-closing element.
func (w *Writer) Empty(name string, attrs ...string) {
	w.indent()
	w.startTag(name, attrs)
	w.b.WriteString("/>")
	w.newline()
}

// Raw writes preformatted XML on its own line.
func (w *Writer) Raw(xml string) {
	xml = strings.TrimSpace(xml)
	if xml == "" {
		return
	}
	w.indent()
	w.b.WriteString(xml)
	w.newline()
}

func (w *Writer) alts(m text.Multi) []text.Alt {
	if w.Locales != nil {
		return w.Locales.Sorted(m)
	}
	return m.Alts()
}

// Forms writes one <form> per alternative of m.
func (w *Writer) Forms(m text.Multi) {
	for _, a := range w.alts(m) {
		w.indent()
		w.b.WriteString(`<form lang="` + encoding.EscapeXMLAttr(a.Lang) + `">`)
		w.b.WriteString(TextXML(a.Value, a.Lang))
		w.b.WriteString("</form>")
		w.newline()
	}
}

// Multi writes <name attrs><form/>...</name> when m is not empty.
func (w *Writer) Multi(name string, m text.Multi, attrs ...string) {
	if m.IsEmpty() {
		return
	}
	w.Open(name, attrs...)
	w.Forms(m)
	w.Close(name)
}

// Glosses writes the <gloss> elements of a sense. Glosses joined with "; "
// on import are written back as one element per locale.
func (w *Writer) Glosses(m text.Multi) {
	for _, a := range w.alts(m) {
		w.indent()
		w.b.WriteString(`<gloss lang="` + encoding.EscapeXMLAttr(a.Lang) + `">`)
		w.b.WriteString(TextXML(a.Value, a.Lang))
		w.b.WriteString("</gloss>")
		w.newline()
	}
}

// Trait writes a trait with its annotations.
func (w *Writer) Trait(t *Trait) {
	if len(t.Annotations) == 0 {
		w.Empty("trait", "name", t.Name, "value", t.Value)
		return
	}
	w.Open("trait", "name", t.Name, "value", t.Value)
	for _, a := range t.Annotations {
		w.Annotation(a)
	}
	w.Close("trait")
}

// TraitValue writes a bare name/value trait.
func (w *Writer) TraitValue(name, value string) {
	if value == "" {
		return
	}
	w.Empty("trait", "name", name, "value", value)
}

// Annotation writes an annotation.
func (w *Writer) Annotation(a *Annotation) {
	attrs := []string{"name", a.Name, "value", a.Value, "who", a.Who, "when", a.When}
	if a.Content.IsEmpty() {
		w.Empty("annotation", attrs...)
		return
	}
	w.Open("annotation", attrs...)
	w.Forms(a.Content)
	w.Close("annotation")
}

// Field writes a staged field.
func (w *Writer) Field(f *Field) {
	w.Open("field", "type", f.Type, "dateCreated", f.DateCreated, "dateModified", f.DateModified)
	w.Forms(f.Content)
	for _, t := range f.Traits {
		w.Trait(t)
	}
	for _, r := range f.Residue {
		w.Raw(r)
	}
	w.Close("field")
}

// Relation writes a staged relation.
func (w *Writer) Relation(r *Relation) {
	attrs := []string{"type", r.Type, "ref", r.Ref}
	if r.Order >= 0 {
		attrs = append(attrs, "order", strconv.Itoa(r.Order))
	}
	attrs = append(attrs, "dateCreated", r.DateCreated, "dateModified", r.DateModified)
	if r.Usage.IsEmpty() && len(r.Fields) == 0 && len(r.Traits) == 0 && len(r.Annotations) == 0 && len(r.Residue) == 0 {
		w.Empty("relation", attrs...)
		return
	}
	w.Open("relation", attrs...)
	w.Extensible(&r.Extensible)
	w.Multi("usage", r.Usage)
	w.Close("relation")
}

// Etymology writes a staged etymology.
func (w *Writer) Etymology(et *Etymology) {
	w.Open("etymology", "type", et.Type, "source", et.Source)
	w.Forms(et.Form)
	w.Glosses(et.Gloss)
	w.Extensible(&et.Extensible)
	w.Close("etymology")
}

// Extensible writes the fields, traits, annotations and residue of x.
func (w *Writer) Extensible(x *Extensible) {
	for _, f := range x.Fields {
		w.Field(f)
	}
	for _, t := range x.Traits {
		w.Trait(t)
	}
	for _, a := range x.Annotations {
		w.Annotation(a)
	}
	for _, r := range x.Residue {
		w.Raw(r)
	}
}

// TextXML renders s as a <text> element. Runs with formatting become
// <span> elements; a run whose language equals lang needs no lang
// attribute.
func TextXML(s text.Str, lang string) string {
	var b strings.Builder
	b.WriteString("<text>")
	for _, r := range s.Runs {
		runLang := r.Lang
		if runLang == lang {
			runLang = ""
		}
		if runLang == "" && r.Style == "" && r.Href == "" {
			b.WriteString(encoding.EscapeXMLText(r.Text))
			continue
		}
		b.WriteString("<span")
		for _, kv := range [][2]string{{"lang", runLang}, {"class", r.Style}, {"href", r.Href}} {
			if kv[1] != "" {
				b.WriteString(" " + kv[0] + `="` + encoding.EscapeXMLAttr(kv[1]) + `"`)
			}
		}
		b.WriteString(">")
		b.WriteString(encoding.EscapeXMLText(r.Text))
		b.WriteString("</span>")
	}
	b.WriteString("</text>")
	return b.String()
}
