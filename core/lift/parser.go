package lift

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/core/xml"
)

// Parse reads a LIFT document and reports it to b in document order.
func Parse(r io.Reader, b Builder) error {
	root, err := load(r, "lift")
	if err != nil {
		return err
	}
	b.BeginDocument(root.Attr("producer"), root.Attr("version"))
	for _, c := range root.Children() {
		switch c.Name() {
		case "header":
			parseHeader(c, b)
		case "entry":
			parseEntry(c, b)
		default:
			b.DocumentResidue(c.OuterXML())
		}
	}
	b.EndDocument()
	return nil
}

// ParseRanges reads a LIFT-ranges document and reports it to b.
func ParseRanges(r io.Reader, b Builder) error {
	root, err := load(r, "lift-ranges")
	if err != nil {
		return err
	}
	for _, c := range root.Children() {
		if c.Name() != "range" {
			b.DocumentResidue(c.OuterXML())
			continue
		}
		rng := parseRangeAttrs(c)
		b.BeginRange(rng)
		parseRangeBody(c, rng, b)
	}
	b.EndDocument()
	return nil
}

// ParseDocument parses a LIFT document into a staging tree.
func ParseDocument(r io.Reader) (*Document, error) {
	b := NewDocumentBuilder()
	if err := Parse(r, b); err != nil {
		return nil, err
	}
	return b.Doc, nil
}

// ParseRangesDocument parses a LIFT-ranges document.
func ParseRangesDocument(r io.Reader) (*Ranges, error) {
	b := NewDocumentBuilder()
	if err := ParseRanges(r, b); err != nil {
		return nil, err
	}
	b.Ranges.Residue = b.Doc.Residue
	return b.Ranges, nil
}

// ParseFile parses the LIFT file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()
	doc, err := ParseDocument(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// ParseRangesFile parses the LIFT-ranges file at path.
func ParseRangesFile(path string) (*Ranges, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()
	rng, err := ParseRangesDocument(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return rng, nil
}

func load(r io.Reader, rootName string) (*xml.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	if res := xml.Validate(data); !res.Valid {
		pe := errors.NewParse(rootName, "", "document is not well formed")
		if len(res.Errors) > 0 {
			e := res.Errors[0]
			pe.Message = "line " + strconv.Itoa(e.Line) + ": " + e.Message
		}
		return nil, pe
	}
	doc, err := xml.ParseReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParse(rootName, "", "cannot parse document: "+err.Error())
	}
	root := doc.Root()
	if root == nil || root.Name() != rootName {
		got := ""
		if root != nil {
			got = root.Name()
		}
		return nil, errors.NewParse(rootName, "", "root element is <"+got+">, want <"+rootName+">")
	}
	return root, nil
}

func parseHeader(n *xml.Node, b Builder) {
	for _, c := range n.Children() {
		switch c.Name() {
		case "ranges":
			for _, rc := range c.ChildrenNamed("range") {
				rng := parseRangeAttrs(rc)
				b.HeaderRange(rng)
				parseRangeBody(rc, rng, b)
			}
		case "fields":
			for _, fc := range c.ChildrenNamed("field") {
				b.HeaderField(parseFieldDef(fc))
			}
		}
	}
}

func parseFieldDef(n *xml.Node) *FieldDef {
	def := &FieldDef{Tag: n.Attr("tag")}
	if def.Tag == "" {
		def.Tag = n.Attr("type")
	}
	for _, f := range n.ChildrenNamed("form") {
		lang := f.Attr("lang")
		s := parseText(f.FirstChild("text"))
		if lang == SpecLang {
			def.Spec = s.String()
			continue
		}
		def.Description.Set(lang, s)
	}
	return def
}

func parseRangeAttrs(n *xml.Node) *Range {
	return &Range{ID: n.Attr("id"), GUID: n.Attr("guid"), Href: n.Attr("href")}
}

func parseRangeBody(n *xml.Node, rng *Range, b Builder) {
	for _, c := range n.Children() {
		if c.Name() != "range-element" {
			rng.Residue = append(rng.Residue, c.OuterXML())
			continue
		}
		b.ProcessRangeElement(rng, parseRangeElement(c))
	}
}

func parseRangeElement(n *xml.Node) *RangeElement {
	el := &RangeElement{ID: n.Attr("id"), Parent: n.Attr("parent"), GUID: n.Attr("guid")}
	for _, c := range n.Children() {
		switch c.Name() {
		case "label":
			el.Label = mergeMulti(el.Label, parseMulti(c))
		case "abbrev":
			el.Abbrev = mergeMulti(el.Abbrev, parseMulti(c))
		case "description":
			el.Description = mergeMulti(el.Description, parseMulti(c))
		case "field":
			el.Fields = append(el.Fields, parseField(c))
		case "trait":
			el.Traits = append(el.Traits, parseTrait(c))
		default:
			el.Residue = append(el.Residue, c.OuterXML())
		}
	}
	return el
}

func readExtensibleAttrs(n *xml.Node, x *Extensible) {
	x.DateCreated = n.Attr("dateCreated")
	x.DateModified = n.Attr("dateModified")
}

// parseExtensible handles the children any extensible element may carry.
// It reports false for anything else.
func parseExtensible(c *xml.Node, owner Holder, b Builder) bool {
	switch c.Name() {
	case "field":
		b.MergeInField(owner, parseField(c))
	case "trait":
		b.MergeInTrait(owner, parseTrait(c))
	case "annotation":
		b.AddAnnotation(owner, parseAnnotation(c))
	default:
		return false
	}
	return true
}

func parseEntry(n *xml.Node, b Builder) {
	e := &Entry{
		ID:          n.Attr("id"),
		GUID:        n.Attr("guid"),
		Order:       atoi(n.Attr("order")),
		DateDeleted: n.Attr("dateDeleted"),
	}
	readExtensibleAttrs(n, &e.Extensible)
	b.BeginEntry(e)
	for _, c := range n.Children() {
		switch c.Name() {
		case "lexical-unit":
			e.LexicalUnit = mergeMulti(e.LexicalUnit, parseMulti(c))
		case "citation":
			e.Citation = mergeMulti(e.Citation, parseMulti(c))
		case "pronunciation":
			parsePronunciation(c, e, b)
		case "variant":
			parseVariant(c, e, b)
		case "sense":
			parseSense(c, e, nil, b)
		case "note":
			parseNote(c, e, b)
		case "relation":
			parseRelation(c, e, b)
		case "etymology":
			parseEtymology(c, e, b)
		default:
			if !parseExtensible(c, e, b) {
				b.AddResidue(e, c.OuterXML())
			}
		}
	}
	b.EndEntry(e)
}

func parseSense(n *xml.Node, e *Entry, parent *Sense, b Builder) {
	s := &Sense{ID: n.Attr("id"), GUID: n.Attr("guid"), Order: atoi(n.Attr("order"))}
	readExtensibleAttrs(n, &s.Extensible)
	if parent == nil {
		b.BeginSense(e, s)
	} else {
		b.BeginSubsense(parent, s)
	}
	for _, c := range n.Children() {
		switch c.Name() {
		case "grammatical-info":
			s.GramInfo = parseGramInfo(c)
		case "gloss":
			addGloss(&s.Gloss, c)
		case "definition":
			s.Definition = mergeMulti(s.Definition, parseMulti(c))
		case "relation":
			parseRelation(c, s, b)
		case "note":
			parseNote(c, s, b)
		case "example":
			parseExample(c, s, b)
		case "reversal":
			s.Reversals = append(s.Reversals, parseReversal(c))
		case "illustration":
			s.Illustrations = append(s.Illustrations, &Illustration{Href: c.Attr("href"), Label: labelOf(c)})
		case "subsense":
			parseSense(c, e, s, b)
		default:
			if !parseExtensible(c, s, b) {
				b.AddResidue(s, c.OuterXML())
			}
		}
	}
	b.EndSense(s)
}

// addGloss adds a <gloss lang=".."><text>..</text></gloss> element. Several
// glosses in one locale are joined with "; ".
func addGloss(m *text.Multi, n *xml.Node) {
	lang := n.Attr("lang")
	s := parseText(n.FirstChild("text"))
	if s.IsEmpty() {
		return
	}
	if cur, ok := m.Get(lang); ok {
		joined := cur.Clone()
		joined.Runs = append(joined.Runs, text.Run{Text: "; "})
		joined.Runs = append(joined.Runs, s.Runs...)
		m.Set(lang, joined)
		return
	}
	m.Set(lang, s)
}

func parseGramInfo(n *xml.Node) *GramInfo {
	gi := &GramInfo{Value: n.Attr("value")}
	for _, c := range n.Children() {
		if c.Name() == "trait" {
			gi.Traits = append(gi.Traits, parseTrait(c))
			continue
		}
		gi.Residue = append(gi.Residue, c.OuterXML())
	}
	return gi
}

func parseExample(n *xml.Node, s *Sense, b Builder) {
	ex := &Example{Source: n.Attr("source")}
	readExtensibleAttrs(n, &ex.Extensible)
	b.AddExample(s, ex)
	for _, c := range n.Children() {
		switch c.Name() {
		case "form":
			addForm(&ex.Form, c)
		case "translation":
			tr := &Translation{Type: c.Attr("type")}
			for _, tc := range c.Children() {
				if tc.Name() == "form" {
					addForm(&tr.Form, tc)
					continue
				}
				tr.Residue = append(tr.Residue, tc.OuterXML())
			}
			ex.Translations = append(ex.Translations, tr)
		case "note":
			parseNote(c, ex, b)
		default:
			if !parseExtensible(c, ex, b) {
				b.AddResidue(ex, c.OuterXML())
			}
		}
	}
}

func parseVariant(n *xml.Node, e *Entry, b Builder) {
	v := &Variant{Ref: n.Attr("ref")}
	readExtensibleAttrs(n, &v.Extensible)
	b.AddVariant(e, v)
	for _, c := range n.Children() {
		switch c.Name() {
		case "form":
			addForm(&v.Form, c)
		case "pronunciation":
			parsePronunciation(c, v, b)
		case "relation":
			parseRelation(c, v, b)
		default:
			if !parseExtensible(c, v, b) {
				b.AddResidue(v, c.OuterXML())
			}
		}
	}
}

func parseRelation(n *xml.Node, owner Holder, b Builder) {
	r := &Relation{Type: n.Attr("type"), Ref: n.Attr("ref"), Order: -1}
	if o := n.Attr("order"); o != "" {
		if v, err := strconv.Atoi(o); err == nil {
			r.Order = v
		}
	}
	readExtensibleAttrs(n, &r.Extensible)
	for _, c := range n.Children() {
		if c.Name() == "usage" {
			r.Usage = mergeMulti(r.Usage, parseMulti(c))
			continue
		}
		if !parseExtensible(c, r, b) {
			b.AddResidue(r, c.OuterXML())
		}
	}
	b.AddRelation(owner, r)
}

func parseEtymology(n *xml.Node, e *Entry, b Builder) {
	et := &Etymology{Type: n.Attr("type"), Source: n.Attr("source")}
	readExtensibleAttrs(n, &et.Extensible)
	b.AddEtymology(e, et)
	for _, c := range n.Children() {
		switch c.Name() {
		case "form":
			addForm(&et.Form, c)
		case "gloss":
			addGloss(&et.Gloss, c)
		default:
			if !parseExtensible(c, et, b) {
				b.AddResidue(et, c.OuterXML())
			}
		}
	}
}

func parsePronunciation(n *xml.Node, owner Holder, b Builder) {
	p := &Pronunciation{}
	readExtensibleAttrs(n, &p.Extensible)
	b.AddPronunciation(owner, p)
	for _, c := range n.Children() {
		switch c.Name() {
		case "form":
			addForm(&p.Form, c)
		case "media":
			p.Media = append(p.Media, &Media{Href: c.Attr("href"), Label: labelOf(c)})
		default:
			if !parseExtensible(c, p, b) {
				b.AddResidue(p, c.OuterXML())
			}
		}
	}
}

func parseNote(n *xml.Node, owner Holder, b Builder) {
	note := &Note{Type: n.Attr("type")}
	readExtensibleAttrs(n, &note.Extensible)
	for _, c := range n.Children() {
		if c.Name() == "form" {
			addForm(&note.Content, c)
			continue
		}
		if !parseExtensible(c, note, b) {
			b.AddResidue(note, c.OuterXML())
		}
	}
	b.AddNote(owner, note)
}

func parseField(n *xml.Node) *Field {
	f := &Field{
		Type:         n.Attr("type"),
		DateCreated:  n.Attr("dateCreated"),
		DateModified: n.Attr("dateModified"),
	}
	if f.Type == "" {
		f.Type = n.Attr("tag")
	}
	for _, c := range n.Children() {
		switch c.Name() {
		case "form":
			addForm(&f.Content, c)
		case "trait":
			f.Traits = append(f.Traits, parseTrait(c))
		default:
			f.Residue = append(f.Residue, c.OuterXML())
		}
	}
	return f
}

func parseTrait(n *xml.Node) *Trait {
	t := &Trait{Name: n.Attr("name"), Value: n.Attr("value")}
	for _, c := range n.ChildrenNamed("annotation") {
		t.Annotations = append(t.Annotations, parseAnnotation(c))
	}
	return t
}

func parseAnnotation(n *xml.Node) *Annotation {
	return &Annotation{
		Name:    n.Attr("name"),
		Value:   n.Attr("value"),
		Who:     n.Attr("who"),
		When:    n.Attr("when"),
		Content: parseMulti(n),
	}
}

func parseReversal(n *xml.Node) *Reversal {
	r := &Reversal{Type: n.Attr("type")}
	for _, c := range n.Children() {
		switch c.Name() {
		case "form":
			addForm(&r.Form, c)
		case "main":
			r.Main = parseReversal(c)
		case "grammatical-info":
			r.GramInfo = parseGramInfo(c)
		}
	}
	return r
}

// labelOf reads the <label> child of media and illustration elements.
func labelOf(n *xml.Node) text.Multi {
	if l := n.FirstChild("label"); l != nil {
		return parseMulti(l)
	}
	return text.Multi{}
}

// parseMulti reads the <form> children of n.
func parseMulti(n *xml.Node) text.Multi {
	var m text.Multi
	for _, c := range n.ChildrenNamed("form") {
		addForm(&m, c)
	}
	return m
}

func addForm(m *text.Multi, form *xml.Node) {
	s := parseText(form.FirstChild("text"))
	if s.IsEmpty() {
		return
	}
	m.Set(form.Attr("lang"), s)
}

// mergeMulti adds the alternatives of add that dst lacks.
func mergeMulti(dst, add text.Multi) text.Multi {
	for _, a := range add.Alts() {
		if _, ok := dst.Get(a.Lang); !ok {
			dst.Set(a.Lang, a.Value)
		}
	}
	return dst
}

// parseText turns the mixed content of a <text> element into runs. Nested
// <span> elements inherit the properties of their enclosing span.
func parseText(n *xml.Node) text.Str {
	var s text.Str
	if n == nil {
		return s
	}
	appendRuns(&s, n, text.Run{})
	return coalesce(s)
}

func appendRuns(s *text.Str, n *xml.Node, props text.Run) {
	for _, seg := range n.Mixed() {
		if seg.Elem == nil {
			if seg.Text != "" {
				r := props
				r.Text = seg.Text
				s.Runs = append(s.Runs, r)
			}
			continue
		}
		if seg.Elem.Name() != "span" {
			// Unknown inline markup keeps its text.
			appendRuns(s, seg.Elem, props)
			continue
		}
		inner := props
		if v := seg.Elem.Attr("lang"); v != "" {
			inner.Lang = v
		}
		if v := seg.Elem.Attr("class"); v != "" {
			inner.Style = v
		}
		if v := seg.Elem.Attr("href"); v != "" {
			inner.Href = v
		}
		appendRuns(s, seg.Elem, inner)
	}
}

// coalesce joins adjacent runs with identical properties.
func coalesce(s text.Str) text.Str {
	if len(s.Runs) < 2 {
		return s
	}
	out := text.Str{Runs: []text.Run{s.Runs[0]}}
	for _, r := range s.Runs[1:] {
		last := &out.Runs[len(out.Runs)-1]
		if last.Lang == r.Lang && last.Style == r.Style && last.Href == r.Href {
			last.Text += r.Text
			continue
		}
		out.Runs = append(out.Runs, r)
	}
	return out
}

func atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
