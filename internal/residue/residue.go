// Package residue stores XML that the merge engine could not map onto the
// lexicon graph, so the exporter can write it back out.
//
// Each graph object carries at most one residue string. It is encoded as
//
//	<lift-residue id="..." dateCreated="..." dateModified="...">fragments</lift-residue>
//
// where id is the LIFT id the object was imported under when it differs from
// the one export would generate, and the dates are kept for objects the graph
// does not date itself.
package residue

import (
	"strings"

	"github.com/sillsdev/liftbridge/core/encoding"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/core/xml"
)

const rootName = "lift-residue"

// Residue is the decoded form of a stored residue string.
type Residue struct {
	ID        string
	Created   string
	Modified  string
	Fragments []string
}

// Decode reads a stored residue. Stored text that is not a lift-residue
// element is kept as a single opaque fragment.
func Decode(s string) *Residue {
	r := &Residue{}
	if xml.IsBlank(s) {
		return r
	}
	if !xml.Validate([]byte(s)).Valid {
		r.Fragments = []string{s}
		return r
	}
	doc, err := xml.Parse([]byte(s))
	if err != nil {
		r.Fragments = []string{s}
		return r
	}
	root, err := doc.XPathFirst("/" + rootName)
	if err != nil || root == nil {
		r.Fragments = []string{s}
		return r
	}
	r.ID = root.Attr("id")
	r.Created = root.Attr("dateCreated")
	r.Modified = root.Attr("dateModified")
	for _, seg := range root.Mixed() {
		switch {
		case seg.Elem != nil:
			r.Fragments = append(r.Fragments, seg.Elem.OuterXML())
		case !xml.IsBlank(seg.Text):
			r.Fragments = append(r.Fragments, encoding.EscapeXMLText(strings.TrimSpace(seg.Text)))
		}
	}
	return r
}

// canonical splits fragment into its elements, each serialized the way
// Decode serializes stored fragments. Markup that is not a run of elements
// is kept as one trimmed fragment.
func canonical(fragment string) []string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}
	nodes, err := xml.ParseFragment(fragment)
	if err != nil || len(nodes) == 0 {
		return []string{fragment}
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.OuterXML()
	}
	return out
}

// IsEmpty reports whether there is nothing to store.
func (r *Residue) IsEmpty() bool {
	return r.ID == "" && r.Created == "" && r.Modified == "" && len(r.Fragments) == 0
}

// Encode returns the stored form, or "" when the residue is empty.
func (r *Residue) Encode() string {
	if r.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("<" + rootName)
	writeAttr(&b, "id", r.ID)
	writeAttr(&b, "dateCreated", r.Created)
	writeAttr(&b, "dateModified", r.Modified)
	b.WriteString(">")
	for _, f := range r.Fragments {
		b.WriteString(f)
	}
	b.WriteString("</" + rootName + ">")
	return b.String()
}

func writeAttr(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(" " + name + `="` + encoding.EscapeXMLAttr(value) + `"`)
}

// Add appends the elements of fragment that are not already present and
// reports whether anything was added. Elements are compared in canonical
// form, so <a/> and <a></a> are the same fragment.
func (r *Residue) Add(fragment string) bool {
	added := false
	for _, f := range canonical(fragment) {
		if r.has(f) {
			continue
		}
		r.Fragments = append(r.Fragments, f)
		added = true
	}
	return added
}

func (r *Residue) has(fragment string) bool {
	for _, f := range r.Fragments {
		if text.SameText(f, fragment) {
			return true
		}
	}
	return false
}

// Get decodes the residue of h.
func Get(h lexicon.ResidueHolder) *Residue {
	return Decode(h.Residue())
}

// Put stores r on h.
func Put(h lexicon.ResidueHolder, r *Residue) {
	h.SetResidue(r.Encode())
}

// Attach appends fragments to the residue of h, skipping any already there.
// It returns the number of fragments added.
func Attach(h lexicon.ResidueHolder, fragments ...string) int {
	if len(fragments) == 0 {
		return 0
	}
	r := Get(h)
	n := 0
	for _, f := range fragments {
		if r.Add(f) {
			n++
		}
	}
	if n > 0 {
		Put(h, r)
	}
	return n
}

// SetOriginalID records the LIFT id h was imported under.
func SetOriginalID(h lexicon.ResidueHolder, id string) {
	r := Get(h)
	if r.ID == id {
		return
	}
	r.ID = id
	Put(h, r)
}

// OriginalID returns the recorded LIFT id of h, or "".
func OriginalID(h lexicon.ResidueHolder) string {
	return Get(h).ID
}

// SetDates records creation and modification dates for objects the graph
// does not date.
func SetDates(h lexicon.ResidueHolder, created, modified string) {
	r := Get(h)
	if r.Created == created && r.Modified == modified {
		return
	}
	r.Created, r.Modified = created, modified
	Put(h, r)
}

// Dates returns the dates recorded by SetDates.
func Dates(h lexicon.ResidueHolder) (created, modified string) {
	r := Get(h)
	return r.Created, r.Modified
}

// Fragments returns the stored fragments of h.
func Fragments(h lexicon.ResidueHolder) []string {
	return Get(h).Fragments
}

// Replay returns the fragments of h joined for writing inside its element.
func Replay(h lexicon.ResidueHolder) string {
	return strings.Join(Fragments(h), "")
}
