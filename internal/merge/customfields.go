package merge

import (
	"strconv"
	"strings"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// descriptor is the compact type descriptor of a header field definition,
// e.g. "Class=LexEntry; Type=ReferenceAtomic; range=status". Keys are
// lower-cased.
type descriptor map[string]string

func parseDescriptor(spec string) descriptor {
	d := make(descriptor)
	for _, part := range strings.Split(spec, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		d[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return d
}

// declareHeaderFields records the header field definitions. Definitions
// naming their owner class are declared at once; the others are declared
// for each class that turns out to use them.
func (s *Session) declareHeaderFields(defs []*lift.FieldDef) {
	for _, def := range defs {
		if def.Tag == "" {
			continue
		}
		s.headerFields[def.Tag] = def
		if class := parseDescriptor(def.Spec)["class"]; class != "" {
			s.declareCustom(class, def)
		}
	}
}

// declareCustom declares the custom field def describes on class. A
// definition without descriptor declares a MultiString field; one whose
// type cannot be read declares nothing.
func (s *Session) declareCustom(class string, def *lift.FieldDef) (*lexicon.CustomField, bool) {
	d := parseDescriptor(def.Spec)
	typ := lexicon.CustomMultiString
	if raw := d["type"]; raw != "" {
		t, ok := lexicon.ParseCustomType(raw)
		if !ok {
			s.diagnose(Diagnostic{
				Kind:    KindUnknownField,
				Owner:   class,
				Field:   def.Tag,
				Value:   raw,
				Message: "custom field type cannot be determined",
				Err:     &errors.UnknownFieldError{Class: class, Name: def.Tag, Kind: "field"},
			})
			return nil, false
		}
		typ = t
	}
	desc := def.Description.Clone()
	desc.Remove(lift.SpecLang)
	f := &lexicon.CustomField{
		Class:       class,
		Label:       def.Tag,
		Type:        typ,
		WsSelector:  d["wsselector"],
		DstClass:    d["dstcls"],
		Description: desc,
	}
	if typ.IsReference() {
		f.ListID = s.customList(firstNonEmpty(d["range"], def.Tag))
	}
	declared, err := s.graph.DeclareCustomField(f)
	if err != nil {
		s.diagnose(Diagnostic{Kind: KindInvalid, Owner: class, Field: def.Tag, Value: string(typ), Err: err})
		return nil, false
	}
	return declared, true
}

// customList returns the list a reference custom field points into,
// registering it as a custom list when it is not a standard one.
func (s *Session) customList(name string) lexicon.ListID {
	if id, ok := s.ranges.List(name); ok {
		return id
	}
	id := lexicon.ListID(name)
	s.ranges.AddCustom(id)
	s.graph.List(id)
	return id
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

// customField returns the custom field name on the class of h, declaring
// it from the header when needed.
func (s *Session) customField(h lexicon.CustomHolder, name string) (*lexicon.CustomField, bool) {
	if f, ok := s.graph.CustomField(h.CustomClass(), name); ok {
		return f, true
	}
	def, ok := s.headerFields[name]
	if !ok {
		return nil, false
	}
	if class := parseDescriptor(def.Spec)["class"]; class != "" && class != h.CustomClass() {
		return nil, false
	}
	return s.declareCustom(h.CustomClass(), def)
}

// applyCustomField stores a field in the text custom field it names. It
// reports false when there is no such field.
func (s *Session) applyCustomField(h lexicon.CustomHolder, f *lift.Field) bool {
	cf, ok := s.customField(h, f.Type)
	if !ok || !cf.Type.IsText() {
		return false
	}
	src := f.Content
	if alts := src.Alts(); cf.Type == lexicon.CustomString && len(alts) > 1 {
		var one text.Multi
		one.Set(alts[0].Lang, alts[0].Value)
		src = one
	}
	v, _ := h.Custom(cf.Label)
	v.Text = s.mergeText(h, cf.Label, v.Text, src)
	v.Created = s.mergeString(v.Created, f.DateCreated)
	v.Modified = s.mergeString(v.Modified, f.DateModified)

	// Traits and unknown children of the field stay with its value.
	extra := &residue.Residue{Fragments: v.Extra}
	for _, t := range f.Traits {
		extra.Add(lift.Fragment(func(w *lift.Writer) { w.Trait(t) }))
		s.diagnoseOn(h, KindUnknownField, cf.Label, t.Name,
			&errors.UnknownFieldError{Class: h.CustomClass(), Name: t.Name, Kind: "trait"})
	}
	for _, r := range f.Residue {
		extra.Add(r)
	}
	v.Extra = extra.Fragments
	h.SetCustom(cf.Label, v)
	return true
}

// applyCustomTraits stores traits in the integer, date and reference custom
// fields they name and returns the traits that name none.
func (s *Session) applyCustomTraits(h lexicon.CustomHolder, traits []*lift.Trait) []*lift.Trait {
	var rest []*lift.Trait
	refs := make(map[*lexicon.CustomField][]string)
	var order []*lexicon.CustomField
	for _, t := range traits {
		cf, ok := s.customField(h, t.Name)
		if !ok || cf.Type.IsText() {
			rest = append(rest, t)
			continue
		}
		v, _ := h.Custom(cf.Label)
		switch cf.Type {
		case lexicon.CustomInteger:
			n, err := strconv.Atoi(strings.TrimSpace(t.Value))
			if err != nil {
				s.diagnoseOn(h, KindParse, cf.Label, t.Value, err)
				rest = append(rest, t)
				continue
			}
			if v.Int == 0 || s.opts.Policy.overwrites() {
				v.Int = n
			}
		case lexicon.CustomGenDate:
			v.Date = s.mergeString(v.Date, t.Value)
		default:
			if _, seen := refs[cf]; !seen {
				order = append(order, cf)
			}
			refs[cf] = append(refs[cf], t.Value)
			continue
		}
		h.SetCustom(cf.Label, v)
	}
	for _, cf := range order {
		list := cf.ListID
		if list == "" {
			list = s.customList(cf.Label)
		}
		items := s.listItems(h, list, refs[cf])
		if len(items) == 0 {
			continue
		}
		v, _ := h.Custom(cf.Label)
		if cf.Type == lexicon.CustomReferenceAtomic {
			if len(v.Refs) == 0 || s.opts.Policy.overwrites() {
				v.Refs = items[:1]
			}
		} else {
			v.Refs = s.mergeRefs(v.Refs, items)
		}
		h.SetCustom(cf.Label, v)
	}
	return rest
}
