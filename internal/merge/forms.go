package merge

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// prepare copies an imported value for storage: over-long alternatives are
// truncated and every locale is registered with the graph.
func (s *Session) prepare(owner lexicon.Object, field string, m text.Multi, limit int) text.Multi {
	out := m.Clone()
	for _, a := range m.Alts() {
		s.graph.Locales.Handle(a.Lang)
		if limit > 0 && a.Value.Len() > limit {
			out.Set(a.Lang, s.truncate(owner, field, a.Lang, a.Value, limit))
		}
	}
	return out
}

func (s *Session) truncate(owner lexicon.Object, field, lang string, v text.Str, limit int) text.Str {
	original := v.String()
	s.report.Truncations = append(s.report.Truncations, Truncation{
		OwnerID:  owner.GUID().String(),
		Field:    field,
		Lang:     lang,
		Original: original,
		Limit:    limit,
	})
	s.diagnoseOn(owner, KindCapacity, field, original, &errors.CapacityError{Field: field, Length: v.Len(), Limit: limit})
	return v.Truncate(limit)
}

// noteLocales registers the locales of values stored without prepare.
func (s *Session) noteLocales(ms ...text.Multi) {
	for _, m := range ms {
		for _, tag := range m.Tags() {
			s.graph.Locales.Handle(tag)
		}
	}
}

// mergeText combines an existing and an imported value. KeepNew and
// KeepOnlyNew replace the locales the import carries; the other policies
// only add the locales that are missing. Locales absent from the import are
// always kept.
func (s *Session) mergeText(owner lexicon.Object, field string, dst, src text.Multi) text.Multi {
	if src.IsEmpty() {
		return dst
	}
	src = s.prepare(owner, field, src, s.opts.MaxTextLength)
	out := dst.Clone()
	for _, a := range src.Alts() {
		if _, ok := out.Get(a.Lang); ok && !s.opts.Policy.overwrites() {
			continue
		}
		out.Set(a.Lang, a.Value)
	}
	return out
}

// mergeString is mergeText for plain string properties.
func (s *Session) mergeString(dst, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return dst
	}
	if dst == "" || s.opts.Policy.overwrites() {
		return src
	}
	return dst
}

// setAtomic stores p in *dst when empty, or always under overwriting
// policies. A nil p changes nothing.
func (s *Session) setAtomic(dst **lexicon.Possibility, p *lexicon.Possibility) {
	if p == nil {
		return
	}
	if *dst == nil || s.opts.Policy.overwrites() {
		*dst = p
	}
}

// mergeRefs combines reference collections. Overwriting policies replace the
// collection when the import names any items; otherwise the union is kept.
func (s *Session) mergeRefs(dst, src []*lexicon.Possibility) []*lexicon.Possibility {
	if len(src) == 0 {
		return dst
	}
	if s.opts.Policy.overwrites() {
		return lo.Uniq(src)
	}
	return lo.Union(dst, src)
}

// listItem finds or creates the item labelled label in list.
func (s *Session) listItem(owner lexicon.Object, list lexicon.ListID, label string) *lexicon.Possibility {
	if strings.TrimSpace(label) == "" {
		return nil
	}
	p, _, err := s.lists.FindOrCreate(list, label, nil)
	if err != nil {
		s.diagnoseOn(owner, KindInvalid, string(list), label, err)
		return nil
	}
	return p
}

func (s *Session) listItems(owner lexicon.Object, list lexicon.ListID, labels []string) []*lexicon.Possibility {
	var out []*lexicon.Possibility
	for _, l := range labels {
		if p := s.listItem(owner, list, l); p != nil && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// morphType resolves a morph-type label. The list is fixed, so unknown
// labels are reported rather than created.
func (s *Session) morphType(owner lexicon.Object, label string) *lexicon.Possibility {
	if p := s.lists.MorphType(label); p != nil {
		return p
	}
	s.report.addUnknownMorphType(label)
	s.diagnoseOn(owner, KindUnknownMorphType, lift.TraitMorphType, label, nil)
	return nil
}

// stripForms removes affix markers from every alternative of a form. When
// mt is known its own markers are removed; otherwise the markers found
// decide the morph type, which is returned by name.
func stripForms(m text.Multi, mt *lexicon.Possibility) (text.Multi, string) {
	var out text.Multi
	inferred := ""
	for i, a := range m.Alts() {
		plain := a.Value.String()
		var bare, typ string
		if mt != nil {
			bare = lexicon.TrimMarkers(plain, mt)
		} else {
			bare, typ = lexicon.StripMarkers(plain)
		}
		if i == 0 {
			inferred = typ
		}
		if bare == plain {
			out.Set(a.Lang, a.Value.Clone())
			continue
		}
		out.SetString(a.Lang, bare)
	}
	return out, inferred
}

// keepField stores a field with no destination as residue.
func (s *Session) keepField(h lexicon.ResidueHolder, f *lift.Field) {
	residue.Attach(h, lift.Fragment(func(w *lift.Writer) { w.Field(f) }))
	s.diagnoseOn(h, KindUnknownField, f.Type, f.Content.Best(),
		&errors.UnknownFieldError{Class: h.Kind().String(), Name: f.Type, Kind: "field"})
}

// keepTrait stores a trait with no destination as residue.
func (s *Session) keepTrait(h lexicon.ResidueHolder, t *lift.Trait) {
	residue.Attach(h, lift.Fragment(func(w *lift.Writer) { w.Trait(t) }))
	s.diagnoseOn(h, KindUnknownField, t.Name, t.Value,
		&errors.UnknownFieldError{Class: h.Kind().String(), Name: t.Name, Kind: "trait"})
}

// keepExtras stores annotations and unrecognised children as residue.
func (s *Session) keepExtras(h lexicon.ResidueHolder, x *lift.Extensible) {
	frags := slices.Clone(x.Residue)
	for _, a := range x.Annotations {
		frags = append(frags, lift.Fragment(func(w *lift.Writer) { w.Annotation(a) }))
	}
	residue.Attach(h, frags...)
}

// recordOriginalID keeps the LIFT id of obj when it carries more than the
// bare guid.
func (s *Session) recordOriginalID(obj lexicon.ResidueHolder, id string) {
	id = strings.TrimSpace(id)
	if id == "" || id == obj.GUID().String() {
		return
	}
	residue.SetOriginalID(obj, id)
	s.originals[id] = obj
}

// parseDate reads a staged date, reporting unreadable ones.
func (s *Session) parseDate(owner lexicon.Object, field, value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	t, err := lift.ParseDate(value)
	if err != nil {
		s.diagnoseOn(owner, KindParse, field, value, err)
		return time.Time{}, false
	}
	return t, true
}

// applyDates sets the dates of a dated object from staged attributes.
// Fresh objects take the imported dates, or now when none are given.
func (s *Session) applyDates(obj lexicon.Dated, x *lift.Extensible, fresh bool) {
	created, hasCreated := s.parseDate(obj, "dateCreated", x.DateCreated)
	modified, hasModified := s.parseDate(obj, "dateModified", x.DateModified)
	c, m := obj.Created(), obj.Modified()
	if hasCreated && (fresh || c.IsZero() || s.opts.Policy.overwrites()) {
		c = created
	}
	if hasModified && (fresh || m.IsZero() || s.opts.Policy.overwrites()) {
		m = modified
	}
	if c.IsZero() {
		c = s.opts.Now().UTC()
	}
	if m.IsZero() {
		m = c
	}
	obj.SetDates(c, m)
}

// applyResidueDates is applyDates for objects whose dates live in residue.
func (s *Session) applyResidueDates(h lexicon.ResidueHolder, x *lift.Extensible) {
	if x.DateCreated == "" && x.DateModified == "" {
		return
	}
	c, m := residue.Dates(h)
	c = s.mergeString(c, x.DateCreated)
	m = s.mergeString(m, x.DateModified)
	residue.SetDates(h, c, m)
}
