// Package possibility finds and creates items of the lexicon's controlled
// lists (parts of speech, semantic domains, morph types and the rest) by
// label.
package possibility

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
)

// Created describes a list item the resolver had to create.
type Created struct {
	List  lexicon.ListID
	Label string
	Item  *lexicon.Possibility
}

// Resolver looks up list items by name or abbreviation in any locale and
// creates missing ones. It caches hits for the lifetime of one import.
type Resolver struct {
	graph           *lexicon.Graph
	caseInsensitive bool
	locale          string
	onCreate        func(Created)
	cache           map[cacheKey]*lexicon.Possibility
}

type cacheKey struct {
	list  lexicon.ListID
	label string
}

// Option configures a Resolver.
type Option func(*Resolver)

// CaseInsensitive makes label matching fall back to case-folded comparison
// when no exact match exists.
func CaseInsensitive(on bool) Option {
	return func(r *Resolver) { r.caseInsensitive = on }
}

// Locale sets the locale new items are named in. The default is "en".
func Locale(tag string) Option {
	return func(r *Resolver) {
		if tag != "" {
			r.locale = tag
		}
	}
}

// OnCreate registers fn to be called for every item the resolver creates.
func OnCreate(fn func(Created)) Option {
	return func(r *Resolver) { r.onCreate = fn }
}

// New returns a resolver over g. Matching is exact unless CaseInsensitive is
// given.
func New(g *lexicon.Graph, opts ...Option) *Resolver {
	r := &Resolver{graph: g, locale: "en", cache: make(map[cacheKey]*lexicon.Possibility)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find returns the item of list whose name or abbreviation in any locale is
// label. Exact matches anywhere in the hierarchy win over case-insensitive
// ones.
func (r *Resolver) Find(list lexicon.ListID, label string) *lexicon.Possibility {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	key := cacheKey{list, text.Normalize(label)}
	if p, ok := r.cache[key]; ok && r.matches(p, label) {
		return p
	}
	found := r.search(list, label, text.SameText)
	if found == nil && r.caseInsensitive {
		found = r.search(list, label, text.FoldEqual)
	}
	if found != nil {
		r.cache[key] = found
	}
	return found
}

func (r *Resolver) matches(p *lexicon.Possibility, label string) bool {
	if _, live := r.graph.Possibility(p.GUID()); !live {
		return false
	}
	if hasLabel(p, label, text.SameText) {
		return true
	}
	return r.caseInsensitive && hasLabel(p, label, text.FoldEqual)
}

func (r *Resolver) search(list lexicon.ListID, label string, eq func(a, b string) bool) *lexicon.Possibility {
	if !r.graph.HasList(list) {
		return nil
	}
	var found *lexicon.Possibility
	r.graph.List(list).Walk(func(p *lexicon.Possibility) bool {
		if hasLabel(p, label, eq) {
			found = p
			return false
		}
		return true
	})
	return found
}

func hasLabel(p *lexicon.Possibility, label string, eq func(a, b string) bool) bool {
	for _, m := range []text.Multi{p.Name, p.Abbrev} {
		for _, a := range m.Alts() {
			if eq(a.Value.String(), label) {
				return true
			}
		}
	}
	return false
}

// FindOrCreate returns the item labelled label, creating it under parent
// when missing. A nil parent is resolved with Parent. New parts of speech
// take their names, abbreviations, catalog id and parent from the standard
// table when the label is a standard one. The boolean reports whether an
// item was created.
func (r *Resolver) FindOrCreate(list lexicon.ListID, label string, parent *lexicon.Possibility) (*lexicon.Possibility, bool, error) {
	if p := r.Find(list, label); p != nil {
		return p, false, nil
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, false, nil
	}
	if list == lexicon.ListPartsOfSpeech {
		if std, ok := LookupPOS(label); ok {
			return r.createStandardPOS(std, parent)
		}
	}
	if parent == nil {
		parent = r.Parent(list, label)
	}
	p, err := r.graph.NewPossibility(list, uuid.Nil, parent)
	if err != nil {
		return nil, false, err
	}
	p.Name.SetString(r.locale, label)
	r.created(list, label, p)
	return p, true, nil
}

// Parent returns the existing item a new item labelled label belongs under.
// Labels led by an outline number such as "1.2.3 Stars" go under the item
// numbered "1.2", or "1" when there is none. An item's number is its
// abbreviation or the leading token of its name. Other labels, and numbers
// with no numbered ancestor, yield nil so the item goes at the top level.
func (r *Resolver) Parent(list lexicon.ListID, label string) *lexicon.Possibility {
	num := leadingToken(label)
	if !isOutlineNumber(num) || !r.graph.HasList(list) {
		return nil
	}
	for {
		i := strings.LastIndexByte(num, '.')
		if i <= 0 {
			return nil
		}
		num = num[:i]
		var found *lexicon.Possibility
		r.graph.List(list).Walk(func(p *lexicon.Possibility) bool {
			if hasNumber(p, num) {
				found = p
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
}

func hasNumber(p *lexicon.Possibility, num string) bool {
	for _, a := range p.Abbrev.Alts() {
		if strings.TrimSpace(a.Value.String()) == num {
			return true
		}
	}
	for _, a := range p.Name.Alts() {
		if leadingToken(a.Value.String()) == num {
			return true
		}
	}
	return false
}

func leadingToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func isOutlineNumber(s string) bool {
	if s == "" || s[0] == '.' {
		return false
	}
	for _, c := range s {
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func (r *Resolver) createStandardPOS(std StandardPOS, parent *lexicon.Possibility) (*lexicon.Possibility, bool, error) {
	if parent == nil && std.Parent != "" {
		if ps, ok := posByCatalogID[std.Parent]; ok {
			var err error
			parent, _, err = r.FindOrCreate(lexicon.ListPartsOfSpeech, ps.Names["en"], nil)
			if err != nil {
				return nil, false, err
			}
		}
	}
	p, err := r.graph.NewPossibility(lexicon.ListPartsOfSpeech, uuid.Nil, parent)
	if err != nil {
		return nil, false, err
	}
	for _, lang := range sortedLangs(std.Names) {
		p.Name.SetString(lang, std.Names[lang])
	}
	for _, lang := range sortedLangs(std.Abbrevs) {
		p.Abbrev.SetString(lang, std.Abbrevs[lang])
	}
	p.CatalogID = std.CatalogID
	r.created(lexicon.ListPartsOfSpeech, std.Names["en"], p)
	return p, true, nil
}

func (r *Resolver) created(list lexicon.ListID, label string, p *lexicon.Possibility) {
	r.cache[cacheKey{list, text.Normalize(label)}] = p
	if r.onCreate != nil {
		r.onCreate(Created{List: list, Label: label, Item: p})
	}
}

// Ensure returns the item for a range element, matching by guid and then by
// id or label. A missing item is created under parent, reusing the
// element's guid when the graph allows it. Names, abbreviations and
// descriptions of an existing item gain the locales it lacks; when
// overwrite is set, imported text replaces existing text in shared locales.
func (r *Resolver) Ensure(list lexicon.ListID, el *lift.RangeElement, parent *lexicon.Possibility, overwrite bool) (*lexicon.Possibility, bool, error) {
	guid, _ := lift.GUIDFromID(el.GUID)
	if guid != uuid.Nil {
		if p, ok := r.graph.Possibility(guid); ok && p.List == list {
			fill(p, el, overwrite)
			return p, false, nil
		}
	}
	if p := r.findElement(list, el); p != nil {
		fill(p, el, overwrite)
		return p, false, nil
	}
	if guid != uuid.Nil && !r.graph.IsFree(guid) {
		guid = uuid.Nil
	}
	p, err := r.graph.NewPossibility(list, guid, parent)
	if err != nil {
		return nil, false, err
	}
	fill(p, el, true)
	if p.Name.IsEmpty() && el.ID != "" {
		p.Name.SetString(r.locale, el.ID)
	}
	if v, ok := el.TraitValue("catalog-source-id"); ok {
		p.CatalogID = v
	}
	label := el.ID
	if label == "" {
		label = p.Label("en")
	}
	r.created(list, label, p)
	return p, true, nil
}

func (r *Resolver) findElement(list lexicon.ListID, el *lift.RangeElement) *lexicon.Possibility {
	if p := r.Find(list, el.ID); p != nil {
		return p
	}
	for _, a := range el.Label.Alts() {
		if p := r.Find(list, a.Value.String()); p != nil {
			return p
		}
	}
	return nil
}

func fill(p *lexicon.Possibility, el *lift.RangeElement, overwrite bool) {
	p.Name = mergeText(p.Name, el.Label, overwrite)
	p.Abbrev = mergeText(p.Abbrev, el.Abbrev, overwrite)
	p.Description = mergeText(p.Description, el.Description, overwrite)
}

func mergeText(dst, src text.Multi, overwrite bool) text.Multi {
	dst = dst.Clone()
	for _, a := range src.Alts() {
		if _, ok := dst.Get(a.Lang); ok && !overwrite {
			continue
		}
		dst.Set(a.Lang, a.Value)
	}
	return dst
}

// MorphType returns the morph type named or abbreviated label. Case is
// ignored only when the resolver is case-insensitive. The morph-type list is
// fixed, so an unknown label yields nil.
func (r *Resolver) MorphType(label string) *lexicon.Possibility {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	if p := r.search(lexicon.ListMorphTypes, label, text.SameText); p != nil {
		return p
	}
	if !r.caseInsensitive {
		return nil
	}
	return r.search(lexicon.ListMorphTypes, label, text.FoldEqual)
}
