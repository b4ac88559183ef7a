package merge

import (
	"slices"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// ownerSenses returns the senses directly owned by an entry or sense.
func ownerSenses(owner lexicon.Object) []*lexicon.Sense {
	switch o := owner.(type) {
	case *lexicon.Entry:
		return o.Senses
	case *lexicon.Sense:
		return o.Subsenses
	}
	return nil
}

func ownerEntry(owner lexicon.Object) *lexicon.Entry {
	switch o := owner.(type) {
	case *lexicon.Entry:
		return o
	case *lexicon.Sense:
		return o.Entry()
	}
	return nil
}

// mergeSenses merges staged senses into the senses of owner. fresh is set
// when owner was created by this import, so no existing sense can match.
func (s *Session) mergeSenses(owner lexicon.Object, staged []*lift.Sense, fresh bool) error {
	candidates := slices.Clone(ownerSenses(owner))
	used := make(map[*lexicon.Sense]bool)
	for _, ls := range staged {
		sn, senseFresh, err := s.identifySense(owner, candidates, used, ls, fresh)
		if err != nil {
			return err
		}
		if err := s.applySense(sn, ls, senseFresh); err != nil {
			return err
		}
	}
	return nil
}

// identifySense picks the sense a staged sense merges into: the sense its
// guid names, else one recorded under its id, else the best textual match.
// The boolean reports whether the sense was created.
func (s *Session) identifySense(owner lexicon.Object, candidates []*lexicon.Sense, used map[*lexicon.Sense]bool, ls *lift.Sense, fresh bool) (*lexicon.Sense, bool, error) {
	guid, hasGUID := stagedGUID(ls.GUID, ls.ID)
	if hasGUID {
		if obj, found := s.graph.Lookup(guid); found {
			if sn, isSense := obj.(*lexicon.Sense); isSense && sn.Owner() == owner && !used[sn] {
				return s.matchedSense(owner, sn, used, ls)
			}
			if !s.duplicates[ownerEntry(owner)] {
				s.diagnoseOn(owner, KindIdentityConflict, "sense", stagedKey(ls.ID, ls.GUID),
					&errors.IdentityConflictError{GUID: guid.String(), ID: ls.ID, Reason: "guid belongs to another " + obj.Kind().String()})
			}
			guid = uuid.Nil
		} else if s.graph.IsDeleted(guid) {
			s.diagnoseOn(owner, KindIdentityConflict, "sense", stagedKey(ls.ID, ls.GUID),
				&errors.IdentityConflictError{GUID: guid.String(), ID: ls.ID, Reason: "guid belongs to a deleted object"})
			guid = uuid.Nil
		} else {
			sn, err := s.graph.NewSense(owner, guid)
			return sn, true, err
		}
	}
	if !fresh {
		if obj, found := s.originals[ls.ID]; found && ls.ID != "" {
			if sn, isSense := obj.(*lexicon.Sense); isSense && sn.Owner() == owner && !used[sn] && s.live(sn) {
				return s.matchedSense(owner, sn, used, ls)
			}
		}
		sn, ok := bestMatch(candidates, used,
			func(c *lexicon.Sense) int {
				return overlapAll([2]text.Multi{c.Gloss, ls.Gloss}, [2]text.Multi{c.Definition, ls.Definition})
			},
			func(c *lexicon.Sense) bool { return allEmpty(c.Gloss, c.Definition) },
			allEmpty(ls.Gloss, ls.Definition))
		if ok {
			return s.matchedSense(owner, sn, used, ls)
		}
	}
	sn, err := s.graph.NewSense(owner, guid)
	return sn, true, err
}

// matchedSense marks sn used and, under KeepBoth, replaces it with a new
// sibling when the staged values conflict with it.
func (s *Session) matchedSense(owner lexicon.Object, sn *lexicon.Sense, used map[*lexicon.Sense]bool, ls *lift.Sense) (*lexicon.Sense, bool, error) {
	used[sn] = true
	if s.opts.Policy != KeepBoth {
		return sn, false, nil
	}
	field := senseConflict(sn, ls)
	if field == "" {
		return sn, false, nil
	}
	dup, err := s.graph.NewSense(owner, uuid.Nil)
	if err != nil {
		return nil, false, err
	}
	s.report.Duplications = append(s.report.Duplications, Duplication{
		Kind:      lexicon.KindSense.String(),
		Original:  sn.GUID().String(),
		Duplicate: dup.GUID().String(),
		Field:     field,
	})
	s.diagnoseOn(sn, KindDataConflict, field, dup.GUID().String(),
		&errors.DataConflictError{Owner: sn.GUID().String(), Field: field})
	return dup, true, nil
}

func senseConflict(sn *lexicon.Sense, ls *lift.Sense) string {
	switch {
	case text.Conflicts(sn.Gloss, ls.Gloss):
		return "gloss"
	case text.Conflicts(sn.Definition, ls.Definition):
		return "definition"
	}
	if f := ls.Field(lift.FieldScientificName); f != nil && text.Conflicts(sn.ScientificName, f.Content) {
		return lift.FieldScientificName
	}
	return ""
}

// applySense copies a staged sense into sn.
func (s *Session) applySense(sn *lexicon.Sense, ls *lift.Sense, fresh bool) error {
	ls.Resolved = sn
	s.ids.Put(stagedKey(ls.ID, ls.GUID), sn)
	if !s.duplicates[sn.Entry()] {
		s.recordOriginalID(sn, ls.ID)
	}
	s.applyResidueDates(sn, &ls.Extensible)

	sn.Gloss = s.mergeText(sn, "gloss", sn.Gloss, ls.Gloss)
	sn.Definition = s.mergeText(sn, "definition", sn.Definition, ls.Definition)
	if ls.GramInfo != nil {
		s.mergeGramInfo(sn, ls.GramInfo)
	}
	for _, n := range ls.Notes {
		s.applyNote(sn, sn.Notes, n)
	}
	if err := s.mergeExamples(sn, ls.Examples); err != nil {
		return err
	}
	for _, lr := range ls.Reversals {
		r, err := s.reversal(sn, lr)
		if err != nil {
			return err
		}
		if r != nil && !slices.Contains(sn.ReversalEntries, r) {
			sn.ReversalEntries = append(sn.ReversalEntries, r)
		}
	}
	if err := s.mergeIllustrations(sn, ls.Illustrations); err != nil {
		return err
	}

	for _, f := range ls.Fields {
		if f.Type == lift.FieldScientificName {
			sn.ScientificName = s.mergeText(sn, f.Type, sn.ScientificName, f.Content)
			continue
		}
		if !s.applyCustomField(sn, f) {
			s.keepField(sn, f)
		}
	}
	s.applySenseTraits(sn, ls.Traits)
	s.keepExtras(sn, &ls.Extensible)

	if err := s.mergeSenses(sn, ls.Subsenses, fresh); err != nil {
		return err
	}
	s.queueRelations(sn, ls.Relations)
	return nil
}

// applySenseTraits dispatches sense traits to the list-valued properties
// they name. Repeated traits of a collection property are merged as one
// collection.
func (s *Session) applySenseTraits(sn *lexicon.Sense, traits []*lift.Trait) {
	collections := map[lexicon.ListID]*[]*lexicon.Possibility{
		lexicon.ListSemanticDomains: &sn.SemanticDomains,
		lexicon.ListAnthroCodes:     &sn.AnthroCodes,
		lexicon.ListDomainTypes:     &sn.DomainTypes,
		lexicon.ListUsageTypes:      &sn.UsageTypes,
		lexicon.ListPublications:    &sn.DoNotPublishIn,
	}
	atomics := map[lexicon.ListID]**lexicon.Possibility{
		lexicon.ListSenseTypes: &sn.SenseType,
		lexicon.ListStatus:     &sn.Status,
	}
	labels := make(map[lexicon.ListID][]string)
	var order []lexicon.ListID
	var rest []*lift.Trait
	for _, t := range traits {
		list, ok := s.ranges.List(t.Name)
		if !ok {
			rest = append(rest, t)
			continue
		}
		if dst, isAtomic := atomics[list]; isAtomic {
			s.setAtomic(dst, s.listItem(sn, list, t.Value))
			continue
		}
		if _, isCollection := collections[list]; !isCollection {
			rest = append(rest, t)
			continue
		}
		if _, seen := labels[list]; !seen {
			order = append(order, list)
		}
		labels[list] = append(labels[list], t.Value)
	}
	for _, list := range order {
		dst := collections[list]
		*dst = s.mergeRefs(*dst, s.listItems(sn, list, labels[list]))
	}
	for _, t := range s.applyCustomTraits(sn, rest) {
		s.keepTrait(sn, t)
	}
}

// mergeExamples matches staged examples to those of sn by overlap of the
// sentence and its translations.
func (s *Session) mergeExamples(sn *lexicon.Sense, staged []*lift.Example) error {
	candidates := slices.Clone(sn.Examples)
	used := make(map[*lexicon.Example]bool)
	for _, lx := range staged {
		ex, ok := bestMatch(candidates, used,
			func(c *lexicon.Example) int {
				n := text.Overlap(c.Form, lx.Form)
				for _, tr := range c.Translations {
					for _, lt := range lx.Translations {
						n += text.Overlap(tr.Form, lt.Form)
					}
				}
				return n
			},
			func(c *lexicon.Example) bool { return c.Form.IsEmpty() && len(c.Translations) == 0 },
			lx.Form.IsEmpty() && len(lx.Translations) == 0)
		if !ok {
			created, err := s.graph.NewExample(sn)
			if err != nil {
				return err
			}
			ex = created
		}
		used[ex] = true
		ex.Form = s.mergeText(ex, "example", ex.Form, lx.Form)
		ex.Reference = s.mergeString(ex.Reference, lx.Source)
		if err := s.mergeTranslations(ex, lx.Translations); err != nil {
			return err
		}
		for _, n := range lx.Notes {
			s.applyNote(ex, ex.Notes, n)
		}
		for _, f := range lx.Fields {
			if !s.applyCustomField(ex, f) {
				s.keepField(ex, f)
			}
		}
		for _, t := range s.applyCustomTraits(ex, lx.Traits) {
			s.keepTrait(ex, t)
		}
		s.keepExtras(ex, &lx.Extensible)
	}
	return nil
}

func (s *Session) mergeTranslations(ex *lexicon.Example, staged []*lift.Translation) error {
	candidates := slices.Clone(ex.Translations)
	used := make(map[*lexicon.Translation]bool)
	for _, lt := range staged {
		tr, ok := bestMatch(candidates, used,
			func(c *lexicon.Translation) int { return text.Overlap(c.Form, lt.Form) },
			func(c *lexicon.Translation) bool { return c.Form.IsEmpty() },
			lt.Form.IsEmpty())
		if !ok {
			created, err := s.graph.NewTranslation(ex)
			if err != nil {
				return err
			}
			tr = created
		}
		used[tr] = true
		tr.Form = s.mergeText(tr, "translation", tr.Form, lt.Form)
		s.setAtomic(&tr.Type, s.listItem(tr, lexicon.ListTranslationTypes, lt.Type))
		residue.Attach(tr, lt.Residue...)
	}
	return nil
}

// reversal finds or creates the reversal entry a staged reversal names,
// creating its parents first.
func (s *Session) reversal(sn *lexicon.Sense, lr *lift.Reversal) (*lexicon.ReversalEntry, error) {
	var parent *lexicon.ReversalEntry
	if lr.Main != nil {
		p, err := s.reversal(sn, lr.Main)
		if err != nil || p == nil {
			return nil, err
		}
		parent = p
	}
	lang := lr.Type
	if lang == "" {
		tags := lr.Form.Tags()
		if len(tags) == 0 {
			return nil, nil
		}
		lang = tags[0]
	}
	form := lr.Form.String(lang)
	if form == "" {
		form = lr.Form.Best()
	}
	if form == "" {
		return nil, nil
	}
	r := s.graph.FindReversal(lang, form, parent)
	if r == nil {
		m := lr.Form
		if _, ok := m.Get(lang); !ok {
			m = text.NewMulti(lang, form)
		}
		created, err := s.graph.NewReversal(lang, s.prepare(sn, "reversal", m, s.opts.MaxTextLength), parent)
		if err != nil {
			return nil, err
		}
		r = created
	} else {
		r.Form = s.mergeText(r, "reversal", r.Form, lr.Form)
	}
	if lr.GramInfo != nil {
		s.setAtomic(&r.POS, s.listItem(r, lexicon.ListPartsOfSpeech, lr.GramInfo.Value))
	}
	return r, nil
}

// mergeIllustrations merges pictures by file reference.
func (s *Session) mergeIllustrations(sn *lexicon.Sense, staged []*lift.Illustration) error {
	for _, li := range staged {
		if li.Href == "" {
			continue
		}
		idx := slices.IndexFunc(sn.Pictures, func(p *lexicon.Picture) bool { return p.File == li.Href })
		var pic *lexicon.Picture
		if idx >= 0 {
			pic = sn.Pictures[idx]
		} else {
			created, err := s.graph.NewPicture(sn)
			if err != nil {
				return err
			}
			created.File = li.Href
			pic = created
		}
		pic.Caption = s.mergeText(pic, "illustration", pic.Caption, li.Label)
	}
	return nil
}
