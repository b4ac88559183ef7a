package merge

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// stagedGUID returns the guid a staged object names, from its guid
// attribute or else from its id.
func stagedGUID(guid, id string) (uuid.UUID, bool) {
	if g, err := uuid.Parse(strings.TrimSpace(guid)); err == nil && g != uuid.Nil {
		return g, true
	}
	return lift.GUIDFromID(id)
}

func stagedKey(id, guid string) string {
	if id != "" {
		return id
	}
	return guid
}

// mergeEntry runs one staged entry through identification and merging.
func (s *Session) mergeEntry(le *lift.Entry) error {
	existing, guid := s.identifyEntry(le)
	if le.DateDeleted != "" {
		s.deleteEntry(le, existing)
		return nil
	}

	outcome := EntryOutcome{ID: le.ID}
	var e *lexicon.Entry
	fresh := false
	switch {
	case existing == nil:
		created, err := s.graph.NewEntry(guid)
		if err != nil {
			return err
		}
		e, fresh = created, true
		outcome.State = Created
		s.report.EntriesAdded++
	case s.inSync(le, existing):
		s.skipEntry(le, existing)
		return nil
	default:
		s.touched[existing] = true
		e = existing
		outcome.State = Merged
		if s.opts.Policy == KeepBoth {
			if field := s.entryConflict(existing, le); field != "" {
				dup, err := s.duplicateEntry(existing, field)
				if err != nil {
					return err
				}
				e, fresh = dup, true
				outcome.State = Created
			}
		}
		if outcome.State == Merged {
			s.report.EntriesMerged++
		} else {
			s.report.EntriesAdded++
		}
	}

	s.touched[e] = true
	le.Resolved = e
	outcome.GUID = e.GUID().String()
	s.logger.Debug("entry", "id", le.ID, "guid", outcome.GUID, "state", outcome.State)
	if err := s.applyEntry(e, le, fresh); err != nil {
		return err
	}
	s.report.Entries = append(s.report.Entries, outcome)
	return nil
}

// identifyEntry finds the existing entry a staged entry refers to. When the
// staged guid cannot be used for a new entry the returned guid is nil.
func (s *Session) identifyEntry(le *lift.Entry) (*lexicon.Entry, uuid.UUID) {
	guid, ok := stagedGUID(le.GUID, le.ID)
	if ok {
		if obj, found := s.graph.Lookup(guid); found {
			if e, isEntry := obj.(*lexicon.Entry); isEntry {
				return e, guid
			}
			s.identityConflict(le, guid, "guid belongs to a "+obj.Kind().String())
			return nil, uuid.Nil
		}
		if s.graph.IsDeleted(guid) {
			if le.DateDeleted == "" {
				s.identityConflict(le, guid, "guid belongs to a deleted object")
			}
			return nil, uuid.Nil
		}
		return nil, guid
	}
	if obj, found := s.originals[le.ID]; found && le.ID != "" {
		if e, isEntry := obj.(*lexicon.Entry); isEntry && s.live(e) {
			return e, uuid.Nil
		}
	}
	return nil, uuid.Nil
}

func (s *Session) identityConflict(le *lift.Entry, guid uuid.UUID, reason string) {
	s.diagnose(Diagnostic{
		Kind:    KindIdentityConflict,
		Owner:   lexicon.KindEntry.String(),
		OwnerID: stagedKey(le.ID, le.GUID),
		Field:   "guid",
		Value:   guid.String(),
		Err:     &errors.IdentityConflictError{GUID: guid.String(), ID: le.ID, Reason: reason},
	})
}

// live reports whether obj is still in the graph.
func (s *Session) live(obj lexicon.Object) bool {
	cur, ok := s.graph.Lookup(obj.GUID())
	return ok && cur == obj
}

// deleteEntry applies a staged dateDeleted. KeepOld keeps an entry modified
// after the deletion date.
func (s *Session) deleteEntry(le *lift.Entry, existing *lexicon.Entry) {
	if existing == nil {
		return
	}
	if s.opts.Policy == KeepOld {
		if deleted, ok := s.parseDate(existing, "dateDeleted", le.DateDeleted); ok && existing.Modified().After(deleted) {
			s.touched[existing] = true
			s.diagnoseOn(existing, KindDataConflict, "dateDeleted", le.DateDeleted,
				&errors.DataConflictError{Owner: existing.GUID().String(), Field: "dateDeleted"})
			return
		}
	}
	s.logger.Debug("entry deleted", "id", le.ID, "guid", existing.GUID())
	delete(s.touched, existing)
	s.graph.DeleteEntry(existing)
	s.report.EntriesDeleted++
}

// inSync reports whether the staged entry can be skipped because its
// modification time matches the existing entry's.
func (s *Session) inSync(le *lift.Entry, existing *lexicon.Entry) bool {
	if !s.opts.TrustModTimes || le.DateModified == "" {
		return false
	}
	t, err := lift.ParseDate(le.DateModified)
	return err == nil && lift.SameSecond(t, existing.Modified())
}

// skipEntry maps the ids of an entry left as it is, so that relations from
// other entries can still reach it and its senses.
func (s *Session) skipEntry(le *lift.Entry, e *lexicon.Entry) {
	s.touched[e] = true
	le.Resolved = e
	s.ids.Put(stagedKey(le.ID, le.GUID), e)
	var walk func([]*lift.Sense)
	walk = func(ss []*lift.Sense) {
		for _, ls := range ss {
			if g, ok := stagedGUID(ls.GUID, ls.ID); ok {
				if sn, found := s.graph.Sense(g); found {
					ls.Resolved = sn
					s.ids.Put(stagedKey(ls.ID, ls.GUID), sn)
				}
			}
			walk(ls.Subsenses)
		}
	}
	walk(le.Senses)
	s.report.EntriesSkipped++
	s.report.Entries = append(s.report.Entries, EntryOutcome{ID: le.ID, GUID: e.GUID().String(), State: NotSeen})
}

// entryConflict returns the first entry-level field whose existing and
// imported values differ, or "".
func (s *Session) entryConflict(e *lexicon.Entry, le *lift.Entry) string {
	if e.LexemeForm != nil && !le.LexicalUnit.IsEmpty() {
		form, _ := stripForms(le.LexicalUnit, e.LexemeForm.MorphType)
		if text.Conflicts(e.LexemeForm.Form, form) {
			return "lexical-unit"
		}
	}
	if text.Conflicts(e.CitationForm, le.Citation) {
		return "citation"
	}
	for _, n := range le.Notes {
		if text.Conflicts(e.Notes[n.Type], n.Content) {
			return "note"
		}
	}
	for _, f := range []struct {
		name string
		cur  text.Multi
	}{
		{lift.FieldLiteralMeaning, e.LiteralMeaning},
		{lift.FieldSummaryDefinition, e.SummaryDefinition},
	} {
		if lf := le.Field(f.name); lf != nil && text.Conflicts(f.cur, lf.Content) {
			return f.name
		}
	}
	return ""
}

func (s *Session) duplicateEntry(original *lexicon.Entry, field string) (*lexicon.Entry, error) {
	dup, err := s.graph.NewEntry(uuid.Nil)
	if err != nil {
		return nil, err
	}
	s.duplicates[dup] = true
	s.report.Duplications = append(s.report.Duplications, Duplication{
		Kind:      lexicon.KindEntry.String(),
		Original:  original.GUID().String(),
		Duplicate: dup.GUID().String(),
		Field:     field,
	})
	s.diagnoseOn(original, KindDataConflict, field, dup.GUID().String(),
		&errors.DataConflictError{Owner: original.GUID().String(), Field: field})
	return dup, nil
}

// applyEntry copies the staged entry into e. fresh is set when e was
// created for this staged entry.
func (s *Session) applyEntry(e *lexicon.Entry, le *lift.Entry, fresh bool) error {
	s.ids.Put(stagedKey(le.ID, le.GUID), e)
	if !s.duplicates[e] {
		s.recordOriginalID(e, stagedKey(le.ID, le.GUID))
	}
	s.applyDates(e, &le.Extensible, fresh)
	if le.Order > 0 && (e.HomographNumber == 0 || s.opts.Policy.overwrites()) {
		e.HomographNumber = le.Order
	}
	if err := s.applyLexemeForm(e, le); err != nil {
		return err
	}
	e.CitationForm = s.mergeText(e, "citation", e.CitationForm, le.Citation)
	for _, n := range le.Notes {
		s.applyNote(e, e.Notes, n)
	}
	if err := s.mergePronunciations(e, le.Pronunciations); err != nil {
		return err
	}
	if err := s.mergeVariants(e, le.Variants); err != nil {
		return err
	}
	if err := s.mergeEtymologies(e, le.Etymologies); err != nil {
		return err
	}

	for _, f := range le.Fields {
		switch f.Type {
		case lift.FieldLiteralMeaning:
			e.LiteralMeaning = s.mergeText(e, f.Type, e.LiteralMeaning, f.Content)
		case lift.FieldSummaryDefinition:
			e.SummaryDefinition = s.mergeText(e, f.Type, e.SummaryDefinition, f.Content)
		case lift.FieldImportResidue:
			e.ImportResidue = s.mergeText(e, f.Type, e.ImportResidue, f.Content)
		default:
			if !s.applyCustomField(e, f) {
				s.keepField(e, f)
			}
		}
	}

	var rest []*lift.Trait
	var publications []string
	for _, t := range le.Traits {
		switch t.Name {
		case lift.TraitMorphType:
		case lift.TraitExcludeAsHeadword:
			if v := parseBool(t.Value); v || s.opts.Policy.overwrites() {
				e.ExcludeAsHeadword = v
			}
		case lift.TraitDoNotPublishIn:
			publications = append(publications, t.Value)
		default:
			rest = append(rest, t)
		}
	}
	e.DoNotPublishIn = s.mergeRefs(e.DoNotPublishIn, s.listItems(e, lexicon.ListPublications, publications))
	for _, t := range s.applyCustomTraits(e, rest) {
		s.keepTrait(e, t)
	}
	s.keepExtras(e, &le.Extensible)

	if err := s.mergeSenses(e, le.Senses, fresh); err != nil {
		return err
	}
	s.queueRelations(e, le.Relations)
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// applyLexemeForm merges the lexical unit and morph type into the lexeme
// form, creating the allomorph when needed.
func (s *Session) applyLexemeForm(e *lexicon.Entry, le *lift.Entry) error {
	var mt *lexicon.Possibility
	if label, ok := le.TraitValue(lift.TraitMorphType); ok {
		mt = s.morphType(e, label)
	}
	if le.LexicalUnit.IsEmpty() && mt == nil {
		return nil
	}
	if e.LexemeForm == nil {
		a, err := s.graph.NewAllomorph(e, uuid.Nil)
		if err != nil {
			return err
		}
		e.LexemeForm = a
	}
	lf := e.LexemeForm
	if mt == nil {
		mt = lf.MorphType
	}
	form, inferred := stripForms(le.LexicalUnit, mt)
	lf.Form = s.mergeText(e, "lexical-unit", lf.Form, form)
	s.applyMorphType(lf, mt, inferred)
	return nil
}

// applyMorphType sets the morph type of a form: the named one, or the one
// its markers imply when it has none yet.
func (s *Session) applyMorphType(a *lexicon.Allomorph, named *lexicon.Possibility, inferred string) {
	if named != nil {
		s.setAtomic(&a.MorphType, named)
		return
	}
	if a.MorphType == nil && inferred != "" {
		a.MorphType = s.lists.MorphType(inferred)
	}
}

// applyNote merges a typed note into notes. Note annotations and unknown
// children have no place of their own and go to the owner's residue.
func (s *Session) applyNote(owner lexicon.ResidueHolder, notes lexicon.Notes, n *lift.Note) {
	notes.Set(n.Type, s.mergeText(owner, "note", notes[n.Type], n.Content))
	for _, f := range n.Fields {
		s.keepField(owner, f)
	}
	for _, t := range n.Traits {
		s.keepTrait(owner, t)
	}
	s.keepExtras(owner, &n.Extensible)
}

func mediaOverlap(existing []lexicon.Media, staged []*lift.Media) int {
	n := 0
	for _, m := range staged {
		if slices.ContainsFunc(existing, func(x lexicon.Media) bool { return x.Href == m.Href }) {
			n++
		}
	}
	return n
}

// mergePronunciations matches staged pronunciations to those of e by best
// overlap of form and media.
func (s *Session) mergePronunciations(e *lexicon.Entry, staged []*lift.Pronunciation) error {
	candidates := slices.Clone(e.Pronunciations)
	used := make(map[*lexicon.Pronunciation]bool)
	for _, lp := range staged {
		p, ok := bestMatch(candidates, used,
			func(c *lexicon.Pronunciation) int {
				return text.Overlap(c.Form, lp.Form) + mediaOverlap(c.Media, lp.Media)
			},
			func(c *lexicon.Pronunciation) bool { return c.Form.IsEmpty() && len(c.Media) == 0 },
			lp.Form.IsEmpty() && len(lp.Media) == 0)
		if !ok {
			created, err := s.graph.NewPronunciation(e)
			if err != nil {
				return err
			}
			p = created
		}
		used[p] = true
		p.Form = s.mergeText(p, "pronunciation", p.Form, lp.Form)
		for _, m := range lp.Media {
			s.mergeMedia(p, m)
		}
		for _, f := range lp.Fields {
			switch f.Type {
			case lift.FieldCVPattern:
				p.CVPattern = s.mergeText(p, f.Type, p.CVPattern, f.Content)
			case lift.FieldTone:
				p.Tone = s.mergeText(p, f.Type, p.Tone, f.Content)
			default:
				s.keepField(p, f)
			}
		}
		for _, t := range lp.Traits {
			if t.Name == lift.TraitLocation {
				s.setAtomic(&p.Location, s.listItem(p, lexicon.ListLocations, t.Value))
				continue
			}
			s.keepTrait(p, t)
		}
		s.keepExtras(p, &lp.Extensible)
	}
	return nil
}

func (s *Session) mergeMedia(p *lexicon.Pronunciation, m *lift.Media) {
	for i := range p.Media {
		if p.Media[i].Href == m.Href {
			p.Media[i].Label = s.mergeText(p, "media", p.Media[i].Label, m.Label)
			return
		}
	}
	if m.Href == "" {
		return
	}
	p.Media = append(p.Media, lexicon.Media{
		Href:  m.Href,
		Label: s.prepare(p, "media", m.Label, s.opts.MaxTextLength),
	})
}

// mergeVariants merges staged variants into the alternate forms of e.
func (s *Session) mergeVariants(e *lexicon.Entry, staged []*lift.Variant) error {
	candidates := slices.Clone(e.AlternateForms)
	used := make(map[*lexicon.Allomorph]bool)
	for _, lv := range staged {
		var mt *lexicon.Possibility
		if label, ok := lv.TraitValue(lift.TraitMorphType); ok {
			mt = s.morphType(e, label)
		}
		form, inferred := stripForms(lv.Form, mt)
		a, ok := bestMatch(candidates, used,
			func(c *lexicon.Allomorph) int { return text.Overlap(c.Form, form) },
			func(c *lexicon.Allomorph) bool { return c.Form.IsEmpty() },
			form.IsEmpty())
		if !ok {
			created, err := s.graph.NewAllomorph(e, uuid.Nil)
			if err != nil {
				return err
			}
			e.AlternateForms = append(e.AlternateForms, created)
			a = created
		}
		used[a] = true
		a.Form = s.mergeText(a, "variant", a.Form, form)
		s.applyMorphType(a, mt, inferred)

		var rest []*lift.Trait
		for _, t := range lv.Traits {
			switch t.Name {
			case lift.TraitMorphType:
			case lift.TraitEnvironment:
				env, err := s.graph.Environment(t.Value)
				if err != nil {
					return err
				}
				if !slices.Contains(a.Environments, env) {
					a.Environments = append(a.Environments, env)
				}
			default:
				rest = append(rest, t)
			}
		}
		for _, t := range s.applyCustomTraits(a, rest) {
			s.keepTrait(a, t)
		}
		for _, f := range lv.Fields {
			if !s.applyCustomField(a, f) {
				s.keepField(a, f)
			}
		}
		if lv.Ref != "" {
			residue.SetOriginalID(a, lv.Ref)
		}
		s.keepExtras(a, &lv.Extensible)
		if err := s.mergePronunciations(e, lv.Pronunciations); err != nil {
			return err
		}
		s.queueRelations(e, lv.Relations)
	}
	return nil
}

// mergeEtymologies merges the first staged etymology into the etymology of
// e. An entry holds one etymology, so further ones are kept as residue.
func (s *Session) mergeEtymologies(e *lexicon.Entry, staged []*lift.Etymology) error {
	if len(staged) == 0 {
		return nil
	}
	let := staged[0]
	if e.Etymology == nil {
		if _, err := s.graph.NewEtymology(e); err != nil {
			return err
		}
	}
	et := e.Etymology
	et.Type = s.mergeString(et.Type, let.Type)
	et.Source = s.mergeString(et.Source, let.Source)
	et.Form = s.mergeText(et, "etymology", et.Form, let.Form)
	et.Gloss = s.mergeText(et, "etymology-gloss", et.Gloss, let.Gloss)
	for _, f := range let.Fields {
		s.keepField(et, f)
	}
	for _, t := range let.Traits {
		s.keepTrait(et, t)
	}
	s.keepExtras(et, &let.Extensible)
	for _, extra := range staged[1:] {
		residue.Attach(e, lift.Fragment(func(w *lift.Writer) { w.Etymology(extra) }))
	}
	return nil
}
