package merge

import (
	"strings"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/featstruct"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// pendingMSA is a grammatical-info element whose feature structures name
// features not declared yet.
type pendingMSA struct {
	sense *lexicon.Sense
	gi    *lift.GramInfo
}

// msaTypeAliases maps the type names producers write to MSA types.
var msaTypeAliases = map[string]string{
	"stem":              lexicon.MSAStem,
	"unclassifiedaffix": lexicon.MSAUnclassifiedAffix,
	"unclassified":      lexicon.MSAUnclassifiedAffix,
	"affix":             lexicon.MSAUnclassifiedAffix,
	"inflaffix":         lexicon.MSAInflAffix,
	"inflectional":      lexicon.MSAInflAffix,
	"derivaffix":        lexicon.MSADerivAffix,
	"derivational":      lexicon.MSADerivAffix,
	"derivstepaffix":    lexicon.MSADerivStep,
	"derivstep":         lexicon.MSADerivStep,
}

// gramInfoTraits are the traits a grammatical-info element may carry.
var gramInfoTraits = map[string]bool{
	lift.TraitMSAType:              true,
	lift.TraitInflectionClass:      true,
	lift.TraitSlot:                 true,
	lift.TraitFeatures:             true,
	lift.TraitExceptionFeature:     true,
	lift.TraitToPartOfSpeech:       true,
	lift.TraitFromInflectionClass:  true,
	lift.TraitToInflectionClass:    true,
	lift.TraitFromFeatures:         true,
	lift.TraitToFeatures:           true,
	lift.TraitFromExceptionFeature: true,
	lift.TraitToExceptionFeature:   true,
}

// mergeGramInfo gives sn the MSA described by lg. Policies that keep
// existing values leave an assigned MSA alone.
func (s *Session) mergeGramInfo(sn *lexicon.Sense, lg *lift.GramInfo) {
	if sn.MSA != nil && !s.opts.Policy.overwrites() {
		return
	}
	gi, pending := s.gramInfo(sn, lg, false)
	if pending {
		s.msas = append(s.msas, &pendingMSA{sense: sn, gi: lg})
		return
	}
	s.assignMSA(sn, gi)
}

// resolvePendingMSAs retries the grammatical info deferred during the entry
// pass. Features still unknown are reported and left unset.
func (s *Session) resolvePendingMSAs() {
	for _, p := range s.msas {
		if !s.live(p.sense) {
			continue
		}
		gi, _ := s.gramInfo(p.sense, p.gi, true)
		s.assignMSA(p.sense, gi)
	}
	s.msas = nil
}

func (s *Session) assignMSA(sn *lexicon.Sense, gi lexicon.GramInfo) {
	e := sn.Entry()
	if e == nil || gi == nil {
		return
	}
	m, created, err := s.graph.EnsureMSA(e, gi)
	if err != nil {
		s.diagnoseOn(sn, KindInvalid, "grammatical-info", gi.MSAType(), err)
		return
	}
	if created {
		s.logger.Debug("msa created", "entry", e.GUID(), "type", gi.MSAType())
	}
	if sn.MSA != nil && sn.MSA != m {
		s.replacedMSAs[sn.MSA] = true
	}
	sn.MSA = m
}

// gramInfo builds the grammatical content of lg. When a feature structure
// names something undeclared and final is not set, it reports pending and
// builds nothing.
func (s *Session) gramInfo(sn *lexicon.Sense, lg *lift.GramInfo, final bool) (lexicon.GramInfo, bool) {
	features := make(map[string]*lexicon.FeatureStructure)
	for _, name := range []string{lift.TraitFeatures, lift.TraitFromFeatures, lift.TraitToFeatures} {
		fs, pending := s.parseFeatures(sn, name, lg.TraitValue(name), final)
		if pending {
			return nil, true
		}
		features[name] = fs
	}

	typ := msaTypeAliases[strings.ToLower(strings.TrimSpace(lg.TraitValue(lift.TraitMSAType)))]
	if typ == "" {
		if raw := lg.TraitValue(lift.TraitMSAType); raw != "" {
			s.diagnoseOn(sn, KindInvalid, lift.TraitMSAType, raw, errors.NewValidation("type", "unknown grammatical-info type"))
		}
		typ = lexicon.MSAStem
		if e := sn.Entry(); e != nil && e.LexemeForm != nil && lexicon.IsAffixType(e.LexemeForm.MorphType) {
			typ = lexicon.MSAUnclassifiedAffix
		}
	}
	item := func(list lexicon.ListID, trait string) *lexicon.Possibility {
		return s.listItem(sn, list, lg.TraitValue(trait))
	}
	items := func(list lexicon.ListID, trait string) []*lexicon.Possibility {
		return s.listItems(sn, list, lg.TraitValues(trait))
	}
	pos := s.listItem(sn, lexicon.ListPartsOfSpeech, lg.Value)

	for _, t := range lg.Traits {
		if !gramInfoTraits[t.Name] {
			s.keepTrait(sn, t)
		}
	}
	residue.Attach(sn, lg.Residue...)

	switch typ {
	case lexicon.MSAUnclassifiedAffix:
		return &lexicon.UnclassifiedAffixInfo{POS: pos}, false
	case lexicon.MSAInflAffix:
		return &lexicon.InflAffixInfo{
			POS:          pos,
			Slots:        items(lexicon.ListInflectionSlot, lift.TraitSlot),
			Features:     features[lift.TraitFeatures],
			ProdRestrict: items(lexicon.ListExceptionFeature, lift.TraitExceptionFeature),
		}, false
	case lexicon.MSADerivAffix:
		return &lexicon.DerivAffixInfo{
			FromPOS:             pos,
			ToPOS:               item(lexicon.ListPartsOfSpeech, lift.TraitToPartOfSpeech),
			FromInflectionClass: item(lexicon.ListInflectionClass, lift.TraitFromInflectionClass),
			ToInflectionClass:   item(lexicon.ListInflectionClass, lift.TraitToInflectionClass),
			FromFeatures:        features[lift.TraitFromFeatures],
			ToFeatures:          features[lift.TraitToFeatures],
			FromProdRestrict:    items(lexicon.ListExceptionFeature, lift.TraitFromExceptionFeature),
			ToProdRestrict:      items(lexicon.ListExceptionFeature, lift.TraitToExceptionFeature),
		}, false
	case lexicon.MSADerivStep:
		return &lexicon.DerivStepInfo{
			POS:             pos,
			InflectionClass: item(lexicon.ListInflectionClass, lift.TraitInflectionClass),
		}, false
	}
	return &lexicon.StemInfo{
		POS:             pos,
		InflectionClass: item(lexicon.ListInflectionClass, lift.TraitInflectionClass),
		Features:        features[lift.TraitFeatures],
		ProdRestrict:    items(lexicon.ListExceptionFeature, lift.TraitExceptionFeature),
	}, false
}

// parseFeatures parses a feature-structure trait. A malformed or, when
// final, unresolvable expression is reported and kept as residue on the
// sense; the feature is left unset.
func (s *Session) parseFeatures(sn *lexicon.Sense, name, value string, final bool) (*lexicon.FeatureStructure, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}
	fs, err := featstruct.ParseAndResolve(value, s.graph.Features)
	if err == nil {
		return fs, false
	}
	var fe *featstruct.Error
	if !final && errors.As(err, &fe) && fe.IsUnresolved() {
		return nil, true
	}
	s.diagnoseOn(sn, KindParse, name, value, err)
	residue.Attach(sn, lift.Fragment(func(w *lift.Writer) { w.TraitValue(name, value) }))
	return nil, false
}
