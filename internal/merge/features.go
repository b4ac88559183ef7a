package merge

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// featureTables hold feature-system declarations that name a feature or
// type not declared yet, keyed by the missing id. Each is retried when the
// id is declared and the rest are settled by fixupFeatures.
type featureTables struct {
	valuesByFeature map[string][]*lift.RangeElement
	typesByFeature  map[string][]*lexicon.FeatureStructureType
	complexByType   map[string][]*lexicon.FeatureDefinition
}

func newFeatureTables() *featureTables {
	return &featureTables{
		valuesByFeature: make(map[string][]*lift.RangeElement),
		typesByFeature:  make(map[string][]*lexicon.FeatureStructureType),
		complexByType:   make(map[string][]*lexicon.FeatureDefinition),
	}
}

func (t *featureTables) empty() bool {
	return len(t.valuesByFeature) == 0 && len(t.typesByFeature) == 0 && len(t.complexByType) == 0
}

func (s *Session) importFeatureRange(rng *lift.Range) error {
	for _, el := range rng.Elements {
		if el.ID == "" {
			continue
		}
		var err error
		switch rng.ID {
		case lift.RangeFeatureDefinitions:
			err = s.declareFeature(el)
		case lift.RangeFeatureValues:
			err = s.declareValue(el)
		case lift.RangeFeatureTypes:
			err = s.declareType(el)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// elementGUID returns the guid of a range element when the graph can take
// it.
func (s *Session) elementGUID(el *lift.RangeElement) uuid.UUID {
	if g, ok := lift.GUIDFromID(el.GUID); ok && s.graph.IsFree(g) {
		return g
	}
	return uuid.Nil
}

func elementTraitValues(el *lift.RangeElement, name string) []string {
	var out []string
	for _, t := range el.Traits {
		if t.Name == name {
			out = append(out, t.Value)
		}
	}
	return out
}

func (s *Session) declareFeature(el *lift.RangeElement) error {
	kind := lexicon.FeatureClosed
	if v, ok := el.TraitValue(lift.TraitFeatureKind); ok {
		k, known := lexicon.ParseFeatureKind(v)
		if !known {
			s.diagnose(Diagnostic{Kind: KindInvalid, Owner: lift.RangeFeatureDefinitions, OwnerID: el.ID, Field: lift.TraitFeatureKind, Value: v, Message: "unknown feature kind"})
		}
		kind = k
	}
	f := s.graph.Features.Feature(el.ID)
	if f == nil {
		created, err := s.graph.NewFeature(s.elementGUID(el), el.ID, kind)
		if err != nil {
			return err
		}
		f = created
	}
	f.Name = s.mergeText(f, "label", f.Name, el.Label)
	f.Abbrev = s.mergeText(f, "abbrev", f.Abbrev, el.Abbrev)
	residue.Attach(f, el.Residue...)
	if f.Variant == lexicon.FeatureComplex {
		if tid, ok := el.TraitValue(lift.TraitFeatureType); ok && tid != "" {
			if t := s.graph.Features.Type(tid); t != nil {
				f.Type = t
			} else {
				s.features.complexByType[tid] = append(s.features.complexByType[tid], f)
			}
		}
	}
	return s.featureDeclared(f)
}

// featureDeclared retries what was waiting for f.
func (s *Session) featureDeclared(f *lexicon.FeatureDefinition) error {
	values := s.features.valuesByFeature[f.ID]
	delete(s.features.valuesByFeature, f.ID)
	for _, el := range values {
		if err := s.declareValue(el); err != nil {
			return err
		}
	}
	for _, t := range s.features.typesByFeature[f.ID] {
		if !t.Allows(f) {
			t.Features = append(t.Features, f)
		}
	}
	delete(s.features.typesByFeature, f.ID)
	return nil
}

func (s *Session) declareValue(el *lift.RangeElement) error {
	fid := el.Parent
	if fid == "" {
		fid, _ = el.TraitValue(lift.TraitFeature)
	}
	if fid == "" {
		s.diagnose(Diagnostic{Kind: KindInvalid, Owner: lift.RangeFeatureValues, OwnerID: el.ID, Message: "feature value names no feature"})
		return nil
	}
	f := s.graph.Features.Feature(fid)
	if f == nil {
		s.features.valuesByFeature[fid] = append(s.features.valuesByFeature[fid], el)
		return nil
	}
	if f.Variant != lexicon.FeatureClosed {
		s.diagnoseOn(f, KindInvalid, "value", el.ID, errors.NewValidation("feature", fid+" is not a closed feature"))
		return nil
	}
	v := f.Value(el.ID)
	if v == nil {
		created, err := s.graph.NewSymbolValue(f, s.elementGUID(el), el.ID)
		if err != nil {
			return err
		}
		v = created
	}
	v.Name = s.mergeText(v, "label", v.Name, el.Label)
	v.Abbrev = s.mergeText(v, "abbrev", v.Abbrev, el.Abbrev)
	residue.Attach(v, el.Residue...)
	return nil
}

func (s *Session) declareType(el *lift.RangeElement) error {
	t := s.graph.Features.Type(el.ID)
	if t == nil {
		created, err := s.graph.NewFeatureType(s.elementGUID(el), el.ID)
		if err != nil {
			return err
		}
		t = created
	}
	t.Name = s.mergeText(t, "label", t.Name, el.Label)
	t.Abbrev = s.mergeText(t, "abbrev", t.Abbrev, el.Abbrev)
	residue.Attach(t, el.Residue...)
	for _, fid := range elementTraitValues(el, lift.TraitFeature) {
		f := s.graph.Features.Feature(fid)
		if f == nil {
			s.features.typesByFeature[fid] = append(s.features.typesByFeature[fid], t)
			continue
		}
		if !t.Allows(f) {
			t.Features = append(t.Features, f)
		}
	}
	for _, f := range s.features.complexByType[el.ID] {
		f.Type = t
	}
	delete(s.features.complexByType, el.ID)
	return nil
}

// fixupFeatures declares every feature and type still missing so the
// declarations waiting for them can complete. Missing features become
// closed features.
func (s *Session) fixupFeatures() error {
	if s.features.empty() {
		return nil
	}
	ids := slices.Sorted(maps.Keys(s.features.valuesByFeature))
	for id := range s.features.typesByFeature {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		f, err := s.graph.NewFeature(uuid.Nil, id, lexicon.FeatureClosed)
		if err != nil {
			return err
		}
		f.Name.SetString(s.opts.AnalysisLocale, id)
		s.report.ListItemsCreated = append(s.report.ListItemsCreated, ListItem{List: lift.RangeFeatureDefinitions, Label: id, GUID: f.GUID().String()})
		if err := s.featureDeclared(f); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.features.complexByType)) {
		t, err := s.graph.NewFeatureType(uuid.Nil, id)
		if err != nil {
			return err
		}
		t.Name.SetString(s.opts.AnalysisLocale, id)
		s.report.ListItemsCreated = append(s.report.ListItemsCreated, ListItem{List: lift.RangeFeatureTypes, Label: id, GUID: t.GUID().String()})
		for _, f := range s.features.complexByType[id] {
			f.Type = t
		}
	}
	clear(s.features.complexByType)
	return nil
}
