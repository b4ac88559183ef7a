package lexicon

import (
	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/text"
)

// FeatureKind distinguishes the variants of a feature definition.
type FeatureKind int

// Feature definition kinds.
const (
	// FeatureClosed takes one of a closed set of symbolic values.
	FeatureClosed FeatureKind = iota
	// FeatureOpen takes free text.
	FeatureOpen
	// FeatureComplex takes a nested feature structure.
	FeatureComplex
)

var featureKindNames = [...]string{"closed", "open", "complex"}

func (k FeatureKind) String() string {
	if k >= 0 && int(k) < len(featureKindNames) {
		return featureKindNames[k]
	}
	return "unknown"
}

// ParseFeatureKind decodes a kind name.
func ParseFeatureKind(s string) (FeatureKind, bool) {
	for i, n := range featureKindNames {
		if n == s {
			return FeatureKind(i), true
		}
	}
	return FeatureClosed, false
}

// FeatureDefinition declares a feature such as "gender".
type FeatureDefinition struct {
	base

	// ID is the identifier used in feature expressions.
	ID      string
	Name    text.Multi
	Abbrev  text.Multi
	Variant FeatureKind

	// Values holds the symbolic values of a closed feature.
	Values []*SymbolValue
	// Type is the structure type embedded by a complex feature.
	Type *FeatureStructureType
}

func (*FeatureDefinition) Kind() Kind { return KindFeature }

// Value returns the symbolic value with the given id.
func (f *FeatureDefinition) Value(id string) *SymbolValue {
	for _, v := range f.Values {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// SymbolValue is one value of a closed feature, such as "f" for gender.
type SymbolValue struct {
	base

	ID      string
	Name    text.Multi
	Abbrev  text.Multi
	Feature *FeatureDefinition
}

func (*SymbolValue) Kind() Kind { return KindSymbolValue }

// FeatureStructureType groups the features a typed structure may carry.
type FeatureStructureType struct {
	base

	ID       string
	Name     text.Multi
	Abbrev   text.Multi
	Features []*FeatureDefinition
}

func (*FeatureStructureType) Kind() Kind { return KindFeatureType }

// Allows reports whether f belongs to the type.
func (t *FeatureStructureType) Allows(f *FeatureDefinition) bool {
	for _, x := range t.Features {
		if x == f {
			return true
		}
	}
	return false
}

// FeatureSpec is one (feature, value) pair. Exactly one of Value, Text and
// Complex is set, according to the feature's kind.
type FeatureSpec struct {
	Feature *FeatureDefinition
	Value   *SymbolValue
	Text    string
	Complex *FeatureStructure
}

// FeatureStructure is an ordered list of feature specifications with an
// optional type. It is a value owned by whatever holds it and has no guid.
type FeatureStructure struct {
	Type  *FeatureStructureType
	Specs []FeatureSpec
}

// IsEmpty reports whether the structure holds no specifications.
func (fs *FeatureStructure) IsEmpty() bool {
	return fs == nil || (fs.Type == nil && len(fs.Specs) == 0)
}

// Lookup returns the specification for f.
func (fs *FeatureStructure) Lookup(f *FeatureDefinition) (FeatureSpec, bool) {
	if fs == nil {
		return FeatureSpec{}, false
	}
	for _, s := range fs.Specs {
		if s.Feature == f {
			return s, true
		}
	}
	return FeatureSpec{}, false
}

// Equal reports whether both structures have the same type and the same
// specifications in any order. Nil and empty structures are equal.
func (fs *FeatureStructure) Equal(o *FeatureStructure) bool {
	if fs.IsEmpty() || o.IsEmpty() {
		return fs.IsEmpty() && o.IsEmpty()
	}
	if fs.Type != o.Type || len(fs.Specs) != len(o.Specs) {
		return false
	}
	for _, s := range fs.Specs {
		t, ok := o.Lookup(s.Feature)
		if !ok || s.Value != t.Value || s.Text != t.Text || !s.Complex.Equal(t.Complex) {
			return false
		}
	}
	return true
}

// FeatureSystem is the catalog of feature definitions and structure types.
type FeatureSystem struct {
	Features []*FeatureDefinition
	Types    []*FeatureStructureType
}

func newFeatureSystem() *FeatureSystem {
	return &FeatureSystem{}
}

// Feature returns the definition with the given id.
func (s *FeatureSystem) Feature(id string) *FeatureDefinition {
	for _, f := range s.Features {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Type returns the structure type with the given id.
func (s *FeatureSystem) Type(id string) *FeatureStructureType {
	for _, t := range s.Types {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Symbol returns value valueID of feature featureID.
func (s *FeatureSystem) Symbol(featureID, valueID string) *SymbolValue {
	if f := s.Feature(featureID); f != nil {
		return f.Value(valueID)
	}
	return nil
}

// NewFeature declares a feature. A nil guid requests a fresh one.
func (g *Graph) NewFeature(guid uuid.UUID, id string, kind FeatureKind) (*FeatureDefinition, error) {
	if g.Features.Feature(id) != nil {
		return nil, &errors.IdentityConflictError{ID: id, Reason: "feature already declared"}
	}
	guid, err := g.guidOrNew(guid)
	if err != nil {
		return nil, err
	}
	f := &FeatureDefinition{base: base{guid: guid}, ID: id, Variant: kind}
	if err := g.Register(f); err != nil {
		return nil, err
	}
	g.Features.Features = append(g.Features.Features, f)
	return f, nil
}

// NewSymbolValue adds a value to a closed feature.
func (g *Graph) NewSymbolValue(f *FeatureDefinition, guid uuid.UUID, id string) (*SymbolValue, error) {
	if f.Variant != FeatureClosed {
		return nil, errors.NewValidation("feature", f.ID+" is not a closed feature")
	}
	if f.Value(id) != nil {
		return nil, &errors.IdentityConflictError{ID: f.ID + ":" + id, Reason: "value already declared"}
	}
	guid, err := g.guidOrNew(guid)
	if err != nil {
		return nil, err
	}
	v := &SymbolValue{base: base{guid: guid}, ID: id, Feature: f}
	if err := g.Register(v); err != nil {
		return nil, err
	}
	f.Values = append(f.Values, v)
	return v, nil
}

// NewFeatureType declares a feature structure type.
func (g *Graph) NewFeatureType(guid uuid.UUID, id string) (*FeatureStructureType, error) {
	if g.Features.Type(id) != nil {
		return nil, &errors.IdentityConflictError{ID: id, Reason: "feature type already declared"}
	}
	guid, err := g.guidOrNew(guid)
	if err != nil {
		return nil, err
	}
	t := &FeatureStructureType{base: base{guid: guid}, ID: id}
	if err := g.Register(t); err != nil {
		return nil, err
	}
	g.Features.Types = append(g.Features.Types, t)
	return t, nil
}
