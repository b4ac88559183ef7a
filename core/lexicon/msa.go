package lexicon

// GramInfo is the grammatical content of an MSA. The set of implementations
// is closed: StemInfo, UnclassifiedAffixInfo, InflAffixInfo, DerivAffixInfo
// and DerivStepInfo.
type GramInfo interface {
	// MSAType returns the LIFT grammatical-info type name.
	MSAType() string
	gramInfo()
}

// MSA type names as written in the grammatical-info "type" trait.
const (
	MSAStem              = "stem"
	MSAUnclassifiedAffix = "unclassifiedAffix"
	MSAInflAffix         = "inflAffix"
	MSADerivAffix        = "derivAffix"
	MSADerivStep         = "derivStepAffix"
)

// StemInfo describes a stem or root.
type StemInfo struct {
	POS             *Possibility
	InflectionClass *Possibility
	Features        *FeatureStructure
	ProdRestrict    []*Possibility
}

// UnclassifiedAffixInfo describes an affix whose function is not analysed.
type UnclassifiedAffixInfo struct {
	POS *Possibility
}

// InflAffixInfo describes an inflectional affix.
type InflAffixInfo struct {
	POS          *Possibility
	Slots        []*Possibility
	Features     *FeatureStructure
	ProdRestrict []*Possibility
}

// DerivAffixInfo describes a derivational affix.
type DerivAffixInfo struct {
	FromPOS             *Possibility
	ToPOS               *Possibility
	FromInflectionClass *Possibility
	ToInflectionClass   *Possibility
	FromFeatures        *FeatureStructure
	ToFeatures          *FeatureStructure
	FromProdRestrict    []*Possibility
	ToProdRestrict      []*Possibility
}

// DerivStepInfo describes a derivational step.
type DerivStepInfo struct {
	POS             *Possibility
	InflectionClass *Possibility
}

func (*StemInfo) MSAType() string              { return MSAStem }
func (*UnclassifiedAffixInfo) MSAType() string { return MSAUnclassifiedAffix }
func (*InflAffixInfo) MSAType() string         { return MSAInflAffix }
func (*DerivAffixInfo) MSAType() string        { return MSADerivAffix }
func (*DerivStepInfo) MSAType() string         { return MSADerivStep }

func (*StemInfo) gramInfo()              {}
func (*UnclassifiedAffixInfo) gramInfo() {}
func (*InflAffixInfo) gramInfo()         {}
func (*DerivAffixInfo) gramInfo()        {}
func (*DerivStepInfo) gramInfo()         {}

// MainPOS returns the part of speech that best labels the analysis: the POS,
// or for derivational affixes the "to" POS.
func MainPOS(gi GramInfo) *Possibility {
	switch v := gi.(type) {
	case *StemInfo:
		return v.POS
	case *UnclassifiedAffixInfo:
		return v.POS
	case *InflAffixInfo:
		return v.POS
	case *DerivAffixInfo:
		return v.ToPOS
	case *DerivStepInfo:
		return v.POS
	}
	return nil
}

// GramInfoEqual reports whether a and b carry the same grammatical content.
func GramInfoEqual(a, b GramInfo) bool {
	switch x := a.(type) {
	case *StemInfo:
		y, ok := b.(*StemInfo)
		return ok && x.POS == y.POS && x.InflectionClass == y.InflectionClass &&
			x.Features.Equal(y.Features) && samePossibilities(x.ProdRestrict, y.ProdRestrict)
	case *UnclassifiedAffixInfo:
		y, ok := b.(*UnclassifiedAffixInfo)
		return ok && x.POS == y.POS
	case *InflAffixInfo:
		y, ok := b.(*InflAffixInfo)
		return ok && x.POS == y.POS && samePossibilities(x.Slots, y.Slots) &&
			x.Features.Equal(y.Features) && samePossibilities(x.ProdRestrict, y.ProdRestrict)
	case *DerivAffixInfo:
		y, ok := b.(*DerivAffixInfo)
		return ok && x.FromPOS == y.FromPOS && x.ToPOS == y.ToPOS &&
			x.FromInflectionClass == y.FromInflectionClass &&
			x.ToInflectionClass == y.ToInflectionClass &&
			x.FromFeatures.Equal(y.FromFeatures) && x.ToFeatures.Equal(y.ToFeatures) &&
			samePossibilities(x.FromProdRestrict, y.FromProdRestrict) &&
			samePossibilities(x.ToProdRestrict, y.ToProdRestrict)
	case *DerivStepInfo:
		y, ok := b.(*DerivStepInfo)
		return ok && x.POS == y.POS && x.InflectionClass == y.InflectionClass
	case nil:
		return b == nil
	}
	return false
}

// samePossibilities compares two reference sets ignoring order.
func samePossibilities(a, b []*Possibility) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[*Possibility]int, len(a))
	for _, p := range a {
		seen[p]++
	}
	for _, p := range b {
		if seen[p] == 0 {
			return false
		}
		seen[p]--
	}
	return true
}

// MSA is a morphosyntactic analysis owned by an entry and shared by its senses.
type MSA struct {
	base
	Info  GramInfo
	owner *Entry
}

func (*MSA) Kind() Kind { return KindMSA }

// Owner returns the owning entry.
func (m *MSA) Owner() *Entry { return m.owner }

// FindMSA returns the MSA of e whose content equals gi.
func (e *Entry) FindMSA(gi GramInfo) *MSA {
	for _, m := range e.MSAs {
		if GramInfoEqual(m.Info, gi) {
			return m
		}
	}
	return nil
}

// EnsureMSA returns the MSA of e equal to gi, creating it when none exists.
// The boolean reports whether a new MSA was created.
func (g *Graph) EnsureMSA(e *Entry, gi GramInfo) (*MSA, bool, error) {
	if m := e.FindMSA(gi); m != nil {
		return m, false, nil
	}
	m := &MSA{base: base{guid: g.NewGUID()}, Info: gi, owner: e}
	if err := g.Register(m); err != nil {
		return nil, false, err
	}
	e.MSAs = append(e.MSAs, m)
	return m, true, nil
}
