package lexicon

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sillsdev/liftbridge/core/text"
)

// MorphMarkers are the symbols written before and after a form of a given
// morph type, e.g. "-" after a prefix.
type MorphMarkers struct {
	Leading  string
	Trailing string
}

// Standard morph type names.
const (
	MorphBoundRoot         = "bound root"
	MorphBoundStem         = "bound stem"
	MorphCircumfix         = "circumfix"
	MorphClitic            = "clitic"
	MorphDiscontigPhrase   = "discontiguous phrase"
	MorphEnclitic          = "enclitic"
	MorphInfix             = "infix"
	MorphInfixingInterfix  = "infixing interfix"
	MorphParticle          = "particle"
	MorphPhrase            = "phrase"
	MorphPrefix            = "prefix"
	MorphPrefixingInterfix = "prefixing interfix"
	MorphProclitic         = "proclitic"
	MorphRoot              = "root"
	MorphSimulfix          = "simulfix"
	MorphStem              = "stem"
	MorphSuffix            = "suffix"
	MorphSuffixingInterfix = "suffixing interfix"
	MorphSuprafix          = "suprafix"
)

type morphTypeDef struct {
	guid    string
	name    string
	abbrev  string
	markers MorphMarkers
}

// standardMorphTypes mirrors the FLEx morph-type list, guids included.
var standardMorphTypes = []morphTypeDef{
	{"d7f713e4-e8cf-11d3-9764-00c04f186933", MorphBoundRoot, "bd root", MorphMarkers{Leading: "*"}},
	{"d7f713e7-e8cf-11d3-9764-00c04f186933", MorphBoundStem, "bd stem", MorphMarkers{Leading: "*"}},
	{"d7f713df-e8cf-11d3-9764-00c04f186933", MorphCircumfix, "cfx", MorphMarkers{}},
	{"c2d140e5-7ca9-41f4-a69a-22fc7049dd2c", MorphClitic, "clit", MorphMarkers{}},
	{"0cc8c35a-cee9-434d-be58-5d29130fba5b", MorphDiscontigPhrase, "dis phr", MorphMarkers{}},
	{"d7f713e1-e8cf-11d3-9764-00c04f186933", MorphEnclitic, "enclit", MorphMarkers{Leading: "="}},
	{"d7f713da-e8cf-11d3-9764-00c04f186933", MorphInfix, "ifx", MorphMarkers{Leading: "-", Trailing: "-"}},
	{"18d9b1c3-b5b6-4c07-b92c-2fe1d2281bd4", MorphInfixingInterfix, "ifxnfx", MorphMarkers{Leading: "-", Trailing: "-"}},
	{"56db04bf-3d58-44cc-b292-4c8aa68538f4", MorphParticle, "part", MorphMarkers{}},
	{"a23b6faa-1052-4f4d-984b-4b338bdaf95f", MorphPhrase, "phr", MorphMarkers{}},
	{"d7f713db-e8cf-11d3-9764-00c04f186933", MorphPrefix, "pfx", MorphMarkers{Trailing: "-"}},
	{"af6537b0-7175-4387-ba6a-36547d37fb13", MorphPrefixingInterfix, "pfxnfx", MorphMarkers{Trailing: "-"}},
	{"d7f713e2-e8cf-11d3-9764-00c04f186933", MorphProclitic, "proclit", MorphMarkers{Trailing: "="}},
	{"d7f713e5-e8cf-11d3-9764-00c04f186933", MorphRoot, "ubd root", MorphMarkers{}},
	{"d7f713e3-e8cf-11d3-9764-00c04f186933", MorphSimulfix, "smfx", MorphMarkers{Leading: "=", Trailing: "="}},
	{"d7f713e8-e8cf-11d3-9764-00c04f186933", MorphStem, "ubd stem", MorphMarkers{}},
	{"d7f713dd-e8cf-11d3-9764-00c04f186933", MorphSuffix, "sfx", MorphMarkers{Leading: "-"}},
	{"3433683d-08a9-4bae-ae53-2a7798f64068", MorphSuffixingInterfix, "sfxnfx", MorphMarkers{Leading: "-"}},
	{"d7f713dc-e8cf-11d3-9764-00c04f186933", MorphSuprafix, "spfx", MorphMarkers{Leading: "~", Trailing: "~"}},
}

func (g *Graph) seedMorphTypes() {
	for _, d := range standardMorphTypes {
		p, err := g.NewPossibility(ListMorphTypes, uuid.MustParse(d.guid), nil)
		if err != nil {
			continue
		}
		p.Name = text.NewMulti("en", d.name)
		p.Abbrev = text.NewMulti("en", d.abbrev)
		m := d.markers
		p.Markers = &m
	}
}

// MorphType returns the morph type with the given English name.
func (g *Graph) MorphType(name string) *Possibility {
	var found *Possibility
	g.List(ListMorphTypes).Walk(func(p *Possibility) bool {
		if p.Name.String("en") == name {
			found = p
			return false
		}
		return true
	})
	return found
}

// markerRule maps a leading/trailing marker pattern to a morph type. Rules
// are tried in order, so longer patterns come first.
type markerRule struct {
	leading, trailing string
	morphType         string
}

var markerRules = []markerRule{
	{"-", "-", MorphInfix},
	{"=", "=", MorphSimulfix},
	{"~", "~", MorphSuprafix},
	{"*", "", MorphBoundRoot},
	{"", "-", MorphPrefix},
	{"-", "", MorphSuffix},
	{"", "=", MorphProclitic},
	{"=", "", MorphEnclitic},
}

// StripMarkers removes affix and clitic markers from form and returns the
// bare form with the morph type name the markers imply. Forms without
// markers yield "stem", or "phrase" when they contain a space.
func StripMarkers(form string) (bare, morphType string) {
	for _, r := range markerRules {
		if len(form) <= len(r.leading)+len(r.trailing) {
			continue
		}
		if strings.HasPrefix(form, r.leading) && strings.HasSuffix(form, r.trailing) {
			return form[len(r.leading) : len(form)-len(r.trailing)], r.morphType
		}
	}
	if strings.Contains(strings.TrimSpace(form), " ") {
		return form, MorphPhrase
	}
	return form, MorphStem
}

// TrimMarkers removes the markers of morph type p from form when present.
func TrimMarkers(form string, p *Possibility) string {
	if p == nil || p.Markers == nil {
		return form
	}
	m := p.Markers
	if len(form) <= len(m.Leading)+len(m.Trailing) {
		return form
	}
	if strings.HasPrefix(form, m.Leading) && strings.HasSuffix(form, m.Trailing) {
		return form[len(m.Leading) : len(form)-len(m.Trailing)]
	}
	return form
}

// AddMarkers decorates form with the markers of morph type p.
func AddMarkers(form string, p *Possibility) string {
	if p == nil || p.Markers == nil || form == "" {
		return form
	}
	return p.Markers.Leading + form + p.Markers.Trailing
}

var affixTypes = map[string]bool{
	MorphCircumfix:         true,
	MorphInfix:             true,
	MorphInfixingInterfix:  true,
	MorphPrefix:            true,
	MorphPrefixingInterfix: true,
	MorphSimulfix:          true,
	MorphSuffix:            true,
	MorphSuffixingInterfix: true,
	MorphSuprafix:          true,
}

// IsAffixType reports whether p is one of the standard affix morph types.
// Clitics are not affixes.
func IsAffixType(p *Possibility) bool {
	return p != nil && affixTypes[p.Name.String("en")]
}
