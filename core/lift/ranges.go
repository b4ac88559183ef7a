package lift

import (
	"strings"

	"github.com/sillsdev/liftbridge/core/lexicon"
)

// RangeTable maps LIFT trait and range names to possibility lists. Export
// always writes the canonical id; import also accepts legacy aliases.
type RangeTable struct {
	names map[string]lexicon.ListID
}

// legacyAliases are names older producers used for the standard lists.
var legacyAliases = map[string]lexicon.ListID{
	"part-of-speech":     lexicon.ListPartsOfSpeech,
	"partofspeech":       lexicon.ListPartsOfSpeech,
	"morph-types":        lexicon.ListMorphTypes,
	"morphtype":          lexicon.ListMorphTypes,
	"semantic-domain":    lexicon.ListSemanticDomains,
	"semantic_domain":    lexicon.ListSemanticDomains,
	"semanticdomainddp4": lexicon.ListSemanticDomains,
	"anthro_code":        lexicon.ListAnthroCodes,
	"anthro-codes":       lexicon.ListAnthroCodes,
	"academic-domain":    lexicon.ListDomainTypes,
	"academic-domains":   lexicon.ListDomainTypes,
	"domain-types":       lexicon.ListDomainTypes,
	"usage-types":        lexicon.ListUsageTypes,
	"sense-types":        lexicon.ListSenseTypes,
	"locations":          lexicon.ListLocations,
	"translation-types":  lexicon.ListTranslationTypes,
	"lexical-relations":  lexicon.ListLexicalRelations,
	"complex-form-type":  lexicon.ListComplexFormTypes,
	"variant-type":       lexicon.ListVariantTypes,
	"exception-features": lexicon.ListExceptionFeature,
	"inflection-classes": lexicon.ListInflectionClass,
	"inflection-slots":   lexicon.ListInflectionSlot,
	"publishin":          lexicon.ListPublications,
	"publish-in":         lexicon.ListPublications,
}

// NewRangeTable returns the standard table.
func NewRangeTable() *RangeTable {
	t := &RangeTable{names: make(map[string]lexicon.ListID)}
	for _, id := range lexicon.StandardLists {
		t.names[string(id)] = id
	}
	for alias, id := range legacyAliases {
		t.names[alias] = id
	}
	return t
}

// DefaultRanges is the standard table.
var DefaultRanges = NewRangeTable()

// List returns the list named by a trait or range id. Matching ignores case.
func (t *RangeTable) List(name string) (lexicon.ListID, bool) {
	id, ok := t.names[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// RangeID returns the id written on export for list.
func (t *RangeTable) RangeID(list lexicon.ListID) string {
	return string(list)
}

// IsLegacy reports whether name is accepted only as an alias.
func (t *RangeTable) IsLegacy(name string) bool {
	_, ok := legacyAliases[strings.ToLower(name)]
	return ok
}

// AddCustom registers a custom list under its own name.
func (t *RangeTable) AddCustom(id lexicon.ListID) {
	key := strings.ToLower(string(id))
	if _, ok := t.names[key]; !ok {
		t.names[key] = id
	}
}
