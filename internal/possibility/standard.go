package possibility

import (
	"slices"

	"github.com/samber/lo"

	"github.com/sillsdev/liftbridge/core/text"
)

// StandardPOS is a part of speech from the GOLD-based catalog FieldWorks
// ships with.
type StandardPOS struct {
	CatalogID string
	// Parent is the catalog id of the parent category.
	Parent  string
	Names   map[string]string
	Abbrevs map[string]string
}

func pos(id, parent, en, enAbbr, fr, es string) StandardPOS {
	return StandardPOS{
		CatalogID: id,
		Parent:    parent,
		Names:     map[string]string{"en": en, "fr": fr, "es": es},
		Abbrevs:   map[string]string{"en": enAbbr},
	}
}

// StandardPartsOfSpeech is the standard part-of-speech catalog.
var StandardPartsOfSpeech = []StandardPOS{
	pos("Adjective", "", "Adjective", "adj", "Adjectif", "Adjetivo"),
	pos("Adposition", "", "Adposition", "adp", "Adposition", "Adposición"),
	pos("Postposition", "Adposition", "Postposition", "post", "Postposition", "Posposición"),
	pos("Preposition", "Adposition", "Preposition", "prep", "Préposition", "Preposición"),
	pos("Adverb", "", "Adverb", "adv", "Adverbe", "Adverbio"),
	pos("Classifier", "", "Classifier", "clf", "Classificateur", "Clasificador"),
	pos("Connective", "", "Connective", "connec", "Connecteur", "Conectivo"),
	pos("CoordinatingConnective", "Connective", "Coordinating connective", "coordconn", "Connecteur de coordination", "Conectivo coordinante"),
	pos("SubordinatingConnective", "Connective", "Subordinating connective", "subordconn", "Connecteur de subordination", "Conectivo subordinante"),
	pos("Determiner", "", "Determiner", "det", "Déterminant", "Determinante"),
	pos("Article", "Determiner", "Article", "art", "Article", "Artículo"),
	pos("DefiniteArticle", "Article", "Definite article", "def", "Article défini", "Artículo definido"),
	pos("IndefiniteArticle", "Article", "Indefinite article", "indf", "Article indéfini", "Artículo indefinido"),
	pos("Demonstrative", "Determiner", "Demonstrative", "dem", "Démonstratif", "Demostrativo"),
	pos("Quantifier", "Determiner", "Quantifier", "quant", "Quantificateur", "Cuantificador"),
	pos("Interjection", "", "Interjection", "interj", "Interjection", "Interjección"),
	pos("Noun", "", "Noun", "n", "Nom", "Sustantivo"),
	pos("ProperNoun", "Noun", "Proper noun", "nprop", "Nom propre", "Nombre propio"),
	pos("Nominal", "", "Nominal", "nom", "Nominal", "Nominal"),
	pos("Gerund", "Nominal", "Gerund", "ger", "Gérondif", "Gerundio"),
	pos("Pronoun", "", "Pronoun", "pro", "Pronom", "Pronombre"),
	pos("PersonalPronoun", "Pronoun", "Personal pronoun", "pers", "Pronom personnel", "Pronombre personal"),
	pos("ReflexivePronoun", "Pronoun", "Reflexive pronoun", "refl", "Pronom réfléchi", "Pronombre reflexivo"),
	pos("RelativePronoun", "Pronoun", "Relative pronoun", "relpro", "Pronom relatif", "Pronombre relativo"),
	pos("InterrogativePronoun", "Pronoun", "Interrogative pronoun", "interrog", "Pronom interrogatif", "Pronombre interrogativo"),
	pos("Numeral", "", "Numeral", "num", "Numéral", "Numeral"),
	pos("CardinalNumeral", "Numeral", "Cardinal numeral", "cardnum", "Numéral cardinal", "Numeral cardinal"),
	pos("OrdinalNumeral", "Numeral", "Ordinal numeral", "ordnum", "Numéral ordinal", "Numeral ordinal"),
	pos("Particle", "", "Particle", "part", "Particule", "Partícula"),
	pos("Participle", "", "Participle", "ptcp", "Participe", "Participio"),
	pos("Verb", "", "Verb", "v", "Verbe", "Verbo"),
	pos("AuxiliaryVerb", "Verb", "Auxiliary verb", "aux", "Verbe auxiliaire", "Verbo auxiliar"),
	pos("CopulativeVerb", "Verb", "Copulative verb", "cop", "Verbe copule", "Verbo copulativo"),
	pos("DitransitiveVerb", "Verb", "Ditransitive verb", "ditran", "Verbe ditransitif", "Verbo ditransitivo"),
	pos("IntransitiveVerb", "Verb", "Intransitive verb", "vi", "Verbe intransitif", "Verbo intransitivo"),
	pos("TransitiveVerb", "Verb", "Transitive verb", "vt", "Verbe transitif", "Verbo transitivo"),
}

var posByCatalogID = lo.KeyBy(StandardPartsOfSpeech, func(p StandardPOS) string { return p.CatalogID })

// LookupPOS finds a standard part of speech by name or abbreviation in any
// locale, or by catalog id. Case is ignored.
func LookupPOS(label string) (StandardPOS, bool) {
	return lo.Find(StandardPartsOfSpeech, func(p StandardPOS) bool {
		if text.FoldEqual(p.CatalogID, label) {
			return true
		}
		for _, n := range p.Names {
			if text.FoldEqual(n, label) {
				return true
			}
		}
		for _, a := range p.Abbrevs {
			if text.FoldEqual(a, label) {
				return true
			}
		}
		return false
	})
}

func sortedLangs(m map[string]string) []string {
	langs := lo.Keys(m)
	slices.Sort(langs)
	return langs
}
