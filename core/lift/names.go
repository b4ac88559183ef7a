package lift

// Trait names read on import and written on export.
const (
	TraitMorphType         = "morph-type"
	TraitDoNotPublishIn    = "do-not-publish-in"
	TraitExcludeAsHeadword = "exclude-as-headword"
	TraitEnvironment       = "environment"
	TraitLocation          = "location"
	TraitComplexFormType   = "complex-form-type"
	TraitVariantType       = "variant-type"
	TraitIsPrimary         = "is-primary"
	TraitHideMinorEntry    = "hide-minor-entry"
	TraitSenseType         = "sense-type"
	TraitStatus            = "status"

	// Grammatical-info traits.
	TraitMSAType              = "type"
	TraitInflectionClass      = "inflection-class"
	TraitSlot                 = "slot"
	TraitFeatures             = "features"
	TraitExceptionFeature     = "exception-feature"
	TraitToPartOfSpeech       = "to-part-of-speech"
	TraitFromInflectionClass  = "from-inflection-class"
	TraitToInflectionClass    = "to-inflection-class"
	TraitFromFeatures         = "from-features"
	TraitToFeatures           = "to-features"
	TraitFromExceptionFeature = "from-exception-feature"
	TraitToExceptionFeature   = "to-exception-feature"

	// Range-element traits.
	TraitReferenceType   = "referenceType"
	TraitLeadingSymbol   = "leading-symbol"
	TraitTrailingSymbol  = "trailing-symbol"
	TraitCatalogSourceID = "catalog-source-id"
	TraitFeatureKind     = "feature-definition-type"
	TraitFeatureType     = "feature-structure-type"
	TraitFeature         = "feature"
)

// Field types read on import and written on export.
const (
	FieldLiteralMeaning    = "literal-meaning"
	FieldSummaryDefinition = "summary-definition"
	FieldImportResidue     = "import-residue"
	FieldScientificName    = "scientific-name"
	FieldCVPattern         = "cv-pattern"
	FieldTone              = "tone"
	FieldSummary           = "summary"
	FieldReverseLabel      = "reverse-label"
	FieldReverseAbbrev     = "reverse-abbrev"
)

// Relation types with a fixed meaning.
const (
	// RelationComponentLexeme links a complex form or variant to a component.
	RelationComponentLexeme = "_component-lexeme"
	// RelationMain and RelationBaseForm are single-tag forms older
	// producers used for the same link; the first such member is primary.
	RelationMain     = "main"
	RelationBaseForm = "BaseForm"
)

// Ranges that declare the feature system rather than a list.
const (
	RangeFeatureDefinitions = "feature-definitions"
	RangeFeatureValues      = "feature-values"
	RangeFeatureTypes       = "feature-types"
)

// IsFeatureRange reports whether id names one of the feature-system ranges.
func IsFeatureRange(id string) bool {
	return id == RangeFeatureDefinitions || id == RangeFeatureValues || id == RangeFeatureTypes
}
