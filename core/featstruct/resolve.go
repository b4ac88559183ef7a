package featstruct

import (
	"strings"

	"github.com/sillsdev/liftbridge/core/lexicon"
)

// Resolve binds a parsed expression to the definitions of fsys.
func Resolve(fs *FS, fsys *lexicon.FeatureSystem) (*lexicon.FeatureStructure, error) {
	input := fs.String()
	return resolve(fs, fsys, nil, input)
}

// ParseAndResolve parses s and resolves it against fsys.
func ParseAndResolve(s string, fsys *lexicon.FeatureSystem) (*lexicon.FeatureStructure, error) {
	fs, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return resolve(fs, fsys, nil, s)
}

func resolve(fs *FS, fsys *lexicon.FeatureSystem, implied *lexicon.FeatureStructureType, input string) (*lexicon.FeatureStructure, error) {
	out := &lexicon.FeatureStructure{Type: implied}
	if fs.Type != "" {
		t := fsys.Type(fs.Type)
		if t == nil {
			return nil, &Error{Kind: UnknownType, Input: input, Name: fs.Type, Pos: -1}
		}
		out.Type = t
	}
	for _, p := range fs.Pairs {
		f := fsys.Feature(p.Feature)
		if f == nil {
			return nil, &Error{Kind: UnknownFeature, Input: input, Name: p.Feature, Pos: -1}
		}
		if out.Type != nil && len(out.Type.Features) > 0 && !out.Type.Allows(f) {
			return nil, &Error{Kind: UnknownFeature, Input: input, Name: p.Feature, Pos: -1}
		}
		if _, dup := out.Lookup(f); dup {
			return nil, &Error{Kind: Malformed, Input: input, Name: p.Feature, Pos: -1}
		}
		spec := lexicon.FeatureSpec{Feature: f}
		switch f.Variant {
		case lexicon.FeatureComplex:
			if p.Nested == nil {
				return nil, &Error{Kind: UnknownValue, Input: input, Name: p.Feature + ":" + p.Symbol, Pos: -1}
			}
			nested, err := resolve(p.Nested, fsys, f.Type, input)
			if err != nil {
				return nil, err
			}
			spec.Complex = nested
		case lexicon.FeatureOpen:
			if p.Nested != nil {
				return nil, &Error{Kind: Malformed, Input: input, Name: p.Feature, Pos: -1}
			}
			spec.Text = p.Symbol
		default:
			if p.Nested != nil {
				return nil, &Error{Kind: Malformed, Input: input, Name: p.Feature, Pos: -1}
			}
			v := f.Value(p.Symbol)
			if v == nil {
				return nil, &Error{Kind: UnknownValue, Input: input, Name: p.Feature + ":" + p.Symbol, Pos: -1}
			}
			spec.Value = v
		}
		out.Specs = append(out.Specs, spec)
	}
	return out, nil
}

// Format renders fs in the expression syntax accepted by Parse. An empty
// structure renders as "".
func Format(fs *lexicon.FeatureStructure) string {
	if fs.IsEmpty() {
		return ""
	}
	var b strings.Builder
	format(&b, fs, nil)
	return b.String()
}

func format(b *strings.Builder, fs *lexicon.FeatureStructure, implied *lexicon.FeatureStructureType) {
	if fs.Type != nil && fs.Type != implied {
		b.WriteString("{" + fs.Type.ID + "}")
	}
	b.WriteByte('[')
	for i, s := range fs.Specs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Feature.ID)
		b.WriteByte(':')
		switch {
		case s.Complex != nil:
			format(b, s.Complex, s.Feature.Type)
		case s.Value != nil:
			b.WriteString(s.Value.ID)
		default:
			b.WriteString(s.Text)
		}
	}
	b.WriteByte(']')
}
