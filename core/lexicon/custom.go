package lexicon

import (
	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/text"
)

// Owner classes that can carry custom fields.
const (
	ClassEntry     = "LexEntry"
	ClassSense     = "LexSense"
	ClassExample   = "LexExampleSentence"
	ClassAllomorph = "MoForm"
)

// CustomType is the storage type of a custom field.
type CustomType string

// Custom field types, named as in the header type descriptor.
const (
	CustomString              CustomType = "String"
	CustomMultiString         CustomType = "MultiString"
	CustomMultiUnicode        CustomType = "MultiUnicode"
	CustomInteger             CustomType = "Integer"
	CustomGenDate             CustomType = "GenDate"
	CustomReferenceAtomic     CustomType = "ReferenceAtomic"
	CustomReferenceCollection CustomType = "ReferenceCollection"
	CustomOwningAtomic        CustomType = "OwningAtomic"
)

// IsReference reports whether values of this type point at list items.
func (t CustomType) IsReference() bool {
	return t == CustomReferenceAtomic || t == CustomReferenceCollection
}

// IsText reports whether values of this type are locale-tagged text.
func (t CustomType) IsText() bool {
	switch t {
	case CustomString, CustomMultiString, CustomMultiUnicode, CustomOwningAtomic:
		return true
	}
	return false
}

// ParseCustomType decodes a descriptor type name.
func ParseCustomType(s string) (CustomType, bool) {
	switch t := CustomType(s); t {
	case CustomString, CustomMultiString, CustomMultiUnicode, CustomInteger,
		CustomGenDate, CustomReferenceAtomic, CustomReferenceCollection, CustomOwningAtomic:
		return t, true
	}
	return "", false
}

// CustomField declares a user-defined field on one owner class.
type CustomField struct {
	Class       string
	Label       string
	Type        CustomType
	WsSelector  string
	ListID      ListID
	DstClass    string
	Description text.Multi
}

// CustomValue is the value of a custom field on one object.
type CustomValue struct {
	Text text.Multi
	Int  int
	Date string
	Refs []*Possibility

	// Created and Modified are the dates of a text field, and Extra holds
	// the raw XML of the traits and unknown children it carried.
	Created  string
	Modified string
	Extra    []string
}

// IsEmpty reports whether the value holds nothing.
func (v CustomValue) IsEmpty() bool {
	return v.Text.IsEmpty() && v.Int == 0 && v.Date == "" && len(v.Refs) == 0 && len(v.Extra) == 0
}

// CustomHolder is implemented by objects that carry custom field values.
type CustomHolder interface {
	Object
	CustomClass() string
	Custom(label string) (CustomValue, bool)
	SetCustom(label string, v CustomValue)
	CustomLabels() []string
}

type customData struct {
	labels []string
	values map[string]CustomValue
}

// Custom returns the value stored under label.
func (c *customData) Custom(label string) (CustomValue, bool) {
	v, ok := c.values[label]
	return v, ok
}

// SetCustom stores v under label, removing the value when empty.
func (c *customData) SetCustom(label string, v CustomValue) {
	if v.IsEmpty() {
		if _, ok := c.values[label]; ok {
			delete(c.values, label)
			c.labels = removeItem(c.labels, label)
		}
		return
	}
	if c.values == nil {
		c.values = make(map[string]CustomValue)
	}
	if _, ok := c.values[label]; !ok {
		c.labels = append(c.labels, label)
	}
	c.values[label] = v
}

// CustomLabels returns the labels with values in insertion order.
func (c *customData) CustomLabels() []string {
	return c.labels
}

// CustomFields returns the declared custom fields.
func (g *Graph) CustomFields() []*CustomField {
	return g.customFields
}

// CustomField returns the declaration for label on class.
func (g *Graph) CustomField(class, label string) (*CustomField, bool) {
	for _, f := range g.customFields {
		if f.Class == class && f.Label == label {
			return f, true
		}
	}
	return nil, false
}

// DeclareCustomField adds a declaration. Redeclaring a field with the same
// type is a no-op returning the existing declaration.
func (g *Graph) DeclareCustomField(f *CustomField) (*CustomField, error) {
	if f.Label == "" || f.Class == "" {
		return nil, errors.NewValidation("custom field", "class and label are required")
	}
	if existing, ok := g.CustomField(f.Class, f.Label); ok {
		if existing.Type != f.Type {
			return nil, &errors.ValidationError{
				Field:   f.Label,
				Value:   string(f.Type),
				Message: "already declared as " + string(existing.Type),
			}
		}
		return existing, nil
	}
	if f.Type.IsReference() && f.ListID != "" {
		g.List(f.ListID)
	}
	g.customFields = append(g.customFields, f)
	return f, nil
}
