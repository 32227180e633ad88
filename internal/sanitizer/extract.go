package sanitizer

import (
	"slices"
	"strings"

	"github.com/nao1215/harsanitizer/internal/har"
)

// Category is a class of name/value records in a HAR entry.
type Category string

// Field categories, in the order the redactor processes them.
const (
	CategoryCookies     Category = "cookies"
	CategoryHeaders     Category = "headers"
	CategoryQueryString Category = "queryString"
	CategoryParams      Category = "params"
)

// Categories returns every field category in processing order.
func Categories() []Category {
	return []Category{CategoryCookies, CategoryHeaders, CategoryQueryString, CategoryParams}
}

// FieldSet maps field names to the distinct values seen for them.
// Names and values keep the order in which they were first added.
type FieldSet struct {
	names  []string
	values map[string][]string
}

// NewFieldSet returns an empty FieldSet.
func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[string][]string)}
}

// Add registers value under name unless it is already present.
func (f *FieldSet) Add(name, value string) {
	existing, ok := f.values[name]
	if !ok {
		f.names = append(f.names, name)
	}
	if slices.Contains(existing, value) {
		return
	}
	f.values[name] = append(existing, value)
}

// Names returns the registered names in first-seen order.
func (f *FieldSet) Names() []string {
	return slices.Clone(f.names)
}

// Values returns the values registered under name.
func (f *FieldSet) Values(name string) []string {
	return slices.Clone(f.values[name])
}

// Len returns the number of distinct names.
func (f *FieldSet) Len() int {
	return len(f.names)
}

// ExtractedElements holds the records found for every category in one
// extraction run. It is rebuilt for every document.
type ExtractedElements struct {
	fields map[Category]*FieldSet

	// Anomalies lists records that were skipped because of their shape.
	Anomalies []Anomaly
}

// Fields returns the FieldSet of a category. It never returns nil.
func (e *ExtractedElements) Fields(c Category) *FieldSet {
	if e == nil || e.fields[c] == nil {
		return NewFieldSet()
	}
	return e.fields[c]
}

// Names returns the field names of a category in first-seen order.
func (e *ExtractedElements) Names(c Category) []string {
	return e.Fields(c).Names()
}

// ExtractAll runs Extract for every category.
func ExtractAll(doc *har.Value) *ExtractedElements {
	elems := &ExtractedElements{fields: make(map[Category]*FieldSet)}
	for _, c := range Categories() {
		set, anomalies := Extract(doc, c)
		elems.fields[c] = set
		elems.Anomalies = append(elems.Anomalies, anomalies...)
	}
	return elems
}

// Extract collects the records of one category.
//
// Every member named after the category is searched for objects with a
// "name" member; the sibling "value" member is registered under that name.
// Double quotes in the value are prefixed with a backslash so the value
// matches its appearance in the serialized document. Records whose name or
// value is not a string are skipped and reported as anomalies. The document
// is not modified.
func Extract(doc *har.Value, category Category) (*FieldSet, []Anomaly) {
	set := NewFieldSet()
	var anomalies []Anomaly

	har.Walk(doc, har.KeyEquals(string(category)), func(_ *har.Value, _ string, records *har.Value) {
		har.Walk(records, har.KeyEquals("name"), func(record *har.Value, _ string, nameVal *har.Value) {
			name, ok := nameVal.Str()
			if !ok {
				anomalies = append(anomalies, Anomaly{
					Category: category,
					Reason:   "name is " + nameVal.Kind().String(),
				})
				return
			}

			value := record.Get("value")
			raw, ok := value.Str()
			if !ok {
				reason := "value is " + value.Kind().String()
				if !record.Has("value") {
					reason = "value is missing"
				}
				anomalies = append(anomalies, Anomaly{Category: category, Name: name, Reason: reason})
				return
			}

			set.Add(name, strings.ReplaceAll(raw, `"`, `\"`))
		})
	})

	return set, anomalies
}
