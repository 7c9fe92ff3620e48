package profile

import (
	"fmt"

	"github.com/ajitpratap0/hconf/pkg/document"
)

const (
	// MetadataPrefix marks top-level keys that describe the profile rather
	// than a configuration. The match is a plain string prefix.
	MetadataPrefix = "profile"

	nameField    = "name"
	extendsField = "extends"
)

// Descriptor is the identity of one profile document.
type Descriptor struct {
	Name   string
	Parent string
}

// Lookup finds one metadata value in a document.
type Lookup func(doc *document.Map) (any, bool)

// FlatKey looks up a dotted top-level key such as "profile.name".
func FlatKey(key string) Lookup {
	return func(doc *document.Map) (any, bool) {
		return doc.Get(key)
	}
}

// NestedKey looks up field inside the top-level mapping section, e.g.
// profile: {name: x}. A section that is not a mapping never matches.
func NestedKey(section, field string) Lookup {
	return func(doc *document.Map) (any, bool) {
		v, ok := doc.Get(section)
		if !ok {
			return nil, false
		}
		m, ok := v.(*document.Map)
		if !ok {
			return nil, false
		}
		return m.Get(field)
	}
}

// DescriptorExtractor tries lookups in priority order; the first one that
// yields a non-empty value wins, independently for name and parent.
type DescriptorExtractor struct {
	NameLookups   []Lookup
	ParentLookups []Lookup
}

// NewDescriptorExtractor returns the extractor for both accepted syntaxes:
// flat "profile.name"/"profile.extends" keys first, the nested profile
// mapping second.
func NewDescriptorExtractor() *DescriptorExtractor {
	return &DescriptorExtractor{
		NameLookups: []Lookup{
			FlatKey(MetadataPrefix + PathSeparator + nameField),
			NestedKey(MetadataPrefix, nameField),
		},
		ParentLookups: []Lookup{
			FlatKey(MetadataPrefix + PathSeparator + extendsField),
			NestedKey(MetadataPrefix, extendsField),
		},
	}
}

// Extract returns the document's descriptor, or false when no lookup finds
// a name. A missing parent defaults to DefaultParent.
func (e *DescriptorExtractor) Extract(doc *document.Map) (Descriptor, bool) {
	if doc == nil {
		return Descriptor{}, false
	}
	name, ok := firstString(doc, e.NameLookups)
	if !ok {
		return Descriptor{}, false
	}
	parent, ok := firstString(doc, e.ParentLookups)
	if !ok {
		parent = DefaultParent
	}
	return Descriptor{Name: name, Parent: parent}, true
}

var defaultExtractor = NewDescriptorExtractor()

// ExtractDescriptor extracts with the default extractor.
func ExtractDescriptor(doc *document.Map) (Descriptor, bool) {
	return defaultExtractor.Extract(doc)
}

func firstString(doc *document.Map, lookups []Lookup) (string, bool) {
	for _, lookup := range lookups {
		v, ok := lookup(doc)
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			continue
		}
		return s, true
	}
	return "", false
}
