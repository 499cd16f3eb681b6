// Package schema describes how the domain attributes of one object type map
// onto directory attributes and which converters translate their values.
//
// All name lookups are case-insensitive. An ObjectSchema is built once and is
// then only read, so it may be shared between goroutines.
package schema

import (
	"fmt"
	"maps"
	"strings"

	"github.com/creasty/defaults"

	"github.com/barthuttinga/ldaptools/internal/operation"
)

// ObjectSchema is the attribute and converter mapping of one object type.
type ObjectSchema struct {
	// Name is the object type, e.g. "user".
	Name string
	// ObjectClass is written on new entries that do not set objectClass.
	ObjectClass []string
	// ObjectCategory narrows searches for this type.
	ObjectCategory string

	// RDN lists the domain attributes that can form the entry's RDN, in
	// order of preference.
	RDN []string `default:"[\"name\"]"`

	BaseDN    string
	Filter    string
	Scope     string `default:"subtree"`
	UsePaging bool   `default:"true"`

	// DefaultContainer is the parent of new entries created without a DN.
	DefaultContainer string
	// RequiredAttributes must be present on new entries.
	RequiredAttributes []string
	// DefaultValues fill domain attributes absent from new entries.
	DefaultValues map[string]any
	// Controls are attached to every write built from this schema.
	Controls []operation.Control

	attributes       []mapping
	converters       map[string]string
	converterOptions map[string]map[string]map[string]any
	multivalued      map[string]bool
}

type mapping struct {
	name string
	raw  string
}

// New returns a schema for objectType with its defaults applied.
func New(objectType string) *ObjectSchema {
	s := &ObjectSchema{Name: objectType}
	defaults.MustSet(s)
	return s
}

// MapAttribute maps the domain attribute name to the directory attribute raw.
// Mapping a name again replaces the previous mapping.
func (s *ObjectSchema) MapAttribute(name, raw string) *ObjectSchema {
	for i := range s.attributes {
		if strings.EqualFold(s.attributes[i].name, name) {
			s.attributes[i].raw = raw
			return s
		}
	}
	s.attributes = append(s.attributes, mapping{name: name, raw: raw})
	return s
}

// SetConverter assigns a converter to the directory attribute raw.
func (s *ObjectSchema) SetConverter(raw, converter string) *ObjectSchema {
	if s.converters == nil {
		s.converters = make(map[string]string)
	}
	s.converters[key(raw)] = converter
	return s
}

// SetConverterOptions sets the options converter receives when it converts
// attribute. The attribute is a domain name, or a directory name to apply
// the options to every domain attribute mapped onto it.
func (s *ObjectSchema) SetConverterOptions(converter, attribute string, opts map[string]any) *ObjectSchema {
	if s.converterOptions == nil {
		s.converterOptions = make(map[string]map[string]map[string]any)
	}
	byAttribute, ok := s.converterOptions[key(converter)]
	if !ok {
		byAttribute = make(map[string]map[string]any)
		s.converterOptions[key(converter)] = byAttribute
	}
	byAttribute[key(attribute)] = maps.Clone(opts)
	return s
}

// SetMultivalued marks directory attributes as multivalued.
func (s *ObjectSchema) SetMultivalued(raw ...string) *ObjectSchema {
	if s.multivalued == nil {
		s.multivalued = make(map[string]bool)
	}
	for _, name := range raw {
		s.multivalued[key(name)] = true
	}
	return s
}

// AttributeToLDAP returns the directory attribute for a domain attribute.
// Unmapped names are returned as they are.
func (s *ObjectSchema) AttributeToLDAP(name string) string {
	for _, m := range s.attributes {
		if strings.EqualFold(m.name, name) {
			return m.raw
		}
	}
	return name
}

// HasAttribute reports whether name is a mapped domain attribute.
func (s *ObjectSchema) HasAttribute(name string) bool {
	for _, m := range s.attributes {
		if strings.EqualFold(m.name, name) {
			return true
		}
	}
	return false
}

// Attributes returns the mapped domain attribute names in mapping order.
func (s *ObjectSchema) Attributes() []string {
	names := make([]string, 0, len(s.attributes))
	for _, m := range s.attributes {
		names = append(names, m.name)
	}
	return names
}

// NamesMappedToAttribute returns the domain attributes mapped onto raw, in
// mapping order.
func (s *ObjectSchema) NamesMappedToAttribute(raw string) []string {
	var names []string
	for _, m := range s.attributes {
		if strings.EqualFold(m.raw, raw) {
			names = append(names, m.name)
		}
	}
	return names
}

// HasNamesMappedToAttribute reports whether any domain attribute maps onto
// raw.
func (s *ObjectSchema) HasNamesMappedToAttribute(raw string) bool {
	return len(s.NamesMappedToAttribute(raw)) > 0
}

// ConverterFor returns the converter name of the directory attribute raw.
func (s *ObjectSchema) ConverterFor(raw string) (string, error) {
	name, ok := s.converters[key(raw)]
	if !ok {
		return "", fmt.Errorf("no converter defined for attribute %q in schema %q", raw, s.Name)
	}
	return name, nil
}

// HasConverter reports whether the directory attribute raw has a converter.
func (s *ObjectSchema) HasConverter(raw string) bool {
	_, ok := s.converters[key(raw)]
	return ok
}

// ConverterOptions returns the options of converter for attribute, which is
// looked up first as given and then as its directory name. The result is a
// copy and is never nil.
func (s *ObjectSchema) ConverterOptions(converter, attribute string) map[string]any {
	byAttribute := s.converterOptions[key(converter)]
	if opts, ok := byAttribute[key(attribute)]; ok {
		return maps.Clone(opts)
	}
	if opts, ok := byAttribute[key(s.AttributeToLDAP(attribute))]; ok {
		return maps.Clone(opts)
	}
	return map[string]any{}
}

// IsMultivaluedAttribute reports whether the directory attribute raw holds
// several values.
func (s *ObjectSchema) IsMultivaluedAttribute(raw string) bool {
	return s.multivalued[key(raw)]
}

// IsRequired reports whether the domain attribute name is required on new
// entries.
func (s *ObjectSchema) IsRequired(name string) bool {
	for _, required := range s.RequiredAttributes {
		if strings.EqualFold(required, name) {
			return true
		}
	}
	return false
}

// SearchScope parses Scope.
func (s *ObjectSchema) SearchScope() (operation.Scope, error) {
	return operation.ParseScope(s.Scope)
}

// Query returns a query for objects of this type matching filter, which may
// be empty. The schema filter, base DN, scope, paging and controls apply.
func (s *ObjectSchema) Query(filter string, attributes ...string) (*operation.QueryOperation, error) {
	scope, err := s.SearchScope()
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}

	var parts []string
	if s.Filter != "" {
		parts = append(parts, s.Filter)
	} else {
		for _, class := range s.ObjectClass {
			parts = append(parts, "(objectClass="+class+")")
		}
		if s.ObjectCategory != "" {
			parts = append(parts, "(objectCategory="+s.ObjectCategory+")")
		}
	}
	if filter != "" {
		parts = append(parts, filter)
	}

	var combined string
	switch len(parts) {
	case 0:
		combined = "(objectClass=*)"
	case 1:
		combined = parts[0]
	default:
		combined = "(&" + strings.Join(parts, "") + ")"
	}

	rawAttributes := make([]string, 0, len(attributes))
	for _, name := range attributes {
		rawAttributes = append(rawAttributes, s.AttributeToLDAP(name))
	}

	return operation.NewQueryOperation(combined, rawAttributes...).
		SetBaseDN(s.BaseDN).
		SetScope(scope).
		SetUsePaging(s.UsePaging).
		AddControl(s.Controls...), nil
}

func key(name string) string {
	return strings.ToLower(name)
}
