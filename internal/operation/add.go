package operation

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// AddOperation creates a directory entry.
type AddOperation struct {
	chain[*AddOperation]
	attributes []ldap.Attribute
}

// NewAddOperation creates an add of dn with the given attributes.
func NewAddOperation(dn string, attributes ...ldap.Attribute) *AddOperation {
	op := &AddOperation{attributes: attributes}
	op.self = op
	op.dn = dn
	return op
}

func (o *AddOperation) Name() string {
	return "Add"
}

// Attributes returns the attributes of the new entry in insertion order.
func (o *AddOperation) Attributes() []ldap.Attribute {
	return o.attributes
}

// SetAttribute sets the values of an attribute, replacing an existing
// attribute of the same (case-insensitive) name.
func (o *AddOperation) SetAttribute(name string, values ...string) *AddOperation {
	for i := range o.attributes {
		if strings.EqualFold(o.attributes[i].Type, name) {
			o.attributes[i].Vals = values
			return o
		}
	}
	o.attributes = append(o.attributes, ldap.Attribute{Type: name, Vals: values})
	return o
}

// RemoveAttribute drops an attribute from the entry.
func (o *AddOperation) RemoveAttribute(name string) *AddOperation {
	for i := range o.attributes {
		if strings.EqualFold(o.attributes[i].Type, name) {
			o.attributes = append(o.attributes[:i], o.attributes[i+1:]...)
			break
		}
	}
	return o
}

// Arguments returns [dn, attributes].
func (o *AddOperation) Arguments() []any {
	return []any{o.dn, o.attributes}
}

func (o *AddOperation) LogFields() map[string]any {
	fields := o.logFields()
	attrs := make(map[string]any, len(o.attributes))
	for _, attr := range o.attributes {
		attrs[attr.Type] = logValues(attr.Type, attr.Vals)
	}
	fields["Attributes"] = attrs
	return fields
}

// Request builds the go-ldap request.
func (o *AddOperation) Request() *ldap.AddRequest {
	req := ldap.NewAddRequest(o.dn, ldapControls(o.controls))
	for _, attr := range o.attributes {
		req.Attribute(attr.Type, attr.Vals)
	}
	return req
}
