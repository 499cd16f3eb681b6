package operation

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ModifyOperation applies an ordered list of batches to one entry.
type ModifyOperation struct {
	chain[*ModifyOperation]
	batches []*Batch
}

func NewModifyOperation(dn string, batches ...*Batch) *ModifyOperation {
	op := &ModifyOperation{batches: batches}
	op.self = op
	op.dn = dn
	return op
}

func (o *ModifyOperation) Name() string {
	return "Modify"
}

// Batches returns the batches in application order.
func (o *ModifyOperation) Batches() []*Batch {
	return o.batches
}

// AddBatch appends batches.
func (o *ModifyOperation) AddBatch(batches ...*Batch) *ModifyOperation {
	o.batches = append(o.batches, batches...)
	return o
}

// SetBatches replaces the batch list.
func (o *ModifyOperation) SetBatches(batches []*Batch) *ModifyOperation {
	o.batches = batches
	return o
}

// Arguments returns [dn, batches].
func (o *ModifyOperation) Arguments() []any {
	return []any{o.dn, o.batches}
}

func (o *ModifyOperation) LogFields() map[string]any {
	fields := o.logFields()
	batches := make([]map[string]any, 0, len(o.batches))
	for _, b := range o.batches {
		batches = append(batches, map[string]any{
			"Attribute": b.Attribute,
			"Mod Type":  b.ModType.String(),
			"Values":    logValues(b.Attribute, b.StringValues()),
		})
	}
	fields["Batch"] = batches
	return fields
}

// Request builds the go-ldap request. Batches with an unknown kind are
// rejected rather than silently dropped.
func (o *ModifyOperation) Request() (*ldap.ModifyRequest, error) {
	req := ldap.NewModifyRequest(o.dn, ldapControls(o.controls))
	for _, b := range o.batches {
		switch b.ModType {
		case ModAdd:
			req.Add(b.Attribute, b.StringValues())
		case ModRemove:
			req.Delete(b.Attribute, b.StringValues())
		case ModReplace:
			req.Replace(b.Attribute, b.StringValues())
		case ModRemoveAll:
			req.Delete(b.Attribute, []string{})
		default:
			return nil, fmt.Errorf("batch for %s has invalid modification type %s", b.Attribute, b.ModType)
		}
	}
	return req, nil
}

// BatchFor returns the first batch for attribute, case-insensitively.
func (o *ModifyOperation) BatchFor(attribute string) (*Batch, bool) {
	for _, b := range o.batches {
		if strings.EqualFold(b.Attribute, attribute) {
			return b, true
		}
	}
	return nil, false
}
