package operation

import "github.com/go-ldap/ldap/v3"

// DeleteOperation removes a directory entry.
type DeleteOperation struct {
	chain[*DeleteOperation]
}

func NewDeleteOperation(dn string) *DeleteOperation {
	op := &DeleteOperation{}
	op.self = op
	op.dn = dn
	return op
}

func (o *DeleteOperation) Name() string {
	return "Delete"
}

// Arguments returns [dn].
func (o *DeleteOperation) Arguments() []any {
	return []any{o.dn}
}

func (o *DeleteOperation) LogFields() map[string]any {
	return o.logFields()
}

func (o *DeleteOperation) Request() *ldap.DelRequest {
	return ldap.NewDelRequest(o.dn, ldapControls(o.controls))
}
