package operation

import "github.com/go-ldap/ldap/v3"

// RenameOperation renames and/or moves an entry (ModifyDN).
type RenameOperation struct {
	chain[*RenameOperation]
	newRDN       string
	newLocation  string
	deleteOldRDN bool
}

// NewRenameOperation creates a rename of dn. The old RDN is deleted unless
// SetDeleteOldRDN(false) is called.
func NewRenameOperation(dn string) *RenameOperation {
	op := &RenameOperation{deleteOldRDN: true}
	op.self = op
	op.dn = dn
	return op
}

func (o *RenameOperation) Name() string {
	return "Rename"
}

func (o *RenameOperation) NewRDN() string {
	return o.newRDN
}

func (o *RenameOperation) SetNewRDN(rdn string) *RenameOperation {
	o.newRDN = rdn
	return o
}

// NewLocation is the new parent DN; empty keeps the current parent.
func (o *RenameOperation) NewLocation() string {
	return o.newLocation
}

func (o *RenameOperation) SetNewLocation(dn string) *RenameOperation {
	o.newLocation = dn
	return o
}

func (o *RenameOperation) DeleteOldRDN() bool {
	return o.deleteOldRDN
}

func (o *RenameOperation) SetDeleteOldRDN(deleteOldRDN bool) *RenameOperation {
	o.deleteOldRDN = deleteOldRDN
	return o
}

// Arguments returns [dn, newRDN, newLocation, deleteOldRDN].
func (o *RenameOperation) Arguments() []any {
	return []any{o.dn, o.newRDN, o.newLocation, o.deleteOldRDN}
}

func (o *RenameOperation) LogFields() map[string]any {
	fields := o.logFields()
	fields["New RDN"] = o.newRDN
	fields["New Location"] = o.newLocation
	fields["Delete Old RDN"] = o.deleteOldRDN
	return fields
}

func (o *RenameOperation) Request() *ldap.ModifyDNRequest {
	return ldap.NewModifyDNWithControlsRequest(o.dn, o.newRDN, o.deleteOldRDN, o.newLocation, ldapControls(o.controls))
}
