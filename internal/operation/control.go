package operation

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/go-ldap/ldap/v3"
)

// Well-known Active Directory control OIDs.
const (
	OIDSDFlags     = "1.2.840.113556.1.4.801"
	OIDShowDeleted = "1.2.840.113556.1.4.417"
	OIDTreeDelete  = "1.2.840.113556.1.4.805"
	OIDPermissive  = "1.2.840.113556.1.4.1413"
)

// Security descriptor parts selectable through the SD flags control.
const (
	SDFlagsOwner uint32 = 0x1
	SDFlagsGroup uint32 = 0x2
	SDFlagsDACL  uint32 = 0x4
	SDFlagsSACL  uint32 = 0x8
)

// Control is a protocol control attached to an operation. Value holds the
// already encoded control value, if any.
type Control struct {
	OID         string
	Criticality bool
	Value       string
}

// NewControl creates a control without a value.
func NewControl(oid string, criticality bool) Control {
	return Control{OID: oid, Criticality: criticality}
}

// WithValue returns a copy of the control carrying value.
func (c Control) WithValue(value string) Control {
	c.Value = value
	return c
}

// LDAP converts the control for go-ldap requests.
func (c Control) LDAP() ldap.Control {
	return ldap.NewControlString(c.OID, c.Criticality, c.Value)
}

func (c Control) String() string {
	return fmt.Sprintf("%s (criticality: %t)", c.OID, c.Criticality)
}

// SDFlagsControl selects which parts of nTSecurityDescriptor are read or
// written. The value is the BER sequence { INTEGER flags }.
func SDFlagsControl(sdFlags uint32) Control {
	seq := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "SDFlagsRequestValue")
	seq.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(sdFlags), "Flags"))
	return Control{OID: OIDSDFlags, Criticality: true, Value: string(seq.Bytes())}
}

// ShowDeletedControl includes tombstoned objects in search results.
func ShowDeletedControl() Control {
	return NewControl(OIDShowDeleted, true)
}

// TreeDeleteControl deletes an object together with its subtree.
func TreeDeleteControl() Control {
	return NewControl(OIDTreeDelete, true)
}

// PermissiveModifyControl makes adding an existing value or removing a
// missing one succeed.
func PermissiveModifyControl() Control {
	return NewControl(OIDPermissive, false)
}

func ldapControls(controls []Control) []ldap.Control {
	if len(controls) == 0 {
		return nil
	}
	out := make([]ldap.Control, 0, len(controls))
	for _, control := range controls {
		out = append(out, control.LDAP())
	}
	return out
}
