package converter

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/barthuttinga/ldaptools/internal/flags"
)

// securityDescriptorHeaderSize is the size of a self-relative
// SECURITY_DESCRIPTOR header: revision, sbz1, control and four offsets.
const securityDescriptorHeaderSize = 20

// WindowsSecurity reads the control flags of a binary nTSecurityDescriptor.
type WindowsSecurity struct {
	Base
}

func (c *WindowsSecurity) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameWindowsSecurity, raw, func(s string) (flags.Flags, error) {
		return DescriptorControl([]byte(s))
	})
}

func (c *WindowsSecurity) ToLDAP(_ context.Context, value any) (*Result, error) {
	return nil, invalidValue(NameWindowsSecurity, value, ErrReadOnly)
}

// DescriptorControl extracts the control field of a self-relative security
// descriptor.
func DescriptorControl(sd []byte) (flags.Flags, error) {
	if len(sd) < securityDescriptorHeaderSize {
		return flags.Flags{}, fmt.Errorf("security descriptor too short: %d bytes", len(sd))
	}
	if sd[0] != 1 {
		return flags.Flags{}, fmt.Errorf("unsupported security descriptor revision %d", sd[0])
	}
	return flags.ControlFlags(binary.LittleEndian.Uint16(sd[2:4])), nil
}
