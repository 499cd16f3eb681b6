package ldap

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/go-objectsid"
)

// SIDHandler converts between binary objectSid values and S-R-I-S... strings.
type SIDHandler struct{}

func NewSIDHandler() *SIDHandler {
	return &SIDHandler{}
}

// ConvertBinarySIDToString decodes a binary SID.
func (s *SIDHandler) ConvertBinarySIDToString(binarySID []byte) (string, error) {
	if len(binarySID) < 8 {
		return "", fmt.Errorf("binary SID too short: %d bytes", len(binarySID))
	}
	if count := int(binarySID[1]); len(binarySID) != 8+4*count {
		return "", fmt.Errorf("binary SID length %d does not match %d sub-authorities", len(binarySID), count)
	}

	return objectsid.Decode(binarySID).String(), nil
}

// ConvertStringSIDToBinary encodes a SID string such as
// S-1-5-21-3623811015-3361044348-30300820-1013.
func (s *SIDHandler) ConvertStringSIDToBinary(sid string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(sid), "-")
	if len(parts) < 3 || !strings.EqualFold(parts[0], "S") {
		return nil, fmt.Errorf("invalid SID format: %s", sid)
	}

	revision, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid SID revision in %s: %w", sid, err)
	}
	authority, err := strconv.ParseUint(parts[2], 10, 48)
	if err != nil {
		return nil, fmt.Errorf("invalid SID authority in %s: %w", sid, err)
	}

	subAuthorities := parts[3:]
	if len(subAuthorities) > 15 {
		return nil, fmt.Errorf("too many SID sub-authorities in %s", sid)
	}

	out := make([]byte, 8, 8+4*len(subAuthorities))
	out[0] = byte(revision)
	out[1] = byte(len(subAuthorities))
	// 48-bit big-endian identifier authority.
	for i := 0; i < 6; i++ {
		out[2+i] = byte(authority >> (8 * (5 - i)))
	}
	for _, part := range subAuthorities {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SID sub-authority %q in %s: %w", part, sid, err)
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(v))
	}
	return out, nil
}

// RID returns the last sub-authority of a SID string.
func (s *SIDHandler) RID(sid string) (uint32, error) {
	idx := strings.LastIndex(sid, "-")
	if idx < 0 {
		return 0, fmt.Errorf("invalid SID format: %s", sid)
	}
	rid, err := strconv.ParseUint(sid[idx+1:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid SID format: %s", sid)
	}
	return uint32(rid), nil
}

// DomainSID strips the RID from a SID string.
func (s *SIDHandler) DomainSID(sid string) (string, error) {
	if _, err := s.RID(sid); err != nil {
		return "", err
	}
	return sid[:strings.LastIndex(sid, "-")], nil
}
