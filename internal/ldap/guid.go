package ldap

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GUIDBytesLength is the size of a binary objectGUID.
const GUIDBytesLength = 16

// GUIDHandler converts between Active Directory's mixed-endian binary GUIDs and
// their canonical string form.
type GUIDHandler struct{}

func NewGUIDHandler() *GUIDHandler {
	return &GUIDHandler{}
}

// ParseGUID accepts hyphenated, compact, braced or urn GUID strings.
func (g *GUIDHandler) ParseGUID(guidString string) (uuid.UUID, error) {
	guidString = strings.TrimSpace(guidString)
	if guidString == "" {
		return uuid.Nil, fmt.Errorf("GUID string cannot be empty")
	}

	id, err := uuid.Parse(guidString)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid GUID format: %s", guidString)
	}
	return id, nil
}

// IsValidGUID reports whether guidString parses as a GUID.
func (g *GUIDHandler) IsValidGUID(guidString string) bool {
	_, err := g.ParseGUID(guidString)
	return err == nil
}

// StringToGUIDBytes encodes a GUID string the way AD stores objectGUID: the
// first three groups little-endian, the rest as-is.
func (g *GUIDHandler) StringToGUIDBytes(guidString string) ([]byte, error) {
	id, err := g.ParseGUID(guidString)
	if err != nil {
		return nil, err
	}
	return swapGUIDEndianness(id[:]), nil
}

// GUIDBytesToString decodes a binary objectGUID.
func (g *GUIDHandler) GUIDBytesToString(guidBytes []byte) (string, error) {
	if len(guidBytes) != GUIDBytesLength {
		return "", fmt.Errorf("invalid GUID byte length: expected %d, got %d", GUIDBytesLength, len(guidBytes))
	}

	id, err := uuid.FromBytes(swapGUIDEndianness(guidBytes))
	if err != nil {
		return "", fmt.Errorf("failed to decode GUID: %w", err)
	}
	return id.String(), nil
}

// GUIDToFilterValue returns the GUID as an escaped byte sequence usable
// directly inside a search filter, e.g. \78\56\34\12...
func (g *GUIDHandler) GUIDToFilterValue(guidString string) (string, error) {
	guidBytes, err := g.StringToGUIDBytes(guidString)
	if err != nil {
		return "", err
	}
	return HexEscape(guidBytes), nil
}

// HexEscape renders every byte as a backslash-prefixed hex pair.
func HexEscape(b []byte) string {
	encoded := hex.EncodeToString(b)

	var sb strings.Builder
	sb.Grow(len(encoded) + len(b))
	for i := 0; i < len(encoded); i += 2 {
		sb.WriteByte('\\')
		sb.WriteString(encoded[i : i+2])
	}
	return sb.String()
}

func swapGUIDEndianness(in []byte) []byte {
	out := make([]byte, GUIDBytesLength)
	out[0], out[1], out[2], out[3] = in[3], in[2], in[1], in[0]
	out[4], out[5] = in[5], in[4]
	out[6], out[7] = in[7], in[6]
	copy(out[8:], in[8:])
	return out
}
