package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDHandler_IsValidGUID(t *testing.T) {
	handler := NewGUIDHandler()

	tests := []struct {
		name     string
		guid     string
		expected bool
	}{
		{
			name:     "valid hyphenated GUID",
			guid:     "12345678-1234-1234-1234-123456789012",
			expected: true,
		},
		{
			name:     "valid hyphenated GUID uppercase",
			guid:     "ABCDEF00-1234-1234-1234-123456789012",
			expected: true,
		},
		{
			name:     "valid compact GUID",
			guid:     "12345678123412341234123456789012",
			expected: true,
		},
		{
			name:     "valid compact GUID uppercase",
			guid:     "ABCDEF00123412341234123456789012",
			expected: true,
		},
		{
			name:     "empty string",
			guid:     "",
			expected: false,
		},
		{
			name:     "invalid format - too short",
			guid:     "12345678-1234-1234-1234-12345678901",
			expected: false,
		},
		{
			name:     "invalid format - too long",
			guid:     "12345678-1234-1234-1234-1234567890123",
			expected: false,
		},
		{
			name:     "invalid format - wrong separators",
			guid:     "12345678_1234_1234_1234_123456789012",
			expected: false,
		},
		{
			name:     "invalid format - non-hex characters",
			guid:     "12345678-1234-1234-1234-12345678901g",
			expected: false,
		},
		{
			name:     "invalid compact - too short",
			guid:     "1234567812341234123412345678901",
			expected: false,
		},
		{
			name:     "invalid compact - too long",
			guid:     "123456781234123412341234567890123",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.IsValidGUID(tt.guid)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGUIDHandler_StringToGUIDBytes(t *testing.T) {
	handler := NewGUIDHandler()

	// Test GUID: 12345678-1234-1234-1234-123456789012
	// Standard byte order:   [0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x12, 0x34, 0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x90, 0x12]
	// AD mixed-endian order: [0x78, 0x56, 0x34, 0x12, 0x34, 0x12, 0x34, 0x12, 0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x90, 0x12]

	tests := []struct {
		name     string
		input    string
		expected []byte
		wantErr  bool
	}{
		{
			name:  "valid hyphenated GUID",
			input: "12345678-1234-1234-1234-123456789012",
			expected: []byte{
				0x78, 0x56, 0x34, 0x12, // Data1: reversed
				0x34, 0x12, // Data2: reversed
				0x34, 0x12, // Data3: reversed
				0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x90, 0x12, // Data4: original order
			},
			wantErr: false,
		},
		{
			name:  "valid compact GUID",
			input: "12345678123412341234123456789012",
			expected: []byte{
				0x78, 0x56, 0x34, 0x12, // Data1: reversed
				0x34, 0x12, // Data2: reversed
				0x34, 0x12, // Data3: reversed
				0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x90, 0x12, // Data4: original order
			},
			wantErr: false,
		},
		{
			name:    "invalid GUID",
			input:   "invalid-guid",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler.StringToGUIDBytes(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, GUIDBytesLength, len(result))
		})
	}
}

func TestGUIDHandler_GUIDBytesToString(t *testing.T) {
	handler := NewGUIDHandler()

	// AD mixed-endian bytes for GUID: 12345678-1234-1234-1234-123456789012
	adBytes := []byte{
		0x78, 0x56, 0x34, 0x12, // Data1: little-endian
		0x34, 0x12, // Data2: little-endian
		0x34, 0x12, // Data3: little-endian
		0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x90, 0x12, // Data4: big-endian
	}

	tests := []struct {
		name     string
		input    []byte
		expected string
		wantErr  bool
	}{
		{
			name:     "valid AD bytes",
			input:    adBytes,
			expected: "12345678-1234-1234-1234-123456789012",
			wantErr:  false,
		},
		{
			name:    "invalid length - too short",
			input:   []byte{0x78, 0x56, 0x34, 0x12},
			wantErr: true,
		},
		{
			name:    "invalid length - too long",
			input:   append(adBytes, 0x00),
			wantErr: true,
		},
		{
			name:    "nil bytes",
			input:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler.GUIDBytesToString(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGUIDHandler_RoundTrip(t *testing.T) {
	handler := NewGUIDHandler()

	testGUIDs := []string{
		"12345678-1234-1234-1234-123456789012",
		"abcdef00-1111-2222-3333-444455556666",
		"00000000-0000-0000-0000-000000000001",
		"ffffffff-ffff-ffff-ffff-ffffffffffff",
	}

	for _, originalGUID := range testGUIDs {
		t.Run("roundtrip_"+originalGUID, func(t *testing.T) {
			// Convert to bytes
			guidBytes, err := handler.StringToGUIDBytes(originalGUID)
			require.NoError(t, err)

			// Convert back to string
			resultGUID, err := handler.GUIDBytesToString(guidBytes)
			require.NoError(t, err)

			// Should match original
			assert.Equal(t, originalGUID, resultGUID)
		})
	}
}

func TestActiveDirectoryGUIDEncoding(t *testing.T) {
	handler := NewGUIDHandler()

	// GUID: 01234567-89ab-cdef-0123-456789abcdef
	guidString := "01234567-89ab-cdef-0123-456789abcdef"

	expectedADBytes := []byte{
		0x67, 0x45, 0x23, 0x01, // Data1: little-endian (01234567 -> 67452301)
		0xab, 0x89, // Data2: little-endian (89ab -> ab89)
		0xef, 0xcd, // Data3: little-endian (cdef -> efcd)
		0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, // Data4: big-endian (unchanged)
	}

	adBytes, err := handler.StringToGUIDBytes(guidString)
	require.NoError(t, err)
	assert.Equal(t, expectedADBytes, adBytes)

	resultString, err := handler.GUIDBytesToString(adBytes)
	require.NoError(t, err)
	assert.Equal(t, guidString, resultString)

	filterValue, err := handler.GUIDToFilterValue(guidString)
	require.NoError(t, err)
	assert.Equal(t, `\67\45\23\01\ab\89\ef\cd\01\23\45\67\89\ab\cd\ef`, filterValue)

	_, err = handler.GUIDToFilterValue("not-a-guid")
	assert.Error(t, err)
}

func TestHexEscape(t *testing.T) {
	assert.Equal(t, "", HexEscape(nil))
	assert.Equal(t, `\00\ff\2a`, HexEscape([]byte{0x00, 0xff, 0x2a}))
}

func TestSIDHandler_RoundTrip(t *testing.T) {
	handler := NewSIDHandler()

	tests := []struct {
		name   string
		sid    string
		binary []byte
	}{
		{
			name:   "well-known everyone",
			sid:    "S-1-1-0",
			binary: []byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "domain user",
			sid:  "S-1-5-21-1004336348-1177238915-682003330-512",
			binary: []byte{
				0x01, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
				0x15, 0x00, 0x00, 0x00,
				0xdc, 0xf4, 0xdc, 0x3b,
				0x83, 0x3d, 0x2b, 0x46,
				0x82, 0x8b, 0xa6, 0x28,
				0x00, 0x02, 0x00, 0x00,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := handler.ConvertStringSIDToBinary(tt.sid)
			require.NoError(t, err)
			assert.Equal(t, tt.binary, encoded)

			decoded, err := handler.ConvertBinarySIDToString(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.sid, decoded)
		})
	}
}

func TestSIDHandler_Invalid(t *testing.T) {
	handler := NewSIDHandler()

	for _, sid := range []string{"", "S-1", "X-1-5-21", "S-1-5-abc", "S-1-5-21-99999999999"} {
		t.Run(sid, func(t *testing.T) {
			_, err := handler.ConvertStringSIDToBinary(sid)
			assert.Error(t, err)
		})
	}

	_, err := handler.ConvertBinarySIDToString([]byte{0x01, 0x02})
	assert.Error(t, err, "too short")

	_, err = handler.ConvertBinarySIDToString([]byte{0x01, 0x02, 0, 0, 0, 0, 0, 5, 1, 0, 0, 0})
	assert.Error(t, err, "sub-authority count mismatch")
}

func TestSIDHandler_RIDAndDomainSID(t *testing.T) {
	handler := NewSIDHandler()
	sid := "S-1-5-21-1004336348-1177238915-682003330-1104"

	rid, err := handler.RID(sid)
	require.NoError(t, err)
	assert.Equal(t, uint32(1104), rid)

	domain, err := handler.DomainSID(sid)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-21-1004336348-1177238915-682003330", domain)

	_, err = handler.RID("S-1-5-x")
	assert.Error(t, err)
}
