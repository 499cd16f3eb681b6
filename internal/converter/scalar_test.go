package converter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	c := &Bool{}
	ctx := context.Background()

	got, err := c.FromLDAP(ctx, []string{"TRUE"})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = c.FromLDAP(ctx, []string{"TRUE", "false"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, got)

	_, err = c.FromLDAP(ctx, []string{"yes"})
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "yes", formatErr.Raw)

	result, err := c.ToLDAP(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"FALSE"}, result.Values)

	result, err = c.ToLDAP(ctx, []bool{true, false})
	require.NoError(t, err)
	assert.Equal(t, []string{"TRUE", "FALSE"}, result.Values)

	_, err = c.ToLDAP(ctx, "TRUE")
	var invalid *InvalidValueError
	assert.ErrorAs(t, err, &invalid)
}

func TestInt(t *testing.T) {
	c := &Int{}
	ctx := context.Background()

	got, err := c.FromLDAP(ctx, []string{"42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	_, err = c.FromLDAP(ctx, []string{"4x2"})
	assert.Error(t, err)

	tests := []struct {
		name     string
		value    any
		expected []string
	}{
		{name: "int", value: 42, expected: []string{"42"}},
		{name: "int64", value: int64(-1), expected: []string{"-1"}},
		{name: "string", value: " 7 ", expected: []string{"7"}},
		{name: "list", value: []any{1, "2"}, expected: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.ToLDAP(ctx, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Values)
		})
	}

	_, err = c.ToLDAP(ctx, 1.5)
	assert.Error(t, err)
}

func TestEnum(t *testing.T) {
	c := &Enum{}
	ctx := context.Background()

	_, err := c.FromLDAP(ctx, []string{"2"})
	assert.Error(t, err, "enums option is required")

	c.SetOptions(Options{"enums": map[string]any{"Global": 2, "Universal": 8}})

	got, err := c.FromLDAP(ctx, []string{"8"})
	require.NoError(t, err)
	assert.Equal(t, "Universal", got)

	_, err = c.FromLDAP(ctx, []string{"4"})
	assert.Error(t, err)

	result, err := c.ToLDAP(ctx, "global")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, result.Values)

	_, err = c.ToLDAP(ctx, "DomainLocal")
	assert.Error(t, err)
}

func TestGPOptions(t *testing.T) {
	c := &GPOptions{}

	got, err := c.FromLDAP(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	result, err := c.ToLDAP(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, result.Values)

	_, err = c.FromLDAP(context.Background(), []string{"2"})
	assert.Error(t, err)
}

func TestFunctionalLevel(t *testing.T) {
	c := &FunctionalLevel{}

	got, err := c.FromLDAP(context.Background(), []string{"7"})
	require.NoError(t, err)
	assert.Equal(t, "2016", got)

	result, err := c.ToLDAP(context.Background(), "2008 r2")
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, result.Values)

	_, err = c.FromLDAP(context.Background(), []string{"42"})
	assert.Error(t, err)

	_, err = c.ToLDAP(context.Background(), "2025")
	assert.Error(t, err)
}

func TestLogonWorkstations(t *testing.T) {
	c := &LogonWorkstations{}

	got, err := c.FromLDAP(context.Background(), []string{"pc1, pc2,,pc3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pc1", "pc2", "pc3"}, got)

	result, err := c.ToLDAP(context.Background(), []string{"pc1", "pc2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pc1,pc2"}, result.Values)
}

func TestPasswordMustChange(t *testing.T) {
	c := &PasswordMustChange{}

	got, err := c.FromLDAP(context.Background(), []string{"0"})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = c.FromLDAP(context.Background(), []string{"132539328000000000"})
	require.NoError(t, err)
	assert.Equal(t, false, got)

	result, err := c.ToLDAP(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, result.Values)

	result, err = c.ToLDAP(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"-1"}, result.Values)
}

func TestEncodeWindowsPassword(t *testing.T) {
	c := &EncodeWindowsPassword{}

	result, err := c.ToLDAP(context.Background(), "ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"\"\x00a\x00b\x00\"\x00"}, result.Values)

	_, err = c.FromLDAP(context.Background(), []string{"whatever"})
	assert.ErrorIs(t, err, ErrWriteOnly)
}

func TestExchangeVersion(t *testing.T) {
	c := &ExchangeVersion{}

	got, err := c.FromLDAP(context.Background(), []string{"Version 15.1 (Build 30225.42)"})
	require.NoError(t, err)
	assert.Equal(t, "2016", got)

	_, err = c.FromLDAP(context.Background(), []string{"Version 4.0"})
	assert.Error(t, err)

	_, err = c.ToLDAP(context.Background(), "2016")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestWindowsAccountName(t *testing.T) {
	c := &WindowsAccountName{}

	result, err := c.ToLDAP(context.Background(), `EXAMPLE\jdoe`)
	require.NoError(t, err)
	assert.Equal(t, []string{"jdoe"}, result.Values)

	_, err = c.ToLDAP(context.Background(), "a-very-long-account-name")
	assert.Error(t, err)

	_, err = c.ToLDAP(context.Background(), `EXAMPLE\`)
	assert.Error(t, err)
}

func TestLDAPType(t *testing.T) {
	c := &LDAPType{}

	got, err := c.FromLDAP(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	result, err := c.ToLDAP(context.Background(), []any{"a", 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "1"}, result.Values)
}
