package converter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralizedTime_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected time.Time
		offset   int
	}{
		{
			name:     "utc",
			raw:      "19920622123421.0Z",
			expected: time.Date(1992, 6, 22, 12, 34, 21, 0, time.UTC),
			offset:   0,
		},
		{
			name:     "positive offset",
			raw:      "20001231235959.0+0100",
			expected: time.Date(2000, 12, 31, 22, 59, 59, 0, time.UTC),
			offset:   3600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &GeneralizedTime{Windows: true}

			got, err := c.FromLDAP(context.Background(), []string{tt.raw})
			require.NoError(t, err)
			parsed, ok := got.(time.Time)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(parsed), "got %s", parsed)
			_, offset := parsed.Zone()
			assert.Equal(t, tt.offset, offset)

			result, err := c.ToLDAP(context.Background(), parsed)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.raw}, result.Values)
		})
	}
}

func TestGeneralizedTime_PlainFormat(t *testing.T) {
	c := &GeneralizedTime{}

	result, err := c.ToLDAP(context.Background(), time.Date(1992, 6, 22, 12, 34, 21, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"19920622123421Z"}, result.Values)

	got, err := c.FromLDAP(context.Background(), []string{"19920622123421Z", "20200101000000Z"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGeneralizedTime_Invalid(t *testing.T) {
	c := &GeneralizedTime{}

	_, err := c.FromLDAP(context.Background(), []string{"yesterday"})
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "yesterday", formatErr.Raw)
	assert.Equal(t, NameGeneralizedTime, formatErr.Converter)

	_, err = c.ToLDAP(context.Background(), time.Time{})
	assert.Error(t, err)

	_, err = c.ToLDAP(context.Background(), "19920622123421Z")
	assert.Error(t, err)
}

func TestWindowsTime(t *testing.T) {
	c := &WindowsTime{}
	newYear := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw      string
		expected time.Time
	}{
		{raw: "116444736000000000", expected: time.Unix(0, 0).UTC()},
		{raw: "132539328000000000", expected: newYear},
		{raw: "0", expected: time.Time{}},
		{raw: "9223372036854775807", expected: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := c.FromLDAP(context.Background(), []string{tt.raw})
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got.(time.Time)))
		})
	}

	result, err := c.ToLDAP(context.Background(), newYear)
	require.NoError(t, err)
	assert.Equal(t, []string{"132539328000000000"}, result.Values)

	result, err = c.ToLDAP(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, result.Values)

	_, err = c.FromLDAP(context.Background(), []string{"soon"})
	assert.Error(t, err)
}

func TestAccountExpires(t *testing.T) {
	c := &AccountExpires{}

	got, err := c.FromLDAP(context.Background(), []string{NeverExpires})
	require.NoError(t, err)
	assert.Equal(t, false, got)

	got, err = c.FromLDAP(context.Background(), []string{"0"})
	require.NoError(t, err)
	assert.Equal(t, false, got)

	got, err = c.FromLDAP(context.Background(), []string{"132539328000000000"})
	require.NoError(t, err)
	assert.True(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got.(time.Time)))

	result, err := c.ToLDAP(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{NeverExpires}, result.Values)

	result, err = c.ToLDAP(context.Background(), time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"132539328000000000"}, result.Values)

	_, err = c.ToLDAP(context.Background(), true)
	assert.Error(t, err)
}

func TestLockoutTime(t *testing.T) {
	c := &LockoutTime{}

	got, err := c.FromLDAP(context.Background(), []string{"0"})
	require.NoError(t, err)
	assert.Equal(t, false, got)

	got, err = c.FromLDAP(context.Background(), []string{"132539328000000000"})
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, got)

	result, err := c.ToLDAP(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, result.Values)

	_, err = c.ToLDAP(context.Background(), true)
	assert.Error(t, err)

	_, err = c.ToLDAP(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestADTimeSpan(t *testing.T) {
	c := &ADTimeSpan{}

	got, err := c.FromLDAP(context.Background(), []string{"-864000000000"})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, got)

	got, err = c.FromLDAP(context.Background(), []string{NeverTimeSpan})
	require.NoError(t, err)
	assert.Equal(t, Never, got)

	_, err = c.FromLDAP(context.Background(), []string{"5"})
	assert.Error(t, err)

	result, err := c.ToLDAP(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"-864000000000"}, result.Values)

	result, err = c.ToLDAP(context.Background(), Never)
	require.NoError(t, err)
	assert.Equal(t, []string{NeverTimeSpan}, result.Values)

	_, err = c.ToLDAP(context.Background(), -time.Second)
	assert.Error(t, err)
}
