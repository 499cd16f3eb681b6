package converter

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltIns(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{
		NameBool, NameInt, NameEnum, NameGeneralizedTime, NameWindowsGeneralizedTime,
		NameWindowsTime, NameAccountExpires, NameLockoutTime, NameADTimeSpan,
		NameWindowsGUID, NameWindowsSID, NameWindowsAccountName, NameEncodeWindowsPassword,
		NamePasswordMustChange, NameFlags, NameGroupType, NameValueToDN, NamePrimaryGroup,
		NameGroupMembership, NameExchangeProxyAddress, NameExchangeVersion,
		NameExchangeObjectVersion, NameExchangeRoles, NameExchangeLegacyDN,
		NameExchangeRecipientPolicy, NameGPOLink, NameLogonWorkstations, NameGPOptions,
		NameFunctionalLevel, NameWindowsSecurity, NameLDAPType,
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, r.Has(name))

			first, err := r.Get(name)
			require.NoError(t, err)
			second, err := r.Get(name)
			require.NoError(t, err)
			assert.NotSame(t, first, second, "each Get returns a fresh instance")
		})
	}

	names := r.Names()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Len(t, names, 31)
}

func TestRegistry_WindowsGeneralizedTime(t *testing.T) {
	c, err := NewRegistry().Get(NameWindowsGeneralizedTime)
	require.NoError(t, err)

	gt, ok := c.(*GeneralizedTime)
	require.True(t, ok)
	assert.True(t, gt.Windows)
}

func TestRegistry_UnknownName(t *testing.T) {
	_, err := NewRegistry().Get("foo")

	var unknown *UnknownConverterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "foo", unknown.Name)
	assert.Equal(t, "attribute converter not registered: foo", err.Error())
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()

	err := r.Register(NameBool, func() any { return &Bool{} })

	var duplicate *DuplicateNameError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, NameBool, duplicate.Name)
}

func TestRegistry_ContractCheckedAtGet(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("not_a_converter", func() any { return struct{}{} }))
	assert.True(t, r.Has("not_a_converter"))

	_, err := r.Get("not_a_converter")
	var violation *ContractViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "not_a_converter", violation.Name)
	assert.Equal(t, "struct {}", violation.Type)
}

func TestRegistry_RegisterCustom(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("upper", func() any { return &LDAPType{} }))

	c, err := r.Get("upper")
	require.NoError(t, err)
	assert.IsType(t, &LDAPType{}, c)

	assert.Error(t, r.Register("", func() any { return &LDAPType{} }))
	assert.Error(t, r.Register("nil_factory", nil))
}
