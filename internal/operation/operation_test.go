package operation

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameOperationSetters(t *testing.T) {
	op := NewRenameOperation("foo")

	assert.Same(t, op, op.SetDN("cn=foo,dc=example,dc=local"))
	assert.Same(t, op, op.SetNewRDN("cn=bar"))
	assert.Same(t, op, op.SetNewLocation("ou=foo,dc=foo,dc=bar"))
	assert.Same(t, op, op.SetDeleteOldRDN(false))
	assert.Same(t, op, op.SetServer("dc1.example.local"))

	assert.Equal(t, "cn=foo,dc=example,dc=local", op.DN())
	assert.Equal(t, "cn=bar", op.NewRDN())
	assert.Equal(t, "ou=foo,dc=foo,dc=bar", op.NewLocation())
	assert.False(t, op.DeleteOldRDN())
	assert.Equal(t, "dc1.example.local", op.Server())
	assert.Equal(t, "Rename", op.Name())
}

func TestRenameOperationArguments(t *testing.T) {
	op := NewRenameOperation("cn=foo,dc=example,dc=local").
		SetNewRDN("cn=bar").
		SetNewLocation("ou=foobar,dc=example,dc=local").
		SetDeleteOldRDN(true)

	assert.Equal(t, []any{
		"cn=foo,dc=example,dc=local",
		"cn=bar",
		"ou=foobar,dc=example,dc=local",
		true,
	}, op.Arguments())
}

func TestRenameOperationDeletesOldRDNByDefault(t *testing.T) {
	assert.True(t, NewRenameOperation("cn=foo").DeleteOldRDN())
}

func TestRenameOperationLogFields(t *testing.T) {
	op := NewRenameOperation("cn=foo,dc=example,dc=local").
		SetNewRDN("cn=bar").
		AddControl(NewControl("1.2.3", true))

	fields := op.LogFields()
	for _, key := range []string{"New RDN", "New Location", "Delete Old RDN", "DN", "Server", "Controls"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "cn=bar", fields["New RDN"])
	assert.Equal(t, []string{"1.2.3 (criticality: true)"}, fields["Controls"])
}

func TestPreAndPostOperationsPreserveOrder(t *testing.T) {
	op1 := NewAddOperation("cn=foo,dc=bar,dc=foo")
	op2 := NewDeleteOperation("cn=foo,dc=bar,dc=foo")
	op3 := NewRenameOperation("cn=foo,dc=bar,dc=foo")

	separately := NewRenameOperation("foo")
	separately.AddPreOperation(op1)
	separately.AddPreOperation(op2, op3)
	separately.AddPostOperation(op1)
	separately.AddPostOperation(op2, op3)

	together := NewRenameOperation("foo").
		AddPreOperation(op1, op2, op3).
		AddPostOperation(op1, op2, op3)

	expected := []Operation{op1, op2, op3}
	assert.Equal(t, expected, separately.PreOperations())
	assert.Equal(t, expected, separately.PostOperations())
	assert.Equal(t, together.PreOperations(), separately.PreOperations())
	assert.Equal(t, together.PostOperations(), separately.PostOperations())
}

func TestAddControlPreservesOrder(t *testing.T) {
	control1 := NewControl("foo", true)
	control2 := NewControl("bar", false)

	op := NewDeleteOperation("cn=foo")
	op.AddControl(control1, control2)
	op.AddControl(control1)

	assert.Equal(t, []Control{control1, control2, control1}, op.Controls())
}

func TestAddOperation(t *testing.T) {
	op := NewAddOperation("cn=foo,dc=example,dc=com",
		ldap.Attribute{Type: "objectClass", Vals: []string{"top", "user"}},
	).SetAttribute("sAMAccountName", "foo").
		SetAttribute("unicodePwd", "secret").
		SetAttribute("OBJECTCLASS", "top", "person", "user")

	require.Len(t, op.Attributes(), 3)
	assert.Equal(t, []string{"top", "person", "user"}, op.Attributes()[0].Vals)
	assert.Equal(t, []any{"cn=foo,dc=example,dc=com", op.Attributes()}, op.Arguments())

	fields := op.LogFields()
	attrs, ok := fields["Attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", attrs["unicodePwd"])
	assert.Equal(t, []string{"foo"}, attrs["sAMAccountName"])

	req := op.Request()
	assert.Equal(t, "cn=foo,dc=example,dc=com", req.DN)
	assert.Len(t, req.Attributes, 3)

	op.RemoveAttribute("unicodepwd")
	assert.Len(t, op.Attributes(), 2)
}

func TestModifyOperation(t *testing.T) {
	op := NewModifyOperation("cn=foo,dc=example,dc=com",
		NewBatch(ModAdd, "proxyAddresses", "smtp:foo@example.com"),
		NewBatch(ModReplace, "description", "bar"),
	).AddBatch(
		NewBatch(ModRemove, "otherTelephone", "123"),
		NewBatch(ModRemoveAll, "info"),
	)

	assert.Equal(t, "Modify", op.Name())
	assert.Len(t, op.Batches(), 4)

	b, ok := op.BatchFor("DESCRIPTION")
	require.True(t, ok)
	assert.Equal(t, []string{"bar"}, b.StringValues())

	req, err := op.Request()
	require.NoError(t, err)
	require.Len(t, req.Changes, 4)
	assert.Equal(t, uint(ldap.AddAttribute), req.Changes[0].Operation)
	assert.Equal(t, uint(ldap.ReplaceAttribute), req.Changes[1].Operation)
	assert.Equal(t, uint(ldap.DeleteAttribute), req.Changes[2].Operation)
	assert.Empty(t, req.Changes[3].Modification.Vals)

	fields := op.LogFields()
	assert.Contains(t, fields, "Batch")
	assert.Contains(t, fields, "DN")
}

func TestModifyOperationRejectsInvalidBatch(t *testing.T) {
	_, err := NewModifyOperation("cn=foo", &Batch{Attribute: "description"}).Request()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestQueryOperation(t *testing.T) {
	op := NewQueryOperation("(&(objectClass=*))", "proxyAddresses").
		SetBaseDN("cn=foo,dc=foo,dc=bar").
		SetScope(ScopeBase)

	assert.Equal(t, "cn=foo,dc=foo,dc=bar", op.BaseDN())
	assert.Equal(t, "cn=foo,dc=foo,dc=bar", op.DN())
	assert.Equal(t, []string{"proxyAddresses"}, op.Attributes())
	assert.False(t, op.UsePaging())

	op.SetPageSize(500)
	assert.True(t, op.UsePaging())

	req := op.Request()
	assert.Equal(t, ldap.ScopeBaseObject, req.Scope)
	assert.Equal(t, "(&(objectClass=*))", req.Filter)
	assert.Equal(t, "base", op.LogFields()["Scope"])
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		input   string
		want    Scope
		wantErr bool
	}{
		{input: "base", want: ScopeBase},
		{input: "OneLevel", want: ScopeOneLevel},
		{input: "subtree", want: ScopeSubtree},
		{input: "", want: ScopeSubtree},
		{input: "everything", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScope(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSDFlagsControl(t *testing.T) {
	control := SDFlagsControl(SDFlagsOwner | SDFlagsGroup | SDFlagsDACL)

	assert.Equal(t, OIDSDFlags, control.OID)
	assert.True(t, control.Criticality)
	assert.Equal(t, []byte{0x30, 0x03, 0x02, 0x01, 0x07}, []byte(control.Value))
	assert.Equal(t, OIDSDFlags, control.LDAP().GetControlType())
}

func TestBatchStringValues(t *testing.T) {
	b := NewBatch(ModReplace, "foo", "a", []byte("b"), true, 42, int64(-1), ModAdd)
	assert.Equal(t, []string{"a", "b", "TRUE", "42", "-1", "ADD"}, b.StringValues())

	clone := b.Clone()
	clone.Values[0] = "z"
	assert.Equal(t, "a", b.Values[0])
}
