package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barthuttinga/ldaptools/internal/operation"
)

func userSchema() *ObjectSchema {
	s := New("user")
	s.ObjectClass = []string{"top", "person", "organizationalPerson", "user"}
	s.ObjectCategory = "person"
	return s.
		MapAttribute("name", "cn").
		MapAttribute("emailAddress", "mail").
		MapAttribute("exchangeSmtpAddress", "proxyAddresses").
		MapAttribute("exchangeDefaultSmtpAddress", "proxyAddresses").
		SetConverter("proxyAddresses", "exchange_proxy_address").
		SetConverterOptions("exchange_proxy_address", "exchangeDefaultSmtpAddress", map[string]any{"is_default": true}).
		SetConverterOptions("exchange_proxy_address", "proxyAddresses", map[string]any{"addressType": "smtp"}).
		SetMultivalued("proxyAddresses")
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New("group")

	assert.Equal(t, "group", s.Name)
	assert.Equal(t, []string{"name"}, s.RDN)
	assert.Equal(t, "subtree", s.Scope)
	assert.True(t, s.UsePaging)

	scope, err := s.SearchScope()
	require.NoError(t, err)
	assert.Equal(t, operation.ScopeSubtree, scope)
}

func TestAttributeToLDAP(t *testing.T) {
	s := userSchema()

	tests := []struct {
		name string
		want string
	}{
		{"name", "cn"},
		{"NAME", "cn"},
		{"EmailAddress", "mail"},
		{"exchangeSmtpAddress", "proxyAddresses"},
		{"description", "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.AttributeToLDAP(tt.name))
		})
	}

	assert.True(t, s.HasAttribute("emailaddress"))
	assert.False(t, s.HasAttribute("description"))
}

func TestMapAttributeReplaces(t *testing.T) {
	s := New("user").MapAttribute("name", "cn").MapAttribute("Name", "displayName")

	assert.Equal(t, "displayName", s.AttributeToLDAP("name"))
	assert.Equal(t, []string{"name"}, s.Attributes())
}

func TestNamesMappedToAttribute(t *testing.T) {
	s := userSchema()

	assert.Equal(t, []string{"exchangeSmtpAddress", "exchangeDefaultSmtpAddress"}, s.NamesMappedToAttribute("proxyaddresses"))
	assert.True(t, s.HasNamesMappedToAttribute("PROXYADDRESSES"))
	assert.Empty(t, s.NamesMappedToAttribute("description"))
	assert.False(t, s.HasNamesMappedToAttribute("description"))
}

func TestConverterFor(t *testing.T) {
	s := userSchema()

	name, err := s.ConverterFor("ProxyAddresses")
	require.NoError(t, err)
	assert.Equal(t, "exchange_proxy_address", name)
	assert.True(t, s.HasConverter("proxyaddresses"))

	_, err = s.ConverterFor("mail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no converter defined for attribute "mail"`)
	assert.False(t, s.HasConverter("mail"))
}

func TestConverterOptions(t *testing.T) {
	s := userSchema()

	t.Run("domain name", func(t *testing.T) {
		assert.Equal(t, map[string]any{"is_default": true},
			s.ConverterOptions("exchange_proxy_address", "ExchangeDefaultSmtpAddress"))
	})

	t.Run("falls back to directory name", func(t *testing.T) {
		assert.Equal(t, map[string]any{"addressType": "smtp"},
			s.ConverterOptions("exchange_proxy_address", "exchangeSmtpAddress"))
	})

	t.Run("missing is empty", func(t *testing.T) {
		opts := s.ConverterOptions("bool", "enabled")
		assert.NotNil(t, opts)
		assert.Empty(t, opts)
	})

	t.Run("returns a copy", func(t *testing.T) {
		opts := s.ConverterOptions("exchange_proxy_address", "exchangeDefaultSmtpAddress")
		opts["is_default"] = false
		assert.Equal(t, true, s.ConverterOptions("exchange_proxy_address", "exchangeDefaultSmtpAddress")["is_default"])
	})
}

func TestIsMultivaluedAttribute(t *testing.T) {
	s := userSchema()

	assert.True(t, s.IsMultivaluedAttribute("proxyaddresses"))
	assert.False(t, s.IsMultivaluedAttribute("mail"))
}

func TestIsRequired(t *testing.T) {
	s := New("user")
	s.RequiredAttributes = []string{"name", "username"}

	assert.True(t, s.IsRequired("Username"))
	assert.False(t, s.IsRequired("description"))
}

func TestQuery(t *testing.T) {
	t.Run("object class and category", func(t *testing.T) {
		s := userSchema()
		s.BaseDN = "dc=example,dc=com"
		s.Controls = []operation.Control{operation.ShowDeletedControl()}

		q, err := s.Query("(cn=foo)", "name", "emailAddress")
		require.NoError(t, err)

		assert.Equal(t, "(&(objectClass=top)(objectClass=person)(objectClass=organizationalPerson)(objectClass=user)(objectCategory=person)(cn=foo))", q.Filter())
		assert.Equal(t, []string{"cn", "mail"}, q.Attributes())
		assert.Equal(t, "dc=example,dc=com", q.BaseDN())
		assert.Equal(t, operation.ScopeSubtree, q.Scope())
		assert.True(t, q.UsePaging())
		assert.Len(t, q.Controls(), 1)
	})

	t.Run("schema filter wins", func(t *testing.T) {
		s := New("contact")
		s.ObjectClass = []string{"contact"}
		s.Filter = "(objectClass=contact)"
		s.Scope = "onelevel"
		s.UsePaging = false

		q, err := s.Query("")
		require.NoError(t, err)
		assert.Equal(t, "(objectClass=contact)", q.Filter())
		assert.Equal(t, operation.ScopeOneLevel, q.Scope())
		assert.False(t, q.UsePaging())
	})

	t.Run("no filter at all", func(t *testing.T) {
		q, err := New("any").Query("")
		require.NoError(t, err)
		assert.Equal(t, "(objectClass=*)", q.Filter())
	})

	t.Run("invalid scope", func(t *testing.T) {
		s := New("user")
		s.Scope = "everywhere"

		_, err := s.Query("")
		require.Error(t, err)
	})
}
