package converter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/barthuttinga/ldaptools/internal/flags"
	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
	"github.com/barthuttinga/ldaptools/internal/operation"
)

const (
	defaultAdministrativeGroup = "Exchange Administrative Group (FYDIBOHF23SPDLT)"

	// automaticPolicyUpdate marks a recipient as updated by every applicable
	// recipient policy. It is not a policy object.
	automaticPolicyUpdate = "26491cfc-9e50-4857-861b-0cb8df22b5d7"
)

// exchangeDN returns the Exchange services container of the forest. The
// configuration_dn option overrides the configuration partition, which
// defaults to the one under the entry's domain.
func (b *Base) exchangeDN() (string, error) {
	config, err := b.stringOption("configuration_dn", "CN=Configuration,"+adldap.DomainDN(b.dn))
	if err != nil {
		return "", err
	}
	return "CN=Microsoft Exchange,CN=Services," + config, nil
}

// ExchangeRoles converts msExchCurrentServerRoles to and from role names.
type ExchangeRoles struct {
	Base
}

func (c *ExchangeRoles) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameExchangeRoles, raw, func(s string) ([]string, error) {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, err
		}
		return flags.New(flags.ExchangeRolesTable, n).Names(), nil
	})
}

func (c *ExchangeRoles) ToLDAP(_ context.Context, value any) (*Result, error) {
	names, ok := stringList(value)
	if !ok {
		return nil, invalidValue(NameExchangeRoles, value, nil)
	}
	roles := flags.New(flags.ExchangeRolesTable, 0)
	for _, name := range names {
		role, ok := flags.ExchangeRolesTable.Lookup(name)
		if !ok {
			return nil, invalidValue(NameExchangeRoles, name, fmt.Errorf("unknown Exchange role %q", name))
		}
		roles = roles.With(role)
	}
	return values(strconv.FormatUint(roles.Value(), 10)), nil
}

// exchangeObjectVersions maps msExchVersion values to the product that
// stamped them.
var exchangeObjectVersions = []struct {
	value   string
	product string
}{
	{"4535486012416", "2007"},
	{"44220983382016", "2010"},
	{"88218628259840", "2013"},
}

// ExchangeObjectVersion converts msExchVersion to and from a product year.
type ExchangeObjectVersion struct {
	Base
}

func (c *ExchangeObjectVersion) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameExchangeObjectVersion, raw, func(s string) (string, error) {
		for _, v := range exchangeObjectVersions {
			if v.value == s {
				return v.product, nil
			}
		}
		return "", fmt.Errorf("unknown Exchange object version")
	})
}

func (c *ExchangeObjectVersion) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameExchangeObjectVersion, value, func(product string) (string, error) {
		product = strings.TrimSpace(strings.TrimPrefix(product, "Exchange "))
		for _, v := range exchangeObjectVersions {
			if v.product == product {
				return v.value, nil
			}
		}
		return "", fmt.Errorf("unknown Exchange version %q", product)
	})
}

// ExchangeLegacyDN builds legacyExchangeDN from a recipient name. Full values
// starting with /o= are written as they are; an empty name uses the entry's
// RDN value. Options: organization (looked up when unset),
// administrative_group and recipients (default "Recipients").
type ExchangeLegacyDN struct {
	Base
}

func (c *ExchangeLegacyDN) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameExchangeLegacyDN, raw, func(s string) (string, error) {
		return s, nil
	})
}

func (c *ExchangeLegacyDN) ToLDAP(ctx context.Context, value any) (*Result, error) {
	names, ok := stringList(value)
	if !ok {
		return nil, invalidValue(NameExchangeLegacyDN, value, nil)
	}
	group, err := c.stringOption("administrative_group", defaultAdministrativeGroup)
	if err != nil {
		return nil, invalidValue(NameExchangeLegacyDN, value, err)
	}
	recipients, err := c.stringOption("recipients", "Recipients")
	if err != nil {
		return nil, invalidValue(NameExchangeLegacyDN, value, err)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), "/o=") {
			out = append(out, name)
			continue
		}
		if name == "" {
			if name, err = adldap.LeadingRDNValue(c.dn); err != nil {
				return nil, invalidValue(NameExchangeLegacyDN, value, err)
			}
		}
		org, err := c.organization(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("/o=%s/ou=%s/cn=%s/cn=%s", org, group, recipients, name))
	}
	return values(out...), nil
}

// organization returns the organization option, or the name of the forest's
// Exchange organization.
func (c *ExchangeLegacyDN) organization(ctx context.Context) (string, error) {
	org, err := c.stringOption("organization", "")
	if err != nil || org != "" {
		return org, err
	}
	if c.conn == nil {
		return "", invalidValue(NameExchangeLegacyDN, c.dn, fmt.Errorf("no connection to look up the Exchange organization"))
	}
	base, err := c.exchangeDN()
	if err != nil {
		return "", invalidValue(NameExchangeLegacyDN, c.dn, err)
	}

	query := operation.NewQueryOperation("(objectClass=msExchOrganizationContainer)", "name").
		SetBaseDN(base).
		SetScope(operation.ScopeOneLevel)
	entries, err := c.conn.Execute(ctx, query)
	if err != nil {
		return "", err
	}
	if len(entries) != 1 {
		return "", invalidValue(NameExchangeLegacyDN, c.dn, fmt.Errorf("expected one Exchange organization, found %d", len(entries)))
	}
	if name := attributeValues(entries[0], "name"); len(name) > 0 {
		return name[0], nil
	}
	return adldap.LeadingRDNValue(entries[0].DN)
}

// ExchangeRecipientPolicy converts msExchPoliciesIncluded between recipient
// policy GUIDs and policy names. The automatic update marker is hidden on
// reads and written when the auto_update option is true.
type ExchangeRecipientPolicy struct {
	Base
	guids *adldap.GUIDHandler
}

func NewExchangeRecipientPolicy() *ExchangeRecipientPolicy {
	return &ExchangeRecipientPolicy{guids: adldap.NewGUIDHandler()}
}

func (c *ExchangeRecipientPolicy) FromLDAP(ctx context.Context, raw []string) (any, error) {
	names := []string{}
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			guid := strings.ToLower(strings.Trim(strings.TrimSpace(part), "{}"))
			if guid == "" || guid == automaticPolicyUpdate {
				continue
			}
			name, err := c.policyName(ctx, guid)
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *ExchangeRecipientPolicy) policyName(ctx context.Context, guid string) (string, error) {
	if c.conn == nil {
		return "", formatError(NameExchangeRecipientPolicy, guid, fmt.Errorf("no connection"))
	}
	escaped, err := c.guids.GUIDToFilterValue(guid)
	if err != nil {
		return "", formatError(NameExchangeRecipientPolicy, guid, err)
	}
	entries, err := c.queryPolicies(ctx, fmt.Sprintf("(objectGUID=%s)", escaped), "name")
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", formatError(NameExchangeRecipientPolicy, guid, fmt.Errorf("no recipient policy with this GUID"))
	}
	if name := attributeValues(entries[0], "name"); len(name) > 0 {
		return name[0], nil
	}
	return adldap.LeadingRDNValue(entries[0].DN)
}

func (c *ExchangeRecipientPolicy) ToLDAP(ctx context.Context, value any) (*Result, error) {
	names, ok := stringList(value)
	if !ok {
		return nil, invalidValue(NameExchangeRecipientPolicy, value, nil)
	}
	autoUpdate, err := c.boolOption("auto_update", false)
	if err != nil {
		return nil, invalidValue(NameExchangeRecipientPolicy, value, err)
	}

	out := make([]string, 0, len(names)+1)
	for _, name := range names {
		guid, err := c.policyGUID(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, "{"+guid+"}")
	}
	if autoUpdate {
		out = append(out, "{"+automaticPolicyUpdate+"}")
	}
	return values(out...), nil
}

func (c *ExchangeRecipientPolicy) policyGUID(ctx context.Context, name string) (string, error) {
	if id, err := c.guids.ParseGUID(name); err == nil {
		return id.String(), nil
	}
	if c.conn == nil {
		return "", invalidValue(NameExchangeRecipientPolicy, name, fmt.Errorf("no connection to resolve %q", name))
	}
	entries, err := c.queryPolicies(ctx, fmt.Sprintf("(name=%s)", ldap.EscapeFilter(name)), "objectGUID")
	if err != nil {
		return "", err
	}
	if len(entries) != 1 {
		return "", invalidValue(NameExchangeRecipientPolicy, name, fmt.Errorf("expected one recipient policy named %q, found %d", name, len(entries)))
	}
	raw := attributeValues(entries[0], "objectGUID")
	if len(raw) == 0 {
		return "", invalidValue(NameExchangeRecipientPolicy, name, fmt.Errorf("recipient policy %q has no objectGUID", name))
	}
	guid, err := c.guids.GUIDBytesToString([]byte(raw[0]))
	if err != nil {
		return "", invalidValue(NameExchangeRecipientPolicy, name, err)
	}
	return guid, nil
}

func (c *ExchangeRecipientPolicy) queryPolicies(ctx context.Context, match, attribute string) ([]*ldap.Entry, error) {
	base, err := c.exchangeDN()
	if err != nil {
		return nil, invalidValue(NameExchangeRecipientPolicy, match, err)
	}
	query := operation.NewQueryOperation(fmt.Sprintf("(&(objectClass=msExchRecipientPolicy)%s)", match), attribute).
		SetBaseDN(base)
	return c.conn.Execute(ctx, query)
}
