package converter

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-ldap/ldap/v3"

	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
	"github.com/barthuttinga/ldaptools/internal/operation"
)

// lookupOptions configures how a name is resolved to a DN.
type lookupOptions struct {
	Attribute string `default:"cn"`
	Filter    string `default:"(objectClass=*)"`
	BaseDN    string
}

func (b *Base) lookupOptions(defaultFilter string) (lookupOptions, error) {
	opts := lookupOptions{}
	if err := defaults.Set(&opts); err != nil {
		return opts, err
	}
	if defaultFilter != "" {
		opts.Filter = defaultFilter
	}

	var err error
	if opts.Attribute, err = b.stringOption("attribute", opts.Attribute); err != nil {
		return opts, err
	}
	if opts.Filter, err = b.stringOption("filter", opts.Filter); err != nil {
		return opts, err
	}
	if opts.BaseDN, err = b.stringOption("base_dn", adldap.DomainDN(b.dn)); err != nil {
		return opts, err
	}
	return opts, nil
}

// resolveDN finds the single entry whose opts.Attribute equals value.
// Values that already are DNs are returned as they are, and GUIDs match
// objectGUID instead of opts.Attribute. A missing search base means nothing
// matches.
func (b *Base) resolveDN(ctx context.Context, converter, value string, opts lookupOptions) (string, error) {
	if adldap.IsDN(value) {
		return value, nil
	}
	if b.conn == nil {
		return "", invalidValue(converter, value, fmt.Errorf("no connection to resolve %q", value))
	}

	filter := fmt.Sprintf("(&%s(%s=%s))", opts.Filter, opts.Attribute, ldap.EscapeFilter(value))
	if guids := adldap.NewGUIDHandler(); guids.IsValidGUID(value) {
		escaped, err := guids.GUIDToFilterValue(value)
		if err != nil {
			return "", invalidValue(converter, value, err)
		}
		filter = fmt.Sprintf("(&%s(objectGUID=%s))", opts.Filter, escaped)
	}
	query := operation.NewQueryOperation(filter, "distinguishedName").SetBaseDN(opts.BaseDN)

	entries, err := b.conn.Execute(ctx, query)
	if adldap.IsNotFoundError(err) {
		return "", invalidValue(converter, value, fmt.Errorf("search base %q does not exist: %w", opts.BaseDN, err))
	}
	if err != nil {
		return "", err
	}
	switch len(entries) {
	case 0:
		return "", invalidValue(converter, value, fmt.Errorf("no entry found with %s=%s", opts.Attribute, value))
	case 1:
		return entries[0].DN, nil
	default:
		return "", invalidValue(converter, value, fmt.Errorf("%d entries found with %s=%s", len(entries), opts.Attribute, value))
	}
}

// ValueToDN stores a reference to another entry (e.g. manager) as its DN
// and reads it back as the referenced entry's RDN value. Options: attribute,
// filter and base_dn select the entry a name resolves to.
type ValueToDN struct {
	Base
}

func (c *ValueToDN) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameValueToDN, raw, adldap.LeadingRDNValue)
}

func (c *ValueToDN) ToLDAP(ctx context.Context, value any) (*Result, error) {
	opts, err := c.lookupOptions("")
	if err != nil {
		return nil, invalidValue(NameValueToDN, value, err)
	}
	names, ok := stringList(value)
	if !ok {
		return nil, invalidValue(NameValueToDN, value, nil)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		dn, err := c.resolveDN(ctx, NameValueToDN, name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, dn)
	}
	return values(out...), nil
}

// PrimaryGroup converts primaryGroupID, a RID relative to the entry's domain
// SID, to and from the group's name.
type PrimaryGroup struct {
	Base
	sids *adldap.SIDHandler
}

func NewPrimaryGroup() *PrimaryGroup {
	return &PrimaryGroup{sids: adldap.NewSIDHandler()}
}

func (c *PrimaryGroup) FromLDAP(ctx context.Context, raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if c.conn == nil {
		return nil, invalidValue(NamePrimaryGroup, raw, fmt.Errorf("no connection"))
	}
	opts, err := c.lookupOptions("(objectClass=group)")
	if err != nil {
		return nil, invalidValue(NamePrimaryGroup, raw, err)
	}

	rid := raw[0]
	if _, err := strconv.ParseUint(rid, 10, 32); err != nil {
		return nil, formatError(NamePrimaryGroup, rid, err)
	}

	sidValues, err := c.readBack(ctx, "objectSid")
	if err != nil {
		return nil, err
	}
	if len(sidValues) == 0 {
		return nil, invalidValue(NamePrimaryGroup, raw, fmt.Errorf("%q has no objectSid", c.dn))
	}
	userSID, err := c.sids.ConvertBinarySIDToString([]byte(sidValues[0]))
	if err != nil {
		return nil, formatError(NamePrimaryGroup, sidValues[0], err)
	}
	domainSID, err := c.sids.DomainSID(userSID)
	if err != nil {
		return nil, formatError(NamePrimaryGroup, userSID, err)
	}
	groupSID, err := c.sids.ConvertStringSIDToBinary(domainSID + "-" + rid)
	if err != nil {
		return nil, formatError(NamePrimaryGroup, rid, err)
	}

	query := operation.NewQueryOperation(
		fmt.Sprintf("(&%s(objectSid=%s))", opts.Filter, adldap.HexEscape(groupSID)),
		opts.Attribute,
	).SetBaseDN(opts.BaseDN)
	entries, err := c.conn.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, invalidValue(NamePrimaryGroup, raw, fmt.Errorf("no group with RID %s", rid))
	}
	if name := attributeValues(entries[0], opts.Attribute); len(name) > 0 {
		return name[0], nil
	}
	return adldap.LeadingRDNValue(entries[0].DN)
}

func (c *PrimaryGroup) ToLDAP(ctx context.Context, value any) (*Result, error) {
	name, ok := value.(string)
	if !ok {
		return nil, invalidValue(NamePrimaryGroup, value, nil)
	}
	if c.conn == nil {
		return nil, invalidValue(NamePrimaryGroup, value, fmt.Errorf("no connection"))
	}
	opts, err := c.lookupOptions("(objectClass=group)")
	if err != nil {
		return nil, invalidValue(NamePrimaryGroup, value, err)
	}

	filter := fmt.Sprintf("(&%s(%s=%s))", opts.Filter, opts.Attribute, ldap.EscapeFilter(name))
	if adldap.IsDN(name) {
		filter = fmt.Sprintf("(&%s(distinguishedName=%s))", opts.Filter, ldap.EscapeFilter(name))
	}
	entries, err := c.conn.Execute(ctx, operation.NewQueryOperation(filter, "primaryGroupToken").SetBaseDN(opts.BaseDN))
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, invalidValue(NamePrimaryGroup, value, fmt.Errorf("expected one group named %q, found %d", name, len(entries)))
	}
	token := attributeValues(entries[0], "primaryGroupToken")
	if len(token) == 0 {
		return nil, invalidValue(NamePrimaryGroup, value, fmt.Errorf("group %q has no primaryGroupToken", name))
	}
	return values(token[0]), nil
}

// GroupMembership manages an entry's groups. The groups are read from
// memberOf as names; writes cannot touch memberOf, so they become
// modifications of the groups' member attribute that run after the owning
// operation. Options: attribute, filter and base_dn as for value_to_dn, plus
// to_attribute (default "member") and from_attribute (default "memberOf").
type GroupMembership struct {
	Base
}

func (*GroupMembership) aggregates() {}

func (c *GroupMembership) FromLDAP(_ context.Context, raw []string) (any, error) {
	names := make([]string, 0, len(raw))
	for _, dn := range raw {
		name, err := adldap.LeadingRDNValue(dn)
		if err != nil {
			return nil, formatError(NameGroupMembership, dn, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (c *GroupMembership) ToLDAP(ctx context.Context, value any) (*Result, error) {
	names, ok := stringList(value)
	if !ok {
		return nil, invalidValue(NameGroupMembership, value, nil)
	}
	opts, err := c.lookupOptions("(objectClass=group)")
	if err != nil {
		return nil, invalidValue(NameGroupMembership, value, err)
	}
	toAttribute, err := c.stringOption("to_attribute", "member")
	if err != nil {
		return nil, invalidValue(NameGroupMembership, value, err)
	}
	fromAttribute, err := c.stringOption("from_attribute", "memberOf")
	if err != nil {
		return nil, invalidValue(NameGroupMembership, value, err)
	}

	groups := make([]string, 0, len(names))
	for _, name := range names {
		dn, err := c.resolveDN(ctx, NameGroupMembership, name, opts)
		if err != nil {
			return nil, err
		}
		groups = append(groups, dn)
	}
	if !c.ShouldAggregateValues() {
		return values(groups...), nil
	}

	var add, remove []string
	switch c.modType() {
	case operation.ModAdd:
		add = groups
	case operation.ModRemove:
		remove = groups
	case operation.ModReplace, operation.ModRemoveAll:
		var current []string
		if c.operationType == OperationModify {
			if current, err = c.readBack(ctx, fromAttribute); err != nil {
				return nil, err
			}
		}
		if c.modType() == operation.ModRemoveAll {
			groups = nil
		}
		add, remove = diffDNs(current, groups)
	}

	result := &Result{Omit: true}
	for _, group := range add {
		result.PostOperations = append(result.PostOperations,
			operation.NewModifyOperation(group, operation.NewBatch(operation.ModAdd, toAttribute, c.dn)))
	}
	for _, group := range remove {
		result.PostOperations = append(result.PostOperations,
			operation.NewModifyOperation(group, operation.NewBatch(operation.ModRemove, toAttribute, c.dn)))
	}
	return result, nil
}

// diffDNs returns the DNs in want but not in have, and those in have but not
// in want.
func diffDNs(have, want []string) (add, remove []string) {
	contains := func(list []string, dn string) bool {
		return slices.ContainsFunc(list, func(other string) bool {
			return sameDN(other, dn)
		})
	}
	for _, dn := range want {
		if !contains(have, dn) {
			add = append(add, dn)
		}
	}
	for _, dn := range have {
		if !contains(want, dn) {
			remove = append(remove, dn)
		}
	}
	return add, remove
}

// sameDN compares DNs ignoring case and escaping differences. DNs that do not
// parse are compared as strings.
func sameDN(a, b string) bool {
	na, errA := adldap.NormalizeDNCase(a)
	nb, errB := adldap.NormalizeDNCase(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return strings.EqualFold(na, nb)
}
