package converter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/barthuttinga/ldaptools/internal/operation"
)

// ProxyAddressAttribute is the physical attribute the addresses live in.
const ProxyAddressAttribute = "proxyAddresses"

// ExchangeProxyAddress projects one address type out of proxyAddresses and
// merges writes back into it.
//
// Entries are stored as TYPE:value. An uppercase TYPE marks the single default
// address of that type. Options:
//
//	addressType  the address type handled, e.g. "smtp"
//	is_default   handle only the default address of that type
//
// Several domain attributes (e.g. the default address and the other
// addresses) map onto proxyAddresses. They must share one instance per write
// unit so each write sees the entries produced by the previous one.
type ExchangeProxyAddress struct {
	Base
	working workingSet
}

func (*ExchangeProxyAddress) aggregates() {}

func (c *ExchangeProxyAddress) settings() (addressType string, isDefault bool, err error) {
	addressType, err = c.stringOption("addressType", "smtp")
	if err != nil {
		return "", false, err
	}
	if addressType == "" {
		return "", false, fmt.Errorf("option %q must not be empty", "addressType")
	}
	isDefault, err = c.boolOption("is_default", false)
	return addressType, isDefault, err
}

// FromLDAP returns the addresses of the configured type, in stored order.
// With is_default it returns the default address as a one element list, or
// "" if there is none.
func (c *ExchangeProxyAddress) FromLDAP(_ context.Context, raw []string) (any, error) {
	addressType, isDefault, err := c.settings()
	if err != nil {
		return nil, invalidValue(NameExchangeProxyAddress, raw, err)
	}

	matches := []string{}
	for _, entry := range raw {
		typ, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, formatError(NameExchangeProxyAddress, entry, fmt.Errorf("expected TYPE:value"))
		}
		if !strings.EqualFold(typ, addressType) {
			continue
		}
		if isDefault {
			if isDefaultType(typ) {
				return []string{value}, nil
			}
			continue
		}
		matches = append(matches, value)
	}

	if isDefault {
		return "", nil
	}
	return matches, nil
}

// ToLDAP merges the addresses into the working set according to the batch
// kind and returns the whole set. On modify the batch kind becomes REPLACE,
// because the returned list is the complete attribute.
func (c *ExchangeProxyAddress) ToLDAP(ctx context.Context, value any) (*Result, error) {
	addresses, ok := stringList(value)
	if !ok {
		return nil, invalidValue(NameExchangeProxyAddress, value, nil)
	}
	addressType, isDefault, err := c.settings()
	if err != nil {
		return nil, invalidValue(NameExchangeProxyAddress, value, err)
	}

	candidates := make([]string, 0, len(addresses))
	for _, address := range addresses {
		candidates = append(candidates, formatAddress(addressType, address, isDefault))
	}

	if !c.ShouldAggregateValues() {
		return values(candidates...), nil
	}

	if err := c.working.seed(ctx, &c.Base, ProxyAddressAttribute); err != nil {
		return nil, err
	}

	switch c.modType() {
	case operation.ModAdd:
		c.add(addressType, isDefault, candidates)
	case operation.ModRemove:
		c.remove(addresses)
	case operation.ModReplace:
		c.dropType(addressType, isDefault)
		c.add(addressType, isDefault, candidates)
	case operation.ModRemoveAll:
		c.dropType(addressType, isDefault)
	default:
		return nil, invalidValue(NameExchangeProxyAddress, value, fmt.Errorf("unsupported modification type %s", c.modType()))
	}

	result := values(slices.Clone(c.working.values)...)
	if c.operationType == OperationModify {
		result.ModType = operation.ModReplace
	}
	return result, nil
}

// add appends candidates. A new default demotes the previous default of the
// same type; an address already present is promoted in place when written as
// the default and otherwise left alone.
func (c *ExchangeProxyAddress) add(addressType string, isDefault bool, candidates []string) {
	for _, candidate := range candidates {
		_, value, _ := strings.Cut(candidate, ":")
		if isDefault {
			c.demote(addressType)
		}

		idx := slices.IndexFunc(c.working.values, func(entry string) bool {
			typ, v, ok := strings.Cut(entry, ":")
			return ok && strings.EqualFold(typ, addressType) && strings.EqualFold(v, value)
		})
		switch {
		case idx < 0:
			c.working.values = append(c.working.values, candidate)
		case isDefault:
			c.working.values[idx] = candidate
		}
	}
}

// remove drops every entry whose value matches, whatever its type or case.
func (c *ExchangeProxyAddress) remove(addresses []string) {
	c.working.values = slices.DeleteFunc(c.working.values, func(entry string) bool {
		_, value, _ := strings.Cut(entry, ":")
		return slices.ContainsFunc(addresses, func(address string) bool {
			return strings.EqualFold(address, value)
		})
	})
}

// dropType removes the default (or the non-default) entries of a type.
func (c *ExchangeProxyAddress) dropType(addressType string, defaults bool) {
	c.working.values = slices.DeleteFunc(c.working.values, func(entry string) bool {
		typ, _, ok := strings.Cut(entry, ":")
		return ok && strings.EqualFold(typ, addressType) && isDefaultType(typ) == defaults
	})
}

func (c *ExchangeProxyAddress) demote(addressType string) {
	for i, entry := range c.working.values {
		typ, value, ok := strings.Cut(entry, ":")
		if ok && strings.EqualFold(typ, addressType) && isDefaultType(typ) {
			c.working.values[i] = strings.ToLower(typ) + ":" + value
		}
	}
}

func formatAddress(addressType, address string, isDefault bool) string {
	if isDefault {
		return strings.ToUpper(addressType) + ":" + address
	}
	return strings.ToLower(addressType) + ":" + address
}

func isDefaultType(typ string) bool {
	return typ != "" && typ == strings.ToUpper(typ) && typ != strings.ToLower(typ)
}
