package converter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/creasty/defaults"

	"github.com/barthuttinga/ldaptools/internal/flags"
	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
	"github.com/barthuttinga/ldaptools/internal/operation"
)

// MatchingRuleBitAnd is LDAP_MATCHING_RULE_BIT_AND: it matches when every
// bit of the assertion value is set in the attribute.
const MatchingRuleBitAnd = "1.2.840.113556.1.4.803"

// bitFilter matches entries whose attribute has bit set, or not set when set
// is false.
func bitFilter(attribute string, bit uint64, set bool) string {
	filter := fmt.Sprintf("(%s:%s:=%d)", attribute, MatchingRuleBitAnd, bit)
	if !set {
		return "(!" + filter + ")"
	}
	return filter
}

// flagOptions configures a Flags converter.
type flagOptions struct {
	Attribute string `default:"userAccountControl"`
	Default   int64  `default:"512"`
	Flag      string
	Invert    bool
}

// Flags exposes one bit of a bitmask attribute as a bool. Writes aggregate:
// several domain attributes (disabled, passwordNeverExpires, ...) are folded
// into one value of the physical attribute. Options:
//
//	flag       flag name from the userAccountControl family, or its value
//	invert     report and write the negated bit (e.g. "enabled")
//	attribute  physical attribute, default userAccountControl
//	default    value a new entry starts with, default 512 (normal account)
type Flags struct {
	Base
	working workingSet
	current uint64
	loaded  bool
}

func (c *Flags) settings() (flagOptions, uint64, error) {
	var opts flagOptions
	if err := defaults.Set(&opts); err != nil {
		return opts, 0, err
	}

	var err error
	if opts.Attribute, err = c.stringOption("attribute", opts.Attribute); err != nil {
		return opts, 0, err
	}
	if opts.Invert, err = c.boolOption("invert", opts.Invert); err != nil {
		return opts, 0, err
	}
	if v, ok := c.options["default"]; ok && v != nil {
		if opts.Default, err = toInt64(v); err != nil {
			return opts, 0, fmt.Errorf("option %q: %w", "default", err)
		}
	}

	var bit uint64
	switch v := c.options["flag"].(type) {
	case string:
		opts.Flag = v
		if flag, ok := flags.UserAccountControlTable.Lookup(v); ok {
			bit = flag.Bit
		} else if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			bit = n
		} else {
			return opts, 0, fmt.Errorf("unknown flag %q", v)
		}
	case nil:
		return opts, 0, fmt.Errorf("option %q is required", "flag")
	default:
		n, err := toInt64(v)
		if err != nil || n <= 0 {
			return opts, 0, fmt.Errorf("option %q must be a flag name or a positive integer", "flag")
		}
		bit = uint64(n)
	}
	return opts, bit, nil
}

func (c *Flags) FromLDAP(_ context.Context, raw []string) (any, error) {
	opts, bit, err := c.settings()
	if err != nil {
		return nil, invalidValue(NameFlags, raw, err)
	}
	return decodeEach(NameFlags, raw, func(s string) (bool, error) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, err
		}
		set := flags.New(flags.UserAccountControlTable, uint64(uint32(n))).Has(flags.Flag{Bit: bit})
		return set != opts.Invert, nil
	})
}

func (c *Flags) ToLDAP(ctx context.Context, value any) (*Result, error) {
	set, ok := value.(bool)
	if !ok {
		return nil, invalidValue(NameFlags, value, nil)
	}
	opts, bit, err := c.settings()
	if err != nil {
		return nil, invalidValue(NameFlags, value, err)
	}
	set = set != opts.Invert

	if !c.ShouldAggregateValues() {
		result := values(strconv.FormatUint(bit, 10))
		if c.operationType == OperationSearchTo {
			result.Filter = bitFilter(opts.Attribute, bit, set)
		}
		return result, nil
	}

	if err := c.load(ctx, opts); err != nil {
		return nil, err
	}
	current := flags.New(flags.UserAccountControlTable, c.current)
	if set {
		current = current.With(flags.Flag{Bit: bit})
	} else {
		current = current.Without(flags.Flag{Bit: bit})
	}
	c.current = current.Value()

	result := values(strconv.FormatUint(c.current, 10))
	if c.operationType == OperationModify {
		result.ModType = operation.ModReplace
	}
	return result, nil
}

func (c *Flags) load(ctx context.Context, opts flagOptions) error {
	if c.loaded {
		return nil
	}
	if err := c.working.seed(ctx, &c.Base, opts.Attribute); err != nil {
		return err
	}

	c.current = uint64(opts.Default)
	if len(c.working.values) > 0 {
		n, err := strconv.ParseInt(c.working.values[0], 10, 64)
		if err != nil {
			return formatError(NameFlags, c.working.values[0], err)
		}
		c.current = uint64(uint32(n))
	}
	c.loaded = true
	return nil
}

// GroupType exposes the scope or the category of groupType. Option "type" is
// "scope" (Global, DomainLocal, Universal) or "category" (Security,
// Distribution). Writes of both share the physical value.
type GroupType struct {
	Base
	working workingSet
	current int32
	loaded  bool
}

const (
	groupTypeScopeMask = int32(0x2 | 0x4 | 0x8)
	// defaultGroupType is a global security group.
	defaultGroupType = int32(-2147483646)
)

func (c *GroupType) kind() (string, error) {
	kind, err := c.stringOption("type", "scope")
	if err != nil {
		return "", err
	}
	kind = strings.ToLower(kind)
	if kind != "scope" && kind != "category" {
		return "", fmt.Errorf("option %q must be scope or category", "type")
	}
	return kind, nil
}

func (c *GroupType) FromLDAP(_ context.Context, raw []string) (any, error) {
	kind, err := c.kind()
	if err != nil {
		return nil, invalidValue(NameGroupType, raw, err)
	}
	return decodeEach(NameGroupType, raw, func(s string) (string, error) {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return "", err
		}
		scope, category := adldap.ParseGroupType(int32(n))
		if kind == "scope" {
			return scope.String(), nil
		}
		return category.String(), nil
	})
}

func (c *GroupType) ToLDAP(ctx context.Context, value any) (*Result, error) {
	name, ok := value.(string)
	if !ok {
		return nil, invalidValue(NameGroupType, value, nil)
	}
	kind, err := c.kind()
	if err != nil {
		return nil, invalidValue(NameGroupType, value, err)
	}

	if err := c.load(ctx); err != nil {
		return nil, err
	}
	scope, category := adldap.ParseGroupType(c.current)
	if kind == "scope" {
		if scope, err = adldap.ParseGroupScope(name); err != nil {
			return nil, invalidValue(NameGroupType, value, err)
		}
	} else {
		if category, err = adldap.ParseGroupCategory(name); err != nil {
			return nil, invalidValue(NameGroupType, value, err)
		}
	}

	if c.operationType == OperationSearchTo {
		return groupTypeSearch(kind, scope, category), nil
	}

	// Bits other than scope and category (system, app groups) are kept.
	preserved := c.current &^ (groupTypeScopeMask | adldap.GroupTypeFlagSecurity)
	next := preserved | adldap.CalculateGroupType(scope, category)
	if c.ShouldAggregateValues() {
		c.current = next
	}

	result := values(strconv.FormatInt(int64(next), 10))
	if c.operationType == OperationModify {
		result.ModType = operation.ModReplace
	}
	return result, nil
}

// groupTypeSearch matches the scope bit, or the presence or absence of the
// security bit for a category.
func groupTypeSearch(kind string, scope adldap.GroupScope, category adldap.GroupCategory) *Result {
	if kind == "scope" {
		bit := uint64(adldap.CalculateGroupType(scope, adldap.GroupCategoryDistribution))
		result := values(strconv.FormatUint(bit, 10))
		result.Filter = bitFilter("groupType", bit, true)
		return result
	}
	sec := adldap.GroupTypeFlagSecurity
	bit := uint64(uint32(sec))
	result := values(strconv.FormatUint(bit, 10))
	result.Filter = bitFilter("groupType", bit, category == adldap.GroupCategorySecurity)
	return result
}

func (c *GroupType) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	c.current = defaultGroupType
	if c.ShouldAggregateValues() {
		if err := c.working.seed(ctx, &c.Base, "groupType"); err != nil {
			return err
		}
		if len(c.working.values) > 0 {
			n, err := strconv.ParseInt(c.working.values[0], 10, 32)
			if err != nil {
				return formatError(NameGroupType, c.working.values[0], err)
			}
			c.current = int32(n)
		}
	}
	c.loaded = true
	return nil
}
