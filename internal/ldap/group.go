package ldap

import (
	"fmt"
	"strings"
)

// GroupScope represents the scope of an Active Directory group.
type GroupScope string

const (
	GroupScopeGlobal      GroupScope = "Global"      // Members from the same domain
	GroupScopeUniversal   GroupScope = "Universal"   // Members from any domain in the forest
	GroupScopeDomainLocal GroupScope = "DomainLocal" // Members from any domain, usable in its own domain only
)

// String returns the string representation of the group scope.
func (gs GroupScope) String() string {
	return string(gs)
}

// GroupCategory represents the category of an Active Directory group.
type GroupCategory string

const (
	GroupCategorySecurity     GroupCategory = "Security"     // Security group for access control
	GroupCategoryDistribution GroupCategory = "Distribution" // Distribution group for email distribution lists
)

// String returns the string representation of the group category.
func (gc GroupCategory) String() string {
	return string(gc)
}

// Active Directory group type bit flags.
const (
	// Group scope flags (mutually exclusive).
	GroupTypeFlagGlobal      int32 = 0x00000002 // ADS_GROUP_TYPE_GLOBAL_GROUP
	GroupTypeFlagDomainLocal int32 = 0x00000004 // ADS_GROUP_TYPE_DOMAIN_LOCAL_GROUP
	GroupTypeFlagUniversal   int32 = 0x00000008 // ADS_GROUP_TYPE_UNIVERSAL_GROUP

	// Group category flag.
	GroupTypeFlagSecurity int32 = -2147483648 // ADS_GROUP_TYPE_SECURITY_ENABLED (0x80000000 as signed int32)
)

// CalculateGroupType calculates the Active Directory groupType value from scope and category.
func CalculateGroupType(scope GroupScope, category GroupCategory) int32 {
	var groupType int32

	switch scope {
	case GroupScopeDomainLocal:
		groupType |= GroupTypeFlagDomainLocal
	case GroupScopeUniversal:
		groupType |= GroupTypeFlagUniversal
	default:
		groupType |= GroupTypeFlagGlobal
	}

	// Distribution groups don't have the security flag set
	if category == GroupCategorySecurity {
		groupType |= GroupTypeFlagSecurity
	}

	return groupType
}

// ParseGroupType extracts scope and category from an Active Directory groupType value.
func ParseGroupType(groupType int32) (GroupScope, GroupCategory) {
	var scope GroupScope
	var category GroupCategory

	switch {
	case groupType&GroupTypeFlagGlobal != 0:
		scope = GroupScopeGlobal
	case groupType&GroupTypeFlagDomainLocal != 0:
		scope = GroupScopeDomainLocal
	case groupType&GroupTypeFlagUniversal != 0:
		scope = GroupScopeUniversal
	default:
		scope = GroupScopeGlobal
	}

	if groupType&GroupTypeFlagSecurity != 0 {
		category = GroupCategorySecurity
	} else {
		category = GroupCategoryDistribution
	}

	return scope, category
}

// ParseGroupScope resolves a scope name case-insensitively.
func ParseGroupScope(name string) (GroupScope, error) {
	for _, scope := range []GroupScope{GroupScopeGlobal, GroupScopeUniversal, GroupScopeDomainLocal} {
		if strings.EqualFold(string(scope), name) {
			return scope, nil
		}
	}
	return "", fmt.Errorf("invalid group scope: %s (must be Global, Universal, or DomainLocal)", name)
}

// ParseGroupCategory resolves a category name case-insensitively.
func ParseGroupCategory(name string) (GroupCategory, error) {
	for _, category := range []GroupCategory{GroupCategorySecurity, GroupCategoryDistribution} {
		if strings.EqualFold(string(category), name) {
			return category, nil
		}
	}
	return "", fmt.Errorf("invalid group category: %s (must be Security or Distribution)", name)
}
