package operation

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Scope is the search scope of a query.
type Scope int

const (
	ScopeBase Scope = iota
	ScopeOneLevel
	ScopeSubtree
)

func (s Scope) String() string {
	switch s {
	case ScopeBase:
		return "base"
	case ScopeOneLevel:
		return "onelevel"
	case ScopeSubtree:
		return "subtree"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope parses "base", "onelevel" or "subtree".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "base":
		return ScopeBase, nil
	case "onelevel", "one", "singlelevel":
		return ScopeOneLevel, nil
	case "subtree", "sub", "":
		return ScopeSubtree, nil
	default:
		return 0, fmt.Errorf("invalid search scope %q", s)
	}
}

func (s Scope) ldap() int {
	switch s {
	case ScopeBase:
		return ldap.ScopeBaseObject
	case ScopeOneLevel:
		return ldap.ScopeSingleLevel
	default:
		return ldap.ScopeWholeSubtree
	}
}

// QueryOperation is a directory search.
type QueryOperation struct {
	chain[*QueryOperation]
	filter     string
	attributes []string
	scope      Scope
	sizeLimit  int
	usePaging  bool
	pageSize   uint32
}

// NewQueryOperation creates a subtree search for filter.
func NewQueryOperation(filter string, attributes ...string) *QueryOperation {
	op := &QueryOperation{filter: filter, attributes: attributes, scope: ScopeSubtree}
	op.self = op
	return op
}

func (o *QueryOperation) Name() string {
	return "Query"
}

func (o *QueryOperation) Filter() string {
	return o.filter
}

func (o *QueryOperation) SetFilter(filter string) *QueryOperation {
	o.filter = filter
	return o
}

// BaseDN is the search base; it is the operation DN.
func (o *QueryOperation) BaseDN() string {
	return o.dn
}

func (o *QueryOperation) SetBaseDN(dn string) *QueryOperation {
	return o.SetDN(dn)
}

func (o *QueryOperation) Attributes() []string {
	return o.attributes
}

func (o *QueryOperation) SetAttributes(attributes ...string) *QueryOperation {
	o.attributes = attributes
	return o
}

func (o *QueryOperation) Scope() Scope {
	return o.scope
}

func (o *QueryOperation) SetScope(scope Scope) *QueryOperation {
	o.scope = scope
	return o
}

func (o *QueryOperation) SizeLimit() int {
	return o.sizeLimit
}

func (o *QueryOperation) SetSizeLimit(limit int) *QueryOperation {
	o.sizeLimit = limit
	return o
}

func (o *QueryOperation) UsePaging() bool {
	return o.usePaging
}

func (o *QueryOperation) SetUsePaging(usePaging bool) *QueryOperation {
	o.usePaging = usePaging
	return o
}

func (o *QueryOperation) PageSize() uint32 {
	return o.pageSize
}

// SetPageSize sets the page size and turns paging on for non-zero sizes.
func (o *QueryOperation) SetPageSize(size uint32) *QueryOperation {
	o.pageSize = size
	if size > 0 {
		o.usePaging = true
	}
	return o
}

// Arguments returns [baseDN, filter, attributes, scope, sizeLimit].
func (o *QueryOperation) Arguments() []any {
	return []any{o.dn, o.filter, o.attributes, o.scope, o.sizeLimit}
}

func (o *QueryOperation) LogFields() map[string]any {
	return map[string]any{
		"Base DN":    o.dn,
		"Filter":     o.filter,
		"Attributes": o.attributes,
		"Scope":      o.scope.String(),
		"Size Limit": o.sizeLimit,
		"Use Paging": o.usePaging,
		"Page Size":  o.pageSize,
		"Server":     o.server,
		"Controls":   controlsLog(o.controls),
	}
}

func (o *QueryOperation) Request() *ldap.SearchRequest {
	return ldap.NewSearchRequest(
		o.dn,
		o.scope.ldap(),
		ldap.NeverDerefAliases,
		o.sizeLimit,
		0,
		false,
		o.filter,
		o.attributes,
		ldapControls(o.controls),
	)
}
