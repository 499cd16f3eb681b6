package converter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
	"github.com/barthuttinga/ldaptools/internal/operation"
)

// gPLink option bits.
const (
	gpLinkDisabled = 1
	gpLinkEnforced = 2
)

// GPOLink is one group policy link of a container.
type GPOLink struct {
	// Name is the GPO's displayName. It is empty when the GPO no longer
	// exists or was not looked up.
	Name     string
	DN       string
	Enabled  bool
	Enforced bool
}

// parseGPLink splits a gPLink value such as
//
//	[LDAP://cn={...},cn=policies,cn=system,DC=example,DC=com;0][LDAP://...;2]
//
// into its links.
func parseGPLink(raw string) ([]GPOLink, error) {
	var links []GPOLink
	rest := strings.TrimSpace(raw)
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("expected '[' at %q", rest)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated link %q", rest)
		}
		link := rest[1:end]
		rest = strings.TrimSpace(rest[end+1:])

		sep := strings.LastIndexByte(link, ';')
		if sep < 0 {
			return nil, fmt.Errorf("link %q has no options", link)
		}
		dn := link[:sep]
		if len(dn) < len("LDAP://") || !strings.EqualFold(dn[:len("LDAP://")], "LDAP://") {
			return nil, fmt.Errorf("link %q is not an LDAP path", link)
		}
		opts, err := strconv.Atoi(link[sep+1:])
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", link, err)
		}
		links = append(links, GPOLink{
			DN:       dn[len("LDAP://"):],
			Enabled:  opts&gpLinkDisabled == 0,
			Enforced: opts&gpLinkEnforced != 0,
		})
	}
	return links, nil
}

func formatGPLink(links []GPOLink) string {
	var b strings.Builder
	for _, link := range links {
		opts := 0
		if !link.Enabled {
			opts |= gpLinkDisabled
		}
		if link.Enforced {
			opts |= gpLinkEnforced
		}
		fmt.Fprintf(&b, "[LDAP://%s;%d]", link.DN, opts)
	}
	return b.String()
}

// GPLink converts gPLink to and from a list of GPOLink. Reads fill in the
// GPO names when a connection is available. Writes accept GPOLink values or
// plain GPO names, which are linked enabled; names resolve like value_to_dn
// with the attribute option defaulting to displayName.
type GPLink struct {
	Base
}

func (c *GPLink) FromLDAP(ctx context.Context, raw []string) (any, error) {
	links := []GPOLink{}
	for _, r := range raw {
		parsed, err := parseGPLink(r)
		if err != nil {
			return nil, formatError(NameGPOLink, r, err)
		}
		links = append(links, parsed...)
	}
	if c.conn == nil {
		return links, nil
	}
	for i := range links {
		name, err := c.gpoName(ctx, links[i].DN)
		if err != nil {
			return nil, err
		}
		links[i].Name = name
	}
	return links, nil
}

// gpoName reads the displayName of the GPO at dn. Links to deleted GPOs
// yield an empty name.
func (c *GPLink) gpoName(ctx context.Context, dn string) (string, error) {
	query := operation.NewQueryOperation(readBackFilter, "displayName").
		SetBaseDN(dn).
		SetScope(operation.ScopeBase)
	entries, err := c.conn.Execute(ctx, query)
	if adldap.IsNotFoundError(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	if name := attributeValues(entries[0], "displayName"); len(name) > 0 {
		return name[0], nil
	}
	return "", nil
}

func (c *GPLink) ToLDAP(ctx context.Context, value any) (*Result, error) {
	links, ok := gpoLinks(value)
	if !ok {
		return nil, invalidValue(NameGPOLink, value, nil)
	}
	opts, err := c.lookupOptions("(objectClass=groupPolicyContainer)")
	if err != nil {
		return nil, invalidValue(NameGPOLink, value, err)
	}
	if opts.Attribute, err = c.stringOption("attribute", "displayName"); err != nil {
		return nil, invalidValue(NameGPOLink, value, err)
	}

	for i := range links {
		if links[i].DN != "" {
			continue
		}
		if links[i].DN, err = c.resolveDN(ctx, NameGPOLink, links[i].Name, opts); err != nil {
			return nil, err
		}
	}
	if len(links) == 0 {
		return values(), nil
	}
	return values(formatGPLink(links)), nil
}

// gpoLinks accepts a GPOLink, a GPO name or a list mixing both.
func gpoLinks(value any) ([]GPOLink, bool) {
	switch v := value.(type) {
	case GPOLink:
		return []GPOLink{v}, true
	case []GPOLink:
		return append([]GPOLink(nil), v...), true
	case []any:
		out := make([]GPOLink, 0, len(v))
		for _, item := range v {
			links, ok := gpoLinks(item)
			if !ok {
				return nil, false
			}
			out = append(out, links...)
		}
		return out, true
	}
	names, ok := stringList(value)
	if !ok {
		return nil, false
	}
	out := make([]GPOLink, 0, len(names))
	for _, name := range names {
		out = append(out, GPOLink{Name: name, Enabled: true})
	}
	return out, true
}
