package ldap

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// NormalizeDNCase uppercases the attribute types of a DN, leaving values
// untouched: "cn=john,dc=example,dc=com" becomes "CN=john,DC=example,DC=com".
func NormalizeDNCase(dn string) (string, error) {
	dn = strings.TrimSpace(dn)
	if dn == "" {
		return "", nil
	}

	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("invalid DN syntax: %w", err)
	}
	return formatDN(parsed.RDNs), nil
}

func formatDN(rdns []*ldap.RelativeDN) string {
	parts := make([]string, 0, len(rdns))
	for _, rdn := range rdns {
		attrs := make([]string, 0, len(rdn.Attributes))
		for _, attr := range rdn.Attributes {
			attrs = append(attrs, strings.ToUpper(attr.Type)+"="+EscapeDNValue(attr.Value))
		}
		parts = append(parts, strings.Join(attrs, "+"))
	}
	return strings.Join(parts, ",")
}

// IsDN reports whether value parses as a DN with at least one RDN.
func IsDN(value string) bool {
	if !strings.Contains(value, "=") {
		return false
	}
	parsed, err := ldap.ParseDN(value)
	return err == nil && len(parsed.RDNs) > 0
}

// LeadingRDNValue returns the (unescaped) value of the first RDN, e.g. "John
// Doe" for "CN=John Doe,OU=Users,DC=example,DC=com".
func LeadingRDNValue(dn string) (string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("invalid DN syntax: %w", err)
	}
	if len(parsed.RDNs) == 0 || len(parsed.RDNs[0].Attributes) == 0 {
		return "", fmt.Errorf("DN has no RDN: %q", dn)
	}
	return parsed.RDNs[0].Attributes[0].Value, nil
}

// DomainDN returns the trailing DC components of dn, which is the naming
// context for entries in an AD domain. It returns "" if there are none.
func DomainDN(dn string) string {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return ""
	}

	start := len(parsed.RDNs)
	for start > 0 {
		rdn := parsed.RDNs[start-1]
		if len(rdn.Attributes) != 1 || !strings.EqualFold(rdn.Attributes[0].Type, "dc") {
			break
		}
		start--
	}
	return formatDN(parsed.RDNs[start:])
}

// BuildDN joins an RDN and a container, escaping the RDN value.
func BuildDN(rdnAttribute, value, container string) string {
	rdn := rdnAttribute + "=" + EscapeDNValue(value)
	if container == "" {
		return rdn
	}
	return rdn + "," + container
}

// EscapeDNValue escapes a DN attribute value per RFC 4514: the specials
// , + " \ < > ; anywhere, # at the start, spaces at either end and NUL.
func EscapeDNValue(value string) string {
	var sb strings.Builder
	sb.Grow(len(value) + 4)

	last := len(value) - 1
	for i, r := range value {
		switch {
		case strings.ContainsRune(`,+"\<>;`, r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '#' && i == 0, r == ' ' && (i == 0 || i == last):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == 0:
			sb.WriteString(`\00`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
