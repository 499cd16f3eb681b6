package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
	"github.com/barthuttinga/ldaptools/internal/operation"
)

const logSubsystem = adldap.SubsystemConverter

// readBackFilter matches any entry; the DN is the search base.
const readBackFilter = "(&(objectClass=*))"

// workingSet is the state an aggregating converter accumulates over one
// write unit. It is seeded once: empty on create, from the directory on
// modify.
type workingSet struct {
	seeded bool
	values []string
}

func (w *workingSet) seed(ctx context.Context, b *Base, attribute string) error {
	if w.seeded {
		return nil
	}
	if b.operationType == OperationModify {
		current, err := b.readBack(ctx, attribute)
		if err != nil {
			return err
		}
		w.values = current
	}
	w.seeded = true
	return nil
}

// readBack returns the stored values of attribute on the converter's DN.
func (b *Base) readBack(ctx context.Context, attribute string) ([]string, error) {
	if b.conn == nil {
		return nil, fmt.Errorf("cannot read back %s of %q: no connection", attribute, b.dn)
	}

	query := operation.NewQueryOperation(readBackFilter, attribute).
		SetBaseDN(b.dn).
		SetScope(operation.ScopeBase)

	tflog.SubsystemDebug(ctx, logSubsystem, "Reading back current attribute values", map[string]any{
		"dn":        b.dn,
		"attribute": attribute,
	})

	entries, err := b.conn.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return attributeValues(entries[0], attribute), nil
}

// attributeValues returns the values of attribute on entry, matching the
// name case-insensitively.
func attributeValues(entry *ldap.Entry, attribute string) []string {
	for _, attr := range entry.Attributes {
		if strings.EqualFold(attr.Name, attribute) {
			return attr.Values
		}
	}
	return nil
}

// stringList accepts a string, []string or []any of strings.
func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
