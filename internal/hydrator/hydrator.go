// Package hydrator turns domain attributes into directory operations and
// directory entries back into domain attributes, using an object schema and
// the converter registry.
//
// Each Hydrate call is one unit: the converters it creates are shared by all
// domain attributes that map onto the same directory attribute, and are
// discarded when the call returns.
package hydrator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/barthuttinga/ldaptools/internal/converter"
	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
	"github.com/barthuttinga/ldaptools/internal/operation"
	"github.com/barthuttinga/ldaptools/internal/schema"
)

// MissingAttributesError is returned when a new entry lacks required
// attributes.
type MissingAttributesError struct {
	Schema     string
	Attributes []string
}

func (e *MissingAttributesError) Error() string {
	return fmt.Sprintf("%s is missing required attributes: %s", e.Schema, strings.Join(e.Attributes, ", "))
}

// OperationHydrator builds operations for one object schema.
type OperationHydrator struct {
	schema   *schema.ObjectSchema
	registry *converter.Registry
	conn     converter.Connection
}

// New returns a hydrator. conn is handed to converters that read from the
// directory; it may be nil when none of the schema's converters do.
func New(s *schema.ObjectSchema, registry *converter.Registry, conn converter.Connection) *OperationHydrator {
	return &OperationHydrator{
		schema:   s,
		registry: registry,
		conn:     conn,
	}
}

// HydrateAdd builds the add operation for a new entry. Schema default values
// fill absent attributes and every required attribute must be present. An
// empty dn is derived from the schema RDN and default container.
func (h *OperationHydrator) HydrateAdd(ctx context.Context, dn string, attrs map[string]any) (*operation.AddOperation, error) {
	values := h.withDefaults(attrs)

	var missing []string
	for _, name := range h.schema.RequiredAttributes {
		if v, ok := lookup(values, name); !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingAttributesError{Schema: h.schema.Name, Attributes: missing}
	}

	if dn == "" {
		var err error
		if dn, err = h.defaultDN(values); err != nil {
			return nil, err
		}
	}

	tflog.SubsystemDebug(ctx, adldap.SubsystemHydrator, "Hydrating add operation", map[string]any{
		"schema":     h.schema.Name,
		"dn":         dn,
		"attributes": len(values),
	})

	u := h.newUnit(converter.OperationCreate, dn)
	op := operation.NewAddOperation(dn)
	var post []operation.Operation

	for _, name := range slices.Sorted(maps.Keys(values)) {
		value := values[name]
		if value == nil {
			continue
		}
		raw := h.schema.AttributeToLDAP(name)

		if !h.schema.HasConverter(raw) {
			op.SetAttribute(raw, operation.NewBatch(operation.ModAdd, raw, flatten(value)...).StringValues()...)
			continue
		}

		result, err := u.toLDAP(ctx, name, raw, value, operation.NewBatch(operation.ModAdd, raw, flatten(value)...))
		if err != nil {
			return nil, err
		}
		post = append(post, result.PostOperations...)
		if result.Omit {
			continue
		}
		if len(result.Values) == 0 {
			op.RemoveAttribute(raw)
			continue
		}
		op.SetAttribute(raw, result.Values...)
	}

	if len(h.schema.ObjectClass) > 0 && !hasAttribute(op, "objectClass") {
		op.SetAttribute("objectClass", h.schema.ObjectClass...)
	}

	return op.AddPostOperation(post...).AddControl(h.schema.Controls...), nil
}

// HydrateModify builds the modify operation for batches of domain values.
// Batches whose converter aggregated them onto one directory attribute
// collapse into a single REPLACE of the final values, at the position of the
// first of them.
func (h *OperationHydrator) HydrateModify(ctx context.Context, dn string, batches []*operation.Batch) (*operation.ModifyOperation, error) {
	if dn == "" {
		return nil, errors.New("cannot modify an entry without a DN")
	}

	tflog.SubsystemDebug(ctx, adldap.SubsystemHydrator, "Hydrating modify operation", map[string]any{
		"schema":  h.schema.Name,
		"dn":      dn,
		"batches": len(batches),
	})

	u := h.newUnit(converter.OperationModify, dn)
	var (
		out        []*operation.Batch
		aggregated = make(map[string]int)
		post       []operation.Operation
	)

	for _, b := range batches {
		raw := h.schema.AttributeToLDAP(b.Attribute)
		batch := b.Clone()
		batch.Attribute = raw

		if !h.schema.HasConverter(raw) {
			batch.Values = stringsToAny(batch.StringValues())
			out = append(out, batch)
			continue
		}

		conv, err := u.converter(raw)
		if err != nil {
			return nil, err
		}

		value := batchValue(b)
		if b.ModType == operation.ModRemoveAll {
			if _, ok := conv.Converter.(converter.Aggregator); !ok {
				batch.Values = nil
				out = append(out, batch)
				continue
			}
			value = []string{}
		}

		result, err := u.toLDAP(ctx, b.Attribute, raw, value, batch)
		if err != nil {
			return nil, err
		}
		post = append(post, result.PostOperations...)
		if result.Omit {
			continue
		}
		result.Apply(batch)

		if result.ModType != operation.ModReplace {
			out = append(out, batch)
			continue
		}

		k := strings.ToLower(raw)
		if i, ok := aggregated[k]; ok {
			out[i].Values = batch.Values
			continue
		}
		aggregated[k] = len(out)
		out = append(out, batch)
	}

	op := operation.NewModifyOperation(dn, out...)
	return op.AddPostOperation(post...).AddControl(h.schema.Controls...), nil
}

// HydrateEntry converts a directory entry to domain attributes. Attributes
// without a mapping keep their directory name. The entry DN is returned as
// "dn".
func (h *OperationHydrator) HydrateEntry(ctx context.Context, entry *ldap.Entry) (map[string]any, error) {
	u := h.newUnit(converter.OperationSearchFrom, entry.DN)
	out := map[string]any{"dn": entry.DN}

	for _, attr := range entry.Attributes {
		names := h.schema.NamesMappedToAttribute(attr.Name)
		if len(names) == 0 {
			names = []string{attr.Name}
		}

		for _, name := range names {
			if !h.schema.HasConverter(attr.Name) {
				out[name] = h.rawValue(attr)
				continue
			}

			conv, err := u.prepare(name, attr.Name, nil)
			if err != nil {
				return nil, err
			}
			value, err := conv.FromLDAP(ctx, attr.Values)
			if err != nil {
				return nil, fmt.Errorf("attribute %s of %s: %w", name, entry.DN, err)
			}
			out[name] = value
		}
	}

	return out, nil
}

// HydrateQueryValue converts a domain value for use in a search filter on the
// domain attribute name. The returned values are escaped for a filter.
func (h *OperationHydrator) HydrateQueryValue(ctx context.Context, name string, value any) ([]string, error) {
	values, _, err := h.searchValues(ctx, name, value)
	return values, err
}

// HydrateFilter builds the filter matching value on the domain attribute
// name: an equality match, any of several when the value converts to more
// than one directory value, or the filter the converter asked for.
func (h *OperationHydrator) HydrateFilter(ctx context.Context, name string, value any) (string, error) {
	values, filter, err := h.searchValues(ctx, name, value)
	if err != nil {
		return "", err
	}
	if filter != "" {
		return filter, nil
	}
	raw := h.schema.AttributeToLDAP(name)

	switch len(values) {
	case 0:
		return "", fmt.Errorf("value for %s converts to nothing", name)
	case 1:
		return "(" + raw + "=" + values[0] + ")", nil
	default:
		var b strings.Builder
		b.WriteString("(|")
		for _, v := range values {
			b.WriteString("(" + raw + "=" + v + ")")
		}
		b.WriteString(")")
		return b.String(), nil
	}
}

// searchValues converts value under SEARCH_TO and returns the escaped values
// plus the converter's own filter, if it set one.
func (h *OperationHydrator) searchValues(ctx context.Context, name string, value any) ([]string, string, error) {
	raw := h.schema.AttributeToLDAP(name)
	if !h.schema.HasConverter(raw) {
		values := operation.NewBatch(operation.ModAdd, raw, flatten(value)...).StringValues()
		for i, v := range values {
			values[i] = ldap.EscapeFilter(v)
		}
		return values, "", nil
	}

	u := h.newUnit(converter.OperationSearchTo, "")
	conv, err := u.prepare(name, raw, nil)
	if err != nil {
		return nil, "", err
	}
	result, err := conv.ToLDAP(ctx, value)
	if err != nil {
		return nil, "", err
	}

	values := slices.Clone(result.Values)
	if _, ok := conv.(converter.FilterEncoder); !ok {
		for i, v := range values {
			values[i] = ldap.EscapeFilter(v)
		}
	}
	return values, result.Filter, nil
}

func (h *OperationHydrator) withDefaults(attrs map[string]any) map[string]any {
	values := make(map[string]any, len(attrs)+len(h.schema.DefaultValues))
	maps.Copy(values, attrs)
	for name, v := range h.schema.DefaultValues {
		if _, ok := lookup(values, name); !ok {
			values[name] = v
		}
	}
	return values
}

// defaultDN builds <rdn>=<value>,<default container> from the first RDN
// attribute that has a string value.
func (h *OperationHydrator) defaultDN(values map[string]any) (string, error) {
	if h.schema.DefaultContainer == "" {
		return "", fmt.Errorf("no DN given and schema %s has no default container", h.schema.Name)
	}
	for _, name := range h.schema.RDN {
		if v, ok := lookup(values, name); ok {
			if s, ok := v.(string); ok && s != "" {
				return adldap.BuildDN(h.schema.AttributeToLDAP(name), s, h.schema.DefaultContainer), nil
			}
		}
	}
	return "", fmt.Errorf("no DN given and none of the RDN attributes %s is set", strings.Join(h.schema.RDN, ", "))
}

func (h *OperationHydrator) rawValue(attr *ldap.EntryAttribute) any {
	if len(attr.Values) == 1 && !h.schema.IsMultivaluedAttribute(attr.Name) {
		return attr.Values[0]
	}
	return slices.Clone(attr.Values)
}

// unit holds the converters of one Hydrate call, keyed by lower-cased
// directory attribute.
type unit struct {
	h             *OperationHydrator
	operationType converter.OperationType
	dn            string
	converters    map[string]*unitConverter
}

type unitConverter struct {
	converter.Converter
	name       string
	optionKeys []string
}

func (h *OperationHydrator) newUnit(t converter.OperationType, dn string) *unit {
	return &unit{
		h:             h,
		operationType: t,
		dn:            dn,
		converters:    make(map[string]*unitConverter),
	}
}

// converter returns the unit's converter for raw, creating it on first use.
func (u *unit) converter(raw string) (*unitConverter, error) {
	k := strings.ToLower(raw)
	if c, ok := u.converters[k]; ok {
		return c, nil
	}

	name, err := u.h.schema.ConverterFor(raw)
	if err != nil {
		return nil, err
	}
	if u.h.registry == nil {
		return nil, fmt.Errorf("no converter registry to resolve %s", name)
	}
	conv, err := u.h.registry.Get(name)
	if err != nil {
		return nil, err
	}
	conv.SetOperationType(u.operationType)
	conv.SetDN(u.dn)
	conv.SetConnection(u.h.conn)
	conv.SetAttribute(raw)

	c := &unitConverter{Converter: conv, name: name}
	u.converters[k] = c
	return c, nil
}

// prepare readies the converter of raw for the domain attribute name. Options
// set for an earlier attribute but not for this one are cleared, so each
// attribute sees only its own options.
func (u *unit) prepare(name, raw string, batch *operation.Batch) (converter.Converter, error) {
	c, err := u.converter(raw)
	if err != nil {
		return nil, err
	}

	opts := u.h.schema.ConverterOptions(c.name, name)
	for _, k := range c.optionKeys {
		if _, ok := opts[k]; !ok {
			opts[k] = nil
		}
	}
	c.optionKeys = slices.Collect(maps.Keys(opts))
	c.SetOptions(opts)
	c.SetBatch(batch)

	return c.Converter, nil
}

func (u *unit) toLDAP(ctx context.Context, name, raw string, value any, batch *operation.Batch) (*converter.Result, error) {
	conv, err := u.prepare(name, raw, batch)
	if err != nil {
		return nil, err
	}

	tflog.SubsystemTrace(ctx, adldap.SubsystemHydrator, "Converting attribute", map[string]any{
		"attribute":      name,
		"ldap_attribute": raw,
		"operation_type": u.operationType.String(),
	})

	result, err := conv.ToLDAP(ctx, value)
	if err != nil {
		tflog.SubsystemDebug(ctx, adldap.SubsystemHydrator, "Attribute conversion failed", map[string]any{
			"attribute": name,
			"error":     err.Error(),
		})
		return nil, err
	}
	return result, nil
}

// batchValue is the domain value a batch carries: its only value, or all of
// them as a list.
func batchValue(b *operation.Batch) any {
	if len(b.Values) == 1 {
		return b.Values[0]
	}
	return slices.Clone(b.Values)
}

// flatten spreads list values into individual values.
func flatten(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		return stringsToAny(v)
	default:
		return []any{value}
	}
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func lookup(values map[string]any, name string) (any, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func hasAttribute(op *operation.AddOperation, name string) bool {
	return slices.ContainsFunc(op.Attributes(), func(attr ldap.Attribute) bool {
		return strings.EqualFold(attr.Type, name)
	})
}
