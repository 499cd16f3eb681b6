// Package converter translates attribute values between their directory and
// domain representations.
//
// A Converter is configured with the context of one read or write unit (the
// operation type, the target DN, a connection for read-backs, the batch being
// written and the raw attribute name) before FromLDAP or ToLDAP is called.
// Most converters ignore the context. Aggregating converters use it to merge
// several logical writes onto one multivalued attribute, seeding their state
// from the directory on modification.
//
// Converters are not safe for concurrent use. One instance serves one write or
// read unit and is then discarded.
package converter

import (
	"context"
	"fmt"
	"maps"

	"github.com/go-ldap/ldap/v3"

	"github.com/barthuttinga/ldaptools/internal/operation"
)

// OperationType is the kind of unit a converter is running in.
type OperationType int

const (
	// OperationSearchFrom converts values read from the directory.
	OperationSearchFrom OperationType = iota
	// OperationSearchTo converts values used in a search filter.
	OperationSearchTo
	// OperationCreate converts values for a new entry.
	OperationCreate
	// OperationModify converts values for a modification of an existing entry.
	OperationModify
)

func (t OperationType) String() string {
	switch t {
	case OperationSearchFrom:
		return "SEARCH_FROM"
	case OperationSearchTo:
		return "SEARCH_TO"
	case OperationCreate:
		return "CREATE"
	case OperationModify:
		return "MODIFY"
	default:
		return fmt.Sprintf("OperationType(%d)", int(t))
	}
}

// Connection executes operations against the directory. Queries return the
// matching entries; writes return nil rows.
type Connection interface {
	Execute(ctx context.Context, op operation.Operation) ([]*ldap.Entry, error)
}

// Options is a converter's option bag as configured in the schema.
type Options map[string]any

// Result is the outcome of ToLDAP.
type Result struct {
	// Values are the directory-ready values.
	Values []string
	// ModType, when non-zero, replaces the modification kind of the batch
	// being converted.
	ModType operation.ModType
	// PostOperations must run after the owning write.
	PostOperations []operation.Operation
	// Omit means the attribute is not written on the owning entry at all.
	Omit bool
	// Filter, when set by a SEARCH_TO conversion, is the complete filter
	// component to use instead of an equality match on Values.
	Filter string
}

// Apply writes the result into batch: the converted values and, if set, the
// modification kind override.
func (r *Result) Apply(batch *operation.Batch) {
	if batch == nil {
		return
	}
	values := make([]any, 0, len(r.Values))
	for _, v := range r.Values {
		values = append(values, v)
	}
	batch.Values = values
	if r.ModType != 0 {
		batch.ModType = r.ModType
	}
}

// values wraps plain converted values in a Result.
func values(v ...string) *Result {
	return &Result{Values: v}
}

// Converter converts one attribute between directory and domain values.
type Converter interface {
	// FromLDAP converts raw directory values to a domain value.
	FromLDAP(ctx context.Context, raw []string) (any, error)
	// ToLDAP converts a domain value to directory values.
	ToLDAP(ctx context.Context, value any) (*Result, error)

	// SetOptions merges opts into the current options.
	SetOptions(opts Options)
	SetOperationType(t OperationType)
	SetDN(dn string)
	SetConnection(conn Connection)
	SetBatch(batch *operation.Batch)
	SetAttribute(name string)

	// ShouldAggregateValues reports whether writes are merged across calls.
	// It is only ever true for create and modify units.
	ShouldAggregateValues() bool
}

// Aggregator is a Converter that keeps a multivalued working set across one
// write unit. Every batch kind for its attribute passes through it; REMOVE_ALL
// is converted with an empty list.
type Aggregator interface {
	Converter
	aggregates()
}

// FilterEncoder is a Converter whose SEARCH_TO values are already escaped for
// use in a search filter.
type FilterEncoder interface {
	Converter
	encodesFilterValues()
}

// Base holds the attribute context and implements the context half of the
// Converter interface. Converters embed it.
type Base struct {
	operationType OperationType
	dn            string
	conn          Connection
	batch         *operation.Batch
	attribute     string
	options       Options
}

// SetOptions merges opts into the current options; later values win.
func (b *Base) SetOptions(opts Options) {
	if b.options == nil {
		b.options = make(Options, len(opts))
	}
	maps.Copy(b.options, opts)
}

// Options returns the merged options.
func (b *Base) Options() Options {
	return b.options
}

func (b *Base) SetOperationType(t OperationType) {
	b.operationType = t
}

func (b *Base) OperationType() OperationType {
	return b.operationType
}

func (b *Base) SetDN(dn string) {
	b.dn = dn
}

func (b *Base) DN() string {
	return b.dn
}

func (b *Base) SetConnection(conn Connection) {
	b.conn = conn
}

func (b *Base) Connection() Connection {
	return b.conn
}

func (b *Base) SetBatch(batch *operation.Batch) {
	b.batch = batch
}

func (b *Base) Batch() *operation.Batch {
	return b.batch
}

func (b *Base) SetAttribute(name string) {
	b.attribute = name
}

func (b *Base) Attribute() string {
	return b.attribute
}

// ShouldAggregateValues is true for create and modify units only.
func (b *Base) ShouldAggregateValues() bool {
	return b.operationType == OperationCreate || b.operationType == OperationModify
}

// modType returns the kind of the current batch, treating a create (which has
// no batch) as an add.
func (b *Base) modType() operation.ModType {
	if b.batch == nil || b.operationType == OperationCreate {
		return operation.ModAdd
	}
	return b.batch.ModType
}

// stringOption reads a string option, returning def when unset.
func (b *Base) stringOption(name, def string) (string, error) {
	v, ok := b.options[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", name, v)
	}
	return s, nil
}

// boolOption reads a bool option, returning def when unset.
func (b *Base) boolOption(name string, def bool) (bool, error) {
	v, ok := b.options[name]
	if !ok || v == nil {
		return def, nil
	}
	flag, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("option %q must be a bool, got %T", name, v)
	}
	return flag, nil
}
