// Package flags decomposes directory bitmask values into named flags.
//
// A flag family is described by a Table: an ordered list of flags, each with a
// long name, an SDDL-style short name and its bit. The order of the table is the
// order in which set flags are reported and rendered, so two Flags values built
// over the same table and integer always render identically.
package flags

import (
	"fmt"
	"strings"
)

// Flag is one named bit (or multi-bit mask) within a flag family.
type Flag struct {
	Name  string
	Short string
	Bit   uint64
}

// Table is the ordered, immutable definition of a flag family.
type Table struct {
	name  string
	flags []Flag
}

// NewTable builds a flag family. Declaration order is preserved.
func NewTable(name string, flags ...Flag) *Table {
	t := &Table{name: name, flags: make([]Flag, len(flags))}
	copy(t.flags, flags)
	return t
}

// Name returns the family name.
func (t *Table) Name() string {
	return t.name
}

// Flags returns a copy of the table entries in declaration order.
func (t *Table) Flags() []Flag {
	out := make([]Flag, len(t.flags))
	copy(out, t.flags)
	return out
}

// Lookup finds a flag by long or short name, case-insensitively.
func (t *Table) Lookup(name string) (Flag, bool) {
	for _, f := range t.flags {
		if strings.EqualFold(f.Name, name) || strings.EqualFold(f.Short, name) {
			return f, true
		}
	}
	return Flag{}, false
}

// Flags is an integer value interpreted against a Table.
type Flags struct {
	value uint64
	table *Table
}

// New interprets value against table.
func New(table *Table, value uint64) Flags {
	return Flags{value: value, table: table}
}

// Value returns the underlying integer.
func (f Flags) Value() uint64 {
	return f.value
}

// Table returns the family the value is interpreted against.
func (f Flags) Table() *Table {
	return f.table
}

// Has reports whether every bit of flag is set.
func (f Flags) Has(flag Flag) bool {
	return flag.Bit != 0 && f.value&flag.Bit == flag.Bit
}

// HasName is Has for a flag looked up by long or short name.
func (f Flags) HasName(name string) bool {
	flag, ok := f.table.Lookup(name)
	return ok && f.Has(flag)
}

// With returns a copy with the bits of flag set.
func (f Flags) With(flag Flag) Flags {
	return Flags{value: f.value | flag.Bit, table: f.table}
}

// Without returns a copy with the bits of flag cleared.
func (f Flags) Without(flag Flag) Flags {
	return Flags{value: f.value &^ flag.Bit, table: f.table}
}

// Set returns the flags that are set, in table order.
func (f Flags) Set() []Flag {
	if f.table == nil {
		return nil
	}

	var set []Flag
	for _, flag := range f.table.flags {
		if f.Has(flag) {
			set = append(set, flag)
		}
	}
	return set
}

// Names returns the long names of the set flags in table order.
func (f Flags) Names() []string {
	set := f.Set()
	names := make([]string, 0, len(set))
	for _, flag := range set {
		names = append(names, flag.Name)
	}
	return names
}

// ShortNames returns the short names of the set flags in table order.
func (f Flags) ShortNames() []string {
	set := f.Set()
	names := make([]string, 0, len(set))
	for _, flag := range set {
		names = append(names, flag.Short)
	}
	return names
}

// String renders the canonical form: the short names concatenated with no
// separator.
func (f Flags) String() string {
	var b strings.Builder
	for _, flag := range f.Set() {
		b.WriteString(flag.Short)
	}
	return b.String()
}

// Parse composes a value from a canonical string such as "SROD". Short names
// are matched greedily in table order at each position.
func Parse(table *Table, s string) (Flags, error) {
	var value uint64
	rest := s
	for rest != "" {
		matched := false
		for _, flag := range table.flags {
			if flag.Short != "" && strings.HasPrefix(rest, flag.Short) {
				value |= flag.Bit
				rest = rest[len(flag.Short):]
				matched = true
				break
			}
		}
		if !matched {
			return Flags{}, fmt.Errorf("unknown %s flag at %q", table.name, rest)
		}
	}
	return New(table, value), nil
}
