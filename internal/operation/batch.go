package operation

import (
	"fmt"
	"strconv"
	"time"
)

// ModType is the kind of change a Batch applies to an attribute.
type ModType int

// The zero ModType means "unset" and is used by converters to report that they
// do not override the kind of a batch.
const (
	ModAdd ModType = iota + 1
	ModRemove
	ModReplace
	ModRemoveAll
)

func (m ModType) String() string {
	switch m {
	case ModAdd:
		return "ADD"
	case ModRemove:
		return "REMOVE"
	case ModReplace:
		return "REPLACE"
	case ModRemoveAll:
		return "REMOVE_ALL"
	default:
		return fmt.Sprintf("ModType(%d)", int(m))
	}
}

// Batch is one pending modification of a single attribute. Before hydration
// Values holds domain values; afterwards it holds directory strings.
type Batch struct {
	ModType   ModType
	Attribute string
	Values    []any
}

// NewBatch creates a batch.
func NewBatch(modType ModType, attribute string, values ...any) *Batch {
	return &Batch{ModType: modType, Attribute: attribute, Values: values}
}

// StringValues renders Values as directory strings.
func (b *Batch) StringValues() []string {
	out := make([]string, 0, len(b.Values))
	for _, v := range b.Values {
		out = append(out, stringify(v))
	}
	return out
}

// Clone returns a copy that does not share the values slice.
func (b *Batch) Clone() *Batch {
	values := make([]any, len(b.Values))
	copy(values, b.Values)
	return &Batch{ModType: b.ModType, Attribute: b.Attribute, Values: values}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.UTC().Format("20060102150405.0Z")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
