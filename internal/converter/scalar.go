package converter

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// decodeEach converts every raw value with fn. A single value is returned
// as T, several as []T.
func decodeEach[T any](name string, raw []string, fn func(string) (T, error)) (any, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		v, err := fn(r)
		if err != nil {
			return nil, formatError(name, r, err)
		}
		out = append(out, v)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

// encodeEach converts a T or []T domain value with fn.
func encodeEach[T any](name string, value any, fn func(T) (string, error)) (*Result, error) {
	var in []T
	switch v := value.(type) {
	case T:
		in = []T{v}
	case []T:
		in = v
	case []any:
		for _, item := range v {
			typed, ok := item.(T)
			if !ok {
				return nil, invalidValue(name, item, nil)
			}
			in = append(in, typed)
		}
	default:
		return nil, invalidValue(name, value, nil)
	}

	out := make([]string, 0, len(in))
	for _, v := range in {
		s, err := fn(v)
		if err != nil {
			return nil, invalidValue(name, v, err)
		}
		out = append(out, s)
	}
	return values(out...), nil
}

// Bool converts TRUE/FALSE.
type Bool struct {
	Base
}

func (c *Bool) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameBool, raw, func(s string) (bool, error) {
		switch strings.ToUpper(s) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, fmt.Errorf("expected TRUE or FALSE")
	})
}

func (c *Bool) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameBool, value, func(b bool) (string, error) {
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	})
}

// Int converts decimal integers to int64.
type Int struct {
	Base
}

func (c *Int) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameInt, raw, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func (c *Int) ToLDAP(_ context.Context, value any) (*Result, error) {
	if list, ok := value.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			n, err := toInt64(item)
			if err != nil {
				return nil, invalidValue(NameInt, item, err)
			}
			out = append(out, strconv.FormatInt(n, 10))
		}
		return values(out...), nil
	}
	n, err := toInt64(value)
	if err != nil {
		return nil, invalidValue(NameInt, value, err)
	}
	return values(strconv.FormatInt(n, 10)), nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("not an integer")
	}
}

// Enum maps stored values to names through the "enums" option, e.g.
//
//	Options{"enums": map[string]any{"Global": 2, "Universal": 8}}
type Enum struct {
	Base
}

func (c *Enum) enums() (map[string]string, error) {
	out := make(map[string]string)
	switch m := c.options["enums"].(type) {
	case nil:
		return nil, fmt.Errorf("option %q is required", "enums")
	case map[string]any:
		for k, v := range m {
			out[k] = fmt.Sprint(v)
		}
	case map[string]int:
		for k, v := range m {
			out[k] = strconv.Itoa(v)
		}
	case map[string]string:
		for k, v := range m {
			out[k] = v
		}
	default:
		return nil, fmt.Errorf("option %q has unsupported type %T", "enums", m)
	}
	return out, nil
}

func (c *Enum) FromLDAP(_ context.Context, raw []string) (any, error) {
	enums, err := c.enums()
	if err != nil {
		return nil, invalidValue(NameEnum, raw, err)
	}
	names := make([]string, 0, len(enums))
	for name := range enums {
		names = append(names, name)
	}
	sort.Strings(names)

	return decodeEach(NameEnum, raw, func(s string) (string, error) {
		for _, name := range names {
			if enums[name] == s {
				return name, nil
			}
		}
		return "", fmt.Errorf("no enum name for value")
	})
}

func (c *Enum) ToLDAP(_ context.Context, value any) (*Result, error) {
	enums, err := c.enums()
	if err != nil {
		return nil, invalidValue(NameEnum, value, err)
	}
	return encodeEach(NameEnum, value, func(name string) (string, error) {
		for k, v := range enums {
			if strings.EqualFold(k, name) {
				return v, nil
			}
		}
		return "", fmt.Errorf("unknown enum name %q", name)
	})
}

// GPOptions converts gPOptions: 1 means inheritance is blocked.
type GPOptions struct {
	Base
}

func (c *GPOptions) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameGPOptions, raw, func(s string) (bool, error) {
		switch s {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return false, fmt.Errorf("expected 0 or 1")
	})
}

func (c *GPOptions) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameGPOptions, value, func(block bool) (string, error) {
		if block {
			return "1", nil
		}
		return "0", nil
	})
}

var functionalLevels = []string{"2000", "2003 Interim", "2003", "2008", "2008 R2", "2012", "2012 R2", "2016"}

// FunctionalLevel converts domain/forest functional level numbers to names.
type FunctionalLevel struct {
	Base
}

func (c *FunctionalLevel) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameFunctionalLevel, raw, func(s string) (string, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", err
		}
		if n < 0 || n >= len(functionalLevels) {
			return "", fmt.Errorf("unknown functional level")
		}
		return functionalLevels[n], nil
	})
}

func (c *FunctionalLevel) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameFunctionalLevel, value, func(name string) (string, error) {
		idx := slices.IndexFunc(functionalLevels, func(level string) bool {
			return strings.EqualFold(level, name)
		})
		if idx < 0 {
			return "", fmt.Errorf("unknown functional level %q", name)
		}
		return strconv.Itoa(idx), nil
	})
}

// LogonWorkstations converts the comma separated userWorkstations value.
type LogonWorkstations struct {
	Base
}

func (c *LogonWorkstations) FromLDAP(_ context.Context, raw []string) (any, error) {
	out := []string{}
	for _, r := range raw {
		for _, ws := range strings.Split(r, ",") {
			if ws = strings.TrimSpace(ws); ws != "" {
				out = append(out, ws)
			}
		}
	}
	return out, nil
}

func (c *LogonWorkstations) ToLDAP(_ context.Context, value any) (*Result, error) {
	switch v := value.(type) {
	case string:
		return values(v), nil
	case []string:
		return values(strings.Join(v, ",")), nil
	default:
		return nil, invalidValue(NameLogonWorkstations, value, nil)
	}
}

// PasswordMustChange converts pwdLastSet: 0 forces a change at next logon.
type PasswordMustChange struct {
	Base
}

func (c *PasswordMustChange) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NamePasswordMustChange, raw, func(s string) (bool, error) {
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return false, err
		}
		return s == "0", nil
	})
}

func (c *PasswordMustChange) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NamePasswordMustChange, value, func(mustChange bool) (string, error) {
		if mustChange {
			return "0", nil
		}
		return "-1", nil
	})
}

// EncodeWindowsPassword encodes unicodePwd: the quoted password as UTF-16LE.
type EncodeWindowsPassword struct {
	Base
}

func (c *EncodeWindowsPassword) FromLDAP(_ context.Context, _ []string) (any, error) {
	return nil, fmt.Errorf("%s: %w", NameEncodeWindowsPassword, ErrWriteOnly)
}

func (c *EncodeWindowsPassword) ToLDAP(_ context.Context, value any) (*Result, error) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	return encodeEach(NameEncodeWindowsPassword, value, func(password string) (string, error) {
		return encoder.String(`"` + password + `"`)
	})
}

// exchangeVersions maps msExchVersion/serialNumber prefixes to products.
var exchangeVersions = []struct {
	prefix  string
	product string
}{
	{"Version 15.2", "2019"},
	{"Version 15.1", "2016"},
	{"Version 15.0", "2013"},
	{"Version 14.", "2010"},
	{"Version 8.", "2007"},
}

// ExchangeVersion converts an Exchange serial number to its product year.
type ExchangeVersion struct {
	Base
}

func (c *ExchangeVersion) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameExchangeVersion, raw, func(s string) (string, error) {
		for _, v := range exchangeVersions {
			if strings.HasPrefix(s, v.prefix) {
				return v.product, nil
			}
		}
		return "", fmt.Errorf("unknown Exchange version")
	})
}

func (c *ExchangeVersion) ToLDAP(_ context.Context, value any) (*Result, error) {
	return nil, invalidValue(NameExchangeVersion, value, ErrReadOnly)
}

// WindowsAccountName strips a domain qualifier from sAMAccountName values.
type WindowsAccountName struct {
	Base
}

func (c *WindowsAccountName) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameWindowsAccountName, raw, func(s string) (string, error) {
		return s, nil
	})
}

func (c *WindowsAccountName) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameWindowsAccountName, value, func(name string) (string, error) {
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		if name == "" {
			return "", fmt.Errorf("empty account name")
		}
		if len(name) > 20 {
			return "", fmt.Errorf("account name %q exceeds 20 characters", name)
		}
		return name, nil
	})
}

// LDAPType passes values through unchanged.
type LDAPType struct {
	Base
}

func (c *LDAPType) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameLDAPType, raw, func(s string) (string, error) {
		return s, nil
	})
}

func (c *LDAPType) ToLDAP(_ context.Context, value any) (*Result, error) {
	switch v := value.(type) {
	case string:
		return values(v), nil
	case []string:
		return values(v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return values(out...), nil
	default:
		return values(fmt.Sprint(v)), nil
	}
}
