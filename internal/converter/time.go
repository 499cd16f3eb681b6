package converter

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	// Parsing with generalizedTimeLayout also accepts a fraction after the
	// seconds.
	generalizedTimeLayout    = "20060102150405Z0700"
	windowsGeneralizedLayout = "20060102150405.0Z0700"

	// Seconds between 1601-01-01 and 1970-01-01.
	windowsEpochOffset = 11644473600
	ticksPerSecond     = 10_000_000

	// NeverExpires is the accountExpires value for accounts that never expire.
	NeverExpires = "9223372036854775807"
	// NeverTimeSpan is the interval value meaning "never" (e.g. maxPwdAge).
	NeverTimeSpan = "-9223372036854775808"
)

// Never is the time.Duration ADTimeSpan uses for the "never" interval.
const Never = time.Duration(math.MaxInt64)

// GeneralizedTime converts generalized time strings, honouring an optional
// UTC offset suffix. Windows controls whether the ".0" fraction is emitted.
type GeneralizedTime struct {
	Base
	Windows bool
}

func (c *GeneralizedTime) name() string {
	if c.Windows {
		return NameWindowsGeneralizedTime
	}
	return NameGeneralizedTime
}

func (c *GeneralizedTime) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(c.name(), raw, func(s string) (time.Time, error) {
		return time.Parse(generalizedTimeLayout, s)
	})
}

func (c *GeneralizedTime) ToLDAP(_ context.Context, value any) (*Result, error) {
	layout := generalizedTimeLayout
	if c.Windows {
		layout = windowsGeneralizedLayout
	}
	return encodeEach(c.name(), value, func(t time.Time) (string, error) {
		if t.IsZero() {
			return "", fmt.Errorf("zero time")
		}
		return t.Format(layout), nil
	})
}

// WindowsTime converts 100ns intervals since 1601-01-01 UTC (FILETIME).
// 0 and the maximum int64 both mean "not set" and map to the zero time.
type WindowsTime struct {
	Base
}

func (c *WindowsTime) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameWindowsTime, raw, parseFileTime)
}

func (c *WindowsTime) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameWindowsTime, value, func(t time.Time) (string, error) {
		return formatFileTime(t), nil
	})
}

func parseFileTime(s string) (time.Time, error) {
	ticks, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if ticks == 0 || ticks == math.MaxInt64 {
		return time.Time{}, nil
	}
	secs := ticks/ticksPerSecond - windowsEpochOffset
	nsec := (ticks % ticksPerSecond) * 100
	return time.Unix(secs, nsec).UTC(), nil
}

func formatFileTime(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	ticks := (t.Unix()+windowsEpochOffset)*ticksPerSecond + int64(t.Nanosecond()/100)
	return strconv.FormatInt(ticks, 10)
}

// AccountExpires converts accountExpires. Accounts that never expire read as
// false; writing false sets "never".
type AccountExpires struct {
	Base
}

func (c *AccountExpires) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameAccountExpires, raw, func(s string) (any, error) {
		t, err := parseFileTime(s)
		if err != nil {
			return nil, err
		}
		if t.IsZero() {
			return false, nil
		}
		return t, nil
	})
}

func (c *AccountExpires) ToLDAP(_ context.Context, value any) (*Result, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return nil, invalidValue(NameAccountExpires, value, fmt.Errorf("use a time for an expiry date or false for never"))
		}
		return values(NeverExpires), nil
	case time.Time:
		return values(formatFileTime(v)), nil
	default:
		return nil, invalidValue(NameAccountExpires, value, nil)
	}
}

// LockoutTime converts lockoutTime. An unlocked account reads as false,
// a locked one as the time of lockout. Only false can be written, which
// unlocks the account.
type LockoutTime struct {
	Base
}

func (c *LockoutTime) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameLockoutTime, raw, func(s string) (any, error) {
		t, err := parseFileTime(s)
		if err != nil {
			return nil, err
		}
		if t.IsZero() {
			return false, nil
		}
		return t, nil
	})
}

func (c *LockoutTime) ToLDAP(_ context.Context, value any) (*Result, error) {
	if locked, ok := value.(bool); ok && !locked {
		return values("0"), nil
	}
	return nil, invalidValue(NameLockoutTime, value, fmt.Errorf("an account can only be unlocked"))
}

// ADTimeSpan converts negative 100ns interval attributes such as maxPwdAge and
// lockoutDuration to positive durations.
type ADTimeSpan struct {
	Base
}

func (c *ADTimeSpan) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameADTimeSpan, raw, func(s string) (time.Duration, error) {
		if s == NeverTimeSpan {
			return Never, nil
		}
		ticks, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		if ticks > 0 {
			return 0, fmt.Errorf("time span must not be positive")
		}
		return time.Duration(-ticks) * 100, nil
	})
}

func (c *ADTimeSpan) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameADTimeSpan, value, func(d time.Duration) (string, error) {
		if d == Never {
			return NeverTimeSpan, nil
		}
		if d < 0 {
			return "", fmt.Errorf("negative duration")
		}
		return strconv.FormatInt(-int64(d/100), 10), nil
	})
}
