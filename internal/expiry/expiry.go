// Package expiry parses MM/YY medicine expiry strings and classifies them as
// expired or near-expiry.
package expiry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultHorizonDays is the standard near-expiry warning window. Urgent
// warnings use UrgentHorizonDays.
const (
	DefaultHorizonDays = 90
	UrgentHorizonDays  = 30
)

// ErrInvalidFormat is returned for expiry strings that are not MM/YY.
// Malformed input is rejected rather than silently treated as a valid date.
var ErrInvalidFormat = errors.New("expiry must be in MM/YY format")

// Parse converts an MM/YY expiry string into the first day of that month.
// Two-digit years are interpreted as 2000+YY.
func Parse(s string) (time.Time, error) {
	mm, yy, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	year, err := strconv.Atoi(yy)
	if err != nil || year < 0 || len(yy) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.Local), nil
}

// IsExpired reports whether the expiry month has already started before now.
// An empty expiry means the product does not expire and is never expired.
func IsExpired(s string, now time.Time) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return false, nil
	}
	t, err := Parse(s)
	if err != nil {
		return false, err
	}
	return t.Before(now), nil
}

// IsNearExpiry reports whether the expiry date is strictly in the future and
// within horizonDays days of now. Already-expired products are never near
// expiry. An empty expiry is never near expiry.
func IsNearExpiry(s string, horizonDays int, now time.Time) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return false, nil
	}
	t, err := Parse(s)
	if err != nil {
		return false, err
	}
	days := int(math.Ceil(t.Sub(now).Hours() / 24))
	return days > 0 && days <= horizonDays, nil
}
