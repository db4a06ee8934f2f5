package cache

import (
	"errors"
	"strings"
	"unicode"
)

// MaxNameLength bounds a check name used as a cache key.
const MaxNameLength = 512

var (
	// ErrInvalidKey is returned for blank names or names with control characters.
	ErrInvalidKey = errors.New("cache: key is invalid")

	// ErrKeyTooLong is returned for names longer than MaxNameLength bytes.
	ErrKeyTooLong = errors.New("cache: key exceeds max length")

	// ErrClosed is returned by GetOrCreate after Close.
	ErrClosed = errors.New("cache: clients closed")

	// ErrEvicted is returned to the callers of a construction whose name was
	// evicted while it ran.
	ErrEvicted = errors.New("cache: client evicted during construction")
)

// ValidateKey reports whether name can key a cached client. Check names end
// up in log lines and metric attributes, so control characters are refused.
func ValidateKey(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return ErrInvalidKey
	case len(name) > MaxNameLength:
		return ErrKeyTooLong
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return ErrInvalidKey
	}
	return nil
}
