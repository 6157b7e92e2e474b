package wad

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// MaxNameLen is the number of bytes a lump name occupies in a directory entry.
const MaxNameLen = 8

// ErrInvalidName is matched by every NameError.
var ErrInvalidName = errors.New("invalid lump name")

// NameError reports a lump name that cannot be stored in a directory entry.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid lump name %q: %s", e.Name, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidName) true for any NameError.
func (e *NameError) Is(target error) bool {
	return target == ErrInvalidName
}

// LumpName is a validated archive entry name of one to eight characters from
// [A-Z0-9[]-_]. The zero value is the empty name and is only ever produced by
// declaring a variable.
type LumpName struct {
	name string
}

// ParseLumpName validates s and returns it as a LumpName. Lowercase letters and
// spaces are rejected rather than folded.
func ParseLumpName(s string) (LumpName, error) {
	if s == "" {
		return LumpName{}, &NameError{Name: s, Reason: "empty"}
	}
	if len(s) > MaxNameLen {
		return LumpName{}, &NameError{Name: s, Reason: fmt.Sprintf("longer than %d characters", MaxNameLen)}
	}
	for i := 0; i < len(s); i++ {
		if !validNameChar(s[i]) {
			return LumpName{}, &NameError{Name: s, Reason: fmt.Sprintf("character %q at %d not allowed", s[i], i)}
		}
	}
	return LumpName{name: s}, nil
}

// MustLumpName is like ParseLumpName but panics on an invalid name. It is meant
// for constants such as "THINGS".
func MustLumpName(s string) LumpName {
	n, err := ParseLumpName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func validNameChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '[', c == ']', c == '-', c == '_':
		return true
	}
	return false
}

// String returns the name without padding.
func (n LumpName) String() string {
	return n.name
}

// Len returns the number of characters in the name.
func (n LumpName) Len() int {
	return len(n.name)
}

// IsZero reports whether n is the empty name.
func (n LumpName) IsZero() bool {
	return n.name == ""
}

// Key returns the comparison key of the name, usable as a map key.
func (n LumpName) Key() string {
	return n.name
}

// Equal compares two names.
func (n LumpName) Equal(o LumpName) bool {
	return n.name == o.name
}

// Matches compares n against a plain string ignoring case.
func (n LumpName) Matches(s string) bool {
	return strings.EqualFold(n.name, s)
}

// String8 returns the NUL padded on-disk form of the name.
func (n LumpName) String8() String8 {
	var s String8
	copy(s[:], n.name)
	return s
}

// String8 is the WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// lumpNameFromDisk upper-cases a directory name before validating it, since
// shipped archives contain names such as "w94_1".
func lumpNameFromDisk(s String8) (LumpName, error) {
	return ParseLumpName(strings.ToUpper(s.String()))
}
