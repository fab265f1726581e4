// =============================================================================
// SAT Extrato - Access Key Utilities
// =============================================================================
//
// The access key ("chave de acesso") is the 44-digit identifier of a CF-e.
// In the XML it is carried as the Id attribute of infCFe with a "CFe"
// prefix. This package strips the prefix, checks the key and splits it:
//
//   - into eleven groups of four digits for human reading;
//   - into even-length segments for Code128 symbols, whose numeric
//     subset packs digits in pairs.
//
// =============================================================================

package accesskey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Digits is the length of an access key.
const Digits = 44

// GroupSize is the number of digits per group in the human readable form.
const GroupSize = 4

// Prefix precedes the key in the infCFe Id and chCanc attributes.
const Prefix = "CFe"

var (
	// ErrKeyLength is returned for keys that are not exactly Digits digits.
	ErrKeyLength = errors.New("accesskey: key must have 44 digits")

	// ErrInvalidParts is returned for segment lists that cannot split a key.
	ErrInvalidParts = errors.New("accesskey: invalid parts")
)

// Normalize strips the "CFe" prefix, if present, and checks that what is
// left is a 44-digit key.
func Normalize(id string) (string, error) {
	key := strings.TrimPrefix(strings.TrimSpace(id), Prefix)
	if len(key) != Digits || !allDigits(key) {
		return "", fmt.Errorf("%w: %q", ErrKeyLength, id)
	}
	return key, nil
}

// Partition splits key into consecutive segments of the given sizes. The
// sizes must be positive and add up to the key length.
func Partition(key string, sizes []int) ([]string, error) {
	total := 0
	for _, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("%w: size %d is not positive", ErrInvalidParts, n)
		}
		total += n
	}
	if total != len(key) {
		return nil, fmt.Errorf("%w: sizes add up to %d, key has %d digits", ErrInvalidParts, total, len(key))
	}

	segments := make([]string, 0, len(sizes))
	pos := 0
	for _, n := range sizes {
		segments = append(segments, key[pos:pos+n])
		pos += n
	}
	return segments, nil
}

// Groups splits key into groups of GroupSize digits. A shorter last group
// holds the remainder.
func Groups(key string) []string {
	groups := make([]string, 0, len(key)/GroupSize+1)
	for pos := 0; pos < len(key); pos += GroupSize {
		end := min(pos+GroupSize, len(key))
		groups = append(groups, key[pos:end])
	}
	return groups
}

// Display returns the key as space separated groups of four digits.
func Display(key string) string {
	return strings.Join(Groups(key), " ")
}

// ValidateParts checks a barcode segment list: every size must be even and
// positive, and the sizes must add up to Digits.
func ValidateParts(parts []int) error {
	if len(parts) == 0 {
		return fmt.Errorf("%w: no parts given", ErrInvalidParts)
	}
	total := 0
	for i, n := range parts {
		if n <= 0 {
			return fmt.Errorf("%w: part %d (%d) is not positive", ErrInvalidParts, i+1, n)
		}
		if n%2 != 0 {
			return fmt.Errorf("%w: part %d (%d) is odd", ErrInvalidParts, i+1, n)
		}
		total += n
	}
	if total != Digits {
		return fmt.Errorf("%w: parts add up to %d, want %d", ErrInvalidParts, total, Digits)
	}
	return nil
}

// ParseParts reads a list like "22, 22" or "10 10 10 10 4" and validates it.
func ParseParts(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})

	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidParts, f)
		}
		parts = append(parts, n)
	}

	if err := ValidateParts(parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// Halves is the two-segment split of 22 digits each.
func Halves() []int {
	return []int{Digits / 2, Digits / 2}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
