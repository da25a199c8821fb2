// Package numeral converts between Roman numeral tokens and integer ordinals.
//
// Treatise texts number their parts and elements with Roman numerals
// ("PART II", "PROPOSITION VII"). Decoding is deliberately strict: a token
// that is not in canonical form (e.g. "IIII" for "IV") is rejected rather
// than guessed at, since mis-numbering an element corrupts every reference
// that cites it.
package numeral

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedNumeral indicates a token that is not a canonical Roman numeral.
var ErrMalformedNumeral = errors.New("malformed roman numeral")

// romanValues maps accepted numeral characters to their magnitudes.
// The marker vocabulary never uses D, so tokens containing one are rejected.
var romanValues = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'M': 1000,
}

// canonicalTable lists value/token pairs for canonical encoding, largest first.
var canonicalTable = []struct {
	value int
	token string
}{
	{1000, "M"},
	{900, "CM"},
	{500, "D"},
	{400, "CD"},
	{100, "C"},
	{90, "XC"},
	{50, "L"},
	{40, "XL"},
	{10, "X"},
	{9, "IX"},
	{5, "V"},
	{4, "IV"},
	{1, "I"},
}

// ToInteger decodes a Roman numeral token into its integer value.
// Matching is case-insensitive. It returns ErrMalformedNumeral when the
// token contains characters outside the accepted set or is not the
// canonical spelling of its value under subtractive rules.
func ToInteger(token string) (int, error) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	if upper == "" {
		return 0, fmt.Errorf("%w: empty token", ErrMalformedNumeral)
	}

	total := 0
	for i := 0; i < len(upper); i++ {
		current, ok := romanValues[upper[i]]
		if !ok {
			return 0, fmt.Errorf("%w: invalid character %q in %q", ErrMalformedNumeral, upper[i], token)
		}

		// Subtractive pair: a smaller value before a larger one (IV, IX, XL, XC, ...).
		if i+1 < len(upper) {
			if next, ok := romanValues[upper[i+1]]; ok && next > current {
				total -= current
				continue
			}
		}
		total += current
	}

	// Re-encode and compare to reject non-canonical spellings such as
	// "IIII", "VV", or "IC". A value whose canonical form needs a D can
	// only have been reached through a non-canonical spelling, since D
	// itself is rejected above.
	canonical, err := ToNumeral(total)
	if err != nil || canonical != upper {
		return 0, fmt.Errorf("%w: %q is not canonical", ErrMalformedNumeral, token)
	}

	return total, nil
}

// ToNumeral encodes an integer as a canonical Roman numeral token.
// It supports values 1 through 3999 and is used for diagnostics output,
// never for parsing.
func ToNumeral(n int) (string, error) {
	if n < 1 || n > 3999 {
		return "", fmt.Errorf("%w: %d is out of range for roman numerals", ErrMalformedNumeral, n)
	}

	var b strings.Builder
	for _, entry := range canonicalTable {
		for n >= entry.value {
			b.WriteString(entry.token)
			n -= entry.value
		}
	}
	return b.String(), nil
}
