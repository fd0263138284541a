package types

import "strings"

// DigitsOnly strips every non-digit rune from value.
func DigitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKenyanMobile converts 07XXXXXXXX, 01XXXXXXXX, 2547XXXXXXXX and
// +254 forms into the 254XXXXXXXXX form used by M-Pesa. The second return
// is false for anything else.
func NormalizeKenyanMobile(value string) (string, bool) {
	digits := DigitsOnly(value)
	switch {
	case len(digits) == 10 && (strings.HasPrefix(digits, "07") || strings.HasPrefix(digits, "01")):
		return "254" + digits[1:], true
	case len(digits) == 12 && (strings.HasPrefix(digits, "2547") || strings.HasPrefix(digits, "2541")):
		return digits, true
	case len(digits) == 9 && (digits[0] == '7' || digits[0] == '1'):
		return "254" + digits, true
	}
	return "", false
}

// LastN returns the trailing n runes of value, or value itself when shorter.
func LastN(value string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(value) <= n {
		return value
	}
	return value[len(value)-n:]
}
