package contact

import "strings"

// MaxPhoneDigits is the area code (2) plus the subscriber number (9)
const MaxPhoneDigits = 11

// PhoneDigits strips every non-digit character from raw and keeps at most
// MaxPhoneDigits digits
func PhoneDigits(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw) && b.Len() < MaxPhoneDigits; i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PhoneComplete reports whether raw carries a full (DD) DDDDD-DDDD number
func PhoneComplete(raw string) bool {
	return len(PhoneDigits(raw)) == MaxPhoneDigits
}

// FormatPhone renders the digits of raw as a progressively filled
// (DD) DDDDD-DDDD mask. Input that was already formatted yields the same
// result as its digits alone.
func FormatPhone(raw string) string {
	d := PhoneDigits(raw)
	switch n := len(d); {
	case n == 0:
		return ""
	case n <= 2:
		return "(" + d
	case n <= 7:
		return "(" + d[:2] + ") " + d[2:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}
