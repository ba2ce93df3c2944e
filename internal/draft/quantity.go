package draft

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity reads the leading integer of raw, the way a form field is
// read: "12abc" is 12, "3.7" is 3, and anything without leading digits is 0.
func ParseQuantity(raw string) int {
	n, _ := ParseLeadingInt(raw)
	return n
}

// ParseLeadingInt parses an optionally signed run of digits at the start of
// raw. ok is false when there are no digits.
func ParseLeadingInt(raw string) (n int, ok bool) {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || v > math.MaxInt32 {
		v = math.MaxInt32
	}
	if neg {
		return -int(v), true
	}
	return int(v), true
}

// Clamp bounds v to [0, ceiling]. A negative ceiling is treated as 0.
func Clamp(v, ceiling int) int {
	if ceiling < 0 {
		ceiling = 0
	}
	if v < 0 {
		return 0
	}
	if v > ceiling {
		return ceiling
	}
	return v
}
