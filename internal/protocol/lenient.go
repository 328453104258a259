package protocol

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const asciiSpace = " \t\n\v\f\r"

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// atoi parses the longest leading integer of s, C style: leading whitespace
// is skipped, one sign is accepted and parsing stops at the first non-digit.
// Input without digits yields 0. Results are clamped to the int32 range.
func atoi(s string) int {
	s = strings.TrimLeft(s, asciiSpace)
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n int64
	for i := 0; i < len(s) && isDigit(s[i]); i++ {
		n = n*10 + int64(s[i]-'0')
		if n > math.MaxInt32 {
			n = math.MaxInt32
		}
	}
	if neg {
		n = -n
	}
	return int(n)
}

// atof parses the longest leading decimal float of s with the same leniency
// as atoi. Garbage yields 0.
func atof(s string) float64 {
	s = strings.TrimLeft(s, asciiSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := false
	for end < len(s) && isDigit(s[end]) {
		end++
		digits = true
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits = true
		}
	}
	if !digits {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		j := end + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return f
}
