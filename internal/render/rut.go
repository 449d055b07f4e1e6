package render

import (
	"regexp"
	"strings"
)

var rutPattern = regexp.MustCompile(`\b\d{1,2}\.?\d{3}\.?\d{3}-?[\dkK]\b`)

// ValidRUT reports whether a Chilean RUT passes its modulo-11 check digit.
// Separators (dots, dash, spaces) are ignored and the check character is
// matched case-insensitively.
func ValidRUT(raw string) bool {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(".", "", "-", "", " ", "").Replace(s)
	if len(s) < 2 {
		return false
	}

	body, check := s[:len(s)-1], s[len(s)-1]

	// Weighted sum over reversed body digits, weights cycling 2..7.
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}

	residual := 11 - sum%11
	var expected byte
	switch residual {
	case 11:
		expected = '0'
	case 10:
		expected = 'K'
	default:
		expected = byte('0' + residual)
	}
	return check == expected
}

// ExtractRUT pulls the first RUT-shaped token out of free text, or "".
func ExtractRUT(text string) string {
	return rutPattern.FindString(text)
}
