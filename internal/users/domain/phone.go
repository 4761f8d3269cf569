package domain

import "strings"

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// NormalizePhone canonicalizes a Thai phone number so lookups compare equal
// regardless of formatting: separators are dropped and a +66 prefix becomes
// a leading 0. The result must be 9 or 10 digits.
func NormalizePhone(raw string) (string, error) {
	s := phoneSeparators.Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(s, "+66"):
		s = "0" + s[3:]
	case strings.HasPrefix(s, "66") && len(s) == 11:
		s = "0" + s[2:]
	}

	if len(s) < 9 || len(s) > 10 {
		return "", ErrInvalidPhone
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return s, nil
}
