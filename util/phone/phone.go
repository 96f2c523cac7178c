// Package phone canonicalizes Kenyan mobile numbers to international
// 254XXXXXXXXX form. Gateway-specific re-localization (0XXXXXXXXX) is the
// gateway client's job, not this package's.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalid = errors.New("invalid phone")

	kenyaRe = regexp.MustCompile(`^254(7\d{8}|1\d{8})$`)
)

// Normalize strips spaces and dashes, rewrites a leading 0 to 254, prepends
// 254 when missing, and validates the result as a plausible Kenyan mobile
// number (254 then 7 or 1 then eight digits).
func Normalize(raw string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", ErrInvalid
	}
	if strings.HasPrefix(cleaned, "0") {
		cleaned = "254" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "254") {
		cleaned = "254" + cleaned
	}
	if !kenyaRe.MatchString(cleaned) {
		return "", ErrInvalid
	}
	return cleaned, nil
}

// ToLocal converts a canonical 2547XXXXXXXX number to the local 07XXXXXXXX
// form the push-payment API expects. Inputs already in local form pass
// through unchanged.
func ToLocal(canonical string) string {
	if strings.HasPrefix(canonical, "254") {
		return "0" + canonical[3:]
	}
	return canonical
}
