// Package barcode classifies scanned strings for the two barcode roles
// and corrects the known wrong-keyboard-layout prefixes before validation.
package barcode

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Role identifies what a scanned string is supposed to be.
type Role int

const (
	// RoleBox is a container barcode.
	RoleBox Role = iota
	// RoleItem is a product barcode counted inside a box.
	RoleItem
)

// Length bounds applied in every validation mode, counted in code
// points, not bytes.
const (
	minLen = 8
	maxLen = 40
)

var (
	// Permissive mode takes word characters from any script, so a code
	// scanned under the wrong layout still registers.
	permissiveRe = regexp.MustCompile(`^[\p{L}\p{N}_\-./]+$`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
	wbBoxRe      = regexp.MustCompile(`^WB_[\w-]+$`)
	ean13Re      = regexp.MustCompile(`^[0-9]{13}$`)
	oznRe        = regexp.MustCompile(`^ozn[0-9]+$`)
)

// Normalize rewrites a barcode typed with a mismatched Cyrillic keyboard
// layout back into its intended ASCII vendor prefix. Only the fixed known
// prefixes are corrected; anything else passes through unchanged.
func Normalize(raw string, role Role) string {
	lower := strings.ToLower(raw)
	switch role {
	case RoleBox:
		if strings.HasPrefix(lower, "ца") {
			return "wb" + raw[len("ца"):]
		}
		if strings.HasPrefix(lower, "ци_") {
			return "WB_" + raw[len("ци_"):]
		}
	case RoleItem:
		if strings.HasPrefix(lower, "щят") {
			return "OZN" + raw[len("щят"):]
		}
	}
	return raw
}

// Valid reports whether code is acceptable for role under the given
// strictness. The 8..40 length bound holds in every mode.
//
// Permissive mode accepts letters, digits, underscore, hyphen, period and
// slash. Strict mode enforces the vendor code families: boxes are either
// WB_-prefixed or all digits, items are either EAN-13 or an OZN number.
func Valid(code string, role Role, strict bool) bool {
	if n := utf8.RuneCountInString(code); n < minLen || n > maxLen {
		return false
	}
	if !strict {
		return permissiveRe.MatchString(code)
	}
	switch role {
	case RoleBox:
		if strings.HasPrefix(strings.ToUpper(code), "WB_") {
			return wbBoxRe.MatchString(strings.ToUpper(code))
		}
		return digitsRe.MatchString(code)
	case RoleItem:
		return ean13Re.MatchString(code) || oznRe.MatchString(strings.ToLower(code))
	default:
		// Unknown role, fall back to the digits-only policy.
		return digitsRe.MatchString(code)
	}
}
