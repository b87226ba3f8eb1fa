// Package normalize implements the field canonicalization and hashing rules
// of the Meta Conversions API user-data matching spec.
//
// Personally identifying fields (email, phone, names, city, free-text
// state/gender) are lowercased, trimmed, whitespace-collapsed and SHA-256
// hashed. Non-identifying codes (2-letter country/region, YYYYMMDD
// birthdate, m/f gender) are passed through unhashed. Every function is
// total over string input: malformed values degrade to a best-effort
// passthrough or hash, never an error.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	separatorRe  = regexp.MustCompile(`[-/]`)
	leadingYear  = regexp.MustCompile(`^(19|20)\d{2}`)
	trailingYear = regexp.MustCompile(`\d{4}$`)
)

// HashField canonicalizes a value (lowercase, trim, collapse internal
// whitespace) and returns its SHA-256 hex digest. Empty input stays empty.
// Deterministic and idempotent over canonicalization: equal values under
// case/whitespace folding hash identically.
func HashField(s string) string {
	if s == "" {
		return ""
	}
	canonical := whitespaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// FormatPhone strips every non-digit character. Hashing happens afterward
// via HashField; this only produces the digit string Meta expects as
// hash input.
func FormatPhone(s string) string {
	if s == "" {
		return ""
	}
	return nonDigitRe.ReplaceAllString(s, "")
}

// FormatBirthdate converts a birthdate to the unhashed YYYYMMDD form.
// Accepted shapes: YYYY-MM-DD, DD/MM/YYYY, YYYY/MM/DD, or any of these
// with separators already stripped. When nothing matches, separators are
// stripped and the remainder returned as-is; callers must drop any result
// that is not exactly 8 digits.
func FormatBirthdate(s string) string {
	if s == "" {
		return ""
	}

	if parts := strings.Split(s, "-"); len(parts) == 3 && len(parts[0]) == 4 {
		return parts[0] + pad2(parts[1]) + pad2(parts[2])
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 {
		// First component ≤2 digits means day-first
		if len(parts[0]) <= 2 && len(parts[2]) == 4 {
			return parts[2] + pad2(parts[1]) + pad2(parts[0])
		}
		if len(parts[0]) == 4 {
			return parts[0] + pad2(parts[1]) + pad2(parts[2])
		}
	}

	cleaned := separatorRe.ReplaceAllString(s, "")
	if len(cleaned) == 8 {
		// Only a plausible year (19xx/20xx) up front means year-first;
		// a bare day like "02" must fall through to the rotation below
		if leadingYear.MatchString(cleaned) {
			return cleaned
		}
		// DDMMYYYY: rotate the trailing year to the front
		if trailingYear.MatchString(cleaned) {
			return cleaned[4:] + cleaned[:4]
		}
	}

	return cleaned
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Country uppercases and truncates to the first two characters. Mapping
// free-text country names to ISO codes is the caller's job; this does none.
func Country(s string) string {
	if s == "" {
		return ""
	}
	upper := []rune(strings.ToUpper(s))
	if len(upper) > 2 {
		upper = upper[:2]
	}
	return string(upper)
}

// Region returns a trimmed, uppercased 2-letter region code as-is, and
// hashes anything longer (free-text state names are PII under the
// matching spec).
func Region(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strings.ToUpper(strings.TrimSpace(s))
	if utf8.RuneCountInString(cleaned) == 2 {
		return cleaned
	}
	return HashField(s)
}

// Gender maps the accepted masculine/feminine spellings to "m"/"f" and
// hashes anything else.
func Gender(s string) string {
	if s == "" {
		return ""
	}
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "m", "masculino", "male":
		return "m"
	case "f", "feminino", "female":
		return "f"
	}
	return HashField(s)
}
