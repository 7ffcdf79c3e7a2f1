package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Transform is a named value-cleanup function applied after regex capture.
type Transform func(string) string

var transforms = map[string]Transform{
	"trim":                      strings.TrimSpace,
	"collapse_spaces":           collapseSpaces,
	"digits_only":               digitsOnly,
	"strip_spaces":              stripSpaces,
	"upper":                     strings.ToUpper,
	"nanp_phone":                NANPPhone,
	"collapse_duplicate_tokens": collapseDuplicateTokens,
}

// TransformNames returns every registered postprocess name, for schema
// generation and validation messages.
func TransformNames() []string {
	return []string{
		"trim",
		"collapse_spaces",
		"digits_only",
		"strip_spaces",
		"upper",
		"nanp_phone",
		"collapse_duplicate_tokens",
	}
}

func lookupTransforms(names []string) ([]Transform, error) {
	out := make([]Transform, 0, len(names))
	for _, name := range names {
		t, ok := transforms[name]
		if !ok {
			return nil, fmt.Errorf("unknown postprocess transform %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}

var (
	reWS       = regexp.MustCompile(`\s+`)
	reNonDigit = regexp.MustCompile(`\D`)
)

func collapseSpaces(s string) string { return reWS.ReplaceAllString(s, " ") }
func digitsOnly(s string) string     { return reNonDigit.ReplaceAllString(s, "") }
func stripSpaces(s string) string    { return reWS.ReplaceAllString(s, "") }

// collapseDuplicateTokens undoes an OCR doubling of a label+value run: if the
// token sequence is an exact repetition of a shorter prefix, only the first
// occurrence survives.
func collapseDuplicateTokens(s string) string {
	tokens := strings.Fields(s)
	n := len(tokens)
	if n < 2 {
		return s
	}
	for k := 1; k <= n/2; k++ {
		if n%k != 0 {
			continue
		}
		if isRepetition(tokens, k) {
			return strings.Join(tokens[:k], " ")
		}
	}
	return s
}

func isRepetition(tokens []string, k int) bool {
	for i := k; i < len(tokens); i++ {
		if tokens[i] != tokens[i%k] {
			return false
		}
	}
	return true
}

// NANPPhone extracts a ten-digit North American number and formats it as
// "(AAA) EEE-NNNN". Search precedence:
//
//  1. the leading ten digits, if NANP-valid;
//  2. for eleven digits starting with 1, the trailing ten;
//  3. the first NANP-valid ten-digit window, scanning left to right;
//  4. fallback: the last ten digits formatted even if invalid.
//
// Inputs with fewer than ten digits come back empty.
func NANPPhone(s string) string {
	d := digitsOnly(s)
	if len(d) < 10 {
		return ""
	}
	if validNANP(d[:10]) {
		return formatNANP(d[:10])
	}
	if len(d) == 11 && d[0] == '1' && validNANP(d[1:]) {
		return formatNANP(d[1:])
	}
	for i := 0; i+10 <= len(d); i++ {
		if validNANP(d[i : i+10]) {
			return formatNANP(d[i : i+10])
		}
	}
	return formatNANP(d[len(d)-10:])
}

// validNANP checks area code (N 2-9, second digit 0-8) and exchange code
// (N 2-9) rules on a ten-digit string.
func validNANP(d string) bool {
	if len(d) != 10 {
		return false
	}
	if d[0] < '2' || d[0] > '9' {
		return false
	}
	if d[1] > '8' {
		return false
	}
	if d[3] < '2' || d[3] > '9' {
		return false
	}
	return true
}

func formatNANP(d string) string {
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}
