package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Normalizer applies an ordered set of textual repair passes to raw OCR
// output. Every pass is pure and idempotent: re-running the normalizer on its
// own output yields the same text. Malformed input is never an error; text
// that no pass recognizes is left unchanged.
type Normalizer struct {
	cfg Config

	misspellings []substitution
	unglue       []substitution
	cptFixes     []substitution
	gluedDates   []*regexp.Regexp
}

type substitution struct {
	re  *regexp.Regexp
	out string
}

var (
	reTrailingWS   = regexp.MustCompile(`[ \t]+\n`)
	reSpaceRuns    = regexp.MustCompile(`[ \t]{2,}`)
	reCrossLineNum = regexp.MustCompile(`(\d)[ \t]*\n[ \t]*(\d)`)
	reSpacedWord   = regexp.MustCompile(`\b(?:[A-Za-z] ){2,}[A-Za-z]\b`)
	reZeroYear4    = regexp.MustCompile(`(\d{1,2}/\d{1,2}/)0{1,2}(\d{4})\b`)
	reZeroYear2    = regexp.MustCompile(`(\d{1,2}/\d{1,2}/)0{1,2}(\d{2})\b`)
	reSlashGap     = regexp.MustCompile(`(\d{2,3})[ \t]*/[ \t]*(\d{2,3})`)
	reHeightDup    = regexp.MustCompile(`(\d)'(\d)'(\d{1,2}")`)

	quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`)
)

// New compiles the configured substitution tables. Invalid patterns in the
// config are rejected here so Normalize itself can stay infallible.
func New(cfg Config) (*Normalizer, error) {
	if cfg.CenturyPivot <= 0 {
		cfg.CenturyPivot = DefaultConfig().CenturyPivot
	}
	n := &Normalizer{cfg: cfg}

	for _, wrong := range sortedKeys(cfg.Misspellings) {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(wrong) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("misspelling %q: %w", wrong, err)
		}
		n.misspellings = append(n.misspellings, substitution{re: re, out: cfg.Misspellings[wrong]})
	}

	for _, p := range cfg.UngluePhrases {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("unglue pattern %q: %w", p.Pattern, err)
		}
		n.unglue = append(n.unglue, substitution{re: re, out: p.Replacement})
	}

	for _, wrong := range sortedKeys(cfg.CPTCorrections) {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(wrong) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("cpt correction %q: %w", wrong, err)
		}
		n.cptFixes = append(n.cptFixes, substitution{re: re, out: cfg.CPTCorrections[wrong]})
	}

	for _, label := range cfg.DateLabels {
		// Glued MMDD/00YYYY form behind a known label, e.g.
		// "Referral/order date: 00402/002024".
		re, err := regexp.Compile(`(?i)(` + label + `\s*:?\s*)0?(\d{2})(\d{2})/0{1,2}(\d{4})\b`)
		if err != nil {
			return nil, fmt.Errorf("date label %q: %w", label, err)
		}
		n.gluedDates = append(n.gluedDates, re)
	}

	return n, nil
}

// Normalize runs every repair pass in fixed order. Later passes assume the
// cleanup done by earlier ones.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	// 1. Line endings and whitespace.
	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = reTrailingWS.ReplaceAllString(t, "\n")
	t = reSpaceRuns.ReplaceAllString(t, " ")

	// 2. Curly quotes.
	t = quoteReplacer.Replace(t)

	// 3. Misspellings, whole-word and case-insensitive.
	for _, s := range n.misspellings {
		t = s.re.ReplaceAllString(t, s.out)
	}

	// 4. Numbers split across a line break.
	t = reCrossLineNum.ReplaceAllString(t, "$1$2")

	// 5. Letter-spaced words ("B l o o d" -> "Blood"). Requires a run of
	// three or more single letters so two-word sequences like "a b" survive.
	t = reSpacedWord.ReplaceAllStringFunc(t, func(m string) string {
		return strings.ReplaceAll(m, " ", "")
	})

	// 6. Fused phrases.
	for _, s := range n.unglue {
		t = s.re.ReplaceAllString(t, s.out)
	}

	// 7. Date repair.
	for _, re := range n.gluedDates {
		t = re.ReplaceAllString(t, "$1$2/$3/$4")
	}
	t = reZeroYear4.ReplaceAllString(t, "$1$2")
	t = reZeroYear2.ReplaceAllStringFunc(t, n.expandTwoDigitYear)

	// 8. Domain tweaks.
	t = reSlashGap.ReplaceAllString(t, "$1/$2")
	t = reHeightDup.ReplaceAllStringFunc(t, collapseHeightDup)
	for _, s := range n.cptFixes {
		t = s.re.ReplaceAllString(t, s.out)
	}

	return t
}

func (n *Normalizer) expandTwoDigitYear(m string) string {
	sub := reZeroYear2.FindStringSubmatch(m)
	yy, err := strconv.Atoi(sub[2])
	if err != nil {
		return m
	}
	if yy <= n.cfg.CenturyPivot {
		return sub[1] + "20" + sub[2]
	}
	return sub[1] + "19" + sub[2]
}

// collapseHeightDup undoes a known OCR duplication of the feet digit,
// 5'5'0" -> 5'0". Only fires when the doubled digit matches.
func collapseHeightDup(m string) string {
	sub := reHeightDup.FindStringSubmatch(m)
	if sub[1] == sub[2] {
		return sub[1] + "'" + sub[3]
	}
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
