package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/intakehq/referral-ocr/internal/entity"
	"github.com/intakehq/referral-ocr/internal/rules"
)

// ExtractionMethod is stamped on every document that yielded at least one
// field, so downstream consumers can tell rule-based output from other
// extraction paths.
const ExtractionMethod = "rule_cascade"

// Extractor runs the active rule set over normalized text and builds a
// structured document. Safe for concurrent use; rule-set updates on the
// store are observed as consistent snapshots.
type Extractor struct {
	store  *rules.Store
	logger *slog.Logger

	// SamePhoneFaxPolicy drops the physician fax when its last ten digits
	// equal the clinic phone's, which happens when the OCR text lists one
	// number under both labels. On by default.
	SamePhoneFaxPolicy bool
}

func New(store *rules.Store, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		store:              store,
		logger:             logger,
		SamePhoneFaxPolicy: true,
	}
}

// Extract applies every rule in priority order. Scalar fields take the first
// non-empty post-processed value; multi-value fields accumulate every
// distinct match. Fields no rule produced stay omitted.
func (e *Extractor) Extract(text string) entity.Document {
	var doc entity.Document
	filled := map[string]bool{}
	found := false

	for _, r := range e.store.Snapshot() {
		if !entity.IsMultiValue(r.Field()) && filled[r.Field()] {
			continue
		}

		scope, ok := e.scope(text, r)
		if !ok {
			continue
		}

		if entity.IsMultiValue(r.Field()) {
			for _, m := range r.Pattern().FindAllStringSubmatch(scope, -1) {
				for _, v := range splitMulti(r.Apply(m[1])) {
					if doc.AppendField(r.Field(), v) {
						found = true
					}
				}
			}
			continue
		}

		m := r.Pattern().FindStringSubmatch(scope)
		if m == nil {
			continue
		}
		v := r.Apply(m[1])
		if v == "" {
			continue
		}
		doc.SetField(r.Field(), v)
		filled[r.Field()] = true
		found = true
	}

	if e.SamePhoneFaxPolicy && collapseDuplicateFax(&doc) {
		e.logger.Debug("dropped fax duplicating a phone number")
	}
	if found {
		doc.ExtractionMethod = ExtractionMethod
	}
	return doc
}

// scope resolves the text region a rule searches. Section-scoped rules search
// a window after the first section-heading match and are skipped when the
// heading is absent.
func (e *Extractor) scope(text string, r *rules.Rule) (string, bool) {
	if !r.Scoped() {
		return text, true
	}
	loc := r.Section().FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	end := loc[0] + r.Window()
	if end > len(text) {
		end = len(text)
	}
	return text[loc[0]:end], true
}

var (
	reMultiSep = regexp.MustCompile(`[;,]`)
	reDigits   = regexp.MustCompile(`\D`)
)

// splitMulti breaks a captured list value ("snoring, gasping; fatigue") into
// its items. Single-token captures pass through unchanged.
func splitMulti(v string) []string {
	parts := reMultiSep.Split(v, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func collapseDuplicateFax(doc *entity.Document) bool {
	fax := lastTen(doc.Physician.Fax)
	if fax == "" {
		return false
	}
	if fax == lastTen(doc.Physician.ClinicPhone) || fax == lastTen(doc.Patient.PhoneHome) {
		doc.Physician.Fax = ""
		return true
	}
	return false
}

func lastTen(s string) string {
	d := reDigits.ReplaceAllString(s, "")
	if len(d) < 10 {
		return d
	}
	return d[len(d)-10:]
}
