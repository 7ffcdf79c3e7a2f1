package assess

import (
	"log/slog"
	"strings"
	"time"

	"github.com/intakehq/referral-ocr/constants"
	"github.com/intakehq/referral-ocr/internal/entity"
)

// Engine derives the routing verdict for an extracted document: confidence
// bucket, flag set, and the action list the intake team works from.
type Engine struct {
	logger         *slog.Logger
	deniedCarriers []string
	now            func() time.Time
}

type Option func(*Engine)

// WithDeniedCarriers sets the carrier substrings (matched case-insensitively
// against the primary carrier) that raise INSURANCE_NOT_ACCEPTED.
func WithDeniedCarriers(carriers []string) Option {
	return func(e *Engine) {
		e.deniedCarriers = make([]string, 0, len(carriers))
		for _, c := range carriers {
			e.deniedCarriers = append(e.deniedCarriers, strings.ToLower(c))
		}
	}
}

// WithClock overrides the time source used for date checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assess evaluates one document against its source text and OCR confidence.
// Flag order follows the fixed catalog order, so repeated assessments of the
// same input produce identical output.
func (e *Engine) Assess(doc entity.Document, text string, ocrConfidence *float64) entity.Assessment {
	conf := ResolveConfidence(doc, ocrConfidence)

	lower := strings.ToLower(text)
	flags := make([]constants.Flag, 0, 8)
	for _, check := range flagChecks {
		if check.test(e, doc, lower) {
			flags = append(flags, check.flag)
		}
	}

	// Anything below the High threshold warrants a source-document check.
	if conf.Bucket != constants.ConfidenceHigh {
		flags = append(flags, constants.FlagLowOCRConfidence)
	}
	if countHighSeverity(flags) >= 2 {
		flags = append(flags, constants.FlagManualReviewRequired)
	}

	actions := make([]string, 0, len(flags))
	seen := map[string]struct{}{}
	for _, f := range flags {
		a := constants.ActionFor(f)
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		actions = append(actions, a)
	}

	e.logger.Debug("document assessed",
		"bucket", conf.Bucket,
		"flags", len(flags),
	)

	return entity.Assessment{Confidence: conf, Flags: flags, Actions: actions}
}

func countHighSeverity(flags []constants.Flag) int {
	n := 0
	for _, f := range flags {
		if constants.SeverityOf(f) == constants.SeverityHigh {
			n++
		}
	}
	return n
}
