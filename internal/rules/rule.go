package rules

import (
	"regexp"
	"strings"

	"github.com/intakehq/referral-ocr/internal/common"
	"github.com/intakehq/referral-ocr/internal/entity"
)

// DefaultWindow is how far past a section heading a section-scoped rule may
// match, in bytes of normalized text.
const DefaultWindow = 500

// Spec is the declarative form of an extraction rule, as it arrives in a
// rule-pack file or an API request.
type Spec struct {
	Name        string   `json:"name"`
	Field       string   `json:"field"`
	Pattern     string   `json:"pattern"`
	Flags       string   `json:"flags,omitempty"`
	Section     string   `json:"section,omitempty"`
	Window      int      `json:"window,omitempty"`
	Postprocess []string `json:"postprocess,omitempty"`
	Priority    int      `json:"priority,omitempty"`
}

// Rule is a compiled, validated extraction rule. Rules are immutable once
// built and safe for concurrent use.
type Rule struct {
	spec      Spec
	re        *regexp.Regexp
	sectionRe *regexp.Regexp
	post      []Transform

	// seq is the insertion order, used to break priority ties so repeated
	// extractions stay deterministic.
	seq int
}

func (r *Rule) Name() string            { return r.spec.Name }
func (r *Rule) Field() string           { return r.spec.Field }
func (r *Rule) Priority() int           { return r.spec.Priority }
func (r *Rule) Spec() Spec              { return r.spec }
func (r *Rule) Scoped() bool            { return r.sectionRe != nil }
func (r *Rule) Window() int             { return r.spec.Window }
func (r *Rule) Pattern() *regexp.Regexp { return r.re }
func (r *Rule) Section() *regexp.Regexp { return r.sectionRe }

// Apply runs the rule's postprocess chain over a captured value.
func (r *Rule) Apply(value string) string {
	for _, t := range r.post {
		value = t(value)
	}
	return value
}

// Compile validates a spec and builds a rule from it. Every defect is
// reported as a validation error so callers can reject bad rule packs at
// write time.
func Compile(spec Spec) (*Rule, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, common.ValidationError("rule name is required")
	}
	if !entity.IsFieldPath(spec.Field) {
		return nil, common.ValidationErrorf("rule %q: unknown field path %q", spec.Name, spec.Field)
	}
	if spec.Pattern == "" {
		return nil, common.ValidationErrorf("rule %q: pattern is required", spec.Name)
	}

	flags := spec.Flags
	if flags == "" {
		flags = "i"
	}
	prefix, err := flagPrefix(flags)
	if err != nil {
		return nil, common.ValidationErrorf("rule %q: %v", spec.Name, err)
	}

	re, err := regexp.Compile(prefix + spec.Pattern)
	if err != nil {
		return nil, common.ValidationErrorf("rule %q: pattern does not compile: %v", spec.Name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, common.ValidationErrorf("rule %q: pattern needs at least one capture group", spec.Name)
	}

	r := &Rule{spec: spec, re: re}
	r.spec.Flags = flags

	if spec.Section != "" {
		sre, err := regexp.Compile(`(?i)` + spec.Section)
		if err != nil {
			return nil, common.ValidationErrorf("rule %q: section pattern does not compile: %v", spec.Name, err)
		}
		r.sectionRe = sre
		if r.spec.Window <= 0 {
			r.spec.Window = DefaultWindow
		}
	}

	r.post, err = lookupTransforms(spec.Postprocess)
	if err != nil {
		return nil, common.ValidationErrorf("rule %q: %v", spec.Name, err)
	}

	return r, nil
}

func flagPrefix(flags string) (string, error) {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			b.WriteRune(f)
		default:
			return "", common.ValidationErrorf("unsupported regex flag %q", string(f))
		}
	}
	if b.Len() == 0 {
		return "", nil
	}
	return "(?" + b.String() + ")", nil
}
