package pipeline

import (
	"context"
	"log/slog"

	"github.com/intakehq/referral-ocr/internal/assess"
	"github.com/intakehq/referral-ocr/internal/entity"
	"github.com/intakehq/referral-ocr/internal/extract"
	"github.com/intakehq/referral-ocr/internal/normalize"
)

// Processor chains the three stateless stages: normalize the raw OCR text,
// extract the structured document, assess confidence and routing flags. The
// same input always yields the same output.
type Processor struct {
	normalizer *normalize.Normalizer
	extractor  *extract.Extractor
	engine     *assess.Engine
	logger     *slog.Logger
}

func NewProcessor(n *normalize.Normalizer, e *extract.Extractor, a *assess.Engine, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{normalizer: n, extractor: e, engine: a, logger: logger}
}

// Process runs one document through the full chain.
func (p *Processor) Process(ctx context.Context, raw string, ocrConfidence *float64) (entity.Document, entity.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return entity.Document{}, entity.Assessment{}, err
	}

	text := p.normalizer.Normalize(raw)
	doc := p.extractor.Extract(text)
	verdict := p.engine.Assess(doc, text, ocrConfidence)

	p.logger.Debug("document processed",
		"bucket", verdict.Confidence.Bucket,
		"flags", len(verdict.Flags),
	)
	return doc, verdict, nil
}
