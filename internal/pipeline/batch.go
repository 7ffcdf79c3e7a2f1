package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/intakehq/referral-ocr/internal/entity"
	"github.com/intakehq/referral-ocr/internal/ocr"
)

// Input is one document submitted to a batch. Either Text carries already
// recognized OCR output, or Path names a file for the OCR adapter to read.
type Input struct {
	SourceName string   `json:"source_name"`
	Path       string   `json:"path,omitempty"`
	Text       string   `json:"text,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Batch fans a set of documents out over a bounded worker pool. One failing
// document never aborts the batch: its result entry carries the error and
// the remaining documents keep processing.
type Batch struct {
	processor *Processor
	ocrClient *ocr.Client
	streams   *Streams
	logger    *slog.Logger

	workers    int
	queueSize  int
	docTimeout time.Duration
}

type BatchOption func(*Batch)

func WithWorkers(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueueSize bounds how many documents can wait for a worker before
// submission blocks.
func WithQueueSize(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

func WithDocTimeout(d time.Duration) BatchOption {
	return func(b *Batch) {
		if d > 0 {
			b.docTimeout = d
		}
	}
}

func NewBatch(p *Processor, ocrClient *ocr.Client, streams *Streams, logger *slog.Logger, opts ...BatchOption) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Batch{
		processor:  p,
		ocrClient:  ocrClient,
		streams:    streams,
		logger:     logger,
		workers:    4,
		queueSize:  256,
		docTimeout: 3 * time.Minute,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes every input and returns the results in submission order.
// Progress is published to the batch's event stream as documents finish.
func (b *Batch) Run(ctx context.Context, batchID uuid.UUID, inputs []Input) []entity.ProcessResult {
	stream := b.streams.open(batchID)
	stream.publish(EventBatchStarted, "", "")
	b.logger.Info("batch started", "batch_id", batchID, "documents", len(inputs), "workers", b.workers)

	results := make([]entity.ProcessResult, len(inputs))
	jobs := make(chan int, b.queueSize)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.processOne(ctx, inputs[i])
				if results[i].Error != "" {
					stream.publish(EventDocumentFailed, inputs[i].SourceName, results[i].Error)
				} else {
					stream.publish(EventDocumentDone, inputs[i].SourceName, "")
				}
			}
		}()
	}

	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = entity.ProcessResult{
				SourceName: inputs[i].SourceName,
				Error:      ctx.Err().Error(),
			}
			stream.publish(EventDocumentFailed, inputs[i].SourceName, results[i].Error)
		}
	}
	close(jobs)
	wg.Wait()

	stream.publish(EventBatchCompleted, "", "")
	b.streams.scheduleTeardown(batchID)
	b.logger.Info("batch completed", "batch_id", batchID, "documents", len(inputs))
	return results
}

func (b *Batch) processOne(ctx context.Context, in Input) (res entity.ProcessResult) {
	res.SourceName = in.SourceName

	defer func() {
		if r := recover(); r != nil {
			res = entity.ProcessResult{
				SourceName: in.SourceName,
				Error:      fmt.Sprintf("panic: %v", r),
			}
			b.logger.Error("document processing panicked", "source", in.SourceName, "panic", r)
		}
	}()

	docCtx, cancel := context.WithTimeout(ctx, b.docTimeout)
	defer cancel()

	text, conf := in.Text, in.Confidence
	if text == "" && in.Path != "" {
		if b.ocrClient == nil {
			res.Error = "no ocr adapter configured for file input"
			return res
		}
		ocrRes, err := b.ocrClient.Recognize(docCtx, in.Path)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		text = ocrRes.Text
		if conf == nil {
			conf = ocrRes.Confidence
		}
	}

	doc, verdict, err := b.processor.Process(docCtx, text, conf)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Document = &doc
	res.Assessment = &verdict
	return res
}
