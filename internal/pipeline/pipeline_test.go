package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakehq/referral-ocr/constants"
	"github.com/intakehq/referral-ocr/internal/assess"
	"github.com/intakehq/referral-ocr/internal/extract"
	"github.com/intakehq/referral-ocr/internal/normalize"
	"github.com/intakehq/referral-ocr/internal/ocr"
	"github.com/intakehq/referral-ocr/internal/rules"
)

func f64(v float64) *float64 { return &v }

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	n, err := normalize.New(normalize.DefaultConfig())
	require.NoError(t, err)
	e := extract.New(rules.NewStore(), nil)
	return NewProcessor(n, e, assess.New(nil), nil)
}

const rawReferral = `Referral for sleep study
Patient: Doe, Jane
DOB: 01/15/085
Diagnosis: Olstructive sleep apnea
CPT: 95810
`

func TestProcess_EndToEnd(t *testing.T) {
	p := newProcessor(t)

	doc, verdict, err := p.Process(context.Background(), rawReferral, f64(0.9))
	require.NoError(t, err)

	// Normalization repaired the year and the misspelling before extraction.
	assert.Equal(t, "01/15/1985", doc.Patient.DOB)
	assert.Equal(t, "Doe", doc.Patient.LastName)
	assert.Equal(t, "Jane", doc.Patient.FirstName)
	assert.Contains(t, doc.Clinical.PrimaryDiagnosis, "Obstructive")
	assert.Equal(t, []string{"95810"}, doc.Procedure.CPT)
	assert.Equal(t, constants.ConfidenceHigh, verdict.Confidence.Bucket)
}

func TestProcess_CancelledContext(t *testing.T) {
	p := newProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Process(ctx, rawReferral, nil)
	assert.Error(t, err)
}

type stubRunner struct {
	out []byte
	err error
}

func (s stubRunner) Run(context.Context, string, ...string) ([]byte, error) {
	return s.out, s.err
}

func TestBatch_MixedResults(t *testing.T) {
	streams := NewStreams(time.Minute)
	ocrClient := ocr.NewClientWithRunner(
		stubRunner{err: errors.New("engine crashed")}, "ocr-engine", time.Second, nil)
	b := NewBatch(newProcessor(t), ocrClient, streams, nil, WithWorkers(2))

	id := uuid.New()
	results := b.Run(context.Background(), id, []Input{
		{SourceName: "good.pdf", Text: rawReferral, Confidence: f64(0.9)},
		{SourceName: "bad.pdf", Path: "/tmp/bad.pdf"},
		{SourceName: "also-good.pdf", Text: rawReferral, Confidence: f64(0.7)},
	})

	require.Len(t, results, 3)
	assert.Empty(t, results[0].Error)
	require.NotNil(t, results[0].Document)
	assert.Equal(t, "Doe", results[0].Document.Patient.LastName)

	// The failed document carries its error without sinking the batch.
	assert.NotEmpty(t, results[1].Error)
	assert.Nil(t, results[1].Document)

	assert.Empty(t, results[2].Error)
	require.NotNil(t, results[2].Assessment)
	assert.Equal(t, constants.ConfidenceMedium, results[2].Assessment.Confidence.Bucket)
}

func TestBatch_EventStream(t *testing.T) {
	streams := NewStreams(time.Minute)
	b := NewBatch(newProcessor(t), nil, streams, nil, WithWorkers(1))

	id := uuid.New()
	b.Run(context.Background(), id, []Input{
		{SourceName: "a.txt", Text: rawReferral},
		{SourceName: "b.txt", Text: rawReferral},
	})

	stream, ok := streams.Get(id)
	require.True(t, ok)
	assert.True(t, stream.Done())

	events := stream.Events(0)
	require.Len(t, events, 4)
	assert.Equal(t, EventBatchStarted, events[0].Type)
	assert.Equal(t, EventBatchCompleted, events[3].Type)

	// Offset polling only returns the tail.
	tail := stream.Events(3)
	require.Len(t, tail, 1)
	assert.Equal(t, EventBatchCompleted, tail[0].Type)

	assert.Nil(t, stream.Events(99))
}

func TestStreams_TeardownAfterCompletion(t *testing.T) {
	streams := NewStreams(10 * time.Millisecond)
	b := NewBatch(newProcessor(t), nil, streams, nil)

	id := uuid.New()
	b.Run(context.Background(), id, []Input{{SourceName: "a.txt", Text: rawReferral}})

	_, ok := streams.Get(id)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := streams.Get(id)
		return !ok
	}, time.Second, 5*time.Millisecond)
}
