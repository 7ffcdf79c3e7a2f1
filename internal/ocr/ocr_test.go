package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakehq/referral-ocr/internal/common"
)

type stubRunner struct {
	out   []byte
	err   error
	sleep time.Duration
}

func (s stubRunner) Run(ctx context.Context, _ string, _ ...string) ([]byte, error) {
	if s.sleep > 0 {
		select {
		case <-time.After(s.sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.out, s.err
}

func TestRecognize_JSONContract(t *testing.T) {
	c := NewClientWithRunner(stubRunner{
		out: []byte(`{"text": "Patient: Jane Doe", "confidence": 0.92}`),
	}, "ocr-engine", time.Second, nil)

	res, err := c.Recognize(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Patient: Jane Doe", res.Text)
	require.NotNil(t, res.Confidence)
	assert.InDelta(t, 0.92, *res.Confidence, 1e-9)
}

func TestRecognize_MalformedOutputRecovered(t *testing.T) {
	c := NewClientWithRunner(stubRunner{
		out: []byte("Patient: Jane Doe\nDOB: 01/15/1980"),
	}, "ocr-engine", time.Second, nil)

	res, err := c.Recognize(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Jane Doe")
	assert.Nil(t, res.Confidence)
}

func TestRecognize_Timeout(t *testing.T) {
	c := NewClientWithRunner(stubRunner{sleep: time.Second}, "ocr-engine", 10*time.Millisecond, nil)

	_, err := c.Recognize(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTimeout))
}

func TestRecognize_RunnerFailure(t *testing.T) {
	c := NewClientWithRunner(stubRunner{err: errors.New("exec: not found")}, "ocr-engine", time.Second, nil)

	_, err := c.Recognize(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrTimeout))
}
