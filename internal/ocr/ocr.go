package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/intakehq/referral-ocr/internal/common"
)

// Runner abstracts external process execution for testing.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s exited: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// Result is the OCR engine's output for one scanned document. Confidence is
// nil when the engine did not report a usable score.
type Result struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

// Client invokes the external OCR command. The expected stdout contract is
// JSON {"text": ..., "confidence": ...}; anything else is recovered by
// treating the whole output as plain text with unknown confidence.
type Client struct {
	runner  Runner
	command string
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(command string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(execRunner{}, command, timeout, logger)
}

// NewClientWithRunner is for tests that stub process execution.
func NewClientWithRunner(r Runner, command string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(r, command, timeout, logger)
}

func newClient(r Runner, command string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{runner: r, command: command, timeout: timeout, logger: logger}
}

// Recognize OCRs one file. A deadline overrun is reported as ErrTimeout,
// fatal for this document only; callers processing a batch continue with the
// next one.
func (c *Client) Recognize(ctx context.Context, path string) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.runner.Run(ctx, c.command, path)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, common.NewAppError("OCR_TIMEOUT",
				fmt.Sprintf("ocr of %s exceeded %s", path, c.timeout), common.ErrTimeout)
		}
		return Result{}, common.WrapError(err, "ocr invocation")
	}
	c.logger.Debug("ocr complete", "path", path, "duration", time.Since(start))

	return c.parse(path, out), nil
}

func (c *Client) parse(path string, out []byte) Result {
	var res Result
	if err := json.Unmarshal(out, &res); err == nil && res.Text != "" {
		return res
	}

	// Recover rather than fail: the raw output still carries the scanned
	// text even when the engine's JSON wrapper is broken.
	c.logger.Warn("recovering from malformed ocr output",
		"path", path, "error", common.ErrMalformedUpstream)
	return Result{Text: string(out)}
}
