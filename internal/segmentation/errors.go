package segmentation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Callers branch with errors.Is
// rather than matching message text.
var (
	// ErrInvalidStrategy reports an unknown strategy key. Caller error, fatal.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrMissingTranscript reports a transcript-dependent strategy invoked
	// without a transcript. Recoverable via SegmentWithFallback.
	ErrMissingTranscript = errors.New("missing transcript")

	// ErrStrategyExecution wraps any unclassified detector, proposer, or
	// extractor failure surfaced by a strategy.
	ErrStrategyExecution = errors.New("strategy execution failed")
)

// Wrap builds an error that carries strategy context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, strategy StrategyKey, operation, message string, err error) error {
	detail := buildDetail(string(strategy), operation, message)
	if marker == nil {
		marker = ErrStrategyExecution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsCancellation reports whether err represents cooperative cancellation
// rather than a strategy failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func buildDetail(strategy, operation, message string) string {
	parts := make([]string, 0, 3)
	if strategy = strings.TrimSpace(strategy); strategy != "" {
		parts = append(parts, strategy)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "segmentation failure"
	}
	return strings.Join(parts, ": ")
}
