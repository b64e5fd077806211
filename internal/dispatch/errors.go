package dispatch

import (
	"errors"

	"github.com/bububa/multi-agents/internal/config"
)

// ErrUnknownAgent reports an agent name outside the closed launcher set.
var ErrUnknownAgent = errors.New("unknown agent")

// UpstreamError wraps a model provider or tool failure. The first failure is
// surfaced as-is through Unwrap; nothing is retried.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream failure: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// wrapUpstream classifies an agent run failure. Configuration and selection
// errors keep their own types so callers can branch on them.
func wrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	var missing *config.MissingKeyError
	if errors.As(err, &missing) || errors.Is(err, ErrUnknownAgent) {
		return err
	}
	return &UpstreamError{Err: err}
}
