package domain

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: empty message, unknown persona, bad body.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a reference to an unknown conversation.
	ErrNotFound = errors.New("not found")
)

// UpstreamError wraps a failure reported by the completion provider.
type UpstreamError struct {
	Provider string
	Err      error
}

// Error returns the provider's raw error text.
func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Provider + ": upstream error"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError checks if an error came from the completion provider.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
