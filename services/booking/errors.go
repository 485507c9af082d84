package booking

import (
	"errors"
	"fmt"
)

// Error codes for the booking engine taxonomy.
const (
	CodeValidation         = "validationError"
	CodeSlotUnavailable    = "slotUnavailable"
	CodeConflict           = "conflict"
	CodeInvalidTransition  = "invalidTransition"
	CodeCancellationClosed = "cancellationWindowClosed"
	CodeNotFound           = "notFound"
	CodeTransientStore     = "transientStoreError"
)

// EngineError carries a machine-readable code alongside the message so the
// HTTP layer and metrics can distinguish classes without string matching.
type EngineError struct {
	Code    string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(format string, args ...any) error {
	return &EngineError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewSlotUnavailableError(format string, args ...any) error {
	return &EngineError{Code: CodeSlotUnavailable, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError marks a race lost at commit time. Callers treat it like
// slotUnavailable, but it stays distinct because it indicates real concurrent
// contention rather than stale client data.
func NewConflictError(format string, args ...any) error {
	return &EngineError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidTransitionError(format string, args ...any) error {
	return &EngineError{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NewCancellationClosedError(format string, args ...any) error {
	return &EngineError{Code: CodeCancellationClosed, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &EngineError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewTransientStoreError(format string, args ...any) error {
	return &EngineError{Code: CodeTransientStore, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the engine error code, or "" for foreign errors.
func CodeOf(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

func IsConflict(err error) bool        { return CodeOf(err) == CodeConflict }
func IsSlotUnavailable(err error) bool { return CodeOf(err) == CodeSlotUnavailable }
func IsValidation(err error) bool      { return CodeOf(err) == CodeValidation }
