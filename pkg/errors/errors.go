package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrIndexOutOfBounds   = errors.New("index out of bounds")
	ErrNonLiteralSymbol   = errors.New("non-literal symbol")
	ErrOperationCancelled = errors.New("operation cancelled")
	ErrPoolTermination    = errors.New("worker pool did not terminate")
	ErrTimeout            = errors.New("operation timed out")
	ErrInvalidInput       = errors.New("invalid input")
)

// Exit codes reported by the command line tools.
const (
	ExitOK        = 0
	ExitInternal  = 1
	ExitUsage     = 2
	ExitCancelled = 130
	ExitFatal     = 70
)

type AppError struct {
	Err     error
	Op      string
	Message string
}

func (e *AppError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, op string, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Op:      op,
		Message: message,
	}
}

func Newf(sentinel error, op string, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Is and As re-export the standard helpers so callers importing this package
// under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, ErrInvalidParameter), errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrOperationCancelled):
		return ExitCancelled
	case errors.Is(err, ErrPoolTermination):
		return ExitFatal
	default:
		return ExitInternal
	}
}
