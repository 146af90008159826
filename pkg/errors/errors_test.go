package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	err := New(ErrInvalidParameter, "params", "window must be positive")
	assert.Equal(t, "params: invalid parameter: window must be positive", err.Error())
	assert.ErrorIs(t, err, ErrInvalidParameter)

	wrapped := fmt.Errorf("loading: %w", Newf(ErrTimeout, "chunk", "after %ds", 3))
	var app *AppError
	assert.True(t, As(wrapped, &app))
	assert.Equal(t, "chunk", app.Op)
	assert.True(t, Is(wrapped, ErrTimeout))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(New(ErrInvalidParameter, "x", "y")))
	assert.Equal(t, ExitUsage, ExitCode(New(ErrInvalidInput, "x", "y")))
	assert.Equal(t, ExitCancelled, ExitCode(Newf(ErrOperationCancelled, "x", "%v", context.Canceled)))
	assert.Equal(t, ExitFatal, ExitCode(New(ErrPoolTermination, "x", "y")))
	assert.Equal(t, ExitInternal, ExitCode(errors.New("boom")))
}
