package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(CodeCompletionTimeout, "completion timed out", context.DeadlineExceeded)
	require.True(t, IsCode(err, CodeCompletionTimeout))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Equal(t, "completion timed out: context deadline exceeded", err.Error())
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeInvalidInput, "message is required", nil))
	require.Equal(t, CodeInvalidInput, CodeOf(err))
	require.Equal(t, "", CodeOf(errors.New("plain")))
	require.False(t, IsCode(nil, CodeInvalidInput))
}
