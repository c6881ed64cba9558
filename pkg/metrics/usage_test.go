package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenUsageTotal(t *testing.T) {
	require.Equal(t, 30, TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 30}.Total())
	require.Equal(t, 15, TokenUsage{PromptTokens: 10, CompletionTokens: 5}.Total())
	require.True(t, TokenUsage{}.IsZero())
}
