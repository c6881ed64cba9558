package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestElapsedMillis(t *testing.T) {
	start := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	require.Equal(t, int64(1500), ElapsedMillis(start, start.Add(1500*time.Millisecond)))
	require.Equal(t, int64(0), ElapsedMillis(start, start.Add(-time.Second)))
}
