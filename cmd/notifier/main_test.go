package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	require.Equal(t, 8*time.Second, parseDuration("8s", 0))
	require.Equal(t, time.Minute, parseDuration("", time.Minute))
	require.Equal(t, time.Minute, parseDuration("garbage", time.Minute))
	require.Equal(t, time.Minute, parseDuration("-5s", time.Minute))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("HUNTER_TEST_FLAG", "TRUE")
	require.True(t, envBool("HUNTER_TEST_FLAG"))
	t.Setenv("HUNTER_TEST_FLAG", "0")
	require.False(t, envBool("HUNTER_TEST_FLAG"))
	require.False(t, envBool("HUNTER_TEST_FLAG_MISSING"))
}
