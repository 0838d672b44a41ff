package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datacentricorg/datacentric-sub004/go/testutils/unittest"
)

func TestRun_UnknownFlag_ReturnsUsageExitCode(t *testing.T) {
	unittest.SmallTest(t)
	code := run([]string{"tdsctl", "--no-such-flag"})
	assert.Equal(t, -1, code)
}

func TestRun_NoArgs_Succeeds(t *testing.T) {
	unittest.SmallTest(t)
	code := run([]string{"tdsctl"})
	assert.Equal(t, 0, code)
}

func TestRun_ExitVerb_Succeeds(t *testing.T) {
	unittest.SmallTest(t)
	code := run([]string{"tdsctl", "exit"})
	assert.Equal(t, 0, code)
}

func TestRun_ExtractWithMissingConfig_ReturnsBusinessExitCode(t *testing.T) {
	unittest.SmallTest(t)
	code := run([]string{"tdsctl", "extract", "--config", "/nonexistent/path.json5", "--collection", "Widget", "--key", "A", "--dataset", "Common"})
	assert.Equal(t, 1, code)
}
