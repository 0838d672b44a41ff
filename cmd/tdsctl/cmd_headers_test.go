package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datacentricorg/datacentric-sub004/go/testutils/unittest"
)

func TestPrintHeaders_MentionsWireLayout(t *testing.T) {
	unittest.SmallTest(t)
	var out bytes.Buffer
	printHeaders(&out)
	assert.Contains(t, out.String(), "TemporalId")
	assert.Contains(t, out.String(), "_dataset")
}

func TestExitCommand_ActionAlwaysSucceeds(t *testing.T) {
	unittest.SmallTest(t)
	assert.NoError(t, exitCommand.Action(nil))
}
