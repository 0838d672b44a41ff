package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacentricorg/datacentric-sub004/go/testutils/unittest"
)

func TestGenerateDatasetOn_NoParents(t *testing.T) {
	unittest.SmallTest(t)
	ds := newFakeDataSource()
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, generateDatasetOn(ctx, ds, "Foo", nil, &out))
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}

func TestGenerateDatasetOn_WithParentByName(t *testing.T) {
	unittest.SmallTest(t)
	ds := newFakeDataSource()
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, generateDatasetOn(ctx, ds, "Base", nil, &out))
	out.Reset()
	require.NoError(t, generateDatasetOn(ctx, ds, "Child", []string{"Base"}, &out))
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}

func TestGenerateDatasetOn_UnknownParentFails(t *testing.T) {
	unittest.SmallTest(t)
	ds := newFakeDataSource()
	err := generateDatasetOn(context.Background(), ds, "Child", []string{"NoSuchParent"}, &bytes.Buffer{})
	require.Error(t, err)
}
