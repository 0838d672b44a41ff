package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacentricorg/datacentric-sub004/go/dataset"
	"github.com/datacentricorg/datacentric-sub004/go/testutils/unittest"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
)

func TestSmokeTestOn_DropsDatabaseByDefault(t *testing.T) {
	unittest.SmallTest(t)
	ds := newFakeDataSource()
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, smokeTestOn(ctx, ds, false, &out))
	assert.Equal(t, "ok\n", out.String())

	common, err := ds.GetDataSetOrEmpty(ctx, tid.Empty, dataset.CommonName)
	require.NoError(t, err)
	assert.Equal(t, tid.Empty, common, "Common dataset record should have been dropped along with everything else")
}

func TestSmokeTestOn_KeepTestDataLeavesRecordReadable(t *testing.T) {
	unittest.SmallTest(t)
	ds := newFakeDataSource()
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, smokeTestOn(ctx, ds, true, &out))
	assert.Equal(t, "ok\n", out.String())

	common, err := ds.GetDataSet(ctx, tid.Empty, dataset.CommonName)
	require.NoError(t, err)

	env, err := ds.LoadOrNilByKey(ctx, "TdsctlSmokeTestRecord", "smoke", common)
	require.NoError(t, err)
	require.NotNil(t, env)
}
