package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacentricorg/datacentric-sub004/go/testutils/unittest"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
)

// fakeLoader is an in-memory Loader backed by a plain map, standing in
// for the TemporalDataSource's actual Firestore-backed dataset lookup
// during these unit tests.
type fakeLoader struct {
	byID   map[tid.TemporalId]*LoadedDataSet
	byName map[string]*LoadedDataSet
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{byID: map[tid.TemporalId]*LoadedDataSet{}, byName: map[string]*LoadedDataSet{}}
}

func (f *fakeLoader) add(id tid.TemporalId, name string, parents ...tid.TemporalId) {
	loaded := &LoadedDataSet{ID: id, OwnDataset: tid.Empty, Data: DataSet{Name: name, Parents: parents}}
	f.byID[id] = loaded
	f.byName[name] = loaded
}

func (f *fakeLoader) LoadDataSetByName(_ tid.TemporalId, name string) (*LoadedDataSet, error) {
	return f.byName[name], nil
}

func (f *fakeLoader) LoadDataSetByID(id tid.TemporalId) (*LoadedDataSet, error) {
	return f.byID[id], nil
}

func newID(g *tid.Generator, secs int64) tid.TemporalId {
	return g.Next(time.Unix(secs, 0))
}

func TestBuildLookupList_Empty_ReturnsJustEmpty(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()

	set, err := BuildLookupList(cache, loader, tid.Empty)
	require.NoError(t, err)
	assert.Equal(t, map[tid.TemporalId]bool{tid.Empty: true}, set)
}

func TestBuildLookupList_NoParents_ReturnsSelfAndEmpty(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	commonID := newID(g, 1_700_000_000)
	loader.add(commonID, CommonName)

	set, err := BuildLookupList(cache, loader, commonID)
	require.NoError(t, err)
	assert.Equal(t, map[tid.TemporalId]bool{commonID: true, tid.Empty: true}, set)
}

func TestBuildLookupList_TransitiveParents_AreAllIncluded(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	baseID := newID(g, 1_700_000_000)
	loader.add(baseID, "Base")
	derivID := newID(g, 1_700_000_001)
	loader.add(derivID, "Deriv", baseID)

	set, err := BuildLookupList(cache, loader, derivID)
	require.NoError(t, err)
	assert.True(t, set[derivID])
	assert.True(t, set[baseID])
	assert.True(t, set[tid.Empty])
	assert.Len(t, set, 3)
}

func TestBuildLookupList_SelfParent_Fails(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	selfID := newID(g, 1_700_000_000)
	loader.add(selfID, "Self", selfID)

	_, err := BuildLookupList(cache, loader, selfID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SelfParent")
}

func TestBuildLookupList_IndirectCycle_Fails(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	aID := newID(g, 1_700_000_000)
	bID := newID(g, 1_700_000_001)
	loader.add(aID, "A", bID)
	loader.add(bID, "B", aID)

	_, err := BuildLookupList(cache, loader, aID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SelfParent")
}

func TestBuildLookupList_MissingParent_FailsWithDataSetNotFound(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	ghost := newID(g, 1_700_000_000)
	derivID := newID(g, 1_700_000_001)
	loader.add(derivID, "Deriv", ghost)

	_, err := BuildLookupList(cache, loader, derivID)
	require.Error(t, err)
	assert.True(t, IsDataSetNotFound(err))
}

func TestBuildLookupList_IsMemoizedInCache(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	baseID := newID(g, 1_700_000_000)
	loader.add(baseID, "Base")

	_, err := BuildLookupList(cache, loader, baseID)
	require.NoError(t, err)

	// Remove the loader's only record; a memoized lookup-list must still
	// resolve without consulting the loader again.
	delete(loader.byID, baseID)
	set, err := BuildLookupList(cache, loader, baseID)
	require.NoError(t, err)
	assert.True(t, set[baseID])
}

func TestGetDataSetOrEmpty_MissingDataset_ReturnsEmptyNotError(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()

	id, err := GetDataSetOrEmpty(cache, loader, tid.Empty, "NoSuchDataset")
	require.NoError(t, err)
	assert.Equal(t, tid.Empty, id)
}

func TestGetDataSet_MissingDataset_FailsWithDataSetNotFound(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()

	_, err := GetDataSet(cache, loader, tid.Empty, "NoSuchDataset")
	require.Error(t, err)
	assert.True(t, IsDataSetNotFound(err))
}

func TestGetDataSet_CachesNameToIDAfterFirstLookup(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	commonID := newID(g, 1_700_000_000)
	loader.add(commonID, CommonName)

	first, err := GetDataSet(cache, loader, tid.Empty, CommonName)
	require.NoError(t, err)
	assert.Equal(t, commonID, first)

	delete(loader.byName, CommonName)
	second, err := GetDataSet(cache, loader, tid.Empty, CommonName)
	require.NoError(t, err)
	assert.Equal(t, commonID, second)
}

func TestCacheClear_DropsMemoizedState(t *testing.T) {
	unittest.SmallTest(t)
	cache := NewCache()
	loader := newFakeLoader()
	g := tid.NewGenerator()

	commonID := newID(g, 1_700_000_000)
	loader.add(commonID, CommonName)

	_, err := GetDataSet(cache, loader, tid.Empty, CommonName)
	require.NoError(t, err)

	cache.Clear()
	delete(loader.byName, CommonName)

	_, err = GetDataSet(cache, loader, tid.Empty, CommonName)
	require.Error(t, err)
	assert.True(t, IsDataSetNotFound(err))
}
