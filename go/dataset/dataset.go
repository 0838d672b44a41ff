// Package dataset implements DataSet and DataSetDetail records, the
// per-data-source dataset cache, and lookup-list construction: the
// transitive set of dataset ids a read from a given dataset can see.
package dataset

import (
	"encoding/json"
	"sync"

	"github.com/datacentricorg/datacentric-sub004/go/record"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
)

// ClassTag is the class_tag DataSet records are saved and decoded under.
const ClassTag = "DataSet"

// CommonName is the conventional name of the default working dataset.
const CommonName = "Common"

// DataSet is a named, immutable record describing a scope. It is
// root-dataset-only: the enclosing record.Envelope's Dataset field must
// be Empty.
type DataSet struct {
	Name    string
	Parents []tid.TemporalId
}

func (d *DataSet) ClassTag() string  { return ClassTag }
func (d *DataSet) KeyString() string { return d.Name }
func (d *DataSet) rootDatasetOnly()  {}

var _ record.RootDatasetOnly = (*DataSet)(nil)

func init() {
	record.Register(ClassTag, func(body []byte) (record.Payload, error) {
		var d DataSet
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

// DetailClassTag is the class_tag DataSetDetail records are saved under.
const DetailClassTag = "DataSetDetail"

// Detail is attached to a specific dataset *version* by its id (not by
// name), so it applies only to that exact version of the dataset.
type Detail struct {
	DatasetID         tid.TemporalId
	ReadOnly          *bool
	ImportsCutoffTime *tid.TemporalId
}

func (d *Detail) ClassTag() string  { return DetailClassTag }
func (d *Detail) KeyString() string { return d.DatasetID.String() }

var _ record.Payload = (*Detail)(nil)

func init() {
	record.Register(DetailClassTag, func(body []byte) (record.Payload, error) {
		var d Detail
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

// LoadedDataSet is a DataSet record as resolved from storage: its
// assigned id, the dataset it was itself saved into (OwnDataset — must
// be Empty for a well-formed dataset record), and its payload.
type LoadedDataSet struct {
	ID         tid.TemporalId
	OwnDataset tid.TemporalId
	Data       DataSet
}

// Loader is the subset of a data source's read path the cache needs to
// resolve a miss.
type Loader interface {
	// LoadDataSetByName resolves name as seen from scope's lookup list,
	// returning (nil, nil) if no such dataset is visible.
	LoadDataSetByName(scope tid.TemporalId, name string) (*LoadedDataSet, error)
	// LoadDataSetByID loads the dataset record with the given id
	// verbatim, returning (nil, nil) if it does not exist.
	LoadDataSetByID(id tid.TemporalId) (*LoadedDataSet, error)
}

// Cache holds per-data-source dataset state: a name→id index (scoped by
// the dataset the lookup was performed from, since two scopes may see
// different datasets of the same name) and a memoized id→lookup-list
// table. It grows only on reads; Clear is the only way to shrink it,
// since there is no background invalidation.
type Cache struct {
	mu        sync.RWMutex
	nameToID  map[nameKey]tid.TemporalId
	importSet map[tid.TemporalId]map[tid.TemporalId]bool
	datasets  map[tid.TemporalId]DataSet // id -> DataSet payload, for lookup-list construction
}

type nameKey struct {
	scope tid.TemporalId
	name  string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		nameToID:  map[nameKey]tid.TemporalId{},
		importSet: map[tid.TemporalId]map[tid.TemporalId]bool{},
		datasets:  map[tid.TemporalId]DataSet{},
	}
}

// Clear drops every cached entry. Callers that depend on observing
// dataset changes made by another process must call this explicitly;
// the cache never invalidates itself.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameToID = map[nameKey]tid.TemporalId{}
	c.importSet = map[tid.TemporalId]map[tid.TemporalId]bool{}
	c.datasets = map[tid.TemporalId]DataSet{}
}

func (c *Cache) noteDataset(id tid.TemporalId, d DataSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets[id] = d
}

func (c *Cache) noteName(scope tid.TemporalId, name string, id tid.TemporalId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameToID[nameKey{scope, name}] = id
}

func (c *Cache) lookupName(scope tid.TemporalId, name string) (tid.TemporalId, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.nameToID[nameKey{scope, name}]
	return id, ok
}

func (c *Cache) lookupDataset(id tid.TemporalId) (DataSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.datasets[id]
	return d, ok
}

func (c *Cache) lookupImportSet(id tid.TemporalId) (map[tid.TemporalId]bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	memo, ok := c.importSet[id]
	return memo, ok
}

func (c *Cache) storeImportSet(id tid.TemporalId, set map[tid.TemporalId]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.importSet[id] = set
}

// SeedImportSet pre-populates dsID's memoized lookup list from an
// external source (a cross-process index mirror) so that a subsequent
// BuildLookupList call returns it without walking the dataset graph.
// Callers are responsible for the set's correctness — this is a cache
// warm, not a computation.
func (c *Cache) SeedImportSet(dsID tid.TemporalId, members map[tid.TemporalId]bool) {
	c.storeImportSet(dsID, copySet(members))
}

// Put registers a dataset directly — used by CreateDataSet right after a
// save, and by tests seeding fixture datasets — without a Loader round
// trip.
func (c *Cache) Put(id tid.TemporalId, d DataSet) {
	c.noteDataset(id, d)
	c.noteName(tid.Empty, d.Name, id)
}

func errDataSetNotFound(what string) error {
	return skerr.Fmt("DataSetNotFound: %s", what)
}

// IsDataSetNotFound reports whether err is (or wraps) a DataSetNotFound
// failure, letting callers like GetDataSetOrEmpty distinguish a genuine
// miss from any other load failure.
func IsDataSetNotFound(err error) bool {
	return err != nil && containsSentinel(err.Error(), "DataSetNotFound")
}

func containsSentinel(msg, sentinel string) bool {
	for i := 0; i+len(sentinel) <= len(msg); i++ {
		if msg[i:i+len(sentinel)] == sentinel {
			return true
		}
	}
	return false
}

// GetDataSetOrEmpty returns Empty, not an error, when no dataset named
// name is visible from scope — so callers may branch without handling
// DataSetNotFound for the common "does it exist" check.
func GetDataSetOrEmpty(cache *Cache, loader Loader, scope tid.TemporalId, name string) (tid.TemporalId, error) {
	id, err := getDataSetID(cache, loader, scope, name)
	if err != nil {
		if IsDataSetNotFound(err) {
			return tid.Empty, nil
		}
		return tid.Empty, err
	}
	return id, nil
}

// GetDataSet resolves name as visible from scope, failing with
// DataSetNotFound if it is not.
func GetDataSet(cache *Cache, loader Loader, scope tid.TemporalId, name string) (tid.TemporalId, error) {
	return getDataSetID(cache, loader, scope, name)
}

func getDataSetID(cache *Cache, loader Loader, scope tid.TemporalId, name string) (tid.TemporalId, error) {
	if id, ok := cache.lookupName(scope, name); ok {
		return id, nil
	}
	loaded, err := loader.LoadDataSetByName(scope, name)
	if err != nil {
		return tid.Empty, err
	}
	if loaded == nil {
		return tid.Empty, errDataSetNotFound(name)
	}
	if !loaded.OwnDataset.IsEmpty() {
		return tid.Empty, skerr.Fmt("DataSetNotInRoot: dataset %q was saved outside the root dataset", name)
	}
	cache.noteDataset(loaded.ID, loaded.Data)
	cache.noteName(scope, name, loaded.ID)
	if _, err := BuildLookupList(cache, loader, loaded.ID); err != nil {
		return tid.Empty, err
	}
	return loaded.ID, nil
}

// BuildLookupList computes the transitive set of dataset ids a read from
// dsID can see: dsID itself, Empty, and every ancestor reachable through
// Parents, with memoization in the cache's import-set table.
//
// Cycle handling: a dataset may not list itself as a parent, directly or
// transitively (SelfParent); every parent id must resolve to an extant
// dataset record saved in the root dataset (DataSetNotFound /
// DataSetNotInRoot).
func BuildLookupList(cache *Cache, loader Loader, dsID tid.TemporalId) (map[tid.TemporalId]bool, error) {
	if dsID.IsEmpty() {
		return map[tid.TemporalId]bool{tid.Empty: true}, nil
	}
	if memo, ok := cache.lookupImportSet(dsID); ok {
		return copySet(memo), nil
	}

	result, err := buildLookupListRecursive(cache, loader, dsID, map[tid.TemporalId]bool{dsID: true})
	if err != nil {
		return nil, err
	}
	cache.storeImportSet(dsID, copySet(result))
	return result, nil
}

func copySet(in map[tid.TemporalId]bool) map[tid.TemporalId]bool {
	out := make(map[tid.TemporalId]bool, len(in))
	for k := range in {
		out[k] = true
	}
	return out
}

// buildLookupListRecursive resolves dsID's own parents, consulting the
// cache's memoized import sets before recursing further. ancestorPath
// carries the ids on the current recursion stack so a cycle anywhere in
// the ancestry — not just a direct self-parent — is caught as SelfParent.
func buildLookupListRecursive(cache *Cache, loader Loader, dsID tid.TemporalId, ancestorPath map[tid.TemporalId]bool) (map[tid.TemporalId]bool, error) {
	d, ok := cache.lookupDataset(dsID)
	if !ok {
		loaded, err := loader.LoadDataSetByID(dsID)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, errDataSetNotFound(dsID.String())
		}
		if !loaded.OwnDataset.IsEmpty() {
			return nil, skerr.Fmt("DataSetNotInRoot: dataset %s was saved outside the root dataset", dsID)
		}
		cache.noteDataset(dsID, loaded.Data)
		d = loaded.Data
	}

	out := map[tid.TemporalId]bool{dsID: true, tid.Empty: true}
	for _, p := range d.Parents {
		if p == dsID || ancestorPath[p] {
			return nil, skerr.Fmt("SelfParent: dataset %s is its own ancestor through parent %s", dsID, p)
		}
		if memo, ok := cache.lookupImportSet(p); ok {
			for k := range memo {
				out[k] = true
			}
			continue
		}
		nextPath := make(map[tid.TemporalId]bool, len(ancestorPath)+1)
		for k := range ancestorPath {
			nextPath[k] = true
		}
		nextPath[p] = true

		parentSet, err := buildLookupListRecursive(cache, loader, p, nextPath)
		if err != nil {
			return nil, err
		}
		cache.storeImportSet(p, copySet(parentSet))
		for k := range parentSet {
			out[k] = true
		}
	}
	return out, nil
}
