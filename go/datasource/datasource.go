// Package datasource implements the concrete read/write engine: save,
// load, query, and delete against a document collection whose visibility
// is governed by a dataset lookup list, an optional revision cutoff, and
// per-dataset imports cutoffs. This is the largest single component of
// the store.
package datasource

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/datacentricorg/datacentric-sub004/go/dataset"
	"github.com/datacentricorg/datacentric-sub004/go/now"
	"github.com/datacentricorg/datacentric-sub004/go/query"
	"github.com/datacentricorg/datacentric-sub004/go/record"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/sklog"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
	"github.com/datacentricorg/datacentric-sub004/internal/storedoc"
)

// CollectionStore is the physical document access this engine needs.
// internal/storedoc.Client satisfies it directly; tests use an in-memory
// fake so the visibility/cutoff algorithm can be exercised without a
// Firestore emulator.
type CollectionStore interface {
	Create(ctx context.Context, collection, docID string, doc *storedoc.Doc) error
	GetByID(ctx context.Context, collection, docID string) (*storedoc.Doc, error)
	IterByKey(ctx context.Context, collection, keyString string) ([]*storedoc.Doc, error)
	IterAll(ctx context.Context, collection string) ([]*storedoc.Doc, error)
}

// IndexStore is the optional cross-process mirror of the dataset cache.
// When non-nil, a resolved (scope, name) or memoized import-set is
// written through so a second process opening the same data source
// warms its cache from the index instead of re-walking the dataset
// graph. It is never consulted for anything but dataset resolution —
// ordinary record reads always go through CollectionStore.
type IndexStore interface {
	LookupName(ctx context.Context, scope, name string) (string, bool, error)
	PutName(ctx context.Context, scope, name, datasetID string) error
	LookupImportSet(ctx context.Context, datasetID string) ([]string, bool, error)
	PutImportSet(ctx context.Context, datasetID string, members []string) error
	ClearDatasetCache(ctx context.Context) error
}

// DataSetCollection and DataSetDetailCollection are the fixed physical
// collection names for the two root-only dataset record kinds; every
// other collection name is the ClassTag of the application record type
// being stored, one physical collection per root record class.
const (
	DataSetCollection       = "DataSet"
	DataSetDetailCollection = "DataSetDetail"
)

// Config captures a TemporalDataSource's construction-time settings,
// mirroring the fields of a DataSource record.
type Config struct {
	ReadOnly        bool
	RevisedBefore   *time.Time
	RevisedBeforeID *tid.TemporalId
	// NonTemporal disables the versioning read path: reads consult only
	// the exact (key, dataset) pair, not the dataset's ancestors, and
	// imports cutoffs do not apply; the revision cutoff still hides
	// records at or after it. See DESIGN.md for why this is the chosen
	// reading of the non_temporal open question.
	NonTemporal bool
}

// DataSource is the abstract read/write contract every concrete engine
// (here, only TemporalDataSource) implements. It exists so callers —
// the Context ambient object, the CLI — depend on an interface rather
// than the concrete Firestore-backed engine.
type DataSource interface {
	IsReadOnly() bool
	Save(ctx context.Context, collection string, payload record.Payload, keyString string, saveTo tid.TemporalId) (tid.TemporalId, error)
	SaveMany(ctx context.Context, collection string, payloads []record.Payload, keyStrings []string, saveTo tid.TemporalId) ([]tid.TemporalId, error)
	LoadOrNilByKey(ctx context.Context, collection, keyString string, loadFrom tid.TemporalId) (*record.Envelope, error)
	LoadOrNilByID(ctx context.Context, collection string, id tid.TemporalId) (*record.Envelope, error)
	Query(ctx context.Context, collection string, loadFrom tid.TemporalId, q query.Query) ([]*record.Envelope, error)
	Delete(ctx context.Context, collection, keyString string, deleteIn tid.TemporalId) (tid.TemporalId, error)
	CreateDataSet(ctx context.Context, name string, parents []tid.TemporalId, saveTo tid.TemporalId) (tid.TemporalId, error)
	GetDataSet(ctx context.Context, scope tid.TemporalId, name string) (tid.TemporalId, error)
	GetDataSetOrEmpty(ctx context.Context, scope tid.TemporalId, name string) (tid.TemporalId, error)
	ClearDatasetCache(ctx context.Context) error
	DropDb(ctx context.Context) error
}

// TemporalDataSource is the store's concrete engine.
type TemporalDataSource struct {
	docs  CollectionStore
	index IndexStore // may be nil

	generator *tid.Generator
	cache     *dataset.Cache

	cfg            Config
	revisionCutoff *tid.TemporalId // derived once at construction

	collectionsMu sync.Mutex
	collections   map[string]bool // every collection this process has written to, for DropDb
}

// New derives revision_cutoff from cfg (failing ConfigConflict if both
// RevisedBefore and RevisedBeforeID are set) and returns a ready engine.
// index may be nil if no Datastore-backed mirror is configured.
func New(docs CollectionStore, index IndexStore, cfg Config) (*TemporalDataSource, error) {
	var cutoff *tid.TemporalId
	switch {
	case cfg.RevisedBefore != nil && cfg.RevisedBeforeID != nil:
		return nil, skerr.Fmt("ConfigConflict: revised_before and revised_before_id are mutually exclusive")
	case cfg.RevisedBefore != nil:
		// The least id with that timestamp: machine=0, pid=0, counter=0,
		// only the seconds field set.
		c := encodeSecsOnly(cfg.RevisedBefore.Unix())
		cutoff = &c
	case cfg.RevisedBeforeID != nil:
		c := *cfg.RevisedBeforeID
		cutoff = &c
	}
	return &TemporalDataSource{
		docs:           docs,
		index:          index,
		generator:      tid.NewGenerator(),
		cache:          dataset.NewCache(),
		cfg:            cfg,
		revisionCutoff: cutoff,
		collections:    map[string]bool{},
	}, nil
}

func (ds *TemporalDataSource) noteCollection(collection string) {
	ds.collectionsMu.Lock()
	defer ds.collectionsMu.Unlock()
	ds.collections[collection] = true
}

// encodeSecsOnly builds the TemporalId with only the seconds field set
// (machine, pid, and counter all zero) — the least id any generator
// could ever produce for that second, and therefore the correct cutoff
// boundary for a wall-clock revision time.
func encodeSecsOnly(secs int64) tid.TemporalId {
	var raw [tid.Size]byte
	secsU32 := uint32(secs)
	raw[0] = byte(secsU32 >> 24)
	raw[1] = byte(secsU32 >> 16)
	raw[2] = byte(secsU32 >> 8)
	raw[3] = byte(secsU32)
	return tid.TemporalId(raw)
}

// IsReadOnly reports whether writes through ds must fail with
// ReadOnlyDataSource: either the config says so directly, or a revision
// cutoff is in effect.
func (ds *TemporalDataSource) IsReadOnly() bool {
	return ds.cfg.ReadOnly || ds.revisionCutoff != nil
}

func (ds *TemporalDataSource) checkWritable() error {
	if ds.IsReadOnly() {
		return skerr.Fmt("ReadOnlyDataSource: writes are not permitted on this data source")
	}
	return nil
}

// Save assigns payload a fresh id and appends it to collection under
// saveTo. Root-dataset-only payloads (DataSource, DbName, DbServer,
// DataSet) require saveTo == Empty.
func (ds *TemporalDataSource) Save(ctx context.Context, collection string, payload record.Payload, keyString string, saveTo tid.TemporalId) (tid.TemporalId, error) {
	if err := ds.checkWritable(); err != nil {
		return tid.Empty, err
	}
	if _, rootOnly := payload.(record.RootDatasetOnly); rootOnly && !saveTo.IsEmpty() {
		return tid.Empty, skerr.Fmt("MustSaveInRoot: %s records may only be saved into the root dataset", payload.ClassTag())
	}
	if err := ctx.Err(); err != nil {
		return tid.Empty, skerr.Wrapf(err, "Canceled")
	}

	id := ds.generator.Next(now.Now(ctx))
	body, err := json.Marshal(payload)
	if err != nil {
		return tid.Empty, skerr.Wrapf(err, "marshaling payload of class %q", payload.ClassTag())
	}
	doc := &storedoc.Doc{ID: id.String(), Key: keyString, Dataset: saveTo.String(), Tag: payload.ClassTag(), Body: body}
	if err := ds.docs.Create(ctx, collection, doc.ID, doc); err != nil {
		return tid.Empty, err
	}
	ds.noteCollection(collection)

	if ds2, ok := payload.(*dataset.DataSet); ok {
		ds.cache.Put(id, *ds2)
		if ds.index != nil {
			if err := ds.index.PutName(ctx, tid.Empty.String(), ds2.Name, id.String()); err != nil {
				sklog.Warningf("datasource: failed to mirror dataset name index for %q: %v", ds2.Name, err)
			}
		}
	}
	return id, nil
}

// SaveMany saves payloads in order, assigning strictly increasing ids.
// There is no multi-document transaction: if a later payload fails to
// write, earlier writes in the batch are not rolled back (multi-document
// transactions are out of scope for this store).
func (ds *TemporalDataSource) SaveMany(ctx context.Context, collection string, payloads []record.Payload, keyStrings []string, saveTo tid.TemporalId) ([]tid.TemporalId, error) {
	if len(payloads) != len(keyStrings) {
		return nil, skerr.Fmt("SaveMany: %d payloads but %d key strings", len(payloads), len(keyStrings))
	}
	ids := make([]tid.TemporalId, 0, len(payloads))
	for i, p := range payloads {
		id, err := ds.Save(ctx, collection, p, keyStrings[i], saveTo)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete writes a fresh DeleteMarker for keyString into deleteIn. No
// existence check is performed. This is treated as a write and rejected
// under read-only, the same as Save.
func (ds *TemporalDataSource) Delete(ctx context.Context, collection, keyString string, deleteIn tid.TemporalId) (tid.TemporalId, error) {
	if err := ds.checkWritable(); err != nil {
		return tid.Empty, err
	}
	if err := ctx.Err(); err != nil {
		return tid.Empty, skerr.Wrapf(err, "Canceled")
	}
	id := ds.generator.Next(now.Now(ctx))
	doc := &storedoc.Doc{ID: id.String(), Key: keyString, Dataset: deleteIn.String(), Tag: record.DeleteMarkerTag}
	if err := ds.docs.Create(ctx, collection, doc.ID, doc); err != nil {
		return tid.Empty, err
	}
	ds.noteCollection(collection)
	return id, nil
}

// LoadOrNilByKey resolves the newest non-masked version of keyString
// visible from loadFrom, honoring the revision cutoff, the dataset
// lookup list, and every dataset's imports cutoff.
func (ds *TemporalDataSource) LoadOrNilByKey(ctx context.Context, collection, keyString string, loadFrom tid.TemporalId) (*record.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, skerr.Wrapf(err, "Canceled")
	}

	var lookupList map[tid.TemporalId]bool
	var cutoffByDataset map[tid.TemporalId]tid.TemporalId
	var importsOfCutoffDataset map[tid.TemporalId]map[tid.TemporalId]bool

	if ds.cfg.NonTemporal {
		lookupList = map[tid.TemporalId]bool{loadFrom: true}
		cutoffByDataset = nil
		importsOfCutoffDataset = nil
	} else {
		var err error
		lookupList, err = ds.resolveLookupList(ctx, loadFrom)
		if err != nil {
			return nil, err
		}
		cutoffByDataset, importsOfCutoffDataset, err = ds.collectImportsCutoffs(ctx, lookupList)
		if err != nil {
			return nil, err
		}
	}

	docs, err := ds.docs.IterByKey(ctx, collection, keyString)
	if err != nil {
		return nil, err
	}

	winner := ds.pickWinner(docs, lookupList, cutoffByDataset, importsOfCutoffDataset)
	if winner == nil {
		return nil, nil
	}
	if winner.Tag == record.DeleteMarkerTag {
		return nil, nil
	}
	return ds.decodeEnvelope(winner)
}

// pickWinner implements the ordering discipline over docs,
// which must already be sorted by id descending (as
// CollectionStore.IterByKey guarantees): the first doc that is not
// excluded by the revision cutoff, lookup-list membership, or an
// imports cutoff is the winner.
func (ds *TemporalDataSource) pickWinner(
	docs []*storedoc.Doc,
	lookupList map[tid.TemporalId]bool,
	cutoffByDataset map[tid.TemporalId]tid.TemporalId,
	importsOfCutoffDataset map[tid.TemporalId]map[tid.TemporalId]bool,
) *storedoc.Doc {
	for _, d := range docs {
		rID, err := tid.Parse(d.ID)
		if err != nil {
			continue
		}
		if ds.revisionCutoff != nil && !rID.Before(*ds.revisionCutoff) {
			continue
		}
		rDataset, err := tid.Parse(d.Dataset)
		if err != nil {
			continue
		}
		if !lookupList[rDataset] {
			continue
		}
		if ds.excludedByImportsCutoff(rID, rDataset, cutoffByDataset, importsOfCutoffDataset) {
			continue
		}
		return d
	}
	return nil
}

// excludedByImportsCutoff reports whether r (with dataset rDataset, id
// rID) is hidden because some dataset d in the lookup list has an
// imports cutoff that applies to rDataset as one of d's imports.
// This never applies when rDataset == d: a
// dataset's own cutoff freezes the *other* datasets it reaches, never
// records written inside itself.
func (ds *TemporalDataSource) excludedByImportsCutoff(
	rID, rDataset tid.TemporalId,
	cutoffByDataset map[tid.TemporalId]tid.TemporalId,
	importsOfCutoffDataset map[tid.TemporalId]map[tid.TemporalId]bool,
) bool {
	for d, cutoff := range cutoffByDataset {
		if d == rDataset {
			continue
		}
		if importsOfCutoffDataset[d][rDataset] && !rID.Before(cutoff) {
			return true
		}
	}
	return false
}

// resolveLookupList builds dsID's lookup list, consulting the index
// mirror first (when configured) to seed the in-memory cache and save a
// dataset-graph walk, then writing the result back to the index so the
// next process to open this same backing store gets the same warm
// start. The in-memory cache is always authoritative once populated;
// the index is purely a cross-process seed.
func (ds *TemporalDataSource) resolveLookupList(ctx context.Context, dsID tid.TemporalId) (map[tid.TemporalId]bool, error) {
	if ds.index != nil && !dsID.IsEmpty() {
		if memberStrs, found, err := ds.index.LookupImportSet(ctx, dsID.String()); err == nil && found {
			members := make(map[tid.TemporalId]bool, len(memberStrs))
			allParsed := true
			for _, s := range memberStrs {
				id, err := tid.Parse(s)
				if err != nil {
					allParsed = false
					break
				}
				members[id] = true
			}
			if allParsed {
				ds.cache.SeedImportSet(dsID, members)
			}
		}
	}

	lookupList, err := dataset.BuildLookupList(ds.cache, ds, dsID)
	if err != nil {
		return nil, err
	}

	if ds.index != nil && !dsID.IsEmpty() {
		members := make([]string, 0, len(lookupList))
		for id := range lookupList {
			members = append(members, id.String())
		}
		if err := ds.index.PutImportSet(ctx, dsID.String(), members); err != nil {
			sklog.Warningf("datasource: failed to mirror import set for dataset %s: %v", dsID, err)
		}
	}
	return lookupList, nil
}

// collectImportsCutoffs loads the DataSetDetail for every dataset in
// lookupList that has one, and for each such dataset with a set
// ImportsCutoffTime, its import set (lookup list minus itself).
func (ds *TemporalDataSource) collectImportsCutoffs(ctx context.Context, lookupList map[tid.TemporalId]bool) (map[tid.TemporalId]tid.TemporalId, map[tid.TemporalId]map[tid.TemporalId]bool, error) {
	cutoffByDataset := map[tid.TemporalId]tid.TemporalId{}
	importsOf := map[tid.TemporalId]map[tid.TemporalId]bool{}
	for d := range lookupList {
		detail, err := ds.loadDetail(ctx, d)
		if err != nil {
			return nil, nil, err
		}
		if detail == nil || detail.ImportsCutoffTime == nil {
			continue
		}
		cutoffByDataset[d] = *detail.ImportsCutoffTime
		imports, err := ds.resolveLookupList(ctx, d)
		if err != nil {
			return nil, nil, err
		}
		delete(imports, d)
		importsOf[d] = imports
	}
	return cutoffByDataset, importsOf, nil
}

func (ds *TemporalDataSource) loadDetail(ctx context.Context, datasetID tid.TemporalId) (*dataset.Detail, error) {
	docs, err := ds.docs.IterByKey(ctx, DataSetDetailCollection, datasetID.String())
	if err != nil {
		return nil, err
	}
	winner := ds.pickWinner(docs, map[tid.TemporalId]bool{tid.Empty: true}, nil, nil)
	if winner == nil || winner.Tag == record.DeleteMarkerTag {
		return nil, nil
	}
	env, err := ds.decodeEnvelope(winner)
	if err != nil {
		return nil, err
	}
	detail, ok := env.Payload.(*dataset.Detail)
	if !ok {
		return nil, skerr.Fmt("WrongType: record for dataset %s is not a DataSetDetail", datasetID)
	}
	return detail, nil
}

// LoadOrNilByID returns the record with exactly this id, without
// applying lookup-list, revision, or imports-cutoff visibility rules.
func (ds *TemporalDataSource) LoadOrNilByID(ctx context.Context, collection string, id tid.TemporalId) (*record.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, skerr.Wrapf(err, "Canceled")
	}
	doc, err := ds.docs.GetByID(ctx, collection, id.String())
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	if doc.Tag == record.DeleteMarkerTag {
		return nil, nil
	}
	return ds.decodeEnvelope(doc)
}

func (ds *TemporalDataSource) decodeEnvelope(doc *storedoc.Doc) (*record.Envelope, error) {
	id, err := tid.Parse(doc.ID)
	if err != nil {
		return nil, skerr.Wrapf(err, "BadFormat: stored document id %q", doc.ID)
	}
	datasetID, err := tid.Parse(doc.Dataset)
	if err != nil {
		return nil, skerr.Wrapf(err, "BadFormat: stored document dataset %q", doc.Dataset)
	}
	payload, err := record.Decode(doc.Tag, doc.Body)
	if err != nil {
		return nil, err
	}
	return &record.Envelope{ID: id, Dataset: datasetID, Key: doc.Key, Tag: doc.Tag, Payload: payload}, nil
}

// Query evaluates q against every distinct key's winning record in
// collection (by the same visibility rules as LoadOrNilByKey), returning
// at most one envelope per key. q's filter is never itself allowed to
// reference the temporal visibility fields (_id/_dataset cutoffs) — that
// filtering is always applied first and is not expressible through
// query.Expr. Records whose Payload does not
// implement record.Queryable never match a filter naming one of their
// fields. Results are sorted per q.Order, defaulting to ascending by id.
func (ds *TemporalDataSource) Query(ctx context.Context, collection string, loadFrom tid.TemporalId, q query.Query) ([]*record.Envelope, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	all, err := ds.docs.IterAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	byKey := map[string][]*storedoc.Doc{}
	for _, d := range all {
		byKey[d.Key] = append(byKey[d.Key], d)
	}
	for _, docs := range byKey {
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID > docs[j].ID })
	}

	var lookupList map[tid.TemporalId]bool
	var cutoffByDataset map[tid.TemporalId]tid.TemporalId
	var importsOf map[tid.TemporalId]map[tid.TemporalId]bool
	if ds.cfg.NonTemporal {
		lookupList = map[tid.TemporalId]bool{loadFrom: true}
	} else {
		lookupList, err = ds.resolveLookupList(ctx, loadFrom)
		if err != nil {
			return nil, err
		}
		cutoffByDataset, importsOf, err = ds.collectImportsCutoffs(ctx, lookupList)
		if err != nil {
			return nil, err
		}
	}

	var out []*record.Envelope
	for _, docs := range byKey {
		winner := ds.pickWinner(docs, lookupList, cutoffByDataset, importsOf)
		if winner == nil || winner.Tag == record.DeleteMarkerTag {
			continue
		}
		env, err := ds.decodeEnvelope(winner)
		if err != nil {
			return nil, err
		}
		if queryableMatches(q.Filter, env) {
			out = append(out, env)
		}
	}
	ascending := q.Order == nil || q.Order.Direction == query.Ascending
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].ID.Before(out[j].ID)
		}
		return out[i].ID.After(out[j].ID)
	})
	return out, nil
}

func queryableMatches(filter query.Expr, env *record.Envelope) bool {
	lookup := func(name string) (interface{}, bool) {
		q, ok := env.Payload.(record.Queryable)
		if !ok {
			return nil, false
		}
		return q.QueryField(name)
	}
	return query.Match(filter, lookup)
}

// CreateDataSet saves a new DataSet record and updates the cache.
func (ds *TemporalDataSource) CreateDataSet(ctx context.Context, name string, parents []tid.TemporalId, saveTo tid.TemporalId) (tid.TemporalId, error) {
	d := &dataset.DataSet{Name: name, Parents: parents}
	return ds.Save(ctx, DataSetCollection, d, name, saveTo)
}

// CreateCommon is shorthand for CreateDataSet("Common", nil, Empty).
func (ds *TemporalDataSource) CreateCommon(ctx context.Context) (tid.TemporalId, error) {
	return ds.CreateDataSet(ctx, dataset.CommonName, nil, tid.Empty)
}

// GetDataSetOrEmpty resolves name as seen from scope, returning Empty
// (not an error) if it does not exist.
func (ds *TemporalDataSource) GetDataSetOrEmpty(ctx context.Context, scope tid.TemporalId, name string) (tid.TemporalId, error) {
	return dataset.GetDataSetOrEmpty(ds.cache, ds, scope, name)
}

// GetDataSet resolves name as seen from scope, failing DataSetNotFound
// if it does not exist.
func (ds *TemporalDataSource) GetDataSet(ctx context.Context, scope tid.TemporalId, name string) (tid.TemporalId, error) {
	return dataset.GetDataSet(ds.cache, ds, scope, name)
}

// ClearDatasetCache drops the in-memory dataset cache and, if an
// IndexStore is configured, its cross-process mirror too, so that a
// caller that depends on observing a dataset change made by another
// process (no background invalidation exists) can force a fresh
// resolution on the next lookup.
func (ds *TemporalDataSource) ClearDatasetCache(ctx context.Context) error {
	ds.cache.Clear()
	if ds.index != nil {
		return ds.index.ClearDatasetCache(ctx)
	}
	return nil
}

// DropDb deletes every document in every collection this data source is
// aware of having written to (the two dataset collections plus whatever
// application collections Save/Delete have touched this process). It is
// the store's one unconditionally destructive operation and exists for
// the test-lifecycle dispose path (go/context) and the CLI; it is never
// called from ordinary read/write code paths.
func (ds *TemporalDataSource) DropDb(ctx context.Context) error {
	type dropper interface {
		DeleteCollection(ctx context.Context, collection string) error
	}
	dc, ok := ds.docs.(dropper)
	if !ok {
		return skerr.Fmt("data source's CollectionStore does not support dropping collections")
	}

	ds.collectionsMu.Lock()
	collections := make([]string, 0, len(ds.collections)+2)
	for c := range ds.collections {
		collections = append(collections, c)
	}
	ds.collectionsMu.Unlock()
	collections = append(collections, DataSetCollection, DataSetDetailCollection)

	seen := map[string]bool{}
	for _, collection := range collections {
		if seen[collection] {
			continue
		}
		seen[collection] = true
		if err := dc.DeleteCollection(ctx, collection); err != nil {
			return err
		}
	}
	return ds.ClearDatasetCache(ctx)
}

// --- dataset.Loader implementation: resolves DataSet records through
// the DataSet collection so dataset.BuildLookupList / GetDataSet can
// share the same visibility machinery as ordinary record reads. ---

func (ds *TemporalDataSource) LoadDataSetByName(scope tid.TemporalId, name string) (*dataset.LoadedDataSet, error) {
	ctx := context.Background()
	if ds.index != nil {
		if idStr, found, err := ds.index.LookupName(ctx, scope.String(), name); err == nil && found {
			if id, err := tid.Parse(idStr); err == nil {
				if loaded, err := ds.loadDataSetByIDInner(ctx, id); err == nil && loaded != nil {
					return loaded, nil
				}
			}
		}
	}
	env, err := ds.LoadOrNilByKey(ctx, DataSetCollection, name, scope)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, nil
	}
	d, ok := env.Payload.(*dataset.DataSet)
	if !ok {
		return nil, skerr.Fmt("WrongType: record for dataset %q is not a DataSet", name)
	}
	if ds.index != nil {
		if err := ds.index.PutName(ctx, scope.String(), name, env.ID.String()); err != nil {
			sklog.Warningf("datasource: failed to mirror dataset name index for %q: %v", name, err)
		}
	}
	return &dataset.LoadedDataSet{ID: env.ID, OwnDataset: env.Dataset, Data: *d}, nil
}

func (ds *TemporalDataSource) LoadDataSetByID(id tid.TemporalId) (*dataset.LoadedDataSet, error) {
	return ds.loadDataSetByIDInner(context.Background(), id)
}

func (ds *TemporalDataSource) loadDataSetByIDInner(ctx context.Context, id tid.TemporalId) (*dataset.LoadedDataSet, error) {
	env, err := ds.LoadOrNilByID(ctx, DataSetCollection, id)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, nil
	}
	d, ok := env.Payload.(*dataset.DataSet)
	if !ok {
		return nil, skerr.Fmt("WrongType: record %s is not a DataSet", id)
	}
	return &dataset.LoadedDataSet{ID: env.ID, OwnDataset: env.Dataset, Data: *d}, nil
}

var _ DataSource = (*TemporalDataSource)(nil)
var _ dataset.Loader = (*TemporalDataSource)(nil)
