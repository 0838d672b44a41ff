// Package dsindex is the dataset graph's secondary index: it keeps the
// (scope, name) → dataset-id mapping and the memoized transitive
// import-set per dataset id in Cloud Datastore, a separate backing store
// from the Firestore document collections internal/storedoc manages.
// The dataset graph is small, globally shared metadata rather than
// application records, kept separate from the per-product document
// stores the same way small global entities are split from bulk
// document storage elsewhere in this codebase.
package dsindex

import (
	"context"
	"strings"

	"cloud.google.com/go/datastore"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
)

// Kind names a Datastore entity kind: a small string-based type rather
// than bare string literals at every call site.
type Kind string

const (
	// NameIndexKind holds one entity per (scope, name) pair, resolving
	// to the dataset id visible at that scope.
	NameIndexKind Kind = "DatasetNameIndex"
	// ImportSetKind holds one entity per dataset id, the memoized,
	// comma-joined list of every id in that dataset's lookup list.
	ImportSetKind Kind = "DatasetImportSet"
)

// nameIndexEntity is the Datastore-mapped shape of a NameIndexKind
// entity.
type nameIndexEntity struct {
	Key       *datastore.Key `datastore:"__key__"`
	Scope     string
	Name      string
	DatasetID string
}

// importSetEntity is the Datastore-mapped shape of an ImportSetKind
// entity. Members is comma-joined TemporalId hex strings; Datastore has
// no native set type and the member count is always small (a dataset's
// ancestry), so a single string property is simpler than a child kind.
type importSetEntity struct {
	Key     *datastore.Key `datastore:"__key__"`
	Members string
}

// Client wraps a Cloud Datastore client scoped to the dataset index.
type Client struct {
	ds *datastore.Client
}

// NewClient opens a Client against the given Datastore project.
func NewClient(ctx context.Context, project string) (*Client, error) {
	dsClient, err := datastore.NewClient(ctx, project)
	if err != nil {
		return nil, skerr.Wrapf(err, "Unavailable: opening datastore client for project %q", project)
	}
	return &Client{ds: dsClient}, nil
}

// NewClientForTesting opens a Client against the Datastore emulator
// (DATASTORE_EMULATOR_HOST must already be set by the caller's test
// tier, see go/testutils/unittest.RequiresDatastoreEmulator) and returns
// a cleanup func that drops every entity this package created.
func NewClientForTesting(ctx context.Context, project string) (*Client, func(), error) {
	c, err := NewClient(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = c.DeleteAll(context.Background(), NameIndexKind)
		_ = c.DeleteAll(context.Background(), ImportSetKind)
	}
	return c, cleanup, nil
}

// Close releases the underlying Datastore client.
func (c *Client) Close() error {
	return c.ds.Close()
}

func nameIndexKey(scope, name string) *datastore.Key {
	return datastore.NameKey(string(NameIndexKind), scope+"\x00"+name, nil)
}

// PutName records that name resolves to datasetID when looked up from
// scope, growing the index.
func (c *Client) PutName(ctx context.Context, scope, name, datasetID string) error {
	key := nameIndexKey(scope, name)
	entity := &nameIndexEntity{Scope: scope, Name: name, DatasetID: datasetID}
	if _, err := c.ds.Put(ctx, key, entity); err != nil {
		return skerr.Wrapf(err, "Unavailable: writing dataset name index entry %q/%q", scope, name)
	}
	return nil
}

// LookupName returns the dataset id indexed for (scope, name), and
// false if no such entry exists.
func (c *Client) LookupName(ctx context.Context, scope, name string) (string, bool, error) {
	var entity nameIndexEntity
	key := nameIndexKey(scope, name)
	if err := c.ds.Get(ctx, key, &entity); err != nil {
		if err == datastore.ErrNoSuchEntity {
			return "", false, nil
		}
		return "", false, skerr.Wrapf(err, "Unavailable: reading dataset name index entry %q/%q", scope, name)
	}
	return entity.DatasetID, true, nil
}

func importSetKey(datasetID string) *datastore.Key {
	return datastore.NameKey(string(ImportSetKind), datasetID, nil)
}

// PutImportSet stores the memoized transitive lookup-list (as a set of
// TemporalId hex strings) for datasetID.
func (c *Client) PutImportSet(ctx context.Context, datasetID string, members []string) error {
	entity := &importSetEntity{Members: strings.Join(members, ",")}
	if _, err := c.ds.Put(ctx, importSetKey(datasetID), entity); err != nil {
		return skerr.Wrapf(err, "Unavailable: writing import-set memo for dataset %q", datasetID)
	}
	return nil
}

// LookupImportSet returns the memoized lookup-list for datasetID, and
// false if it has not yet been memoized.
func (c *Client) LookupImportSet(ctx context.Context, datasetID string) ([]string, bool, error) {
	var entity importSetEntity
	if err := c.ds.Get(ctx, importSetKey(datasetID), &entity); err != nil {
		if err == datastore.ErrNoSuchEntity {
			return nil, false, nil
		}
		return nil, false, skerr.Wrapf(err, "Unavailable: reading import-set memo for dataset %q", datasetID)
	}
	if entity.Members == "" {
		return []string{}, true, nil
	}
	return strings.Split(entity.Members, ","), true, nil
}

// DeleteAll removes every entity of the given kind, mirroring go/ds's
// DeleteAll(client, kind, wait) used by its own test fixtures; it is
// used here by ClearDatasetCache and by NewClientForTesting's cleanup.
func (c *Client) DeleteAll(ctx context.Context, kind Kind) error {
	q := datastore.NewQuery(string(kind)).KeysOnly()
	keys, err := c.ds.GetAll(ctx, q, nil)
	if err != nil {
		return skerr.Wrapf(err, "Unavailable: listing keys of kind %q for deletion", kind)
	}
	const batchSize = 500 // Datastore's per-call mutation limit.
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.ds.DeleteMulti(ctx, keys[i:end]); err != nil {
			return skerr.Wrapf(err, "Unavailable: deleting entities of kind %q", kind)
		}
	}
	return nil
}

// ClearDatasetCache drops every memoized index entry, the Datastore-side
// counterpart of dataset.Cache.Clear: callers that depend on observing
// dataset changes made by another process must call both.
func (c *Client) ClearDatasetCache(ctx context.Context) error {
	if err := c.DeleteAll(ctx, NameIndexKind); err != nil {
		return err
	}
	return c.DeleteAll(ctx, ImportSetKind)
}
