// Package storedoc is the physical document read/write layer backing
// TemporalDataSource: one Firestore collection per root record class,
// documents shaped { _id, _key, _dataset, _t, ...payload }. Writes are
// always Create (never Set/Update), matching the append-only save
// contract: no two TemporalIds are ever equal, so a Create collision can
// only mean a programmer error, never a legitimate overwrite.
package storedoc

import (
	"context"
	"crypto/rand"
	"math/big"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/sklog"
)

// Doc is the wire shape of one stored record: the envelope fields plus
// its opaque payload body, already JSON-shaped by the caller (typically
// record.Envelope's Payload marshaled by the caller before Create, and
// unmarshaled by the caller after GetByID, IterByKey or IterAll).
type Doc struct {
	ID      string `firestore:"_id"`
	Key     string `firestore:"_key"`
	Dataset string `firestore:"_dataset"`
	Tag     string `firestore:"_t"`
	Body    []byte `firestore:"_body"`
}

// Client wraps a Firestore client with retry-on-transient conventions
// (withTimeout / withTimeoutAndRetries) layered on top: the core data
// source itself never retries, but this layer, directly beneath it,
// retries idempotent reads and single-document Creates against the
// document store's own transient failures.
type Client struct {
	fs          *firestore.Client
	maxAttempts int
	timeout     time.Duration
}

// NewClient opens a Client against the given Firestore project/database.
func NewClient(ctx context.Context, project, database string) (*Client, error) {
	fs, err := firestore.NewClientWithDatabase(ctx, project, database)
	if err != nil {
		return nil, skerr.Wrapf(err, "Unavailable: opening firestore client for project %q database %q", project, database)
	}
	return &Client{fs: fs, maxAttempts: 3, timeout: 30 * time.Second}, nil
}

// NewClientForTesting opens a Client against the Firestore emulator,
// and returns a cleanup func that deletes every document in collection.
func NewClientForTesting(ctx context.Context, project, database, collection string) (*Client, func(), error) {
	c, err := NewClient(ctx, project, database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = c.DeleteCollection(context.Background(), collection)
	}
	return c, cleanup, nil
}

// Close releases the underlying Firestore client.
func (c *Client) Close() error {
	return c.fs.Close()
}

// Collection returns the CollectionRef for a root record class's
// physical collection.
func (c *Client) Collection(name string) *firestore.CollectionRef {
	return c.fs.Collection(name)
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AlphaNumID returns a 24-character random alphanumeric string, used for
// Firestore document names where the caller does not already have a
// natural id (e.g. CLI-side scratch documents); stored records use their
// TemporalId hex string as the document name instead.
func AlphaNumID() string {
	out := make([]byte, 24)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			panic(err)
		}
		out[i] = idAlphabet[n.Int64()]
	}
	return string(out)
}

// isRetryable reports whether err is a transient Firestore failure
// (resource exhaustion, unavailability) that retrying may resolve,
// versus a permanent failure (not-found, invalid-argument) that retrying
// would only repeat.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		return true
	default:
		return false
	}
}

func withTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// withRetries calls fn up to maxAttempts times, retrying only when the
// failure is isRetryable; it never retries after a successful call and
// never retries a non-transient error.
func withRetries(ctx context.Context, maxAttempts int, timeout time.Duration, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return skerr.Wrapf(ctx.Err(), "Canceled")
		}
		lastErr = withTimeout(ctx, timeout, fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		sklog.Warningf("storedoc: retrying after transient error (attempt %d/%d): %v", attempt+1, maxAttempts, lastErr)
	}
	return lastErr
}

// Create writes doc as a brand-new document named docID. It fails
// (without retry-masking a real conflict) if a document with that name
// already exists — under the monotonic id invariant this should never
// happen for a legitimately generated TemporalId; a collision here
// indicates a programming error upstream, not a transient condition.
func (c *Client) Create(ctx context.Context, collection, docID string, doc *Doc) error {
	ref := c.fs.Collection(collection).Doc(docID)
	err := withRetries(ctx, c.maxAttempts, c.timeout, func(ctx context.Context) error {
		_, err := ref.Create(ctx, doc)
		return err
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return skerr.Wrapf(err, "document %s/%s already exists; TemporalId collision", collection, docID)
		}
		return skerr.Wrapf(err, "Unavailable: creating document %s/%s", collection, docID)
	}
	return nil
}

// GetByID loads the single document named docID, returning (nil, nil) if
// it does not exist.
func (c *Client) GetByID(ctx context.Context, collection, docID string) (*Doc, error) {
	ref := c.fs.Collection(collection).Doc(docID)
	var snap *firestore.DocumentSnapshot
	err := withRetries(ctx, c.maxAttempts, c.timeout, func(ctx context.Context) error {
		var getErr error
		snap, getErr = ref.Get(ctx)
		return getErr
	})
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, skerr.Wrapf(err, "Unavailable: getting document %s/%s", collection, docID)
	}
	var doc Doc
	if err := snap.DataTo(&doc); err != nil {
		return nil, skerr.Wrapf(err, "WrongType: decoding document %s/%s", collection, docID)
	}
	return &doc, nil
}

// IterByKey loads every document in collection whose _key field equals
// keyString, across every _dataset (the caller applies dataset
// visibility/cutoff filtering itself), sorted by _id descending so the
// caller's first qualifying match is the newest version. This relies on
// the collection's { _key, _dataset, _id desc } index; Firestore does
// not expose that composite ordering across the _dataset-spanning query
// this method issues, so results are sorted in-process after retrieval.
func (c *Client) IterByKey(ctx context.Context, collection, keyString string) ([]*Doc, error) {
	q := c.fs.Collection(collection).Where("_key", "==", keyString)
	var docs []*Doc
	err := withRetries(ctx, c.maxAttempts, c.timeout, func(ctx context.Context) error {
		docs = docs[:0]
		iter := q.Documents(ctx)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				return nil
			}
			if err != nil {
				return err
			}
			var doc Doc
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
			docs = append(docs, &doc)
		}
	})
	if err != nil {
		return nil, skerr.Wrapf(err, "Unavailable: querying documents in %q by key %q", collection, keyString)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID > docs[j].ID })
	return docs, nil
}

// IterAll loads every document in collection, across every key and
// dataset. Used by the query path, which must consider every distinct
// key before applying visibility rules per key.
func (c *Client) IterAll(ctx context.Context, collection string) ([]*Doc, error) {
	var docs []*Doc
	err := withRetries(ctx, c.maxAttempts, c.timeout, func(ctx context.Context) error {
		docs = docs[:0]
		iter := c.fs.Collection(collection).Documents(ctx)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				return nil
			}
			if err != nil {
				return err
			}
			var doc Doc
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
			docs = append(docs, &doc)
		}
	})
	if err != nil {
		return nil, skerr.Wrapf(err, "Unavailable: scanning all documents in %q", collection)
	}
	return docs, nil
}

// DeleteCollection removes every document in collection, batching
// deletes at Firestore's ~500-write limit per commit. Used only by test
// fixtures (Context's "drop the test database" dispose path) and
// NewClientForTesting's cleanup — production code never deletes
// documents outright, only appends DeleteMarker tombstones.
func (c *Client) DeleteCollection(ctx context.Context, collection string) error {
	const batchSize = 500
	coll := c.fs.Collection(collection)
	for {
		iter := coll.Limit(batchSize).Documents(ctx)
		batch := c.fs.Batch()
		n := 0
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return skerr.Wrapf(err, "Unavailable: listing documents in %q for deletion", collection)
			}
			batch.Delete(snap.Ref)
			n++
		}
		iter.Stop()
		if n == 0 {
			return nil
		}
		if _, err := batch.Commit(ctx); err != nil {
			return skerr.Wrapf(err, "Unavailable: deleting a batch of documents in %q", collection)
		}
	}
}
