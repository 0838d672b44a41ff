// Package context implements the ambient collaborator business logic and
// record Init hooks are handed: one data source, one "current" dataset
// id, a log, and a verify sink. It is a thin façade over go/datasource —
// every method here ultimately calls through to a DataSource method of
// the same shape, adding two things a raw DataSource does not do on its
// own: defaulting the ambient DataSet when a caller does not name one
// explicitly, and invoking Init on any payload that implements Initable
// immediately after it is decoded from storage or immediately before it
// is saved.
package context

import (
	stdcontext "context"
	"sync"
	"testing"

	"github.com/datacentricorg/datacentric-sub004/go/cleanup"
	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/query"
	"github.com/datacentricorg/datacentric-sub004/go/record"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/sklog"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
)

// Initable is implemented by record payloads that need to cache derived
// state the first time they see the Context they were loaded or are
// about to be saved under. Init must not mutate ctx, and must not retain
// a pointer back into it beyond whatever it caches; it is idempotent and
// may be called again later with a different Context.
type Initable interface {
	record.Payload
	Init(ctx *Context) error
}

// Logger is the logging facade threaded through Context. It forwards to
// go/sklog; record Init methods and business logic hold onto a *Context
// rather than importing go/sklog directly, so a future per-request
// logger can be substituted here without touching every call site.
type Logger struct{}

func (Logger) Infof(format string, args ...interface{})    { sklog.Infof(format, args...) }
func (Logger) Warningf(format string, args ...interface{}) { sklog.Warningf(format, args...) }
func (Logger) Errorf(format string, args ...interface{})   { sklog.Errorf(format, args...) }

// Verify is the assertion sink a Context carries. Business logic and
// record Init methods that want to assert an invariant call through
// Verify rather than panicking: under a test Context the failure is
// reported to the *testing.T; under a production Context it is logged.
type Verify interface {
	// IsTrue records a failure, formatted like Errorf, if cond is false.
	IsTrue(cond bool, format string, args ...interface{})
	// Fail unconditionally records a failure.
	Fail(format string, args ...interface{})
}

type logVerify struct{}

func (logVerify) IsTrue(cond bool, format string, args ...interface{}) {
	if !cond {
		sklog.Errorf(format, args...)
	}
}

func (logVerify) Fail(format string, args ...interface{}) {
	sklog.Errorf(format, args...)
}

type testingVerify struct{ t testing.TB }

func (v testingVerify) IsTrue(cond bool, format string, args ...interface{}) {
	v.t.Helper()
	if !cond {
		v.t.Errorf(format, args...)
	}
}

func (v testingVerify) Fail(format string, args ...interface{}) {
	v.t.Helper()
	v.t.Errorf(format, args...)
}

// Context is the ambient object threaded through business logic: the
// data source records are saved to and loaded from, the dataset they are
// saved to and read from when a caller does not name one explicitly, a
// Logger, and a Verify sink. Context carries no back-pointer to any
// record; the relationship is the other way around, and only for the
// duration of an Init call.
type Context struct {
	DataSource datasource.DataSource
	DataSet    tid.TemporalId
	Log        Logger
	Verify     Verify

	mu           sync.Mutex
	disposed     bool
	keepTestData bool
}

// New builds a production Context rooted at dataSet, logging Verify
// failures rather than panicking or failing a test. Most callers obtain
// dataSet once at startup via DataSource.GetDataSet(Empty, "Common") or
// an equivalent.
func New(dataSource datasource.DataSource, dataSet tid.TemporalId) *Context {
	return &Context{
		DataSource: dataSource,
		DataSet:    dataSet,
		Log:        Logger{},
		Verify:     logVerify{},
	}
}

// NewTestContext builds a Context over a fresh TemporalDataSource backed
// by docs and index, with Common as its ambient DataSet, and registers a
// cleanup.AtExit hook disposing the test database unless keepTestData is
// set. Call sites gate this behind go/testutils/unittest's tier markers
// (MediumTest, RequiresFirestoreEmulator, ...) the same way they gate any
// other resource-backed test, since docs/index are typically emulator- or
// in-memory-backed fakes supplied by the caller.
func NewTestContext(t testing.TB, docs datasource.CollectionStore, index datasource.IndexStore, keepTestData bool) *Context {
	t.Helper()
	ds, err := datasource.New(docs, index, datasource.Config{})
	if err != nil {
		t.Fatalf("context: building test data source: %v", err)
	}
	common, err := ds.CreateCommon(stdcontext.Background())
	if err != nil {
		t.Fatalf("context: creating Common dataset: %v", err)
	}
	ctx := &Context{
		DataSource:   ds,
		DataSet:      common,
		Log:          Logger{},
		Verify:       testingVerify{t: t},
		keepTestData: keepTestData,
	}
	cleanup.AtExit(ctx.Dispose)
	t.Cleanup(ctx.Dispose)
	return ctx
}

// Dispose ends this Context's test lifecycle: unless it was built with
// keepTestData, the underlying data source's test database is dropped.
// Safe to call more than once; only the first call has an effect. A
// Context built with New rather than NewTestContext has nothing to
// dispose and Dispose is a no-op for it.
func (c *Context) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.keepTestData || c.DataSource == nil {
		c.disposed = true
		return
	}
	c.disposed = true
	if err := c.DataSource.DropDb(stdcontext.Background()); err != nil {
		sklog.Warningf("context: dropping test database: %v", err)
	}
}

func (c *Context) maybeInit(payload record.Payload) error {
	if initable, ok := payload.(Initable); ok {
		if err := initable.Init(c); err != nil {
			return skerr.Wrapf(err, "initializing %s record", payload.ClassTag())
		}
	}
	return nil
}

// Save calls Init on payload, then saves it into saveTo under the
// collection named by payload's own class tag. saveTo is never defaulted
// here: Empty is a meaningful dataset (the root), so "use the ambient
// dataset" is a distinct operation from "save to root" — see
// SaveToCurrentDataSet.
func (c *Context) Save(goCtx stdcontext.Context, payload record.Payload, keyString string, saveTo tid.TemporalId) (tid.TemporalId, error) {
	if err := c.maybeInit(payload); err != nil {
		return tid.Empty, err
	}
	return c.DataSource.Save(goCtx, payload.ClassTag(), payload, keyString, saveTo)
}

// SaveToCurrentDataSet is Save with saveTo fixed to c.DataSet, for the
// common case of business logic that always writes into the ambient
// dataset it was handed at construction.
func (c *Context) SaveToCurrentDataSet(goCtx stdcontext.Context, payload record.Payload, keyString string) (tid.TemporalId, error) {
	return c.Save(goCtx, payload, keyString, c.DataSet)
}

// Delete writes a tombstone for keyString in deleteIn.
func (c *Context) Delete(goCtx stdcontext.Context, collection, keyString string, deleteIn tid.TemporalId) (tid.TemporalId, error) {
	return c.DataSource.Delete(goCtx, collection, keyString, deleteIn)
}

// DeleteFromCurrentDataSet is Delete with deleteIn fixed to c.DataSet.
func (c *Context) DeleteFromCurrentDataSet(goCtx stdcontext.Context, collection, keyString string) (tid.TemporalId, error) {
	return c.Delete(goCtx, collection, keyString, c.DataSet)
}

// LoadOrNilByKey resolves keyString as visible from loadFrom, calling
// Init on the decoded payload, if any, before returning it.
func (c *Context) LoadOrNilByKey(goCtx stdcontext.Context, collection, keyString string, loadFrom tid.TemporalId) (*record.Envelope, error) {
	env, err := c.DataSource.LoadOrNilByKey(goCtx, collection, keyString, loadFrom)
	if err != nil || env == nil || env.Payload == nil {
		return env, err
	}
	if err := c.maybeInit(env.Payload); err != nil {
		return nil, err
	}
	return env, nil
}

// LoadOrNilByKeyInCurrentDataSet is LoadOrNilByKey with loadFrom fixed
// to c.DataSet.
func (c *Context) LoadOrNilByKeyInCurrentDataSet(goCtx stdcontext.Context, collection, keyString string) (*record.Envelope, error) {
	return c.LoadOrNilByKey(goCtx, collection, keyString, c.DataSet)
}

// LoadOrNilByID loads the record with the given id verbatim, with no
// visibility filtering, calling Init on the decoded payload, if any.
func (c *Context) LoadOrNilByID(goCtx stdcontext.Context, collection string, id tid.TemporalId) (*record.Envelope, error) {
	env, err := c.DataSource.LoadOrNilByID(goCtx, collection, id)
	if err != nil || env == nil || env.Payload == nil {
		return env, err
	}
	if err := c.maybeInit(env.Payload); err != nil {
		return nil, err
	}
	return env, nil
}

// Query runs q against collection as seen from loadFrom, calling Init on
// every returned payload.
func (c *Context) Query(goCtx stdcontext.Context, collection string, loadFrom tid.TemporalId, q query.Query) ([]*record.Envelope, error) {
	envs, err := c.DataSource.Query(goCtx, collection, loadFrom, q)
	if err != nil {
		return nil, err
	}
	for _, env := range envs {
		if env.Payload != nil {
			if err := c.maybeInit(env.Payload); err != nil {
				return nil, err
			}
		}
	}
	return envs, nil
}

// QueryCurrentDataSet is Query with loadFrom fixed to c.DataSet.
func (c *Context) QueryCurrentDataSet(goCtx stdcontext.Context, collection string, q query.Query) ([]*record.Envelope, error) {
	return c.Query(goCtx, collection, c.DataSet, q)
}

// GetDataSetOrEmpty resolves name as seen from scope, returning Empty
// rather than an error if no such dataset is visible.
func (c *Context) GetDataSetOrEmpty(goCtx stdcontext.Context, scope tid.TemporalId, name string) (tid.TemporalId, error) {
	return c.DataSource.GetDataSetOrEmpty(goCtx, scope, name)
}

// ClearDatasetCache drops the dataset cache (and its cross-process
// mirror, if configured). There is no background invalidation: a caller
// that depends on observing a dataset change made by another process
// must call this explicitly before its next lookup.
func (c *Context) ClearDatasetCache(goCtx stdcontext.Context) error {
	return c.DataSource.ClearDatasetCache(goCtx)
}
