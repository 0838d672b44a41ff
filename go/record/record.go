// Package record implements the store's Record model: a tuple of an
// assigned TemporalId, an owning dataset id, a canonical key string, an
// opaque payload, and a class_tag used to dispatch polymorphic decoding.
// Record classes are registered once, at process start, into a
// process-wide registry that is immutable thereafter — records never
// carry back-pointers to a Context or DataSource; every operation that
// needs one takes it as a parameter.
package record

import (
	"fmt"
	"sync"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
)

// Payload is implemented by every concrete record type. ClassTag
// identifies the concrete type on the wire so Decode can dispatch to the
// right factory; KeyString returns this record's canonical key encoding.
type Payload interface {
	ClassTag() string
	KeyString() string
}

// Queryable is implemented by record types that want to participate in
// go/query filter evaluation. A type that does not implement it can
// still be saved and loaded by key/id; it simply never matches a query
// predicate naming one of its fields.
type Queryable interface {
	Payload
	QueryField(name string) (value interface{}, ok bool)
}

// RootDatasetOnly is implemented by record kinds that may only ever be
// saved into the Empty (root) dataset. In this module dataset.DataSet is
// the only type that implements it.
type RootDatasetOnly interface {
	Payload
	rootDatasetOnly()
}

// Envelope is a Record as stored: the assigned id, the dataset it was
// saved into, its canonical key, its class tag, and the decoded payload.
// A tombstone Envelope has Payload == nil and Tag == DeleteMarkerTag.
type Envelope struct {
	ID      tid.TemporalId
	Dataset tid.TemporalId
	Key     string
	Tag     string
	Payload Payload
}

// DeleteMarkerTag is the class_tag written for tombstone records. It
// never appears in the type registry: a tombstone is recognized by its
// tag alone (see IsDeleteMarker).
const DeleteMarkerTag = "DeleteMarker"

// IsDeleteMarker reports whether e is a tombstone: the newest such
// envelope for a (key, dataset) pair masks every older version of that
// key in that dataset and its descendants.
func (e Envelope) IsDeleteMarker() bool {
	return e.Tag == DeleteMarkerTag
}

// NewDeleteMarker builds the envelope delete(key, datasetID) writes: no
// payload, no existence check against prior versions.
func NewDeleteMarker(id tid.TemporalId, datasetID tid.TemporalId, keyString string) Envelope {
	return Envelope{ID: id, Dataset: datasetID, Key: keyString, Tag: DeleteMarkerTag}
}

// Factory decodes a raw document body (already separated from its
// envelope fields) into a concrete Payload.
type Factory func(body []byte) (Payload, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
	sealed     bool
)

// Register binds classTag to factory in the process-wide registry.
// Register is normally called during program initialization (typically
// from an init func), but nothing stops a later call until Seal has run;
// after Seal it panics. It also panics on a duplicate classTag.
func Register(classTag string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if sealed {
		panic(fmt.Sprintf("record: cannot register class %q after the registry has been sealed", classTag))
	}
	if _, exists := registry[classTag]; exists {
		panic(fmt.Sprintf("record: class %q already registered", classTag))
	}
	registry[classTag] = factory
}

// Seal freezes the registry. Callers invoke it once, after all init
// funcs have registered their classes and before any DataSource begins
// serving reads, so that decode dispatch is provably stable for the rest
// of the process's lifetime.
func Seal() {
	registryMu.Lock()
	defer registryMu.Unlock()
	sealed = true
}

// Decode looks up classTag in the registry and invokes its factory on
// body. It fails with WrongType if classTag was never registered.
func Decode(classTag string, body []byte) (Payload, error) {
	registryMu.RLock()
	factory, ok := registry[classTag]
	registryMu.RUnlock()
	if !ok {
		return nil, skerr.Fmt("WrongType: no record class registered for tag %q", classTag)
	}
	payload, err := factory(body)
	if err != nil {
		return nil, skerr.Wrapf(err, "WrongType: decoding class %q", classTag)
	}
	return payload, nil
}

// resetRegistryForTesting clears the registry and unseals it; it exists
// solely so package tests can register fixture classes without leaking
// state across test binaries that import record only for its types.
func resetRegistryForTesting() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = map[string]Factory{}
	sealed = false
}
