package main

import (
	"context"
	"sort"

	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/internal/storedoc"
)

// fakeCollectionStore is an in-memory datasource.CollectionStore, the
// same shape used throughout this module's other packages, so these CLI
// tests exercise the real TemporalDataSource engine without a Firestore
// emulator.
type fakeCollectionStore struct {
	byCollection map[string]map[string]*storedoc.Doc
}

func newFakeCollectionStore() *fakeCollectionStore {
	return &fakeCollectionStore{byCollection: map[string]map[string]*storedoc.Doc{}}
}

func (f *fakeCollectionStore) Create(_ context.Context, collection, docID string, doc *storedoc.Doc) error {
	coll, ok := f.byCollection[collection]
	if !ok {
		coll = map[string]*storedoc.Doc{}
		f.byCollection[collection] = coll
	}
	cp := *doc
	coll[docID] = &cp
	return nil
}

func (f *fakeCollectionStore) GetByID(_ context.Context, collection, docID string) (*storedoc.Doc, error) {
	return f.byCollection[collection][docID], nil
}

func (f *fakeCollectionStore) IterByKey(_ context.Context, collection, keyString string) ([]*storedoc.Doc, error) {
	var out []*storedoc.Doc
	for _, doc := range f.byCollection[collection] {
		if doc.Key == keyString {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeCollectionStore) IterAll(_ context.Context, collection string) ([]*storedoc.Doc, error) {
	var out []*storedoc.Doc
	for _, doc := range f.byCollection[collection] {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeCollectionStore) DeleteCollection(_ context.Context, collection string) error {
	delete(f.byCollection, collection)
	return nil
}

var _ datasource.CollectionStore = (*fakeCollectionStore)(nil)

func newFakeDataSource() datasource.DataSource {
	ds, err := datasource.New(newFakeCollectionStore(), nil, datasource.Config{})
	if err != nil {
		panic(err)
	}
	return ds
}
