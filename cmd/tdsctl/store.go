package main

import (
	"context"
	"time"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/config"
	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
	"github.com/datacentricorg/datacentric-sub004/internal/dsindex"
	"github.com/datacentricorg/datacentric-sub004/internal/storedoc"
)

// storeConfig is the JSON5 document every verb that opens a data source
// points --config at: the backing Firestore/Datastore coordinates plus
// the fields of the DataSource record itself.
type storeConfig struct {
	Project         string          `json:"project"`
	Database        string          `json:"database"`
	ReadOnly        bool            `json:"read_only"`
	RevisedBefore   *time.Time      `json:"revised_before"`
	RevisedBeforeID *tid.TemporalId `json:"revised_before_id"`
	NonTemporal     bool            `json:"non_temporal"`
}

// configFlag is shared by every verb that opens a data source.
var configFlag = &cli.StringFlag{
	Name:     "config",
	Usage:    "path to a JSON5 store configuration file",
	Required: true,
}

func loadStoreConfig(path string) (storeConfig, error) {
	var cfg storeConfig
	if err := config.ParseConfigFile(path, "config", &cfg); err != nil {
		return storeConfig{}, err
	}
	if cfg.Project == "" {
		return storeConfig{}, skerr.Fmt("BadFormat: config %q is missing \"project\"", path)
	}
	return cfg, nil
}

// openDataSource opens the Firestore/Datastore-backed engine described
// by cfg, returned as the abstract DataSource interface so every verb
// below is testable against a fake without a concrete engine or an
// emulator. The returned close func releases both backing clients and
// should be deferred by the caller.
func openDataSource(ctx context.Context, cfg storeConfig) (datasource.DataSource, func(), error) {
	docs, err := storedoc.NewClient(ctx, cfg.Project, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	index, err := dsindex.NewClient(ctx, cfg.Project)
	if err != nil {
		_ = docs.Close()
		return nil, nil, err
	}
	ds, err := datasource.New(docs, index, datasource.Config{
		ReadOnly:        cfg.ReadOnly,
		RevisedBefore:   cfg.RevisedBefore,
		RevisedBeforeID: cfg.RevisedBeforeID,
		NonTemporal:     cfg.NonTemporal,
	})
	if err != nil {
		_ = docs.Close()
		_ = index.Close()
		return nil, nil, err
	}
	closeFn := func() {
		_ = docs.Close()
		_ = index.Close()
	}
	return ds, closeFn, nil
}

// resolveDatasetRef accepts either an already-encoded TemporalId hex
// string or a dataset name (resolved as seen from the root scope), so
// every verb's --dataset/--parent flags accept whichever form an
// operator has on hand. An empty ref resolves to the root dataset.
func resolveDatasetRef(ctx context.Context, ds datasource.DataSource, ref string) (tid.TemporalId, error) {
	if ref == "" {
		return tid.Empty, nil
	}
	if id, err := tid.Parse(ref); err == nil {
		return id, nil
	}
	return ds.GetDataSet(ctx, tid.Empty, ref)
}
