package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/record"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
	"github.com/datacentricorg/datacentric-sub004/go/urfavecli"
)

var extractCommand = &cli.Command{
	Name:  "extract",
	Usage: "load one record by TemporalId or by (key, dataset) and print its JSON payload",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "collection", Required: true},
		&cli.StringFlag{Name: "id", Usage: "TemporalId hex string; mutually exclusive with --key"},
		&cli.StringFlag{Name: "key", Usage: "canonical key string; requires --dataset"},
		&cli.StringFlag{Name: "dataset", Usage: "dataset name or TemporalId hex string"},
	},
	Action: func(c *cli.Context) error {
		urfavecli.LogFlags(c)
		return extract(c.Context, extractArgs{
			configPath: c.String("config"),
			collection: c.String("collection"),
			id:         c.String("id"),
			key:        c.String("key"),
			dataset:    c.String("dataset"),
		}, os.Stdout)
	},
}

type extractArgs struct {
	configPath, collection, id, key, dataset string
}

func extract(ctx context.Context, args extractArgs, out io.Writer) error {
	if (args.id == "") == (args.key == "") {
		return fail(skerr.Fmt("BadFormat: exactly one of --id or --key must be set"))
	}

	cfg, err := loadStoreConfig(args.configPath)
	if err != nil {
		return fail(err)
	}
	ds, closeFn, err := openDataSource(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	env, err := loadEnvelope(ctx, ds, args)
	if err != nil {
		return fail(err)
	}
	if env == nil {
		fmt.Fprintln(out, "null")
		return nil
	}
	body, err := json.Marshal(env.Payload)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(out, string(body))
	return nil
}

func loadEnvelope(ctx context.Context, ds datasource.DataSource, args extractArgs) (*record.Envelope, error) {
	if args.id != "" {
		parsedID, err := tid.Parse(args.id)
		if err != nil {
			return nil, err
		}
		return ds.LoadOrNilByID(ctx, args.collection, parsedID)
	}
	datasetID, err := resolveDatasetRef(ctx, ds, args.dataset)
	if err != nil {
		return nil, err
	}
	return ds.LoadOrNilByKey(ctx, args.collection, args.key, datasetID)
}
