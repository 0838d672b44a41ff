package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
	"github.com/datacentricorg/datacentric-sub004/go/urfavecli"
)

var generateCommand = &cli.Command{
	Name:  "generate",
	Usage: "create a new dataset in the root dataset from flags",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringSliceFlag{Name: "parent", Usage: "parent dataset name or TemporalId hex string; may repeat"},
	},
	Action: func(c *cli.Context) error {
		urfavecli.LogFlags(c)
		return generateDataset(c.Context, c.String("config"), c.String("name"), c.StringSlice("parent"), os.Stdout)
	},
}

func generateDataset(ctx context.Context, configPath, name string, parentRefs []string, out io.Writer) error {
	cfg, err := loadStoreConfig(configPath)
	if err != nil {
		return fail(err)
	}
	ds, closeFn, err := openDataSource(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	if err := generateDatasetOn(ctx, ds, name, parentRefs, out); err != nil {
		return fail(err)
	}
	return nil
}

func generateDatasetOn(ctx context.Context, ds datasource.DataSource, name string, parentRefs []string, out io.Writer) error {
	parents := make([]tid.TemporalId, 0, len(parentRefs))
	for _, ref := range parentRefs {
		id, err := resolveDatasetRef(ctx, ds, ref)
		if err != nil {
			return err
		}
		parents = append(parents, id)
	}

	id, err := ds.CreateDataSet(ctx, name, parents, tid.Empty)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, id.String())
	return nil
}
