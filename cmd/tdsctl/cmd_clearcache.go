package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/urfavecli"
)

var clearCacheCommand = &cli.Command{
	Name:  "clear-cache",
	Usage: "drop the in-memory dataset cache and its cross-process mirror; no background invalidation exists",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		urfavecli.LogFlags(c)
		return clearCache(c.Context, c.String("config"), os.Stdout)
	},
}

func clearCache(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := loadStoreConfig(configPath)
	if err != nil {
		return fail(err)
	}
	ds, closeFn, err := openDataSource(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	if err := clearCacheOn(ctx, ds, out); err != nil {
		return fail(err)
	}
	return nil
}

func clearCacheOn(ctx context.Context, ds datasource.DataSource, out io.Writer) error {
	if err := ds.ClearDatasetCache(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}
