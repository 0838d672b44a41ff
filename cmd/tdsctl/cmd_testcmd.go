package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"

	dscontext "github.com/datacentricorg/datacentric-sub004/go/context"
	"github.com/datacentricorg/datacentric-sub004/go/dataset"
	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/record"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
	"github.com/datacentricorg/datacentric-sub004/go/urfavecli"
)

// smokeTestClassTag identifies the one record class the "test" verb
// writes and reads back; it never appears in application data.
const smokeTestClassTag = "TdsctlSmokeTestRecord"

type smokeTestRecord struct {
	Value string
}

func (r *smokeTestRecord) ClassTag() string  { return smokeTestClassTag }
func (r *smokeTestRecord) KeyString() string { return "smoke" }

func init() {
	record.Register(smokeTestClassTag, func(body []byte) (record.Payload, error) {
		var r smokeTestRecord
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
}

var keepTestDataFlag = &cli.BoolFlag{
	Name:  "keep-test-data",
	Usage: "do not drop the test database when the smoke test finishes",
}

var testCommand = &cli.Command{
	Name:  "test",
	Usage: "run an internal save/load smoke test against a configured backend and dispose it",
	Flags: []cli.Flag{configFlag, keepTestDataFlag},
	Action: func(c *cli.Context) error {
		urfavecli.LogFlags(c)
		return smokeTest(c.Context, c.String("config"), c.Bool("keep-test-data"), os.Stdout)
	},
}

// smokeTest exercises the same save/load round trip go/context's own
// test-lifecycle dispose path is built for, against a live or emulated
// backend rather than an in-memory fake, then drops what it wrote unless
// keepTestData was requested.
func smokeTest(ctx context.Context, configPath string, keepTestData bool, out io.Writer) error {
	cfg, err := loadStoreConfig(configPath)
	if err != nil {
		return fail(err)
	}
	ds, closeFn, err := openDataSource(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	if err := smokeTestOn(ctx, ds, keepTestData, out); err != nil {
		return fail(err)
	}
	return nil
}

func smokeTestOn(ctx context.Context, ds datasource.DataSource, keepTestData bool, out io.Writer) error {
	common, err := ds.CreateDataSet(ctx, dataset.CommonName, nil, tid.Empty)
	if err != nil {
		return err
	}
	tdsCtx := dscontext.New(ds, common)

	id, err := tdsCtx.SaveToCurrentDataSet(ctx, &smokeTestRecord{Value: "ok"}, "smoke")
	if err != nil {
		return err
	}
	env, err := tdsCtx.LoadOrNilByKeyInCurrentDataSet(ctx, smokeTestClassTag, "smoke")
	if err != nil {
		return err
	}
	if env == nil || env.ID != id {
		return skerr.Fmt("Unavailable: smoke test write was not visible to an immediate read")
	}

	if !keepTestData {
		if err := ds.DropDb(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "ok")
	return nil
}
