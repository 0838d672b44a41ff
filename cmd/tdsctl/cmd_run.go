package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/config"
	"github.com/datacentricorg/datacentric-sub004/go/datasource"
	"github.com/datacentricorg/datacentric-sub004/go/query"
	"github.com/datacentricorg/datacentric-sub004/go/skerr"
	"github.com/datacentricorg/datacentric-sub004/go/sklog"
	"github.com/datacentricorg/datacentric-sub004/go/urfavecli"
)

var scriptFlag = &cli.StringFlag{
	Name:     "script",
	Usage:    "path to a JSON5 script file listing save/load/delete/query operations",
	Required: true,
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "open a data source and execute a scripted sequence of save/load/delete/query operations",
	Flags: []cli.Flag{configFlag, scriptFlag},
	Action: func(c *cli.Context) error {
		urfavecli.LogFlags(c)
		return runScript(c.Context, c.String("config"), c.String("script"), os.Stdout)
	},
}

// scriptOp is one step of a run script. Collection and Class are
// usually the same value (one physical collection per record class);
// they are kept separate so a script can exercise a collection whose
// records span more than one class tag.
type scriptOp struct {
	Op         string                 `json:"op"`
	Collection string                 `json:"collection"`
	Class      string                 `json:"class"`
	Key        string                 `json:"key"`
	Dataset    string                 `json:"dataset"`
	Payload    map[string]interface{} `json:"payload"`
}

type script struct {
	Operations []scriptOp `json:"operations"`
}

func runScript(ctx context.Context, configPath, scriptPath string, out io.Writer) error {
	cfg, err := loadStoreConfig(configPath)
	if err != nil {
		return fail(err)
	}
	var scr script
	if err := config.ParseConfigFile(scriptPath, "script", &scr); err != nil {
		return fail(err)
	}

	ds, closeFn, err := openDataSource(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	runID := uuid.NewString()
	sklog.Infof("run %s: starting %d operation(s) against %s", runID, len(scr.Operations), cfg.Project)

	for i, op := range scr.Operations {
		if err := runOp(ctx, ds, op, out); err != nil {
			return fail(skerr.Wrapf(err, "operation %d (%s)", i, op.Op))
		}
	}
	sklog.Infof("run %s: finished", runID)
	return nil
}

func runOp(ctx context.Context, ds datasource.DataSource, op scriptOp, out io.Writer) error {
	datasetID, err := resolveDatasetRef(ctx, ds, op.Dataset)
	if err != nil {
		return err
	}

	switch op.Op {
	case "save":
		ensureGenericClassRegistered(op.Class)
		rec := &genericRecord{tag: op.Class, key: op.Key, fields: op.Payload}
		id, err := ds.Save(ctx, op.Collection, rec, op.Key, datasetID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s/%s -> %s\n", op.Collection, op.Key, id)

	case "delete":
		id, err := ds.Delete(ctx, op.Collection, op.Key, datasetID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s/%s -> %s\n", op.Collection, op.Key, id)

	case "load":
		env, err := ds.LoadOrNilByKey(ctx, op.Collection, op.Key, datasetID)
		if err != nil {
			return err
		}
		if env == nil {
			fmt.Fprintf(out, "%s/%s -> (not found)\n", op.Collection, op.Key)
			return nil
		}
		body, err := json.Marshal(env.Payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s/%s -> %s\n", op.Collection, op.Key, body)

	case "query":
		envs, err := ds.Query(ctx, op.Collection, datasetID, query.Query{})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %d record(s)\n", op.Collection, len(envs))

	default:
		return skerr.Fmt("BadFormat: unknown operation %q", op.Op)
	}
	return nil
}
