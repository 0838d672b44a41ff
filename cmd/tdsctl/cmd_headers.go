package main

import (
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/urfavecli"
)

var headersCommand = &cli.Command{
	Name:  "headers",
	Usage: "print the wire-format header: TemporalId layout and required indexes",
	Action: func(c *cli.Context) error {
		urfavecli.LogFlags(c)
		printHeaders(os.Stdout)
		return nil
	},
}

func printHeaders(out io.Writer) {
	fmt.Fprintln(out, "TemporalId: 12 bytes = 4-byte seconds + 3-byte machine id + 2-byte pid + 3-byte counter;")
	fmt.Fprintln(out, "            24 lowercase hex chars on the wire; Empty = \"000000000000000000000000\".")
	fmt.Fprintln(out, "Document shape: { _id: TemporalId, _key: string, _dataset: TemporalId, _t: class_tag, ...payload }")
	fmt.Fprintln(out, "Required index: { _key: 1, _dataset: 1, _id: -1 }")
	fmt.Fprintln(out, "Optional index: { _dataset: 1, _id: -1 }")
}
