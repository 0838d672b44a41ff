package main

import (
	cli "github.com/urfave/cli/v2"
)

// exitCommand is a no-op, used by interactive wrappers that script a
// sequence of tdsctl invocations and want an explicit "stop here" verb
// that always succeeds.
var exitCommand = &cli.Command{
	Name:  "exit",
	Usage: "no-op; always succeeds",
	Action: func(c *cli.Context) error {
		return nil
	},
}
