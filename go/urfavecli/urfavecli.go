// Package urfavecli adds small conveniences on top of github.com/urfave/cli/v2
// shared by the tdsctl subcommands: consistent flag logging on startup so a
// support engineer can see exactly what a run was invoked with.
package urfavecli

import (
	"fmt"
	"sort"
	"strings"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/sklog"
)

// LogFlags writes a single log line listing every flag visible to c
// (global and command-local) and its current value, in a stable,
// alphabetical order so the line is diffable across runs.
func LogFlags(c *cli.Context) {
	names := c.FlagNames()
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf(" --%s=%v", name, c.Value(name)))
	}
	sklog.Infof("Flags:%s", strings.Join(parts, ""))
}
