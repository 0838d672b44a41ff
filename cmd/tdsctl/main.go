// Command tdsctl is the operator-facing CLI for the temporal
// dataset-layered document store: opening a configured data source,
// running scripted operations against it, extracting single records,
// smoke-testing a deployment, and creating datasets.
package main

import (
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/datacentricorg/datacentric-sub004/go/sklog"
)

// businessError marks a verb failure that originated from the store
// itself as opposed to a CLI usage/flag-parse failure, so main can tell
// the two apart when choosing an exit code.
type businessError struct{ cause error }

func fail(err error) error {
	if err == nil {
		return nil
	}
	return &businessError{cause: err}
}

func (e *businessError) Error() string { return e.cause.Error() }
func (e *businessError) Unwrap() error { return e.cause }

func newApp() *cli.App {
	return &cli.App{
		Name:  "tdsctl",
		Usage: "operate a temporal dataset-layered document store",
		Commands: []*cli.Command{
			runCommand,
			extractCommand,
			testCommand,
			generateCommand,
			headersCommand,
			clearCacheCommand,
			exitCommand,
		},
		// Exit codes are this command's own contract (0/1/-1); suppress
		// urfave/cli's default os.Exit-on-ExitCoder behavior so main
		// decides every exit itself.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func main() {
	os.Exit(run(os.Args))
}

// run executes app.Run(args) and maps the result to this command's exit
// code contract: 0 on success, 1 on a business/store failure, -1 on a
// CLI usage or flag-parse failure.
func run(args []string) int {
	err := newApp().Run(args)
	sklog.Flush()
	if err == nil {
		return 0
	}
	var be *businessError
	if errors.As(err, &be) {
		fmt.Fprintln(os.Stderr, be.Error())
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	return -1
}
