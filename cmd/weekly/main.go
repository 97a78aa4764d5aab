package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"

	"github.com/hoyle1974/weekly/telemetry"
)

const usage = `Usage: weekly [flags] <command> [args]

Commands:
  format <schedule>               print the canonical form
  intervals <schedule>            print one line per open interval
  places <file.json|->            convert a Places details response
  open <schedule> <Day> <HH:MM>   is the schedule open at that minute
  union <a> <b>                   minutes in either schedule
  intersect <a> <b>               minutes in both schedules
  contains <a> <b>                does a cover every minute of b
  put <name> <schedule>           store a new revision
  get <name> [revision]           print the newest or a given revision
  history <name>                  list revisions
  list                            list stored schedules
  delete <name>                   remove a schedule and its history

Flags:
`

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the exit code so deferred syncs run before the process exits.
func realMain(argv []string) int {
	cfg, args, err := loadConfig(argv)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	zl, err := telemetry.BuildZap(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer zl.Sync()

	if err := run(context.Background(), cfg, args, os.Stdout, telemetry.NewZapLogger(zl)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		return 1
	}
	return 0
}
