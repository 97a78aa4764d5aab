package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hoyle1974/weekly"
	"github.com/hoyle1974/weekly/registry"
	"github.com/hoyle1974/weekly/telemetry"
)

var errUsage = errors.New("bad usage")

func usageErrorf(format string, args ...any) error {
	return errors.Wrapf(errUsage, format, args...)
}

type app struct {
	cfg    config
	out    io.Writer
	logger telemetry.Logger
	reg    *registry.Registry
}

func run(ctx context.Context, cfg config, args []string, out io.Writer, logger telemetry.Logger) error {
	if len(args) == 0 {
		return usageErrorf("missing command")
	}
	a := &app{cfg: cfg, out: out, logger: logger}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "format":
		return a.format(args)
	case "intervals":
		return a.intervals(args)
	case "places":
		return a.places(args)
	case "open":
		return a.open(args)
	case "union", "intersect", "contains":
		return a.algebra(cmd, args)
	case "put":
		return a.put(ctx, args)
	case "get":
		return a.get(ctx, args)
	case "history":
		return a.history(ctx, args)
	case "list":
		return a.list(ctx)
	case "delete":
		return a.delete(ctx, args)
	default:
		return usageErrorf("unknown command %q", cmd)
	}
}

func (a *app) registry(ctx context.Context) (*registry.Registry, error) {
	if a.reg == nil {
		store, err := newStorage(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.reg = registry.New(store, registry.WithLogger(a.logger))
	}
	return a.reg, nil
}

func (a *app) println(v any) {
	fmt.Fprintln(a.out, v)
}

func (a *app) format(args []string) error {
	if len(args) != 1 {
		return usageErrorf("format takes one schedule")
	}
	p, err := weekly.Parse(args[0])
	if err != nil {
		return err
	}
	a.println(p)
	return nil
}

func (a *app) intervals(args []string) error {
	if len(args) != 1 {
		return usageErrorf("intervals takes one schedule")
	}
	p, err := weekly.Parse(args[0])
	if err != nil {
		return err
	}
	for _, iv := range p.Intervals() {
		a.println(iv)
	}
	return nil
}

func (a *app) places(args []string) error {
	if len(args) != 1 {
		return usageErrorf("places takes one file")
	}
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return errors.Wrapf(err, "can not read %s", args[0])
	}
	p, err := weekly.DecodePlacesResponse(data)
	if err != nil {
		return err
	}
	a.println(p)
	return nil
}

func (a *app) open(args []string) error {
	if len(args) != 3 {
		return usageErrorf("open takes a schedule, a day and a time")
	}
	p, err := weekly.Parse(args[0])
	if err != nil {
		return err
	}
	wd, ok := weekly.ParseDayAbbrev(args[1])
	if !ok {
		return usageErrorf("unknown day %q", args[1])
	}
	hour, minute, ok := strings.Cut(args[2], ":")
	if !ok {
		return usageErrorf("time %q must look like HH:MM", args[2])
	}
	h, err := strconv.Atoi(hour)
	if err != nil {
		return usageErrorf("time %q must look like HH:MM", args[2])
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return usageErrorf("time %q must look like HH:MM", args[2])
	}
	at, err := weekly.NewWeekdayTime(wd, h, m)
	if err != nil {
		return err
	}
	a.println(p.Has(at))
	return nil
}

func (a *app) algebra(cmd string, args []string) error {
	if len(args) != 2 {
		return usageErrorf("%s takes two schedules", cmd)
	}
	p, err := weekly.Parse(args[0])
	if err != nil {
		return err
	}
	q, err := weekly.Parse(args[1])
	if err != nil {
		return err
	}

	var result any
	switch cmd {
	case "union":
		result, err = p.Union(q)
	case "intersect":
		result, err = p.Intersect(q)
	case "contains":
		result, err = p.Contains(q)
	}
	if err != nil {
		return err
	}
	a.println(result)
	return nil
}

func (a *app) put(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErrorf("put takes a name and a schedule")
	}
	p, err := weekly.Parse(args[1])
	if err != nil {
		return err
	}
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	rev, err := reg.Put(ctx, args[0], p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s revision %d: %s\n", args[0], rev.Number, rev.Schedule)
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return usageErrorf("get takes a name and an optional revision")
	}
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}

	var p weekly.Period
	if len(args) == 2 {
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return usageErrorf("revision %q is not a number", args[1])
		}
		p, err = reg.GetRevision(ctx, args[0], n)
	} else {
		p, err = reg.Get(ctx, args[0])
	}
	if err != nil {
		return err
	}
	a.println(p)
	return nil
}

func (a *app) history(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("history takes a name")
	}
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	revs, err := reg.History(ctx, args[0])
	if err != nil {
		return err
	}
	for _, rev := range revs {
		fmt.Fprintf(a.out, "%d\t%s\t%s\t%s\n", rev.Number, rev.Timestamp.Format("2006-01-02 15:04:05"), rev.ID, rev.Schedule)
	}
	return nil
}

func (a *app) list(ctx context.Context) error {
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	names, err := reg.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		a.println(name)
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("delete takes a name")
	}
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	return reg.Delete(ctx, args[0])
}
