package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/config"
	"github.com/signalsfoundry/ephemref/internal/dataset"
	"github.com/signalsfoundry/ephemref/internal/logging"
	"github.com/signalsfoundry/ephemref/internal/observability"
	"github.com/signalsfoundry/ephemref/timectrl"
)

func runReference(ctx context.Context, args referenceArgs, stdout io.Writer, log logging.Logger) error {
	cfg, err := config.Load(*args.config)
	if err != nil {
		return fmt.Errorf("config %s: %w", *args.config, err)
	}
	bodies, err := cfg.BodyList()
	if err != nil {
		return err
	}

	opts := dataset.ExportOptions{Generator: cfg.Generator}
	switch {
	case *args.generatedAt != "":
		at, err := time.Parse(time.RFC3339, *args.generatedAt)
		if err != nil {
			return fmt.Errorf("--generated-at: %w", err)
		}
		opts.Clock = timectrl.NewFixedClock(at)
	case *args.timestamp:
		opts.Clock = timectrl.SystemClock{}
	}

	p, err := openProvider(ctx, *args.vsop87, *args.reference, log)
	if err != nil {
		return err
	}

	collector, err := observability.NewDatasetCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	builder := dataset.NewBuilder(p, log,
		dataset.WithMetricsRecorder(collector),
		dataset.WithWorkers(cfg.Workers),
	)
	ds, failures := builder.Build(ctx, cfg.Entries(), bodies)
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeExport(*args.out, stdout, ds, opts); err != nil {
		return err
	}

	if *args.metricsFile != "" {
		if err := collector.WriteTextfile(*args.metricsFile); err != nil {
			return fmt.Errorf("metrics file: %w", err)
		}
	}

	// With JSON on stdout the summary would corrupt it.
	if *args.out != "-" {
		if err := printSummary(stdout, ds, failures); err != nil {
			return err
		}
	}

	if *args.strict && len(failures) > 0 {
		return fmt.Errorf("%d failures", len(failures))
	}
	return nil
}

// writeExport writes the JSON document to path, or to stdout for "-".
func writeExport(path string, stdout io.Writer, ds *dataset.Dataset, opts dataset.ExportOptions) error {
	if path == "-" {
		return dataset.Export(stdout, ds, opts)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.Export(f, ds, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary writes one row per record followed by any failures.
func printSummary(w io.Writer, ds *dataset.Dataset, failures []dataset.Failure) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESCRIPTION\tJD (UT)\tBODIES\tFAILED\tASCENDANT\tMIDHEAVEN")
	for _, r := range ds.Records {
		asc, mc := "-", "-"
		if r.Houses != nil {
			asc = core.FormatDegMin(r.Houses.Ascendant)
			mc = core.FormatDegMin(r.Houses.Midheaven)
		} else if r.HousesErr != nil {
			asc, mc = "unavailable", "unavailable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Description, dataset.JulianDayKey(r.JulianDay()), len(r.Positions), len(r.Failures), asc, mc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d records from %s, %d failures\n", len(ds.Records), ds.Provider, len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "  %s: %v\n", f.Scope, f)
	}
	return nil
}
