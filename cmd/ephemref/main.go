// Command ephemref builds reference ephemeris datasets and prints natal
// charts from the same pipeline.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/dataset"
	"github.com/signalsfoundry/ephemref/internal/logging"
	"github.com/signalsfoundry/ephemref/internal/observability"
	"github.com/signalsfoundry/ephemref/internal/provider"
	"github.com/signalsfoundry/ephemref/kb"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ephemref:", err)
		os.Exit(1)
	}
}

type referenceArgs struct {
	config      *string
	out         *string
	vsop87      *string
	reference   *string
	timestamp   *bool
	metricsFile *string
	strict      *bool
	generatedAt *string
}

type chartArgs struct {
	date      *string
	clock     *string
	utcOffset *string
	lat       *float64
	lon       *float64
	vsop87    *string
}

// run parses args and dispatches to a command. Logs and traces go to stderr,
// reports to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app := kingpin.New("ephemref", "Geocentric ephemeris and Placidus house reference data.")
	app.Version(version)
	app.HelpFlag.Short('h')
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)
	app.Terminate(nil)

	logLevel := app.Flag("log-level", "Log level.").Envar("LOG_LEVEL").Default("info").Enum(logging.Levels...)
	logFormat := app.Flag("log-format", "Log format.").Envar("LOG_FORMAT").Default("text").Enum(logging.Formats...)
	traceExporter := app.Flag("trace", "Span exporter for dataset builds.").Envar("EPHEMREF_TRACING_EXPORTER").Default(observability.ExporterNone).Enum(observability.Exporters...)

	refCmd := app.Command("reference", "Build a reference dataset from a YAML run definition and export it as JSON.")
	ref := referenceArgs{
		config:      refCmd.Flag("config", "Run definition (YAML).").Short('c').Required().ExistingFile(),
		out:         refCmd.Flag("out", "Output JSON path, or - for stdout.").Short('o').Default("reference_data.json").String(),
		vsop87:      refCmd.Flag("vsop87", "Directory holding VSOP87B series files.").Envar("EPHEMREF_VSOP87").String(),
		reference:   refCmd.Flag("reference", "Replay positions from a previously exported dataset instead of computing them.").ExistingFile(),
		timestamp:   refCmd.Flag("timestamp", "Record generated_at in the export.").Bool(),
		metricsFile: refCmd.Flag("metrics-file", "Write Prometheus metrics to this textfile after the build.").String(),
		strict:      refCmd.Flag("strict", "Exit non-zero when any moment, body or house system failed.").Bool(),
		generatedAt: refCmd.Flag("generated-at", "Record this RFC 3339 instant as generated_at instead of the wall clock.").PlaceHolder("TIME").String(),
	}

	chartCmd := app.Command("chart", "Print positions, angles and house cusps for one moment and place.")
	chart := chartArgs{
		date:      chartCmd.Flag("date", "Civil date, YYYY-MM-DD (proleptic Gregorian).").Required().String(),
		clock:     chartCmd.Flag("time", "Clock time, HH:MM[:SS].").Default("12:00").String(),
		utcOffset: chartCmd.Flag("utc-offset", "Offset of the clock from UT, ±HH:MM or decimal hours.").Default("+00:00").String(),
		lat:       chartCmd.Flag("lat", "Geographic latitude, north positive.").Required().Float64(),
		lon:       chartCmd.Flag("lon", "Geographic longitude, east positive.").Required().Float64(),
		vsop87:    chartCmd.Flag("vsop87", "Directory holding VSOP87B series files.").Envar("EPHEMREF_VSOP87").String(),
	}

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{
		Level:  *logLevel,
		Format: *logFormat,
		Output: stderr,
	})
	if err != nil {
		return err
	}

	tracing := observability.TracingConfigFromEnv()
	tracing.Exporter = *traceExporter
	tracing.ServiceVersion = version
	tracing.Writer = stderr
	shutdown, err := observability.InitTracing(ctx, tracing, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	switch cmd {
	case refCmd.FullCommand():
		return runReference(ctx, ref, stdout, log)
	case chartCmd.FullCommand():
		return runChart(ctx, chart, stdout, log)
	}
	// --help and --version parse without selecting a command.
	return nil
}

// openProvider returns the replay store when a reference file is given and
// the analytic provider otherwise.
func openProvider(ctx context.Context, vsop87Dir, referencePath string, log logging.Logger) (core.EphemerisProvider, error) {
	if referencePath == "" {
		return provider.NewMeeus(vsop87Dir, log)
	}

	f, err := os.Open(referencePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := dataset.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", referencePath, err)
	}
	store := kb.NewKnowledgeBase(referencePath)
	unsubscribe := store.Subscribe(func(ev kb.Event) {
		if ev.Type == kb.EventDateLoaded {
			log.Debug(ctx, "reference date loaded",
				logging.Moment(ev.Description),
				logging.JulianDay(ev.JulianDay),
				logging.Int("positions", ev.Count))
		}
	})
	n, err := store.LoadDocument(doc)
	unsubscribe()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", referencePath, err)
	}
	log.Info(ctx, "loaded reference positions",
		logging.String("path", referencePath),
		logging.Int("positions", n),
		logging.Int("dates", len(doc.Dates)),
	)
	return store, nil
}
