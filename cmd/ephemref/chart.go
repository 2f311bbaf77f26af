package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/config"
	"github.com/signalsfoundry/ephemref/internal/dataset"
	"github.com/signalsfoundry/ephemref/internal/logging"
	"github.com/signalsfoundry/ephemref/model"
)

func runChart(ctx context.Context, args chartArgs, stdout io.Writer, log logging.Logger) error {
	m, err := chartMoment(*args.date, *args.clock, *args.utcOffset)
	if err != nil {
		return err
	}
	loc := model.GeoLocation{Latitude: *args.lat, Longitude: *args.lon}
	if err := loc.Validate(); err != nil {
		return err
	}

	p, err := openProvider(ctx, *args.vsop87, "", log)
	if err != nil {
		return err
	}
	return printChart(ctx, stdout, p, m, loc)
}

func chartMoment(date, clock, offset string) (core.Moment, error) {
	y, mo, d, err := config.ParseDate(date)
	if err != nil {
		return core.Moment{}, err
	}
	hour, err := config.ParseClock(clock)
	if err != nil {
		return core.Moment{}, err
	}
	off, err := config.ParseUTCOffset(offset)
	if err != nil {
		return core.Moment{}, err
	}
	return core.NewMoment(y, mo, d, hour, off)
}

func printChart(ctx context.Context, w io.Writer, p core.EphemerisProvider, m core.Moment, loc model.GeoLocation) error {
	jd := m.JulianDayUT()
	gmst := core.LocalSiderealTime(jd, 0) // Greenwich, degrees
	lst := core.LocalSiderealTime(jd, loc.Longitude)
	last := core.LocalApparentSiderealTime(jd, loc.Longitude)

	fmt.Fprintf(w, "Moment      %s\n", m)
	fmt.Fprintf(w, "Location    %s\n", formatLocation(loc))
	fmt.Fprintf(w, "JD (UT)     %.6f\n", jd)
	fmt.Fprintf(w, "JD (TT)     %.6f\n", m.JulianDayTT())
	fmt.Fprintf(w, "Delta T     %.1f s\n", m.DeltaT())
	fmt.Fprintf(w, "GMST        %.6f° (%s)\n", gmst, formatHMS(gmst))
	fmt.Fprintf(w, "LST         %.6f° (%s)\n", lst, formatHMS(lst))
	fmt.Fprintf(w, "LAST        %.6f° (%s)\n", last, formatHMS(last))
	fmt.Fprintf(w, "Obliquity   %.6f°\n", core.TrueObliquity(m.JulianDayTT()))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "BODY\tPOSITION\tLONGITUDE\tLATITUDE\tSPEED\t\n")
	for _, body := range model.AllBodies {
		if err := ctx.Err(); err != nil {
			return err
		}
		pos, err := p.Query(jd, body, core.QueryFlags{IncludeSpeed: true})
		if err != nil {
			reason := err.Error()
			if errors.Is(err, core.ErrUnsupportedBody) {
				reason = "unavailable"
			}
			fmt.Fprintf(tw, "%s\t%s\t\t\t\t\n", body, reason)
			continue
		}
		retro := ""
		if pos.Retrograde() {
			retro = "R"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.6f\t%.6f\t%.6f\t%s\n",
			body, core.FormatDegMin(pos.Longitude), pos.Longitude, pos.Latitude, pos.LongitudeSpeed, retro)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	h, err := dataset.ComputeHouses(m, loc)
	if err != nil {
		fmt.Fprintf(w, "Houses unavailable: %v\n", err)
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ascendant\t%s\t%.6f\n", core.FormatDegMin(h.Ascendant), h.Ascendant)
	fmt.Fprintf(tw, "Midheaven\t%s\t%.6f\n", core.FormatDegMin(h.Midheaven), h.Midheaven)
	fmt.Fprintf(tw, "Vertex\t%s\t%.6f\n", core.FormatDegMin(h.Vertex), h.Vertex)
	fmt.Fprintf(tw, "ARMC\t\t%.6f\n", h.ARMC)
	for i, c := range h.Cusps {
		fmt.Fprintf(tw, "House %d\t%s\t%.6f\n", i+1, core.FormatDegMin(c), c)
	}
	return tw.Flush()
}

func formatLocation(loc model.GeoLocation) string {
	ns, ew := "N", "E"
	lat, lon := loc.Latitude, loc.Longitude
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon > 180 {
		lon -= 360
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f%s %.4f%s", lat, ns, lon, ew)
}

// formatHMS renders an angle in degrees as hours of right ascension.
func formatHMS(deg float64) string {
	total := math.Round(core.Normalize(deg) / 15 * 3600 * 100) // centiseconds
	h := int(total / 360000)
	rem := total - float64(h)*360000
	mi := int(rem / 6000)
	s := (rem - float64(mi)*6000) / 100
	return fmt.Sprintf("%02dh%02dm%05.2fs", h%24, mi, s)
}
