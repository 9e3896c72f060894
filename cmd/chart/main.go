// Command chart prints a birth chart as a table, optionally writing the
// wheel to a PNG file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"birthchart-server/internal/chart"
	"birthchart-server/internal/ephemeris"
	"birthchart-server/internal/geocode"
	"birthchart-server/internal/render"
	"birthchart-server/internal/shared/cache"
	"birthchart-server/internal/shared/config"
	"birthchart-server/internal/shared/logger"
)

type options struct {
	moment   chart.Moment
	city     string
	houses   string
	asJSON   bool
	aspects  bool
	pngPath  string
	pngSize  int
	logLevel string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.IntVar(&o.moment.Year, "year", 0, "birth year (YYYY)")
	fs.IntVar(&o.moment.Month, "month", 0, "birth month (1-12)")
	fs.IntVar(&o.moment.Day, "day", 0, "birth day")
	fs.IntVar(&o.moment.Hour, "hour", 0, "birth hour, 24h clock")
	fs.Float64Var(&o.moment.Minute, "minute", 0, "birth minute")
	fs.Float64Var(&o.moment.TZOffset, "tz", 0, "time zone offset in hours east of UTC (e.g. -5 for New York)")
	fs.StringVar(&o.city, "city", "", "birth city")
	fs.StringVar(&o.houses, "houses", "", "house system: whole_sign or placidus (default from CHART_HOUSE_SYSTEM)")
	fs.BoolVar(&o.asJSON, "json", false, "print the chart as JSON")
	fs.BoolVar(&o.aspects, "aspects", true, "print aspects")
	fs.StringVar(&o.pngPath, "png", "", "write the chart wheel to this PNG file")
	fs.IntVar(&o.pngSize, "size", render.DefaultSize, "PNG edge length in pixels")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level for stderr")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	var missing []string
	if o.moment.Year == 0 {
		missing = append(missing, "-year")
	}
	if o.moment.Month == 0 {
		missing = append(missing, "-month")
	}
	if o.moment.Day == 0 {
		missing = append(missing, "-day")
	}
	if strings.TrimSpace(o.city) == "" {
		missing = append(missing, "-city")
	}
	if len(missing) > 0 {
		return o, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.Logging.Level = o.logLevel
	log := logger.New(os.Stderr, cfg.Logging)

	if o.houses == "" {
		o.houses = cfg.Chart.HouseSystem
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	geocoder := geocode.NewCached(geocode.NewNominatim(cfg.Geocoder, nil), cache.NewMemoryCache(16), cfg.Geocoder.CacheTTL, nil)
	provider, err := ephemeris.Load(cfg.Chart.EphemerisPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	service := chart.NewService(geocoder, chart.NewBuilder(provider), chart.ServiceOptions{}, log)

	if err := run(ctx, service, o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, service *chart.Service, o options, out io.Writer) error {
	system, err := chart.ParseHouseSystem(o.houses)
	if err != nil {
		return err
	}

	result, err := service.Compute(ctx, chart.Request{Moment: o.moment, City: o.city, HouseSystem: &system})
	if err != nil {
		return err
	}

	if o.pngPath != "" {
		if err := writePNG(o.pngPath, result, o.pngSize); err != nil {
			return err
		}
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeReport(out, result, o.aspects)
}

func writePNG(path string, result *chart.Result, size int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render.EncodePNG(f, result, render.Options{Size: size})
}

func houseSystemTitle(h chart.HouseSystem) string {
	if h == chart.Placidus {
		return "Placidus"
	}
	return "Whole Sign"
}

func writeReport(out io.Writer, result *chart.Result, withAspects bool) error {
	c := result.Chart
	title := houseSystemTitle(c.HouseSystem)
	rule := strings.Repeat("=", 55)

	fmt.Fprintf(out, "Birth Chart (%s Houses)\n", title)
	fmt.Fprintf(out, "%s, lat %.4f, lon %.4f, JD %.5f\n", c.Location.DisplayName, c.Location.Latitude, c.Location.Longitude, c.JulianDay)
	fmt.Fprintln(out, rule)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Planet\tPosition\tSign\tHouse")
	for _, e := range c.Entries {
		within := e.Longitude - float64(chart.SignIndex(e.Longitude))*30
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\n", e.Name, chart.FormatDegrees(within), e.Glyph, e.Sign, e.House)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, rule)

	fmt.Fprintf(out, "\nHouses (%s)\n", title)
	fmt.Fprintln(out, rule)
	for i, sign := range c.Houses {
		if len(c.Cusps) == len(c.Houses) {
			fmt.Fprintf(out, "House %d: %s\n", i+1, chart.FormatPosition(c.Cusps[i]))
			continue
		}
		fmt.Fprintf(out, "House %d: %s\n", i+1, sign)
	}
	fmt.Fprintln(out, rule)

	if !withAspects || len(result.Aspects) == 0 {
		return nil
	}

	fmt.Fprintln(out, "\nAspects")
	fmt.Fprintln(out, rule)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, a := range result.Aspects {
		fmt.Fprintf(tw, "%s\t%s\t%s\torb %.2f°\n", a.BodyA, a.Kind, a.BodyB, a.Orb)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, rule)
	return nil
}
