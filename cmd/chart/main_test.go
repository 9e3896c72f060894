package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"birthchart-server/internal/chart"
	"birthchart-server/internal/ephemeris"
	"birthchart-server/internal/geocode"
)

type fixedGeocoder struct{}

func (fixedGeocoder) Geocode(_ context.Context, query string) (geocode.Location, error) {
	if query == "London" {
		return geocode.Location{Latitude: 51.5, Longitude: -0.12, DisplayName: "London"}, nil
	}
	return geocode.Location{}, geocode.ErrNotFound
}

func testService() *chart.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return chart.NewService(fixedGeocoder{}, chart.NewBuilder(ephemeris.New()), chart.ServiceOptions{}, logger)
}

func j2000Options() options {
	return options{
		moment:  chart.Moment{Year: 2000, Month: 1, Day: 1, Hour: 12},
		city:    "London",
		houses:  "whole_sign",
		aspects: true,
	}
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-year", "1990", "-month", "7", "-day", "4", "-hour", "9", "-minute", "30", "-tz", "-5", "-city", "New York"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	want := chart.Moment{Year: 1990, Month: 7, Day: 4, Hour: 9, Minute: 30, TZOffset: -5}
	if o.moment != want || o.city != "New York" {
		t.Errorf("got %+v city %q", o.moment, o.city)
	}

	_, err = parseFlags([]string{"-year", "1990"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "-month, -day, -city") {
		t.Errorf("expected missing flag error, got %v", err)
	}
}

func TestRunTable(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testService(), j2000Options(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"Birth Chart (Whole Sign Houses)",
		"Planet",
		"Sun",
		"10°22'",
		"Capricorn",
		"Midheaven",
		"House 1: Aries",
		"House 12: Pisces",
		"Aspects",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunPlacidusListsCusps(t *testing.T) {
	o := j2000Options()
	o.houses = "placidus"
	o.aspects = false

	var out bytes.Buffer
	if err := run(context.Background(), testService(), o, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Placidus") {
		t.Error("expected Placidus title")
	}
	if strings.Contains(out.String(), "Aspects") {
		t.Error("aspects printed although disabled")
	}
	if !strings.Contains(out.String(), "House 1: 24°02' Aries") {
		t.Errorf("expected ascendant cusp on house 1:\n%s", out.String())
	}
}

func TestRunJSONAndPNG(t *testing.T) {
	o := j2000Options()
	o.asJSON = true
	o.pngPath = filepath.Join(t.TempDir(), "wheel.png")
	o.pngSize = 300

	var out bytes.Buffer
	if err := run(context.Background(), testService(), o, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var result chart.Result
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode JSON output: %v", err)
	}
	if result.Chart == nil || len(result.Chart.Entries) != 13 {
		t.Fatalf("unexpected chart: %+v", result.Chart)
	}

	data, err := os.ReadFile(o.pngPath)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output file is not a PNG")
	}
}

func TestRunErrors(t *testing.T) {
	o := j2000Options()
	o.houses = "koch"
	if err := run(context.Background(), testService(), o, io.Discard); err == nil {
		t.Error("expected error for unknown house system")
	}

	o = j2000Options()
	o.city = "Atlantis"
	if err := run(context.Background(), testService(), o, io.Discard); err == nil {
		t.Error("expected error for unknown city")
	}
}

func TestRunRejectsNaNOffset(t *testing.T) {
	o, err := parseFlags([]string{"-year", "2000", "-month", "1", "-day", "1", "-hour", "12", "-tz", "NaN", "-city", "London"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	o.houses = "whole_sign"

	err = run(context.Background(), testService(), o, io.Discard)
	if !errors.Is(err, chart.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
