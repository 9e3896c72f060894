package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"birthchart-server/internal/chart"
)

func sampleResult() *chart.Result {
	c := &chart.Chart{
		Entries: []chart.Entry{
			{Name: "Sun", Longitude: 200, Sign: "Libra", House: 4},
			{Name: "Moon", Longitude: 20, Sign: "Aries", House: 10},
			{Name: chart.AscendantName, Longitude: 90, Sign: "Cancer", House: 1},
			{Name: chart.MidheavenName, Longitude: 0, Sign: "Aries", House: 10},
		},
	}
	return &chart.Result{Chart: c, Aspects: chart.FindAspects(c)}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, sampleResult(), Options{Size: 400}); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Fatalf("expected 400x400, got %v", b)
	}
}

func TestWheelDrawsAscendantLine(t *testing.T) {
	img, err := Wheel(sampleResult(), Options{Size: 400})
	if err != nil {
		t.Fatalf("Wheel failed: %v", err)
	}

	// ascendant at 90° runs straight up from the centre
	if got := img.RGBAAt(200, 127); got != ascInk {
		t.Errorf("expected ascendant colour at (200,127), got %v", got)
	}
	if got := img.RGBAAt(254, 200); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("expected background at (254,200), got %v", got)
	}
}

func TestWheelDrawsAspects(t *testing.T) {
	result := sampleResult()
	var opposition bool
	for _, a := range result.Aspects {
		if a.Kind == chart.Opposition && a.BodyA == "Sun" && a.BodyB == "Moon" {
			opposition = true
		}
	}
	if !opposition {
		t.Fatalf("fixture should contain a Sun/Moon opposition, got %+v", result.Aspects)
	}

	img, err := Wheel(result, Options{Size: 400})
	if err != nil {
		t.Fatalf("Wheel failed: %v", err)
	}

	found := false
	want := aspectInk[chart.Opposition]
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no opposition-coloured pixels drawn")
	}
}

func TestWheelDefaultSize(t *testing.T) {
	img, err := Wheel(sampleResult(), Options{})
	if err != nil {
		t.Fatalf("Wheel failed: %v", err)
	}
	if img.Bounds().Dx() != DefaultSize {
		t.Fatalf("expected default size %d, got %d", DefaultSize, img.Bounds().Dx())
	}
}

func TestWheelRequiresChart(t *testing.T) {
	if _, err := Wheel(nil, Options{}); !errors.Is(err, ErrNoChart) {
		t.Fatalf("expected ErrNoChart, got %v", err)
	}
}
