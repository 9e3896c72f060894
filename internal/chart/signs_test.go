package chart

import (
	"math"
	"testing"
)

func TestSignIndex(t *testing.T) {
	tests := []struct {
		lon  float64
		want int
	}{
		{0, 0},
		{29.999, 0},
		{30.0, 1},
		{359.99, 11},
		{360, 0},
		{-0.5, 11},
		{725, 0},
		{280.37, 9},
	}
	for _, tt := range tests {
		if got := SignIndex(tt.lon); got != tt.want {
			t.Errorf("SignIndex(%v) = %d, want %d", tt.lon, got, tt.want)
		}
	}
}

func TestSignIndexPeriodic(t *testing.T) {
	for lon := 0.0; lon < 360; lon += 7.3 {
		if SignIndex(lon) != SignIndex(lon+360) {
			t.Fatalf("sign(%v) != sign(%v)", lon, lon+360)
		}
		if want := int(math.Floor(lon/30)) % 12; SignIndex(lon) != want {
			t.Fatalf("SignIndex(%v) = %d, want %d", lon, SignIndex(lon), want)
		}
	}
}

func TestSignsReturnsCopy(t *testing.T) {
	s := Signs()
	s[0].Name = "Changed"
	if Signs()[0].Name != "Aries" {
		t.Fatalf("catalog was mutated through Signs()")
	}
	if SignOf(45).Name != "Taurus" || SignOf(45).Glyph != "♉" {
		t.Fatalf("unexpected sign for 45°: %+v", SignOf(45))
	}
}
