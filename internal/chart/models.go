package chart

import (
	"bytes"
	"encoding/json"

	"birthchart-server/internal/geocode"
)

const (
	AscendantName = "Ascendant"
	MidheavenName = "Midheaven"
)

// Moment is a civil birth time. TZOffset is hours east of UTC.
type Moment struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Day      int     `json:"day"`
	Hour     int     `json:"hour"`
	Minute   float64 `json:"minute"`
	TZOffset float64 `json:"tz_offset"`
}

type Entry struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
	Glyph     string  `json:"glyph"`
	House     int     `json:"house"`
}

// Chart is one computed birth chart. Entries hold the 11 bodies followed by
// the Ascendant and Midheaven.
type Chart struct {
	Moment      Moment           `json:"moment"`
	Location    geocode.Location `json:"location"`
	JulianDay   float64          `json:"julian_day"`
	HouseSystem HouseSystem      `json:"house_system"`
	Entries     []Entry          `json:"entries"`
	Houses      []string         `json:"houses"`
	Cusps       []float64        `json:"cusps,omitempty"`
	CuspSystem  string           `json:"cusp_system,omitempty"`
}

func (c *Chart) Entry(name string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Map indexes the entries by name.
func (c *Chart) Map() map[string]Entry {
	out := make(map[string]Entry, len(c.Entries))
	for _, e := range c.Entries {
		out[e.Name] = e
	}
	return out
}

// Result is a chart together with its aspects.
type Result struct {
	Chart   *Chart   `json:"chart"`
	Aspects []Aspect `json:"aspects"`
}

// EntryMap renders entries as a JSON object keyed by name, in chart order.
type EntryMap []Entry

type entryJSON struct {
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
	Glyph     string  `json:"glyph"`
	House     int     `json:"house"`
	Formatted string  `json:"formatted"`
}

func (m EntryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entryJSON{
			Longitude: e.Longitude,
			Sign:      e.Sign,
			Glyph:     e.Glyph,
			House:     e.House,
			Formatted: FormatPosition(e.Longitude),
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
