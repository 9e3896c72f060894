// Package render draws a chart wheel as a raster image.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"birthchart-server/internal/chart"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultSize = 800

	// The wheel spans [-1,1] inside a [-1.1,1.1] view.
	viewExtent = 1.1

	signRadius   = 0.85
	houseRadius  = 0.6
	entryRadius  = 0.75
	markerPixels = 4
	dashPixels   = 8
)

var ErrNoChart = errors.New("render: no chart")

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ink        = color.RGBA{0x00, 0x00, 0x00, 0xff}
	houseInk   = color.RGBA{0x1f, 0x3f, 0xbf, 0xff}
	ascInk     = color.RGBA{0xd0, 0x10, 0x10, 0xff}

	aspectInk = map[chart.AspectKind]color.RGBA{
		chart.Conjunction: {0xe0, 0x9a, 0x00, 0xff},
		chart.Sextile:     {0x1e, 0x90, 0xff, 0xff},
		chart.Square:      {0xc0, 0x30, 0x30, 0xff},
		chart.Trine:       {0x2e, 0x8b, 0x57, 0xff},
		chart.Opposition:  {0x80, 0x30, 0xa0, 0xff},
	}
)

type Options struct {
	// Size is the edge length in pixels; zero means DefaultSize.
	Size int
}

type canvas struct {
	img  *image.RGBA
	size int
	face font.Face
}

// point maps unit-wheel polar coordinates to pixels. 0° points right and
// angles grow counter-clockwise.
func (c *canvas) point(radius, degrees float64) (float64, float64) {
	half := float64(c.size) / 2
	scale := half / viewExtent
	rad := degrees * math.Pi / 180
	return half + radius*math.Cos(rad)*scale, half - radius*math.Sin(rad)*scale
}

func (c *canvas) set(x, y int, col color.RGBA) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.SetRGBA(x, y, col)
	}
}

func (c *canvas) dot(x, y float64, r int, col color.RGBA) {
	cx, cy := int(math.Round(x)), int(math.Round(y))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.set(cx+dx, cy+dy, col)
			}
		}
	}
}

// line draws from (x0,y0) to (x1,y1); with dash > 0 it alternates dash
// pixels on and off.
func (c *canvas) line(x0, y0, x1, y1 float64, width int, dash int, col color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		c.dot(x0, y0, width/2, col)
		return
	}
	for i := 0; i <= steps; i++ {
		if dash > 0 && (i/dash)%2 == 1 {
			continue
		}
		t := float64(i) / float64(steps)
		c.dot(x0+(x1-x0)*t, y0+(y1-y0)*t, width/2, col)
	}
}

func (c *canvas) circle(radius float64, width int, col color.RGBA) {
	half := float64(c.size) / 2
	pixels := radius * half / viewExtent
	steps := int(math.Ceil(2 * math.Pi * pixels))
	for i := 0; i < steps; i++ {
		x, y := c.point(radius, 360*float64(i)/float64(steps))
		c.dot(x, y, width/2, col)
	}
}

// text draws s centred on (x,y).
func (c *canvas) text(x, y float64, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
	}
	width := d.MeasureString(s).Round()
	metrics := c.face.Metrics()
	ascent := metrics.Ascent.Round()
	height := ascent + metrics.Descent.Round()
	d.Dot = fixed.P(int(math.Round(x))-width/2, int(math.Round(y))-height/2+ascent)
	d.DrawString(s)
}

// Wheel draws the chart: boundary circle, sign labels, whole-sign house
// labels, the ascendant line, one marker per entry and a dashed line per
// aspect.
func Wheel(result *chart.Result, opts Options) (*image.RGBA, error) {
	if result == nil || result.Chart == nil {
		return nil, ErrNoChart
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	c := &canvas{
		img:  image.NewRGBA(image.Rect(0, 0, size, size)),
		size: size,
		face: basicfont.Face7x13,
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	lineWidth := max(2, size/400)
	c.circle(1, lineWidth, ink)

	for i, sign := range chart.Signs() {
		x, y := c.point(signRadius, float64(i*30+15))
		c.text(x, y, sign.Name, ink)
	}

	for i := 0; i < 12; i++ {
		x, y := c.point(houseRadius, float64(i*30+15))
		c.text(x, y, "H"+strconv.Itoa(i+1), houseInk)
	}

	positions := result.Chart.Map()
	for _, a := range result.Aspects {
		from, okA := positions[a.BodyA]
		to, okB := positions[a.BodyB]
		if !okA || !okB {
			continue
		}
		x0, y0 := c.point(entryRadius, from.Longitude)
		x1, y1 := c.point(entryRadius, to.Longitude)
		c.line(x0, y0, x1, y1, 1, dashPixels, aspectInk[a.Kind])
	}

	if asc, ok := result.Chart.Entry(chart.AscendantName); ok {
		cx, cy := c.point(0, 0)
		x, y := c.point(1, asc.Longitude)
		c.line(cx, cy, x, y, lineWidth, 0, ascInk)
		lx, ly := c.point(1.05, asc.Longitude)
		c.text(lx, ly, "ASC", ascInk)
	}

	// labels sit 0.05 wheel units above their marker
	labelOffset := 0.05 * float64(size) / 2 / viewExtent
	for _, e := range result.Chart.Entries {
		x, y := c.point(entryRadius, e.Longitude)
		c.dot(x, y, markerPixels, ink)
		c.text(x, y-labelOffset, e.Name, ink)
	}

	return c.img, nil
}

func EncodePNG(w io.Writer, result *chart.Result, opts Options) error {
	img, err := Wheel(result, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
