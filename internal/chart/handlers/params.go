package handlers

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"birthchart-server/internal/chart"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/validation"
)

// chartParams is the birth data accepted by the chart endpoints, from the
// query string or a JSON body.
type chartParams struct {
	Year        *int    `json:"year" validate:"required,min=1,max=9999"`
	Month       *int    `json:"month" validate:"required,min=1,max=12"`
	Day         *int    `json:"day" validate:"required,min=1,max=31"`
	Hour        *int    `json:"hour" validate:"required,min=0,max=23"`
	Minute      float64 `json:"minute" default:"0" validate:"gte=0,lt=60"`
	TZOffset    float64 `json:"tz_offset" default:"0" validate:"gte=-12,lte=14"`
	City        string  `json:"city" validate:"required,max=255"`
	HouseSystem string  `json:"house_system" validate:"omitempty,oneof=whole_sign placidus"`
}

func invalidParam(name, raw, kind string) error {
	return errors.WrapValidation(
		fmt.Sprintf("%s must be %s, got %q", name, kind, raw),
		fmt.Errorf("%w: %s=%q", chart.ErrInvalidParameter, name, raw),
	)
}

func intParam(values url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParam(name, raw, "an integer")
	}
	return &v, nil
}

func floatParam(values url.Values, name string, dest *float64) error {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidParam(name, raw, "a number")
	}
	*dest = v
	return nil
}

func parseChartQuery(values url.Values) (*chartParams, error) {
	p := &chartParams{
		City:        strings.TrimSpace(values.Get("city")),
		HouseSystem: strings.TrimSpace(values.Get("house_system")),
	}

	ints := []struct {
		name string
		dest **int
	}{
		{"year", &p.Year},
		{"month", &p.Month},
		{"day", &p.Day},
		{"hour", &p.Hour},
	}
	for _, f := range ints {
		v, err := intParam(values, f.name)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}
	if err := floatParam(values, "minute", &p.Minute); err != nil {
		return nil, err
	}
	if err := floatParam(values, "tz_offset", &p.TZOffset); err != nil {
		return nil, err
	}

	return p, nil
}

// request validates the params and converts them for the chart service.
func (p *chartParams) request(ctx context.Context) (chart.Request, error) {
	if err := validation.Struct(ctx, p); err != nil {
		return chart.Request{}, err
	}

	req := chart.Request{
		Moment: chart.Moment{
			Year:     *p.Year,
			Month:    *p.Month,
			Day:      *p.Day,
			Hour:     *p.Hour,
			Minute:   p.Minute,
			TZOffset: p.TZOffset,
		},
		City: p.City,
	}

	if p.HouseSystem != "" {
		system, err := chart.ParseHouseSystem(p.HouseSystem)
		if err != nil {
			return chart.Request{}, errors.WrapValidation(err.Error(), err)
		}
		req.HouseSystem = &system
	}

	return req, nil
}
