package chart

import "errors"

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEphemeris        = errors.New("ephemeris error")
	ErrChartNotFound    = errors.New("saved chart not found")
)
