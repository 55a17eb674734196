package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrGridChanged signals that a field arrived on a different grid than the
// one resolved from the run's first field. The grid is fixed per run.
var ErrGridChanged = errors.New("grid definition changed mid-run")

// UnsupportedGridError is returned when the grid family of a forecast file
// is outside the set nearest-gridpoint extraction is defined for.
type UnsupportedGridError struct {
	Type GridType
}

func (e *UnsupportedGridError) Error() string {
	return fmt.Sprintf("unsupported grid type %q", e.Type)
}

// TimeMismatchError is returned when a field's embedded reference date or
// forecast lead hour disagrees with the snapshot's expected values,
// indicating misordered files or files from the wrong run.
type TimeMismatchError struct {
	Code         string
	RefDate      time.Time
	LeadHour     int
	WantDate     time.Time
	WantLeadHour int
}

func (e *TimeMismatchError) Error() string {
	return fmt.Sprintf("field %s: reference date %s lead %dh, expected %s lead %dh",
		e.Code, e.RefDate.Format("2006-01-02"), e.LeadHour,
		e.WantDate.Format("2006-01-02"), e.WantLeadHour)
}

// UnitMismatchError is returned when a field declares a unit other than the
// one its variable is contractually expected to carry.
type UnitMismatchError struct {
	Code string
	Unit string
	Want string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("expected %s to have units %s but received %s", e.Code, e.Want, e.Unit)
}

// PressureCoordinateDriftError is returned when a snapshot reports an
// isobaric pressure outside the coordinate fixed by the run's first
// isobaric snapshot.
type PressureCoordinateDriftError struct {
	Code     string
	Pressure float64
}

func (e *PressureCoordinateDriftError) Error() string {
	return fmt.Sprintf("field %s at %.0f Pa is outside the established pressure coordinate", e.Code, e.Pressure)
}
