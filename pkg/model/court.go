package model

import (
	"fmt"
	"time"
)

const HoursLayout = "15:04"

type Court struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Opens           string    `json:"opens" bson:"opens" validate:"required,datetime=15:04"`
	Closes          string    `json:"closes" bson:"closes" validate:"required,datetime=15:04"`
	HourlyRateCents int64     `json:"hourly_rate_cents" bson:"hourly_rate_cents" validate:"min=0,max=1000000"`
	Active          bool      `json:"active" bson:"active"`
	BookingVersion  int64     `json:"-" bson:"booking_version"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

type CourtUpdate struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Opens           *string `json:"opens,omitempty" validate:"omitempty,datetime=15:04"`
	Closes          *string `json:"closes,omitempty" validate:"omitempty,datetime=15:04"`
	HourlyRateCents *int64  `json:"hourly_rate_cents,omitempty" validate:"omitempty,min=0,max=1000000"`
	Active          *bool   `json:"active,omitempty"`
}

// OperatingHours resolves the opening and closing instants of the court on the
// calendar day of date, in loc.
func (c Court) OperatingHours(date time.Time, loc *time.Location) (time.Time, time.Time, error) {
	opens, err := time.Parse(HoursLayout, c.Opens)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid opening time %q: %w", c.Opens, err)
	}
	closes, err := time.Parse(HoursLayout, c.Closes)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid closing time %q: %w", c.Closes, err)
	}

	local := date.In(loc)
	y, m, d := local.Date()
	openAt := time.Date(y, m, d, opens.Hour(), opens.Minute(), 0, 0, loc)
	closeAt := time.Date(y, m, d, closes.Hour(), closes.Minute(), 0, 0, loc)
	if !closeAt.After(openAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("closing time %s must be after opening time %s", c.Closes, c.Opens)
	}
	return openAt, closeAt, nil
}

// Covers reports whether [start, end) falls inside the court's operating hours.
func (c Court) Covers(start, end time.Time, loc *time.Location) bool {
	openAt, closeAt, err := c.OperatingHours(start, loc)
	if err != nil {
		return false
	}
	return !start.Before(openAt) && !end.After(closeAt)
}
