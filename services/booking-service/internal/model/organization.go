package model

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for minimal container images
)

type Organization struct {
	ID           string
	Name         string
	Timezone     string
	WorkdayStart Clock
	WorkdayEnd   Clock
	UpdatedAt    time.Time
}

// Location resolves the organization's timezone, falling back to UTC.
func (o Organization) Location() *time.Location {
	if o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultOrganization is used until an administrator saves settings.
func DefaultOrganization(id string) Organization {
	return Organization{
		ID:           id,
		Name:         "My organization",
		Timezone:     "UTC",
		WorkdayStart: 8 * 60,
		WorkdayEnd:   18 * 60,
	}
}

// Clock is a time of day in minutes after midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On returns the instant at this clock on day's calendar date in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, day.Location())
}
