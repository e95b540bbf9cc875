// Package calendar maps instants to calendar days in the tracker's fixed
// reference timezone.
package calendar

import (
	"fmt"
	"strings"
	"time"

	// Embedded IANA database so DST transitions do not depend on the host.
	_ "time/tzdata"
)

const (
	ReferenceZone = "America/Los_Angeles"
	DayLayout     = "2006-01-02"
)

// Clock returns the current instant.
type Clock func() time.Time

type Calendar struct {
	loc *time.Location
	now Clock
}

// New returns a Calendar for loc. A nil clock defaults to time.Now.
func New(loc *time.Location, now Clock) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// NewReference returns a Calendar anchored to ReferenceZone.
func NewReference(now Clock) (*Calendar, error) {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ReferenceZone, err)
	}
	return New(loc, now), nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) Now() time.Time {
	return c.now()
}

// DayKey formats t as YYYY-MM-DD in the reference timezone.
func (c *Calendar) DayKey(t time.Time) string {
	return t.In(c.loc).Format(DayLayout)
}

func (c *Calendar) Today() string {
	return c.DayKey(c.now())
}

// Yesterday is the calendar day before Today. It steps back one local calendar
// day rather than 24 hours so 23h and 25h DST days resolve correctly.
func (c *Calendar) Yesterday() string {
	return c.now().In(c.loc).AddDate(0, 0, -1).Format(DayLayout)
}

// StartOfDay returns local midnight of the day containing t.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// NextMidnight returns the first local midnight strictly after t.
func (c *Calendar) NextMidnight(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, 1)
}

// ParseDay validates a YYYY-MM-DD key and returns local midnight of that day.
func (c *Calendar) ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, c.loc)
}

// ResolveDay accepts a day key or one of "", "today" and "yesterday", and
// returns the matching day key.
func (c *Calendar) ResolveDay(day string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		return c.Yesterday(), nil
	}
	if _, err := c.ParseDay(day); err != nil {
		return "", err
	}
	return day, nil
}
