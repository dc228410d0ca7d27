package booking

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Calendar evaluates "today" and scheduled instants in the organization's time zone.
type Calendar struct {
	Loc *time.Location
	Now func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Loc: loc, Now: time.Now}
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// CurrentTime is the calendar's clock reading.
func (c Calendar) CurrentTime() time.Time {
	return c.now()
}

func (c Calendar) loc() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}

// Today is the current calendar date as YYYY-MM-DD.
func (c Calendar) Today() string {
	return c.now().In(c.loc()).Format(DateLayout)
}

// BeforeToday compares at day granularity. Dates are zero-padded ISO strings, so they order lexically.
func (c Calendar) BeforeToday(date string) bool {
	return date < c.Today()
}

// ScheduledAt combines a booking's date and time-of-day in the organization's zone.
// An empty or malformed time is treated as the start of the day.
func (c Calendar) ScheduledAt(b *Booking) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, b.Date, c.loc())
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(TimeLayout, b.Time); err == nil {
		d = time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, c.loc())
	}
	return d, nil
}

// IsPast reports whether the booking's scheduled instant is strictly before now.
// A booking with an unreadable date is treated as past so it can never be approved.
func (c Calendar) IsPast(b *Booking) bool {
	at, err := c.ScheduledAt(b)
	if err != nil {
		return true
	}
	return at.Before(c.now())
}
