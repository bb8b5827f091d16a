package services

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"
)

// CalendarService answers working-time questions for utilization reporting.
// Bookings themselves are not constrained to business hours; the calendar
// only normalizes booked hours against available work hours.
type CalendarService struct {
	calendars map[string]*cal.BusinessCalendar
	country   string
}

func NewCalendarService(country string) *CalendarService {
	s := &CalendarService{
		calendars: make(map[string]*cal.BusinessCalendar),
		country:   country,
	}
	s.calendars["US"] = newCalendar("United States", us.Holidays...)
	s.calendars["GB"] = newCalendar("United Kingdom", gb.Holidays...)
	s.calendars["DE"] = newCalendar("Germany", de.Holidays...)
	s.calendars["FR"] = newCalendar("France", fr.Holidays...)
	s.calendars["JP"] = newCalendar("Japan", jp.Holidays...)
	s.calendars["AU"] = newCalendar("Australia", au.HolidaysNSW...)
	s.calendars["CA"] = newCalendar("Canada", ca.Holidays...)
	s.calendars["NL"] = newCalendar("Netherlands", nl.Holidays...)
	return s
}

func newCalendar(name string, holidays ...*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = name
	c.AddHoliday(holidays...)
	return c
}

func (s *CalendarService) calendar() *cal.BusinessCalendar {
	if c, ok := s.calendars[s.country]; ok {
		return c
	}
	return s.calendars["US"]
}

// IsWorkday reports whether t falls on a business day in the configured
// country.
func (s *CalendarService) IsWorkday(t time.Time) bool {
	return s.calendar().IsWorkday(t)
}

// WorkHoursBetween returns the business work hours available in [start, end)
// for one person in the configured country.
func (s *CalendarService) WorkHoursBetween(start, end time.Time) float64 {
	if !start.Before(end) {
		return 0
	}
	return s.calendar().WorkHoursInRange(start, end).Hours()
}
