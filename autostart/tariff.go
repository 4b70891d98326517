package autostart

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeRange is a daily window, optionally limited to some weekdays. End
// before start means the window crosses midnight.
type TimeRange struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	Weekdays    []time.Weekday // empty means every day
}

// Tariff is a set of high tariff windows. Charging is only started outside
// of them.
type Tariff []TimeRange

// DefaultHighTariff is Monday to Friday 07:00-20:00.
func DefaultHighTariff() Tariff {
	return Tariff{
		{
			StartHour: 7,
			EndHour:   20,
			Weekdays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		},
	}
}

var weekdays = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// ParseTimeRange parses "7:00-20:00" or "7:00-20:00:Mon,Tue,Wed".
func ParseTimeRange(s string) (TimeRange, error) {
	var tr TimeRange

	parts := strings.Split(s, ":")
	var days string
	switch len(parts) {
	case 3:
	case 4:
		days = parts[3]
		parts = parts[:3]
	default:
		return tr, fmt.Errorf("invalid time range format: %s", s)
	}

	start, end, found := strings.Cut(strings.Join(parts, ":"), "-")
	if !found {
		return tr, fmt.Errorf("invalid time range format: %s", s)
	}
	var err error
	if tr.StartHour, tr.StartMinute, err = parseClock(start); err != nil {
		return tr, fmt.Errorf("invalid start time: %w", err)
	}
	if tr.EndHour, tr.EndMinute, err = parseClock(end); err != nil {
		return tr, fmt.Errorf("invalid end time: %w", err)
	}

	if days != "" {
		for _, name := range strings.Split(days, ",") {
			wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return tr, fmt.Errorf("invalid weekday: %s", name)
			}
			tr.Weekdays = append(tr.Weekdays, wd)
		}
	}
	return tr, nil
}

func parseClock(s string) (hour, minute int, err error) {
	h, m, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("%q is not HH:MM", s)
	}
	if hour, err = strconv.Atoi(h); err != nil || hour < 0 || hour > 24 {
		return 0, 0, fmt.Errorf("invalid hour %q", h)
	}
	if minute, err = strconv.Atoi(m); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", m)
	}
	return hour, minute, nil
}

// ParseTariff parses one TimeRange per entry. No entries yields
// DefaultHighTariff.
func ParseTariff(ranges []string) (Tariff, error) {
	if len(ranges) == 0 {
		return DefaultHighTariff(), nil
	}
	tariff := make(Tariff, 0, len(ranges))
	for _, s := range ranges {
		tr, err := ParseTimeRange(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse high tariff time '%s': %w", s, err)
		}
		tariff = append(tariff, tr)
	}
	return tariff, nil
}

func (tr TimeRange) contains(t time.Time) bool {
	if len(tr.Weekdays) > 0 {
		match := false
		for _, wd := range tr.Weekdays {
			if t.Weekday() == wd {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	current := t.Hour()*60 + t.Minute()
	start := tr.StartHour*60 + tr.StartMinute
	end := tr.EndHour*60 + tr.EndMinute
	if end < start {
		return current >= start || current < end
	}
	return current >= start && current < end
}

// IsHigh reports whether t falls into a high tariff window.
func (tf Tariff) IsHigh(t time.Time) bool {
	for _, tr := range tf {
		if tr.contains(t) {
			return true
		}
	}
	return false
}

// NextLow returns the first minute from t on that is not high tariff, or t
// itself if t already is low tariff. Within the next week there is always
// one unless the tariff covers every minute, in which case the zero time is
// returned.
func (tf Tariff) NextLow(t time.Time) time.Time {
	if !tf.IsHigh(t) {
		return t
	}
	t = t.Truncate(time.Minute)
	for i := 1; i <= 7*24*60; i++ {
		next := t.Add(time.Duration(i) * time.Minute)
		if !tf.IsHigh(next) {
			return next
		}
	}
	return time.Time{}
}

// Gate wraps fn so that it only runs outside high tariff windows. now is
// injectable for tests.
func (tf Tariff) Gate(now func() time.Time, fn func() error) func() error {
	return func() error {
		t := now()
		if tf.IsHigh(t) {
			log.Debugf("%s is high tariff, skipping charge attempt", t.Format("2006-01-02 15:04 Mon"))
			return nil
		}
		log.Info("low tariff period, checking if charging should start")
		return fn()
	}
}
