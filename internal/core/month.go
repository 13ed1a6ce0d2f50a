package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Month is a calendar month, formatted as YYYY-MM wherever it is used as a filter.
type Month struct {
	Year  int
	Month int // 1-12
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: int(now.Month())}
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(y) != 4 || len(m) != 2 {
		return Month{}, ErrInvalidMonth
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: year, Month: month}, nil
}

// ParseMonthOr parses s and falls back to def when s is empty or malformed.
func ParseMonthOr(s string, def Month) Month {
	m, err := ParseMonth(s)
	if err != nil {
		return def
	}
	return m
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Prev returns the previous month; January rolls over to December of the previous year.
func (m Month) Prev() Month {
	month, year := m.Month-1, m.Year
	if month == 0 {
		month = 12
		year--
	}
	return Month{Year: year, Month: month}
}

// Next returns the following month; December rolls over to January of the next year.
func (m Month) Next() Month {
	month, year := m.Month+1, m.Year
	if month == 13 {
		month = 1
		year++
	}
	return Month{Year: year, Month: month}
}

// DisplayName renders the month as "January 2024".
func (m Month) DisplayName() string {
	if m.Month < 1 || m.Month > 12 {
		return m.String()
	}
	return fmt.Sprintf("%s %d", monthNames[m.Month-1], m.Year)
}

// Contains reports whether d falls within the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && int(d.Time.Month()) == m.Month
}
