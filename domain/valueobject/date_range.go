package valueobject

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

const (
	maxDateRangeYears = 10
	day               = 24 * time.Hour
	dateLayout        = time.DateOnly
)

// DateRange is a closed interval [start, end] of at most ten years.
type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, domain.NewValidationError("date range", "start must not be after end")
	}

	if end.After(start.AddDate(maxDateRangeYears, 0, 0)) {
		return DateRange{}, domain.NewValidationError("date range", "must not span more than 10 years")
	}

	return DateRange{start: start, end: end}, nil
}

// ParseDateRange parses two YYYY-MM-DD dates in UTC.
func ParseDateRange(start, end string) (DateRange, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, domain.NewValidationError("date range", "invalid start date "+start)
	}

	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, domain.NewValidationError("date range", "invalid end date "+end)
	}

	return NewDateRange(startDate, endDate)
}

func SingleDay(date time.Time) DateRange {
	return DateRange{start: date, end: date}
}

// LastNDays covers the n days up to and including now.
func LastNDays(n int, now time.Time) (DateRange, error) {
	if n < 1 {
		return DateRange{}, domain.NewValidationError("date range", "needs at least one day")
	}

	return NewDateRange(now.AddDate(0, 0, -(n - 1)), now)
}

func (r DateRange) Start() time.Time {
	return r.start
}

func (r DateRange) End() time.Time {
	return r.end
}

func (r DateRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

// Days returns the number of full days between start and end.
func (r DateRange) Days() int {
	return int(r.Duration() / day)
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.start) && !t.After(r.end)
}

func (r DateRange) Overlaps(other DateRange) bool {
	return !r.start.After(other.end) && !other.start.After(r.end)
}

func (r DateRange) Equals(other DateRange) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

// String renders e.g. "2025-01-01 to 2025-01-31 (30 days)".
func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s (%d days)", r.start.Format(dateLayout), r.end.Format(dateLayout), r.Days())
}
