package ledger

import (
	"fmt"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
)

// NextDate returns the next occurrence after start for the given interval.
// Monthly and yearly steps use time.Time.AddDate, so an out-of-range
// day-of-month normalizes forward (Jan 31 + 1 month = Mar 2/3 depending on
// leap year). Unknown intervals are an error, never a silent no-op.
func NextDate(start time.Time, interval domain.RecurringInterval) (time.Time, error) {
	switch interval {
	case domain.IntervalDaily:
		return start.AddDate(0, 0, 1), nil
	case domain.IntervalWeekly:
		return start.AddDate(0, 0, 7), nil
	case domain.IntervalMonthly:
		return start.AddDate(0, 1, 0), nil
	case domain.IntervalYearly:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown recurring interval %q", domain.ErrInvalidInput, interval)
	}
}

// nextRecurringDate derives the stored NextRecurringDate field. It is non-nil
// iff the transaction is recurring and carries an interval; the interval is
// always applied to the submitted date, not any previously stored one.
func nextRecurringDate(isRecurring bool, interval *domain.RecurringInterval, date time.Time) (*time.Time, error) {
	if !isRecurring || interval == nil {
		return nil, nil
	}
	next, err := NextDate(date, *interval)
	if err != nil {
		return nil, err
	}
	return &next, nil
}
