package records

import (
	"time"

	"github.com/olids-ncl/record-explorer/pkg/common/config"
)

// ResolveDateRange maps a picker label to an inclusive (from, to) pair using
// the current date. The general and medication option tables are configured
// separately and must not be mixed.
func ResolveDateRange(label string, table map[string]int) (*time.Time, *time.Time) {
	return ResolveDateRangeAt(label, table, time.Now())
}

// ResolveDateRangeAt returns (nil, nil) when the label maps to the all-time
// sentinel or is absent from the table; otherwise to = today and
// from = today - days.
func ResolveDateRangeAt(label string, table map[string]int, now time.Time) (*time.Time, *time.Time) {
	days := table[label]
	if days <= config.AllTime {
		return nil, nil
	}

	dateTo := dateOnly(now)
	dateFrom := dateTo.AddDate(0, 0, -days)
	return &dateFrom, &dateTo
}
