package services

import (
	"time"

	"go-optics-pos/internal/models"
)

// DateRange is an inclusive YYYY-MM-DD range. An empty bound is open.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (r DateRange) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// bounds returns the range with open ends replaced by sentinels that sort
// before and after every real date.
func (r DateRange) bounds() (string, string) {
	from, to := r.From, r.To
	if from == "" {
		from = "0000-00-00"
	}
	if to == "" {
		to = "9999-99-99"
	}
	return from, to
}

const (
	PeriodCurrentMonth = "current-month"
	PeriodLastMonth    = "last-month"
	PeriodAllTime      = "all-time"
)

// LedgerRange resolves the sales ledger filter. An explicit start or end wins
// over the named period; calendar months are used for the month periods.
func LedgerRange(period, start, end string, now time.Time) (DateRange, error) {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return DateRange{}, validationf("invalid date %q, want YYYY-MM-DD", d)
		}
	}
	if start != "" || end != "" {
		if start != "" && end != "" && start > end {
			return DateRange{}, validationf("start %s is after end %s", start, end)
		}
		return DateRange{From: start, To: end}, nil
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch period {
	case "", PeriodAllTime, "all":
		return DateRange{}, nil
	case PeriodCurrentMonth:
		return monthRange(first), nil
	case PeriodLastMonth:
		return monthRange(first.AddDate(0, -1, 0)), nil
	}
	return DateRange{}, validationf("unknown period %q", period)
}

func monthRange(first time.Time) DateRange {
	last := first.AddDate(0, 1, -1)
	return DateRange{From: first.Format(models.DateLayout), To: last.Format(models.DateLayout)}
}

// TrailingRange resolves the dashboard filter: the last week, month, quarter or
// year up to today, or everything.
func TrailingRange(period string, now time.Time) (DateRange, error) {
	var from time.Time
	switch period {
	case "", "all":
		return DateRange{}, nil
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	case "quarter":
		from = now.AddDate(0, -3, 0)
	case "year":
		from = now.AddDate(-1, 0, 0)
	default:
		return DateRange{}, validationf("unknown period %q", period)
	}
	return DateRange{From: from.Format(models.DateLayout)}, nil
}
