package reports

import (
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/utils"
)

const dateLayout = "2006-01-02"

type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange reads inclusive yyyy-mm-dd bounds. Empty bounds default to the last 30 days.
func ParseDateRange(from string, to string) (DateRange, error) {
	now := time.Now().UTC()
	r := DateRange{
		From: now.AddDate(0, 0, -30).Truncate(24 * time.Hour),
		To:   now,
	}
	if v := strings.TrimSpace(from); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return r, utils.InvalidInput("from date %q must be yyyy-mm-dd", v)
		}
		r.From = t
	}
	if v := strings.TrimSpace(to); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return r, utils.InvalidInput("to date %q must be yyyy-mm-dd", v)
		}
		r.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if r.To.Before(r.From) {
		return r, utils.InvalidInput("to date must not be before from date")
	}
	return r, nil
}

func (r DateRange) String() string {
	return r.From.Format(dateLayout) + "_" + r.To.Format(dateLayout)
}
