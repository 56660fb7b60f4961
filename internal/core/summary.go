package core

import "time"

// NoCategory is returned by TopCategory for an empty collection.
const NoCategory = "None"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// DayTotal is one bucket of a daily-totals window.
type DayTotal struct {
	Date  string `json:"date"`
	Total Money  `json:"total"`
}

// TotalSpent sums every record amount. The aggregator never mutates its
// input; a snapshot slice from the store is safe to pass directly.
func TotalSpent(records []Record) Money {
	var cents int64
	for _, r := range records {
		cents += r.Amount.Cents
	}
	return Money{Cents: cents}
}

// TopCategory returns the category with the highest summed amount.
// Ties break toward the category first encountered in insertion order;
// an empty collection yields NoCategory.
func TopCategory(records []Record) string {
	if len(records) == 0 {
		return NoCategory
	}
	totals := make(map[string]int64, len(records))
	var order []string
	for _, r := range records {
		if _, seen := totals[r.Category]; !seen {
			order = append(order, r.Category)
		}
		totals[r.Category] += r.Amount.Cents
	}
	top := order[0]
	for _, name := range order[1:] {
		if totals[name] > totals[top] {
			top = name
		}
	}
	return top
}

// DailyTotals buckets record amounts into exactly windowDays consecutive
// calendar days ending at reference (inclusive), in chronological order.
// Records dated outside the window, or with an unparseable date, touch
// no bucket at all.
func DailyTotals(records []Record, windowDays int, reference time.Time) []DayTotal {
	if windowDays <= 0 {
		return nil
	}
	end := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(windowDays - 1))

	totals := make([]DayTotal, windowDays)
	index := make(map[string]int, windowDays)
	for i := range totals {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		totals[i] = DayTotal{Date: day}
		index[day] = i
	}

	for _, r := range records {
		if _, err := ParseDate(r.Date); err != nil {
			continue
		}
		i, ok := index[r.Date]
		if !ok {
			continue
		}
		totals[i].Total.Cents += r.Amount.Cents
	}
	return totals
}
