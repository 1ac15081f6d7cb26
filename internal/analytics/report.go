package analytics

import (
	"strconv"
	"time"

	"fintrack/internal/core"
)

type (
	// TopSpendingDay is a tagged variant keyed by the requested period.
	// For week periods Weekday carries the ISO weekday (1=Mon..7=Sun), for
	// month periods Date carries the UTC calendar date (YYYY-MM-DD), and for
	// year periods Month (0=Jan..11=Dec) and Year identify the bucket.
	TopSpendingDay struct {
		Period      Period  `json:"period"`
		Weekday     int     `json:"weekday,omitempty"`
		Date        string  `json:"date,omitempty"`
		Month       *int    `json:"month,omitempty"`
		Year        int     `json:"year,omitempty"`
		TotalAmount float64 `json:"totalAmount"`
	}

	// CategoryUsage counts how often a category appears and how much money
	// moved through it.
	CategoryUsage struct {
		Category    core.Category `json:"category"`
		Count       int           `json:"count"`
		TotalAmount float64       `json:"totalAmount"`
	}

	// IncomeVsExpenses sums deposits against withdrawals.
	IncomeVsExpenses struct {
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
	}

	// Report is the full periodic analytics result.
	Report struct {
		TopSpendingDay   TopSpendingDay   `json:"topSpendingDay"`
		AvgDailySpend    float64          `json:"avgDailySpend"`
		MostUsedCategory CategoryUsage    `json:"mostUsedCategory"`
		SavingRate       float64          `json:"savingRate"`
		IncomeVsExpenses IncomeVsExpenses `json:"incomeVsExpenses"`
	}
)

type spendBucket struct {
	day   TopSpendingDay
	total float64
}

// BuildReport computes the analytics report for a transaction snapshot that
// has already been filtered to the resolved range for period/anchor. It is
// total: an empty snapshot yields a zero-valued report whose top-spending-day
// variant still reflects the anchor, never an error. Tie-breaks for the
// most-used category and the top spending day go to the first-encountered
// entry, so input order matters for reproducibility.
func BuildReport(txs []core.Transaction, period Period, anchor time.Time) Report {
	if anchor.IsZero() {
		anchor = time.Now()
	}

	var income, expenses float64
	for _, tx := range txs {
		switch tx.Type {
		case core.Deposit:
			income += tx.Amount
		case core.Withdrawal:
			expenses += tx.Amount
		}
	}

	savingRate := 0.0
	if income > 0 {
		savingRate = (income - expenses) / income * 100
	}

	return Report{
		TopSpendingDay:   topSpendingDay(txs, period, anchor),
		AvgDailySpend:    avgDailySpend(txs, period, expenses),
		MostUsedCategory: mostUsedCategory(txs),
		SavingRate:       savingRate,
		IncomeVsExpenses: IncomeVsExpenses{Income: income, Expenses: expenses},
	}
}

func mostUsedCategory(txs []core.Transaction) CategoryUsage {
	idx := make(map[core.Category]int)
	usage := make([]CategoryUsage, 0)

	for _, tx := range txs {
		i, ok := idx[tx.Category]
		if !ok {
			i = len(usage)
			idx[tx.Category] = i
			usage = append(usage, CategoryUsage{Category: tx.Category})
		}
		usage[i].Count++
		usage[i].TotalAmount += tx.Amount
	}

	var top CategoryUsage
	for _, u := range usage {
		if u.Count > top.Count { // strict: first seen wins on ties
			top = u
		}
	}
	return top
}

// topSpendingDay buckets withdrawals by a period-specific key derived from
// the transaction's UTC timestamp and returns the bucket with the strictly
// largest sum. Without any withdrawals the variant falls back to the
// anchor's own weekday/date/month with a zero total.
func topSpendingDay(txs []core.Transaction, period Period, anchor time.Time) TopSpendingDay {
	keys := make([]string, 0)
	buckets := make(map[string]*spendBucket)

	for _, tx := range txs {
		if tx.Type != core.Withdrawal {
			continue
		}
		key, day := bucketFor(period, tx.CreatedAt.UTC())
		b, ok := buckets[key]
		if !ok {
			b = &spendBucket{day: day}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.total += tx.Amount
	}

	if len(keys) == 0 {
		_, day := bucketFor(period, anchor.UTC())
		return day
	}

	top := buckets[keys[0]]
	for _, key := range keys[1:] {
		if b := buckets[key]; b.total > top.total {
			top = b
		}
	}
	top.day.TotalAmount = top.total
	return top.day
}

func bucketFor(period Period, t time.Time) (string, TopSpendingDay) {
	switch period {
	case PeriodMonth:
		date := t.Format("2006-01-02")
		return date, TopSpendingDay{Period: PeriodMonth, Date: date}
	case PeriodYear:
		month := int(t.Month()) - 1 // 0-indexed, matching the wire format
		key := t.Format("2006-01")
		return key, TopSpendingDay{Period: PeriodYear, Month: &month, Year: t.Year()}
	default:
		wd := ISOWeekday(t)
		return strconv.Itoa(wd), TopSpendingDay{Period: PeriodWeek, Weekday: wd}
	}
}

// avgDailySpend divides total expenses by the period's day count: a fixed 7
// for weeks, the number of distinct UTC dates with any transaction for
// months, and the number of distinct year-months with any transaction for
// years (both at least 1 to keep the division defined).
func avgDailySpend(txs []core.Transaction, period Period, expenses float64) float64 {
	switch period {
	case PeriodMonth:
		return expenses / float64(distinctDays(txs, "2006-01-02"))
	case PeriodYear:
		return expenses / float64(distinctDays(txs, "2006-01"))
	default:
		return expenses / 7
	}
}

func distinctDays(txs []core.Transaction, layout string) int {
	seen := make(map[string]struct{})
	for _, tx := range txs {
		seen[tx.CreatedAt.UTC().Format(layout)] = struct{}{}
	}
	if len(seen) == 0 {
		return 1
	}
	return len(seen)
}
