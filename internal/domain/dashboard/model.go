package dashboard

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodTotal Period = "total"
)

// ParsePeriod falls back to PeriodTotal for anything it does not recognize.
func ParsePeriod(s string) Period {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p
	default:
		return PeriodTotal
	}
}

// Window is a half-open [From, To) range. The zero Window is unbounded.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Bounded() bool { return !w.From.IsZero() }

// bounds returns nil pointers for an unbounded window so the SQL can test
// them with IS NULL.
func (w Window) bounds() (*time.Time, *time.Time) {
	if !w.Bounded() {
		return nil, nil
	}
	return &w.From, &w.To
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday that opens t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// WindowFor returns the calendar window of period that contains now.
func WindowFor(p Period, now time.Time) Window {
	switch p {
	case PeriodDay:
		from := startOfDay(now)
		return Window{From: from, To: from.AddDate(0, 0, 1)}
	case PeriodWeek:
		from := startOfWeek(now)
		return Window{From: from, To: from.AddDate(0, 0, 7)}
	case PeriodMonth:
		from := startOfMonth(now)
		return Window{From: from, To: from.AddDate(0, 1, 0)}
	case PeriodYear:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Window{From: from, To: from.AddDate(1, 0, 0)}
	default:
		return Window{}
	}
}

// Bucket is one point of the evolution series.
type Bucket struct {
	Label string
	Window
}

// EvolutionBuckets lays out the evolution series for p, oldest first:
// the last 24 hours for a day, the last 7 days for a week, the last 4
// Monday-based weeks for a month, the last 12 months for a year and the
// last 6 months otherwise.
func EvolutionBuckets(p Period, now time.Time) []Bucket {
	var out []Bucket
	switch p {
	case PeriodDay:
		top := now.Truncate(time.Hour)
		for i := 23; i >= 0; i-- {
			from := top.Add(-time.Duration(i) * time.Hour)
			out = append(out, Bucket{Label: from.Format("15:00"), Window: Window{From: from, To: from.Add(time.Hour)}})
		}
	case PeriodWeek:
		today := startOfDay(now)
		for i := 6; i >= 0; i-- {
			from := today.AddDate(0, 0, -i)
			out = append(out, Bucket{Label: from.Format("Mon 02"), Window: Window{From: from, To: from.AddDate(0, 0, 1)}})
		}
	case PeriodMonth:
		week := startOfWeek(now)
		for i := 3; i >= 0; i-- {
			from := week.AddDate(0, 0, -7*i)
			out = append(out, Bucket{Label: fmt.Sprintf("Week %d", 4-i), Window: Window{From: from, To: from.AddDate(0, 0, 7)}})
		}
	case PeriodYear:
		out = monthBuckets(now, 12, "Jan")
	default:
		out = monthBuckets(now, 6, "Jan 2006")
	}
	return out
}

func monthBuckets(now time.Time, n int, layout string) []Bucket {
	month := startOfMonth(now)
	out := make([]Bucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		from := month.AddDate(0, -i, 0)
		out = append(out, Bucket{Label: from.Format(layout), Window: Window{From: from, To: from.AddDate(0, 1, 0)}})
	}
	return out
}

// Stats counts doctors, patients, pathologies and paid/unpaid shifts over
// all time; shifts, attentions and revenue over the requested period.
type Stats struct {
	DoctorsCount     int             `json:"doctors_count"`
	PatientsCount    int             `json:"patients_count"`
	PathologiesCount int             `json:"pathologies_count"`
	ShiftsCount      int             `json:"shifts_count"`
	AttentionsCount  int             `json:"attentions_count"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	PaidShifts       int             `json:"paid_shifts"`
	UnpaidShifts     int             `json:"unpaid_shifts"`
}

type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type DoctorSeries struct {
	Labels     []string          `json:"labels"`
	ShiftsData []int             `json:"shifts_data"`
	HoursData  []decimal.Decimal `json:"hours_data"`
}

type Charts struct {
	PeakHours      Series       `json:"peak_hours"`
	TopPathologies Series       `json:"top_pathologies"`
	TopDoctors     DoctorSeries `json:"top_doctors"`
	Evolution      Series       `json:"evolution"`
}

type NamedCount struct {
	Name  string
	Count int
}

type DoctorLoad struct {
	Name   string
	Shifts int
	Hours  decimal.Decimal
}
