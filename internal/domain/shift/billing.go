package shift

import (
	"time"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// TotalHours is the number of whole elapsed minutes between start and end
// divided by 60, rounded half away from zero to 2 places.
func TotalHours(start, end time.Time) decimal.Decimal {
	minutes := int64(end.Sub(start) / time.Minute)
	return decimal.NewFromInt(minutes).Div(minutesPerHour).Round(2)
}

// PatientAmount sums the per-patient charge of every attention, using the
// attention's override when set and the shift's snapshot otherwise.
func PatientAmount(attentions []AttentionInput, perPatientRate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range attentions {
		if a.PerPatientAmount != nil {
			total = total.Add(*a.PerPatientAmount)
			continue
		}
		total = total.Add(perPatientRate)
	}
	return total
}

// TotalAmount is hourlyRate * hours + patientAmount, kept at 2 places.
func TotalAmount(hourlyRate, hours, patientAmount decimal.Decimal) decimal.Decimal {
	return hourlyRate.Mul(hours).Add(patientAmount).Round(2)
}

// Totals holds the derived values written on a shift.
type Totals struct {
	Hours         decimal.Decimal
	PatientsCount int
	Amount        decimal.Decimal
}

// Compute derives hours, patient count and amount for a payload under the
// given rate snapshot.
func Compute(in *Input, rates Rates) Totals {
	hours := TotalHours(in.StartsAt, in.EndsAt)
	return Totals{
		Hours:         hours,
		PatientsCount: len(in.Attentions),
		Amount:        TotalAmount(rates.Hourly, hours, PatientAmount(in.Attentions, rates.PerPatient)),
	}
}
