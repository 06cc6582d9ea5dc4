package shift

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medshift/medshift/internal/platform/apperr"
)

// ShiftType maps to the shift_types table. Value is the hourly rate and
// PatientValue the per-patient rate.
type ShiftType struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Value        decimal.Decimal `db:"value" json:"value"`
	PatientValue decimal.Decimal `db:"patient_value" json:"patient_value"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Shift maps to the shifts table. The rate snapshots are copied from the
// shift type whenever the shift is written and never follow later edits of
// the type.
type Shift struct {
	ID                     int64           `db:"id" json:"id"`
	DoctorID               int64           `db:"doctor_id" json:"doctor_id"`
	ShiftTypeID            int64           `db:"shift_type_id" json:"shift_type_id"`
	StartsAt               time.Time       `db:"starts_at" json:"starts_at"`
	EndsAt                 time.Time       `db:"ends_at" json:"ends_at"`
	HourlyRateSnapshot     decimal.Decimal `db:"hourly_rate_snapshot" json:"hourly_rate_snapshot"`
	PerPatientRateSnapshot decimal.Decimal `db:"per_patient_rate_snapshot" json:"per_patient_rate_snapshot"`
	TotalHours             decimal.Decimal `db:"total_hours" json:"total_hours"`
	PatientsCount          int             `db:"patients_count" json:"patients_count"`
	TotalAmount            decimal.Decimal `db:"total_amount" json:"total_amount"`
	Notes                  *string         `db:"notes" json:"notes"`
	PaidAt                 *time.Time      `db:"paid_at" json:"paid_at"`
	CreatedAt              time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at" json:"updated_at"`

	Attentions []*Attention `db:"-" json:"attentions,omitempty"`
}

// IsPaid reports whether the shift has been marked as paid.
func (s *Shift) IsPaid() bool { return s.PaidAt != nil }

// Attention is one patient visit inside a shift.
type Attention struct {
	ID               int64            `db:"id" json:"id"`
	ShiftID          int64            `db:"shift_id" json:"shift_id"`
	PatientID        int64            `db:"patient_id" json:"patient_id"`
	AttendedAt       time.Time        `db:"attended_at" json:"attended_at"`
	Notes            *string          `db:"notes" json:"notes"`
	PerPatientAmount *decimal.Decimal `db:"per_patient_amount" json:"per_patient_amount"`
	PathologyIDs     []int64          `db:"-" json:"pathologies"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// Input is the create/update payload for a shift and its attentions.
type Input struct {
	DoctorID    int64            `json:"doctor_id"`
	ShiftTypeID int64            `json:"shift_type_id"`
	StartsAt    time.Time        `json:"starts_at"`
	EndsAt      time.Time        `json:"ends_at"`
	Notes       *string          `json:"notes"`
	Attentions  []AttentionInput `json:"attentions"`
}

type AttentionInput struct {
	PatientID        int64            `json:"patient_id"`
	AttendedAt       time.Time        `json:"attended_at"`
	Notes            *string          `json:"notes"`
	PerPatientAmount *decimal.Decimal `json:"per_patient_amount"`
	Pathologies      []int64          `json:"pathologies"`
}

const maxNotesLen = 255

// MaxAmount is the largest value a NUMERIC(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// Validate checks the shape of the payload. Whether the referenced rows
// exist is checked later, inside the transaction.
func (in *Input) Validate() error {
	if in.DoctorID <= 0 {
		return apperr.Validation("doctor_id is required")
	}
	if in.ShiftTypeID <= 0 {
		return apperr.Validation("shift_type_id is required")
	}
	if in.StartsAt.IsZero() {
		return apperr.Validation("starts_at is required")
	}
	if in.EndsAt.IsZero() {
		return apperr.Validation("ends_at is required")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return apperr.Validation("ends_at must be after starts_at")
	}
	if in.Notes != nil && len(*in.Notes) > maxNotesLen {
		return apperr.Validation("notes must be at most %d characters", maxNotesLen)
	}
	for i, a := range in.Attentions {
		if a.PatientID <= 0 {
			return apperr.Validation("attentions[%d].patient_id is required", i)
		}
		if a.AttendedAt.IsZero() {
			return apperr.Validation("attentions[%d].attended_at is required", i)
		}
		if a.AttendedAt.Before(in.StartsAt) || a.AttendedAt.After(in.EndsAt) {
			return apperr.Validation("attentions[%d].attended_at must fall within the shift", i)
		}
		if a.Notes != nil && len(*a.Notes) > maxNotesLen {
			return apperr.Validation("attentions[%d].notes must be at most %d characters", i, maxNotesLen)
		}
		if a.PerPatientAmount != nil {
			if a.PerPatientAmount.IsNegative() {
				return apperr.Validation("attentions[%d].per_patient_amount cannot be negative", i)
			}
			amount := a.PerPatientAmount.Round(2)
			if amount.GreaterThan(MaxAmount) {
				return apperr.Validation("attentions[%d].per_patient_amount must be at most %s", i, MaxAmount.StringFixed(2))
			}
			// stored at 2 places, so totals are computed from the same value
			in.Attentions[i].PerPatientAmount = &amount
		}
		for _, pid := range a.Pathologies {
			if pid <= 0 {
				return apperr.Validation("attentions[%d].pathologies contains an invalid id", i)
			}
		}
	}
	return nil
}

// ListFilter narrows the shift listing. Month and Year apply together.
type ListFilter struct {
	DoctorID *int64
	Paid     *bool
	Month    int
	Year     int
}

// Range returns the [from, to) window selected by Month/Year, if any.
func (f ListFilter) Range() (from, to time.Time, ok bool) {
	if f.Month < 1 || f.Month > 12 || f.Year <= 0 {
		return time.Time{}, time.Time{}, false
	}
	from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), true
}
