package shift

import (
	"context"

	"github.com/shopspring/decimal"
)

// Rates is the pair of prices frozen onto a shift.
type Rates struct {
	Hourly     decimal.Decimal
	PerPatient decimal.Decimal
}

// RateResolver reads the current prices of a shift type.
type RateResolver struct {
	types ShiftTypeRepository
}

func NewRateResolver(types ShiftTypeRepository) *RateResolver {
	return &RateResolver{types: types}
}

// Resolve fails with NotFound when the shift type is absent or deleted.
func (r *RateResolver) Resolve(ctx context.Context, shiftTypeID int64) (Rates, error) {
	st, err := r.types.GetByID(ctx, shiftTypeID)
	if err != nil {
		return Rates{}, err
	}
	return Rates{Hourly: st.Value, PerPatient: st.PatientValue}, nil
}
