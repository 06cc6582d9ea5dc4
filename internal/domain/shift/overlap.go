package shift

import (
	"context"
	"time"
)

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one instant. Touching endpoints count.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// OverlapValidator looks for live shifts of a doctor that intersect a range.
type OverlapValidator struct {
	shifts ShiftRepository
}

func NewOverlapValidator(shifts ShiftRepository) *OverlapValidator {
	return &OverlapValidator{shifts: shifts}
}

// HasOverlap ignores excludeID when it is zero.
func (v *OverlapValidator) HasOverlap(ctx context.Context, doctorID int64, startsAt, endsAt time.Time, excludeID int64) (bool, error) {
	ids, err := v.shifts.FindOverlapping(ctx, doctorID, startsAt, endsAt, excludeID)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}
