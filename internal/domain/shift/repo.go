package shift

import (
	"context"
	"time"
)

type ShiftTypeRepository interface {
	Create(ctx context.Context, st *ShiftType) error
	GetByID(ctx context.Context, id int64) (*ShiftType, error)
	Update(ctx context.Context, st *ShiftType) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*ShiftType, int, error)
}

type ShiftRepository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id int64) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id int64) error
	MarkPaid(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Shift, int, error)
	// FindOverlapping returns the ids of live shifts of doctorID whose closed
	// interval intersects [startsAt, endsAt]. excludeID 0 excludes nothing.
	FindOverlapping(ctx context.Context, doctorID int64, startsAt, endsAt time.Time, excludeID int64) ([]int64, error)
	// LockDoctor takes a row lock on the doctor for the rest of the
	// transaction. It fails with NotFound for unknown or deleted doctors.
	LockDoctor(ctx context.Context, doctorID int64) error
}

type AttentionRepository interface {
	Create(ctx context.Context, a *Attention) error
	Delete(ctx context.Context, id int64) error
	// ListByShift returns the live attentions of a shift with their
	// pathology ids filled in.
	ListByShift(ctx context.Context, shiftID int64) ([]*Attention, error)
	AttachPathologies(ctx context.Context, attentionID int64, pathologyIDs []int64) error
	// DetachPathologies removes the given links, or every link when
	// pathologyIDs is empty.
	DetachPathologies(ctx context.Context, attentionID int64, pathologyIDs []int64) error
}
