package shift

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medshift/medshift/internal/platform/apperr"
	"github.com/medshift/medshift/internal/platform/db"
)

const overlapMessage = "doctor already has a shift assigned in the specified time range"

// PatientDirectory reports which patient ids do not exist.
type PatientDirectory interface {
	MissingPatients(ctx context.Context, ids []int64) ([]int64, error)
}

// ChangeListener runs after a shift mutation has committed.
type ChangeListener func(ctx context.Context)

// Service is the shift orchestrator. Every mutation runs in one transaction
// that serializes on the doctor row.
type Service struct {
	tx         db.TxManager
	types      ShiftTypeRepository
	shifts     ShiftRepository
	attentions AttentionRepository
	patients   PatientDirectory
	catalog    PathologyCatalog

	rates    *RateResolver
	overlap  *OverlapValidator
	manager  *AttentionManager
	onChange []ChangeListener

	now    func() time.Time
	logger zerolog.Logger
}

func NewService(
	tx db.TxManager,
	types ShiftTypeRepository,
	shifts ShiftRepository,
	attentions AttentionRepository,
	patients PatientDirectory,
	catalog PathologyCatalog,
	logger zerolog.Logger,
) *Service {
	return &Service{
		tx:         tx,
		types:      types,
		shifts:     shifts,
		attentions: attentions,
		patients:   patients,
		catalog:    catalog,
		rates:      NewRateResolver(types),
		overlap:    NewOverlapValidator(shifts),
		manager:    NewAttentionManager(attentions, catalog),
		now:        time.Now,
		logger:     logger.With().Str("component", "shift").Logger(),
	}
}

// OnChange registers fn to run after every committed shift mutation.
func (s *Service) OnChange(fn ChangeListener) {
	s.onChange = append(s.onChange, fn)
}

func (s *Service) changed(ctx context.Context) {
	for _, fn := range s.onChange {
		fn(ctx)
	}
}

// -- Shift Orchestrator --

// Create persists a shift and its attentions. Nothing is written when the
// doctor already has an overlapping shift.
func (s *Service) Create(ctx context.Context, in *Input) (*Shift, error) {
	var created *Shift
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rates, err := s.prepare(ctx, in, 0)
		if err != nil {
			return err
		}

		totals := Compute(in, rates)
		sh := &Shift{
			DoctorID:               in.DoctorID,
			ShiftTypeID:            in.ShiftTypeID,
			StartsAt:               in.StartsAt,
			EndsAt:                 in.EndsAt,
			HourlyRateSnapshot:     rates.Hourly,
			PerPatientRateSnapshot: rates.PerPatient,
			TotalHours:             totals.Hours,
			PatientsCount:          totals.PatientsCount,
			TotalAmount:            totals.Amount,
			Notes:                  in.Notes,
		}
		if err := s.shifts.Create(ctx, sh); err != nil {
			return err
		}

		atts, err := s.manager.Create(ctx, sh.ID, in.Attentions)
		if err != nil {
			return err
		}
		sh.Attentions = atts
		created = sh
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "create", in.DoctorID)
	}

	s.logger.Info().
		Int64("shift_id", created.ID).
		Int64("doctor_id", created.DoctorID).
		Str("total_hours", created.TotalHours.StringFixed(2)).
		Str("total_amount", created.TotalAmount.StringFixed(2)).
		Int("patients_count", created.PatientsCount).
		Msg("shift created")
	s.changed(ctx)
	return created, nil
}

// Update rewrites a shift from in. Rates are snapshotted again and the
// attention set is replaced as a whole, so attention ids change.
func (s *Service) Update(ctx context.Context, id int64, in *Input) (*Shift, error) {
	var updated *Shift
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		rates, err := s.prepare(ctx, in, id)
		if err != nil {
			return err
		}

		totals := Compute(in, rates)
		existing.DoctorID = in.DoctorID
		existing.ShiftTypeID = in.ShiftTypeID
		existing.StartsAt = in.StartsAt
		existing.EndsAt = in.EndsAt
		existing.HourlyRateSnapshot = rates.Hourly
		existing.PerPatientRateSnapshot = rates.PerPatient
		existing.TotalHours = totals.Hours
		existing.PatientsCount = totals.PatientsCount
		existing.TotalAmount = totals.Amount
		existing.Notes = in.Notes
		if err := s.shifts.Update(ctx, existing); err != nil {
			return err
		}

		if err := s.manager.Teardown(ctx, existing.Attentions); err != nil {
			return err
		}
		atts, err := s.manager.Create(ctx, id, in.Attentions)
		if err != nil {
			return err
		}
		existing.Attentions = atts
		updated = existing
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "update", in.DoctorID)
	}

	s.logger.Info().
		Int64("shift_id", id).
		Int64("doctor_id", updated.DoctorID).
		Str("total_amount", updated.TotalAmount.StringFixed(2)).
		Int("patients_count", updated.PatientsCount).
		Msg("shift updated")
	s.changed(ctx)
	return updated, nil
}

// Delete removes the attentions of a shift and then the shift.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.manager.Teardown(ctx, existing.Attentions); err != nil {
			return err
		}
		return s.shifts.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(err, "delete", 0)
	}

	s.logger.Info().Int64("shift_id", id).Msg("shift deleted")
	s.changed(ctx)
	return nil
}

// MarkAsPaid stamps paid_at with the current time, also for shifts that
// were already paid.
func (s *Service) MarkAsPaid(ctx context.Context, id int64) (*Shift, error) {
	var paid *Shift
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.shifts.MarkPaid(ctx, id, s.now()); err != nil {
			return err
		}
		sh, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		paid = sh
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "mark paid", 0)
	}

	s.logger.Info().Int64("shift_id", id).Msg("shift marked as paid")
	s.changed(ctx)
	return paid, nil
}

// prepare runs every check that must pass before a write: doctor lock,
// overlap, rate snapshot and referenced rows.
func (s *Service) prepare(ctx context.Context, in *Input, excludeID int64) (Rates, error) {
	if err := in.Validate(); err != nil {
		return Rates{}, err
	}
	if err := s.shifts.LockDoctor(ctx, in.DoctorID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Rates{}, apperr.Validation("doctor %d does not exist", in.DoctorID)
		}
		return Rates{}, err
	}

	overlapping, err := s.overlap.HasOverlap(ctx, in.DoctorID, in.StartsAt, in.EndsAt, excludeID)
	if err != nil {
		return Rates{}, err
	}
	if overlapping {
		return Rates{}, apperr.Conflict(overlapMessage)
	}

	rates, err := s.rates.Resolve(ctx, in.ShiftTypeID)
	if err != nil {
		return Rates{}, err
	}

	if err := s.checkReferences(ctx, in); err != nil {
		return Rates{}, err
	}
	return rates, nil
}

func (s *Service) checkReferences(ctx context.Context, in *Input) error {
	if len(in.Attentions) == 0 {
		return nil
	}
	var patientIDs, pathologyIDs []int64
	for _, a := range in.Attentions {
		patientIDs = append(patientIDs, a.PatientID)
		pathologyIDs = append(pathologyIDs, a.Pathologies...)
	}

	missing, err := s.patients.MissingPatients(ctx, patientIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Validation("unknown patient ids: %s", joinIDs(missing))
	}

	if len(pathologyIDs) > 0 {
		missing, err = s.catalog.MissingPathologies(ctx, pathologyIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperr.Validation("unknown pathology ids: %s", joinIDs(missing))
		}
	}
	return nil
}

// load fetches a live shift together with its attentions.
func (s *Service) load(ctx context.Context, id int64) (*Shift, error) {
	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	atts, err := s.attentions.ListByShift(ctx, id)
	if err != nil {
		return nil, err
	}
	sh.Attentions = atts
	return sh, nil
}

// fail logs a failed mutation and makes sure the caller sees an apperr kind.
func (s *Service) fail(err error, op string, doctorID int64) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		err = db.Classify(err, "shift")
	}

	evt := s.logger.Error()
	switch {
	case errors.Is(err, apperr.ErrConflict):
		evt = s.logger.Warn()
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotFound):
		evt = s.logger.Info()
	}
	evt.Err(err).Str("op", op).Int64("doctor_id", doctorID).Msg("shift mutation rejected")
	return err
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

// -- Reads --

func (s *Service) Get(ctx context.Context, id int64) (*Shift, error) {
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Shift, int, error) {
	return s.shifts.List(ctx, f, limit, offset)
}

// -- Shift Types --

func validateShiftType(st *ShiftType) error {
	st.Name = strings.TrimSpace(st.Name)
	st.Description = strings.TrimSpace(st.Description)
	if st.Name == "" {
		return apperr.Validation("name is required")
	}
	if st.Description == "" {
		return apperr.Validation("description is required")
	}
	if st.Value.IsNegative() {
		return apperr.Validation("value cannot be negative")
	}
	if st.PatientValue.IsNegative() {
		return apperr.Validation("patient_value cannot be negative")
	}
	st.Value = st.Value.Round(2)
	st.PatientValue = st.PatientValue.Round(2)
	if st.Value.GreaterThan(MaxAmount) || st.PatientValue.GreaterThan(MaxAmount) {
		return apperr.Validation("amounts must be at most %s", MaxAmount.StringFixed(2))
	}
	return nil
}

func (s *Service) CreateShiftType(ctx context.Context, st *ShiftType) error {
	if err := validateShiftType(st); err != nil {
		return err
	}
	return s.types.Create(ctx, st)
}

func (s *Service) GetShiftType(ctx context.Context, id int64) (*ShiftType, error) {
	return s.types.GetByID(ctx, id)
}

// UpdateShiftType changes rates for future shifts only.
func (s *Service) UpdateShiftType(ctx context.Context, st *ShiftType) error {
	if err := validateShiftType(st); err != nil {
		return err
	}
	return s.types.Update(ctx, st)
}

func (s *Service) DeleteShiftType(ctx context.Context, id int64) error {
	return s.types.Delete(ctx, id)
}

func (s *Service) ListShiftTypes(ctx context.Context, limit, offset int) ([]*ShiftType, int, error) {
	return s.types.List(ctx, limit, offset)
}
