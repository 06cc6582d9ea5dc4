package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medshift/medshift/internal/platform/db"
)

// =========== Shift Type Repository ===========

type shiftTypeRepoPG struct{ pool *pgxpool.Pool }

func NewShiftTypeRepoPG(pool *pgxpool.Pool) ShiftTypeRepository { return &shiftTypeRepoPG{pool: pool} }

func (r *shiftTypeRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

const shiftTypeCols = `id, name, description, value, patient_value, created_at, updated_at`

func (r *shiftTypeRepoPG) scan(row pgx.Row) (*ShiftType, error) {
	var st ShiftType
	err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Value, &st.PatientValue, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *shiftTypeRepoPG) Create(ctx context.Context, st *ShiftType) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shift_types (name, description, value, patient_value)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`,
		st.Name, st.Description, st.Value, st.PatientValue,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	return db.Classify(err, "shift type")
}

func (r *shiftTypeRepoPG) GetByID(ctx context.Context, id int64) (*ShiftType, error) {
	st, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+shiftTypeCols+` FROM shift_types WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, db.Classify(err, "shift type")
	}
	return st, nil
}

func (r *shiftTypeRepoPG) Update(ctx context.Context, st *ShiftType) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE shift_types SET name=$2, description=$3, value=$4, patient_value=$5, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		st.ID, st.Name, st.Description, st.Value, st.PatientValue,
	).Scan(&st.CreatedAt, &st.UpdatedAt)
	return db.Classify(err, "shift type")
}

func (r *shiftTypeRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE shift_types SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return db.Classify(err, "shift type")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "shift type")
	}
	return nil
}

func (r *shiftTypeRepoPG) List(ctx context.Context, limit, offset int) ([]*ShiftType, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM shift_types WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, db.Classify(err, "shift type")
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+shiftTypeCols+` FROM shift_types
		WHERE deleted_at IS NULL ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, "shift type")
	}
	defer rows.Close()
	items := []*ShiftType{}
	for rows.Next() {
		st, err := r.scan(rows)
		if err != nil {
			return nil, 0, db.Classify(err, "shift type")
		}
		items = append(items, st)
	}
	return items, total, rows.Err()
}

// =========== Shift Repository ===========

type shiftRepoPG struct{ pool *pgxpool.Pool }

func NewShiftRepoPG(pool *pgxpool.Pool) ShiftRepository { return &shiftRepoPG{pool: pool} }

func (r *shiftRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

const shiftCols = `id, doctor_id, shift_type_id, starts_at, ends_at, hourly_rate_snapshot,
	per_patient_rate_snapshot, total_hours, patients_count, total_amount, notes, paid_at,
	created_at, updated_at`

func (r *shiftRepoPG) scan(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.DoctorID, &s.ShiftTypeID, &s.StartsAt, &s.EndsAt, &s.HourlyRateSnapshot,
		&s.PerPatientRateSnapshot, &s.TotalHours, &s.PatientsCount, &s.TotalAmount, &s.Notes, &s.PaidAt,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepoPG) Create(ctx context.Context, s *Shift) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shifts (doctor_id, shift_type_id, starts_at, ends_at, hourly_rate_snapshot,
			per_patient_rate_snapshot, total_hours, patients_count, total_amount, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		s.DoctorID, s.ShiftTypeID, s.StartsAt, s.EndsAt, s.HourlyRateSnapshot,
		s.PerPatientRateSnapshot, s.TotalHours, s.PatientsCount, s.TotalAmount, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return db.Classify(err, "shift")
}

func (r *shiftRepoPG) GetByID(ctx context.Context, id int64) (*Shift, error) {
	s, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+shiftCols+` FROM shifts WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, db.Classify(err, "shift")
	}
	return s, nil
}

func (r *shiftRepoPG) Update(ctx context.Context, s *Shift) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE shifts SET doctor_id=$2, shift_type_id=$3, starts_at=$4, ends_at=$5,
			hourly_rate_snapshot=$6, per_patient_rate_snapshot=$7, total_hours=$8,
			patients_count=$9, total_amount=$10, notes=$11, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		s.ID, s.DoctorID, s.ShiftTypeID, s.StartsAt, s.EndsAt, s.HourlyRateSnapshot,
		s.PerPatientRateSnapshot, s.TotalHours, s.PatientsCount, s.TotalAmount, s.Notes,
	).Scan(&s.UpdatedAt)
	return db.Classify(err, "shift")
}

func (r *shiftRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE shifts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return db.Classify(err, "shift")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "shift")
	}
	return nil
}

func (r *shiftRepoPG) MarkPaid(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE shifts SET paid_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return db.Classify(err, "shift")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "shift")
	}
	return nil
}

func (r *shiftRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Shift, int, error) {
	where := ` WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	if f.DoctorID != nil {
		where += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}
	if f.Paid != nil {
		if *f.Paid {
			where += ` AND paid_at IS NOT NULL`
		} else {
			where += ` AND paid_at IS NULL`
		}
	}
	if from, to, ok := f.Range(); ok {
		where += fmt.Sprintf(` AND starts_at >= $%d AND starts_at < $%d`, idx, idx+1)
		args = append(args, from, to)
		idx += 2
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM shifts`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify(err, "shift")
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+shiftCols+` FROM shifts`+where+
		fmt.Sprintf(` ORDER BY starts_at DESC, id DESC LIMIT $%d OFFSET $%d`, idx, idx+1),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, db.Classify(err, "shift")
	}
	defer rows.Close()
	items := []*Shift{}
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, db.Classify(err, "shift")
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *shiftRepoPG) FindOverlapping(ctx context.Context, doctorID int64, startsAt, endsAt time.Time, excludeID int64) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id FROM shifts
		WHERE doctor_id = $1 AND deleted_at IS NULL
			AND starts_at <= $3 AND ends_at >= $2
			AND ($4::bigint = 0 OR id <> $4)
		ORDER BY starts_at`,
		doctorID, startsAt, endsAt, excludeID)
	if err != nil {
		return nil, db.Classify(err, "shift")
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, db.Classify(err, "shift")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *shiftRepoPG) LockDoctor(ctx context.Context, doctorID int64) error {
	var id int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id FROM doctors WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, doctorID).Scan(&id)
	return db.Classify(err, "doctor")
}

// =========== Attention Repository ===========

type attentionRepoPG struct{ pool *pgxpool.Pool }

func NewAttentionRepoPG(pool *pgxpool.Pool) AttentionRepository { return &attentionRepoPG{pool: pool} }

func (r *attentionRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

func (r *attentionRepoPG) Create(ctx context.Context, a *Attention) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO attentions (shift_id, patient_id, attended_at, notes, per_patient_amount)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		a.ShiftID, a.PatientID, a.AttendedAt, a.Notes, a.PerPatientAmount,
	).Scan(&a.ID, &a.CreatedAt)
	return db.Classify(err, "attention")
}

func (r *attentionRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE attentions SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return db.Classify(err, "attention")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "attention")
	}
	return nil
}

func (r *attentionRepoPG) ListByShift(ctx context.Context, shiftID int64) ([]*Attention, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.shift_id, a.patient_id, a.attended_at, a.notes, a.per_patient_amount, a.created_at,
			COALESCE(array_agg(ap.pathology_id ORDER BY ap.pathology_id)
				FILTER (WHERE ap.pathology_id IS NOT NULL), '{}')
		FROM attentions a
		LEFT JOIN attention_pathology ap ON ap.attention_id = a.id
		WHERE a.shift_id = $1 AND a.deleted_at IS NULL
		GROUP BY a.id
		ORDER BY a.attended_at, a.id`, shiftID)
	if err != nil {
		return nil, db.Classify(err, "attention")
	}
	defer rows.Close()
	items := []*Attention{}
	for rows.Next() {
		var a Attention
		if err := rows.Scan(&a.ID, &a.ShiftID, &a.PatientID, &a.AttendedAt, &a.Notes,
			&a.PerPatientAmount, &a.CreatedAt, &a.PathologyIDs); err != nil {
			return nil, db.Classify(err, "attention")
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *attentionRepoPG) AttachPathologies(ctx context.Context, attentionID int64, pathologyIDs []int64) error {
	if len(pathologyIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO attention_pathology (attention_id, pathology_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, attentionID, pathologyIDs)
	return db.Classify(err, "attention pathology")
}

func (r *attentionRepoPG) DetachPathologies(ctx context.Context, attentionID int64, pathologyIDs []int64) error {
	var err error
	if len(pathologyIDs) == 0 {
		_, err = r.conn(ctx).Exec(ctx, `DELETE FROM attention_pathology WHERE attention_id = $1`, attentionID)
	} else {
		_, err = r.conn(ctx).Exec(ctx,
			`DELETE FROM attention_pathology WHERE attention_id = $1 AND pathology_id = ANY($2)`,
			attentionID, pathologyIDs)
	}
	return db.Classify(err, "attention pathology")
}
