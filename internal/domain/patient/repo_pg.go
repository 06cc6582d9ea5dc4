package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medshift/medshift/internal/platform/db"
)

// missingIDs returns the members of want that are absent from found,
// preserving order and dropping duplicates.
func missingIDs(want []int64, found map[int64]bool) []int64 {
	var out []int64
	seen := make(map[int64]bool, len(want))
	for _, id := range want {
		if found[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func liveIDs(ctx context.Context, q db.Queryable, table string, ids []int64) (map[int64]bool, error) {
	rows, err := q.Query(ctx,
		`SELECT id FROM `+table+` WHERE id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	return found, rows.Err()
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

const patientCols = `id, name, dni, phone, address, health_insurance, email, gender, birth_date,
	created_at, updated_at`

func (r *patientRepoPG) scan(row pgx.Row) (*Patient, error) {
	var (
		p     Patient
		birth *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.DNI, &p.Phone, &p.Address, &p.HealthInsurance, &p.Email,
		&p.Gender, &birth, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if birth != nil {
		p.BirthDate = &Date{Time: *birth}
	}
	return &p, nil
}

func birthArg(p *Patient) *time.Time {
	if p.BirthDate == nil || p.BirthDate.IsZero() {
		return nil
	}
	return &p.BirthDate.Time
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (name, dni, phone, address, health_insurance, email, gender, birth_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		p.Name, p.DNI, p.Phone, p.Address, p.HealthInsurance, p.Email, p.Gender, birthArg(p),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return db.Classify(err, "patient")
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, db.Classify(err, "patient")
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET name=$2, dni=$3, phone=$4, address=$5, health_insurance=$6, email=$7,
			gender=$8, birth_date=$9, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.DNI, p.Phone, p.Address, p.HealthInsurance, p.Email, p.Gender, birthArg(p),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return db.Classify(err, "patient")
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return db.Classify(err, "patient")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "patient")
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1
	if query != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR dni ILIKE $%d)`, idx, idx)
		args = append(args, "%"+query+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify(err, "patient")
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients`+where+
		fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, idx, idx+1), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, db.Classify(err, "patient")
	}
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, db.Classify(err, "patient")
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := liveIDs(ctx, r.conn(ctx), "patients", ids)
	if err != nil {
		return nil, db.Classify(err, "patient")
	}
	return missingIDs(ids, found), nil
}

// =========== Pathology Repository ===========

type pathologyRepoPG struct{ pool *pgxpool.Pool }

func NewPathologyRepoPG(pool *pgxpool.Pool) PathologyRepository { return &pathologyRepoPG{pool: pool} }

func (r *pathologyRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

const pathologyCols = `id, name, description, is_protected, created_at, updated_at`

func (r *pathologyRepoPG) scan(row pgx.Row) (*Pathology, error) {
	var p Pathology
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.IsProtected, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pathologyRepoPG) Create(ctx context.Context, p *Pathology) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pathologies (name, description) VALUES ($1,$2)
		RETURNING id, is_protected, created_at, updated_at`,
		p.Name, p.Description,
	).Scan(&p.ID, &p.IsProtected, &p.CreatedAt, &p.UpdatedAt)
	return db.Classify(err, "pathology")
}

func (r *pathologyRepoPG) GetByID(ctx context.Context, id int64) (*Pathology, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pathologyCols+` FROM pathologies WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, db.Classify(err, "pathology")
	}
	return p, nil
}

// Update and Delete refuse protected rows in SQL as well; the service
// checks first so callers get a Protected error instead of NotFound.
func (r *pathologyRepoPG) Update(ctx context.Context, p *Pathology) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE pathologies SET name=$2, description=$3, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL AND NOT is_protected
		RETURNING is_protected, created_at, updated_at`,
		p.ID, p.Name, p.Description,
	).Scan(&p.IsProtected, &p.CreatedAt, &p.UpdatedAt)
	return db.Classify(err, "pathology")
}

func (r *pathologyRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pathologies SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND NOT is_protected`, id)
	if err != nil {
		return db.Classify(err, "pathology")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "pathology")
	}
	return nil
}

func (r *pathologyRepoPG) List(ctx context.Context, query string, limit, offset int) ([]*Pathology, int, error) {
	where := ` WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1
	if query != "" {
		where += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+query+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pathologies`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify(err, "pathology")
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+pathologyCols+` FROM pathologies`+where+
		fmt.Sprintf(` ORDER BY id ASC LIMIT $%d OFFSET $%d`, idx, idx+1), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, db.Classify(err, "pathology")
	}
	defer rows.Close()
	items := []*Pathology{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, db.Classify(err, "pathology")
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *pathologyRepoPG) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := liveIDs(ctx, r.conn(ctx), "pathologies", ids)
	if err != nil {
		return nil, db.Classify(err, "pathology")
	}
	return missingIDs(ids, found), nil
}

func (r *pathologyRepoPG) FirstProtected(ctx context.Context) (*Pathology, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+pathologyCols+` FROM pathologies
		WHERE is_protected AND deleted_at IS NULL ORDER BY id ASC LIMIT 1`))
	if err != nil {
		return nil, db.Classify(err, "protected pathology")
	}
	return p, nil
}
