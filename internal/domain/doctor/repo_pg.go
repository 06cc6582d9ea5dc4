package doctor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medshift/medshift/internal/platform/db"
)

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

const doctorCols = `id, name, age, email, phone, address, is_resident, created_at, updated_at`

func (r *doctorRepoPG) scan(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Age, &d.Email, &d.Phone, &d.Address, &d.IsResident,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (name, age, email, phone, address, is_resident)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		d.Name, d.Age, d.Email, d.Phone, d.Address, d.IsResident,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return db.Classify(err, "doctor")
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, db.Classify(err, "doctor")
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE doctors SET name=$2, age=$3, email=$4, phone=$5, address=$6, is_resident=$7,
			updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.Age, d.Email, d.Phone, d.Address, d.IsResident,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return db.Classify(err, "doctor")
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE doctors SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return db.Classify(err, "doctor")
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "doctor")
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Doctor, int, error) {
	where := ` WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	if f.Query != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Query+"%")
		idx++
	}
	if f.IsResident != nil {
		where += fmt.Sprintf(` AND is_resident = $%d`, idx)
		args = append(args, *f.IsResident)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify(err, "doctor")
	}

	query := `SELECT ` + doctorCols + ` FROM doctors` + where +
		fmt.Sprintf(` ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Classify(err, "doctor")
	}
	defer rows.Close()
	items := []*Doctor{}
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, 0, db.Classify(err, "doctor")
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
