package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medshift/medshift/internal/platform/db"
)

type dashboardRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &dashboardRepoPG{pool: pool} }

func (r *dashboardRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Executor(ctx, r.pool)
}

func (r *dashboardRepoPG) Stats(ctx context.Context, w Window) (*Stats, error) {
	from, to := w.bounds()
	var s Stats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM doctors WHERE deleted_at IS NULL),
			(SELECT count(*) FROM patients WHERE deleted_at IS NULL),
			(SELECT count(*) FROM pathologies WHERE deleted_at IS NULL),
			(SELECT count(*) FROM shifts WHERE deleted_at IS NULL
				AND ($1::timestamptz IS NULL OR starts_at >= $1)
				AND ($2::timestamptz IS NULL OR starts_at < $2)),
			(SELECT count(*) FROM attentions WHERE deleted_at IS NULL
				AND ($1::timestamptz IS NULL OR attended_at >= $1)
				AND ($2::timestamptz IS NULL OR attended_at < $2)),
			(SELECT COALESCE(sum(total_amount), 0) FROM shifts WHERE deleted_at IS NULL
				AND ($1::timestamptz IS NULL OR starts_at >= $1)
				AND ($2::timestamptz IS NULL OR starts_at < $2)),
			(SELECT count(*) FROM shifts WHERE deleted_at IS NULL AND paid_at IS NOT NULL),
			(SELECT count(*) FROM shifts WHERE deleted_at IS NULL AND paid_at IS NULL)`,
		from, to,
	).Scan(&s.DoctorsCount, &s.PatientsCount, &s.PathologiesCount, &s.ShiftsCount,
		&s.AttentionsCount, &s.TotalRevenue, &s.PaidShifts, &s.UnpaidShifts)
	if err != nil {
		return nil, db.Classify(err, "dashboard stats")
	}
	return &s, nil
}

func (r *dashboardRepoPG) PeakHours(ctx context.Context, w Window) ([24]int, error) {
	var hours [24]int
	from, to := w.bounds()
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT EXTRACT(HOUR FROM attended_at AT TIME ZONE 'UTC')::int AS h, count(*)
		FROM attentions
		WHERE deleted_at IS NULL
			AND ($1::timestamptz IS NULL OR attended_at >= $1)
			AND ($2::timestamptz IS NULL OR attended_at < $2)
		GROUP BY h`, from, to)
	if err != nil {
		return hours, db.Classify(err, "peak hours")
	}
	defer rows.Close()

	for rows.Next() {
		var h, n int
		if err := rows.Scan(&h, &n); err != nil {
			return hours, db.Classify(err, "peak hours")
		}
		if h >= 0 && h < len(hours) {
			hours[h] = n
		}
	}
	return hours, db.Classify(rows.Err(), "peak hours")
}

func (r *dashboardRepoPG) TopPathologies(ctx context.Context, w Window, limit int) ([]NamedCount, error) {
	from, to := w.bounds()
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.name, count(*) AS n
		FROM attention_pathology ap
		JOIN attentions a ON a.id = ap.attention_id AND a.deleted_at IS NULL
		JOIN pathologies p ON p.id = ap.pathology_id
		WHERE ($1::timestamptz IS NULL OR a.attended_at >= $1)
			AND ($2::timestamptz IS NULL OR a.attended_at < $2)
		GROUP BY p.id, p.name
		ORDER BY n DESC, p.name
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, db.Classify(err, "top pathologies")
	}
	defer rows.Close()

	var out []NamedCount
	for rows.Next() {
		var nc NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, db.Classify(err, "top pathologies")
		}
		out = append(out, nc)
	}
	return out, db.Classify(rows.Err(), "top pathologies")
}

func (r *dashboardRepoPG) TopDoctors(ctx context.Context, w Window, limit int) ([]DoctorLoad, error) {
	from, to := w.bounds()
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.name, count(*) AS n, COALESCE(sum(s.total_hours), 0)
		FROM shifts s
		JOIN doctors d ON d.id = s.doctor_id
		WHERE s.deleted_at IS NULL
			AND ($1::timestamptz IS NULL OR s.starts_at >= $1)
			AND ($2::timestamptz IS NULL OR s.starts_at < $2)
		GROUP BY d.id, d.name
		ORDER BY n DESC, d.name
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, db.Classify(err, "top doctors")
	}
	defer rows.Close()

	var out []DoctorLoad
	for rows.Next() {
		var dl DoctorLoad
		if err := rows.Scan(&dl.Name, &dl.Shifts, &dl.Hours); err != nil {
			return nil, db.Classify(err, "top doctors")
		}
		out = append(out, dl)
	}
	return out, db.Classify(rows.Err(), "top doctors")
}

func (r *dashboardRepoPG) CountAttentions(ctx context.Context, windows []Window) ([]int, error) {
	los := make([]time.Time, len(windows))
	his := make([]time.Time, len(windows))
	for i, w := range windows {
		los[i], his[i] = w.From, w.To
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b.idx, count(a.id)
		FROM unnest($1::timestamptz[], $2::timestamptz[]) WITH ORDINALITY AS b(lo, hi, idx)
		LEFT JOIN attentions a
			ON a.deleted_at IS NULL AND a.attended_at >= b.lo AND a.attended_at < b.hi
		GROUP BY b.idx
		ORDER BY b.idx`, los, his)
	if err != nil {
		return nil, db.Classify(err, "attention evolution")
	}
	defer rows.Close()

	out := make([]int, len(windows))
	for rows.Next() {
		var idx int64
		var n int
		if err := rows.Scan(&idx, &n); err != nil {
			return nil, db.Classify(err, "attention evolution")
		}
		if idx >= 1 && int(idx) <= len(out) {
			out[idx-1] = n
		}
	}
	return out, db.Classify(rows.Err(), "attention evolution")
}
