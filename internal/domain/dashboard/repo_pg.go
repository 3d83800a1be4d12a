package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// scopeArg normalizes an empty scope to nil so the uuid[] parameter is
// NULL and the scope condition collapses to true.
func scopeArg(scope []uuid.UUID) []uuid.UUID {
	if len(scope) == 0 {
		return nil
	}
	return scope
}

func (r *repoPG) Overview(ctx context.Context, scope []uuid.UUID) (*Overview, error) {
	o := &Overview{StatusCounts: make(map[string]int)}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'active' AND NOT archived),
		       count(*) FILTER (WHERE archived)
		FROM patients
		WHERE ($1::uuid[] IS NULL OR location_id = ANY($1))`,
		scopeArg(scope)).Scan(&o.TotalPatients, &o.ActivePatients, &o.ArchivedPatients)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, count(*) FROM patients
		WHERE NOT archived AND ($1::uuid[] IS NULL OR location_id = ANY($1))
		GROUP BY status`, scopeArg(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		o.StatusCounts[status] = n
	}
	return o, rows.Err()
}

func (r *repoPG) PhaseFunnel(ctx context.Context, scope []uuid.UUID) ([]*PhaseFunnelEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pp.phase_id,
		       count(*) FILTER (WHERE pp.status = 'In Progress'),
		       count(*) FILTER (WHERE pp.status = 'Completed'),
		       count(*) FILTER (WHERE pp.status = 'Cancelled')
		FROM patient_phases pp
		JOIN patients p ON p.id = pp.patient_id AND NOT p.archived
		WHERE ($1::uuid[] IS NULL OR p.location_id = ANY($1))
		GROUP BY pp.phase_id
		ORDER BY pp.phase_id`, scopeArg(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PhaseFunnelEntry
	for rows.Next() {
		var e PhaseFunnelEntry
		if err := rows.Scan(&e.Phase, &e.InProgress, &e.Completed, &e.Cancelled); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *repoPG) GenderCounts(ctx context.Context, scope []uuid.UUID) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT COALESCE(NULLIF(gender, ''), 'unknown'), count(*)
		FROM patients
		WHERE NOT archived AND ($1::uuid[] IS NULL OR location_id = ANY($1))
		GROUP BY 1`, scopeArg(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var g string
		var n int
		if err := rows.Scan(&g, &n); err != nil {
			return nil, err
		}
		out[g] = n
	}
	return out, rows.Err()
}

func (r *repoPG) AgeBuckets(ctx context.Context, scope []uuid.UUID) ([]AgeBucket, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT CASE
		         WHEN age < 5 THEN '0-4'
		         WHEN age < 13 THEN '5-12'
		         WHEN age < 18 THEN '13-17'
		         WHEN age < 40 THEN '18-39'
		         WHEN age < 65 THEN '40-64'
		         ELSE '65+'
		       END AS bucket,
		       count(*)
		FROM (
		  SELECT date_part('year', age(date_of_birth))::int AS age
		  FROM patients
		  WHERE NOT archived AND date_of_birth IS NOT NULL
		    AND ($1::uuid[] IS NULL OR location_id = ANY($1))
		) ages
		GROUP BY bucket
		ORDER BY min(age)`, scopeArg(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgeBucket
	for rows.Next() {
		var b AgeBucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repoPG) RegistrationsPerMonth(ctx context.Context, scope []uuid.UUID, months int) ([]*MonthCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, count(*)
		FROM patients
		WHERE created_at >= date_trunc('month', NOW()) - make_interval(months => $2 - 1)
		  AND ($1::uuid[] IS NULL OR location_id = ANY($1))
		GROUP BY month
		ORDER BY month`, scopeArg(scope), months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MonthCount
	for rows.Next() {
		var m MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *repoPG) Geography(ctx context.Context, scope []uuid.UUID) ([]*GeographyEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT l.id, l.name, l.city, l.country, count(p.id)
		FROM locations l
		LEFT JOIN patients p ON p.location_id = l.id AND NOT p.archived
		WHERE l.active AND ($1::uuid[] IS NULL OR l.id = ANY($1))
		GROUP BY l.id, l.name, l.city, l.country
		ORDER BY l.name`, scopeArg(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GeographyEntry
	for rows.Next() {
		var e GeographyEntry
		if err := rows.Scan(&e.LocationID, &e.Name, &e.City, &e.Country, &e.Patients); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
