package location

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

var ErrNotFound = errors.New("location not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) Create(ctx context.Context, l *Location) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO locations (id, name, city, region, country, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.Name, l.City, l.Region, l.Country, l.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	var l Location
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, city, region, country, active, created_at, updated_at
		FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.City, &l.Region, &l.Country, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repoPG) Update(ctx context.Context, l *Location) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE locations SET name=$2, city=$3, region=$4, country=$5, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.City, l.Region, l.Country)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE locations SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Location, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, city, region, country, active, created_at, updated_at
		FROM locations ORDER BY country, city, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.City, &l.Region, &l.Country,
			&l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, nil
}
