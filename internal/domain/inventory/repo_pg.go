package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const supplyCols = `id, item_code, name, category, unit, current_stock_level, reorder_level, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Supply) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO supplies (id, item_code, name, category, unit, current_stock_level, reorder_level)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.ItemCode, s.Name, s.Category, s.Unit, s.CurrentStockLevel, s.ReorderLevel,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Supply, error) {
	return scanSupply(r.conn(ctx).QueryRow(ctx,
		`SELECT `+supplyCols+` FROM supplies WHERE id = $1`, id))
}

func (r *repoPG) GetByItemCode(ctx context.Context, itemCode string) (*Supply, error) {
	return scanSupply(r.conn(ctx).QueryRow(ctx,
		`SELECT `+supplyCols+` FROM supplies WHERE item_code = $1`, itemCode))
}

func (r *repoPG) LockByItemCode(ctx context.Context, itemCode string) (*Supply, error) {
	return scanSupply(r.conn(ctx).QueryRow(ctx,
		`SELECT `+supplyCols+` FROM supplies WHERE item_code = $1 FOR UPDATE`, itemCode))
}

func (r *repoPG) UpdateStockLevel(ctx context.Context, id uuid.UUID, newLevel int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE supplies SET current_stock_level = $2, updated_at = NOW() WHERE id = $1`,
		id, newLevel)
	return err
}

func (r *repoPG) Update(ctx context.Context, s *Supply) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE supplies SET name=$2, category=$3, unit=$4, reorder_level=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Category, s.Unit, s.ReorderLevel,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM supplies WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Supply, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM supplies`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+supplyCols+` FROM supplies ORDER BY item_code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var supplies []*Supply
	for rows.Next() {
		s, err := scanSupplyRows(rows)
		if err != nil {
			return nil, 0, err
		}
		supplies = append(supplies, s)
	}
	return supplies, total, nil
}

func (r *repoPG) ListLowStock(ctx context.Context) ([]*Supply, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+supplyCols+` FROM supplies WHERE current_stock_level <= reorder_level ORDER BY item_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []*Supply
	for rows.Next() {
		s, err := scanSupplyRows(rows)
		if err != nil {
			return nil, err
		}
		supplies = append(supplies, s)
	}
	return supplies, nil
}

func (r *repoPG) InsertTransaction(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO supply_transactions (id, supply_id, quantity, transaction_type, patient_id, phase_id, actor_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.SupplyID, t.Quantity, t.Type, t.PatientID, t.Phase, t.ActorID, t.Notes,
	)
	return err
}

func (r *repoPG) ListTransactions(ctx context.Context, supplyID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM supply_transactions WHERE supply_id = $1`, supplyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, supply_id, quantity, transaction_type, patient_id, phase_id, actor_id, notes, created_at
		FROM supply_transactions WHERE supply_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		supplyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.SupplyID, &t.Quantity, &t.Type,
			&t.PatientID, &t.Phase, &t.ActorID, &t.Notes, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		txs = append(txs, &t)
	}
	return txs, total, nil
}

func scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	err := row.Scan(&s.ID, &s.ItemCode, &s.Name, &s.Category, &s.Unit,
		&s.CurrentStockLevel, &s.ReorderLevel, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSupplyRows(rows pgx.Rows) (*Supply, error) {
	var s Supply
	err := rows.Scan(&s.ID, &s.ItemCode, &s.Name, &s.Category, &s.Unit,
		&s.CurrentStockLevel, &s.ReorderLevel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
