package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/domain/inventory"
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

// filterClause builds the WHERE tail for the date/location filter. The
// column names are fixed here; only values travel as parameters.
func filterClause(f Filter, dateCol, locationCol string) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if f.From != nil {
		args = append(args, *f.From)
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", dateCol, len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", dateCol, len(args)))
	}
	if f.LocationID != nil && locationCol != "" {
		args = append(args, *f.LocationID)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", locationCol, len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *repoPG) PatientRows(ctx context.Context, f Filter) ([]*PatientRow, error) {
	where, args := filterClause(f, "p.created_at", "p.location_id")
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.shf_id, p.first_name, p.last_name,
		       COALESCE(p.gender, ''), p.date_of_birth, p.status,
		       COALESCE(l.name, ''),
		       COALESCE(pp.phase_id, 0), COALESCE(pp.status, ''),
		       p.created_at
		FROM patients p
		LEFT JOIN locations l ON l.id = p.location_id
		LEFT JOIN LATERAL (
		  SELECT phase_id, status FROM patient_phases
		  WHERE patient_id = p.id ORDER BY phase_id DESC LIMIT 1
		) pp ON true
		WHERE NOT p.archived`+where+`
		ORDER BY p.shf_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PatientRow
	for rows.Next() {
		var row PatientRow
		if err := rows.Scan(&row.SHFID, &row.FirstName, &row.LastName,
			&row.Gender, &row.DateOfBirth, &row.Status, &row.Location,
			&row.CurrentPhase, &row.PhaseStatus, &row.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}

func (r *repoPG) InventoryRows(ctx context.Context, f Filter) ([]*InventoryRow, error) {
	where, args := filterClause(f, "t.created_at", "")
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT s.item_code, s.name,
		       COALESCE(sum(t.quantity) FILTER (WHERE t.transaction_type = '%s'), 0),
		       COALESCE(-sum(t.quantity) FILTER (WHERE t.transaction_type = '%s'), 0),
		       COALESCE(sum(t.quantity) FILTER (WHERE t.transaction_type NOT IN ('%s','%s')), 0),
		       s.current_stock_level
		FROM supplies s
		LEFT JOIN supply_transactions t ON t.supply_id = s.id%s
		GROUP BY s.id, s.item_code, s.name, s.current_stock_level
		ORDER BY s.item_code`,
		inventory.TxReceived, inventory.TxUsed, inventory.TxReceived, inventory.TxUsed, where),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*InventoryRow
	for rows.Next() {
		var row InventoryRow
		if err := rows.Scan(&row.ItemCode, &row.ItemName, &row.Received,
			&row.Distributed, &row.Adjusted, &row.CurrentStock); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}
