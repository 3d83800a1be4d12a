package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/platform/db"
)

// Service covers supply catalog CRUD and manual stock adjustments.
type Service struct {
	repo   Repository
	ledger *Ledger
	audit  *auditlog.Service
	pool   *pgxpool.Pool
}

func NewService(repo Repository, ledger *Ledger, audit *auditlog.Service, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, ledger: ledger, audit: audit, pool: pool}
}

func (s *Service) CreateSupply(ctx context.Context, supply *Supply, actorID string) error {
	if supply.ItemCode == "" {
		return fmt.Errorf("item_code is required")
	}
	if supply.Name == "" {
		return fmt.Errorf("name is required")
	}
	if supply.CurrentStockLevel < 0 {
		return fmt.Errorf("current_stock_level cannot be negative")
	}
	if err := s.repo.Create(ctx, supply); err != nil {
		return err
	}
	s.audit.Record(ctx, "supplies", supply.ID.String(), auditlog.ActionCreate, actorID, nil, supply)
	return nil
}

func (s *Service) GetSupply(ctx context.Context, id uuid.UUID) (*Supply, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetSupplyByItemCode(ctx context.Context, itemCode string) (*Supply, error) {
	return s.repo.GetByItemCode(ctx, itemCode)
}

func (s *Service) UpdateSupply(ctx context.Context, supply *Supply, actorID string) error {
	old, err := s.repo.GetByID(ctx, supply.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, supply); err != nil {
		return err
	}
	s.audit.Record(ctx, "supplies", supply.ID.String(), auditlog.ActionUpdate, actorID, old, supply)
	return nil
}

func (s *Service) DeleteSupply(ctx context.Context, id uuid.UUID, actorID string) error {
	old, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, "supplies", id.String(), auditlog.ActionDelete, actorID, old, nil)
	return nil
}

func (s *Service) ListSupplies(ctx context.Context, limit, offset int) ([]*Supply, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListLowStock(ctx context.Context) ([]*Supply, error) {
	return s.repo.ListLowStock(ctx)
}

// AdjustStock performs a manual stock adjustment (restock, damage
// write-off, correction) in its own transaction.
func (s *Service) AdjustStock(ctx context.Context, itemCode string, delta int, txType, actorID, notes string) (*int, error) {
	var newLevel *int
	err := db.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		var err error
		newLevel, err = s.ledger.AdjustStock(ctx, itemCode, delta, txType, actorID, notes, Meta{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return newLevel, nil
}

func (s *Service) ListTransactions(ctx context.Context, supplyID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	return s.repo.ListTransactions(ctx, supplyID, limit, offset)
}
