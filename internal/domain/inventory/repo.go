package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id uuid.UUID) (*Supply, error)
	GetByItemCode(ctx context.Context, itemCode string) (*Supply, error)
	// LockByItemCode reads the supply row under SELECT ... FOR UPDATE. It
	// must be called inside a transaction; the lock is held until commit.
	LockByItemCode(ctx context.Context, itemCode string) (*Supply, error)
	UpdateStockLevel(ctx context.Context, id uuid.UUID, newLevel int) error
	Update(ctx context.Context, s *Supply) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Supply, int, error)
	ListLowStock(ctx context.Context) ([]*Supply, error)

	InsertTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, supplyID uuid.UUID, limit, offset int) ([]*Transaction, int, error)
}
