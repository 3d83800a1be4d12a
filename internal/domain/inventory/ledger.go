package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/platform/db"
)

// Ledger is the only mutator of stock levels. Every adjustment locks the
// supply row, writes the new level, and appends an immutable transaction
// row inside the caller's open database transaction.
type Ledger struct {
	repo   Repository
	audit  *auditlog.Service
	logger zerolog.Logger
}

func NewLedger(repo Repository, audit *auditlog.Service, logger zerolog.Logger) *Ledger {
	return &Ledger{repo: repo, audit: audit, logger: logger}
}

// AdjustStock applies a signed delta to the item's stock level. The caller
// must hold an open transaction in ctx; the supply row stays locked until
// the caller commits or rolls back. A zero delta is a no-op returning a nil
// level.
func (l *Ledger) AdjustStock(ctx context.Context, itemCode string, delta int, txType, actorID, notes string, meta Meta) (*int, error) {
	if delta == 0 {
		return nil, nil
	}
	if db.TxFromContext(ctx) == nil {
		return nil, ErrNoTransaction
	}
	if !validTxTypes[txType] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, txType)
	}

	supply, err := l.repo.LockByItemCode(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	newLevel := supply.CurrentStockLevel + delta
	if newLevel < 0 {
		return nil, fmt.Errorf("%w: item %s has %d, requested %d",
			ErrInsufficientStock, itemCode, supply.CurrentStockLevel, -delta)
	}

	if err := l.repo.UpdateStockLevel(ctx, supply.ID, newLevel); err != nil {
		return nil, fmt.Errorf("update stock level: %w", err)
	}

	txRow := &Transaction{
		SupplyID:  supply.ID,
		Quantity:  delta,
		Type:      txType,
		PatientID: meta.PatientID,
		Phase:     meta.Phase,
		ActorID:   actorID,
		Notes:     notes,
	}
	if err := l.repo.InsertTransaction(ctx, txRow); err != nil {
		return nil, fmt.Errorf("append supply transaction: %w", err)
	}

	l.audit.Record(ctx, "supplies", supply.ID.String(), auditlog.ActionUpdate, actorID,
		map[string]int{"current_stock_level": supply.CurrentStockLevel},
		map[string]int{"current_stock_level": newLevel})

	return &newLevel, nil
}

// Deduct removes quantity units of an item under the given failure policy.
// With PolicyRequired the error propagates and the caller's transaction
// should roll back; with PolicyBestEffort the failure is logged as a
// warning and swallowed so the parent record still saves.
func (l *Ledger) Deduct(ctx context.Context, itemCode string, quantity int, actorID, notes string, meta Meta, policy Policy) error {
	_, err := l.AdjustStock(ctx, itemCode, -quantity, TxUsed, actorID, notes, meta)
	if err == nil {
		return nil
	}
	if policy == PolicyBestEffort {
		l.logger.Warn().Err(err).
			Str("item_code", itemCode).
			Int("quantity", quantity).
			Str("policy", policy.String()).
			Msg("inventory deduction failed, record saved without stock change")
		return nil
	}
	return err
}
