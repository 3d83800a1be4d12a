package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/platform/db"
)

type mockRepo struct {
	Repository

	supplies     map[string]*Supply
	lockCalls    int
	levelUpdates map[uuid.UUID]int
	transactions []*Transaction
}

func newMockRepo(supplies ...*Supply) *mockRepo {
	r := &mockRepo{
		supplies:     map[string]*Supply{},
		levelUpdates: map[uuid.UUID]int{},
	}
	for _, s := range supplies {
		r.supplies[s.ItemCode] = s
	}
	return r
}

func (r *mockRepo) LockByItemCode(ctx context.Context, itemCode string) (*Supply, error) {
	r.lockCalls++
	s, ok := r.supplies[itemCode]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *mockRepo) UpdateStockLevel(ctx context.Context, id uuid.UUID, newLevel int) error {
	r.levelUpdates[id] = newLevel
	for _, s := range r.supplies {
		if s.ID == id {
			s.CurrentStockLevel = newLevel
		}
	}
	return nil
}

func (r *mockRepo) InsertTransaction(ctx context.Context, t *Transaction) error {
	r.transactions = append(r.transactions, t)
	return nil
}

type noopAuditRepo struct{}

func (noopAuditRepo) Insert(ctx context.Context, e *auditlog.Entry) error { return nil }
func (noopAuditRepo) List(ctx context.Context, table string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}
func (noopAuditRepo) ListByRecord(ctx context.Context, table, recordID string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}

// stubTx satisfies pgx.Tx for context plumbing; the ledger never touches it
// directly, only the repository does.
type stubTx struct{ pgx.Tx }

func txContext() context.Context {
	return db.ContextWithTx(context.Background(), stubTx{})
}

func newTestLedger(repo Repository) *Ledger {
	audit := auditlog.NewService(noopAuditRepo{}, zerolog.Nop())
	return NewLedger(repo, audit, zerolog.Nop())
}

func batterySupply(level int) *Supply {
	return &Supply{
		ID:                uuid.New(),
		ItemCode:          "BAT-312",
		Name:              "Size 312 battery pack",
		Category:          "batteries",
		Unit:              "pack",
		CurrentStockLevel: level,
	}
}

func TestAdjustStockAppliesDeltaAndRecordsTransaction(t *testing.T) {
	supply := batterySupply(40)
	repo := newMockRepo(supply)
	ledger := newTestLedger(repo)

	patientID := uuid.New()
	phase := 3
	level, err := ledger.AdjustStock(txContext(), "BAT-312", -4, TxUsed, "clinician-1",
		"battery dispense", Meta{PatientID: &patientID, Phase: &phase})
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 36, *level)
	assert.Equal(t, 36, repo.levelUpdates[supply.ID])

	require.Len(t, repo.transactions, 1)
	txRow := repo.transactions[0]
	assert.Equal(t, -4, txRow.Quantity)
	assert.Equal(t, TxUsed, txRow.Type)
	assert.Equal(t, supply.ID, txRow.SupplyID)
	assert.Equal(t, "clinician-1", txRow.ActorID)
	require.NotNil(t, txRow.PatientID)
	assert.Equal(t, patientID, *txRow.PatientID)
	require.NotNil(t, txRow.Phase)
	assert.Equal(t, 3, *txRow.Phase)
}

func TestAdjustStockZeroDeltaIsNoOp(t *testing.T) {
	repo := newMockRepo(batterySupply(40))
	ledger := newTestLedger(repo)

	level, err := ledger.AdjustStock(txContext(), "BAT-312", 0, TxUsed, "clinician-1", "", Meta{})
	require.NoError(t, err)
	assert.Nil(t, level)
	assert.Zero(t, repo.lockCalls)
	assert.Empty(t, repo.transactions)
}

func TestAdjustStockRequiresOpenTransaction(t *testing.T) {
	repo := newMockRepo(batterySupply(40))
	ledger := newTestLedger(repo)

	_, err := ledger.AdjustStock(context.Background(), "BAT-312", 5, TxReceived, "actor", "", Meta{})
	require.ErrorIs(t, err, ErrNoTransaction)
	assert.Zero(t, repo.lockCalls)
}

func TestAdjustStockRejectsUnknownTransactionType(t *testing.T) {
	repo := newMockRepo(batterySupply(40))
	ledger := newTestLedger(repo)

	_, err := ledger.AdjustStock(txContext(), "BAT-312", 5, "Misplaced", "actor", "", Meta{})
	require.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestAdjustStockRejectsOverdraw(t *testing.T) {
	supply := batterySupply(3)
	repo := newMockRepo(supply)
	ledger := newTestLedger(repo)

	_, err := ledger.AdjustStock(txContext(), "BAT-312", -4, TxUsed, "actor", "", Meta{})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, repo.levelUpdates, "level must not change on a rejected deduction")
	assert.Empty(t, repo.transactions)
	assert.Equal(t, 3, supply.CurrentStockLevel)
}

func TestAdjustStockAllowsDrawdownToZero(t *testing.T) {
	repo := newMockRepo(batterySupply(4))
	ledger := newTestLedger(repo)

	level, err := ledger.AdjustStock(txContext(), "BAT-312", -4, TxUsed, "actor", "", Meta{})
	require.NoError(t, err)
	assert.Equal(t, 0, *level)
}

func TestDeductRequiredPropagatesFailure(t *testing.T) {
	repo := newMockRepo(batterySupply(1))
	ledger := newTestLedger(repo)

	err := ledger.Deduct(txContext(), "BAT-312", 2, "actor", "", Meta{}, PolicyRequired)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestDeductBestEffortSwallowsFailure(t *testing.T) {
	repo := newMockRepo(batterySupply(1))
	ledger := newTestLedger(repo)

	err := ledger.Deduct(txContext(), "BAT-312", 2, "actor", "", Meta{}, PolicyBestEffort)
	require.NoError(t, err)
	assert.Empty(t, repo.transactions, "failed best-effort deduction must not write a ledger row")
}

func TestDeductBestEffortStillDeductsWhenStockSuffices(t *testing.T) {
	supply := batterySupply(10)
	repo := newMockRepo(supply)
	ledger := newTestLedger(repo)

	err := ledger.Deduct(txContext(), "BAT-312", 2, "actor", "", Meta{}, PolicyBestEffort)
	require.NoError(t, err)
	assert.Equal(t, 8, supply.CurrentStockLevel)
	require.Len(t, repo.transactions, 1)
	assert.Equal(t, -2, repo.transactions[0].Quantity)
}
