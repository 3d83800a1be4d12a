package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Supply maps to the supplies table. Stock levels are mutated only through
// the Ledger so every change leaves a transaction row behind.
type Supply struct {
	ID                uuid.UUID `db:"id" json:"id"`
	ItemCode          string    `db:"item_code" json:"item_code"`
	Name              string    `db:"name" json:"name"`
	Category          string    `db:"category" json:"category"`
	Unit              string    `db:"unit" json:"unit"`
	CurrentStockLevel int       `db:"current_stock_level" json:"current_stock_level"`
	ReorderLevel      int       `db:"reorder_level" json:"reorder_level"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction types accepted by the ledger.
const (
	TxReceived = "Received"
	TxUsed     = "Used"
	TxAdjusted = "Adjusted"
	TxDamaged  = "Damaged"
	TxReturned = "Returned"
)

var validTxTypes = map[string]bool{
	TxReceived: true,
	TxUsed:     true,
	TxAdjusted: true,
	TxDamaged:  true,
	TxReturned: true,
}

// Transaction is an immutable ledger row recording one signed stock change.
type Transaction struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	SupplyID  uuid.UUID  `db:"supply_id" json:"supply_id"`
	Quantity  int        `db:"quantity" json:"quantity"` // signed delta
	Type      string     `db:"transaction_type" json:"transaction_type"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Phase     *int       `db:"phase_id" json:"phase_id,omitempty"`
	ActorID   string     `db:"actor_id" json:"actor_id"`
	Notes     string     `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Meta carries the optional clinical linkage of a stock adjustment.
type Meta struct {
	PatientID *uuid.UUID
	Phase     *int
}

// Policy is the explicit failure contract a call site attaches to a stock
// deduction: Required failures abort the caller's transaction, BestEffort
// failures are logged and swallowed so the clinical record still saves.
type Policy int

const (
	PolicyRequired Policy = iota
	PolicyBestEffort
)

func (p Policy) String() string {
	if p == PolicyBestEffort {
		return "best-effort"
	}
	return "required"
}
