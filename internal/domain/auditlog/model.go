package auditlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action types recorded in the audit trail.
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionArchive = "ARCHIVE"
	ActionNotify  = "NOTIFY"
)

// Entry maps to the audit_logs table. The table is append-only: entries are
// never updated or deleted.
type Entry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	TableName string          `db:"table_name" json:"table_name"`
	RecordID  string          `db:"record_id" json:"record_id"`
	Action    string          `db:"action_type" json:"action_type"`
	OldValues json.RawMessage `db:"old_values" json:"old_values,omitempty"`
	NewValues json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	ActorID   string          `db:"actor_id" json:"actor_id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
