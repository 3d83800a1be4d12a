package auditlog

import (
	"context"
)

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, table string, limit, offset int) ([]*Entry, int, error)
	ListByRecord(ctx context.Context, table, recordID string, limit, offset int) ([]*Entry, int, error)
}
