package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata row for one uploaded file; the bytes live on
// disk under StoredName.
type Document struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ScheduleID  *uuid.UUID `db:"schedule_id" json:"schedule_id"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id"`
	FileName    string     `db:"file_name" json:"file_name"`
	StoredName  string     `db:"stored_name" json:"-"`
	ContentType string     `db:"content_type" json:"content_type"`
	SizeBytes   int64      `db:"size_bytes" json:"size_bytes"`
	UploadedBy  string     `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
