package registration

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hearcare/hearcare/internal/platform/db"
)

type regRow struct {
	id        uuid.UUID
	date      time.Time
	createdAt time.Time
}

// fakeQuerier serves the latest-registration query from an in-memory set,
// honoring the same ordering contract the SQL states.
type fakeQuerier struct {
	regs    []regRow
	gotSQL  string
	gotArgs []interface{}
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	f.gotSQL = sql
	f.gotArgs = args
	if len(f.regs) == 0 {
		return errRow{pgx.ErrNoRows}
	}
	sorted := make([]regRow, len(f.regs))
	copy(sorted, f.regs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].date.Equal(sorted[j].date) {
			return sorted[i].date.After(sorted[j].date)
		}
		return sorted[i].createdAt.After(sorted[j].createdAt)
	})
	return idRow{sorted[0].id}
}

type idRow struct{ id uuid.UUID }

func (r idRow) Scan(dest ...interface{}) error {
	*(dest[0].(*uuid.UUID)) = r.id
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...interface{}) error { return r.err }

func fakeResolver(q db.Querier) *Resolver {
	return &Resolver{conn: func(ctx context.Context) db.Querier { return q }}
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveLatestRegistrationWins(t *testing.T) {
	latest := uuid.New()
	q := &fakeQuerier{regs: []regRow{
		{id: uuid.New(), date: day(1), createdAt: day(1)},
		{id: latest, date: day(9), createdAt: day(9)},
		{id: uuid.New(), date: day(4), createdAt: day(4)},
	}}
	r := fakeResolver(q)

	patientID := uuid.New()
	got, err := r.Resolve(context.Background(), 2, patientID, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || *got != latest {
		t.Errorf("got %v, want most recent registration %v", got, latest)
	}
	if !strings.Contains(q.gotSQL, "phase2_registrations") {
		t.Errorf("query targets wrong table:\n%s", q.gotSQL)
	}
	if !strings.Contains(q.gotSQL, "ORDER BY registration_date DESC, created_at DESC") {
		t.Errorf("query missing the latest-first ordering:\n%s", q.gotSQL)
	}
	if len(q.gotArgs) != 1 || q.gotArgs[0] != patientID {
		t.Errorf("query args = %v, want [%v]", q.gotArgs, patientID)
	}
}

func TestResolveSameDayBreaksTiesByCreation(t *testing.T) {
	newest := uuid.New()
	q := &fakeQuerier{regs: []regRow{
		{id: uuid.New(), date: day(5), createdAt: day(5).Add(9 * time.Hour)},
		{id: newest, date: day(5), createdAt: day(5).Add(15 * time.Hour)},
	}}

	got, err := fakeResolver(q).Resolve(context.Background(), 1, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || *got != newest {
		t.Errorf("got %v, want %v", got, newest)
	}
}

func TestResolveNoRegistrationIsNilNotError(t *testing.T) {
	got, err := fakeResolver(&fakeQuerier{}).Resolve(context.Background(), 3, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for a patient with no registration", got)
	}
}

func TestResolveTrustsProvidedID(t *testing.T) {
	q := &fakeQuerier{}
	provided := uuid.New()

	got, err := fakeResolver(q).Resolve(context.Background(), 2, uuid.New(), &provided)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || *got != provided {
		t.Errorf("got %v, want %v", got, provided)
	}
	if q.gotSQL != "" {
		t.Error("provided id must short-circuit the query")
	}
}

func TestResolveRejectsUnknownPhase(t *testing.T) {
	r := fakeResolver(&fakeQuerier{})

	for _, phase := range []int{0, 4, -1} {
		_, err := r.Resolve(context.Background(), phase, uuid.New(), nil)
		if !errors.Is(err, ErrUnknownPhase) {
			t.Errorf("phase %d: err = %v, want ErrUnknownPhase", phase, err)
		}
	}
}

func TestResolveIgnoresNilUUID(t *testing.T) {
	nilID := uuid.Nil

	// A zero-value id is treated as absent, so an invalid phase still
	// fails instead of passing the id through.
	if _, err := fakeResolver(&fakeQuerier{}).Resolve(context.Background(), 9, uuid.New(), &nilID); !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("err = %v, want ErrUnknownPhase", err)
	}
}
