package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/hearcare/hearcare/internal/platform/geo"
)

type mockRepo struct {
	geography []*GeographyEntry
	months    int
	lastScope []uuid.UUID
}

func (m *mockRepo) Overview(ctx context.Context, scope []uuid.UUID) (*Overview, error) {
	m.lastScope = scope
	return &Overview{TotalPatients: 10, ActivePatients: 7, ArchivedPatients: 3,
		StatusCounts: map[string]int{"active": 7}}, nil
}

func (m *mockRepo) PhaseFunnel(ctx context.Context, scope []uuid.UUID) ([]*PhaseFunnelEntry, error) {
	return []*PhaseFunnelEntry{{Phase: 1, Completed: 5}, {Phase: 2, InProgress: 3}}, nil
}

func (m *mockRepo) GenderCounts(ctx context.Context, scope []uuid.UUID) (map[string]int, error) {
	return map[string]int{"female": 4, "male": 3}, nil
}

func (m *mockRepo) AgeBuckets(ctx context.Context, scope []uuid.UUID) ([]AgeBucket, error) {
	return []AgeBucket{{Label: "0-4", Count: 2}, {Label: "5-12", Count: 5}}, nil
}

func (m *mockRepo) RegistrationsPerMonth(ctx context.Context, scope []uuid.UUID, months int) ([]*MonthCount, error) {
	m.months = months
	return []*MonthCount{{Month: "2026-08", Count: 4}}, nil
}

func (m *mockRepo) Geography(ctx context.Context, scope []uuid.UUID) ([]*GeographyEntry, error) {
	return m.geography, nil
}

func testLookup(t *testing.T, rows string) *geo.Lookup {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.csv")
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatal(err)
	}
	lookup, err := geo.NewLookup(path)
	if err != nil {
		t.Fatal(err)
	}
	return lookup
}

func TestGeographyResolvesKnownCities(t *testing.T) {
	repo := &mockRepo{geography: []*GeographyEntry{
		{Name: "Kigali Clinic", City: "Kigali"},
		{Name: "Remote Site", City: "Nowhereville"},
	}}
	lookup := testLookup(t, "Kigali,-1.9441,30.0619\n")
	svc := NewService(repo, lookup)

	entries, err := svc.Geography(context.Background(), nil)
	if err != nil {
		t.Fatalf("Geography: %v", err)
	}
	if entries[0].Latitude == nil || *entries[0].Latitude != -1.9441 {
		t.Errorf("expected Kigali latitude resolved, got %v", entries[0].Latitude)
	}
	if entries[1].Latitude != nil {
		t.Errorf("unknown city must keep nil coordinates, got %v", *entries[1].Latitude)
	}
}

func TestGeographyWithoutLookup(t *testing.T) {
	repo := &mockRepo{geography: []*GeographyEntry{{Name: "Kigali Clinic", City: "Kigali"}}}
	svc := NewService(repo, nil)

	entries, err := svc.Geography(context.Background(), nil)
	if err != nil {
		t.Fatalf("Geography: %v", err)
	}
	if entries[0].Latitude != nil {
		t.Error("no lookup configured, coordinates must stay nil")
	}
}

func TestRegistrationsPerMonthClampsRange(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)

	if _, err := svc.RegistrationsPerMonth(context.Background(), nil, 0); err != nil {
		t.Fatal(err)
	}
	if repo.months != 12 {
		t.Errorf("months = %d, want default 12", repo.months)
	}

	if _, err := svc.RegistrationsPerMonth(context.Background(), nil, 6); err != nil {
		t.Fatal(err)
	}
	if repo.months != 6 {
		t.Errorf("months = %d, want 6", repo.months)
	}
}

func TestDemographicsCombinesGenderAndAge(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)

	d, err := svc.Demographics(context.Background(), nil)
	if err != nil {
		t.Fatalf("Demographics: %v", err)
	}
	if d.Gender["female"] != 4 {
		t.Errorf("gender counts not carried through: %v", d.Gender)
	}
	if len(d.AgeBuckets) != 2 {
		t.Errorf("age buckets not carried through: %v", d.AgeBuckets)
	}
}

func TestOverviewForwardsScope(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)

	scope := []uuid.UUID{uuid.New()}
	if _, err := svc.Overview(context.Background(), scope); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(repo.lastScope) != 1 || repo.lastScope[0] != scope[0] {
		t.Errorf("scope not forwarded to repository: %v", repo.lastScope)
	}
}
