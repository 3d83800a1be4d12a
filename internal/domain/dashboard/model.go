package dashboard

// Overview is the headline card set.
type Overview struct {
	TotalPatients    int            `json:"total_patients"`
	ActivePatients   int            `json:"active_patients"`
	ArchivedPatients int            `json:"archived_patients"`
	StatusCounts     map[string]int `json:"status_counts"`
}

// PhaseFunnelEntry counts patients by phase and phase status.
type PhaseFunnelEntry struct {
	Phase      int `json:"phase"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// Demographics buckets the active population.
type Demographics struct {
	Gender     map[string]int `json:"gender"`
	AgeBuckets []AgeBucket    `json:"age_buckets"`
}

type AgeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthCount is one point of the registrations-per-month series.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// GeographyEntry is a location with its patient headcount and map
// coordinates when the city is known to the geo table.
type GeographyEntry struct {
	LocationID string   `json:"location_id"`
	Name       string   `json:"name"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Patients   int      `json:"patients"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}
