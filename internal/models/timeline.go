package models

import "time"

// TimeState is the simulated clock of a case.
type TimeState struct {
	CaseID   string
	Start    time.Time
	Deadline time.Time
	Current  time.Time
	Timezone string
}

// TravelLog is an append-only record of a travel attempt.
type TravelLog struct {
	ID        int64
	CaseID    string
	StepOrder int
	FromCity  string
	ToCity    string
	Success   bool
	Reason    string
	At        time.Time
}

// Capture records the resolution attempt at the capture location.
type Capture struct {
	CaseID           string
	PlaceID          string
	WarrantSuspectID string
	CulpritID        string
	Status           CaseStatus
	Narrative        string
	At               time.Time
}
