package models

import (
	"strings"
	"time"
)

type CaseStatus string

const (
	CaseStatusActive CaseStatus = "active"
	CaseStatusSolved CaseStatus = "solved"
	CaseStatusFailed CaseStatus = "failed"
)

// Terminal reports whether no further travel or investigation is possible.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusSolved || s == CaseStatusFailed
}

// Difficulty selects route sizing and the slack granted by the deadline.
type Difficulty string

const (
	// DifficultyLenient grants slack for route mistakes and extra visits.
	DifficultyLenient Difficulty = "lenient"
	// DifficultyStrict requires a near-perfect route.
	DifficultyStrict Difficulty = "strict"
	// DifficultyExpert removes the time of visits an experienced player can skip.
	DifficultyExpert Difficulty = "expert"
)

// Difficulties lists the supported tiers from the most to the least forgiving.
var Difficulties = []Difficulty{DifficultyLenient, DifficultyStrict, DifficultyExpert}

// ParseDifficulty maps user input to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyLenient, DifficultyStrict, DifficultyExpert:
		return d, nil
	default:
		return "", ErrUnknownDifficulty
	}
}

// Case is one investigation played by one player.
type Case struct {
	ID         string
	PlayerID   string
	Status     CaseStatus
	Difficulty Difficulty
	StolenItem string
	// WarrantSuspectID is empty until a warrant has been issued.
	WarrantSuspectID string
	// Reason explains how a terminal case ended.
	Reason     string
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// HasWarrant reports whether a warrant has been issued for the case.
func (c Case) HasWarrant() bool {
	return c.WarrantSuspectID != ""
}

// Player holds the statistics that feed route difficulty.
type Player struct {
	ID     string
	Rank   int
	Solved int
	Failed int
}

// Reasons recorded on travel logs and resolved cases.
const (
	ReasonDecoy            = "decoy"
	ReasonNotAnOption      = "not_an_option"
	ReasonDeadlineExceeded = "deadline_exceeded"
	ReasonArrested         = "arrested"
	ReasonNoWarrant        = "no_warrant"
	ReasonWrongSuspect     = "wrong_suspect"
	ReasonAbandoned        = "abandoned"
)
