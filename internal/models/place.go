package models

import "time"

// ClueRole decides what kind of hint a place reveals.
type ClueRole string

const (
	// ClueRoleNextLocation hints at the next city of the route.
	ClueRoleNextLocation ClueRole = "next_location"
	// ClueRoleVillain hints at an attribute of the culprit.
	ClueRoleVillain ClueRole = "villain"
	// ClueRoleWarning carries no route information. It is never stored on a place, it is derived for places in
	// decoy cities and for leads on the final step.
	ClueRoleWarning ClueRole = "warning"
)

// InteractionStyle is cosmetic and only flavours the clue text.
type InteractionStyle string

const (
	InteractionStyleTalk    InteractionStyle = "talk"
	InteractionStyleSearch  InteractionStyle = "search"
	InteractionStyleObserve InteractionStyle = "observe"
)

// PlaceType is a catalog entry used when seeding places.
type PlaceType struct {
	ID    string
	Name  string
	Style InteractionStyle
}

// Place is an interactable location inside a city, scoped to one case.
type Place struct {
	ID     string
	CaseID string
	CityID string
	TypeID string
	Name   string
	Style  InteractionStyle
	Role   ClueRole
	// Capture marks the single place of the final city where the culprit can be arrested.
	Capture bool
	// Clue is nil until the place has been investigated.
	Clue *Clue
}

// Clue is the cached text revealed by a place. Once stored it never changes.
type Clue struct {
	PlaceID string
	// Role is the effective role the text was generated for, which may differ from the place's stored role.
	Role      ClueRole
	Text      string
	CreatedAt time.Time
}
