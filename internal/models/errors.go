package models

import "github.com/myrjola/gumshoe/internal/errors"

// Error classes. Every error returned by the engine wraps exactly one of these so that callers can classify it with
// errors.Is.
var (
	// ErrValidation marks malformed input. The case is left untouched and play continues.
	ErrValidation = errors.NewSentinel("validation error")
	// ErrNotFound marks an unknown case, place, suspect or city.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrStateConflict marks an operation refused because of the current state of the case.
	ErrStateConflict = errors.NewSentinel("state conflict")
	// ErrDeadlineExceeded marks consumed time past the deadline. It is never returned to callers: the case is failed
	// and the outcome carries a game-over payload instead.
	ErrDeadlineExceeded = errors.NewSentinel("deadline exceeded")
	// ErrDependency marks a failing collaborator such as the text generator. It is recovered with fallbacks.
	ErrDependency = errors.NewSentinel("dependency error")
)

var (
	ErrCaseNotFound      = errors.New("case not found").Wrap(ErrNotFound)
	ErrPlaceNotFound     = errors.New("place not found").Wrap(ErrNotFound)
	ErrSuspectNotFound   = errors.New("suspect not found").Wrap(ErrNotFound)
	ErrUnknownCity       = errors.New("unknown city").Wrap(ErrNotFound)
	ErrRouteNotFound     = errors.New("route not found").Wrap(ErrNotFound)
	ErrRouteExists       = errors.New("route already generated").Wrap(ErrStateConflict)
	ErrWarrantIssued     = errors.New("warrant already issued").Wrap(ErrStateConflict)
	ErrCaseNotActive     = errors.New("case is not active").Wrap(ErrStateConflict)
	ErrActiveCaseExists  = errors.New("player already has an active case").Wrap(ErrStateConflict)
	ErrInvalidView       = errors.New("view points outside the step options").Wrap(ErrStateConflict)
	ErrConcurrentUpdate  = errors.New("case changed concurrently").Wrap(ErrStateConflict)
	ErrRouteExhausted    = errors.New("no unvisited step remains").Wrap(ErrStateConflict)
	ErrFinalStep         = errors.New("travel is unavailable on the final step").Wrap(ErrStateConflict)
	ErrTravelBlind       = errors.New("investigate a lead before travelling").Wrap(ErrStateConflict)
	ErrPlaceNotHere      = errors.New("place is not in the current city").Wrap(ErrValidation)
	ErrNotAnOption       = errors.New("destination is not a travel option").Wrap(ErrValidation)
	ErrInvalidID         = errors.New("missing or malformed identifier").Wrap(ErrValidation)
	ErrNotEnoughCities   = errors.New("not enough eligible cities").Wrap(ErrValidation)
	ErrUnknownDifficulty = errors.New("unknown difficulty").Wrap(ErrValidation)
)
