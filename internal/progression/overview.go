package progression

import (
	"context"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
)

// TravelOption is a destination offered from the current city.
type TravelOption struct {
	City    models.City
	Minutes int
}

// Overview is what the player sees of a case.
type Overview struct {
	Case models.Case
	// Position is empty once the case is over. Its step carries no options.
	Position models.Position
	City     models.City
	Places   []models.Place
	Options  []TravelOption
	Time     models.TimeState
	// Remaining is the awake minutes left until the deadline.
	Remaining int
	// Suspects hide which one is the culprit until the case is over.
	Suspects []models.Suspect
	Travels  []models.TravelLog
	// Capture is set when the case ended at the capture location.
	Capture *models.Capture
}

// Overview reads the case without changing it.
func (m *Machine) Overview(ctx context.Context, caseID string) (Overview, error) {
	if err := validateID(caseID); err != nil {
		return Overview{}, errors.Wrap(err, "case id")
	}
	q := m.store.Read()
	c, err := q.Case(ctx, caseID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "overview")
	}
	overview := Overview{Case: c}
	if overview.Time, err = q.TimeState(ctx, caseID); err != nil {
		return Overview{}, errors.Wrap(err, "overview")
	}
	overview.Remaining = m.clock.Remaining(overview.Time.Current, overview.Time.Deadline)
	if overview.Suspects, err = q.Suspects(ctx, caseID); err != nil {
		return Overview{}, errors.Wrap(err, "overview")
	}
	if overview.Travels, err = q.TravelLogs(ctx, caseID); err != nil {
		return Overview{}, errors.Wrap(err, "overview")
	}

	if c.Status.Terminal() {
		capture, found, err := q.Capture(ctx, caseID)
		if err != nil {
			return Overview{}, errors.Wrap(err, "overview")
		}
		if found {
			overview.Capture = &capture
		}
		return overview, nil
	}
	for i := range overview.Suspects {
		overview.Suspects[i].Culprit = false
	}

	snap, err := m.readSnapshot(ctx, q, caseID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "overview")
	}
	// The options are listed without revealing which one is primary.
	overview.Position = snap.position
	overview.Position.Step.Options = nil
	overview.City = m.city(snap.position.CityID)
	if overview.Places, err = q.PlacesInCity(ctx, caseID, snap.position.CityID); err != nil {
		return Overview{}, errors.Wrap(err, "overview")
	}
	if snap.position.Mode != models.StepModeFinal {
		if overview.Options, err = m.options(snap); err != nil {
			return Overview{}, errors.Wrap(err, "overview")
		}
	}
	return overview, nil
}

func (m *Machine) options(snap snapshot) ([]TravelOption, error) {
	options := make([]TravelOption, 0, len(snap.position.Step.Options))
	for _, o := range snap.position.Step.Options {
		minutes, err := m.estimator.Estimate(snap.position.CityID, o.CityID)
		if err != nil {
			return nil, errors.Wrap(err, "estimate option")
		}
		options = append(options, TravelOption{City: m.city(o.CityID), Minutes: minutes})
	}
	return options, nil
}
