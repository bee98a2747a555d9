package models

// Option is a destination offered when leaving a step. Exactly one option per step is primary.
type Option struct {
	CityID  string
	Primary bool
}

// Step is one position of the route's primary sequence.
type Step struct {
	Order   int
	CityID  string
	Visited bool
	// Options is empty on the final step.
	Options []Option
}

// PrimaryOption returns the destination that advances the route.
func (s Step) PrimaryOption() (Option, bool) {
	for _, o := range s.Options {
		if o.Primary {
			return o, true
		}
	}
	return Option{}, false
}

// Option returns the travel option leading to cityID.
func (s Step) Option(cityID string) (Option, bool) {
	for _, o := range s.Options {
		if o.CityID == cityID {
			return o, true
		}
	}
	return Option{}, false
}

// Decoys returns the non-primary option cities.
func (s Step) Decoys() []string {
	var decoys []string
	for _, o := range s.Options {
		if !o.Primary {
			decoys = append(decoys, o.CityID)
		}
	}
	return decoys
}

// Route is the ordered step sequence of a case.
type Route struct {
	CaseID string
	Steps  []Step
}

// Step returns the step with the given 1-based order.
func (r Route) Step(order int) (Step, bool) {
	if order < 1 || order > len(r.Steps) {
		return Step{}, false
	}
	return r.Steps[order-1], true
}

// Current returns the first step that has not been visited.
func (r Route) Current() (Step, bool) {
	for _, s := range r.Steps {
		if !s.Visited {
			return s, true
		}
	}
	return Step{}, false
}

// IsFinal reports whether order is the last step of the route.
func (r Route) IsFinal(order int) bool {
	return order == len(r.Steps)
}

// Cities returns the primary city of every step in order.
func (r Route) Cities() []string {
	cities := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		cities[i] = s.CityID
	}
	return cities
}

// StepMode is derived once per request from the current step and the view pointer.
type StepMode string

const (
	// StepModePrimary means the player stands in the step's primary city with travel options ahead.
	StepModePrimary StepMode = "primary"
	// StepModeDecoy means the player is exploring a decoy city offered by the step.
	StepModeDecoy StepMode = "decoy"
	// StepModeFinal means the player stands in the last city of the route.
	StepModeFinal StepMode = "final"
)

// Position is where the player currently is.
type Position struct {
	Step   Step
	CityID string
	Mode   StepMode
}

// Locate derives the player's position from the route and the view override for the current step. An empty
// viewCityID means no override has been recorded and the step's primary city applies.
func Locate(route Route, viewCityID string) (Position, error) {
	step, ok := route.Current()
	if !ok {
		return Position{}, ErrRouteExhausted
	}
	switch {
	case route.IsFinal(step.Order):
		return Position{Step: step, CityID: step.CityID, Mode: StepModeFinal}, nil
	case viewCityID == "" || viewCityID == step.CityID:
		return Position{Step: step, CityID: step.CityID, Mode: StepModePrimary}, nil
	default:
		if o, found := step.Option(viewCityID); !found || o.Primary {
			return Position{}, ErrInvalidView
		}
		return Position{Step: step, CityID: viewCityID, Mode: StepModeDecoy}, nil
	}
}

// City is a travel destination.
type City struct {
	ID          string
	Name        string
	Country     string
	Latitude    float64
	Longitude   float64
	Description string
}
