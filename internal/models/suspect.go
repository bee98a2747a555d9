package models

// AttributeKind enumerates the describable traits of a suspect.
type AttributeKind int

const (
	AttributeSex AttributeKind = iota
	AttributeHair
	AttributeHobby
	AttributeFeature
	AttributeVehicle
)

// AttributeKinds lists every kind in a stable order.
var AttributeKinds = []AttributeKind{AttributeSex, AttributeHair, AttributeHobby, AttributeFeature, AttributeVehicle}

func (k AttributeKind) String() string {
	switch k {
	case AttributeSex:
		return "sex"
	case AttributeHair:
		return "hair"
	case AttributeHobby:
		return "hobby"
	case AttributeFeature:
		return "feature"
	case AttributeVehicle:
		return "vehicle"
	default:
		return "unknown"
	}
}

// Attributes are the traits shared by suspects so that clues narrow the pool down.
type Attributes struct {
	Sex     string
	Hair    string
	Hobby   string
	Feature string
	Vehicle string
}

// Value returns the attribute of the given kind.
func (a Attributes) Value(kind AttributeKind) string {
	switch kind {
	case AttributeSex:
		return a.Sex
	case AttributeHair:
		return a.Hair
	case AttributeHobby:
		return a.Hobby
	case AttributeFeature:
		return a.Feature
	case AttributeVehicle:
		return a.Vehicle
	default:
		return ""
	}
}

// With returns a copy of a with the attribute of the given kind replaced.
func (a Attributes) With(kind AttributeKind, value string) Attributes {
	switch kind {
	case AttributeSex:
		a.Sex = value
	case AttributeHair:
		a.Hair = value
	case AttributeHobby:
		a.Hobby = value
	case AttributeFeature:
		a.Feature = value
	case AttributeVehicle:
		a.Vehicle = value
	}
	return a
}

// Suspect is a candidate identity of a case. Exactly one suspect per case is the culprit.
type Suspect struct {
	ID         string
	CaseID     string
	Name       string
	Culprit    bool
	Attributes Attributes
}
