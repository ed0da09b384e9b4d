package zones

import "backend-touristsafety/internal/shared/geo"

type Kind string

const (
	KindSafety     Kind = "safety"
	KindAttraction Kind = "attraction"
)

// ParseKind maps a query value to a Kind; anything else means "all zones".
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindSafety, KindAttraction:
		return Kind(s), true
	default:
		return "", false
	}
}

type Category string

// Safety categories.
const (
	CategorySafe         Category = "safe"
	CategoryModerate     Category = "moderate"
	CategoryCrowded      Category = "crowdy"
	CategoryConstruction Category = "construction"
	CategoryHighAlert    Category = "risky"
)

// Attraction categories.
const (
	CategoryHeritage  Category = "heritage"
	CategoryModern    Category = "modern"
	CategorySpiritual Category = "spiritual"
	CategoryNature    Category = "nature"
)

// Zone is static reference data; vertices describe a simple polygon in order.
type Zone struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Kind         Kind         `json:"kind"`
	Category     Category     `json:"type"`
	Description  string       `json:"description"`
	Vertices     []geo.LatLng `json:"coordinates"`
	SafetyRating float64      `json:"safetyRating,omitempty"`
	SafetyLevel  string       `json:"safetyLevel,omitempty"`
	Facilities   []string     `json:"facilities,omitempty"`
	Tips         []string     `json:"tips,omitempty"`
	Attractions  []Attraction `json:"attractions,omitempty"`
}

type Attraction struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Rating  float64 `json:"rating"`
	Timings string  `json:"timings"`
}

// Match is a zone annotated with its relation to a position: the distance from the
// position to the zone's vertex centroid and whether the position lies inside.
type Match struct {
	Zone
	DistanceKm float64 `json:"distance"`
	Inside     bool    `json:"isInside"`
}
