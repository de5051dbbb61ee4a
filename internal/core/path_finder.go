package core

import (
	"fmt"
	"math"

	"github.com/campus-kiosk/wayfinder/internal/store"
)

type PathFinder struct {
	store *store.JSONStore
}

func NewPathFinder(s *store.JSONStore) *PathFinder {
	return &PathFinder{store: s}
}

// RouteResult is the structured outcome of a routing query. A lookup miss is
// reported through Success/Error, not as a Go error.
type RouteResult struct {
	Success      bool             `json:"success"`
	Error        string           `json:"error,omitempty"`
	FromLocation *store.Location  `json:"from_location,omitempty"`
	ToLocation   *store.Location  `json:"to_location,omitempty"`
	Path         []store.Location `json:"path,omitempty"`
	Distance     *float64         `json:"distance,omitempty"`
	Direction    *string          `json:"direction,omitempty"`
	Directions   []string         `json:"directions,omitempty"`
}

// FindPath resolves both names through the store (case-insensitive substring,
// origin checked first) and renders distance, compass direction and a
// human-readable instruction sequence.
func (p *PathFinder) FindPath(fromName, toName string) RouteResult {
	fromLoc := p.store.GetLocationByName(fromName)
	if fromLoc == nil {
		return RouteResult{Success: false, Error: fmt.Sprintf("%q not found", fromName)}
	}

	toLoc := p.store.GetLocationByName(toName)
	if toLoc == nil {
		return RouteResult{Success: false, Error: fmt.Sprintf("%q not found", toName)}
	}

	if fromLoc.ID == toLoc.ID {
		zero := 0.0
		return RouteResult{
			Success:      true,
			FromLocation: fromLoc,
			ToLocation:   toLoc,
			Path:         []store.Location{*fromLoc},
			Distance:     &zero,
			Directions:   []string{"You are already at the destination."},
		}
	}

	distance := calculateDistance(fromLoc.XCoordinate, fromLoc.YCoordinate, toLoc.XCoordinate, toLoc.YCoordinate)
	direction := calculateDirection(fromLoc.XCoordinate, fromLoc.YCoordinate, toLoc.XCoordinate, toLoc.YCoordinate)

	return RouteResult{
		Success:      true,
		FromLocation: fromLoc,
		ToLocation:   toLoc,
		Path:         []store.Location{*fromLoc, *toLoc},
		Distance:     distance,
		Direction:    direction,
		Directions:   generateDirections(fromLoc, toLoc, direction, distance),
	}
}

func calculateDistance(x1, y1, x2, y2 *float64) *float64 {
	if x1 == nil || y1 == nil || x2 == nil || y2 == nil {
		return nil
	}
	d := math.Hypot(*x2-*x1, *y2-*y1)
	return &d
}

// calculateDirection buckets the bearing into eight 45-degree compass
// sectors, East centered at zero in a y-up frame. Each sector is half-open
// so a boundary angle belongs to the counter-clockwise neighbor; the
// sectors cover the full circle.
func calculateDirection(x1, y1, x2, y2 *float64) *string {
	if x1 == nil || y1 == nil || x2 == nil || y2 == nil {
		return nil
	}

	deg := math.Atan2(*y2-*y1, *x2-*x1) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}

	var dir string
	switch {
	case deg >= 22.5 && deg < 67.5:
		dir = "Northeast"
	case deg >= 67.5 && deg < 112.5:
		dir = "North"
	case deg >= 112.5 && deg < 157.5:
		dir = "Northwest"
	case deg >= 157.5 && deg < 202.5:
		dir = "West"
	case deg >= 202.5 && deg < 247.5:
		dir = "Southwest"
	case deg >= 247.5 && deg < 292.5:
		dir = "South"
	case deg >= 292.5 && deg < 337.5:
		dir = "Southeast"
	default:
		dir = "East"
	}
	return &dir
}

func describeLocation(loc *store.Location) string {
	info := loc.Name
	if loc.BuildingName != nil {
		info += fmt.Sprintf(" (%s)", *loc.BuildingName)
	}
	if loc.Floor != nil {
		info += fmt.Sprintf(", floor %d", *loc.Floor)
	}
	return info
}

func generateDirections(fromLoc, toLoc *store.Location, direction *string, distance *float64) []string {
	directions := []string{
		"Start: " + describeLocation(fromLoc),
		"Destination: " + describeLocation(toLoc),
	}

	if direction != nil {
		directions = append(directions, fmt.Sprintf("Head %s.", *direction))
	}
	if distance != nil {
		directions = append(directions, fmt.Sprintf("Estimated distance: about %.1f meters.", *distance))
	}

	if fromLoc.BuildingName != nil && toLoc.BuildingName != nil && *fromLoc.BuildingName != *toLoc.BuildingName {
		directions = append(directions, fmt.Sprintf("Move from %s to %s.", *fromLoc.BuildingName, *toLoc.BuildingName))
	}

	if fromLoc.Floor != nil && toLoc.Floor != nil && *fromLoc.Floor != *toLoc.Floor {
		diff := *toLoc.Floor - *fromLoc.Floor
		if diff > 0 {
			directions = append(directions, fmt.Sprintf("Go up %d floors.", diff))
		} else {
			directions = append(directions, fmt.Sprintf("Go down %d floors.", -diff))
		}
	}

	return directions
}
