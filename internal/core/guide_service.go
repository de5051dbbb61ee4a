package core

import (
	"fmt"
	"strings"

	"github.com/campus-kiosk/wayfinder/internal/store"
)

const (
	notFoundAnswer = "I could not find that place. Please tell me the exact name of the building or facility."

	flatGroundHint = "It is on flat ground near the main gate, so you can walk there directly."
	hillsideHint   = "It is up on the hill, so take the nearest stairs."
	genericHint    = "Please follow the campus signage on your way."
)

// Region classification of known buildings. Anything not listed gets the
// generic hint.
var (
	flatBuildings = map[string]bool{
		"본관":   true,
		"도서관":  true,
		"학생회관": true,
		"대강당":  true,
	}
	hillBuildings = map[string]bool{
		"공학관":   true,
		"자연과학관": true,
		"기숙사":   true,
	}
)

// GuideService answers free-text questions by keyword matching against the
// facilities document. No language model involved.
type GuideService struct {
	store *store.JSONStore
}

func NewGuideService(s *store.JSONStore) *GuideService {
	return &GuideService{store: s}
}

// GuideResult carries the answer text and the map node to highlight.
// TargetID is the literal "None" when no node resolves.
type GuideResult struct {
	Query    string `json:"query"`
	Response string `json:"response"`
	TargetID string `json:"target_id"`
}

// AskRoute matches facilities whose facility or building name occurs in the
// lowercased query. More than three matches inside a single building produce
// a floor-by-floor summary of that building; otherwise the first match is
// answered directly.
func (g *GuideService) AskRoute(query string) GuideResult {
	guide := g.store.LoadGuide()
	loweredQuery := strings.ToLower(query)

	var matches []store.Facility
	for _, f := range guide.Facilities {
		if f.Facility != "" && strings.Contains(loweredQuery, strings.ToLower(f.Facility)) {
			matches = append(matches, f)
			continue
		}
		if f.Building != "" && strings.Contains(loweredQuery, strings.ToLower(f.Building)) {
			matches = append(matches, f)
		}
	}

	if len(matches) == 0 {
		return GuideResult{Query: query, Response: notFoundAnswer, TargetID: "None"}
	}

	buildings := map[string]bool{}
	for _, m := range matches {
		buildings[m.Building] = true
	}

	if len(matches) > 3 && len(buildings) == 1 {
		building := matches[0].Building
		return GuideResult{
			Query:    query,
			Response: summarizeBuilding(building, matches),
			TargetID: resolveNodeID(guide.MapNodes, building),
		}
	}

	first := matches[0]
	response := fmt.Sprintf("%s is on floor %s of %s. %s",
		first.Facility, first.Floor, first.Building, regionHint(first.Building))

	targetID := resolveNodeID(guide.MapNodes, first.Facility)
	if targetID == "None" {
		targetID = resolveNodeID(guide.MapNodes, first.Building)
	}
	return GuideResult{Query: query, Response: response, TargetID: targetID}
}

// summarizeBuilding renders one bullet line per floor, floors in first-seen
// order, facility names comma-joined within each floor.
func summarizeBuilding(building string, matches []store.Facility) string {
	floorOrder := []string{}
	byFloor := map[string][]string{}
	for _, m := range matches {
		if _, seen := byFloor[m.Floor]; !seen {
			floorOrder = append(floorOrder, m.Floor)
		}
		byFloor[m.Floor] = append(byFloor[m.Floor], m.Facility)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has the following facilities:\n", building)
	for _, floor := range floorOrder {
		fmt.Fprintf(&b, "- %s: %s\n", floor, strings.Join(byFloor[floor], ", "))
	}
	b.WriteString(regionHint(building))
	return b.String()
}

func regionHint(building string) string {
	switch {
	case flatBuildings[building]:
		return flatGroundHint
	case hillBuildings[building]:
		return hillsideHint
	default:
		return genericHint
	}
}

// resolveNodeID finds the map node for a name, preferring an exact match
// over a containment match. "None" when nothing resolves.
func resolveNodeID(nodes []store.MapNode, name string) string {
	if name == "" {
		return "None"
	}
	for _, n := range nodes {
		if n.Name == name {
			return n.ID
		}
	}
	for _, n := range nodes {
		if strings.Contains(n.Name, name) || strings.Contains(name, n.Name) {
			return n.ID
		}
	}
	return "None"
}
