package store

import "time"

// Location is a named, optionally-coordinated point of interest within a building.
type Location struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	BuildingName *string   `json:"building_name"`
	Floor        *int      `json:"floor"`
	RoomNumber   *string   `json:"room_number"`
	XCoordinate  *float64  `json:"x_coordinate"`
	YCoordinate  *float64  `json:"y_coordinate"`
	Description  *string   `json:"description"`
	Category     *string   `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Connection is a stored edge between two locations. Endpoint ids are not
// checked against the location list, and no traversal consumes these yet.
type Connection struct {
	ID             int      `json:"id"`
	FromLocationID int      `json:"from_location_id"`
	ToLocationID   int      `json:"to_location_id"`
	Distance       *float64 `json:"distance"`
	Direction      *string  `json:"direction"`
	Description    *string  `json:"description"`
}

// Document is the single unit of persistence. Both sequences are always
// present (possibly empty); LastUpdated is rewritten on every save.
type Document struct {
	Locations   []Location   `json:"locations"`
	Connections []Connection `json:"connections"`
	LastUpdated *time.Time   `json:"last_updated"`
}

// Facility and MapNode form the guide document consumed by the keyword
// responder. The guide file is authored out-of-band and never reconciled
// with the location document.
type Facility struct {
	Facility string `json:"facility"`
	Building string `json:"building"`
	Floor    string `json:"floor"`
}

type MapNode struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type GuideDocument struct {
	Facilities []Facility `json:"facilities"`
	MapNodes   []MapNode  `json:"map_nodes"`
}
