package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// JSONStore persists the location document as a single JSON file. Every
// operation loads, rewrites and closes the whole file; the mutex serializes
// writers so partial writes cannot interleave. Last writer still wins.
type JSONStore struct {
	mu        sync.Mutex
	dataPath  string
	guidePath string
}

func NewJSONStore(dataPath, guidePath string) (*JSONStore, error) {
	for _, p := range []string{dataPath, guidePath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
			}
		}
	}

	s := &JSONStore{dataPath: dataPath, guidePath: guidePath}
	if _, err := os.Stat(dataPath); os.IsNotExist(err) {
		if err := s.save(emptyDocument()); err != nil {
			return nil, fmt.Errorf("failed to initialize data file: %w", err)
		}
	}
	return s, nil
}

func emptyDocument() *Document {
	return &Document{
		Locations:   []Location{},
		Connections: []Connection{},
	}
}

// Load returns the current document. A missing or corrupt file is
// reinitialized to the empty shape and persisted before returning; the
// caller never sees a parse error.
func (s *JSONStore) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.load()
}

func (s *JSONStore) load() *Document {
	raw, err := os.ReadFile(s.dataPath)
	if err == nil {
		var doc Document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			if doc.Locations == nil {
				doc.Locations = []Location{}
			}
			if doc.Connections == nil {
				doc.Connections = []Connection{}
			}
			return &doc
		}
		log.Printf("Data file %s is corrupt, reinitializing", s.dataPath)
	}

	doc := emptyDocument()
	if err := s.save(doc); err != nil {
		log.Printf("Failed to reinitialize data file %s: %v", s.dataPath, err)
	}
	return doc
}

// save overwrites the data file wholesale, stamping last_updated. Non-ASCII
// text is kept unescaped so the file stays readable alongside the
// spreadsheet sources.
func (s *JSONStore) save(doc *Document) error {
	now := time.Now()
	doc.LastUpdated = &now

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(s.dataPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}

// AddLocation appends a location with the next id (max existing + 1) and
// fresh timestamps. The caller's ID and timestamp fields are ignored.
func (s *JSONStore) AddLocation(loc Location) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()

	maxID := 0
	for _, existing := range doc.Locations {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}

	now := time.Now()
	loc.ID = maxID + 1
	loc.CreatedAt = now
	loc.UpdatedAt = now

	doc.Locations = append(doc.Locations, loc)
	if err := s.save(doc); err != nil {
		return 0, err
	}
	return loc.ID, nil
}

// GetLocationByName returns the first location (stored order) whose name
// contains the given string, case-insensitively. Nil when nothing matches.
func (s *JSONStore) GetLocationByName(name string) *Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(name)
	doc := s.load()
	for i := range doc.Locations {
		if strings.Contains(strings.ToLower(doc.Locations[i].Name), needle) {
			loc := doc.Locations[i]
			return &loc
		}
	}
	return nil
}

func (s *JSONStore) GetLocationByID(id int) *Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for i := range doc.Locations {
		if doc.Locations[i].ID == id {
			loc := doc.Locations[i]
			return &loc
		}
	}
	return nil
}

func (s *JSONStore) GetAllLocations() []Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Locations
}

// SearchLocations matches the query case-insensitively against name,
// building name and description. Insertion order is preserved.
func (s *JSONStore) SearchLocations(query string) []Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(query)
	results := []Location{}
	for _, loc := range s.load().Locations {
		if strings.Contains(strings.ToLower(loc.Name), needle) {
			results = append(results, loc)
			continue
		}
		if loc.BuildingName != nil && strings.Contains(strings.ToLower(*loc.BuildingName), needle) {
			results = append(results, loc)
			continue
		}
		if loc.Description != nil && strings.Contains(strings.ToLower(*loc.Description), needle) {
			results = append(results, loc)
		}
	}
	return results
}

// ClearAll replaces the document with the empty shape. Used before a full
// spreadsheet re-upload.
func (s *JSONStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(emptyDocument())
}

// AddConnection stores an edge between two location ids. Endpoints are not
// validated, so dangling references are possible.
func (s *JSONStore) AddConnection(conn Connection) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()

	maxID := 0
	for _, existing := range doc.Connections {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	conn.ID = maxID + 1

	doc.Connections = append(doc.Connections, conn)
	if err := s.save(doc); err != nil {
		return 0, err
	}
	return conn.ID, nil
}

// GetConnections returns every connection, or with a non-nil locationID only
// those where the id appears on either endpoint.
func (s *JSONStore) GetConnections(locationID *int) []Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if locationID == nil {
		return doc.Connections
	}

	results := []Connection{}
	for _, conn := range doc.Connections {
		if conn.FromLocationID == *locationID || conn.ToLocationID == *locationID {
			results = append(results, conn)
		}
	}
	return results
}

// LoadGuide reads the facilities/map-nodes document. The guide file is
// authored by hand, so a missing or corrupt file is treated as empty rather
// than rewritten.
func (s *JSONStore) LoadGuide() GuideDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	guide := GuideDocument{Facilities: []Facility{}, MapNodes: []MapNode{}}
	raw, err := os.ReadFile(s.guidePath)
	if err != nil {
		return guide
	}
	if err := json.Unmarshal(raw, &guide); err != nil {
		log.Printf("Guide file %s is corrupt, treating as empty: %v", s.guidePath, err)
		return GuideDocument{Facilities: []Facility{}, MapNodes: []MapNode{}}
	}
	if guide.Facilities == nil {
		guide.Facilities = []Facility{}
	}
	if guide.MapNodes == nil {
		guide.MapNodes = []MapNode{}
	}
	return guide
}
