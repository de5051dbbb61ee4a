package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *JSONStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewJSONStore(filepath.Join(dir, "locations.json"), filepath.Join(dir, "guide.json"))
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }

func TestAddLocationRoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddLocation(Location{
		Name:         "중앙도서관",
		BuildingName: ptr("도서관"),
		Floor:        ptr(3),
		RoomNumber:   ptr("301"),
		XCoordinate:  ptr(12.5),
		YCoordinate:  ptr(-3.25),
		Description:  ptr("열람실"),
		Category:     ptr("시설"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	got := s.GetLocationByID(id)
	require.NotNil(t, got)
	assert.Equal(t, "중앙도서관", got.Name)
	assert.Equal(t, "도서관", *got.BuildingName)
	assert.Equal(t, 3, *got.Floor)
	assert.Equal(t, "301", *got.RoomNumber)
	assert.Equal(t, 12.5, *got.XCoordinate)
	assert.Equal(t, -3.25, *got.YCoordinate)
	assert.Equal(t, "열람실", *got.Description)
	assert.Equal(t, "시설", *got.Category)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestLocationIDsAreMonotonic(t *testing.T) {
	s := newTestStore(t)

	prev := 0
	for _, name := range []string{"본관", "학생회관", "공학관"} {
		id, err := s.AddLocation(Location{Name: name})
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}

	// Ids keep growing past the current max even with sparse fields
	id, err := s.AddLocation(Location{Name: "대강당"})
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestGetLocationByName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddLocation(Location{Name: "Main Library"})
	require.NoError(t, err)
	_, err = s.AddLocation(Location{Name: "Library Annex"})
	require.NoError(t, err)

	// Case-insensitive substring, first match in stored order
	got := s.GetLocationByName("library")
	require.NotNil(t, got)
	assert.Equal(t, "Main Library", got.Name)

	assert.Nil(t, s.GetLocationByName("gym"))
}

func TestSearchLocations(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddLocation(Location{Name: "열람실", BuildingName: ptr("도서관")})
	require.NoError(t, err)
	_, err = s.AddLocation(Location{Name: "강의실", BuildingName: ptr("공학관"), Description: ptr("도서관 옆 건물")})
	require.NoError(t, err)
	_, err = s.AddLocation(Location{Name: "식당", BuildingName: ptr("학생회관")})
	require.NoError(t, err)

	results := s.SearchLocations("도서관")
	require.Len(t, results, 2)
	// Insertion order preserved; name match and description match both count
	assert.Equal(t, "열람실", results[0].Name)
	assert.Equal(t, "강의실", results[1].Name)

	assert.Empty(t, s.SearchLocations("수영장"))
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddLocation(Location{Name: "본관"})
	require.NoError(t, err)
	_, err = s.AddConnection(Connection{FromLocationID: 1, ToLocationID: 2})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())

	doc := s.Load()
	assert.Empty(t, doc.Locations)
	assert.Empty(t, doc.Connections)
	assert.NotNil(t, doc.LastUpdated)
}

func TestConnections(t *testing.T) {
	s := newTestStore(t)

	// Endpoints are not validated, dangling ids are stored as-is
	id, err := s.AddConnection(Connection{FromLocationID: 1, ToLocationID: 99, Distance: ptr(10.0)})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id, err = s.AddConnection(Connection{FromLocationID: 2, ToLocationID: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	all := s.GetConnections(nil)
	assert.Len(t, all, 2)

	touching := s.GetConnections(ptr(99))
	require.Len(t, touching, 1)
	assert.Equal(t, 1, touching[0].ID)

	assert.Empty(t, s.GetConnections(ptr(42)))
}

func TestCorruptFileSelfHeals(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "locations.json")
	s, err := NewJSONStore(dataPath, filepath.Join(dir, "guide.json"))
	require.NoError(t, err)

	_, err = s.AddLocation(Location{Name: "본관"})
	require.NoError(t, err)

	// Truncate mid-document
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"locations": [{"id": 1,`), 0o644))

	doc := s.Load()
	assert.Empty(t, doc.Locations)
	assert.Empty(t, doc.Connections)

	// The corrupt file was overwritten with the canonical empty shape
	raw, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	var healed Document
	require.NoError(t, json.Unmarshal(raw, &healed))
	assert.NotNil(t, healed.Locations)
	assert.NotNil(t, healed.Connections)
}

func TestDocumentFileKeepsUnicodeUnescaped(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "locations.json")
	s, err := NewJSONStore(dataPath, filepath.Join(dir, "guide.json"))
	require.NoError(t, err)

	_, err = s.AddLocation(Location{Name: "도서관"})
	require.NoError(t, err)

	raw, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "도서관"), "non-ASCII text should not be escaped")
	assert.True(t, strings.Contains(string(raw), "  \"locations\""), "document should be indented with two spaces")
}

func TestLoadGuideMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	guidePath := filepath.Join(dir, "guide.json")
	s, err := NewJSONStore(filepath.Join(dir, "locations.json"), guidePath)
	require.NoError(t, err)

	// Missing guide file is empty, not an error
	guide := s.LoadGuide()
	assert.Empty(t, guide.Facilities)
	assert.Empty(t, guide.MapNodes)

	// Corrupt guide file is treated as empty and left alone
	require.NoError(t, os.WriteFile(guidePath, []byte("{broken"), 0o644))
	guide = s.LoadGuide()
	assert.Empty(t, guide.Facilities)

	raw, err := os.ReadFile(guidePath)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(raw), "guide file must not be rewritten")
}

func TestLoadInitializesMissingFile(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "locations.json")
	_, err := NewJSONStore(dataPath, filepath.Join(dir, "guide.json"))
	require.NoError(t, err)

	raw, err := os.ReadFile(dataPath)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "locations")
	assert.Contains(t, doc, "connections")
	assert.Contains(t, doc, "last_updated")
}
