package ingest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campus-kiosk/wayfinder/internal/store"
)

func newTestStore(t *testing.T) *store.JSONStore {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewJSONStore(filepath.Join(dir, "locations.json"), filepath.Join(dir, "guide.json"))
	require.NoError(t, err)
	return s
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "locations.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestParseExcelEnglishHeaders(t *testing.T) {
	s := newTestStore(t)
	path := writeWorkbook(t, [][]any{
		{"name", "building_name", "floor", "room_number", "x_coordinate", "y_coordinate", "description", "category"},
		{"열람실", "도서관", "3", "301", "10.5", "20", "메인 열람실", "시설"},
		{"강의실", "공학관", "2", "201", "", "", "", ""},
	})

	result := NewParser(s).ParseExcel(path)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.SavedCount)
	assert.Equal(t, 2, result.TotalRows)
	assert.Empty(t, result.Errors)

	locations := s.GetAllLocations()
	require.Len(t, locations, 2)
	first := locations[0]
	assert.Equal(t, "열람실", first.Name)
	assert.Equal(t, "도서관", *first.BuildingName)
	assert.Equal(t, 3, *first.Floor)
	assert.Equal(t, "301", *first.RoomNumber)
	assert.Equal(t, 10.5, *first.XCoordinate)
	assert.Equal(t, 20.0, *first.YCoordinate)

	second := locations[1]
	assert.Nil(t, second.XCoordinate)
	assert.Nil(t, second.YCoordinate)
	assert.Nil(t, second.Description)
}

func TestParseExcelKoreanHeaders(t *testing.T) {
	s := newTestStore(t)
	path := writeWorkbook(t, [][]any{
		{"장소명", "건물명", "층수", "호수", "x좌표", "y좌표", "설명", "카테고리"},
		{"식당", "학생회관", "1", "", "5", "5", "구내식당", "편의시설"},
	})

	result := NewParser(s).ParseExcel(path)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.SavedCount)

	loc := s.GetLocationByName("식당")
	require.NotNil(t, loc)
	assert.Equal(t, "학생회관", *loc.BuildingName)
	assert.Equal(t, 1, *loc.Floor)
	assert.Nil(t, loc.RoomNumber)
}

func TestParseExcelEnglishHeaderWins(t *testing.T) {
	s := newTestStore(t)
	path := writeWorkbook(t, [][]any{
		{"name", "장소명"},
		{"english name", "korean name"},
	})

	result := NewParser(s).ParseExcel(path)

	require.True(t, result.Success)
	loc := s.GetLocationByID(1)
	require.NotNil(t, loc)
	assert.Equal(t, "english name", loc.Name)
}

func TestParseExcelMissingNameSkipsRowOnly(t *testing.T) {
	s := newTestStore(t)
	path := writeWorkbook(t, [][]any{
		{"name", "building_name"},
		{"본관 로비", "본관"},
		{"강의실", "공학관"},
		{"", "도서관"}, // spreadsheet row 4
		{"식당", "학생회관"},
	})

	result := NewParser(s).ParseExcel(path)

	require.True(t, result.Success)
	assert.Equal(t, 3, result.SavedCount)
	assert.Equal(t, 4, result.TotalRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "row 4: name is missing", result.Errors[0])

	// Valid rows around the bad one are still persisted
	assert.Len(t, s.GetAllLocations(), 3)
	assert.NotNil(t, s.GetLocationByName("식당"))
}

func TestParseExcelCoercionNeverFailsARow(t *testing.T) {
	s := newTestStore(t)
	path := writeWorkbook(t, [][]any{
		{"name", "floor", "x_coordinate", "y_coordinate"},
		{"사무실", "삼층", "abc", "12.5"},
		{"회의실", "2.0", "1", "2"},
	})

	result := NewParser(s).ParseExcel(path)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.SavedCount)
	assert.Empty(t, result.Errors)

	office := s.GetLocationByName("사무실")
	require.NotNil(t, office)
	assert.Nil(t, office.Floor, "unparseable floor coerces to null")
	assert.Nil(t, office.XCoordinate)
	assert.Equal(t, 12.5, *office.YCoordinate)

	meeting := s.GetLocationByName("회의실")
	require.NotNil(t, meeting)
	assert.Equal(t, 2, *meeting.Floor, "float-styled floors are accepted")
}

func TestParseExcelUnrecognizedColumnsIgnored(t *testing.T) {
	s := newTestStore(t)
	path := writeWorkbook(t, [][]any{
		{"name", "unknown_column", "building_name"},
		{"매점", "whatever", "학생회관"},
	})

	result := NewParser(s).ParseExcel(path)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.SavedCount)
	loc := s.GetLocationByName("매점")
	require.NotNil(t, loc)
	assert.Equal(t, "학생회관", *loc.BuildingName)
}

func TestParseExcelWholeBatchFailure(t *testing.T) {
	s := newTestStore(t)

	result := NewParser(s).ParseExcel(filepath.Join(t.TempDir(), "missing.xlsx"))

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 0, result.SavedCount)
	assert.Empty(t, s.GetAllLocations())
}
