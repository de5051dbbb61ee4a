package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campus-kiosk/wayfinder/internal/store"
)

// columnSynonyms maps each logical field to its accepted header names in
// priority order. The English header wins when both are present; new locales
// are additive here, not new branches.
var columnSynonyms = map[string][]string{
	"name":          {"name", "장소명"},
	"building_name": {"building_name", "건물명"},
	"floor":         {"floor", "층수"},
	"room_number":   {"room_number", "호수"},
	"x_coordinate":  {"x_coordinate", "x좌표"},
	"y_coordinate":  {"y_coordinate", "y좌표"},
	"description":   {"description", "설명"},
	"category":      {"category", "카테고리"},
}

// Result reports a batch ingestion. Row errors do not abort the batch; a
// whole-batch failure carries Error with SavedCount zero.
type Result struct {
	Success    bool     `json:"success"`
	SavedCount int      `json:"saved_count"`
	TotalRows  int      `json:"total_rows"`
	Errors     []string `json:"errors,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type Parser struct {
	store *store.JSONStore
}

func NewParser(s *store.JSONStore) *Parser {
	return &Parser{store: s}
}

// ParseExcel reads the first sheet of an .xlsx workbook and persists one
// location per data row. Row 1 is the header; unrecognized columns are
// ignored. Row errors are reported against the spreadsheet display row
// (data index + 2).
func (p *Parser) ParseExcel(path string) Result {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	if len(rows) == 0 {
		return Result{Success: true, Errors: []string{}}
	}

	headerIndex := map[string]int{}
	for i, header := range rows[0] {
		headerIndex[strings.TrimSpace(header)] = i
	}

	dataRows := rows[1:]
	savedCount := 0
	errors := []string{}

	for i, row := range dataRows {
		displayRow := i + 2 // 1-indexed plus the header row

		name := cellFor(headerIndex, row, "name")
		if strings.TrimSpace(name) == "" {
			errors = append(errors, fmt.Sprintf("row %d: name is missing", displayRow))
			continue
		}

		loc := store.Location{
			Name:         strings.TrimSpace(name),
			BuildingName: optionalString(cellFor(headerIndex, row, "building_name")),
			Floor:        safeInt(cellFor(headerIndex, row, "floor")),
			RoomNumber:   optionalString(cellFor(headerIndex, row, "room_number")),
			XCoordinate:  safeFloat(cellFor(headerIndex, row, "x_coordinate")),
			YCoordinate:  safeFloat(cellFor(headerIndex, row, "y_coordinate")),
			Description:  optionalString(cellFor(headerIndex, row, "description")),
			Category:     optionalString(cellFor(headerIndex, row, "category")),
		}

		if _, err := p.store.AddLocation(loc); err != nil {
			errors = append(errors, fmt.Sprintf("row %d: %v", displayRow, err))
			continue
		}
		savedCount++
	}

	return Result{
		Success:    true,
		SavedCount: savedCount,
		TotalRows:  len(dataRows),
		Errors:     errors,
	}
}

// cellFor resolves a logical field through its header synonyms. The fallback
// applies only when the preferred header is absent, not when its cell is
// empty, matching how a bilingual sheet declares one header per column.
func cellFor(headerIndex map[string]int, row []string, field string) string {
	for _, key := range columnSynonyms[field] {
		if col, ok := headerIndex[key]; ok {
			if col < len(row) {
				return row[col]
			}
			return ""
		}
	}
	return ""
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// safeInt coerces a cell to an integer, null on empty or unparseable input.
// Parsed through float first so "3.0" style cells survive.
func safeInt(value string) *int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func safeFloat(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Format describes the spreadsheet layout the parser accepts, served to
// kiosk administrators before they prepare an upload.
type Format struct {
	Columns       []string          `json:"columns"`
	KoreanColumns []string          `json:"korean_columns"`
	Description   map[string]string `json:"description"`
}

func SampleFormat() Format {
	return Format{
		Columns: []string{
			"name", "building_name", "floor", "room_number",
			"x_coordinate", "y_coordinate", "description", "category",
		},
		KoreanColumns: []string{
			"장소명", "건물명", "층수", "호수",
			"x좌표", "y좌표", "설명", "카테고리",
		},
		Description: map[string]string{
			"name":          "place name (required)",
			"building_name": "building name",
			"floor":         "floor number",
			"room_number":   "room number",
			"x_coordinate":  "x coordinate (number)",
			"y_coordinate":  "y coordinate (number)",
			"description":   "description",
			"category":      "category",
		},
	}
}
