package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campus-kiosk/wayfinder/internal/config"
	"github.com/campus-kiosk/wayfinder/internal/core"
	"github.com/campus-kiosk/wayfinder/internal/ingest"
	"github.com/campus-kiosk/wayfinder/internal/store"
)

const maxUploadBytes = 16 << 20 // 16 MiB spreadsheet cap

type APIHandler struct {
	store      *store.JSONStore
	parser     *ingest.Parser
	pathFinder *core.PathFinder
	guide      *core.GuideService
	llm        *core.LLMService
}

func NewAPIHandler(s *store.JSONStore, parser *ingest.Parser, pf *core.PathFinder, guide *core.GuideService, llm *core.LLMService) *APIHandler {
	return &APIHandler{store: s, parser: parser, pathFinder: pf, guide: guide, llm: llm}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Campus Navigation Backend is running",
	})
}

// UploadHandler accepts a multipart spreadsheet (field "file"), stores it
// under the upload directory and runs ingestion on it.
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file was uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "The uploaded file has no name")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		respondError(w, http.StatusBadRequest, "Only Excel files (.xlsx, .xls) can be uploaded")
		return
	}

	if err := os.MkdirAll(config.AppConfig.UploadDir, 0o755); err != nil {
		log.Printf("Failed to create upload directory: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to store the uploaded file")
		return
	}

	// Client filenames are untrusted; keep only the base name behind a
	// random prefix.
	storedName := uuid.NewString() + "_" + filepath.Base(header.Filename)
	storedPath := filepath.Join(config.AppConfig.UploadDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		log.Printf("Failed to create upload file %s: %v", storedPath, err)
		respondError(w, http.StatusInternalServerError, "Failed to store the uploaded file")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		log.Printf("Failed to write upload file %s: %v", storedPath, err)
		respondError(w, http.StatusInternalServerError, "Failed to store the uploaded file")
		return
	}
	dst.Close()

	result := h.parser.ParseExcel(storedPath)
	if !result.Success {
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("%d locations registered.", result.SavedCount),
		"saved_count": result.SavedCount,
		"total_rows":  result.TotalRows,
		"errors":      result.Errors,
	})
}

func (h *APIHandler) ListLocationsHandler(w http.ResponseWriter, r *http.Request) {
	searchQuery := r.URL.Query().Get("search")

	var locations []store.Location
	if searchQuery != "" {
		locations = h.store.SearchLocations(searchQuery)
	} else {
		locations = h.store.GetAllLocations()
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(locations),
		"locations": locations,
	})
}

func (h *APIHandler) GetLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "locationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Location id must be an integer")
		return
	}

	location := h.store.GetLocationByID(id)
	if location == nil {
		respondError(w, http.StatusNotFound, "Location not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"location": location,
	})
}

type RouteRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *APIHandler) RouteHandler(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.From == "" || req.To == "" {
		respondError(w, http.StatusBadRequest, "Both a start and a destination are required")
		return
	}

	result := h.pathFinder.FindPath(req.From, req.To)
	if !result.Success {
		respondJSON(w, http.StatusNotFound, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type AskRequest struct {
	Query string `json:"query"`
}

// AskHandler delegates the free-text question to the language model.
func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "A question is required")
		return
	}

	result := h.llm.AskRoute(req.Query)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"query":             result.Query,
		"response":          result.Response,
		"locations_context": result.LocationsContext,
	})
}

// GuideHandler answers with keyword matching only. The TARGET_ID marker is
// appended here so the existing map front end can keep scraping it from the
// text while target_id is also returned as a proper field.
func (h *APIHandler) GuideHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "A question is required")
		return
	}

	result := h.guide.AskRoute(req.Query)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"query":     result.Query,
		"response":  fmt.Sprintf("%s [[TARGET_ID:%s]]", result.Response, result.TargetID),
		"target_id": result.TargetID,
	})
}

func (h *APIHandler) ExcelFormatHandler(w http.ResponseWriter, r *http.Request) {
	format := ingest.SampleFormat()
	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"columns":        format.Columns,
		"korean_columns": format.KoreanColumns,
		"description":    format.Description,
	})
}

func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	locations := h.store.GetAllLocations()
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(locations),
		"locations": locations,
	})
}
