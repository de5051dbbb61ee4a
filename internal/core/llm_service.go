package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/campus-kiosk/wayfinder/internal/config"
	"github.com/campus-kiosk/wayfinder/internal/store"
)

const routePromptTemplate = `You are a campus wayfinding kiosk. Answer the visitor's question kindly.

%s

Visitor question: %s

Answer the question using the location list above. If the visitor asks how to
get to a specific place, guide them based on that place's recorded position.
`

// Fixed user-facing messages for outbound failures. These are returned as
// normal response text, never as errors.
const (
	llmTimeoutMessage    = "The language model took too long to respond. Please try again."
	llmConnectionMessage = "Could not reach the language model. Check that the LLM service is running."
)

// LLMService talks to an Ollama-style text-generation endpoint:
// POST {model, prompt, stream:false}, reply {response} or {text}.
type LLMService struct {
	apiURL string
	model  string
	client *http.Client
	store  *store.JSONStore
}

func NewLLMService(s *store.JSONStore) *LLMService {
	return &LLMService{
		apiURL: config.AppConfig.LLMAPIURL,
		model:  config.AppConfig.LLMModel,
		client: &http.Client{Timeout: time.Duration(config.AppConfig.LLMTimeout) * time.Second},
		store:  s,
	}
}

type AskResult struct {
	Query            string `json:"query"`
	Response         string `json:"response"`
	LocationsContext string `json:"locations_context"`
}

// AskRoute feeds the full location list to the model as context and returns
// its free-text answer. Outbound failures surface as canned response text.
func (s *LLMService) AskRoute(userQuery string) AskResult {
	locationsContext := formatLocationsContext(s.store.GetAllLocations())
	prompt := fmt.Sprintf(routePromptTemplate, locationsContext, userQuery)

	return AskResult{
		Query:            userQuery,
		Response:         s.generate(prompt),
		LocationsContext: locationsContext,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

func (s *LLMService) generate(prompt string) string {
	payload, err := json.Marshal(generateRequest{Model: s.model, Prompt: prompt, Stream: false})
	if err != nil {
		return fmt.Sprintf("Failed to build the language model request: %v", err)
	}

	resp, err := s.client.Post(s.apiURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return llmTimeoutMessage
		}
		return llmConnectionMessage
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llmConnectionMessage
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Language model error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return strings.TrimSpace(string(body))
	}
	if text, ok := result["response"].(string); ok {
		return text
	}
	if text, ok := result["text"].(string); ok {
		return text
	}
	return strings.TrimSpace(string(body))
}

// formatLocationsContext renders the stored locations one per line for the
// prompt.
func formatLocationsContext(locations []store.Location) string {
	if len(locations) == 0 {
		return "No locations are registered yet."
	}

	var b strings.Builder
	b.WriteString("Registered locations:\n")
	for _, loc := range locations {
		b.WriteString("- " + loc.Name)
		if loc.BuildingName != nil {
			fmt.Fprintf(&b, " (%s)", *loc.BuildingName)
		}
		if loc.Floor != nil {
			fmt.Fprintf(&b, ", floor %d", *loc.Floor)
		}
		if loc.RoomNumber != nil {
			fmt.Fprintf(&b, ", room %s", *loc.RoomNumber)
		}
		if loc.Description != nil {
			fmt.Fprintf(&b, " - %s", *loc.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ExtractLocationFromQuery returns the name of the first stored location
// whose name or building name occurs verbatim in the query. Simple keyword
// matching, good enough for kiosk phrasing.
func (s *LLMService) ExtractLocationFromQuery(userQuery string) string {
	for _, loc := range s.store.GetAllLocations() {
		if strings.Contains(userQuery, loc.Name) {
			return loc.Name
		}
		if loc.BuildingName != nil && strings.Contains(userQuery, *loc.BuildingName) {
			return loc.Name
		}
	}
	return ""
}
