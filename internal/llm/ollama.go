package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/extract"
)

const suggestPrompt = `SYSTEM: You are a precise assistant. Return ONLY valid JSON. Do not add extra keys.

USER:
Extract the single most important operational update from the text.

Return ONLY JSON in this exact format:
{
  "summary": "...",
  "priority": "P0|P1|P2",
  "tags": ["..."]
}

Rules:
- Keep summary short (<= 200 chars).
- priority:
  - P0: money mismatch, incident/outage, compliance breach, urgent escalation
  - P1: needs review today, suspicious spikes, access issues impacting investigation
  - P2: informational updates, monitoring, planning
- tags: short category labels, lowercase.
- Do NOT invent facts. If nothing found, return {"summary":"","priority":"P2","tags":[]}.

TEXT:
%s
`

// Config holds the Ollama connection settings.
type Config struct {
	BaseURL string
	Model   string
}

// Ollama implements extract.Suggester against a local Ollama server's
// /api/generate endpoint (works even where /api/chat is unavailable).
type Ollama struct {
	config Config
	client *http.Client
}

// NewOllama creates an Ollama-backed suggester. The HTTP client carries no
// timeout of its own; the merger's per-call context bounds each request.
func NewOllama(config Config) *Ollama {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	return &Ollama{
		config: config,
		client: &http.Client{},
	}
}

// Name identifies the suggester in logs.
func (o *Ollama) Name() string {
	return "ollama:" + o.config.Model
}

// IsAvailable probes /api/tags to check the server is reachable.
func (o *Ollama) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, o.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type suggestionPayload struct {
	Summary  string   `json:"summary"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

// Suggest submits the text and decodes the model's JSON reply into a
// Suggestion. A reply that cannot be salvaged into JSON yields no suggestion
// rather than an error; transport failures surface as errors so the merger
// can record the degradation.
func (o *Ollama) Suggest(ctx context.Context, text string) (*extract.Suggestion, error) {
	payload := generateRequest{
		Model:   o.config.Model,
		Prompt:  fmt.Sprintf(suggestPrompt, text),
		Stream:  false,
		Options: map[string]any{"temperature": 0.1},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	raw := salvageJSON(result.Response)
	if raw == "" {
		return nil, nil
	}

	var parsed suggestionPayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, nil
	}

	suggestion := &extract.Suggestion{
		Summary: strings.TrimSpace(parsed.Summary),
		Tags:    cleanTags(parsed.Tags),
	}
	if parsed.Priority != "" {
		suggestion.Priority = domain.ParsePriority(parsed.Priority)
	}
	if suggestion.Summary == "" && len(suggestion.Tags) == 0 && suggestion.Priority == "" {
		return nil, nil
	}
	return suggestion, nil
}

var codeFenceRE = regexp.MustCompile("(?i)```(?:json)?")

// salvageJSON extracts the first parseable JSON object from a model reply
// that may contain prose or code fences. Returns "" when nothing parses.
func salvageJSON(text string) string {
	text = strings.TrimSpace(codeFenceRE.ReplaceAllString(text, ""))

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	candidate := text[start:]

	if json.Valid([]byte(candidate)) {
		return candidate
	}

	// Trim trailing prose until the remainder parses.
	floor := len(candidate) - 12000
	if floor < 0 {
		floor = 0
	}
	for i := len(candidate); i > floor; i-- {
		sub := strings.TrimSpace(candidate[:i])
		if json.Valid([]byte(sub)) {
			return sub
		}
	}
	return ""
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
