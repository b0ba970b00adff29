// Package agent provides the best-effort generative enrichment adapter.
// Clean Architecture: Adapter implementing ports.AgentService.
// The decision engine hands it the formatted candidate block; its free-text
// output becomes the reply on the non-confident path.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// OllamaAgent implements ports.AgentService using the Ollama generate API.
type OllamaAgent struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaAgent creates a new Ollama enrichment adapter.
func NewOllamaAgent(baseURL, model string) *OllamaAgent {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaAgent{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ollamaGenerateRequest is the Ollama generate API request.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaGenerateResponse is the Ollama generate API response.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Answer produces a support reply grounded in the candidate block. All
// failures are reported as entities.ErrAgentEnrichment; the decision engine
// swallows them.
func (a *OllamaAgent) Answer(ctx context.Context, query, candidates string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  a.model,
		Prompt: buildPrompt(query, candidates),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", entities.ErrAgentEnrichment, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", entities.ErrAgentEnrichment, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling Ollama: %v", entities.ErrAgentEnrichment, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: Ollama returned status %d", entities.ErrAgentEnrichment, resp.StatusCode)
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", entities.ErrAgentEnrichment, err)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// buildPrompt frames the candidate block for the model. The agent must not
// invent answers beyond the retrieved FAQ entries.
func buildPrompt(query, candidates string) string {
	var sb strings.Builder
	sb.WriteString("You are a customer support agent. Use the FAQ candidates below to answer. ")
	sb.WriteString("If none of them fit, suggest escalating to human support.\n\n")
	sb.WriteString("FAQ candidates:\n")
	sb.WriteString(candidates)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
