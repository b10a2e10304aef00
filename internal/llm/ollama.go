package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"finance-tracker/internal/config"
)

const maxOllamaErrorBody = 4 << 10

var ErrEmptyResponse = errors.New("ollama returned empty response")

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaGenerator calls a local Ollama server's /api/generate endpoint
// without streaming.
type OllamaGenerator struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllamaGenerator(baseURL string, httpClient *http.Client) *OllamaGenerator {
	if baseURL == "" {
		baseURL = config.DefaultOllamaBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OllamaGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (o *OllamaGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	payload, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama API connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxOllamaErrorBody))
		return "", fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}

	if out.Response == "" {
		return "", ErrEmptyResponse
	}

	return out.Response, nil
}
