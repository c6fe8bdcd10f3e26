// Package ai is the client for the external generative-language-model
// collaborator. Every operation is a single request/response call; a
// failed call surfaces as an error for that one operation and nothing
// is persisted on failure.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/colearn-app/colearn-api/utils"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds the collaborator credentials. TutorKey and BackupKey
// default to APIKey when unset; the tutor path rotates through all
// three on failure.
type Config struct {
	APIKey    string
	TutorKey  string
	BackupKey string
	Model     string
	BaseURL   string
}

// LoadConfig reads collaborator settings from the environment.
func LoadConfig() Config {
	apiKey := utils.GetEnvOrDefault("GEMINI_API_KEY", "")
	return Config{
		APIKey:    apiKey,
		TutorKey:  utils.GetEnvOrDefault("GEMINI_TUTOR_API_KEY", apiKey),
		BackupKey: utils.GetEnvOrDefault("GEMINI_BACKUP_API_KEY", apiKey),
		Model:     utils.GetEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		BaseURL:   utils.GetEnvOrDefault("GEMINI_BASE_URL", defaultBaseURL),
	}
}

// Client calls the generateContent REST endpoint
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TutorKey == "" {
		cfg.TutorKey = cfg.APIKey
	}
	if cfg.BackupKey == "" {
		cfg.BackupKey = cfg.APIKey
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // course generation responses are large
		},
	}
}

// Wire types for the generateContent endpoint
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate sends one prompt with the given key and returns the
// concatenated candidate text. No retry, no backoff.
func (c *Client) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", errors.New("AI API key not configured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, c.cfg.Model, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		utils.LogError("AI call failed with status %d in %v", resp.StatusCode, time.Since(start))
		return "", fmt.Errorf("AI API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("AI API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("AI API returned no candidates")
	}

	var text string
	for _, p := range parsed.Candidates[0].Content.Parts {
		text += p.Text
	}
	utils.LogAI("Generated %d chars in %v", len(text), time.Since(start))
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
