package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GameEngine is the gateway to the external engine hosting gamespaces.
// ExtendSession must be idempotent on the engine side; the coordinator
// retries nothing and deduplicates nothing.
type GameEngine interface {
	ExtendSession(ctx context.Context, challengeID string, newEnd time.Time, engine string) error
}

type httpGameEngine struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPGameEngine creates a game-engine client against the given base
// URL. An empty apiKey sends no auth header (dev engines).
func NewHTTPGameEngine(baseURL, apiKey string) GameEngine {
	return &httpGameEngine{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type extendSessionRequest struct {
	ExpirationTime time.Time `json:"expirationTime"`
	Engine         string    `json:"engine"`
}

func (c *httpGameEngine) ExtendSession(ctx context.Context, challengeID string, newEnd time.Time, engine string) error {
	body, err := json.Marshal(extendSessionRequest{ExpirationTime: newEnd, Engine: engine})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/gamespaces/%s/extend", c.baseURL, challengeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine extend call failed for gamespace %s: %w", challengeID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("engine returned %d for gamespace %s: %s", resp.StatusCode, challengeID, string(msg))
	}
	return nil
}
