package highscore

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Client talks to a remote high-score API. Failures are logged and
// reported as zero values; the game never sees an error.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// Best returns the stored best for difficulty, or 0 on any failure.
func (c *Client) Best(ctx context.Context, difficulty string) int {
	u := c.baseURL + PathGetHighest + "?difficulty=" + url.QueryEscape(difficulty)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("high score unavailable", "err", err)
		return 0
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var body struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0
	}
	return int(body.Score)
}

// Submit records score for difficulty. Any failure yields Updated=false.
func (c *Client) Submit(ctx context.Context, difficulty string, score int) SaveResult {
	payload, err := json.Marshal(map[string]any{"difficulty": difficulty, "score": score})
	if err != nil {
		return SaveResult{}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathSaveHighest, bytes.NewReader(payload))
	if err != nil {
		return SaveResult{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("score submit failed", "err", err)
		return SaveResult{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("score submit rejected", "status", resp.StatusCode)
		return SaveResult{}
	}

	var res SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return SaveResult{}
	}
	return res
}
