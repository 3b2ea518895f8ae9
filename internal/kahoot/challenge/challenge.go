// Package challenge acquires the per-session WebSocket token for a game
// pin. Joining a game requires probing the reservation endpoint, running
// the obfuscated JavaScript snippet it returns inside a sandbox, and using
// the evaluated string as an XOR key for the base64 token delivered in a
// response header.
package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/streamspace-dev/quizswarm/internal/jsonutil"
	"github.com/streamspace-dev/quizswarm/internal/logger"
)

// UserAgent is the fixed desktop browser identity presented to the game
// endpoint. The reservation service rejects unknown clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.132 Safari/537.36"

const defaultBaseURL = "https://kahoot.it"

// Client probes game codes and decodes session tokens.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a challenge client with a default HTTP client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a challenge client against a non-default
// endpoint. Used by tests.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// ProbeResult is the reservation endpoint's answer for a live game.
type ProbeResult struct {
	// Token is the base64, XOR-obfuscated session token from the
	// x-kahoot-session-token response header.
	Token string

	// Response is the decoded reservation body.
	Response ProbeResponse
}

// ProbeResponse is the JSON body of a successful probe.
type ProbeResponse struct {
	TwoFactorAuth bool            `json:"twoFactorAuth"`
	Namerator     bool            `json:"namerator"`
	SmartPractice bool            `json:"smartPractice"`
	Challenge     string          `json:"challenge"`
	ParticipantID json.RawMessage `json:"participantId,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps unknown keys.
func (r *ProbeResponse) UnmarshalJSON(data []byte) error {
	type plain ProbeResponse
	extra, err := jsonutil.UnmarshalExtra(data, (*plain)(r))
	if err != nil {
		return err
	}
	r.Extra = extra
	return nil
}

// Probe performs the one-shot reservation lookup for a game code.
func (c *Client) Probe(ctx context.Context, code string) (*ProbeResult, error) {
	logger.Challenge().Trace().Str("code", code).Msg("probing game code")

	url := fmt.Sprintf("%s/reserve/session/%s/?%d", c.baseURL, code, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrInvalidCode
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &InvalidStatusError{Status: res.StatusCode}
	}

	token := res.Header.Get("x-kahoot-session-token")
	if token == "" {
		return nil, ErrMissingToken
	}

	var response ProbeResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode probe response: %w", err)
	}

	return &ProbeResult{Token: token, Response: response}, nil
}

// GetToken probes the code and decodes the WebSocket session token. The
// script evaluation blocks the calling goroutine; call this before
// entering the session loop, never from a handler hot path.
func (c *Client) GetToken(ctx context.Context, code string) (string, error) {
	res, err := c.Probe(ctx, code)
	if err != nil {
		return "", err
	}

	start := time.Now()
	token, err := Decode(res.Token, res.Response.Challenge)
	if err != nil {
		return "", err
	}
	logger.Challenge().Trace().
		Dur("duration", time.Since(start)).
		Msg("decoded challenge")

	return token, nil
}
