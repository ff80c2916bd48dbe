package textmagic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://rest.textmagic.com"

// Client sends SMS through the TextMagic REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	apiKey     string
	fromNumber string
}

// NewClient creates a new TextMagic client
func NewClient(username, apiKey, fromNumber string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		username:   username,
		apiKey:     apiKey,
		fromNumber: fromNumber,
	}
}

// sendResponse is the shape of a successful message create response
type sendResponse struct {
	ID json.Number `json:"id"`
}

// Send sends one SMS and returns TextMagic's message ID. The address is
// normalized to digits only before sending, matching what the API expects.
func (c *Client) Send(ctx context.Context, address, text string) (string, error) {
	form := url.Values{}
	form.Set("phones", digitsOnly(address))
	form.Set("text", text)
	if c.fromNumber != "" {
		form.Set("from", c.fromNumber)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-TM-Username", c.username)
	req.Header.Set("X-TM-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("textmagic: message create returned %s", resp.Status)
	}

	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.ID.String(), nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
