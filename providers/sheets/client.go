package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booking-dispatcher/core/models"
)

const defaultBaseURL = "https://sheets.googleapis.com"

// Client reads the provider directory from a Google Sheets spreadsheet via
// the values API. The sheet is expected to hold one provider per row:
// Name, Phone, Location, Status.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sheetID    string
	apiKey     string
	readRange  string
}

// NewClient creates a new directory client for the given spreadsheet
func NewClient(sheetID, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		sheetID:    sheetID,
		apiKey:     apiKey,
		readRange:  "Providers!A2:D",
	}
}

// valuesResponse is the shape of the Sheets values API response
type valuesResponse struct {
	Values [][]string `json:"values"`
}

// Lookup returns the providers whose location column matches the given
// location, in sheet order. Matching is case-insensitive.
func (c *Client) Lookup(ctx context.Context, location string) ([]models.Candidate, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
		c.baseURL,
		url.PathEscape(c.sheetID),
		url.PathEscape(c.readRange),
		url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: values read returned %s", resp.Status)
	}

	var body valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, row := range body.Values {
		if len(row) < 3 || !strings.EqualFold(row[2], location) {
			continue
		}
		status := "active"
		if len(row) > 3 && row[3] != "" {
			status = row[3]
		}
		candidates = append(candidates, models.Candidate{
			Name:        row[0],
			Address:     row[1],
			LocationTag: row[2],
			Status:      status,
		})
	}
	return candidates, nil
}
