// Package meetlink talks to the external meeting-link provider. It is
// invoked only after a slot has cleared availability, and every failure
// is non-fatal: the appointment is simply created without a link.
package meetlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type provisionRequest struct {
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

type provisionResponse struct {
	JoinURL string `json:"join_url"`
}

// Provision asks the provider for a join URL for the slot.
func (c *Client) Provision(ctx context.Context, subject string, date time.Time, startTime string) (string, error) {
	body, err := json.Marshal(provisionRequest{
		Subject:   subject,
		Date:      date.Format("2006-01-02"),
		StartTime: startTime,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/meetings", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("meetlink provider returned %d", resp.StatusCode)
	}

	var out provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.JoinURL == "" {
		return "", fmt.Errorf("meetlink provider returned empty join_url")
	}
	return out.JoinURL, nil
}
