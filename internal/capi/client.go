package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ghostkyle24/bonusmarmitas/internal/config"
	"github.com/google/uuid"
)

// HTTPDoer is the interface for executing HTTP requests. *http.Client
// satisfies it; tests inject a stub.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts conversion events to the Graph API. One attempt per event,
// no retry or backoff: a failed forward leaves the dedup keys unconsumed
// and the submitter retries end to end.
type Client struct {
	baseURL       string
	pixelID       string
	accessToken   string
	testEventCode string
	httpClient    HTTPDoer
}

// NewClient creates a Conversions API client from config.
func NewClient(cfg config.MetaConfig) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		pixelID:       cfg.PixelID,
		accessToken:   cfg.AccessToken,
		testEventCode: cfg.TestEventCode,
		httpClient:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// NewEventID returns a fresh deduplication identifier. The browser pixel
// fires the same ID so Meta collapses the two sightings into one event.
func NewEventID() string {
	return uuid.NewString()
}

// SendEvent forwards a single event. A non-2xx reply decodes the Graph
// error envelope and comes back as *APIError so the handler can surface
// message and code to the caller.
func (c *Client) SendEvent(ctx context.Context, evt Event) (*Response, error) {
	if c.testEventCode != "" {
		evt.TestEventCode = c.testEventCode
	}

	payload := Request{
		Data:        []Event{evt},
		AccessToken: c.accessToken,
		PixelID:     c.pixelID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}

	url := fmt.Sprintf("%s/%s/events", c.baseURL, c.pixelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed Response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parsed.Error
		if apiErr == nil {
			apiErr = &APIError{Message: string(respBody)}
		}
		apiErr.Status = resp.StatusCode
		return &parsed, apiErr
	}

	return &parsed, nil
}

// NewPurchaseEvent assembles a Purchase event stamped with the current
// time and a fresh event ID.
func NewPurchaseEvent(ud UserData, cd CustomData, sourceURL string) Event {
	return Event{
		EventName:      "Purchase",
		EventTime:      time.Now().Unix(),
		EventID:        NewEventID(),
		EventSourceURL: sourceURL,
		ActionSource:   "website",
		UserData:       ud,
		CustomData:     cd,
	}
}
