// Package capi implements the Meta Conversions API integration: the event
// payload types, the user-data assembly rules, and a single-attempt HTTP
// client for the /events endpoint.
package capi

import "fmt"

// Submission is the raw lead-capture form payload. It lives for one
// request/response cycle and is never persisted.
type Submission struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	Country   string `json:"country,omitempty"`
	State     string `json:"state,omitempty"`
	City      string `json:"city,omitempty"`
}

// Valid reports whether all required fields are present.
func (s Submission) Valid() bool {
	return s.Email != "" && s.FirstName != "" && s.LastName != "" && s.Phone != ""
}

// UserData carries the matching fields of one event. Hashed PII fields go
// in arrays per the Meta matching spec; passthrough codes stay bare
// strings. State is a bare 2-letter code when passthrough and a
// one-element hash array otherwise, hence the any type.
type UserData struct {
	Email      []string `json:"em,omitempty"`
	Phone      []string `json:"ph,omitempty"`
	FirstName  []string `json:"fn,omitempty"`
	LastName   []string `json:"ln,omitempty"`
	City       []string `json:"ct,omitempty"`
	State      any      `json:"st,omitempty"`
	Gender     string   `json:"gd,omitempty"`
	Birthdate  string   `json:"db,omitempty"`
	Country    string   `json:"country,omitempty"`
	ExternalID []string `json:"external_id,omitempty"`

	// Contextual fields, always present and never hashed
	ClientIPAddress string `json:"client_ip_address"`
	ClientUserAgent string `json:"client_user_agent"`
	FBP             string `json:"fbp"`
	FBC             string `json:"fbc"`
}

// CustomData is the fixed per-deployment event metadata.
type CustomData struct {
	Currency        string  `json:"currency"`
	Value           float64 `json:"value"`
	ContentName     string  `json:"content_name"`
	ContentCategory string  `json:"content_category"`
}

// Event is one conversion event as the /events endpoint expects it.
type Event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	EventID        string     `json:"event_id"`
	EventSourceURL string     `json:"event_source_url"`
	ActionSource   string     `json:"action_source"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data"`
	TestEventCode  string     `json:"test_event_code,omitempty"`
}

// Request is the envelope posted to /{pixel_id}/events.
type Request struct {
	Data        []Event `json:"data"`
	AccessToken string  `json:"access_token"`
	PixelID     string  `json:"pixel_id"`
}

// Response is the Graph API reply, success or error.
type Response struct {
	EventsReceived int       `json:"events_received"`
	FBTraceID      string    `json:"fbtrace_id,omitempty"`
	Error          *APIError `json:"error,omitempty"`
}

// APIError is the Graph API error envelope, surfaced to callers for
// diagnostics.
type APIError struct {
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Code      int    `json:"code,omitempty"`
	Subcode   int    `json:"error_subcode,omitempty"`
	FBTraceID string `json:"fbtrace_id,omitempty"`

	// HTTP status the Graph API answered with
	Status int `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("meta conversions api: status %d", e.Status)
	}
	return fmt.Sprintf("meta conversions api: %s (type=%s code=%d)", e.Message, e.Type, e.Code)
}
