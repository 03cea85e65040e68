package models

import "encoding/json"

// ReviewSubmission is the body posted by the site backend
type ReviewSubmission struct {
	AvisData  *ReviewFields `json:"avisData"`
	UserToken string        `json:"userToken" validate:"required"`
}

// ReviewFields holds the scores and comment of one review.
//
// Values are kept as raw JSON so they reach the avis table exactly as the
// caller sent them: no type coercion, absent keys stay absent, and keys other
// than these seven are not forwarded.
type ReviewFields struct {
	ProviderID json.RawMessage `json:"provider_id,omitempty"`
	Prix       json.RawMessage `json:"prix,omitempty"`
	Service    json.RawMessage `json:"service,omitempty"`
	Fiabilite  json.RawMessage `json:"fiabilite,omitempty"`
	Ecologie   json.RawMessage `json:"ecologie,omitempty"`
	Engagement json.RawMessage `json:"engagement,omitempty"`
	Comment    json.RawMessage `json:"comment,omitempty"`
}

// Row returns the single-row batch inserted for this review
func (f *ReviewFields) Row() []ReviewFields {
	return []ReviewFields{*f}
}

// Identity is the verified user behind a bearer token.
// It only lives for the duration of one request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Aud   string `json:"aud,omitempty"`
}
