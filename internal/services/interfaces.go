package services

import (
	"context"
	"encoding/json"

	"review-proxy-api/internal/models"
)

// ReviewService verifies the submitting user and stores their review
type ReviewService interface {
	// ParseSubmission decodes a request body and checks a token is present
	ParseSubmission(body []byte) (*models.ReviewSubmission, error)

	// SubmitReview verifies the token and inserts the review as that user
	SubmitReview(ctx context.Context, sub *models.ReviewSubmission) (*SubmitReviewResult, error)
}

// SubmitReviewResult is the outcome of a stored review
type SubmitReviewResult struct {
	Identity *models.Identity
	Rows     json.RawMessage
}

// IdentityVerifier resolves a user token with privileged credentials
type IdentityVerifier interface {
	GetUser(ctx context.Context, token string) (*models.Identity, error)
}

// RowInserter writes rows under the credentials it was built with
type RowInserter interface {
	Insert(ctx context.Context, table string, rows any) (json.RawMessage, error)
}

// ScopedInserterFactory builds a RowInserter authenticated as the bearer
// of token, so the data store applies that user's row-level policies.
type ScopedInserterFactory func(token string) (RowInserter, error)
