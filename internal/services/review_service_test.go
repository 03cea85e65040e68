package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-proxy-api/internal/datastore"
	"review-proxy-api/internal/models"
)

type fakeVerifier struct {
	identities map[string]*models.Identity
	err        error
	calls      int
}

func (f *fakeVerifier) GetUser(ctx context.Context, token string) (*models.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	identity, ok := f.identities[token]
	if !ok {
		return nil, &datastore.APIError{Status: 401, Message: "invalid JWT"}
	}
	return identity, nil
}

type fakeInserter struct {
	mu     sync.Mutex
	token  string
	tables []string
	rows   []string
	err    error
	panic  any
}

func (f *fakeInserter) Insert(ctx context.Context, table string, rows any) (json.RawMessage, error) {
	if f.panic != nil {
		panic(f.panic)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, _ := json.Marshal(rows)
	f.tables = append(f.tables, table)
	f.rows = append(f.rows, string(payload))
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`[{"id":` + strconv.Itoa(len(f.rows)) + `,"provider_id":1}]`), nil
}

type scopedRecorder struct {
	inserter *fakeInserter
	tokens   []string
	err      error
}

func (s *scopedRecorder) factory(token string) (RowInserter, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	return s.inserter, nil
}

func newTestService(t *testing.T) (ReviewService, *fakeVerifier, *scopedRecorder) {
	t.Helper()
	verifier := &fakeVerifier{identities: map[string]*models.Identity{
		"validTok": {ID: "user-1", Role: "authenticated"},
	}}
	scoped := &scopedRecorder{inserter: &fakeInserter{}}

	svc, err := NewReviewService(verifier, scoped.factory, "avis")
	require.NoError(t, err)
	return svc, verifier, scoped
}

const scenarioBody = `{"avisData":{"provider_id":1,"prix":10,"service":5,"fiabilite":5,"ecologie":5,"engagement":5,"comment":"ok"},"userToken":"validTok"}`

func TestNewReviewService_RequiresDependencies(t *testing.T) {
	factory := func(string) (RowInserter, error) { return &fakeInserter{}, nil }

	_, err := NewReviewService(nil, factory, "avis")
	assert.Error(t, err)
	_, err = NewReviewService(&fakeVerifier{}, nil, "avis")
	assert.Error(t, err)
	_, err = NewReviewService(&fakeVerifier{}, factory, "")
	assert.Error(t, err)
}

func TestParseSubmission(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name string
		body string
		kind ErrorKind
	}{
		{"empty", "", KindMalformedRequest},
		{"whitespace", "  \n", KindMalformedRequest},
		{"null", "null", KindMalformedRequest},
		{"truncated", `{"avisData":{`, KindMalformedRequest},
		{"not json", "avisData=1&userToken=x", KindMalformedRequest},
		{"array", `[1,2]`, KindMalformedRequest},
		{"token wrong type", `{"userToken":42}`, KindMalformedRequest},
		{"token absent", `{"avisData":{"provider_id":1}}`, KindMissingField},
		{"token empty", `{"avisData":{"provider_id":1},"userToken":""}`, KindMissingField},
		{"token null", `{"userToken":null}`, KindMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := svc.ParseSubmission([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, sub)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	t.Run("valid", func(t *testing.T) {
		sub, err := svc.ParseSubmission([]byte(scenarioBody))
		require.NoError(t, err)
		assert.Equal(t, "validTok", sub.UserToken)
		require.NotNil(t, sub.AvisData)
		assert.JSONEq(t, "1", string(sub.AvisData.ProviderID))
	})
}

func TestSubmitReview_Success(t *testing.T) {
	svc, verifier, scoped := newTestService(t)

	sub, err := svc.ParseSubmission([]byte(scenarioBody))
	require.NoError(t, err)

	result, err := svc.SubmitReview(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, "user-1", result.Identity.ID)
	assert.JSONEq(t, `[{"id":1,"provider_id":1}]`, string(result.Rows))
	assert.Equal(t, 1, verifier.calls)

	// the insert runs as the submitting user, not with the privileged key
	assert.Equal(t, []string{"validTok"}, scoped.tokens)
	assert.Equal(t, []string{"avis"}, scoped.inserter.tables)
	require.Len(t, scoped.inserter.rows, 1)
	assert.JSONEq(t,
		`[{"provider_id":1,"prix":10,"service":5,"fiabilite":5,"ecologie":5,"engagement":5,"comment":"ok"}]`,
		scoped.inserter.rows[0])
}

func TestSubmitReview_IdenticalRequestsInsertTwice(t *testing.T) {
	svc, _, scoped := newTestService(t)

	for i := 0; i < 2; i++ {
		sub, err := svc.ParseSubmission([]byte(scenarioBody))
		require.NoError(t, err)
		_, err = svc.SubmitReview(context.Background(), sub)
		require.NoError(t, err)
	}

	assert.Len(t, scoped.inserter.rows, 2)
	assert.Equal(t, scoped.inserter.rows[0], scoped.inserter.rows[1])
}

func TestSubmitReview_InvalidToken(t *testing.T) {
	svc, _, scoped := newTestService(t)

	_, err := svc.SubmitReview(context.Background(), &models.ReviewSubmission{
		AvisData:  &models.ReviewFields{},
		UserToken: "expired",
	})
	require.Error(t, err)
	assert.Equal(t, KindIdentity, KindOf(err))
	assert.Equal(t, "invalid token, reconnection required", err.Error())
	assert.Empty(t, scoped.tokens, "no scoped client may be built for a rejected token")
}

func TestSubmitReview_BackendReportsNoUser(t *testing.T) {
	svc, verifier, _ := newTestService(t)
	verifier.identities["ghost"] = &models.Identity{}

	_, err := svc.SubmitReview(context.Background(), &models.ReviewSubmission{
		AvisData:  &models.ReviewFields{},
		UserToken: "ghost",
	})
	assert.Equal(t, KindIdentity, KindOf(err))
	assert.ErrorIs(t, err, datastore.ErrNoUser)
}

func TestSubmitReview_VerifierTransportFailure(t *testing.T) {
	svc, verifier, _ := newTestService(t)
	verifier.err = errors.New("dial tcp: connection refused")

	_, err := svc.SubmitReview(context.Background(), &models.ReviewSubmission{
		AvisData:  &models.ReviewFields{},
		UserToken: "validTok",
	})
	assert.Equal(t, KindIdentity, KindOf(err))
}

func TestSubmitReview_StorageRejected(t *testing.T) {
	svc, _, scoped := newTestService(t)
	scoped.inserter.err = &datastore.APIError{
		Status:  403,
		Code:    "42501",
		Message: `new row violates row-level security policy for table "avis"`,
	}

	sub, err := svc.ParseSubmission([]byte(scenarioBody))
	require.NoError(t, err)

	_, err = svc.SubmitReview(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, `storage insert error (policy?): new row violates row-level security policy for table "avis"`, err.Error())
}

func TestSubmitReview_MissingReviewData(t *testing.T) {
	svc, verifier, scoped := newTestService(t)

	_, err := svc.SubmitReview(context.Background(), &models.ReviewSubmission{UserToken: "validTok"})
	require.Error(t, err)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Equal(t, "internal proxy error: review data is missing", err.Error())
	assert.Equal(t, 1, verifier.calls, "identity is verified before the row is built")
	assert.Empty(t, scoped.tokens)
}

func TestSubmitReview_ScopedClientFailure(t *testing.T) {
	svc, _, scoped := newTestService(t)
	scoped.err = errors.New("data store API key is required")

	_, err := svc.SubmitReview(context.Background(), &models.ReviewSubmission{
		AvisData:  &models.ReviewFields{},
		UserToken: "validTok",
	})
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Contains(t, err.Error(), "internal proxy error: failed to create user client")
}

func TestSubmitReview_RecoversPanics(t *testing.T) {
	svc, _, scoped := newTestService(t)
	scoped.inserter.panic = "nil map write"

	var (
		result *SubmitReviewResult
		err    error
	)
	require.NotPanics(t, func() {
		result, err = svc.SubmitReview(context.Background(), &models.ReviewSubmission{
			AvisData:  &models.ReviewFields{},
			UserToken: "validTok",
		})
	})
	assert.Nil(t, result)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Equal(t, "internal proxy error: nil map write", err.Error())
}
