package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-proxy-api/internal/config"
	"review-proxy-api/pkg/serverless"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "8081",
		LogLevel:    "error",
		DataStore: config.DataStoreConfig{
			URL:           url,
			PublicKey:     "anon-key",
			PrivilegedKey: "service-key",
			ReviewTable:   "avis",
		},
		Proxy: config.ProxyConfig{
			SharedSecret: "S1",
			MaxBodyBytes: 1 << 20,
		},
	}
}

func TestNewContainer(t *testing.T) {
	container, err := NewContainer(testConfig("https://project.supabase.co"))
	require.NoError(t, err)
	require.NotNil(t, container)

	assert.NotNil(t, container.ReviewService)
	assert.NotNil(t, container.ReviewHandler)
	assert.NotNil(t, container.Metrics)
	assert.NoError(t, container.Close())
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	_, err := NewContainer(nil)
	assert.Error(t, err)

	cfg := testConfig("https://project.supabase.co")
	cfg.Proxy.SharedSecret = ""
	_, err = NewContainer(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROXY_SHARED_SECRET")
}

func TestContainer_EndToEnd(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/auth/v1/user" && r.Header.Get("apikey") == "service-key":
			_, _ = io.WriteString(w, `{"id":"user-1"}`)
		case r.URL.Path == "/rest/v1/avis" && r.Header.Get("apikey") == "anon-key":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `[{"id":1,"provider_id":1}]`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"msg":"unexpected"}`)
		}
	}))
	defer backend.Close()

	container, err := NewContainer(testConfig(backend.URL))
	require.NoError(t, err)

	resp := container.ReviewHandler.HandleSubmit(context.Background(), &serverless.Request{
		Method:  http.MethodPost,
		Headers: map[string]string{"x-proxy-secret": "S1"},
		Body:    []byte(`{"avisData":{"provider_id":1},"userToken":"validTok"}`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", resp.Body)
	assert.JSONEq(t, `{"success":true,"data":[{"id":1,"provider_id":1}]}`, string(resp.Body))

	count, err := testutil.GatherAndCount(container.Metrics.Registry(), "review_proxy_external_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "identity and insert calls should both be observed")
}

func TestManager_BuildsOnce(t *testing.T) {
	var loads int32
	m := NewManager(func() (*config.Config, error) {
		atomic.AddInt32(&loads, 1)
		return testConfig("https://project.supabase.co"), nil
	})

	var wg sync.WaitGroup
	containers := make([]*Container, 8)
	for i := range containers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := m.Container()
			assert.NoError(t, err)
			containers[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	for _, c := range containers {
		assert.Same(t, containers[0], c)
	}
}

func TestManager_RemembersFailure(t *testing.T) {
	loadErr := errors.New("no env")
	var loads int32
	m := NewManager(func() (*config.Config, error) {
		atomic.AddInt32(&loads, 1)
		return nil, loadErr
	})

	_, err := m.Container()
	assert.ErrorIs(t, err, loadErr)
	_, err = m.Container()
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}
