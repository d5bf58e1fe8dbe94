package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kapu/repfinder-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient() *Client {
	return NewClient(nil, zap.NewNop(), WithRetry(3, 0, 0))
}

func TestGetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"result":{"parliamentary_constituency":"Islington North"}}`))
	}))
	defer srv.Close()

	var out struct {
		Result struct {
			Constituency string `json:"parliamentary_constituency"`
		} `json:"result"`
	}
	require.NoError(t, newTestClient().GetJSON(context.Background(), "postcodes", srv.URL, &out))
	assert.Equal(t, "Islington North", out.Result.Constituency)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient().Get(context.Background(), "riksdagen", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), "postcodes", srv.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.OriginStatusOf(err))
	assert.Equal(t, errors.CodeUpstream, errors.CodeOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetExhaustedRetriesReturnsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), "europarl", srv.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, errors.StatusOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, errors.OriginStatusOf(err))
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop(), WithRetry(1, 0, 0))
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "openaustralia", srv.URL)
		require.Error(t, err)
	}
	before := calls.Load()

	_, err := c.Get(context.Background(), "openaustralia", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, before, calls.Load())
}

func TestRedactHidesKeys(t *testing.T) {
	got := redact("https://api.geocod.io/v1.7/geocode?q=x&api_key=secret")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "REDACTED")
}
