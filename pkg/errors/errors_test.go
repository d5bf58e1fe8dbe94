package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusOfMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("bad", ReasonInvalidFormat, "postal", "x"), http.StatusBadRequest, CodeInvalidInput},
		{"not found", NewNotFoundError("none", ReasonNoMatchFound, nil), http.StatusNotFound, CodeNotFound},
		{"upstream", NewUpstreamError("down", "geocodio", 502, nil), http.StatusServiceUnavailable, CodeUpstream},
		{"not cached", NewNotCachedError("france", time.Minute), http.StatusServiceUnavailable, CodeNotCached},
		{"cache", NewCacheError("get failed", "get", "k", nil), http.StatusInternalServerError, CodeCache},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, CodeService},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, StatusOf(tc.err))
			assert.Equal(t, tc.code, CodeOf(tc.err))
		})
	}
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	base := NewNotCachedError("sweden", 5*time.Minute)
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.True(t, IsNotCached(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, 5*time.Minute, RetryAfterOf(wrapped))
	assert.Equal(t, "Data not cached. Please run sync first.", MessageOf(wrapped))

	notFound := fmt.Errorf("x: %w", NewNotFoundError("gone", ReasonUnmappedPostcode, nil))
	assert.True(t, IsNotFound(notFound))
	assert.Equal(t, ReasonUnmappedPostcode, ReasonOf(notFound))

	upstream := fmt.Errorf("y: %w", NewUpstreamError("down", "postcodes.io", 404, nil))
	assert.Equal(t, 404, OriginStatusOf(upstream))
}
