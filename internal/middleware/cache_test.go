package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/frontdivan/internal/config"
)

func TestCacheKey_DistinguishesConcretePaths(t *testing.T) {
	// GIVEN: two different reservation detail paths
	// WHEN: building cache keys under every strategy
	// THEN: the keys never collide

	for _, strategy := range []string{"route", "method_route", "route_query", "method_route_query"} {
		cfg := config.CacheConfig{Prefix: "frontdivan", KeyStrategy: strategy}

		k1 := cacheKey(cfg, http.MethodGet, "/v1/reservations/7", "")
		k2 := cacheKey(cfg, http.MethodGet, "/v1/reservations/9", "")

		assert.NotEqual(t, k1, k2, "strategy %s", strategy)
	}
}

func TestCacheKey_StableForIdenticalRequests(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "frontdivan", KeyStrategy: "route_query"}

	k1 := cacheKey(cfg, http.MethodGet, "/v1/reservations/7", "detail=full")
	k2 := cacheKey(cfg, http.MethodGet, "/v1/reservations/7", "detail=full")

	assert.Equal(t, k1, k2)
}

func TestCacheKey_InvalidationMatchesGetKey(t *testing.T) {
	// GIVEN: the default strategy used by the reservation detail route
	// WHEN: a write handler rebuilds the key for the same path with no query
	// THEN: it matches the key the GET stored under

	cfg := config.CacheConfig{Prefix: "frontdivan", KeyStrategy: "route_query"}

	stored := cacheKey(cfg, http.MethodGet, "/v1/reservations/7", "")
	rebuilt := cacheKey(cfg, http.MethodGet, "/v1/reservations/7", "")

	assert.Equal(t, stored, rebuilt)
}

func TestPayloadCodec_RoundTrip(t *testing.T) {
	// GIVEN: a JSON response with headers
	// WHEN: encoding for Redis and decoding back
	// THEN: status, headers and body survive intact

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"receivable_cents":5000}`)

	raw, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(raw)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestPayloadCodec_RejectsTruncatedData(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)

	_, _, _, ok = decodePayload(nil)
	assert.False(t, ok)
}
