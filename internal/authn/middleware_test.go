package authn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campuskit/internal/authn"
)

func newMiddleware(t *testing.T) (*authn.TokenCodec, *authn.RevocationList, authn.Middleware) {
	t.Helper()
	codec, err := authn.NewTokenCodec("test-secret")
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	revoked := authn.NewRevocationList(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return codec, revoked, authn.Middleware{Codec: codec, Revoked: revoked}
}

func captureIdentity(identity *authn.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*identity = authn.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	codec, _, mw := newMiddleware(t)
	token, err := codec.Issue("ext-123", time.Hour)
	require.NoError(t, err)

	var identity authn.Identity
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	mw.Handler(captureIdentity(&identity)).ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ext-123", identity.ExternalID)
	assert.NotEmpty(t, identity.TokenID)
}

func TestMiddlewareWithoutTokenProceedsAnonymously(t *testing.T) {
	_, _, mw := newMiddleware(t)

	var identity authn.Identity
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	res := httptest.NewRecorder()
	mw.Handler(captureIdentity(&identity)).ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, identity.ExternalID)
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	_, _, mw := newMiddleware(t)

	var identity authn.Identity
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res := httptest.NewRecorder()
	mw.Handler(captureIdentity(&identity)).ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, identity.ExternalID)
}

func TestMiddlewareRejectsRevokedToken(t *testing.T) {
	codec, revoked, mw := newMiddleware(t)
	token, err := codec.Issue("ext-123", time.Hour)
	require.NoError(t, err)
	claims, err := codec.Parse(token)
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	var identity authn.Identity
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	mw.Handler(captureIdentity(&identity)).ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, identity.ExternalID)
}

func TestRevocationListExpiry(t *testing.T) {
	_, revoked, _ := newMiddleware(t)
	ctx := context.Background()

	// A token already past expiry needs no revocation entry at all.
	require.NoError(t, revoked.Revoke(ctx, "expired-id", time.Now().Add(-time.Minute)))
	isRevoked, err := revoked.IsRevoked(ctx, "expired-id")
	require.NoError(t, err)
	assert.False(t, isRevoked)

	require.NoError(t, revoked.Revoke(ctx, "live-id", time.Now().Add(time.Hour)))
	isRevoked, err = revoked.IsRevoked(ctx, "live-id")
	require.NoError(t, err)
	assert.True(t, isRevoked)
}
