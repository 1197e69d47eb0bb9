package idp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campuskit/internal/idp"
	"github.com/campuskit/campuskit/internal/shared"
)

func TestDeleteIdentitySendsAuthorizedRequest(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := idp.NewClient(srv.URL, "secret-key")
	require.NoError(t, client.DeleteIdentity(context.Background(), "ext-123"))
	assert.Equal(t, "/v1/users/ext-123", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestDeleteIdentityMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := idp.NewClient(srv.URL, "key")
	err := client.DeleteIdentity(context.Background(), "ext-missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteIdentityMapsServerErrorsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := idp.NewClient(srv.URL, "key")
	err := client.DeleteIdentity(context.Background(), "ext-1")
	assert.ErrorIs(t, err, shared.ErrProviderUnavailable)
}

func TestDeleteIdentityUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := idp.NewClient(srv.URL, "key")
	err := client.DeleteIdentity(context.Background(), "ext-1")
	assert.ErrorIs(t, err, shared.ErrProviderUnavailable)
}

func TestDeleteIdentityRequiresExternalID(t *testing.T) {
	client := idp.NewClient("http://127.0.0.1:0", "key")
	err := client.DeleteIdentity(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := idp.NewClient(srv.URL, "key")
	assert.NoError(t, client.Ping(context.Background()))
}
