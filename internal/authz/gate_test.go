package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campuskit/internal/authz"
	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/shared"
)

type stubResolver struct {
	records map[string]directory.UserRecord
	err     error
	lookups int
}

func (s *stubResolver) GetByExternalID(ctx context.Context, externalID string) (directory.UserRecord, error) {
	s.lookups++
	if s.err != nil {
		return directory.UserRecord{}, s.err
	}
	rec, ok := s.records[externalID]
	if !ok {
		return directory.UserRecord{}, shared.ErrNotFound
	}
	return rec, nil
}

func TestAuthorizeAdmin(t *testing.T) {
	resolver := &stubResolver{records: map[string]directory.UserRecord{
		"ext-admin": {ID: "u1", ExternalID: "ext-admin", Role: directory.RoleAdmin},
	}}
	gate := authz.NewGate(resolver)

	caller, err := gate.Authorize(context.Background(), "ext-admin")
	require.NoError(t, err)
	assert.Equal(t, "u1", caller.ID)
}

func TestAuthorizeEmptyIdentityIsUnauthenticated(t *testing.T) {
	gate := authz.NewGate(&stubResolver{})

	_, err := gate.Authorize(context.Background(), "  ")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestAuthorizeUnknownIdentityIsUnauthorized(t *testing.T) {
	gate := authz.NewGate(&stubResolver{})

	_, err := gate.Authorize(context.Background(), "ext-stranger")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthorizeMemberIsUnauthorized(t *testing.T) {
	resolver := &stubResolver{records: map[string]directory.UserRecord{
		"ext-member": {ID: "u2", ExternalID: "ext-member", Role: directory.RoleMember},
	}}
	gate := authz.NewGate(resolver)

	_, err := gate.Authorize(context.Background(), "ext-member")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthorizeResolverFailurePropagates(t *testing.T) {
	boom := errors.New("database down")
	gate := authz.NewGate(&stubResolver{err: boom})

	_, err := gate.Authorize(context.Background(), "ext-admin")
	assert.ErrorIs(t, err, boom)
}

func TestAuthorizeResolvesFreshEveryCall(t *testing.T) {
	resolver := &stubResolver{records: map[string]directory.UserRecord{
		"ext-admin": {ID: "u1", ExternalID: "ext-admin", Role: directory.RoleAdmin},
	}}
	gate := authz.NewGate(resolver)

	_, err := gate.Authorize(context.Background(), "ext-admin")
	require.NoError(t, err)

	// Revoke between requests: the next call must see the new role.
	resolver.records["ext-admin"] = directory.UserRecord{ID: "u1", ExternalID: "ext-admin", Role: directory.RoleMember}
	_, err = gate.Authorize(context.Background(), "ext-admin")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Equal(t, 2, resolver.lookups)
}
