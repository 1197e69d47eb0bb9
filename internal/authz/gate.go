// Package authz holds the gate every directory operation must pass: the
// caller's record is resolved fresh by external identity id and must carry the
// ADMIN role. Nothing is cached between requests.
package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/shared"
)

// Resolver looks up the caller's record by the identity provider's key.
type Resolver interface {
	GetByExternalID(ctx context.Context, externalID string) (directory.UserRecord, error)
}

// Gate authorizes directory operations.
type Gate struct {
	resolver Resolver
}

// NewGate constructs a Gate.
func NewGate(resolver Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Authorize resolves the caller and requires the ADMIN role. An empty
// external id means no credential was presented at all, which is reported as
// unauthenticated rather than unauthorized.
func (g *Gate) Authorize(ctx context.Context, callerExternalID string) (directory.UserRecord, error) {
	if strings.TrimSpace(callerExternalID) == "" {
		return directory.UserRecord{}, shared.ErrUnauthenticated
	}
	caller, err := g.resolver.GetByExternalID(ctx, callerExternalID)
	if err != nil {
		// An authenticated identity without a directory record gets no access.
		if errors.Is(err, shared.ErrNotFound) {
			return directory.UserRecord{}, shared.ErrUnauthorized
		}
		return directory.UserRecord{}, err
	}
	if caller.Role != directory.RoleAdmin {
		return directory.UserRecord{}, shared.ErrUnauthorized
	}
	return caller, nil
}

var _ directory.Authorizer = (*Gate)(nil)
