package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/campuskit/campuskit/internal/shared"
)

// Authorizer resolves the caller and answers whether it may operate on the
// directory. It is consulted on every operation, never cached, so a role
// revoked between two requests takes effect on the second.
type Authorizer interface {
	Authorize(ctx context.Context, callerExternalID string) (UserRecord, error)
}

// Mirror is the sole write capability toward the external identity provider.
type Mirror interface {
	DeleteIdentity(ctx context.Context, externalID string) error
}

// AuditRecorder persists a trail of admin mutations.
type AuditRecorder interface {
	Record(ctx context.Context, actorExternalID, action, entityID string, meta map[string]any) error
}

// OrphanEnqueuer records a mirrored identity left behind by a partial delete
// so an operator can finish the removal. It records, it does not retry.
type OrphanEnqueuer interface {
	EnqueueMirrorOrphan(ctx context.Context, userID, externalID, reason string) error
}

// OutcomeRecorder counts operation outcomes for monitoring.
type OutcomeRecorder interface {
	ObserveDirectoryOp(operation, outcome string)
}

// Service orchestrates the authorization gate, the record store and the
// identity mirror. Audit, enqueuer and metrics are optional collaborators.
type Service struct {
	logger   *slog.Logger
	store    Store
	gate     Authorizer
	mirror   Mirror
	audit    AuditRecorder
	orphans  OrphanEnqueuer
	metrics  OutcomeRecorder
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, store Store, gate Authorizer, mirror Mirror) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		gate:     gate,
		mirror:   mirror,
		validate: validator.New(),
	}
}

// WithAudit attaches an audit recorder.
func (s *Service) WithAudit(audit AuditRecorder) *Service {
	s.audit = audit
	return s
}

// WithOrphanEnqueuer attaches the partial-delete follow-up queue.
func (s *Service) WithOrphanEnqueuer(enqueuer OrphanEnqueuer) *Service {
	s.orphans = enqueuer
	return s
}

// WithMetrics attaches an outcome recorder.
func (s *Service) WithMetrics(metrics OutcomeRecorder) *Service {
	s.metrics = metrics
	return s
}

// ListUsers returns every record, newest first.
func (s *Service) ListUsers(ctx context.Context, callerExternalID string) ([]UserRecord, error) {
	if _, err := s.gate.Authorize(ctx, callerExternalID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, OrderCreatedDesc)
}

// GetUser returns a single record by internal id.
func (s *Service) GetUser(ctx context.Context, callerExternalID, id string) (UserRecord, error) {
	if _, err := s.gate.Authorize(ctx, callerExternalID); err != nil {
		return UserRecord{}, err
	}
	return s.store.Get(ctx, id)
}

// UpdateUser validates and applies a partial update. The mirror is not
// written: the local store is the source of truth for role and profile.
func (s *Service) UpdateUser(ctx context.Context, callerExternalID, id string, patch Patch) (UserRecord, error) {
	caller, err := s.gate.Authorize(ctx, callerExternalID)
	if err != nil {
		return UserRecord{}, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return UserRecord{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		s.observe("update", outcomeFor(err))
		return UserRecord{}, err
	}
	s.observe("update", "ok")
	s.recordAudit(ctx, caller.ExternalID, "user.update", updated.ID, map[string]any{"role": updated.Role})
	return updated, nil
}

// DeleteUser removes a record and its mirrored identity, in that order. The
// local row goes first so the directory stops listing the account even when
// the provider is unreachable. A failed mirror delete is reported as a
// partial failure carrying the orphaned external id; the local delete is
// final and is not rolled back.
func (s *Service) DeleteUser(ctx context.Context, callerExternalID, id string) (string, error) {
	caller, err := s.gate.Authorize(ctx, callerExternalID)
	if err != nil {
		return "", err
	}

	target, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.store.Delete(ctx, target.ID, nil); err != nil {
		s.observe("delete", outcomeFor(err))
		return "", err
	}

	s.recordAudit(ctx, caller.ExternalID, "user.delete", target.ID, map[string]any{"externalId": target.ExternalID})

	if err := s.mirror.DeleteIdentity(ctx, target.ExternalID); err != nil {
		// An identity already gone at the provider leaves nothing to clean up.
		if errors.Is(err, shared.ErrNotFound) {
			s.observe("delete", "ok")
			return target.ID, nil
		}
		s.observe("delete", "partial")
		s.enqueueOrphan(ctx, target.ID, target.ExternalID, err.Error())
		return target.ID, &shared.PartialDeleteError{ExternalID: target.ExternalID, Err: err}
	}

	s.observe("delete", "ok")
	return target.ID, nil
}

// RegisterIdentity upserts the record for a provider identity. This is the
// out-of-band creation path: it is driven by the provider webhook, not by an
// admin, so it passes no gate. Re-delivery of the same identity is a no-op.
func (s *Service) RegisterIdentity(ctx context.Context, profile IdentityProfile) (UserRecord, error) {
	if profile.ExternalID == "" {
		return UserRecord{}, fmt.Errorf("%w: external id required", shared.ErrValidation)
	}
	existing, err := s.store.GetByExternalID(ctx, profile.ExternalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return UserRecord{}, err
	}
	created, err := s.store.Create(ctx, UserRecord{
		ExternalID: profile.ExternalID,
		Email:      profile.Email,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		ImageURL:   profile.ImageURL,
		Role:       RoleMember,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return s.store.GetByExternalID(ctx, profile.ExternalID)
		}
		return UserRecord{}, err
	}
	s.logger.Info("registered identity", slog.String("external_id", profile.ExternalID), slog.String("id", created.ID))
	return created, nil
}

// RemoveIdentity drops the local record for an identity the provider reports
// as deleted externally. The mirror is not called back: the identity is
// already gone at the source.
func (s *Service) RemoveIdentity(ctx context.Context, externalID string) error {
	record, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.Delete(ctx, record.ID, nil)
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, entityID, meta); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) enqueueOrphan(ctx context.Context, userID, externalID, reason string) {
	if s.orphans == nil {
		return
	}
	if err := s.orphans.EnqueueMirrorOrphan(ctx, userID, externalID, reason); err != nil {
		s.logger.Warn("enqueue mirror orphan failed", slog.String("external_id", externalID), slog.Any("error", err))
	}
}

func (s *Service) observe(operation, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDirectoryOp(operation, outcome)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrConflict):
		return "conflict"
	case errors.Is(err, shared.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, shared.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
