package idp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/platform/httpx"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Idp-Signature"

const maxWebhookBody = 1 << 20

// DirectorySink receives identity lifecycle events from the provider. These
// are the out-of-band creation and external-deletion paths of the directory.
type DirectorySink interface {
	RegisterIdentity(ctx context.Context, profile directory.IdentityProfile) (directory.UserRecord, error)
	RemoveIdentity(ctx context.Context, externalID string) error
}

// WebhookHandler verifies and applies provider events.
type WebhookHandler struct {
	logger *slog.Logger
	secret []byte
	sink   DirectorySink
}

// NewWebhookHandler builds WebhookHandler instance.
func NewWebhookHandler(logger *slog.Logger, secret string, sink DirectorySink) *WebhookHandler {
	return &WebhookHandler{logger: logger, secret: []byte(secret), sink: sink}
}

// MountRoutes registers the webhook endpoint.
func (h *WebhookHandler) MountRoutes(r chi.Router) {
	r.Post("/identity", h.handleEvent)
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		ImageURL  string `json:"imageUrl"`
	} `json:"data"`
}

func (h *WebhookHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unreadable body")
		return
	}
	if !h.verify(body, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("webhook signature rejected")
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "bad signature")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed event")
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		_, err = h.sink.RegisterIdentity(r.Context(), directory.IdentityProfile{
			ExternalID: event.Data.ID,
			Email:      event.Data.Email,
			FirstName:  event.Data.FirstName,
			LastName:   event.Data.LastName,
			ImageURL:   event.Data.ImageURL,
		})
	case "user.deleted":
		err = h.sink.RemoveIdentity(r.Context(), event.Data.ID)
	default:
		// Unknown event types are acknowledged so the provider stops retrying.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.Error("webhook apply failed", slog.String("type", event.Type), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) verify(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
