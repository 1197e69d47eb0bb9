package directory

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuskit/campuskit/internal/authn"
	"github.com/campuskit/campuskit/internal/platform/httpx"
)

// Handler exposes the directory as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/{userID}", h.getUser)
	r.Patch("/{userID}", h.updateUser)
	r.Delete("/{userID}", h.deleteUser)
}

type patchRequest struct {
	FirstName         *string    `json:"firstName"`
	LastName          *string    `json:"lastName"`
	Email             *string    `json:"email"`
	Role              *Role      `json:"role"`
	Description       *string    `json:"description"`
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	caller := authn.IdentityFromContext(r.Context())
	users, err := h.service.ListUsers(r.Context(), caller.ExternalID)
	if err != nil {
		h.respondError(w, r, "list users", err)
		return
	}
	if users == nil {
		users = []UserRecord{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	caller := authn.IdentityFromContext(r.Context())
	user, err := h.service.GetUser(r.Context(), caller.ExternalID, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondError(w, r, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	caller := authn.IdentityFromContext(r.Context())
	var req patchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	patch := Patch{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Role:              req.Role,
		Description:       req.Description,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	}
	user, err := h.service.UpdateUser(r.Context(), caller.ExternalID, chi.URLParam(r, "userID"), patch)
	if err != nil {
		h.respondError(w, r, "update user", err)
		return
	}
	// The updated record is returned so the caller can patch its local state
	// instead of reloading the whole directory.
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	caller := authn.IdentityFromContext(r.Context())
	id, err := h.service.DeleteUser(r.Context(), caller.ExternalID, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondError(w, r, "delete user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Warn(op+" failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	httpx.RespondError(w, err)
}
