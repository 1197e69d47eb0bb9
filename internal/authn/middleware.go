package authn

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/campuskit/campuskit/internal/platform/httpx"
)

// Middleware extracts and verifies the bearer token, attaching the caller
// identity to the request context. A request without a token proceeds with an
// empty identity: deciding what an anonymous caller may do belongs to the
// gate, not the transport.
type Middleware struct {
	Codec   *TokenCodec
	Revoked *RevocationList
	Logger  *slog.Logger
}

// Handler wraps next with identity resolution.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Codec.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "invalid bearer token")
			return
		}
		if m.Revoked != nil {
			revoked, err := m.Revoked.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("revocation lookup failed", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if revoked {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "token has been signed out")
				return
			}
		}
		ctx := ContextWithIdentity(r.Context(), Identity{ExternalID: claims.Subject, TokenID: claims.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
