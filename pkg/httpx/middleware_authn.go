package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

// RevocationChecker answers whether a token id is revoked or unknown. It
// must fail closed.
type RevocationChecker interface {
	CheckRevocation(ctx context.Context, tokenID string, typ jwtx.TokenType) bool
}

// AuthnMiddleware verifies the bearer token, checks its type and asks rc
// whether it is still live before trusting the claims. An empty want
// accepts either token type.
func AuthnMiddleware(v jwtx.Verifier, rc RevocationChecker, want jwtx.TokenType) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				WriteTokenError(w, MsgTokenMissing)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					WriteTokenError(w, MsgTokenExpired)
					return
				}
				log.Warn("jwt verify failed", "err", err)
				WriteTokenError(w, MsgTokenInvalid)
				return
			}

			if want != "" {
				if err := claims.ValidateType(want); err != nil {
					log.Warn("jwt type rejected", "jti", claims.ID, "type", claims.Type, "want", want)
					WriteTokenError(w, MsgTokenInvalid)
					return
				}
			}

			if rc.CheckRevocation(ctx, claims.ID, claims.Type) {
				log.Info("revoked token presented", "jti", claims.ID, "type", claims.Type, "sub", claims.Subject)
				WriteTokenError(w, MsgTokenRevoked)
				return
			}

			// Inject into context for downstream handlers.
			ctx = slogx.WithContext(contextWithAuth(ctx, claims), log.With("sub", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// RequireRole lets the request through when the caller's token carries at
// least one of roles. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, s := range roles {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, have := range rolesFromCtx(r.Context()) {
				if _, ok := want[have]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteMessage(w, http.StatusForbidden, MsgNotPermitted)
		})
	}
}
