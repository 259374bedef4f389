package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/designer/internal/auth/service"
	"github.com/aussiebroadwan/designer/pkg/authsdk"
	"github.com/aussiebroadwan/designer/pkg/httpx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

const (
	msgUserExists       = "user already exists"
	msgMissingFields    = "a user name and password must be provided"
	msgMalformedRequest = "request body must be a JSON object"
)

// maxCredentialsBody caps register and login bodies.
const maxCredentialsBody = 4 << 10

type AuthHandler struct {
	TokenService *service.TokenService
	UserService  *service.UserService
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (authsdk.CredentialsRequest, bool) {
	var req authsdk.CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCredentialsBody)).Decode(&req); err != nil {
		slogx.FromContext(r.Context()).Info("malformed credentials body", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, msgMalformedRequest)
		return req, false
	}
	return req, true
}

// HandleRegister creates a user with the default role set.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), req.UserName, req.Password)
	switch {
	case err == nil:
		httpx.WriteMessage(w, http.StatusCreated, fmt.Sprintf("user '%s' created", user.Username))
	case errors.Is(err, service.ErrUserExists):
		httpx.WriteMessage(w, http.StatusConflict, msgUserExists)
	case errors.Is(err, service.ErrValidation):
		httpx.WriteMessage(w, http.StatusBadRequest, msgMissingFields)
	default:
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgServerError)
	}
}

// HandleLogin exchanges a user name and password for a token pair.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if strings.TrimSpace(req.UserName) == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, httpx.MsgBadCredential)
		return
	}

	pair, err := h.TokenService.Login(r.Context(), req.UserName, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteMessage(w, http.StatusUnauthorized, httpx.MsgBadCredential)
		return
	default:
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		UserName:           pair.Access.Claims.Subject,
		AccessToken:        pair.Access.Token,
		AccessTokenExpiry:  pair.Access.ExpiresAt(),
		RefreshToken:       pair.Refresh.Token,
		RefreshTokenExpiry: pair.Refresh.ExpiresAt(),
	})
}

// HandleRefresh rotates the access token of the session the presented
// refresh token belongs to.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteTokenError(w, httpx.MsgTokenMissing)
		return
	}

	access, err := h.TokenService.Refresh(r.Context(), claims.ID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteMessage(w, http.StatusUnauthorized, httpx.MsgTokenInvalid)
		return
	default:
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshedTokenResponse{
		AccessToken:       access.Token,
		AccessTokenExpiry: access.ExpiresAt(),
	})
}

// HandleLogout revokes the session of the presented token. It reports
// success whatever the outcome.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		h.TokenService.Logout(r.Context(), claims.ID)
	}
	httpx.WriteMessage(w, http.StatusOK, httpx.MsgTokenRevoked)
}

// HandleUser returns the caller's public user record.
func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := httpx.UsernameFromContext(ctx)

	user, found, err := h.UserService.GetUser(ctx, username)
	if err != nil {
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgServerError)
		return
	}
	if !found {
		slogx.FromContext(ctx).Warn("token subject has no user record", "username", username)
		httpx.WriteTokenError(w, httpx.MsgTokenInvalid)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{User: userInfo(user)})
}
