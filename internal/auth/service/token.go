package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

// TokenService drives the session lifecycle: login, refresh, logout and
// the per-request revocation check. It never writes to the store itself
// and never lets storage errors reach its callers.
type TokenService struct {
	Users  *UserService
	Ledger *SessionLedger
	Issuer *jwtx.Issuer
}

// Login verifies the password, mints a token pair and records the session.
func (s *TokenService) Login(ctx context.Context, username, password string) (jwtx.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Users.VerifyPassword(ctx, username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return jwtx.TokenPair{}, err
	}
	if err != nil {
		l.Error("login: user lookup failed", slog.Any("error", err))
		return jwtx.TokenPair{}, ErrInternal
	}

	roles := DeriveRoles(user)
	pair, err := s.Issuer.IssuePair(user.Username, roles)
	if err != nil {
		l.Error("login: failed to issue tokens", slog.Any("error", err))
		return jwtx.TokenPair{}, ErrInternal
	}

	session, err := s.Ledger.CreateSession(ctx, user.Username, roles, pair.Access.Claims, pair.Refresh.Claims)
	if err != nil {
		l.Error("login: failed to record session", slog.String("username", user.Username), slog.Any("error", err))
		return jwtx.TokenPair{}, ErrInternal
	}

	l.Info("login succeeded",
		slog.String("username", user.Username),
		slog.String("session_id", session.ID),
		slog.String("access_jti", pair.Access.ID()),
		slog.String("refresh_jti", pair.Refresh.ID()),
	)
	return pair, nil
}

// Refresh mints a new access token for the session holding refreshID and
// rotates it into the ledger. Unknown, revoked and expired refresh ids all
// give ErrInvalidRefresh and leave the store unchanged; the log line keeps
// the actual reason.
func (s *TokenService) Refresh(ctx context.Context, refreshID string) (jwtx.SignedToken, error) {
	l := slogx.FromContext(ctx).With(slog.String("refresh_jti", refreshID))

	session, ok, err := s.Ledger.FindByRefreshID(ctx, refreshID)
	if err != nil {
		l.Error("refresh: session lookup failed", slog.Any("error", err))
		return jwtx.SignedToken{}, ErrInternal
	}
	if !ok {
		l.Info("refresh rejected", slog.String("reason", "session not found"))
		return jwtx.SignedToken{}, ErrInvalidRefresh
	}

	access, err := s.Issuer.IssueAccess(session.Username, session.Roles)
	if err != nil {
		l.Error("refresh: failed to issue access token", slog.Any("error", err))
		return jwtx.SignedToken{}, ErrInternal
	}

	rotated, err := s.Ledger.RotateAccessToken(ctx, refreshID, access.Claims)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound):
		l.Info("refresh rejected", slog.String("reason", "session not found"))
		return jwtx.SignedToken{}, ErrInvalidRefresh
	case errors.Is(err, ErrSessionExpired):
		l.Info("refresh rejected", slog.String("reason", "refresh token expired"))
		return jwtx.SignedToken{}, ErrInvalidRefresh
	default:
		l.Error("refresh: rotation failed", slog.Any("error", err))
		return jwtx.SignedToken{}, ErrInternal
	}

	l.Info("access token rotated",
		slog.String("session_id", rotated.ID),
		slog.String("previous_access_jti", session.AccessTokenID),
		slog.String("access_jti", access.ID()),
	)
	return access, nil
}

// Logout revokes the session holding tokenID. It always succeeds from the
// caller's point of view; failures are only logged.
func (s *TokenService) Logout(ctx context.Context, tokenID string) {
	l := slogx.FromContext(ctx).With(slog.String("jti", tokenID))

	revoked, err := s.Ledger.Revoke(ctx, tokenID)
	if err != nil {
		l.Error("logout: revoke failed", slog.Any("error", err))
		return
	}
	if revoked {
		l.Info("session revoked")
	} else {
		l.Debug("logout for unknown or already revoked session")
	}
}

// CheckRevocation reports whether tokenID must be treated as revoked.
func (s *TokenService) CheckRevocation(ctx context.Context, tokenID string, typ jwtx.TokenType) bool {
	return s.Ledger.IsRevokedOrUnknown(ctx, tokenID, typ)
}
