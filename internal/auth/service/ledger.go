package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/idx"
	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

// SessionLedger maps live token ids to sessions. It is the only component
// that writes sessions, and the only place access tokens are checked
// against, so dropping an id from the ledger revokes the token.
type SessionLedger struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (l *SessionLedger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateSession records a new login holding the ids of access and refresh.
// It fails with ErrIntegrity if either id is already known, even to a
// revoked session.
func (l *SessionLedger) CreateSession(
	ctx context.Context,
	username string,
	roles []string,
	access, refresh jwtx.Claims,
) (domain.Session, error) {
	now := l.now()
	s := domain.Session{
		ID:               idx.NewAt(now).String(),
		Username:         username,
		Roles:            roles,
		AccessTokenID:    access.ID,
		RefreshTokenID:   refresh.ID,
		AccessExpiresAt:  access.ExpiresAtTime(),
		RefreshExpiresAt: refresh.ExpiresAtTime(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := l.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().CreateSession(ctx, s)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		slogx.FromContext(ctx).Error("token id collision on session create",
			slog.String("access_jti", access.ID),
			slog.String("refresh_jti", refresh.ID),
		)
		return domain.Session{}, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// FindByAccessID returns the live session whose current access id is id.
func (l *SessionLedger) FindByAccessID(ctx context.Context, id string) (domain.Session, bool, error) {
	return l.find(ctx, func(tx store.Tx) (domain.Session, error) {
		return tx.Sessions().GetSessionByAccessID(ctx, id)
	})
}

// FindByRefreshID returns the live session whose refresh id is id.
func (l *SessionLedger) FindByRefreshID(ctx context.Context, id string) (domain.Session, bool, error) {
	return l.find(ctx, func(tx store.Tx) (domain.Session, error) {
		return tx.Sessions().GetSessionByRefreshID(ctx, id)
	})
}

func (l *SessionLedger) find(
	ctx context.Context,
	get func(tx store.Tx) (domain.Session, error),
) (domain.Session, bool, error) {
	var s domain.Session
	err := l.Store.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		s, err = get(tx)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("find session: %w", err)
	}
	return s, true, nil
}

// RotateAccessToken replaces the access token of the session holding
// refreshID with access. The previous access id stops matching at once.
// An expired refresh token leaves the record untouched.
func (l *SessionLedger) RotateAccessToken(
	ctx context.Context,
	refreshID string,
	access jwtx.Claims,
) (domain.Session, error) {
	now := l.now()

	var rotated domain.Session
	err := l.Store.WithTx(ctx, func(tx store.Tx) error {
		s, err := tx.Sessions().GetSessionByRefreshID(ctx, refreshID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if s.RefreshExpired(now) {
			return ErrSessionExpired
		}
		if access.Subject != s.Username {
			return fmt.Errorf("%w: access token subject %q does not own session %s", ErrIntegrity, access.Subject, s.ID)
		}

		err = tx.Sessions().ReplaceAccessToken(ctx, s.ID, access.ID, access.ExpiresAtTime(), now)
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
		if err != nil {
			return err
		}

		s.AccessTokenID = access.ID
		s.AccessExpiresAt = access.ExpiresAtTime()
		s.UpdatedAt = now
		rotated = s
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) && !errors.Is(err, ErrIntegrity) {
			err = fmt.Errorf("rotate access token: %w", err)
		}
		return domain.Session{}, err
	}
	return rotated, nil
}

// Revoke tombstones the live session holding tokenID as its access or
// refresh id. Unknown and already revoked ids are not errors; the bool
// reports whether anything changed.
func (l *SessionLedger) Revoke(ctx context.Context, tokenID string) (bool, error) {
	now := l.now()

	var revoked bool
	err := l.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		revoked, err = tx.Sessions().RevokeByTokenID(ctx, tokenID, now)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	return revoked, nil
}

// IsRevokedOrUnknown reports whether id does not belong to a live session
// as a token of type typ. It fails closed: store errors and unknown token
// types count as revoked.
func (l *SessionLedger) IsRevokedOrUnknown(ctx context.Context, id string, typ jwtx.TokenType) bool {
	log := slogx.FromContext(ctx)

	var (
		found bool
		err   error
	)
	switch typ {
	case jwtx.TokenTypeAccess:
		_, found, err = l.FindByAccessID(ctx, id)
	case jwtx.TokenTypeRefresh:
		_, found, err = l.FindByRefreshID(ctx, id)
	default:
		log.Warn("revocation check for unknown token type", slog.String("jti", id), slog.String("type", string(typ)))
		return true
	}

	if err != nil {
		log.Error("revocation check failed, denying", slog.String("jti", id), slog.Any("error", err))
		return true
	}
	return !found
}
