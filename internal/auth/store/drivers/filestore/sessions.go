package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/filedb"
)

type sessionsRepo struct {
	tx *filedb.Tx
}

func (r *sessionsRepo) load() (*[]sessionRecord, error) {
	return filedb.Load[sessionRecord](r.tx, CollectionSessions)
}

// holds reports whether any record, tombstones included, uses id as either
// token id.
func holds(records []sessionRecord, id string) bool {
	for _, s := range records {
		if s.AccessTokenID == id || s.RefreshTokenID == id {
			return true
		}
	}
	return false
}

func (r *sessionsRepo) CreateSession(_ context.Context, s domain.Session) error {
	if err := writable(r.tx); err != nil {
		return err
	}
	if s.AccessTokenID == "" || s.RefreshTokenID == "" {
		return fmt.Errorf("filestore: session %s is missing a token id", s.ID)
	}
	if s.AccessTokenID == s.RefreshTokenID {
		return fmt.Errorf("%w: token id %s used twice", store.ErrAlreadyExists, s.AccessTokenID)
	}

	sessions, err := r.load()
	if err != nil {
		return err
	}
	for _, id := range []string{s.AccessTokenID, s.RefreshTokenID} {
		if holds(*sessions, id) {
			return fmt.Errorf("%w: token id %s", store.ErrAlreadyExists, id)
		}
	}
	for _, existing := range *sessions {
		if existing.ID == s.ID {
			return fmt.Errorf("%w: session id %s", store.ErrAlreadyExists, s.ID)
		}
	}

	*sessions = append(*sessions, toSessionRecord(s))
	return nil
}

func (r *sessionsRepo) find(match func(sessionRecord) bool) (domain.Session, error) {
	sessions, err := r.load()
	if err != nil {
		return domain.Session{}, err
	}
	for _, s := range *sessions {
		if !s.Revoked && match(s) {
			return mapSession(s), nil
		}
	}
	return domain.Session{}, store.ErrNotFound
}

func (r *sessionsRepo) GetSessionByAccessID(_ context.Context, accessID string) (domain.Session, error) {
	return r.find(func(s sessionRecord) bool { return s.AccessTokenID == accessID })
}

func (r *sessionsRepo) GetSessionByRefreshID(_ context.Context, refreshID string) (domain.Session, error) {
	return r.find(func(s sessionRecord) bool { return s.RefreshTokenID == refreshID })
}

func (r *sessionsRepo) ReplaceAccessToken(
	_ context.Context,
	sessionID, accessID string,
	expiresAt, now time.Time,
) error {
	if err := writable(r.tx); err != nil {
		return err
	}
	sessions, err := r.load()
	if err != nil {
		return err
	}

	idx := -1
	for i, s := range *sessions {
		if s.ID == sessionID && !s.Revoked {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}
	if holds(*sessions, accessID) {
		return fmt.Errorf("%w: token id %s", store.ErrAlreadyExists, accessID)
	}

	s := &(*sessions)[idx]
	s.AccessTokenID = accessID
	s.AccessExpiresAt = expiresAt.UTC()
	s.UpdatedAt = now.UTC()
	return nil
}

func (r *sessionsRepo) RevokeByTokenID(_ context.Context, tokenID string, now time.Time) (bool, error) {
	if err := writable(r.tx); err != nil {
		return false, err
	}
	if tokenID == "" {
		return false, nil
	}
	sessions, err := r.load()
	if err != nil {
		return false, err
	}

	for i := range *sessions {
		s := &(*sessions)[i]
		if s.Revoked || (s.AccessTokenID != tokenID && s.RefreshTokenID != tokenID) {
			continue
		}
		at := now.UTC()
		s.Revoked = true
		s.RevokedAt = &at
		s.UpdatedAt = at
		return true, nil
	}
	return false, nil
}
