package filestore

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/filedb"
)

// Collection names and the files backing them inside the data directory.
const (
	CollectionUsers    = "users"
	CollectionSessions = "sessions"

	LockFileName = "designer.lock"
)

// DBConfig returns the filedb configuration for a data directory.
func DBConfig(dir string, lockTimeout time.Duration, logger *slog.Logger) filedb.Config {
	return filedb.Config{
		LockFile: filepath.Join(dir, LockFileName),
		Collections: map[string]string{
			CollectionUsers:    filepath.Join(dir, CollectionUsers+".json"),
			CollectionSessions: filepath.Join(dir, CollectionSessions+".json"),
		},
		LockTimeout: lockTimeout,
		Logger:      logger,
	}
}

// Store implements store.Store on top of a filedb.DB.
type Store struct {
	db *filedb.DB
}

var _ store.Store = (*Store)(nil)

// NewStore wraps db, which must have been opened with DBConfig.
func NewStore(db *filedb.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return nil }

// Ping verifies both collections can be locked and decoded.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// WithTx executes fn under the exclusive lock, persisting on success.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.db.Exclusive(ctx, func(ftx *filedb.Tx) error {
		return fn(&tx{ftx: ftx})
	})
}

// ReadTx executes fn under a shared lock.
func (s *Store) ReadTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.db.Shared(ctx, func(ftx *filedb.Tx) error {
		return fn(&tx{ftx: ftx})
	})
}

type tx struct {
	ftx *filedb.Tx
}

func (t *tx) Users() store.Users       { return &usersRepo{tx: t.ftx} }
func (t *tx) Sessions() store.Sessions { return &sessionsRepo{tx: t.ftx} }

func writable(ftx *filedb.Tx) error {
	if !ftx.Writable() {
		return store.ErrReadOnly
	}
	return nil
}

// On-disk records. Field names are camelCase to match the files the web
// client and older deployments already read.

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"userName"`
	PasswordHash string    `json:"passwordHash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type sessionRecord struct {
	ID               string     `json:"id"`
	Username         string     `json:"userName"`
	Roles            []string   `json:"roles"`
	AccessTokenID    string     `json:"accessTokenId"`
	RefreshTokenID   string     `json:"refreshTokenId"`
	AccessExpiresAt  time.Time  `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time  `json:"refreshExpiresAt"`
	Revoked          bool       `json:"revoked"`
	RevokedAt        *time.Time `json:"revokedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func mapUser(r userRecord) domain.User {
	roles := slices.Clone(r.Roles)
	if roles == nil {
		roles = []string{}
	}
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Roles:        roles,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toUserRecord(u domain.User) userRecord {
	roles := slices.Clone(u.Roles)
	if roles == nil {
		roles = []string{}
	}
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func mapSession(r sessionRecord) domain.Session {
	s := domain.Session{
		ID:               r.ID,
		Username:         r.Username,
		Roles:            slices.Clone(r.Roles),
		AccessTokenID:    r.AccessTokenID,
		RefreshTokenID:   r.RefreshTokenID,
		AccessExpiresAt:  r.AccessExpiresAt,
		RefreshExpiresAt: r.RefreshExpiresAt,
		Revoked:          r.Revoked,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.RevokedAt != nil {
		at := *r.RevokedAt
		s.RevokedAt = &at
	}
	return s
}

func toSessionRecord(s domain.Session) sessionRecord {
	r := sessionRecord{
		ID:               s.ID,
		Username:         s.Username,
		Roles:            slices.Clone(s.Roles),
		AccessTokenID:    s.AccessTokenID,
		RefreshTokenID:   s.RefreshTokenID,
		AccessExpiresAt:  s.AccessExpiresAt.UTC(),
		RefreshExpiresAt: s.RefreshExpiresAt.UTC(),
		Revoked:          s.Revoked,
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
	}
	if s.RevokedAt != nil {
		at := s.RevokedAt.UTC()
		r.RevokedAt = &at
	}
	return r
}
