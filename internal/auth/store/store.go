package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrReadOnly      = errors.New("store: write in read-only transaction")
)

// Store is the root data access interface. Repositories are only reachable
// through a transaction so every read-modify-write happens under the store
// lock, and nobody can start a transaction inside another one by accident.
type Store interface {
	// WithTx runs fn under the exclusive lock. If fn returns nil every change
	// is persisted, otherwise nothing is.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// ReadTx runs fn under a shared lock. Writes fail with ErrReadOnly.
	ReadTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping verifies the backing files are reachable and decodable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Tx exposes the repositories scoped to one locked section.
type Tx interface {
	Users() Users
	Sessions() Sessions
}

type Users interface {
	// GetUserByUsername is an exact, case-sensitive match.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns all users in creation order.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts u, failing with ErrAlreadyExists when the username
	// or id is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Sessions interface {
	// CreateSession inserts s, failing with ErrAlreadyExists when either of
	// its token ids appears in any stored session, revoked ones included.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByAccessID and GetSessionByRefreshID skip revoked sessions.
	GetSessionByAccessID(ctx context.Context, accessID string) (domain.Session, error)
	GetSessionByRefreshID(ctx context.Context, refreshID string) (domain.Session, error)

	// ReplaceAccessToken swaps the access token of a live session. It fails
	// with ErrNotFound for an unknown or revoked session and ErrAlreadyExists
	// when accessID is already in use anywhere.
	ReplaceAccessToken(ctx context.Context, sessionID, accessID string, expiresAt, now time.Time) error

	// RevokeByTokenID tombstones the live session holding tokenID as either
	// its access or refresh id. It reports whether a session was revoked.
	RevokeByTokenID(ctx context.Context, tokenID string, now time.Time) (bool, error)
}
