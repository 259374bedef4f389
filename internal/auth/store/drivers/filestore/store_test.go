package filestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/internal/auth/store/drivers/filestore"
	"github.com/aussiebroadwan/designer/pkg/filedb"
	"github.com/aussiebroadwan/designer/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filestore.Store, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := filedb.Open(filestore.DBConfig(dir, time.Second, nil))
	require.NoError(t, err)
	return filestore.NewStore(db), dir
}

func testUser(name string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.User{
		ID:           idx.New().String(),
		Username:     name,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Roles:        domain.DefaultRoles(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testSession(user, access, refresh string) domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Session{
		ID:               idx.New().String(),
		Username:         user,
		Roles:            []string{"user"},
		AccessTokenID:    access,
		RefreshTokenID:   refresh,
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshExpiresAt: now.Add(24 * time.Hour),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func createSession(t *testing.T, st store.Store, s domain.Session) {
	t.Helper()
	require.NoError(t, st.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.Sessions().CreateSession(context.Background(), s)
	}))
}

func TestUsers_CreateAndGet(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()
	alice := testUser("alice")

	require.NoError(t, st.ReadTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
		return nil
	}))

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, alice)
	}))

	require.FileExists(t, filepath.Join(dir, "users.json"))

	require.NoError(t, st.ReadTx(ctx, func(tx store.Tx) error {
		got, err := tx.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice, got)

		_, err = tx.Users().GetUserByUsername(ctx, "Alice")
		require.ErrorIs(t, err, store.ErrNotFound, "lookups are case-sensitive")

		all, err := tx.Users().ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		return nil
	}))
}

func TestUsers_Duplicate(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, testUser("alice"))
	}))

	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, testUser("alice"))
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Different case is a different user.
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, testUser("ALICE"))
	}))
}

func TestReadTx_RejectsWrites(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	err := st.ReadTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, testUser("alice"))
	})
	require.ErrorIs(t, err, store.ErrReadOnly)

	_, statErr := os.Stat(filepath.Join(dir, "users.json"))
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSessions_CreateAndLookup(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	s := testSession("alice", "a1", "r1")
	createSession(t, st, s)

	require.NoError(t, st.ReadTx(ctx, func(tx store.Tx) error {
		got, err := tx.Sessions().GetSessionByAccessID(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, s, got)

		got, err = tx.Sessions().GetSessionByRefreshID(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, s.ID, got.ID)

		// Ids are looked up by role: an access id is not a refresh id.
		_, err = tx.Sessions().GetSessionByRefreshID(ctx, "a1")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.Sessions().GetSessionByAccessID(ctx, "r1")
		require.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}

func TestSessions_CreateCollisions(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	createSession(t, st, testSession("alice", "a1", "r1"))

	tests := []struct {
		name    string
		access  string
		refresh string
	}{
		{"same access id", "a1", "r2"},
		{"same refresh id", "a2", "r1"},
		{"access id reused as refresh id", "a2", "a1"},
		{"refresh id reused as access id", "r1", "r2"},
		{"access equals refresh", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := st.WithTx(ctx, func(tx store.Tx) error {
				return tx.Sessions().CreateSession(ctx, testSession("bob", tt.access, tt.refresh))
			})
			require.ErrorIs(t, err, store.ErrAlreadyExists)
		})
	}
}

func TestSessions_ReplaceAccessToken(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	s := testSession("alice", "a1", "r1")
	createSession(t, st, s)
	createSession(t, st, testSession("bob", "b1", "rb1"))

	newExpiry := s.AccessExpiresAt.Add(time.Hour)
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().ReplaceAccessToken(ctx, s.ID, "a2", newExpiry, time.Now())
	}))

	require.NoError(t, st.ReadTx(ctx, func(tx store.Tx) error {
		_, err := tx.Sessions().GetSessionByAccessID(ctx, "a1")
		require.ErrorIs(t, err, store.ErrNotFound, "old access id is gone")

		got, err := tx.Sessions().GetSessionByAccessID(ctx, "a2")
		require.NoError(t, err)
		require.Equal(t, "r1", got.RefreshTokenID)
		require.True(t, newExpiry.Equal(got.AccessExpiresAt))
		return nil
	}))

	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().ReplaceAccessToken(ctx, s.ID, "b1", newExpiry, time.Now())
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().ReplaceAccessToken(ctx, "missing", "a3", newExpiry, time.Now())
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessions_RevokeTombstones(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	s := testSession("alice", "a1", "r1")
	createSession(t, st, s)

	revoke := func(id string) bool {
		var ok bool
		require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
			var err error
			ok, err = tx.Sessions().RevokeByTokenID(ctx, id, time.Now())
			return err
		}))
		return ok
	}

	require.True(t, revoke("r1"), "refresh id revokes the session")
	require.False(t, revoke("a1"), "already revoked")
	require.False(t, revoke("unknown"))
	require.False(t, revoke(""))

	require.NoError(t, st.ReadTx(ctx, func(tx store.Tx) error {
		_, err := tx.Sessions().GetSessionByAccessID(ctx, "a1")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.Sessions().GetSessionByRefreshID(ctx, "r1")
		require.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))

	// The tombstone still reserves its ids.
	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().CreateSession(ctx, testSession("alice", "a1", "r9"))
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().ReplaceAccessToken(ctx, s.ID, "a5", time.Now(), time.Now())
	})
	require.ErrorIs(t, err, store.ErrNotFound, "revoked sessions cannot rotate")
}

func TestWithTx_ErrorDiscardsBothCollections(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, testUser("alice")))
		require.NoError(t, tx.Sessions().CreateSession(ctx, testSession("alice", "a1", "r1")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoFileExists(t, filepath.Join(dir, "users.json"))
	require.NoFileExists(t, filepath.Join(dir, "sessions.json"))
}

func TestCorruptFileSurfaces(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sessions.json"), []byte("{oops"), 0o600))

	err := st.ReadTx(ctx, func(tx store.Tx) error {
		_, err := tx.Sessions().GetSessionByAccessID(ctx, "a1")
		return err
	})
	require.ErrorIs(t, err, filedb.ErrCorrupt)
	require.ErrorIs(t, st.Ping(ctx), filedb.ErrCorrupt)
}
