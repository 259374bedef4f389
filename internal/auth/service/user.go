package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/cryptox"
	"github.com/aussiebroadwan/designer/pkg/idx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

// UserService owns user records: registration, password checks and lookups.
type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateUser registers username with the default role set. The username is
// trimmed; both fields must be non-empty. The duplicate check and insert
// happen in one exclusive section, so concurrent registrations of the same
// name cannot both succeed.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (domain.User, error) {
	return s.createUser(ctx, username, password, domain.DefaultRoles())
}

func (s *UserService) createUser(ctx context.Context, username, password string, roles []string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: user name is required", ErrValidation)
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	// Hash before taking the lock; argon2 is the slow part.
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		l.Info("registration rejected, user exists", slog.String("username", username))
		return domain.User{}, ErrUserExists
	}
	if err != nil {
		l.Error("failed to store user", slog.String("username", username), slog.Any("error", err))
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	l.Info("user created",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
		slog.Any("roles", u.Roles),
	)
	return u.Public(), nil
}

// VerifyPassword returns the user when password matches. An unknown user
// and a wrong password both give ErrInvalidCredentials, and both cost one
// argon2 evaluation.
func (s *UserService) VerifyPassword(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	username = strings.TrimSpace(username)

	u, ok, err := s.lookup(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		s.Hasher.VerifyDummy(password)
		l.Info("login failed, unknown user", slog.String("username", username))
		return domain.User{}, ErrInvalidCredentials
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHash) {
			l.Error("stored password hash is malformed", slog.String("user_id", u.ID), slog.Any("error", err))
		} else {
			l.Info("login failed, wrong password", slog.String("username", username))
		}
		return domain.User{}, ErrInvalidCredentials
	}

	return u.Public(), nil
}

// GetUser looks up a user by exact username. A missing user is ok=false,
// not an error. The returned user carries no password hash.
func (s *UserService) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	u, ok, err := s.lookup(ctx, username)
	if !ok || err != nil {
		return domain.User{}, ok, err
	}
	return u.Public(), true, nil
}

func (s *UserService) lookup(ctx context.Context, username string) (domain.User, bool, error) {
	var u domain.User
	err := s.Store.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = tx.Users().GetUserByUsername(ctx, username)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load user", slog.String("username", username), slog.Any("error", err))
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}

// ListUsers returns every user without password hashes. Only callers
// holding the admin role may list.
func (s *UserService) ListUsers(ctx context.Context, caller domain.User) ([]domain.User, error) {
	if !caller.HasRole(domain.RoleAdmin) {
		slogx.FromContext(ctx).Warn("user listing denied", slog.String("username", caller.Username))
		return nil, ErrForbidden
	}

	var users []domain.User
	err := s.Store.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		users, err = tx.Users().ListUsers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// EnsureAdminUser creates username with the admin role set when no user
// exists yet. The password is read from passwordFile, or generated and
// written there (mode 0600) if the file is missing. It is never logged.
func (s *UserService) EnsureAdminUser(ctx context.Context, username, passwordFile string) (bool, error) {
	l := slogx.FromContext(ctx)

	var empty bool
	err := s.Store.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		empty, err = tx.Users().IsEmpty(ctx)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check users: %w", err)
	}
	if !empty {
		return false, nil
	}

	password, err := cryptox.LoadOrCreateSecret(passwordFile, cryptox.GeneratePassword)
	if err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}

	if _, err := s.createUser(ctx, username, password, domain.AdminRoles()); err != nil {
		if errors.Is(err, ErrUserExists) {
			// Another process got there first.
			return false, nil
		}
		return false, err
	}

	l.Info("admin user created", slog.String("username", username), slog.String("password_file", passwordFile))
	return true, nil
}
