package filestore

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/filedb"
)

type usersRepo struct {
	tx *filedb.Tx
}

func (r *usersRepo) load() (*[]userRecord, error) {
	return filedb.Load[userRecord](r.tx, CollectionUsers)
}

func (r *usersRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	users, err := r.load()
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range *users {
		if u.Username == username {
			return mapUser(u), nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(*users))
	for _, u := range *users {
		out = append(out, mapUser(u))
	}
	return out, nil
}

func (r *usersRepo) CreateUser(_ context.Context, u domain.User) error {
	if err := writable(r.tx); err != nil {
		return err
	}
	users, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range *users {
		if existing.Username == u.Username {
			return fmt.Errorf("%w: username %q", store.ErrAlreadyExists, u.Username)
		}
		if existing.ID == u.ID {
			return fmt.Errorf("%w: user id %s", store.ErrAlreadyExists, u.ID)
		}
	}
	*users = append(*users, toUserRecord(u))
	return nil
}

func (r *usersRepo) IsEmpty(_ context.Context) (bool, error) {
	users, err := r.load()
	if err != nil {
		return false, err
	}
	return len(*users) == 0, nil
}
