package authsdk

import (
	"context"
	"net/http"
)

// GetUser returns the logged-in user.
func (s *Session) GetUser(ctx context.Context) (*UserInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/user", nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListUsers returns every user. The server answers 403 unless the session
// user holds the admin role.
func (s *Session) ListUsers(ctx context.Context) ([]UserInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users/all", nil)
	if err != nil {
		return nil, err
	}

	var out UsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// StartTask starts the server's background task.
func (s *Session) StartTask(ctx context.Context) error {
	return s.taskControl(ctx, "/start")
}

// StopTask stops the server's background task.
func (s *Session) StopTask(ctx context.Context) error {
	return s.taskControl(ctx, "/stop")
}

func (s *Session) taskControl(ctx context.Context, path string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
