package authsdk

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session represents a logged-in user with automatic access token refresh.
type Session struct {
	client *SDKClient

	mu            sync.RWMutex
	userName      string
	accessToken   string
	accessExpiry  time.Time
	refreshToken  string
	refreshExpiry time.Time
}

func newSession(client *SDKClient, tokens TokenResponse) *Session {
	return &Session{
		client:        client,
		userName:      tokens.UserName,
		accessToken:   tokens.AccessToken,
		accessExpiry:  tokens.AccessTokenExpiry,
		refreshToken:  tokens.RefreshToken,
		refreshExpiry: tokens.RefreshTokenExpiry,
	}
}

// UserName returns the name the session logged in as.
func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Session) fresh() bool {
	return time.Now().Add(s.client.RefreshBuffer).Before(s.accessExpiry)
}

// getValidToken returns a valid access token, refreshing if it is about
// to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.fresh() {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if s.fresh() {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// Refresh replaces the access token now, regardless of its expiry. The
// previous access token is revoked by the server.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	refreshed, err := s.client.RefreshAccessToken(ctx, s.refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = refreshed.AccessToken
	s.accessExpiry = refreshed.AccessTokenExpiry
	return nil
}

// Logout revokes the session on the server and forgets both tokens.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.refreshToken
	if token == "" {
		token = s.accessToken
	}
	if err := s.client.Logout(ctx, token); err != nil {
		return err
	}

	s.accessToken, s.refreshToken = "", ""
	s.accessExpiry, s.refreshExpiry = time.Time{}, time.Time{}
	return nil
}
