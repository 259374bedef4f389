package authsdk

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/designer/pkg/httpx"
)

// Register creates a user and returns the server's confirmation message.
func (c *SDKClient) Register(ctx context.Context, userName, password string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", "",
		CredentialsRequest{UserName: userName, Password: password})
	if err != nil {
		return "", err
	}

	var msg httpx.Message
	if err := decodeJSON(resp, &msg, http.StatusCreated); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// LoginTokens exchanges credentials for a token pair.
func (c *SDKClient) LoginTokens(ctx context.Context, userName, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", "",
		CredentialsRequest{UserName: userName, Password: password})
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Login exchanges credentials for an authenticated session.
func (c *SDKClient) Login(ctx context.Context, userName, password string) (*Session, error) {
	tokens, err := c.LoginTokens(ctx, userName, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, *tokens), nil
}

// RefreshAccessToken requests a new access token using refreshToken.
func (c *SDKClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshedTokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/refresh-token", refreshToken, nil)
	if err != nil {
		return nil, err
	}

	var refreshed RefreshedTokenResponse
	if err := decodeJSON(resp, &refreshed, http.StatusOK); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// Logout revokes the session that token belongs to. Either token of the
// pair is accepted.
func (c *SDKClient) Logout(ctx context.Context, token string) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/logout", token, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
