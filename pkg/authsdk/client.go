package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the designer authentication API. It provides
// the unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// RefreshBuffer is how long before expiry a Session refreshes its
	// access token. Default: 30 seconds.
	RefreshBuffer time.Duration
}

// NewSDKClient creates a new client for the API at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		RefreshBuffer: 30 * time.Second,
	}
}

// NewSessionFromTokens creates a session from tokens obtained earlier,
// e.g. restored from local storage.
func (c *SDKClient) NewSessionFromTokens(tokens TokenResponse) *Session {
	return newSession(c, tokens)
}
