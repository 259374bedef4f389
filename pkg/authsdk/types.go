package authsdk

import "time"

// ============================================================================
// Request Types
// ============================================================================

// CredentialsRequest is the body of POST /auth/register and POST /auth/login.
type CredentialsRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is returned from POST /auth/login.
type TokenResponse struct {
	UserName string `json:"userName"`

	// AccessToken is the JWT sent as a bearer token on API requests.
	AccessToken       string    `json:"accessToken"`
	AccessTokenExpiry time.Time `json:"accessTokenExpiry"`

	// RefreshToken is the JWT sent as a bearer token to /auth/refresh-token.
	RefreshToken       string    `json:"refreshToken"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiry"`
}

// RefreshedTokenResponse is returned from GET /auth/refresh-token. The
// refresh token itself is not rotated.
type RefreshedTokenResponse struct {
	AccessToken       string    `json:"accessToken"`
	AccessTokenExpiry time.Time `json:"accessTokenExpiry"`
}

// ============================================================================
// User Types
// ============================================================================

// UserInfo is the public view of a user. It never carries a password hash.
type UserInfo struct {
	ID       string   `json:"id"`
	UserName string   `json:"userName"`
	Roles    []string `json:"roles"`
}

// UserResponse is returned from GET /auth/user.
type UserResponse struct {
	User UserInfo `json:"user"`
}

// UsersResponse is returned from GET /users/all.
type UsersResponse struct {
	Users []UserInfo `json:"users"`
}

// ============================================================================
// Health Types
// ============================================================================

// PingResponse is returned from GET /ping.
type PingResponse struct {
	Ping string `json:"ping"`
}

// HealthResponse is returned from the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Store string `json:"store"`
}
