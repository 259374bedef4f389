/*
Package authsdk provides a client SDK for the designer authentication API.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (register, login, health) and
    the raw token endpoints.
  - Session: a logged-in user. It refreshes its access token from the
    refresh token when the access token is about to expire.

	client := authsdk.NewSDKClient("http://localhost:8080")

	if _, err := client.Register(ctx, "alice", "secret"); err != nil {
		return err
	}

	session, err := client.Login(ctx, "alice", "secret")
	if err != nil {
		return err
	}

	user, err := session.GetUser(ctx)

	// Revokes both tokens of the session.
	err = session.Logout(ctx)

# Error Handling

Non-2xx responses are returned as *APIError carrying the status code and
the server's message. Token failures (401) use the same type:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// log in again
	}

# Thread Safety

Sessions are safe for concurrent use. Concurrent callers that find the
access token expired share a single refresh.
*/
package authsdk
