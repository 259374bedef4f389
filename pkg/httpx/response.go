package httpx

import (
	"encoding/json"
	"net/http"
)

// Messages shown to clients. The refresh flow in the UI matches on
// MsgTokenRevoked, so keep that text stable.
const (
	MsgTokenExpired  = "token has expired"
	MsgTokenInvalid  = "token is invalid"
	MsgTokenMissing  = "token is missing"
	MsgTokenRevoked  = "user token revoked"
	MsgNotPermitted  = "you are not permitted"
	MsgServerError   = "a server error occurred"
	MsgRateLimited   = "too many requests, please try again later"
	MsgBadCredential = "invalid user name or password"
)

// Message is the body of most non-token responses.
type Message struct {
	Message string `json:"message"`
}

// FieldError is one entry of a token error body. Property is always null
// for token failures.
type FieldError struct {
	Property     *string `json:"property"`
	ErrorMessage string  `json:"errorMessage"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Message{Message: msg})
}

// WriteTokenError writes a 401 with an RFC 6750 challenge and a
// [{"property": null, "errorMessage": msg}] body.
func WriteTokenError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+msg+`"`)
	WriteJSON(w, http.StatusUnauthorized, []FieldError{{ErrorMessage: msg}})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
