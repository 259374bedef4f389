package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, now func() time.Time) *jwtx.Issuer {
	t.Helper()

	signer, verifier := newHS256(t, jwtx.VerifyOptions{Issuer: "designer", Now: now})
	iss, err := jwtx.NewIssuer(jwtx.IssuerConfig{
		Signer:     signer,
		Verifier:   verifier,
		Issuer:     "designer",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        now,
	})
	require.NoError(t, err)
	return iss
}

func TestNewIssuer_Defaults(t *testing.T) {
	signer, verifier := newHS256(t, jwtx.VerifyOptions{})

	iss, err := jwtx.NewIssuer(jwtx.IssuerConfig{Signer: signer, Verifier: verifier})
	require.NoError(t, err)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, iss.AccessTTL())
	require.Equal(t, jwtx.DefaultRefreshTokenTTL, iss.RefreshTTL())

	_, err = jwtx.NewIssuer(jwtx.IssuerConfig{Signer: signer})
	require.Error(t, err)
}

func TestIssuePair(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := newIssuer(t, func() time.Time { return now })

	pair, err := iss.IssuePair("alice", []string{"user"})
	require.NoError(t, err)

	require.NotEqual(t, pair.Access.ID(), pair.Refresh.ID())
	require.NotEqual(t, pair.Access.Token, pair.Refresh.Token)
	require.Equal(t, now.Add(5*time.Minute), pair.Access.ExpiresAt())
	require.Equal(t, now.Add(24*time.Hour), pair.Refresh.ExpiresAt())

	access, err := iss.Parse(pair.Access.Token)
	require.NoError(t, err)
	require.Equal(t, jwtx.TokenTypeAccess, access.Type)
	require.Equal(t, pair.Access.ID(), access.ID)
	require.Equal(t, "alice", access.Subject)
	require.Equal(t, []string{"user"}, access.Roles)

	refresh, err := iss.Parse(pair.Refresh.Token)
	require.NoError(t, err)
	require.Equal(t, jwtx.TokenTypeRefresh, refresh.Type)
	require.Equal(t, pair.Refresh.ID(), refresh.ID)
}

func TestIssueAccess(t *testing.T) {
	iss := newIssuer(t, nil)

	first, err := iss.IssueAccess("alice", nil)
	require.NoError(t, err)
	second, err := iss.IssueAccess("alice", nil)
	require.NoError(t, err)

	require.NotEqual(t, first.ID(), second.ID())
	require.Equal(t, jwtx.TokenTypeAccess, first.Claims.Type)
}

func TestParse_ExpiredVersusInvalid(t *testing.T) {
	clock := time.Now()
	iss := newIssuer(t, func() time.Time { return clock })

	pair, err := iss.IssuePair("alice", nil)
	require.NoError(t, err)

	// Past the access TTL but inside the refresh TTL.
	clock = clock.Add(10 * time.Minute)

	_, err = iss.Parse(pair.Access.Token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	_, err = iss.Parse(pair.Refresh.Token)
	require.NoError(t, err)

	_, err = iss.Parse(pair.Refresh.Token + "x")
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}
