package service

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/store/drivers/filestore"
	"github.com/aussiebroadwan/designer/pkg/cryptox"
	"github.com/aussiebroadwan/designer/pkg/filedb"
	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// clock is a settable time source shared by the services under test.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	dir    string
	clock  *clock
	store  *filestore.Store
	issuer *jwtx.Issuer
	users  *UserService
	ledger *SessionLedger
	tokens *TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	db, err := filedb.Open(filestore.DBConfig(dir, 5*time.Second, nil))
	require.NoError(t, err)
	st := filestore.NewStore(db)

	clk := &clock{t: time.Now().UTC().Truncate(time.Second)}

	signer, err := jwtx.NewSignerHS256(testKey)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testKey, jwtx.VerifyOptions{Issuer: "designer", Now: clk.Now})
	require.NoError(t, err)
	issuer, err := jwtx.NewIssuer(jwtx.IssuerConfig{
		Signer:     signer,
		Verifier:   verifier,
		Issuer:     "designer",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
		Now:        clk.Now,
	})
	require.NoError(t, err)

	users := &UserService{Store: st, Hasher: cryptox.NewHasher("test-pepper"), Now: clk.Now}
	ledger := &SessionLedger{Store: st, Now: clk.Now}

	return &fixture{
		dir:    dir,
		clock:  clk,
		store:  st,
		issuer: issuer,
		users:  users,
		ledger: ledger,
		tokens: &TokenService{Users: users, Ledger: ledger, Issuer: issuer},
	}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

// snapshot returns the raw bytes of a collection file, nil if missing.
func (f *fixture) snapshot(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return data
}

func (f *fixture) corrupt(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.path(name), []byte("{not json"), 0o600))
}
