package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	h := NewHasher("test-pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
			require.NotContains(t, hash, tt.password)
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h := NewHasher("")

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	// Each hash should be different due to unique salts
	require.NotEqual(t, hash1, hash2)
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestVerify_WrongPassword(t *testing.T) {
	h := NewHasher("pepper")
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		strings.Repeat("x", 10000),
	} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	hash, err := NewHasher("pepper-a").Hash("secret")
	require.NoError(t, err)

	require.NoError(t, NewHasher("pepper-a").Verify("secret", hash))
	require.ErrorIs(t, NewHasher("pepper-b").Verify("secret", hash), ErrPasswordMismatch)
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	h := NewHasher("")

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing version", "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("test-password", tt.invalidHash), ErrInvalidHash)
		})
	}
}

func TestVerifyDummy(t *testing.T) {
	h := NewHasher("")

	// Must not panic and must be repeatable.
	h.VerifyDummy("anything")
	h.VerifyDummy("")
	require.NotEmpty(t, h.dummy)
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]struct{}, 50)

	for range 50 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 16)

		for _, char := range password {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')
			require.True(t, valid, "password should only contain alphanumeric characters")
		}

		require.NotContains(t, seen, password, "duplicate password generated")
		seen[password] = struct{}{}
	}
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	first, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Second call reads the same pepper back.
	second, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestLoadOrCreateSecret(t *testing.T) {
	dir := t.TempDir()

	t.Run("existing file wins", func(t *testing.T) {
		path := filepath.Join(dir, "existing")
		require.NoError(t, os.WriteFile(path, []byte("  from-disk \n"), 0o600))

		secret, err := LoadOrCreateSecret(path, func() (string, error) {
			t.Fatal("generate must not be called")
			return "", nil
		})
		require.NoError(t, err)
		require.Equal(t, "from-disk", secret)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := LoadOrCreateSecret(path, GeneratePassword)
		require.Error(t, err)
	})

	t.Run("generated once", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "admin-password")
		calls := 0
		gen := func() (string, error) {
			calls++
			return "generated", nil
		}

		first, err := LoadOrCreateSecret(path, gen)
		require.NoError(t, err)
		second, err := LoadOrCreateSecret(path, gen)
		require.NoError(t, err)

		require.Equal(t, "generated", first)
		require.Equal(t, first, second)
		require.Equal(t, 1, calls)
	})
}
