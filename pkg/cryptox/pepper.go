package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pepperLength = 32

// LoadOrCreatePepper reads the pepper stored at path, generating and saving
// a new random one if the file does not exist yet.
func LoadOrCreatePepper(path string) (string, error) {
	return LoadOrCreateSecret(path, func() (string, error) {
		buf := make([]byte, pepperLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		return base64.RawURLEncoding.EncodeToString(buf), nil
	})
}

// LoadOrCreateSecret returns the trimmed content of the file at path. If the
// file does not exist, generate is called and its result written with mode
// 0600. Creation is exclusive: when two processes race, the loser reads the
// winner's secret instead of overwriting it.
func LoadOrCreateSecret(path string, generate func() (string, error)) (string, error) {
	path = filepath.Clean(path)

	if secret, err := readSecret(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return secret, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	secret, err := generate()
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return readSecret(path)
	}
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(secret + "\n"); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return secret, nil
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return secret, nil
}
