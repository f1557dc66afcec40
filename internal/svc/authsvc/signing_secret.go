package authsvc

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkrupp/userapi/internal/domain"
)

// SecretSize is the number of random bytes in a generated signing secret.
const SecretSize = 32

// LoadSigningSecret returns the signing secret for tokens.
// A non-empty cfg.Secret wins. Otherwise the secret is read from cfg.SecretFile;
// if that file does not exist, a random secret is generated and saved to it.
// Returns domain.ErrNoSigningSecret if no secret can be obtained.
func LoadSigningSecret(cfg AuthConfig) ([]byte, error) {
	if cfg.Secret != "" {
		return []byte(cfg.Secret), nil
	}

	if cfg.SecretFile == "" {
		return nil, domain.ErrNoSigningSecret
	}

	// Try existing secret
	secret, err := os.ReadFile(cfg.SecretFile)
	if err == nil {
		secret = bytes.TrimSpace(secret)
		if len(secret) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrNoSigningSecret, cfg.SecretFile)
		}

		return secret, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	// Generate new secret
	secret, err = GenerateSigningSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	if err := writeSecretFile(cfg.SecretFile, secret); err != nil {
		return nil, fmt.Errorf("write secret file: %w", err)
	}

	return secret, nil
}

// GenerateSigningSecret returns SecretSize random bytes, hex encoded.
func GenerateSigningSecret() ([]byte, error) {
	raw := make([]byte, SecretSize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}

	secret := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(secret, raw)

	return secret, nil
}

func writeSecretFile(path string, secret []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	defer func() {
		err = errors.Join(err, file.Close())
	}()

	if _, err := file.Write(append(secret, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
