package authsvc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/svc/authsvc"
)

func TestLoadSigningSecret(t *testing.T) {
	t.Parallel()

	t.Run("configured secret wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "secret")

		secret, err := authsvc.LoadSigningSecret(authsvc.AuthConfig{Secret: "abc", SecretFile: path})
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), secret)

		assert.NoFileExists(t, path)
	})

	t.Run("generates and reuses secret file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "secret")
		cfg := authsvc.AuthConfig{SecretFile: path}

		first, err := authsvc.LoadSigningSecret(cfg)
		require.NoError(t, err)
		assert.Len(t, first, 2*authsvc.SecretSize)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		second, err := authsvc.LoadSigningSecret(cfg)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("reads existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "secret")
		require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))

		secret, err := authsvc.LoadSigningSecret(authsvc.AuthConfig{SecretFile: path})
		require.NoError(t, err)
		assert.Equal(t, []byte("from-file"), secret)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "secret")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

		_, err := authsvc.LoadSigningSecret(authsvc.AuthConfig{SecretFile: path})
		require.ErrorIs(t, err, domain.ErrNoSigningSecret)
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Parallel()

		_, err := authsvc.LoadSigningSecret(authsvc.AuthConfig{})
		require.ErrorIs(t, err, domain.ErrNoSigningSecret)
	})
}

func TestGenerateSigningSecret(t *testing.T) {
	t.Parallel()

	a, err := authsvc.GenerateSigningSecret()
	require.NoError(t, err)

	b, err := authsvc.GenerateSigningSecret()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Regexp(t, "^[0-9a-f]{64}$", string(a))
}
