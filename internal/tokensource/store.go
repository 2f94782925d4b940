package tokensource

import (
	"context"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// TokenStore persists a single refresh token across process restarts.
// Write("") clears the stored token, used by the logout flow.
type TokenStore interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, refreshToken string) error
}

// EnvTokenStore reads a refresh token from an environment variable. It is
// read-only: the variable is owned by whatever set the process environment,
// not by this gateway, so Write always fails.
type EnvTokenStore struct {
	Var string
}

func (s EnvTokenStore) Read(_ context.Context) (string, error) {
	return os.Getenv(s.Var), nil
}

func (s EnvTokenStore) Write(_ context.Context, _ string) error {
	return fmt.Errorf("tokensource: env-backed store %q is read-only", s.Var)
}

// FileTokenStore persists the refresh token in a single file with
// owner-only permissions. It does not encrypt the file's contents; the
// keyring backend is the appropriate choice when the token must be at rest
// encrypted rather than merely access-controlled.
type FileTokenStore struct {
	Path string
}

func (s FileTokenStore) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("tokensource: reading %s: %w", s.Path, err)
	}
	return string(data), nil
}

func (s FileTokenStore) Write(_ context.Context, refreshToken string) error {
	if refreshToken == "" {
		if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("tokensource: clearing %s: %w", s.Path, err)
		}
		return nil
	}
	if err := os.WriteFile(s.Path, []byte(refreshToken), 0o600); err != nil {
		return fmt.Errorf("tokensource: writing %s: %w", s.Path, err)
	}
	return nil
}

// KeyringTokenStore persists the refresh token in the OS-native credential
// store (macOS Keychain, Windows Credential Manager, Secret Service on
// Linux) via github.com/zalando/go-keyring.
type KeyringTokenStore struct {
	Service string
	User    string
}

func (s KeyringTokenStore) Read(_ context.Context) (string, error) {
	token, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("tokensource: reading keyring entry: %w", err)
	}
	return token, nil
}

func (s KeyringTokenStore) Write(_ context.Context, refreshToken string) error {
	if refreshToken == "" {
		if err := keyring.Delete(s.Service, s.User); err != nil && err != keyring.ErrNotFound {
			return fmt.Errorf("tokensource: clearing keyring entry: %w", err)
		}
		return nil
	}
	if err := keyring.Set(s.Service, s.User, refreshToken); err != nil {
		return fmt.Errorf("tokensource: writing keyring entry: %w", err)
	}
	return nil
}
