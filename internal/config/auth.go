package config

import (
	"fmt"

	"github.com/wrenhollow/anthropic-bridge/internal/tokensource"
)

// NewTokenStore builds the tokensource.TokenStore named by Auth.Storage.
func (a Auth) NewTokenStore() (tokensource.TokenStore, error) {
	switch a.Storage {
	case TokenStorageTypeEnv:
		if a.EnvVar == "" {
			return nil, fmt.Errorf("config: auth.env_var must not be empty for env storage")
		}
		return tokensource.EnvTokenStore{Var: a.EnvVar}, nil
	case TokenStorageTypeFile:
		if a.FilePath == "" {
			return nil, fmt.Errorf("config: auth.file_path must not be empty for file storage")
		}
		return tokensource.FileTokenStore{Path: a.FilePath}, nil
	case TokenStorageTypeKeyring:
		if a.KeyringService == "" || a.KeyringUser == "" {
			return nil, fmt.Errorf("config: auth.keyring_service and auth.keyring_user must not be empty for keyring storage")
		}
		return tokensource.KeyringTokenStore{Service: a.KeyringService, User: a.KeyringUser}, nil
	default:
		return nil, fmt.Errorf("config: unknown auth storage %q", a.Storage)
	}
}
