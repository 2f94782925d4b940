package config

import (
	"fmt"
	"time"
)

// Config holds every value the gateway needs to run, loaded once at startup
// and never mutated afterward (spec.md §5 "Shared resources").
type Config struct {
	Listen       string        `koanf:"listen"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
	ShutdownWait time.Duration `koanf:"shutdown_wait"`

	Upstream Upstream `koanf:"upstream"`
	Log      Log      `koanf:"log"`
	Otel     Otel     `koanf:"otel"`
	Auth     Auth     `koanf:"auth"`

	DebugDumpDir string `koanf:"debug_dump_dir"`
}

// Upstream describes the OpenAI-compatible backend the gateway translates
// requests onto.
type Upstream struct {
	// BaseURL is the OpenAI-compatible API root without the /v1 path, e.g.
	// "https://api.openai.com"; the adapter appends /v1/chat/completions.
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as the upstream Authorization bearer token when the
	// inbound request carries no credential of its own (§4.10 "Forwarding").
	APIKey string `koanf:"api_key"`

	// Model is substituted for whatever model name the client requested,
	// per spec.md §4.2 step 5.
	Model string `koanf:"model"`

	// RequestTimeout bounds a single non-streaming upstream round trip;
	// streaming requests are not bounded by it.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// Log configures the structured logger (§4.9).
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Otel configures where OpenTelemetry logs/traces are exported. Exporter is
// one of "none", "stdout", "otlp-grpc", or "otlp-http".
type Otel struct {
	Exporter string `koanf:"exporter"`
	Endpoint string `koanf:"endpoint"`
}

// Auth configures how the gateway stores the long-lived refresh token used
// for upstream OAuth (§4.10 point 2). It has no bearing on how client
// credentials are forwarded; that is Upstream.APIKey and the request's own
// headers.
type Auth struct {
	Storage TokenStorageType `koanf:"storage"`

	// OAuth2 client identity and endpoint for upstreams that sit behind an
	// authorization server (§4.10 point 2). Empty ClientID disables the
	// OAuth2 transport entirely, falling back to Upstream.APIKey.
	ClientID    string `koanf:"client_id"`
	AuthURL     string `koanf:"auth_url"`
	TokenURL    string `koanf:"token_url"`
	RedirectURL string `koanf:"redirect_url"`

	// EnvVar names the environment variable read by the "env" backend.
	EnvVar string `koanf:"env_var"`

	// FilePath names the file read/written by the "file" backend.
	FilePath string `koanf:"file_path"`

	// KeyringService/KeyringUser address the OS keyring entry read/written
	// by the "keyring" backend.
	KeyringService string `koanf:"keyring_service"`
	KeyringUser    string `koanf:"keyring_user"`
}

// TokenStorageType names a refresh-token storage backend.
type TokenStorageType string

const (
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

func (t TokenStorageType) valid() bool {
	switch t {
	case TokenStorageTypeEnv, TokenStorageTypeFile, TokenStorageTypeKeyring:
		return true
	default:
		return false
	}
}

// Validate checks the fields required for the gateway to start at all.
// Per-feature requirements (e.g. auth backend paths) are checked lazily by
// the code that uses them, matching the teacher's "fail where you use it"
// style for optional subsystems.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("config: upstream.base_url must not be empty")
	}
	if c.Upstream.Model == "" {
		return fmt.Errorf("config: upstream.model must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max_body_bytes must be positive")
	}
	if !c.Auth.Storage.valid() {
		return fmt.Errorf("config: auth.storage %q is not one of env, file, keyring", c.Auth.Storage)
	}
	return nil
}
