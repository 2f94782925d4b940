package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment variable the gateway reads, so
// GATEWAY_UPSTREAM_BASE_URL maps to upstream.base_url.
const envPrefix = "GATEWAY_"

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"listen":             "127.0.0.1:4000",
		"max_body_bytes":     int64(10 << 20),
		"shutdown_wait":      5 * time.Second,
		"upstream.base_url":  "",
		"upstream.api_key":   "",
		"upstream.model":     "",
		"upstream.request_timeout": 60 * time.Second,
		"log.level":          "info",
		"log.format":         "text",
		"otel.exporter":      "none",
		"otel.endpoint":      "",
		"auth.storage":       string(TokenStorageTypeEnv),
		"auth.client_id":     "",
		"auth.auth_url":      "",
		"auth.token_url":     "",
		"auth.redirect_url":  "",
		"auth.env_var":       "GATEWAY_UPSTREAM_OAUTH_REFRESH_TOKEN",
		"auth.file_path":     "",
		"auth.keyring_service": "anthropic-bridge",
		"auth.keyring_user":    "default",
		"debug_dump_dir":     "",
	}
}

// EnvironFunc matches os.Environ's signature, threaded through for tests
// that need deterministic environment snapshots instead of the process's
// real one.
type EnvironFunc func() []string

// Load builds a Config from, in increasing precedence: built-in defaults, an
// optional TOML file at path (skipped entirely if path is empty or the file
// does not exist), and environment variables prefixed with GATEWAY_.
//
// overrides is applied last, above the environment, so a caller can let
// CLI flags win over everything else without re-implementing koanf's merge
// order. cmd/gateway and cmd/gatewayctl both pass nil today.
func Load(path string, overrides map[string]interface{}, environ EnvironFunc) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("config: loading file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if environ == nil {
		environ = os.Environ
	}
	envMap := map[string]string{}
	for _, kv := range environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		envMap[name] = value
	}
	envProvider := env.Provider(".", env.Opt{
		Prefix:      envPrefix,
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, interface{}) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			for _, section := range []string{"upstream", "log", "otel", "auth"} {
				if rest, ok := strings.CutPrefix(key, section+"_"); ok {
					return section + "." + rest, value
				}
			}
			return key, value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("config: loading overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
