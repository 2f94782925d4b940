package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wrenhollow/anthropic-bridge/internal/config"
)

// Execute runs the root command with the given context, arguments, and
// build metadata.
func Execute(ctx context.Context, args []string, version, commit string) error {
	cmd := &cli.Command{
		Name:    "gatewayctl",
		Usage:   "Operate the Anthropic-to-OpenAI gateway",
		Version: version + " (" + commit + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config file",
			},
		},
		Commands: []*cli.Command{
			authCommand(),
			convertCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// loadConfig loads the gateway config through the same config.Load the
// server uses, so gatewayctl's auth backend selection matches what
// cmd/gateway uses for the same file and environment. Unlike cmd/gateway, it
// falls back to the GATEWAY_CONFIG environment variable when path is empty.
func loadConfig(path string, cmd *cli.Command, environ config.EnvironFunc) (*config.Config, error) {
	_ = cmd // reserved for future per-command overrides
	if path == "" {
		path = os.Getenv("GATEWAY_CONFIG")
	}
	return config.Load(path, nil, environ)
}
