// Package config declares the node's runtime configuration, parsed from
// environment variables and command-line flags by ardanlabs/conf.
package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
)

// Config holds every value the node needs at startup.
type Config struct {
	conf.Version
	P2P struct {
		Host            string        `conf:"default:0.0.0.0:3151"`
		SeedPeers       []string      `conf:"default:"`
		HandshakeTimeout time.Duration `conf:"default:10s"`
	}
	Node struct {
		WalletSeed  string `conf:"default:,mask"`
		AutoMine    bool   `conf:"default:false"`
	}
}

// Parse reads Config from the environment and command-line flags under the
// CORVID prefix. It returns the rendered --help text (non-empty) when the
// caller should print it and exit instead of continuing startup.
func Parse(build string) (Config, string, error) {
	cfg := Config{
		Version: conf.Version{
			Build: build,
			Desc:  "corvid proof-of-work node",
		},
	}

	const prefix = "CORVID"
	help, err := conf.Parse(prefix, &cfg)
	return cfg, help, err
}
