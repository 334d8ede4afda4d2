package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ROOTS_CONFIG is set
//  3. env (prefix ROOTS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ROOTS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ROOTS_ADDR, ROOTS_BASE_CAPACITY, ...
	// Map env keys like ROOTS_BASE_CAPACITY -> base_capacity (flat keys);
	// underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("ROOTS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "roots_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return ErrMissingAddr
	case c.StoreDriver != "memory" && c.StoreDriver != "postgres":
		return ErrUnknownStoreDriver
	case c.StoreDriver == "postgres" && c.PostgresDSN == "":
		return ErrMissingDSN
	case c.BlobDriver != "memory" && c.BlobDriver != "fs" && c.BlobDriver != "s3":
		return ErrUnknownBlobDriver
	case c.BlobDriver == "s3" && c.S3Bucket == "":
		return ErrMissingBucket
	case c.BaseCapacity < 1:
		return ErrBadCapacity
	}
	return nil
}
