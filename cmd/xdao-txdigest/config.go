package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"xdao.co/txdigest/txdigest"
)

// Config holds the settings shared by every subcommand. Values come from the
// environment (optionally a .env file) and are overridden by flags.
type Config struct {
	Legacy     bool   `env:"TXDIGEST_LEGACY" envDefault:"false"`
	HashAlg    string `env:"TXDIGEST_HASH_ALG" envDefault:"sha256"`
	ClassTag   string `env:"TXDIGEST_CLASS_TAG" envDefault:"0xDF"`
	SubtagBase string `env:"TXDIGEST_SUBTAG_BASE" envDefault:"0x70"`
	JSON       bool   `env:"TXDIGEST_JSON" envDefault:"false"`
	LogLevel   string `env:"TXDIGEST_LOG_LEVEL" envDefault:"warn"`
}

// parseConfig parses environment and flags into a Config. Subcommand flags
// must already be registered on fs.
func parseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.BoolVar(&cfg.Legacy, "legacy", cfg.Legacy, "Also accept the legacy flat key/value object")
	fs.StringVar(&cfg.HashAlg, "hash-alg", cfg.HashAlg, "Digest algorithm: sha256, sha512 or sha3-256")
	fs.StringVar(&cfg.ClassTag, "class-tag", cfg.ClassTag, "Record class tag byte")
	fs.StringVar(&cfg.SubtagBase, "subtag-base", cfg.SubtagBase, "Record sub-tag base byte")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Print JSON instead of text")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Params returns the record tags selected by the config.
func (c Config) Params() (txdigest.Params, error) {
	class, err := parseByte(c.ClassTag)
	if err != nil {
		return txdigest.Params{}, fmt.Errorf("class tag: %w", err)
	}
	base, err := parseByte(c.SubtagBase)
	if err != nil {
		return txdigest.Params{}, fmt.Errorf("sub-tag base: %w", err)
	}
	return txdigest.Params{ClassTag: class, SubtagBase: base}, nil
}

// Options returns the pipeline options selected by the config.
func (c Config) Options() (txdigest.Options, error) {
	p, err := c.Params()
	if err != nil {
		return txdigest.Options{}, err
	}
	return txdigest.Options{Legacy: c.Legacy, Params: p, HashAlg: c.HashAlg}, nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func newLogger(cfg Config, errOut io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(errOut)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}
