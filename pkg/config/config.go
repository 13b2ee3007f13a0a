// Package config loads seqgraph settings from a TOML file.
//
// A config file looks like:
//
//	[build]
//	strategy = "structural"
//	allele_frequencies = true
//	workers = 8
//
//	[cache]
//	dir = "/var/cache/seqgraph"
//	redis_url = "redis://localhost:6379/0"
//	# mongo_uri = "mongodb://localhost:27017"
//	ttl = "720h"
//
//	[serve]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// FileName is the config file name looked up under the user config dir.
const FileName = "config.toml"

// Config is the parsed configuration file.
type Config struct {
	Build Build `toml:"build"`
	Cache Cache `toml:"cache"`
	Serve Serve `toml:"serve"`
}

// Build holds defaults for graph construction.
type Build struct {
	Strategy          string   `toml:"strategy"`
	Chromosomes       []string `toml:"chromosomes"`
	AlleleFrequencies bool     `toml:"allele_frequencies"`
	Numeric           bool     `toml:"numeric"`
	Workers           int      `toml:"workers"`
	CheckReference    bool     `toml:"check_reference"`
}

// Cache selects and tunes the result cache. The first backend set wins:
// RedisURL, then MongoURI, then Dir.
type Cache struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	MongoURI string   `toml:"mongo_uri"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// Shared reports whether a network backend is configured.
func (c Cache) Shared() bool {
	return c.RedisURL != "" || c.MongoURI != ""
}

// Serve configures the HTTP query service.
type Serve struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a string ("90s", "720h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Build: Build{Strategy: "structural"},
		Serve: Serve{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
	}
}

// Load reads the file at path on top of [Default]. Keys the file does not
// set keep their defaults; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidFormat,
			"config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// Path returns $XDG_CONFIG_HOME/seqgraph/config.toml, falling back to the
// platform user config dir.
func Path() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("config dir: %w", err)
		}
	}
	return filepath.Join(dir, "seqgraph", FileName), nil
}

// Find loads explicit when set, otherwise the file at [Path] if it exists,
// otherwise [Default]. The returned string names the file that was read.
func Find(explicit string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, err := Path()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}
