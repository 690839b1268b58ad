// Package config implements the typed, JSON-file-plus-env-override
// configuration loading of spec §6 ("Environment configuration"),
// modeled on aistore's cmn.Config load-then-validate pattern
// (cmn/config.go's LoadConfig/Validate).
package config

import (
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Config lists every environment knob spec §6 enumerates.
type Config struct {
	StorageRoot           string `json:"storage_root"`
	KVPath                string `json:"kv_path"`
	RuntimeEndpoint       string `json:"runtime_endpoint"`
	ListenAddr            string `json:"listen_addr"`
	SignedURLSecret       string `json:"signed_url_secret"`
	LifecycleIntervalMin  int    `json:"lifecycle_interval_minutes"`
	ReconcilerIntervalSec int    `json:"reconciler_interval_seconds"`
	DefaultProjectID      string `json:"default_project_id"`
	RequestTimeoutSec     int    `json:"request_timeout_seconds"`
	RuntimeTimeoutSec     int    `json:"runtime_timeout_seconds"`
}

// Default returns the out-of-the-box configuration spec §4.6/§4.2/§5
// describe ("default 5[s]", "default 30s", "default 60s").
func Default() *Config {
	return &Config{
		StorageRoot:           "./data/storage",
		KVPath:                "./data/cloudcore.kv",
		RuntimeEndpoint:       "",
		ListenAddr:            ":8080",
		SignedURLSecret:       "",
		LifecycleIntervalMin:  5,
		ReconcilerIntervalSec: 5,
		DefaultProjectID:      "default",
		RequestTimeoutSec:     60,
		RuntimeTimeoutSec:     30,
	}
}

// Load reads a JSON config file (if path is non-empty) over the defaults,
// then applies environment-variable overrides, then validates.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "config: reading %s", path)
		}
		if err := jsoniter.Unmarshal(b, c); err != nil {
			return nil, errors.Wrapf(err, "config: parsing %s", path)
		}
	}
	applyEnvOverrides(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("CLOUDCORE_STORAGE_ROOT"); v != "" {
		c.StorageRoot = v
	}
	if v := os.Getenv("CLOUDCORE_KV_PATH"); v != "" {
		c.KVPath = v
	}
	if v := os.Getenv("CLOUDCORE_RUNTIME_ENDPOINT"); v != "" {
		c.RuntimeEndpoint = v
	}
	if v := os.Getenv("CLOUDCORE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("CLOUDCORE_SIGNED_URL_SECRET"); v != "" {
		c.SignedURLSecret = v
	}
	if v := os.Getenv("CLOUDCORE_DEFAULT_PROJECT_ID"); v != "" {
		c.DefaultProjectID = v
	}
	if v := os.Getenv("CLOUDCORE_LIFECYCLE_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LifecycleIntervalMin = n
		}
	}
	if v := os.Getenv("CLOUDCORE_RECONCILER_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ReconcilerIntervalSec = n
		}
	}
}

func (c *Config) Validate() error {
	if c.StorageRoot == "" {
		return errors.New("config: storage_root must be set")
	}
	if c.KVPath == "" {
		return errors.New("config: kv_path must be set")
	}
	if c.ListenAddr == "" {
		return errors.New("config: listen_addr must be set")
	}
	if c.LifecycleIntervalMin <= 0 {
		return errors.New("config: lifecycle_interval_minutes must be > 0")
	}
	if c.ReconcilerIntervalSec <= 0 {
		return errors.New("config: reconciler_interval_seconds must be > 0")
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = 60
	}
	if c.RuntimeTimeoutSec <= 0 {
		c.RuntimeTimeoutSec = 30
	}
	return nil
}

func (c *Config) LifecycleInterval() time.Duration {
	return time.Duration(c.LifecycleIntervalMin) * time.Minute
}

func (c *Config) ReconcilerInterval() time.Duration {
	return time.Duration(c.ReconcilerIntervalSec) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) RuntimeTimeout() time.Duration {
	return time.Duration(c.RuntimeTimeoutSec) * time.Second
}
