package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Storage engines understood by the runtime.
const (
	EnginePebble = "pebble"
	EngineBadger = "badger"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Query QueryConfig `json:"query"`
	Store StoreConfig `json:"store"`
}

// QueryConfig tunes the bulk query responder.
type QueryConfig struct {
	// MaxThreads is the executor's upper worker bound.
	MaxThreads int `json:"maxThreads"`
	// Param is the URL query parameter carrying the JSON query envelope.
	Param string `json:"param"`
}

// StoreConfig captures message store settings.
type StoreConfig struct {
	Engine           string `json:"engine"`
	SegmentBytes     int    `json:"segmentBytes"`
	PayloadMaxBytes  int    `json:"payloadMaxBytes"`
	SubjectNameRegex string `json:"subjectNameRegex"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Query: QueryConfig{
			MaxThreads: 5,
			Param:      "backupQuery",
		},
		Store: StoreConfig{
			Engine:           EnginePebble,
			SegmentBytes:     64 << 10,
			PayloadMaxBytes:  4 << 20,
			SubjectNameRegex: `[A-Za-z0-9._\-]{1,128}`,
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Query.MaxThreads < 1 {
		return fmt.Errorf("config: query.maxThreads must be >= 1, got %d", c.Query.MaxThreads)
	}
	if c.Query.Param == "" {
		return errors.New("config: query.param is required")
	}
	switch c.Store.Engine {
	case EnginePebble, EngineBadger:
	default:
		return fmt.Errorf("config: unknown store.engine %q", c.Store.Engine)
	}
	if c.Store.SegmentBytes <= 0 {
		return fmt.Errorf("config: store.segmentBytes must be positive, got %d", c.Store.SegmentBytes)
	}
	if c.Store.PayloadMaxBytes <= 0 {
		return fmt.Errorf("config: store.payloadMaxBytes must be positive, got %d", c.Store.PayloadMaxBytes)
	}
	if _, err := regexp.Compile(c.Store.SubjectNameRegex); err != nil {
		return fmt.Errorf("config: store.subjectNameRegex: %w", err)
	}
	return nil
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported yet; use JSON for now")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
