package config

import (
	"os"
	"strconv"
)

// FromEnv overlays MSGQ_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MSGQ_QUERY_MAX_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Query.MaxThreads = n
		}
	}
	if v := os.Getenv("MSGQ_QUERY_PARAM"); v != "" {
		cfg.Query.Param = v
	}
	if v := os.Getenv("MSGQ_STORE_ENGINE"); v != "" {
		cfg.Store.Engine = v
	}
	if v := os.Getenv("MSGQ_STORE_SEGMENT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.SegmentBytes = n
		}
	}
	if v := os.Getenv("MSGQ_STORE_PAYLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.PayloadMaxBytes = n
		}
	}
	if v := os.Getenv("MSGQ_STORE_SUBJECT_NAME_REGEX"); v != "" {
		cfg.Store.SubjectNameRegex = v
	}
}
