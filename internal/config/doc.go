// Package config provides loading and environment overlay for msgquery
// configuration. It exposes a Default() baseline, JSON file loading and
// MSGQ_* environment overrides.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/msgquery.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{DataDir: "/var/lib/msgquery", Config: cfg})
//	defer rt.Close()
package config
