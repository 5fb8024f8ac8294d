// Package runtime wires config and the message store into a single-node
// msgquery instance. It opens the configured storage engine (pebble or
// badger) under its own subdirectory of the data dir and exposes Close,
// health checks and storage counters.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	seq, _ := rt.Store().Append(context.Background(), "orders", []byte("hello"))
//	res := rt.Store().Lookup("orders", seq)
//	defer res.Release()
package runtime
