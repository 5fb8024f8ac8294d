// Package httpserver exposes msgquery over HTTP: the binary bulk query
// stream plus small JSON endpoints for appending messages, reading subject
// positions, health and stats.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	exec := query.NewExecutor(query.ExecutorOptions{MaxWorkers: 5})
//	s := httpserver.New(rt, query.NewDispatcher(rt.Store(), exec, nil), nil)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
