// Package pebblestore provides a thin wrapper around Pebble with fsync policy,
// batches, pinned reads, and minimal metrics hooks.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(context.Background(), b)
//	b.Close()
//
//	// Zero-copy read; the value is valid until closer.Close().
//	v, closer, err := db.GetPinned([]byte("k"))
//	if err == nil {
//	    use(v)
//	    closer.Close()
//	}
package pebblestore
