// Package badgerstore wraps Badger v2 with the same small surface the pebble
// wrapper offers: atomic multi-key updates, read transactions for leases, and
// routing of Badger's internal logs into pkg/log.
//
// Usage:
//
//	db, err := badgerstore.Open(badgerstore.Options{DataDir: "./data/badger", SyncWrites: true})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Update(ctx, func(txn *badger.Txn) error { return txn.Set(k, v) })
//	txn := db.NewReadTxn()
//	defer txn.Discard()
//	v, err := badgerstore.GetCopy(txn, k)
package badgerstore
