// Package msgstore implements the sequence-addressed message store queried by
// the bulk lookup responder.
//
// # Overview
//
// Messages are grouped by subject and numbered from 1 in append order.
// A payload is split into fixed-size segments so large messages never need a
// single contiguous storage value; Lookup hands the segments back as an
// ordered list of buffers inside a Result lease:
//
//	res := store.Lookup("orders", 42)
//	defer res.Release()
//	if res.Status == msgstore.StatusSuccess {
//	    for _, b := range res.Buffers {
//	        w.Write(b)
//	    }
//	}
//
// Two engines share the keyspace in keys.go and the header record in
// record.go: PebbleStore pins values and unpins them on Release, BadgerStore
// keeps a read transaction open until Release.
package msgstore
