// Package query serves bulk point lookups against the message store.
//
// A Descriptor names one subject and an ordered list of sequences. The
// Dispatcher hands each descriptor to the bounded Executor as a single job;
// the job looks every key up in order, writes a frame for each message that
// was found, releases every lookup result, then flushes and closes the sink.
// Dispatch never blocks: the caller receives a Future that resolves once the
// job has finished.
//
// Frame layout, repeated per found key with nothing between frames:
//
//	sequence (8 bytes, big-endian) | payload segment 0 | ... | payload segment n-1
//
// Keys that are not found (or fail to read) contribute no bytes. A write,
// flush or close failure aborts the remaining keys and fails the Future.
package query
