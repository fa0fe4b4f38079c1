package storage

import "fmt"

// Pebble key schema. Prefix-based so each record family supports range
// scans; the event sequence is zero-padded for lexicographic ordering.
const (
	keySnapshot   = "auction:snapshot"
	prefixEvent   = "evt:"
	prefixReceipt = "rcpt:"
)

// eventKey formats "evt:{seq}" with a 20-digit zero-padded sequence.
func eventKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixEvent, seq))
}

// receiptKey formats "rcpt:{seq}:{id}". Sequence-first keeps receipts in
// issue order under a range scan.
func receiptKey(seq uint64, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", prefixReceipt, seq, id))
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
