package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/openhall/gavel/pkg/auction"
	"github.com/openhall/gavel/pkg/settle"
)

// Store is the Pebble persistence layer: the auction snapshot, an
// append-only event journal for off-chain replay, and transfer receipts.
type Store struct {
	db *pebble.DB

	mu      sync.Mutex
	nextSeq uint64 // next event journal sequence
}

// NewStore opens (or creates) the database at path and recovers the event
// journal sequence.
func NewStore(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{
		Cache:        pebble.NewCache(32 << 20),
		MemTableSize: 16 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("open pebble db at %s: %w", path, err)
	}

	s := &Store{db: db, nextSeq: 1}
	if err := s.recoverSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// recoverSeq seeks the last journal entry so appends continue the sequence
// after a restart.
func (s *Store) recoverSeq() error {
	prefix := []byte(prefixEvent)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return fmt.Errorf("journal iterator: %w", err)
	}
	defer iter.Close()

	if iter.Last() && iter.Valid() {
		var rec EventRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return fmt.Errorf("corrupt journal tail: %w", err)
		}
		s.nextSeq = rec.Seq + 1
	}
	return nil
}

// ============================================================
// Auction snapshot
// ============================================================

// SaveSnapshot persists the full engine state, replacing any prior one.
func (s *Store) SaveSnapshot(snap auction.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.db.Set([]byte(keySnapshot), data, pebble.Sync); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil if none exists.
func (s *Store) LoadSnapshot() (*auction.Snapshot, error) {
	data, closer, err := s.db.Get([]byte(keySnapshot))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	defer closer.Close()

	var snap auction.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ============================================================
// Event journal
// ============================================================

// EventRecord is one journaled engine event.
type EventRecord struct {
	Seq  uint64          `json:"seq"`
	Kind string          `json:"kind"` // "bid_placed" | "auction_ended" | "refund_issued"
	At   int64           `json:"at"`   // unix milliseconds, journal time
	Data json.RawMessage `json:"data"`
}

// AppendEvent journals an event and returns its sequence number.
func (s *Store) AppendEvent(kind string, payload any) (uint64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal event payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := EventRecord{
		Seq:  s.nextSeq,
		Kind: kind,
		At:   time.Now().UnixMilli(),
		Data: data,
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal event record: %w", err)
	}
	if err := s.db.Set(eventKey(rec.Seq), val, pebble.Sync); err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	s.nextSeq++
	return rec.Seq, nil
}

// Events returns up to limit journaled events with Seq >= fromSeq, in
// sequence order. limit <= 0 means no limit.
func (s *Store) Events(fromSeq uint64, limit int) ([]EventRecord, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: eventKey(fromSeq),
		UpperBound: keyUpperBound([]byte(prefixEvent)),
	})
	if err != nil {
		return nil, fmt.Errorf("journal iterator: %w", err)
	}
	defer iter.Close()

	var out []EventRecord
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var rec EventRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // skip invalid entries
		}
		out = append(out, rec)
	}
	return out, nil
}

// ============================================================
// Transfer receipts
// ============================================================

// SaveReceipt journals an outbound transfer receipt.
func (s *Store) SaveReceipt(r settle.Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	if err := s.db.Set(receiptKey(r.Seq, r.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

// Receipts returns all stored receipts in issue order.
func (s *Store) Receipts() ([]settle.Receipt, error) {
	prefix := []byte(prefixReceipt)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("receipt iterator: %w", err)
	}
	defer iter.Close()

	var out []settle.Receipt
	for iter.First(); iter.Valid(); iter.Next() {
		var r settle.Receipt
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
