package storage

import (
	"fmt"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openhall/gavel/pkg/auction"
	"github.com/openhall/gavel/pkg/settle"
)

var (
	alice = common.HexToAddress("0xAA00000000000000000000000000000000000000")
	bob   = common.HexToAddress("0xBB00000000000000000000000000000000000000")
)

// newTestStore opens a store on a unique temporary path per test to avoid
// Pebble lock conflicts.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := fmt.Sprintf("./tmp_test_store_%s.db", t.Name())
	os.RemoveAll(dbPath)

	t.Cleanup(func() {
		os.RemoveAll(dbPath)
	})

	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestSnapshotSaveLoad(t *testing.T) {
	s := newTestStore(t)

	if snap, err := s.LoadSnapshot(); err != nil || snap != nil {
		t.Fatalf("empty store LoadSnapshot = %v/%v, want nil/nil", snap, err)
	}

	in := auction.Snapshot{
		State:    auction.Ended,
		Deadline: 1_760_000_000_000,
		Leader:   auction.LeaderRecord{Bidder: bob, Amount: 106},
		Entries: []auction.Entry{
			{Bidder: alice, Balance: 0},
			{Bidder: bob, Balance: 106},
		},
	}
	if err := s.SaveSnapshot(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil {
		t.Fatal("load returned nil snapshot")
	}
	if out.State != in.State || out.Deadline != in.Deadline || out.Leader != in.Leader {
		t.Errorf("snapshot = %+v, want %+v", out, in)
	}
	if len(out.Entries) != 2 || out.Entries[0].Bidder != alice || out.Entries[1].Balance != 106 {
		t.Errorf("entries = %+v, want registry order preserved", out.Entries)
	}
}

func TestEventJournalOrderAndSeq(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 3; i++ {
		seq, err := s.AppendEvent("bid_placed", map[string]int{"n": i})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if seq != uint64(i) {
			t.Errorf("seq = %d, want %d", seq, i)
		}
	}

	events, err := s.Events(1, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events len = %d, want 3", len(events))
	}
	for i, e := range events {
		if e.Seq != uint64(i+1) {
			t.Errorf("events[%d].Seq = %d, want %d", i, e.Seq, i+1)
		}
		if e.Kind != "bid_placed" {
			t.Errorf("events[%d].Kind = %q, want bid_placed", i, e.Kind)
		}
	}

	// Paging from the middle, with a limit.
	tail, err := s.Events(2, 1)
	if err != nil {
		t.Fatalf("events from 2: %v", err)
	}
	if len(tail) != 1 || tail[0].Seq != 2 {
		t.Errorf("tail = %+v, want single seq-2 record", tail)
	}
}

func TestJournalSeqSurvivesReopen(t *testing.T) {
	dbPath := fmt.Sprintf("./tmp_test_store_%s.db", t.Name())
	os.RemoveAll(dbPath)
	t.Cleanup(func() { os.RemoveAll(dbPath) })

	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.AppendEvent("bid_placed", map[string]int{"n": 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.AppendEvent("auction_ended", map[string]int{"n": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = NewStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	seq, err := s.AppendEvent("refund_issued", map[string]int{"n": 3})
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if seq != 3 {
		t.Errorf("seq after reopen = %d, want 3", seq)
	}
}

func TestReceiptsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []settle.Receipt{
		{ID: "aa11", To: alice, Amount: 98, At: 1000, Seq: 1},
		{ID: "bb22", To: bob, Amount: 103, At: 2000, Seq: 2},
	}
	for _, r := range in {
		if err := s.SaveReceipt(r); err != nil {
			t.Fatalf("save receipt %s: %v", r.ID, err)
		}
	}

	out, err := s.Receipts()
	if err != nil {
		t.Fatalf("receipts: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("receipts len = %d, want 2", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("receipts[%d] = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestJournalSinkWritesEngineEvents(t *testing.T) {
	s := newTestStore(t)
	sink := JournalSink{Store: s}

	sink.BidPlaced(auction.BidPlaced{Bidder: alice, Amount: 100, Deposited: 100, Timestamp: 1})
	sink.AuctionEnded(auction.AuctionEnded{Winner: alice, Amount: 100, Timestamp: 2})
	sink.RefundIssued(auction.RefundIssued{Bidder: bob, Payout: 98, Fee: 2, Timestamp: 3})

	events, err := s.Events(1, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	kinds := []string{"bid_placed", "auction_ended", "refund_issued"}
	if len(events) != len(kinds) {
		t.Fatalf("events len = %d, want %d", len(events), len(kinds))
	}
	for i, k := range kinds {
		if events[i].Kind != k {
			t.Errorf("events[%d].Kind = %q, want %q", i, events[i].Kind, k)
		}
	}
}
