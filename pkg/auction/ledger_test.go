package auction

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	alice = common.HexToAddress("0xAA00000000000000000000000000000000000000")
	bob   = common.HexToAddress("0xBB00000000000000000000000000000000000000")
	carol = common.HexToAddress("0xCC00000000000000000000000000000000000000")
)

func TestLedgerCreditAccumulates(t *testing.T) {
	l := NewLedger()

	l.Credit(alice, 100)
	l.Credit(alice, 50)

	if got := l.Balance(alice); got != 150 {
		t.Errorf("balance = %d, want 150", got)
	}
	if got := l.Balance(bob); got != 0 {
		t.Errorf("unknown bidder balance = %d, want 0", got)
	}
	if l.Len() != 1 {
		t.Errorf("registry len = %d, want 1", l.Len())
	}
}

func TestLedgerRegistryOrderAndDedup(t *testing.T) {
	l := NewLedger()

	l.Credit(bob, 10)
	l.Credit(alice, 20)
	l.Credit(bob, 5) // second bid, no new registry entry
	l.Credit(carol, 30)

	bidders := l.Bidders()
	want := []common.Address{bob, alice, carol}
	if len(bidders) != len(want) {
		t.Fatalf("registry len = %d, want %d", len(bidders), len(want))
	}
	for i := range want {
		if bidders[i] != want[i] {
			t.Errorf("registry[%d] = %s, want %s", i, bidders[i].Hex(), want[i].Hex())
		}
	}
}

func TestLedgerClearAndRestore(t *testing.T) {
	l := NewLedger()
	l.Credit(alice, 100)

	got := l.Clear(alice)
	if got != 100 {
		t.Errorf("Clear returned %d, want 100", got)
	}
	if l.Balance(alice) != 0 {
		t.Errorf("balance after clear = %d, want 0", l.Balance(alice))
	}
	if l.Len() != 1 {
		t.Errorf("registry len after clear = %d, want 1", l.Len())
	}

	l.Restore(alice, 100)
	if l.Balance(alice) != 100 {
		t.Errorf("balance after restore = %d, want 100", l.Balance(alice))
	}
	if l.Len() != 1 {
		t.Errorf("registry len after restore = %d, want 1", l.Len())
	}
}

func TestLedgerEntriesIncludeZeroBalances(t *testing.T) {
	l := NewLedger()
	l.Credit(alice, 100)
	l.Credit(bob, 200)
	l.Clear(alice)

	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries len = %d, want 2", len(entries))
	}
	if entries[0].Bidder != alice || entries[0].Balance != 0 {
		t.Errorf("entries[0] = %+v, want alice with 0", entries[0])
	}
	if entries[1].Bidder != bob || entries[1].Balance != 200 {
		t.Errorf("entries[1] = %+v, want bob with 200", entries[1])
	}
	if l.TotalHeld() != 200 {
		t.Errorf("TotalHeld = %d, want 200", l.TotalHeld())
	}
}
