package auction

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openhall/gavel/pkg/util"
)

// Snapshot is the full serializable engine state: lifecycle, deadline,
// leader record and the deposit book in registry order. Saved after every
// mutation and used to resume an auction across restarts.
type Snapshot struct {
	State    State        `json:"state"`
	Deadline int64        `json:"deadline"` // unix milliseconds
	Leader   LeaderRecord `json:"leader"`
	Entries  []Entry      `json:"entries"`
}

// Snapshot captures the current engine state.
func (a *Auction) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Auction) snapshotLocked() Snapshot {
	return Snapshot{
		State:    a.state,
		Deadline: a.deadline.UnixMilli(),
		Leader:   a.leader,
		Entries:  a.ledger.Entries(),
	}
}

// Restore rebuilds an engine from a snapshot. Registry order and zero
// balances are preserved so refund enumeration and the seen-before signal
// survive restarts.
func Restore(snap Snapshot, params Params, clock util.Clock, bank Transferor, sink Sink, log *zap.SugaredLogger) (*Auction, error) {
	if snap.State != Open && snap.State != Ended {
		return nil, fmt.Errorf("corrupt snapshot: unknown state %d", snap.State)
	}
	if sink == nil {
		sink = NopSink{}
	}

	ledger := NewLedger()
	for _, e := range snap.Entries {
		if e.Balance < 0 {
			return nil, fmt.Errorf("corrupt snapshot: negative balance for %s", e.Bidder.Hex())
		}
		// Credit registers membership even for zero balances.
		ledger.Credit(e.Bidder, e.Balance)
	}

	return &Auction{
		state:    snap.State,
		deadline: time.UnixMilli(snap.Deadline),
		leader:   snap.Leader,
		ledger:   ledger,
		params:   params,
		clock:    clock,
		refund:   RefundEngine{FeeBps: params.FeeBps, Bank: bank},
		sink:     sink,
		log:      log,
	}, nil
}
