package auction

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/openhall/gavel/pkg/util"
)

// State is the two-state auction lifecycle.
type State int8

const (
	Open State = iota
	Ended
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// LeaderRecord is the current leading bid. A zero Amount means no bid has
// ever been accepted; accepted amounts are strictly positive.
type LeaderRecord struct {
	Bidder common.Address `json:"bidder"`
	Amount int64          `json:"amount"`
}

// HasWinner reports whether any bid was ever accepted.
func (l LeaderRecord) HasWinner() bool { return l.Amount > 0 }

// Params are the tunable economics of an auction.
type Params struct {
	MinRaiseBps int64 // minimum raise over the leading bid, default 500 (5%)
	FeeBps      int64 // retained refund fee, default 200 (2%)
}

func DefaultParams() Params {
	return Params{MinRaiseBps: 500, FeeBps: 200}
}

// Auction is the escrow-and-settlement engine for one single-item
// ascending-price auction. One mutex guards state, leader, ledger and
// registry together: bid validation reads the leader record and ledger as
// one view, so no finer-grained locking is safe. Every public operation is
// a single critical section with validate-then-commit discipline.
type Auction struct {
	mu       sync.Mutex
	state    State
	deadline time.Time
	leader   LeaderRecord
	ledger   *Ledger

	params Params
	clock  util.Clock
	refund RefundEngine
	sink   Sink
	log    *zap.SugaredLogger

	// OnChange, if set, receives a snapshot after every successful
	// mutation, inside the critical section. Used for persistence.
	OnChange func(Snapshot)
}

// New creates an open auction whose deadline is the clock's current time
// plus duration.
func New(duration time.Duration, params Params, clock util.Clock, bank Transferor, sink Sink, log *zap.SugaredLogger) (*Auction, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("auction duration must be positive: %s", duration)
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Auction{
		state:    Open,
		deadline: clock.Now().Add(duration),
		ledger:   NewLedger(),
		params:   params,
		clock:    clock,
		refund:   RefundEngine{FeeBps: params.FeeBps, Bank: bank},
		sink:     sink,
		log:      log,
	}, nil
}

// SetSink replaces the event sink. Intended for startup wiring, before the
// engine is shared across goroutines.
func (a *Auction) SetSink(s Sink) {
	if s == nil {
		s = NopSink{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = s
}

// Deadline returns the fixed bidding deadline.
func (a *Auction) Deadline() time.Time {
	return a.deadline
}

// State returns the current lifecycle state.
func (a *Auction) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Leader returns the current leading bid record.
func (a *Auction) Leader() LeaderRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.leader
}

// MinNextBid returns the smallest payment that would currently be accepted.
func (a *Auction) MinNextBid() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return MinNextBid(a.leader.Amount, a.params.MinRaiseBps)
}

// PlaceBid deposits value as a bid. The payment alone must clear the
// acceptance rule; on success it is credited to the bidder's cumulative
// balance and the bidder becomes the leader. Rejections mutate nothing.
func (a *Auction) PlaceBid(bidder common.Address, amount int64) error {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Ended {
		return ErrAuctionClosed
	}
	if !now.Before(a.deadline) {
		return ErrAuctionExpired
	}
	if !Accepts(a.leader.Amount, amount, a.params.MinRaiseBps) {
		return fmt.Errorf("%w: amount %d, minimum %d",
			ErrInvalidBid, amount, MinNextBid(a.leader.Amount, a.params.MinRaiseBps))
	}

	a.ledger.Credit(bidder, amount)
	a.leader = LeaderRecord{Bidder: bidder, Amount: amount}

	a.sink.BidPlaced(BidPlaced{
		Bidder:    bidder,
		Amount:    amount,
		Deposited: a.ledger.Balance(bidder),
		Timestamp: now.UnixMilli(),
	})
	a.changed()
	return nil
}

// Finalize ends the auction. Allowed once, strictly after the deadline.
// Closing with no bids is a legitimate no-winner outcome, not an error.
func (a *Auction) Finalize() error {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Ended {
		return ErrAlreadyFinalized
	}
	if !now.After(a.deadline) {
		return ErrStillActive
	}

	a.state = Ended
	a.sink.AuctionEnded(AuctionEnded{
		Winner:    a.leader.Bidder,
		Amount:    a.leader.Amount,
		Timestamp: now.UnixMilli(),
	})
	a.changed()
	return nil
}

// Winner returns the leader record once the auction has ended. The read is
// idempotent: finalize is the last write to the record.
func (a *Auction) Winner() (LeaderRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Ended {
		return LeaderRecord{}, ErrNotEnded
	}
	return a.leader, nil
}

// WithdrawOwn lets a bidder exit before finalization, paying out their full
// balance minus the fee. The current leader may only withdraw while holding
// surplus beyond the standing bid; the withdrawal then covers the entire
// balance, standing bid included, leaving the leader record untouched.
//
// The balance is zeroed before the transfer is initiated, so a re-entrant
// call observes zero and fails with ErrNoDeposit. If the transfer itself
// fails the balance is restored: all-or-nothing.
//
// No event is emitted on this path: an early exit is a quiet personal
// action, only the bulk sweep announces refunds.
func (a *Auction) WithdrawOwn(bidder common.Address) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Open {
		return 0, ErrAuctionClosed
	}

	balance := a.ledger.Balance(bidder)
	if balance == 0 {
		return 0, ErrNoDeposit
	}
	if bidder == a.leader.Bidder && balance == a.leader.Amount {
		return 0, ErrLeadingBid
	}

	a.ledger.Clear(bidder)
	payout := a.refund.Payout(balance)
	if err := a.refund.Bank.Transfer(bidder, payout); err != nil {
		a.ledger.Restore(bidder, balance)
		return 0, fmt.Errorf("withdraw transfer for %s: %w", bidder.Hex(), err)
	}

	if a.log != nil {
		a.log.Infow("withdrawal",
			"bidder", bidder.Hex(),
			"balance", balance,
			"payout", payout)
	}
	a.changed()
	return payout, nil
}

// RefundAllNonWinners sweeps the registry in insertion order after the
// auction has ended, paying out every non-winner with a nonzero balance.
// Already-refunded bidders are skipped, so repeated calls are no-ops.
//
// Per-recipient failures are isolated: a failed transfer restores that
// balance and is reported in the SettlementReport without aborting the
// rest of the sweep.
func (a *Auction) RefundAllNonWinners() (*SettlementReport, error) {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Ended {
		return nil, ErrNotEnded
	}

	report := &SettlementReport{}
	for _, bidder := range a.ledger.Bidders() {
		if a.leader.HasWinner() && bidder == a.leader.Bidder {
			continue
		}
		balance := a.ledger.Balance(bidder)
		if balance == 0 {
			continue
		}

		a.ledger.Clear(bidder)
		payout := a.refund.Payout(balance)
		if err := a.refund.Bank.Transfer(bidder, payout); err != nil {
			a.ledger.Restore(bidder, balance)
			report.Failed = append(report.Failed, FailedRefund{
				Bidder:  bidder,
				Balance: balance,
				Err:     err,
			})
			if a.log != nil {
				a.log.Warnw("refund_transfer_failed",
					"bidder", bidder.Hex(),
					"balance", balance,
					"err", err)
			}
			continue
		}

		fee := a.refund.Fee(balance)
		report.Refunded = append(report.Refunded, RefundReceipt{
			Bidder: bidder,
			Payout: payout,
			Fee:    fee,
		})
		a.sink.RefundIssued(RefundIssued{
			Bidder:    bidder,
			Payout:    payout,
			Fee:       fee,
			Timestamp: now.UnixMilli(),
		})
	}

	a.changed()
	return report, nil
}

// Balance returns a bidder's outstanding deposit.
func (a *Auction) Balance(bidder common.Address) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Balance(bidder)
}

// ListBids enumerates (bidder, balance) rows in registry order, for
// auditing and display. Readable in any state.
func (a *Auction) ListBids() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Entries()
}

// TotalHeld returns the sum of all outstanding balances.
func (a *Auction) TotalHeld() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.TotalHeld()
}

func (a *Auction) changed() {
	if a.OnChange != nil {
		a.OnChange(a.snapshotLocked())
	}
}
