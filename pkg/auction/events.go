package auction

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Events emitted by the engine for off-chain consumers. Emission is
// fire-and-forget: the engine never blocks on or rolls back for a sink.

// BidPlaced is emitted after an accepted bid.
type BidPlaced struct {
	Bidder    common.Address `json:"bidder"`
	Amount    int64          `json:"amount"`    // this bid alone
	Deposited int64          `json:"deposited"` // bidder's cumulative balance
	Timestamp int64          `json:"timestamp"` // unix milliseconds
}

// AuctionEnded is emitted exactly once, by Finalize. A zero-amount record
// means the auction closed with no bids.
type AuctionEnded struct {
	Winner    common.Address `json:"winner"`
	Amount    int64          `json:"amount"`
	Timestamp int64          `json:"timestamp"`
}

// RefundIssued is emitted per recipient during the bulk refund sweep.
// On-demand withdrawals deliberately emit nothing.
type RefundIssued struct {
	Bidder    common.Address `json:"bidder"`
	Payout    int64          `json:"payout"`
	Fee       int64          `json:"fee"`
	Timestamp int64          `json:"timestamp"`
}

// Sink receives engine events. Implementations must not call back into the
// engine; they run inside the engine's critical section.
type Sink interface {
	BidPlaced(e BidPlaced)
	AuctionEnded(e AuctionEnded)
	RefundIssued(e RefundIssued)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) BidPlaced(BidPlaced)       {}
func (NopSink) AuctionEnded(AuctionEnded) {}
func (NopSink) RefundIssued(RefundIssued) {}

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) BidPlaced(e BidPlaced) {
	for _, s := range m {
		s.BidPlaced(e)
	}
}

func (m MultiSink) AuctionEnded(e AuctionEnded) {
	for _, s := range m {
		s.AuctionEnded(e)
	}
}

func (m MultiSink) RefundIssued(e RefundIssued) {
	for _, s := range m {
		s.RefundIssued(e)
	}
}

// LogSink writes events to a structured logger.
type LogSink struct {
	Log *zap.SugaredLogger
}

func (s LogSink) BidPlaced(e BidPlaced) {
	s.Log.Infow("bid_placed",
		"bidder", e.Bidder.Hex(),
		"amount", e.Amount,
		"deposited", e.Deposited)
}

func (s LogSink) AuctionEnded(e AuctionEnded) {
	s.Log.Infow("auction_ended",
		"winner", e.Winner.Hex(),
		"amount", e.Amount)
}

func (s LogSink) RefundIssued(e RefundIssued) {
	s.Log.Infow("refund_issued",
		"bidder", e.Bidder.Hex(),
		"payout", e.Payout,
		"fee", e.Fee)
}
