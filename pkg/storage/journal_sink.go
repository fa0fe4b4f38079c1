package storage

import (
	"go.uber.org/zap"

	"github.com/openhall/gavel/pkg/auction"
)

// JournalSink persists engine events to the store's append-only journal so
// off-chain consumers can replay anything they missed. Journal failures are
// logged and dropped; event emission is fire-and-forget by contract.
type JournalSink struct {
	Store *Store
	Log   *zap.SugaredLogger
}

func (s JournalSink) BidPlaced(e auction.BidPlaced) {
	s.append("bid_placed", e)
}

func (s JournalSink) AuctionEnded(e auction.AuctionEnded) {
	s.append("auction_ended", e)
}

func (s JournalSink) RefundIssued(e auction.RefundIssued) {
	s.append("refund_issued", e)
}

func (s JournalSink) append(kind string, payload any) {
	if _, err := s.Store.AppendEvent(kind, payload); err != nil && s.Log != nil {
		s.Log.Warnw("event_journal_failed", "kind", kind, "err", err)
	}
}
