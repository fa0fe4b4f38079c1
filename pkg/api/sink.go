package api

import "github.com/openhall/gavel/pkg/auction"

// hubSink pushes engine events onto the WebSocket hub. Broadcasts are
// buffered channel sends, so the engine never blocks on a slow client.
type hubSink struct {
	hub *Hub
}

func (s hubSink) BidPlaced(e auction.BidPlaced) {
	s.hub.BroadcastToChannel("bids", BidUpdate{
		Type:      "bid",
		Bidder:    e.Bidder.Hex(),
		Amount:    e.Amount,
		Deposited: e.Deposited,
		Timestamp: e.Timestamp,
	})
}

func (s hubSink) AuctionEnded(e auction.AuctionEnded) {
	update := EndedUpdate{
		Type:      "ended",
		HasWinner: e.Amount > 0,
		Amount:    e.Amount,
		Timestamp: e.Timestamp,
	}
	if update.HasWinner {
		update.Winner = e.Winner.Hex()
	}
	s.hub.BroadcastToChannel("auction", update)
}

func (s hubSink) RefundIssued(e auction.RefundIssued) {
	s.hub.BroadcastToChannel("refunds", RefundUpdate{
		Type:      "refund",
		Bidder:    e.Bidder.Hex(),
		Payout:    e.Payout,
		Fee:       e.Fee,
		Timestamp: e.Timestamp,
	})
}
