package api

// API response types for REST endpoints and WebSocket messages.

// ==============================
// REST Response Types
// ==============================

// AuctionInfo is the public view of the auction.
type AuctionInfo struct {
	State       string      `json:"state"`    // "open" | "ended"
	Deadline    int64       `json:"deadline"` // unix milliseconds
	Leader      *LeaderInfo `json:"leader,omitempty"`
	MinNextBid  int64       `json:"minNextBid"`
	Bidders     int         `json:"bidders"`
	TotalHeld   int64       `json:"totalHeld"`
	MinRaiseBps int64       `json:"minRaiseBps"`
	FeeBps      int64       `json:"feeBps"`
}

// LeaderInfo is the current leading bid. Omitted while no bid has been
// accepted.
type LeaderInfo struct {
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

// BidEntry is one (bidder, balance) audit row in registry order.
type BidEntry struct {
	Bidder  string `json:"bidder"`
	Balance int64  `json:"balance"`
}

// WinnerInfo is the finalized outcome. A no-bid auction ends with
// hasWinner=false.
type WinnerInfo struct {
	HasWinner bool   `json:"hasWinner"`
	Winner    string `json:"winner,omitempty"`
	Amount    int64  `json:"amount"`
}

// AccountInfo is a bidder's escrow view.
type AccountInfo struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

// WithdrawResponse reports an on-demand refund.
type WithdrawResponse struct {
	Status string `json:"status"` // "refunded"
	Payout int64  `json:"payout"`
}

// RefundResult is one row of a bulk sweep response.
type RefundResult struct {
	Bidder string `json:"bidder"`
	Payout int64  `json:"payout,omitempty"`
	Fee    int64  `json:"fee,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SettlementResponse is the collective outcome of a bulk refund sweep.
type SettlementResponse struct {
	Refunded []RefundResult `json:"refunded"`
	Failed   []RefundResult `json:"failed"`
	Total    int64          `json:"totalPaid"`
	Fees     int64          `json:"totalFees"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ==============================
// REST Request Types
// ==============================

// PlaceBidRequest is the payload for POST /api/v1/bids.
type PlaceBidRequest struct {
	Address string `json:"address"` // bidder's hex address
	Amount  int64  `json:"amount"`  // this payment alone, smallest unit
}

// WithdrawRequest is the payload for POST /api/v1/withdrawals.
type WithdrawRequest struct {
	Address string `json:"address"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by a client to manage channel subscriptions.
// Channels: "bids", "auction", "refunds".
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// BidUpdate is broadcast on every accepted bid.
type BidUpdate struct {
	Type      string `json:"type"` // "bid"
	Bidder    string `json:"bidder"`
	Amount    int64  `json:"amount"`
	Deposited int64  `json:"deposited"`
	Timestamp int64  `json:"timestamp"`
}

// EndedUpdate is broadcast once, on finalization.
type EndedUpdate struct {
	Type      string `json:"type"` // "ended"
	HasWinner bool   `json:"hasWinner"`
	Winner    string `json:"winner,omitempty"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// RefundUpdate is broadcast per recipient during the bulk sweep.
type RefundUpdate struct {
	Type      string `json:"type"` // "refund"
	Bidder    string `json:"bidder"`
	Payout    int64  `json:"payout"`
	Fee       int64  `json:"fee"`
	Timestamp int64  `json:"timestamp"`
}
