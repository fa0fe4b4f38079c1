package auction

import "errors"

// Precondition failures. Every operation validates before mutating, so a
// returned error means no state changed.
var (
	// ErrAuctionClosed is returned by PlaceBid and WithdrawOwn once the
	// auction has been finalized.
	ErrAuctionClosed = errors.New("auction closed")

	// ErrAuctionExpired is returned by PlaceBid when the deadline has
	// passed but the auction has not been finalized yet.
	ErrAuctionExpired = errors.New("auction deadline passed")

	// ErrInvalidBid is returned when a bid fails the acceptance rule
	// (non-positive, or below the minimum raise over the leading bid).
	ErrInvalidBid = errors.New("bid rejected")

	// ErrStillActive is returned by Finalize before the deadline.
	ErrStillActive = errors.New("auction still active")

	// ErrAlreadyFinalized is returned by a second Finalize.
	ErrAlreadyFinalized = errors.New("auction already finalized")

	// ErrNotEnded is returned by Winner and RefundAllNonWinners while the
	// auction is still open.
	ErrNotEnded = errors.New("auction not ended")

	// ErrNoDeposit is returned by WithdrawOwn for a zero balance.
	ErrNoDeposit = errors.New("no deposit to withdraw")

	// ErrLeadingBid is returned by WithdrawOwn when the caller is the
	// current leader and holds no surplus beyond the standing bid.
	ErrLeadingBid = errors.New("cannot withdraw leading bid")
)
