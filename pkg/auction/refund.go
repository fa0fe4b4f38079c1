package auction

import "github.com/ethereum/go-ethereum/common"

// Transferor sends value out of the engine's control. The engine's contract
// is "balance zeroed, transfer attempted": a nil error means the transfer
// was handed off, not that the recipient received it.
type Transferor interface {
	Transfer(to common.Address, amount int64) error
}

// RefundEngine computes fee-adjusted payouts. Every refund pays out
// floor(balance * (10000 - FeeBps) / 10000); the truncated remainder is
// forfeited to the fee, never carried forward.
type RefundEngine struct {
	FeeBps int64
	Bank   Transferor
}

// Payout returns the net amount for a given balance.
func (r *RefundEngine) Payout(balance int64) int64 {
	return balance * (bpsDenom - r.FeeBps) / bpsDenom
}

// Fee returns the retained portion for a given balance.
func (r *RefundEngine) Fee(balance int64) int64 {
	return balance - r.Payout(balance)
}

// RefundReceipt records one successful payout from the bulk sweep.
type RefundReceipt struct {
	Bidder common.Address `json:"bidder"`
	Payout int64          `json:"payout"`
	Fee    int64          `json:"fee"`
}

// FailedRefund records a recipient whose transfer failed. Their balance is
// restored so a later sweep can retry them.
type FailedRefund struct {
	Bidder  common.Address `json:"bidder"`
	Balance int64          `json:"balance"`
	Err     error          `json:"-"`
}

// SettlementReport is the collective outcome of a bulk refund sweep. One
// bad recipient never blocks the rest.
type SettlementReport struct {
	Refunded []RefundReceipt `json:"refunded"`
	Failed   []FailedRefund  `json:"failed"`
}

// TotalPaid sums the payouts in the report.
func (r *SettlementReport) TotalPaid() int64 {
	var total int64
	for _, rc := range r.Refunded {
		total += rc.Payout
	}
	return total
}

// TotalFees sums the retained fees in the report.
func (r *SettlementReport) TotalFees() int64 {
	var total int64
	for _, rc := range r.Refunded {
		total += rc.Fee
	}
	return total
}
