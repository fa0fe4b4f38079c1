package auction

// bpsDenom is the basis-point denominator used for all fee and raise math.
const bpsDenom = 10000

// Accepts reports whether an incoming single payment clears the acceptance
// rule: strictly positive, and at least the leading amount plus the minimum
// raise. The threshold uses truncating integer division, so for the default
// 500 bps it is exactly floor(current * 105 / 100).
//
// The check applies to the incoming payment alone, never the bidder's
// cumulative balance: a returning bidder's new payment must clear the bar
// by itself.
func Accepts(current, incoming, minRaiseBps int64) bool {
	if incoming <= 0 {
		return false
	}
	return incoming >= MinNextBid(current, minRaiseBps)
}

// MinNextBid returns the smallest payment that would currently be accepted.
// With no prior bids it is 1: any positive value qualifies.
func MinNextBid(current, minRaiseBps int64) int64 {
	if current == 0 {
		return 1
	}
	return current * (bpsDenom + minRaiseBps) / bpsDenom
}
