package auction

import "github.com/ethereum/go-ethereum/common"

// Entry is one (bidder, balance) row of the deposit book, in registry order.
type Entry struct {
	Bidder  common.Address `json:"bidder"`
	Balance int64          `json:"balance"`
}

// Ledger tracks cumulative deposits per participant together with an
// insertion-ordered, duplicate-free registry of everyone who has ever bid.
// Registry membership, not balance, is the "seen before" signal: a bidder
// who withdraws mid-auction and bids again keeps their single registry slot.
//
// Not safe for concurrent use on its own; the engine serializes access.
type Ledger struct {
	balances map[common.Address]int64
	registry []common.Address
	member   map[common.Address]bool
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]int64),
		member:   make(map[common.Address]bool),
	}
}

// Credit adds amount to the bidder's balance, registering them on first
// contact.
func (l *Ledger) Credit(bidder common.Address, amount int64) {
	if !l.member[bidder] {
		l.member[bidder] = true
		l.registry = append(l.registry, bidder)
	}
	l.balances[bidder] += amount
}

// Balance returns the bidder's current deposit, zero if unknown.
func (l *Ledger) Balance(bidder common.Address) int64 {
	return l.balances[bidder]
}

// Clear zeroes the bidder's balance and returns what was held. The caller
// must clear before initiating any external transfer.
func (l *Ledger) Clear(bidder common.Address) int64 {
	b := l.balances[bidder]
	l.balances[bidder] = 0
	return b
}

// Restore reinstates a balance after a provably failed transfer. The
// registry is untouched: the bidder was already a member.
func (l *Ledger) Restore(bidder common.Address, amount int64) {
	l.balances[bidder] = amount
}

// Bidders returns a copy of the registry in insertion order.
func (l *Ledger) Bidders() []common.Address {
	out := make([]common.Address, len(l.registry))
	copy(out, l.registry)
	return out
}

// Entries returns (bidder, balance) rows in registry order, including
// already-refunded zero balances.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.registry))
	for _, b := range l.registry {
		out = append(out, Entry{Bidder: b, Balance: l.balances[b]})
	}
	return out
}

// TotalHeld sums all outstanding balances.
func (l *Ledger) TotalHeld() int64 {
	var total int64
	for _, b := range l.registry {
		total += l.balances[b]
	}
	return total
}

// Len returns the number of registered bidders.
func (l *Ledger) Len() int {
	return len(l.registry)
}
