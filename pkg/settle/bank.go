// Package settle is the value-transfer boundary of the engine: it hands
// funds to the outside world and keeps a digested receipt for every
// attempt. The engine's contract stops at "transfer attempted" — delivery
// is the recipient's problem.
package settle

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// Receipt records one outbound transfer attempt. ID is a keccak digest over
// (recipient, amount, timestamp, sequence), stable across restarts.
type Receipt struct {
	ID     string         `json:"id"`
	To     common.Address `json:"to"`
	Amount int64          `json:"amount"`
	At     int64          `json:"at"` // unix milliseconds
	Seq    uint64         `json:"seq"`
}

// ReceiptWriter persists receipts. Implemented by storage.Store.
type ReceiptWriter interface {
	SaveReceipt(r Receipt) error
}

// Bank is an in-process Transferor: it debits nothing real but keeps an
// authoritative record of everything paid out, journaling receipts when a
// writer is attached. Swap it for a chain or payment-rail client in
// production wiring; the engine only sees the Transfer method.
type Bank struct {
	mu      sync.Mutex
	seq     uint64
	paid    map[common.Address]int64
	journal ReceiptWriter
	log     *zap.SugaredLogger
}

func NewBank(journal ReceiptWriter, log *zap.SugaredLogger) *Bank {
	return &Bank{
		paid:    make(map[common.Address]int64),
		journal: journal,
		log:     log,
	}
}

// Transfer sends amount to the recipient. A zero amount is a legitimate
// payout (fee truncation can swallow a whole 1-unit balance) and succeeds
// without touching the rails.
func (b *Bank) Transfer(to common.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative transfer amount: %d", amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	now := time.Now().UnixMilli()
	r := Receipt{
		ID:     receiptID(to, amount, now, b.seq),
		To:     to,
		Amount: amount,
		At:     now,
		Seq:    b.seq,
	}
	b.paid[to] += amount

	if b.journal != nil {
		if err := b.journal.SaveReceipt(r); err != nil && b.log != nil {
			// The transfer stands; a lost receipt is an audit gap, not
			// a failed payout.
			b.log.Warnw("receipt_journal_failed", "id", r.ID, "err", err)
		}
	}
	if b.log != nil {
		b.log.Infow("transfer",
			"to", to.Hex(),
			"amount", amount,
			"receipt", r.ID)
	}
	return nil
}

// Paid returns the cumulative amount transferred to a recipient.
func (b *Bank) Paid(to common.Address) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paid[to]
}

// TotalPaid returns the cumulative amount transferred to everyone.
func (b *Bank) TotalPaid() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total int64
	for _, v := range b.paid {
		total += v
	}
	return total
}

func receiptID(to common.Address, amount, at int64, seq uint64) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(to.Bytes())

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(amount))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(at))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], seq)
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}
