package ledger

import (
	"github.com/feral-file/nft-registry/internal/domain"
)

// addTx appends one event to the transaction log and returns the new
// 1-based sequence number. Exactly one entry is appended per successful
// mutating operation.
func (l *Ledger) addTx(caller domain.Principal, operation string, details []domain.Property) uint64 {
	l.txRecords = append(l.txRecords, domain.TxEvent{
		Time:      l.clock.Now(),
		Caller:    caller,
		Operation: operation,
		Details:   details,
	})
	return uint64(len(l.txRecords))
}

// Transaction returns the event with the given 1-based sequence number.
func (l *Ledger) Transaction(seq uint64) (domain.TxEvent, error) {
	if seq == 0 || seq > uint64(len(l.txRecords)) {
		return domain.TxEvent{}, domain.ErrTxNotFound
	}
	return l.txRecords[seq-1], nil
}

// TotalTransactions returns the current length of the transaction log.
func (l *Ledger) TotalTransactions() uint64 {
	return uint64(len(l.txRecords))
}
