package memory

import (
	"errors"
	"sync"

	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var errTxDone = errors.New("memory transaction already finished")

// Tx is the in-memory transaction handle shared by the memory
// repository, ledger, and idempotency store. Mutations apply
// immediately and register compensating actions that run, in reverse
// order, when the transaction rolls back.
type Tx struct {
	mu   sync.Mutex
	done bool
	undo []func()
}

func (t *Tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errTxDone
	}
	t.done = true
	t.undo = nil
	return nil
}

func (t *Tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

func (t *Tx) onRollback(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = append(t.undo, fn)
}

func asTx(tx ports.Tx) (*Tx, error) {
	memTx, ok := tx.(*Tx)
	if !ok || memTx == nil {
		return nil, errors.New("memory adapter requires a memory transaction")
	}
	return memTx, nil
}
