package crowdfund

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Payout receives funds released by a completed request. It is called while
// the campaign lock is held, so implementations must not call back into the
// same campaign.
type Payout interface {
	Credit(to common.Address, amount *big.Int) error
}

// Ledger tracks wei balances of plain accounts. It is safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	order    []common.Address
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]*big.Int),
	}
}

// BalanceOf returns a copy of the balance of addr (zero for unknown accounts).
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Accounts returns every account the ledger has seen, in first-seen order.
func (l *Ledger) Accounts() []common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]common.Address, len(l.order))
	copy(out, l.order)
	return out
}

// Credit adds amount to the balance of to.
func (l *Ledger) Credit(to common.Address, amount *big.Int) error {
	amount = amountOrZero(amount)
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.credit(to, amount)
}

// Debit subtracts amount from the balance of from.
func (l *Ledger) Debit(from common.Address, amount *big.Int) error {
	amount = amountOrZero(amount)
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debit(from, amount)
}

// Transfer moves amount from one account to another atomically.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	amount = amountOrZero(amount)
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, amount); err != nil {
		return err
	}
	if err := l.credit(to, amount); err != nil {
		// Restore the debit; credit only fails on overflow.
		l.balances[from].Add(l.balances[from], amount)
		return err
	}
	return nil
}

func (l *Ledger) credit(to common.Address, amount *big.Int) error {
	bal := l.account(to)
	sum := new(big.Int).Add(bal, amount)
	if sum.Cmp(math.MaxBig256) > 0 {
		return ErrInvalidAmount
	}
	bal.Set(sum)
	return nil
}

func (l *Ledger) debit(from common.Address, amount *big.Int) error {
	bal, ok := l.balances[from]
	if !ok {
		if amount.Sign() == 0 {
			return nil
		}
		return ErrInsufficientBalance
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}

func (l *Ledger) account(addr common.Address) *big.Int {
	bal, ok := l.balances[addr]
	if !ok {
		bal = new(big.Int)
		l.balances[addr] = bal
		l.order = append(l.order, addr)
	}
	return bal
}

// validAmount reports whether v is a non-negative value that fits in uint256.
func validAmount(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(math.MaxBig256) <= 0
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
