package token

import (
	"errors"
	"fmt"
)

var ErrInsufficientFunds = errors.New("insufficient tokens")

// Token defines how many units are required per pull.
type Token struct {
	Name       string // e.g. "coin"
	PerDraw    int    // tokens per single draw, e.g. 100
	PerTenDraw int    // optional; if 0 -> equal to 10 * PerDraw
}

// TokensForDraws returns how many tokens are required for n draws.
// Full tens are billed at PerTenDraw when it is set.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 && n >= 10 {
		tens := n / 10
		rem := n % 10
		return tens*t.PerTenDraw + rem*t.PerDraw
	}
	return n * t.PerDraw
}

// Wallet holds a player's token balance. It is owned by one session.
type Wallet struct {
	balance int
}

func NewWallet(balance int) *Wallet {
	if balance < 0 {
		balance = 0
	}
	return &Wallet{balance: balance}
}

func (w *Wallet) Balance() int { return w.balance }

// Add credits amount; non-positive amounts are ignored.
func (w *Wallet) Add(amount int) {
	if amount > 0 {
		w.balance += amount
	}
}

// Spend debits amount or fails without touching the balance.
func (w *Wallet) Spend(amount int) error {
	if amount < 0 {
		return fmt.Errorf("spend %d: negative amount", amount)
	}
	if amount > w.balance {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, amount, w.balance)
	}
	w.balance -= amount
	return nil
}
