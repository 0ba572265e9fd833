package economy

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInsufficientFunds = errors.New("not enough gold")
	ErrMaxLevel          = errors.New("gold multiplier already at max level")
	ErrInvalidAmount     = errors.New("amount must be > 0")
)

// RejectError carries a wire code alongside one of the sentinel errors.
type RejectError struct {
	Code string
	Err  error
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Err)
}

func (e *RejectError) Unwrap() error { return e.Err }

func reject(code string, err error) error {
	return &RejectError{Code: code, Err: err}
}

// Code returns the wire code of a rejection, or "INTERNAL" for anything else.
func Code(err error) string {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Code
	}
	return "INTERNAL"
}

// Step is one rung of the gold multiplier ladder.
type Step struct {
	Cost       int
	Multiplier float64
}

// Ladder lists the upgrades in the order they must be bought.
var Ladder = []Step{
	{200, 1.2},
	{250, 1.4},
	{300, 1.6},
	{350, 1.8},
	{400, 2.0},
}

// AccrualBase is the gold granted per accrual before the multiplier.
const AccrualBase = 10

// Wallet is the player's in-match gold balance and upgrade state.
type Wallet struct {
	gold       int
	level      int
	multiplier float64
}

func NewWallet(gold int) *Wallet {
	return &Wallet{gold: gold, multiplier: 1.0}
}

func (w *Wallet) Gold() int            { return w.gold }
func (w *Wallet) Level() int           { return w.level }
func (w *Wallet) MaxLevel() int        { return len(Ladder) }
func (w *Wallet) Multiplier() float64  { return w.multiplier }
func (w *Wallet) CanAfford(n int) bool { return w.gold >= n }

// Spend debits n gold or rejects without changing the balance.
func (w *Wallet) Spend(n int) error {
	if n <= 0 {
		return reject("INVALID_AMOUNT", ErrInvalidAmount)
	}
	if w.gold < n {
		return reject("INSUFFICIENT_FUNDS", ErrInsufficientFunds)
	}
	w.gold -= n
	return nil
}

// Accrue grants floor(10 * multiplier) gold and returns the amount.
func (w *Wallet) Accrue() int {
	n := int(math.Floor(AccrualBase * w.multiplier))
	w.gold += n
	return n
}

// NextUpgrade returns the next rung, if any.
func (w *Wallet) NextUpgrade() (Step, bool) {
	if w.level >= len(Ladder) {
		return Step{}, false
	}
	return Ladder[w.level], true
}

// Upgrade buys the next multiplier rung.
func (w *Wallet) Upgrade() error {
	step, ok := w.NextUpgrade()
	if !ok {
		return reject("MAX_LEVEL", ErrMaxLevel)
	}
	if w.gold < step.Cost {
		return reject("INSUFFICIENT_FUNDS", ErrInsufficientFunds)
	}
	w.gold -= step.Cost
	w.multiplier = step.Multiplier
	w.level++
	return nil
}
