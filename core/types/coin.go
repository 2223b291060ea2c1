package types

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Coin is the shared fungible-asset unit used by accounts, libraries, and
// the clearing queue. Amounts are arbitrary-precision: a domain's native
// decimals are a display concern, not a wire concern.
type Coin struct {
	Denom  string
	Amount *big.Int
}

// NewCoin normalizes the denom and defends against a nil amount.
func NewCoin(denom string, amount *big.Int) Coin {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return Coin{Denom: strings.TrimSpace(denom), Amount: new(big.Int).Set(amount)}
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Amount == nil || c.Amount.Sign() == 0
}

// IsValid reports whether the coin has a non-empty denom and a
// non-negative amount.
func (c Coin) IsValid() bool {
	if strings.TrimSpace(c.Denom) == "" {
		return false
	}
	return c.Amount != nil && c.Amount.Sign() >= 0
}

// Add returns a new coin with amounts summed; panics on denom mismatch,
// mirroring the strictness of bank-module coin arithmetic.
func (c Coin) Add(other Coin) Coin {
	if c.Denom != other.Denom {
		panic(fmt.Sprintf("types: mismatched denoms %q and %q", c.Denom, other.Denom))
	}
	return NewCoin(c.Denom, new(big.Int).Add(c.Amount, other.Amount))
}

// Coins is a denom-sorted list of Coin, the canonical payout/balance shape
// passed between accounts, libraries, and the clearing queue.
type Coins []Coin

// Sorted returns a denom-sorted copy, the canonical ordering for
// deterministic hashing and comparison across domains.
func (cs Coins) Sorted() Coins {
	out := make(Coins, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}

// AmountOf returns the amount held for denom, or zero if absent.
func (cs Coins) AmountOf(denom string) *big.Int {
	for _, c := range cs {
		if c.Denom == denom {
			return new(big.Int).Set(c.Amount)
		}
	}
	return big.NewInt(0)
}

// DropZero filters out zero-amount coins, used by the clearing queue and
// splitter after computing per-destination shares.
func (cs Coins) DropZero() Coins {
	out := make(Coins, 0, len(cs))
	for _, c := range cs {
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

// Rational is a settlement-ratio/split-ratio numerator/denominator pair,
// used for settlement ratios and splitter destination shares.
type Rational struct {
	Numerator   uint64
	Denominator uint64
}

// Valid reports whether the ratio is usable (non-zero denominator, ratio
// not exceeding unity).
func (r Rational) Valid() bool {
	return r.Denominator != 0 && r.Numerator <= r.Denominator
}

// Apply splits amount according to the ratio, rounding down; the remainder
// is whatever the caller computes as amount minus the result.
func (r Rational) Apply(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() == 0 || !r.Valid() {
		return big.NewInt(0)
	}
	num := new(big.Int).Mul(amount, new(big.Int).SetUint64(r.Numerator))
	return num.Div(num, new(big.Int).SetUint64(r.Denominator))
}
