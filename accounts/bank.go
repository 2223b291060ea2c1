package accounts

import (
	"fmt"
	"math/big"
	"sync"

	"valence/core/types"
)

// BankKeeper abstracts the domain-native fungible-asset module an asset
// account's balance view is backed by. Concrete chains bind this to their
// own bank module; MemBank below is the in-process stand-in used by tests
// and the demo wiring in cmd/valenced.
type BankKeeper interface {
	Send(from, to types.Address, coins types.Coins) error
	Balance(addr types.Address, denom string) *big.Int
	Mint(to types.Address, coins types.Coins) error
	// Burn debits coins from addr without crediting any destination, used by
	// libraries (remotetransfer) that hand a coin off to an opaque bridge
	// channel rather than to another domain-local account.
	Burn(addr types.Address, coins types.Coins) error
}

// Msg is an opaque domain-native sub-message an account is asked to emit on
// behalf of its owner or an approved library. The account never inspects a
// Msg's fields; it only invokes ApplyTo once the sender check passes.
type Msg interface {
	ApplyTo(bank BankKeeper, sender types.Address) error
}

// SendMsg is the one concrete Msg this core ships: a native-asset transfer
// from the account to a recipient, exercised by the approved-library transfer test. Domain integrations are
// free to define additional Msg kinds (DEX swaps, lending deposits, ...);
// the account dispatches all of them identically.
type SendMsg struct {
	To    types.Address
	Coins types.Coins
}

// ApplyTo implements Msg.
func (m SendMsg) ApplyTo(bank BankKeeper, sender types.Address) error {
	if bank == nil {
		return fmt.Errorf("accounts: no bank keeper configured")
	}
	return bank.Send(sender, m.To, m.Coins)
}

// MemBank is an in-memory BankKeeper, the domain-native bank stand-in used
// when no concrete chain's bank module is wired in (tests, cmd/valenced
// demo wiring).
type MemBank struct {
	mu       sync.Mutex
	balances map[string]map[string]*big.Int
}

// NewMemBank constructs an empty in-memory bank.
func NewMemBank() *MemBank {
	return &MemBank{balances: make(map[string]map[string]*big.Int)}
}

// Mint credits coins to addr without debiting any source, used to seed test
// fixtures and the settlement account in cmd/valenced.
func (b *MemBank) Mint(addr types.Address, coins types.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range coins {
		if !c.IsValid() {
			return fmt.Errorf("accounts: invalid coin %+v", c)
		}
		b.credit(addr, c)
	}
	return nil
}

// Send debits from and credits to atomically; insufficient balance is
// surfaced unchanged to the caller.
func (b *MemBank) Send(from, to types.Address, coins types.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range coins {
		if !c.IsValid() {
			return fmt.Errorf("accounts: invalid coin %+v", c)
		}
		have := b.balanceLocked(from, c.Denom)
		if have.Cmp(c.Amount) < 0 {
			return fmt.Errorf("accounts: insufficient balance of %s: have %s, need %s", c.Denom, have, c.Amount)
		}
	}
	for _, c := range coins {
		b.debit(from, c)
		b.credit(to, c)
	}
	return nil
}

// Burn debits coins from addr with no corresponding credit; insufficient
// balance is surfaced unchanged to the caller.
func (b *MemBank) Burn(addr types.Address, coins types.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range coins {
		if !c.IsValid() {
			return fmt.Errorf("accounts: invalid coin %+v", c)
		}
		have := b.balanceLocked(addr, c.Denom)
		if have.Cmp(c.Amount) < 0 {
			return fmt.Errorf("accounts: insufficient balance of %s: have %s, need %s", c.Denom, have, c.Amount)
		}
	}
	for _, c := range coins {
		b.debit(addr, c)
	}
	return nil
}

// Balance returns the current balance of denom held by addr.
func (b *MemBank) Balance(addr types.Address, denom string) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balanceLocked(addr, denom))
}

func (b *MemBank) balanceLocked(addr types.Address, denom string) *big.Int {
	acct, ok := b.balances[addr.String()]
	if !ok {
		return big.NewInt(0)
	}
	amt, ok := acct[denom]
	if !ok {
		return big.NewInt(0)
	}
	return amt
}

func (b *MemBank) debit(addr types.Address, c types.Coin) {
	acct := b.balances[addr.String()]
	cur := acct[c.Denom]
	if cur == nil {
		cur = big.NewInt(0)
	}
	acct[c.Denom] = new(big.Int).Sub(cur, c.Amount)
}

func (b *MemBank) credit(addr types.Address, c types.Coin) {
	acct, ok := b.balances[addr.String()]
	if !ok {
		acct = make(map[string]*big.Int)
		b.balances[addr.String()] = acct
	}
	cur := acct[c.Denom]
	if cur == nil {
		cur = big.NewInt(0)
	}
	acct[c.Denom] = new(big.Int).Add(cur, c.Amount)
}
