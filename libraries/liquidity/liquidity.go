// Package liquidity implements a thin liquidity-position-manager library:
// it validates that the configured denom pair still aligns with a pool's
// live composition and hands off to a PoolView collaborator for the actual
// deposit/withdraw call. The concrete DEX adapter behind PoolView (GAMM,
// concentrated liquidity, whatever the target domain runs) is out of
// scope; this library only enforces denom-pair alignment and surfaces the
// collaborator's error unchanged.
package liquidity

import (
	"fmt"
	"math/big"

	"valence/core/types"
	"valence/libraries"
)

// ErrDenomPairMismatch is returned when the pool's live composition no
// longer matches the configured denom pair.
var ErrDenomPairMismatch = fmt.Errorf("%w: pool denom pair no longer matches configuration", libraries.ErrConfigurationError)

// PoolView is the opaque collaborator a concrete domain binds to query a
// liquidity pool's composition and perform deposits/withdrawals. Decoding
// a domain-specific pool type (e.g. an Osmosis GAMM pool) into this shape
// is middleware's job, kept outside this library.
type PoolView interface {
	// DenomPair reports the pool's current two-asset composition.
	DenomPair() (denomA, denomB string, err error)
	// Deposit supplies amountA/amountB of liquidity from addr, returning
	// the LP share amount minted.
	Deposit(addr types.Address, amountA, amountB *big.Int) (shares *big.Int, err error)
	// Withdraw burns shares of addr's LP position, returning the
	// underlying amounts returned.
	Withdraw(addr types.Address, shares *big.Int) (amountA, amountB *big.Int, err error)
}

// Config is the liquidity library's immutable-shape config.
type Config struct {
	Account types.Address
	DenomA  string
	DenomB  string
}

func (Config) isConfigPatch() {}

// Patch is the partial-update record for Config.
type Patch struct {
	DenomA *string
	DenomB *string
}

func (Patch) isConfigPatch() {}

// Library is the liquidity position-manager library kind.
type Library struct {
	libraries.Frame
	config Config
	pool   PoolView
}

// New constructs a liquidity library.
func New(addr, owner, processor types.Address, rawConfig []byte, cfg Config, pool PoolView) (*Library, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Library{Frame: libraries.NewFrame(addr, owner, processor, rawConfig), config: cfg, pool: pool}, nil
}

func validate(cfg Config) error {
	if cfg.Account.IsZero() {
		return fmt.Errorf("%w: account is required", libraries.ErrConfigurationError)
	}
	if cfg.DenomA == "" || cfg.DenomB == "" || cfg.DenomA == cfg.DenomB {
		return fmt.Errorf("%w: denom pair must name two distinct denoms", libraries.ErrConfigurationError)
	}
	return nil
}

// Config returns the current validated config.
func (l *Library) Config() Config {
	return l.config
}

func (l *Library) checkDenomPair() error {
	poolA, poolB, err := l.pool.DenomPair()
	if err != nil {
		return err
	}
	if (poolA == l.config.DenomA && poolB == l.config.DenomB) || (poolA == l.config.DenomB && poolB == l.config.DenomA) {
		return nil
	}
	return ErrDenomPairMismatch
}

// ProcessFunction implements libraries.Library, exposing "deposit" and
// "withdraw".
func (l *Library) ProcessFunction(sender types.Address, fn libraries.FunctionCall) error {
	if err := l.RequireProcessor(sender); err != nil {
		return err
	}
	switch fn.Name {
	case "deposit":
		return l.deposit(fn.Args)
	case "withdraw":
		return l.withdraw(fn.Args)
	default:
		return fmt.Errorf("liquidity: unknown function %q", fn.Name)
	}
}

func (l *Library) deposit(args map[string]any) error {
	if err := l.checkDenomPair(); err != nil {
		return err
	}
	amountA, err := bigArg(args, "amount_a")
	if err != nil {
		return err
	}
	amountB, err := bigArg(args, "amount_b")
	if err != nil {
		return err
	}
	_, err = l.pool.Deposit(l.config.Account, amountA, amountB)
	return err
}

func (l *Library) withdraw(args map[string]any) error {
	if err := l.checkDenomPair(); err != nil {
		return err
	}
	shares, err := bigArg(args, "shares")
	if err != nil {
		return err
	}
	_, _, err = l.pool.Withdraw(l.config.Account, shares)
	return err
}

func bigArg(args map[string]any, key string) (*big.Int, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("liquidity: missing argument %q", key)
	}
	switch v := raw.(type) {
	case *big.Int:
		return v, nil
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("liquidity: argument %q is not a valid integer", key)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("liquidity: argument %q has unsupported type %T", key, raw)
	}
}

// UpdateConfig implements libraries.Library.
func (l *Library) UpdateConfig(sender types.Address, patch libraries.ConfigPatch) error {
	if err := l.RequireOwner(sender); err != nil {
		return err
	}
	p, ok := patch.(Patch)
	if !ok {
		return fmt.Errorf("%w: unexpected patch type", libraries.ErrConfigurationError)
	}
	next := l.config
	if p.DenomA != nil {
		next.DenomA = *p.DenomA
	}
	if p.DenomB != nil {
		next.DenomB = *p.DenomB
	}
	if err := validate(next); err != nil {
		return err
	}
	l.config = next
	return nil
}
