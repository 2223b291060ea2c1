// Package lending implements a thin lending-position-manager library: it
// validates that the configured collateral/borrow denom pair still aligns
// with a lending market's live configuration and hands off to a
// PoolView collaborator for the actual supply/borrow/repay/withdraw call.
// The concrete lending-protocol adapter behind PoolView is out of scope;
// this library only enforces denom-pair alignment and surfaces the
// collaborator's error unchanged.
package lending

import (
	"fmt"
	"math/big"

	"valence/core/types"
	"valence/libraries"
)

// ErrDenomPairMismatch is returned when the market's live denom
// configuration no longer matches this library's configured pair.
var ErrDenomPairMismatch = fmt.Errorf("%w: market denom pair no longer matches configuration", libraries.ErrConfigurationError)

// PoolView is the opaque collaborator a concrete domain binds to query a
// lending market's configuration and perform supply/borrow actions.
type PoolView interface {
	// DenomPair reports the market's current collateral and borrow denoms.
	DenomPair() (collateralDenom, borrowDenom string, err error)
	// Supply deposits amount of collateralDenom from addr.
	Supply(addr types.Address, amount *big.Int) error
	// Borrow draws amount of borrowDenom against addr's supplied
	// collateral.
	Borrow(addr types.Address, amount *big.Int) error
	// Repay returns amount of borrowDenom against addr's outstanding debt.
	Repay(addr types.Address, amount *big.Int) error
	// Withdraw returns amount of collateralDenom to addr.
	Withdraw(addr types.Address, amount *big.Int) error
}

// Config is the lending library's immutable-shape config.
type Config struct {
	Account         types.Address
	CollateralDenom string
	BorrowDenom     string
}

func (Config) isConfigPatch() {}

// Patch is the partial-update record for Config.
type Patch struct {
	CollateralDenom *string
	BorrowDenom     *string
}

func (Patch) isConfigPatch() {}

// Library is the lending position-manager library kind.
type Library struct {
	libraries.Frame
	config Config
	pool   PoolView
}

// New constructs a lending library.
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
	if cfg.CollateralDenom == "" || cfg.BorrowDenom == "" || cfg.CollateralDenom == cfg.BorrowDenom {
		return fmt.Errorf("%w: collateral and borrow denoms must be distinct and non-empty", libraries.ErrConfigurationError)
	}
	return nil
}

// Config returns the current validated config.
func (l *Library) Config() Config {
	return l.config
}

func (l *Library) checkDenomPair() error {
	collateral, borrow, err := l.pool.DenomPair()
	if err != nil {
		return err
	}
	if collateral != l.config.CollateralDenom || borrow != l.config.BorrowDenom {
		return ErrDenomPairMismatch
	}
	return nil
}

// ProcessFunction implements libraries.Library, exposing "supply",
// "borrow", "repay", and "withdraw".
func (l *Library) ProcessFunction(sender types.Address, fn libraries.FunctionCall) error {
	if err := l.RequireProcessor(sender); err != nil {
		return err
	}
	if err := l.checkDenomPair(); err != nil {
		return err
	}
	amount, err := bigArg(fn.Args, "amount")
	if err != nil {
		return err
	}
	switch fn.Name {
	case "supply":
		return l.pool.Supply(l.config.Account, amount)
	case "borrow":
		return l.pool.Borrow(l.config.Account, amount)
	case "repay":
		return l.pool.Repay(l.config.Account, amount)
	case "withdraw":
		return l.pool.Withdraw(l.config.Account, amount)
	default:
		return fmt.Errorf("lending: unknown function %q", fn.Name)
	}
}

func bigArg(args map[string]any, key string) (*big.Int, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("lending: missing argument %q", key)
	}
	switch v := raw.(type) {
	case *big.Int:
		return v, nil
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("lending: argument %q is not a valid integer", key)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("lending: argument %q has unsupported type %T", key, raw)
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
	if p.CollateralDenom != nil {
		next.CollateralDenom = *p.CollateralDenom
	}
	if p.BorrowDenom != nil {
		next.BorrowDenom = *p.BorrowDenom
	}
	if err := validate(next); err != nil {
		return err
	}
	l.config = next
	return nil
}
