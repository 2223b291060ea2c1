// Package splitter implements the single-input, many-output mover library:
// each configured split receives either a fixed amount or a ratio of the
// input account's balance.
package splitter

import (
	"fmt"
	"math/big"

	"valence/accounts"
	"valence/core/types"
	"valence/libraries"
)

// AmountKind discriminates a split's amount semantics: Fixed(n) or
// Ratio(r).
type AmountKind uint8

const (
	AmountFixed AmountKind = iota
	AmountRatio
)

// SplitAmount pairs an AmountKind with its value; exactly one of Fixed or
// Ratio is meaningful depending on Kind.
type SplitAmount struct {
	Kind  AmountKind
	Fixed *big.Int
	Ratio types.Rational
}

// Split is one configured destination of a split operation.
type Split struct {
	Denom   string
	Account types.Address
	Amount  SplitAmount
}

// Config is the splitter's immutable-shape library config.
type Config struct {
	Input  types.Address
	Splits []Split
}

func (Config) isConfigPatch() {}

// Patch is the partial-update record for Config.
type Patch struct {
	Input  *types.Address
	Splits []Split
}

func (Patch) isConfigPatch() {}

// Library is the splitter library kind.
type Library struct {
	libraries.Frame
	config Config
	bank   accounts.BankKeeper
}

// New constructs a splitter library.
func New(addr, owner, processor types.Address, rawConfig []byte, cfg Config, bank accounts.BankKeeper) (*Library, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Library{Frame: libraries.NewFrame(addr, owner, processor, rawConfig), config: cfg, bank: bank}, nil
}

func validate(cfg Config) error {
	if cfg.Input.IsZero() {
		return fmt.Errorf("%w: input account is required", libraries.ErrConfigurationError)
	}
	if len(cfg.Splits) == 0 {
		return fmt.Errorf("%w: at least one split is required", libraries.ErrConfigurationError)
	}
	for _, s := range cfg.Splits {
		if s.Denom == "" || s.Account.IsZero() {
			return fmt.Errorf("%w: split missing denom or account", libraries.ErrConfigurationError)
		}
		switch s.Amount.Kind {
		case AmountFixed:
			if s.Amount.Fixed == nil || s.Amount.Fixed.Sign() <= 0 {
				return fmt.Errorf("%w: fixed split amount must be positive", libraries.ErrConfigurationError)
			}
		case AmountRatio:
			if !s.Amount.Ratio.Valid() {
				return fmt.Errorf("%w: invalid split ratio", libraries.ErrConfigurationError)
			}
		default:
			return fmt.Errorf("%w: unknown split amount kind", libraries.ErrConfigurationError)
		}
	}
	return nil
}

// Config returns the current validated config.
func (l *Library) Config() Config {
	return l.config
}

// ProcessFunction implements libraries.Library. The only function exposed
// is "split".
func (l *Library) ProcessFunction(sender types.Address, fn libraries.FunctionCall) error {
	if err := l.RequireProcessor(sender); err != nil {
		return err
	}
	if fn.Name != "split" {
		return fmt.Errorf("splitter: unknown function %q", fn.Name)
	}
	return l.split()
}

func (l *Library) split() error {
	// Ratio splits are computed against the balance observed before any
	// split in this call has moved funds, so ratios never compound against
	// each other within a single execution.
	snapshot := make(map[string]*big.Int, len(l.config.Splits))
	for _, s := range l.config.Splits {
		if _, ok := snapshot[s.Denom]; !ok {
			snapshot[s.Denom] = l.bank.Balance(l.config.Input, s.Denom)
		}
	}
	for _, s := range l.config.Splits {
		var amount *big.Int
		switch s.Amount.Kind {
		case AmountFixed:
			amount = new(big.Int).Set(s.Amount.Fixed)
		case AmountRatio:
			amount = s.Amount.Ratio.Apply(snapshot[s.Denom])
		}
		if amount.Sign() <= 0 {
			continue
		}
		if err := l.bank.Send(l.config.Input, s.Account, types.Coins{types.NewCoin(s.Denom, amount)}); err != nil {
			return err
		}
	}
	return nil
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
	if p.Input != nil {
		next.Input = *p.Input
	}
	if p.Splits != nil {
		next.Splits = p.Splits
	}
	if err := validate(next); err != nil {
		return err
	}
	l.config = next
	return nil
}
