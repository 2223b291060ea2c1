// Package forwarder implements the periodic, cap-limited mover library: it
// forwards up to a per-denom cap from an input account to an output
// account, gated by an optional height or time interval constraint.
package forwarder

import (
	"errors"
	"fmt"
	"math/big"

	"valence/accounts"
	"valence/core/types"
	"valence/libraries"
)

// ErrConstraintNotMet is returned when Forward is invoked before the
// configured interval has elapsed since the last successful forward.
var ErrConstraintNotMet = errors.New("forwarder: interval constraint not met")

// ConstraintKind discriminates the forwarder's interval constraint:
// Height(n), Time(n), or None.
type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintHeight
	ConstraintTime
)

// Constraint pairs a ConstraintKind with its delta, expressed in blocks for
// Height and seconds for Time.
type Constraint struct {
	Kind  ConstraintKind
	Delta uint64
}

// ForwardingConfig declares the per-denom cap a single Forward call may
// move.
type ForwardingConfig struct {
	Denom     string
	MaxAmount *big.Int
}

// Config is the forwarder's immutable-shape library config.
type Config struct {
	Input       types.Address
	Output      types.Address
	Forwardings []ForwardingConfig
	Constraint  Constraint
}

func (Config) isConfigPatch() {}

// Patch is the partial-update record for Config.
type Patch struct {
	Input       *types.Address
	Output      *types.Address
	Forwardings []ForwardingConfig
	Constraint  *Constraint
}

func (Patch) isConfigPatch() {}

// Library is the forwarder library kind.
type Library struct {
	libraries.Frame
	config Config
	bank   accounts.BankKeeper

	lastHeight uint64
	lastTime   int64
	everRan    bool
}

// New constructs a forwarder library. bank is the domain-native bank
// keeper backing the input/output accounts' balances.
func New(addr, owner, processor types.Address, rawConfig []byte, cfg Config, bank accounts.BankKeeper) (*Library, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Library{
		Frame:  libraries.NewFrame(addr, owner, processor, rawConfig),
		config: cfg,
		bank:   bank,
	}, nil
}

func validate(cfg Config) error {
	if cfg.Input.IsZero() || cfg.Output.IsZero() {
		return fmt.Errorf("%w: input and output accounts are required", libraries.ErrConfigurationError)
	}
	seen := make(map[string]struct{}, len(cfg.Forwardings))
	for _, fc := range cfg.Forwardings {
		if fc.Denom == "" || fc.MaxAmount == nil || fc.MaxAmount.Sign() <= 0 {
			return fmt.Errorf("%w: invalid forwarding config for denom %q", libraries.ErrConfigurationError, fc.Denom)
		}
		if _, dup := seen[fc.Denom]; dup {
			return fmt.Errorf("%w: duplicate forwarding config for denom %q", libraries.ErrConfigurationError, fc.Denom)
		}
		seen[fc.Denom] = struct{}{}
	}
	return nil
}

// Config returns the current validated config.
func (l *Library) Config() Config {
	return l.config
}

// constraintSatisfied reports whether enough height/time has elapsed since
// the last successful Forward call.
func (l *Library) constraintSatisfied(ctx libraries.ExecContext) bool {
	if !l.everRan {
		return true
	}
	switch l.config.Constraint.Kind {
	case ConstraintHeight:
		return ctx.Height >= l.lastHeight+l.config.Constraint.Delta
	case ConstraintTime:
		return uint64(ctx.Time.Unix()) >= uint64(l.lastTime)+l.config.Constraint.Delta
	default:
		return true
	}
}

// ProcessFunction implements libraries.Library. The only function this
// library exposes is "forward".
func (l *Library) ProcessFunction(sender types.Address, fn libraries.FunctionCall) error {
	if err := l.RequireProcessor(sender); err != nil {
		return err
	}
	if fn.Name != "forward" {
		return fmt.Errorf("forwarder: unknown function %q", fn.Name)
	}
	return l.forward(fn.Ctx)
}

func (l *Library) forward(ctx libraries.ExecContext) error {
	if !l.constraintSatisfied(ctx) {
		return ErrConstraintNotMet
	}
	for _, fc := range l.config.Forwardings {
		available := l.bank.Balance(l.config.Input, fc.Denom)
		amount := new(big.Int).Set(fc.MaxAmount)
		if available.Cmp(amount) < 0 {
			amount = available
		}
		if amount.Sign() <= 0 {
			continue
		}
		if err := l.bank.Send(l.config.Input, l.config.Output, types.Coins{types.NewCoin(fc.Denom, amount)}); err != nil {
			return err
		}
	}
	l.everRan = true
	l.lastHeight = ctx.Height
	l.lastTime = ctx.Time.Unix()
	return nil
}

// UpdateConfig implements libraries.Library: owner only, and a rejected
// update leaves the prior config unchanged.
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
	if p.Output != nil {
		next.Output = *p.Output
	}
	if p.Forwardings != nil {
		next.Forwardings = p.Forwardings
	}
	if p.Constraint != nil {
		next.Constraint = *p.Constraint
	}
	if err := validate(next); err != nil {
		return err
	}
	l.config = next
	return nil
}
