// Package clearingqueue implements the FIFO Clearing Queue, the canonical
// asset core that settles externally-authorized withdrawal obligations.
// Registration order, id order, and settlement order all coincide; the
// monotonic-id check is the sole source of that ordering and is evaluated
// before any other side effect.
package clearingqueue

import (
	"errors"
	"fmt"
	"math/big"

	"valence/accounts"
	"valence/core/events"
	"valence/core/types"
	"valence/libraries"
)

// ErrOutOfOrderRegistration is the one fatal registration error: every
// other per-obligation failure is swallowed and recorded as an Error
// status instead.
var ErrOutOfOrderRegistration = errors.New("clearingqueue: out-of-order registration")

// ErrNoPendingObligations is returned when SettleNextObligation is called
// against an empty queue.
var ErrNoPendingObligations = errors.New("clearingqueue: no pending obligations")

// ErrInsufficientSettlementBalance marks a transient settlement failure;
// the balance is checked before the head is removed, so the head
// obligation stays in place rather than being dropped.
var ErrInsufficientSettlementBalance = errors.New("clearingqueue: insufficient settlement balance")

// ErrSupplementarySourceMisconfigured is fatal: a supplementary settlement
// source rejected the remainder denom.
var ErrSupplementarySourceMisconfigured = fmt.Errorf("%w: supplementary settlement source rejected denom", libraries.ErrConfigurationError)

// StatusKind discriminates an obligation's terminal/non-terminal state.
type StatusKind uint8

const (
	StatusInQueue StatusKind = iota
	StatusProcessed
	StatusError
)

// ObligationStatus is the per-id status record.
type ObligationStatus struct {
	Kind   StatusKind
	Reason string
}

// Obligation is one `(id, recipient, payout_coins)` record awaiting
// settlement.
type Obligation struct {
	ID            uint64
	Recipient     types.Address
	PayoutCoins   types.Coins
	EnqueueHeight uint64
}

// SupplementarySource converts an untranslated remainder amount into a
// source-native coin via that source's simulation endpoint. A source that
// cannot price the remainder denom rejects it, which the queue surfaces
// as the one other fatal registration error.
type SupplementarySource interface {
	Quote(remainder *big.Int) (types.Coin, error)
}

// Config is the clearing queue's owner-settable, immutable-shape config:
// denom, settlement ratio, settlement account, and supplementary
// settlement sources. `latest_id` is tracked separately as queue state,
// not as config, since it advances on every registration.
type Config struct {
	Denom                          string
	SettlementRatio                types.Rational
	SettlementAccount              types.Address
	SupplementarySettlementSources []SupplementarySource
}

func (Config) isConfigPatch() {}

// Patch is the partial-update record for Config.
type Patch struct {
	SettlementRatio                *types.Rational
	SettlementAccount               *types.Address
	SupplementarySettlementSources []SupplementarySource
}

func (Patch) isConfigPatch() {}

// RegisterObligationRequest is the payload a processor hands to
// ProcessFunction for the "register_obligation" function.
type RegisterObligationRequest struct {
	ID            uint64
	RecipientAddr string
	PayoutAmount  *big.Int
	EnqueueHeight uint64
}

// Library is the clearing queue library kind.
type Library struct {
	libraries.Frame
	config Config
	bank   accounts.BankKeeper

	latestID *uint64
	queue    []Obligation
	statuses map[uint64]ObligationStatus
}

// New constructs a clearing queue library.
func New(addr, owner, processor types.Address, rawConfig []byte, cfg Config, bank accounts.BankKeeper) (*Library, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Library{
		Frame:    libraries.NewFrame(addr, owner, processor, rawConfig),
		config:   cfg,
		bank:     bank,
		statuses: make(map[uint64]ObligationStatus),
	}, nil
}

func validate(cfg Config) error {
	if cfg.Denom == "" {
		return fmt.Errorf("%w: denom is required", libraries.ErrConfigurationError)
	}
	if cfg.SettlementAccount.IsZero() {
		return fmt.Errorf("%w: settlement account is required", libraries.ErrConfigurationError)
	}
	if !cfg.SettlementRatio.Valid() {
		return fmt.Errorf("%w: invalid settlement ratio", libraries.ErrConfigurationError)
	}
	return nil
}

// Config returns the current validated config.
func (l *Library) Config() Config {
	return l.config
}

// ProcessFunction implements libraries.Library. Exposed functions are
// "register_obligation" and "settle_next_obligation".
func (l *Library) ProcessFunction(sender types.Address, fn libraries.FunctionCall) error {
	if err := l.RequireProcessor(sender); err != nil {
		return err
	}
	switch fn.Name {
	case "register_obligation":
		req, ok := fn.Args["request"].(RegisterObligationRequest)
		if !ok {
			return fmt.Errorf("clearingqueue: register_obligation requires a RegisterObligationRequest arg")
		}
		return l.RegisterObligation(req)
	case "settle_next_obligation":
		return l.SettleNextObligation()
	default:
		return fmt.Errorf("clearingqueue: unknown function %q", fn.Name)
	}
}

// RegisterObligation runs the monotonic-id check then registers the
// obligation. Every per-obligation failure past the monotonic-id check is
// swallowed: the call returns nil and the failure is recorded as the
// obligation's status instead, so a single bad obligation never blocks the
// ones behind it in the FIFO. A supplementary source rejecting the
// remainder is a configuration error, not a per-obligation one: it is
// returned and latest_id does not advance.
func (l *Library) RegisterObligation(req RegisterObligationRequest) error {
	var expected uint64
	if l.latestID != nil {
		expected = *l.latestID + 1
	}
	if req.ID != expected {
		return ErrOutOfOrderRegistration
	}

	finalize := func(status ObligationStatus) error {
		l.statuses[req.ID] = status
		id := req.ID
		l.latestID = &id
		if status.Kind == StatusError {
			l.Emitter().Emit(events.ObligationErrored{ID: req.ID, Reason: status.Reason})
		}
		return nil
	}

	recipient, err := types.DecodeAddress(req.RecipientAddr)
	if err != nil {
		return finalize(ObligationStatus{Kind: StatusError, Reason: "invalid recipient: " + err.Error()})
	}
	if req.PayoutAmount == nil || req.PayoutAmount.Sign() == 0 {
		return finalize(ObligationStatus{Kind: StatusError, Reason: "zero payout"})
	}

	components, err := l.splitPayout(req.PayoutAmount)
	if err != nil {
		return err // ConfigurationError: fatal, not swallowed
	}
	components = components.DropZero()
	if len(components) == 0 {
		return finalize(ObligationStatus{Kind: StatusError, Reason: "all obligations 0-amount"})
	}

	l.queue = append(l.queue, Obligation{
		ID:            req.ID,
		Recipient:     recipient,
		PayoutCoins:   components,
		EnqueueHeight: req.EnqueueHeight,
	})
	l.Emitter().Emit(events.ObligationRegistered{ID: req.ID, Recipient: recipient.String()})
	return finalize(ObligationStatus{Kind: StatusInQueue})
}

// splitPayout divides payoutAmount by the configured settlement ratio: the
// primary share stays in the queue's native denom, and the remainder (if
// any) is divided evenly across the configured supplementary sources, each
// converting its share into its own source-native coin.
func (l *Library) splitPayout(payoutAmount *big.Int) (types.Coins, error) {
	primary := l.config.SettlementRatio.Apply(payoutAmount)
	remainder := new(big.Int).Sub(payoutAmount, primary)
	components := types.Coins{types.NewCoin(l.config.Denom, primary)}

	if remainder.Sign() <= 0 || len(l.config.SupplementarySettlementSources) == 0 {
		return components, nil
	}

	perSource := new(big.Int).Div(remainder, big.NewInt(int64(len(l.config.SupplementarySettlementSources))))
	for _, src := range l.config.SupplementarySettlementSources {
		coin, err := src.Quote(perSource)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSupplementarySourceMisconfigured, err)
		}
		components = append(components, coin)
	}
	return components, nil
}

// SettleNextObligation runs a check-then-act settlement sequence that
// never mutates the queue when the balance check fails, so the head is
// never lost to a transient shortfall.
func (l *Library) SettleNextObligation() error {
	if len(l.queue) == 0 {
		return ErrNoPendingObligations
	}
	head := l.queue[0]
	for _, c := range head.PayoutCoins {
		if l.bank.Balance(l.config.SettlementAccount, c.Denom).Cmp(c.Amount) < 0 {
			return ErrInsufficientSettlementBalance
		}
	}

	rest := l.queue[1:]
	if err := l.bank.Send(l.config.SettlementAccount, head.Recipient, head.PayoutCoins); err != nil {
		// The balance check above should make this unreachable outside of
		// a concurrent drain of the settlement account; re-push to honor
		// the same no-lost-head guarantee as the balance-check path.
		l.queue = append([]Obligation{head}, rest...)
		return err
	}
	l.queue = rest

	l.statuses[head.ID] = ObligationStatus{Kind: StatusProcessed}
	l.Emitter().Emit(events.ObligationSettled{ID: head.ID, Recipient: head.Recipient.String()})
	return nil
}

// QueueInfo reports the current queue length.
func (l *Library) QueueInfo() int {
	return len(l.queue)
}

// PendingObligations returns the obligations in [from, to) insertion
// order, clamped to the current queue bounds.
func (l *Library) PendingObligations(from, to int) []Obligation {
	if from < 0 {
		from = 0
	}
	if to > len(l.queue) {
		to = len(l.queue)
	}
	if from >= to {
		return nil
	}
	out := make([]Obligation, to-from)
	copy(out, l.queue[from:to])
	return out
}

// ObligationStatusOf returns the recorded status for id, and whether one
// exists.
func (l *Library) ObligationStatusOf(id uint64) (ObligationStatus, bool) {
	s, ok := l.statuses[id]
	return s, ok
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
	if p.SettlementRatio != nil {
		next.SettlementRatio = *p.SettlementRatio
	}
	if p.SettlementAccount != nil {
		next.SettlementAccount = *p.SettlementAccount
	}
	if p.SupplementarySettlementSources != nil {
		next.SupplementarySettlementSources = p.SupplementarySettlementSources
	}
	if err := validate(next); err != nil {
		return err
	}
	l.config = next
	return nil
}
