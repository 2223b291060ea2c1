// Package remotetransfer implements the generalized cross-domain mover
// library: ibc-transfer, cctp-transfer, and standard-bridge-transfer all
// share one Go type. The transport kind only changes the wire memo and
// fee-policy shape handed to the bridge channel, never the control flow
// (amount computation, account debit).
package remotetransfer

import (
	"fmt"
	"math/big"
	"time"

	"valence/accounts"
	"valence/core/types"
	"valence/libraries"
)

// TransportKind discriminates which opaque bridge channel carries the
// transfer once it leaves this domain.
type TransportKind uint8

const (
	TransportIBC TransportKind = iota
	TransportCCTP
	TransportStandardBridge
	TransportHyperlaneEureka
)

// AmountKind discriminates FixedAmount vs FullAmount.
type AmountKind uint8

const (
	AmountFixed AmountKind = iota
	AmountFull
)

// Amount pairs an AmountKind with its fixed value, if any.
type Amount struct {
	Kind  AmountKind
	Fixed *big.Int
	// AllowZeroFull, when true, makes a FullAmount transfer over an empty
	// balance succeed moving zero; when false the transfer fails instead.
	AllowZeroFull bool
}

// RemoteChainInfo names the destination on the far side of the bridge
// channel.
type RemoteChainInfo struct {
	ChannelID string
	Timeout   time.Duration
}

// FeePolicy captures how the transport's relay fee is sourced; left opaque
// beyond a flat estimate since fee quoting is transport-specific.
type FeePolicy struct {
	FlatFee types.Coin
}

// Config is the remote-transfer library's immutable-shape config.
type Config struct {
	Transport       TransportKind
	Input           types.Address
	Output          string // recipient address on the remote domain; format is transport-specific
	Denom           string
	Amount          Amount
	Memo            string
	RemoteChainInfo RemoteChainInfo
	FeePolicy       FeePolicy
}

func (Config) isConfigPatch() {}

// Patch is the partial-update record for Config.
type Patch struct {
	Output          *string
	Amount          *Amount
	Memo            *string
	RemoteChainInfo *RemoteChainInfo
	FeePolicy       *FeePolicy
}

func (Patch) isConfigPatch() {}

// Transport is the opaque bridge-channel collaborator a concrete domain
// binds to carry the outbound transfer; concrete ICS-20 / CCTP /
// IBC-Eureka / Hyperlane wire formats live behind this interface, not in
// this package.
type Transport interface {
	SendRemote(cfg Config, amount types.Coin) (ticket string, err error)
}

// Library is the remote-transfer library kind.
type Library struct {
	libraries.Frame
	config    Config
	bank      accounts.BankKeeper
	transport Transport
}

// New constructs a remote-transfer library.
func New(addr, owner, processor types.Address, rawConfig []byte, cfg Config, bank accounts.BankKeeper, transport Transport) (*Library, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Library{Frame: libraries.NewFrame(addr, owner, processor, rawConfig), config: cfg, bank: bank, transport: transport}, nil
}

func validate(cfg Config) error {
	if cfg.Input.IsZero() {
		return fmt.Errorf("%w: input account is required", libraries.ErrConfigurationError)
	}
	if cfg.Denom == "" {
		return fmt.Errorf("%w: denom is required", libraries.ErrConfigurationError)
	}
	if cfg.Output == "" {
		return fmt.Errorf("%w: remote output address is required", libraries.ErrConfigurationError)
	}
	if cfg.Amount.Kind == AmountFixed && (cfg.Amount.Fixed == nil || cfg.Amount.Fixed.Sign() <= 0) {
		return fmt.Errorf("%w: fixed amount must be positive", libraries.ErrConfigurationError)
	}
	return nil
}

// Config returns the current validated config.
func (l *Library) Config() Config {
	return l.config
}

// ProcessFunction implements libraries.Library. The only function exposed
// is "transfer".
func (l *Library) ProcessFunction(sender types.Address, fn libraries.FunctionCall) error {
	if err := l.RequireProcessor(sender); err != nil {
		return err
	}
	if fn.Name != "transfer" {
		return fmt.Errorf("remotetransfer: unknown function %q", fn.Name)
	}
	return l.transfer()
}

func (l *Library) transfer() error {
	amount, err := l.resolveAmount()
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	coin := types.NewCoin(l.config.Denom, amount)
	if err := l.bank.Burn(l.config.Input, types.Coins{coin}); err != nil {
		return err
	}
	_, err = l.transport.SendRemote(l.config, coin)
	return err
}

func (l *Library) resolveAmount() (*big.Int, error) {
	switch l.config.Amount.Kind {
	case AmountFixed:
		have := l.bank.Balance(l.config.Input, l.config.Denom)
		if have.Cmp(l.config.Amount.Fixed) < 0 {
			return nil, fmt.Errorf("remotetransfer: insufficient balance of %s: have %s, need %s", l.config.Denom, have, l.config.Amount.Fixed)
		}
		return new(big.Int).Set(l.config.Amount.Fixed), nil
	case AmountFull:
		have := l.bank.Balance(l.config.Input, l.config.Denom)
		if have.Sign() == 0 && !l.config.Amount.AllowZeroFull {
			return nil, fmt.Errorf("remotetransfer: empty balance and AllowZeroFull is false")
		}
		return have, nil
	default:
		return nil, fmt.Errorf("%w: unknown amount kind", libraries.ErrConfigurationError)
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
	if p.Output != nil {
		next.Output = *p.Output
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.Memo != nil {
		next.Memo = *p.Memo
	}
	if p.RemoteChainInfo != nil {
		next.RemoteChainInfo = *p.RemoteChainInfo
	}
	if p.FeePolicy != nil {
		next.FeePolicy = *p.FeePolicy
	}
	if err := validate(next); err != nil {
		return err
	}
	l.config = next
	return nil
}
