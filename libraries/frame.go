// Package libraries implements the stateless Library Contract Frame: every
// concrete library kind (forwarder, splitter, remote-transfer movers,
// liquidity/lending position managers, the clearing queue) embeds Frame and
// is driven uniformly through the Library capability set rather than a
// type switch over library kinds.
package libraries

import (
	"errors"
	"time"

	"valence/accounts"
	"valence/core/events"
	"valence/core/types"
)

// Errors surfaced by the library frame.
var (
	// ErrUnauthorized is returned when ProcessFunction is invoked by any
	// sender other than the configured processor.
	ErrUnauthorized = errors.New("libraries: sender is not the configured processor")
	// ErrConfigurationError marks a rejected config update; the prior
	// config must remain unchanged.
	ErrConfigurationError = errors.New("libraries: configuration error")
)

// FunctionCall is the parsed function invocation a processor hands to a
// library's ProcessFunction. Name matches the subroutine function
// descriptor's message-name; Args is the payload parsed from the
// envelope's raw bytes, using whatever shape the concrete library expects
// for that function.
type FunctionCall struct {
	Name string
	Args map[string]any
	Ctx  ExecContext
}

// ExecContext carries the domain clock a library needs to evaluate
// height/time-based constraints, such as the forwarder's interval
// constraint. The same Height-or-Time duality a TTL uses applies here.
type ExecContext struct {
	Height uint64
	Time   time.Time
}

// Library is the capability set every concrete library kind exposes: the
// processor and the authorization contract drive every library uniformly
// through this interface, never via subtype inheritance.
type Library interface {
	// ProcessFunction dispatches fn on behalf of the processor.
	ProcessFunction(sender types.Address, fn FunctionCall) error
	// UpdateConfig applies an owner-only partial update.
	UpdateConfig(sender types.Address, patch ConfigPatch) error
	// Owner, Processor, RawConfig are read-only queries.
	Owner() types.Address
	Processor() types.Address
	RawConfig() []byte
}

// ConfigPatch is a marker interface for library-specific partial-update
// records; each concrete library defines its own patch type and validates
// it against its own invariants.
type ConfigPatch interface {
	isConfigPatch()
}

// Frame is the shared state every concrete library embeds: ownership
// (typically the home-domain Authorization contract), the processor
// binding, and the pre-validation raw config captured at cross-domain
// instantiation time.
type Frame struct {
	Address    types.Address
	Ownership  accounts.Ownership
	processor  types.Address
	rawConfig  []byte
	emitter    events.Emitter
}

// NewFrame constructs a Frame with the given owner, processor binding, and
// raw pre-validation config, mirroring how a cross-domain instantiation
// message carries {owner, processor, config}.
func NewFrame(addr, owner, processor types.Address, rawConfig []byte) Frame {
	return Frame{
		Address:   addr,
		Ownership: accounts.NewOwnership(owner),
		processor: processor,
		rawConfig: append([]byte(nil), rawConfig...),
		emitter:   events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter; nil resets to a no-op emitter.
func (f *Frame) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	f.emitter = emitter
}

// Emitter exposes the configured emitter for embedding libraries that need
// to emit their own library-specific events.
func (f *Frame) Emitter() events.Emitter {
	return f.emitter
}

// Owner implements Library.
func (f *Frame) Owner() types.Address {
	return f.Ownership.Owner()
}

// Processor implements Library.
func (f *Frame) Processor() types.Address {
	return f.processor
}

// RawConfig implements Library.
func (f *Frame) RawConfig() []byte {
	return append([]byte(nil), f.rawConfig...)
}

// RequireProcessor enforces that function execution requires
// sender == processor.
func (f *Frame) RequireProcessor(sender types.Address) error {
	if !f.processor.Equal(sender) {
		return ErrUnauthorized
	}
	return nil
}

// RequireOwner enforces that config updates require sender == owner.
func (f *Frame) RequireOwner(sender types.Address) error {
	return f.Ownership.RequireOwner(sender)
}

// ProposeOwner, AcceptOwnership, and Renounce delegate to the embedded
// Ownership record: libraries share the same two-step ownership semantics
// as accounts and the authorization contract.
func (f *Frame) ProposeOwner(sender, proposed types.Address) error {
	return f.Ownership.ProposeOwner(sender, proposed, f.Address.String(), f.emitter)
}

func (f *Frame) AcceptOwnership(sender types.Address) error {
	return f.Ownership.AcceptOwnership(sender, f.Address.String(), f.emitter)
}

func (f *Frame) Renounce(sender types.Address) error {
	return f.Ownership.Renounce(sender, f.Address.String(), f.emitter)
}
