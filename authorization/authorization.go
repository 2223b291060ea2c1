// Package authorization implements the Authorization Contract: the
// admission-checked gateway that turns a permissionless SendMsgs call into
// an execution-id-bearing envelope, fanned out to the local processor or
// a foreign domain's bridge adapter.
package authorization

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"valence/accounts"
	"valence/bridge"
	"valence/core/events"
	"valence/core/types"
	"valence/zkgateway"
)

// Errors surfaced by SendMsgs admission and label management.
var (
	ErrAuthorizationDoesNotExist = errors.New("authorization: label does not exist")
	ErrAuthorizationExists       = errors.New("authorization: label already exists")
	ErrNotEnabled                = errors.New("authorization: label is disabled")
	ErrOutsideTimeWindow         = errors.New("authorization: outside admission time window")
	ErrConcurrencyLimit          = errors.New("authorization: max concurrent executions reached")
	ErrNotPermissioned           = errors.New("authorization: sender is not permissioned and holds no gate token")
	ErrMessageCountMismatch      = errors.New("authorization: message count does not match subroutine function count")
	ErrMessageTypeMismatch       = errors.New("authorization: message type does not match function descriptor")
	ErrParameterRestriction      = errors.New("authorization: payload fails a parameter restriction")
	ErrProofRequired             = errors.New("authorization: label requires a ZK proof")
	ErrExternalDomainUnknown     = errors.New("authorization: external domain not registered")
	ErrNotTokenGated             = errors.New("authorization: label is not token-gated")
)

// AdmissionKind discriminates SendMsgs's admission rule.
type AdmissionKind uint8

const (
	AdmissionPermissionless AdmissionKind = iota
	AdmissionPermissioned
	AdmissionTokenGated
)

// Admission is a label's sender-gating configuration.
type Admission struct {
	Kind AdmissionKind
	// PermissionedSenders is consulted when Kind == AdmissionPermissioned.
	PermissionedSenders map[string]struct{}
	// TokenGatedDenom and BurnAmount apply when Kind == AdmissionTokenGated;
	// burn amount is a per-label config option.
	TokenGatedDenom string
	BurnAmount      *big.Int
}

// TimeWindow bounds when SendMsgs admits a label; a zero End means no
// upper bound.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

func (w TimeWindow) satisfied(at time.Time) bool {
	if !w.Start.IsZero() && at.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && at.After(w.End) {
		return false
	}
	return true
}

// ParamRestriction validates one parsed message payload: the parsed
// payload must satisfy every parameter restriction.
type ParamRestriction interface {
	Check(payload map[string]any) error
}

// FunctionDescriptor names one step of a subroutine.
type FunctionDescriptor struct {
	MessageType    string
	LibraryAddress string
	FunctionName   string
	TargetDomain   string // "" means the home domain
	Restrictions   []ParamRestriction
}

// Subroutine is the ordered sequence of function descriptors a label
// gates.
type Subroutine struct {
	Atomic    bool
	Functions []FunctionDescriptor
}

// AuthorizationRecord is one named, admission-checked gateway held in the
// authorization table (label to record).
type AuthorizationRecord struct {
	Label             string
	Subroutine        Subroutine
	Admission         Admission
	TimeWindow        TimeWindow
	MaxConcurrent     uint32
	Enabled           bool
	Priority          bridge.Priority
	Retry             bridge.RetryPolicy
	VerificationKeyID *zkgateway.VerificationKeyID

	concurrentCount uint32
}

// Message is one sub-message a SendMsgs caller supplies, paired with its
// parsed payload for parameter-restriction checks.
type Message struct {
	MessageType string
	Payload     map[string]any
	RawPayload  []byte
}

// SendMsgsRequest is the permissionless admission entry point's input:
// a label, the sub-messages, and a TTL.
type SendMsgsRequest struct {
	Label        string
	Messages     []Message
	TTL          bridge.TTL
	Proof        zkgateway.Proof
	PublicInputs zkgateway.PublicInputs
}

// LocalProcessor is the capability the home domain's processor exposes to
// the Authorization contract for locally targeted envelopes.
type LocalProcessor interface {
	Enqueue(envelope bridge.Envelope) error
}

// BridgeDispatcher is the capability bridge.Adapter exposes for foreign
// targeted envelopes.
type BridgeDispatcher interface {
	Dispatch(externalDomain string, envelope bridge.Envelope) (string, error)
}

type pendingCallback struct {
	label string
}

// Contract is the Authorization Contract.
type Contract struct {
	Ownership accounts.Ownership

	homeDomain       string
	labels           map[string]*AuthorizationRecord
	nextExecutionID  uint64
	externalDomains  map[string]bridge.DomainBinding
	pendingCallbacks map[uint64]pendingCallback

	processor LocalProcessor
	dispatch  BridgeDispatcher
	gateway   zkgateway.Gateway
	bank      accounts.BankKeeper
	emitter   events.Emitter
	now       func() time.Time
}

// New constructs an Authorization contract for homeDomain.
func New(owner types.Address, homeDomain string, processor LocalProcessor, dispatch BridgeDispatcher, gateway zkgateway.Gateway, bank accounts.BankKeeper) *Contract {
	return &Contract{
		Ownership:        accounts.NewOwnership(owner),
		homeDomain:       homeDomain,
		labels:           make(map[string]*AuthorizationRecord),
		externalDomains:  make(map[string]bridge.DomainBinding),
		pendingCallbacks: make(map[uint64]pendingCallback),
		processor:        processor,
		dispatch:         dispatch,
		gateway:          gateway,
		bank:             bank,
		emitter:          events.NoopEmitter{},
		now:              time.Now,
	}
}

// SetEmitter configures the event emitter; nil resets to a no-op emitter.
func (c *Contract) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	c.emitter = emitter
}

// SetClock overrides the contract's time source, used by tests that need
// a deterministic "now" for time-window checks.
func (c *Contract) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.now = now
}

// CreateAuthorizations registers new labels. Permissioned: owner only.
func (c *Contract) CreateAuthorizations(sender types.Address, records ...AuthorizationRecord) error {
	if err := c.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	for _, r := range records {
		if _, exists := c.labels[r.Label]; exists {
			return fmt.Errorf("%w: %s", ErrAuthorizationExists, r.Label)
		}
	}
	for i := range records {
		rec := records[i]
		rec.Enabled = true
		c.labels[rec.Label] = &rec
		c.emitter.Emit(events.AuthorizationCreated{Label: rec.Label})
	}
	return nil
}

// ModifyAuthorization applies a partial update to an existing label.
// Permissioned: owner only.
func (c *Contract) ModifyAuthorization(sender types.Address, label string, patch func(*AuthorizationRecord)) error {
	if err := c.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	rec, ok := c.labels[label]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAuthorizationDoesNotExist, label)
	}
	patch(rec)
	return nil
}

// DisableAuthorization disables label, blocking further SendMsgs admission.
func (c *Contract) DisableAuthorization(sender types.Address, label string) error {
	rec, err := c.requireOwnerAndLabel(sender, label)
	if err != nil {
		return err
	}
	rec.Enabled = false
	c.emitter.Emit(events.AuthorizationDisabled{Label: label})
	return nil
}

// EnableAuthorization re-enables a previously disabled label.
func (c *Contract) EnableAuthorization(sender types.Address, label string) error {
	rec, err := c.requireOwnerAndLabel(sender, label)
	if err != nil {
		return err
	}
	rec.Enabled = true
	c.emitter.Emit(events.AuthorizationEnabled{Label: label})
	return nil
}

func (c *Contract) requireOwnerAndLabel(sender types.Address, label string) (*AuthorizationRecord, error) {
	if err := c.Ownership.RequireOwner(sender); err != nil {
		return nil, err
	}
	rec, ok := c.labels[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAuthorizationDoesNotExist, label)
	}
	return rec, nil
}

// AddExternalDomains registers external-domain bindings into the
// external-domain table (name to {encoder, bridge, processor_addr}).
func (c *Contract) AddExternalDomains(sender types.Address, domains map[string]bridge.DomainBinding) error {
	if err := c.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	for name, binding := range domains {
		c.externalDomains[name] = binding
	}
	return nil
}

// MintAuthorizations mints units of a token-gated label's gate denom to an
// account.
func (c *Contract) MintAuthorizations(sender types.Address, label string, to types.Address, amount *big.Int) error {
	rec, err := c.requireOwnerAndLabel(sender, label)
	if err != nil {
		return err
	}
	if rec.Admission.Kind != AdmissionTokenGated {
		return fmt.Errorf("%w: %s", ErrNotTokenGated, label)
	}
	return c.bank.Mint(to, types.Coins{types.NewCoin(rec.Admission.TokenGatedDenom, amount)})
}

// Label returns the current record for label, for read-only inspection.
func (c *Contract) Label(label string) (AuthorizationRecord, bool) {
	rec, ok := c.labels[label]
	if !ok {
		return AuthorizationRecord{}, false
	}
	return *rec, true
}

// SendMsgs is the main admission path: it looks up label, checks
// admission, validates the message/subroutine shape against restrictions
// (or consults the ZK gateway for proof-gated labels), assigns an
// execution id, and fans the resulting envelope out to the local
// processor or the bridge adapter per target domain.
func (c *Contract) SendMsgs(sender types.Address, req SendMsgsRequest) (uint64, error) {
	rec, ok := c.labels[req.Label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAuthorizationDoesNotExist, req.Label)
	}
	if !rec.Enabled {
		return 0, fmt.Errorf("%w: %s", ErrNotEnabled, req.Label)
	}

	if rec.VerificationKeyID != nil {
		if err := c.admitViaProof(sender, rec, req); err != nil {
			c.rejectedEvent(req.Label, sender, err)
			return 0, err
		}
	} else {
		if err := c.admitViaRules(sender, rec, req); err != nil {
			c.rejectedEvent(req.Label, sender, err)
			return 0, err
		}
	}

	executionID := c.nextExecutionID
	c.nextExecutionID++
	rec.concurrentCount++
	c.pendingCallbacks[executionID] = pendingCallback{label: req.Label}

	envelopesByDomain := c.buildEnvelopes(executionID, rec, req)
	for targetDomain, envelope := range envelopesByDomain {
		if targetDomain == "" || targetDomain == c.homeDomain {
			if err := c.processor.Enqueue(envelope); err != nil {
				return 0, fmt.Errorf("authorization: enqueue locally targeted envelope: %w", err)
			}
			continue
		}
		if _, ok := c.externalDomains[targetDomain]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrExternalDomainUnknown, targetDomain)
		}
		if _, err := c.dispatch.Dispatch(targetDomain, envelope); err != nil {
			return 0, fmt.Errorf("authorization: dispatch to %s: %w", targetDomain, err)
		}
	}

	c.emitter.Emit(events.SendMsgsAdmitted{Label: req.Label, ExecutionID: executionID, Sender: sender.String()})
	return executionID, nil
}

func (c *Contract) rejectedEvent(label string, sender types.Address, err error) {
	c.emitter.Emit(events.SendMsgsRejected{Label: label, Sender: sender.String(), Reason: err.Error()})
}

// admitViaRules runs the rule-based admission checks: time window,
// sender gating, concurrency limit, message-count match, and per-message
// type/parameter-restriction checks.
func (c *Contract) admitViaRules(sender types.Address, rec *AuthorizationRecord, req SendMsgsRequest) error {
	if !rec.TimeWindow.satisfied(c.now()) {
		return ErrOutsideTimeWindow
	}
	if err := c.checkSenderGate(sender, rec); err != nil {
		return err
	}
	if rec.MaxConcurrent > 0 && rec.concurrentCount >= rec.MaxConcurrent {
		return ErrConcurrencyLimit
	}
	if len(req.Messages) != len(rec.Subroutine.Functions) {
		return ErrMessageCountMismatch
	}
	for i, fn := range rec.Subroutine.Functions {
		msg := req.Messages[i]
		if msg.MessageType != fn.MessageType {
			return fmt.Errorf("%w: step %d expected %q, got %q", ErrMessageTypeMismatch, i, fn.MessageType, msg.MessageType)
		}
		for _, restriction := range fn.Restrictions {
			if err := restriction.Check(msg.Payload); err != nil {
				return fmt.Errorf("%w: step %d: %s", ErrParameterRestriction, i, err)
			}
		}
	}
	return nil
}

func (c *Contract) checkSenderGate(sender types.Address, rec *AuthorizationRecord) error {
	switch rec.Admission.Kind {
	case AdmissionPermissionless:
		return nil
	case AdmissionPermissioned:
		if _, ok := rec.Admission.PermissionedSenders[sender.String()]; ok {
			return nil
		}
		return ErrNotPermissioned
	case AdmissionTokenGated:
		amount := rec.Admission.BurnAmount
		if amount == nil || amount.Sign() <= 0 {
			amount = big.NewInt(1)
		}
		if c.bank.Balance(sender, rec.Admission.TokenGatedDenom).Cmp(amount) < 0 {
			return ErrNotPermissioned
		}
		return c.bank.Burn(sender, types.Coins{types.NewCoin(rec.Admission.TokenGatedDenom, amount)})
	default:
		return ErrNotPermissioned
	}
}

// admitViaProof implements ZK-proof-gated admission: it replaces, not
// augments, the rule-based admission checks.
func (c *Contract) admitViaProof(_ types.Address, rec *AuthorizationRecord, req SendMsgsRequest) error {
	if len(req.Proof) == 0 || len(req.PublicInputs) == 0 {
		return ErrProofRequired
	}
	expected := zkgateway.HashMessagePayloads(rawPayloads(req.Messages))
	if !bytesEqual(req.PublicInputs, expected[:]) {
		return fmt.Errorf("%w: public inputs do not bind the message payload hash", zkgateway.ErrProofRejected)
	}
	valid, err := c.gateway.VerifyProof(context.Background(), *rec.VerificationKeyID, req.Proof, req.PublicInputs)
	if err != nil {
		return fmt.Errorf("zkgateway: %w", err)
	}
	if !valid {
		return zkgateway.ErrProofRejected
	}
	return nil
}

func rawPayloads(messages []Message) [][]byte {
	out := make([][]byte, len(messages))
	for i, m := range messages {
		out[i] = m.RawPayload
	}
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// buildEnvelopes groups the subroutine's functions by target domain and
// constructs one envelope per domain, copying retry/TTL/priority policy
// fields verbatim into the processor envelope.
func (c *Contract) buildEnvelopes(executionID uint64, rec *AuthorizationRecord, req SendMsgsRequest) map[string]bridge.Envelope {
	byDomain := make(map[string][]bridge.Message)
	for i, fn := range rec.Subroutine.Functions {
		byDomain[fn.TargetDomain] = append(byDomain[fn.TargetDomain], bridge.Message{
			LibraryAddress: fn.LibraryAddress,
			FunctionName:   fn.FunctionName,
			MessageType:    fn.MessageType,
			Payload:        req.Messages[i].RawPayload,
		})
	}
	out := make(map[string]bridge.Envelope, len(byDomain))
	for domain, msgs := range byDomain {
		out[domain] = bridge.Envelope{
			ExecutionID:  executionID,
			Label:        rec.Label,
			HomeDomain:   c.homeDomain,
			TargetDomain: domain,
			Subroutine:   bridge.Subroutine{Atomic: rec.Subroutine.Atomic, Messages: msgs},
			TTL:          req.TTL,
			Retry:        rec.Retry,
			Priority:     rec.Priority,
		}
	}
	return out
}

// RouteCallback implements bridge.CallbackRouter: it clears the label's
// concurrency slot and emits a callback event.
func (c *Contract) RouteCallback(executionID uint64, outcome bridge.Outcome) {
	pending, ok := c.pendingCallbacks[executionID]
	if !ok {
		return
	}
	delete(c.pendingCallbacks, executionID)
	if rec, ok := c.labels[pending.label]; ok && rec.concurrentCount > 0 {
		rec.concurrentCount--
	}
	c.emitter.Emit(events.CallbackReceived{ExecutionID: executionID, Outcome: outcomeString(outcome.Kind)})
}

func outcomeString(kind bridge.OutcomeKind) string {
	switch kind {
	case bridge.OutcomeSuccess:
		return "success"
	case bridge.OutcomePartialSuccess:
		return "partial_success"
	case bridge.OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}
