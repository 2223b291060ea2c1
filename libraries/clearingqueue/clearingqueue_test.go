package clearingqueue

import (
	"errors"
	"math/big"
	"testing"

	"valence/accounts"
	"valence/core/types"
)

func mustAddr(t *testing.T, seed string) types.Address {
	t.Helper()
	b := make([]byte, 20)
	copy(b, seed)
	a, err := types.NewAddress("neutron", b)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	return a
}

func newTestQueue(t *testing.T, settlementAccount types.Address, bank accounts.BankKeeper) *Library {
	t.Helper()
	owner := mustAddr(t, "owner")
	processor := mustAddr(t, "processor")
	cfg := Config{
		Denom:             "uusdc",
		SettlementRatio:   types.Rational{Numerator: 1, Denominator: 1},
		SettlementAccount: settlementAccount,
	}
	lib, err := New(mustAddr(t, "clearingqueue"), owner, processor, nil, cfg, bank)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return lib
}

// TestFIFOMonotonicIDCheck covers a FIFO ordering case: ids [0, 1, 3] arrive against an empty
// queue. 0 and 1 are accepted, 3 is rejected as out of order, and latest_id
// stops at 1.
func TestFIFOMonotonicIDCheck(t *testing.T) {
	bank := accounts.NewMemBank()
	settlement := mustAddr(t, "settlement")
	q := newTestQueue(t, settlement, bank)
	recipient := mustAddr(t, "recipient")

	if err := q.RegisterObligation(RegisterObligationRequest{ID: 0, RecipientAddr: recipient.String(), PayoutAmount: big.NewInt(10)}); err != nil {
		t.Fatalf("register id 0: %v", err)
	}
	if err := q.RegisterObligation(RegisterObligationRequest{ID: 1, RecipientAddr: recipient.String(), PayoutAmount: big.NewInt(10)}); err != nil {
		t.Fatalf("register id 1: %v", err)
	}
	err := q.RegisterObligation(RegisterObligationRequest{ID: 3, RecipientAddr: recipient.String(), PayoutAmount: big.NewInt(10)})
	if !errors.Is(err, ErrOutOfOrderRegistration) {
		t.Fatalf("expected ErrOutOfOrderRegistration for id 3, got %v", err)
	}
	if q.latestID == nil || *q.latestID != 1 {
		t.Fatalf("expected latest_id 1, got %v", q.latestID)
	}
	if got := q.QueueInfo(); got != 2 {
		t.Fatalf("expected queue length 2, got %d", got)
	}
}

// TestFIFOSwallowsZeroAmountRegistration exercises a zero-payout
// registration at id 5 (latest_id already 4) succeeds, leaves queue length
// unchanged, records an Error status, and advances latest_id to 5.
func TestFIFOSwallowsZeroAmountRegistration(t *testing.T) {
	bank := accounts.NewMemBank()
	settlement := mustAddr(t, "settlement")
	q := newTestQueue(t, settlement, bank)
	recipient := mustAddr(t, "recipient")

	for i := uint64(0); i < 5; i++ {
		if err := q.RegisterObligation(RegisterObligationRequest{ID: i, RecipientAddr: recipient.String(), PayoutAmount: big.NewInt(10)}); err != nil {
			t.Fatalf("register id %d: %v", i, err)
		}
	}
	before := q.QueueInfo()

	err := q.RegisterObligation(RegisterObligationRequest{ID: 5, RecipientAddr: recipient.String(), PayoutAmount: big.NewInt(0)})
	if err != nil {
		t.Fatalf("expected zero-payout registration to succeed (swallowed), got %v", err)
	}
	if got := q.QueueInfo(); got != before {
		t.Fatalf("expected queue length unchanged at %d, got %d", before, got)
	}
	status, ok := q.ObligationStatusOf(5)
	if !ok || status.Kind != StatusError || status.Reason != "zero payout" {
		t.Fatalf("expected status(5) = Error(\"zero payout\"), got %+v (ok=%v)", status, ok)
	}
	if q.latestID == nil || *q.latestID != 5 {
		t.Fatalf("expected latest_id 5, got %v", q.latestID)
	}
}

// TestSettlementRespectsBalance exercises a case where a head obligation needs 100
// uusdc; the settlement account holds only 40. SettleNextObligation fails
// with ErrInsufficientSettlementBalance and the head is preserved. After
// topping up to 150, a retry succeeds and the recipient receives 100.
func TestSettlementRespectsBalance(t *testing.T) {
	bank := accounts.NewMemBank()
	settlement := mustAddr(t, "settlement")
	recipient := mustAddr(t, "recipient")
	if err := bank.Mint(settlement, types.Coins{types.NewCoin("uusdc", big.NewInt(40))}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	q := newTestQueue(t, settlement, bank)

	if err := q.RegisterObligation(RegisterObligationRequest{ID: 0, RecipientAddr: recipient.String(), PayoutAmount: big.NewInt(100)}); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := q.SettleNextObligation()
	if !errors.Is(err, ErrInsufficientSettlementBalance) {
		t.Fatalf("expected ErrInsufficientSettlementBalance, got %v", err)
	}
	if got := q.QueueInfo(); got != 1 {
		t.Fatalf("expected head preserved, queue length 1, got %d", got)
	}
	status, _ := q.ObligationStatusOf(0)
	if status.Kind != StatusInQueue {
		t.Fatalf("expected status InQueue after failed settlement, got %+v", status)
	}

	if err := bank.Mint(settlement, types.Coins{types.NewCoin("uusdc", big.NewInt(110))}); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if err := q.SettleNextObligation(); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := q.QueueInfo(); got != 0 {
		t.Fatalf("expected queue drained, got length %d", got)
	}
	status, _ = q.ObligationStatusOf(0)
	if status.Kind != StatusProcessed {
		t.Fatalf("expected status Processed, got %+v", status)
	}
	if got := bank.Balance(recipient, "uusdc"); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected recipient balance 100, got %s", got)
	}
	if got := bank.Balance(settlement, "uusdc"); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected settlement account remainder 50, got %s", got)
	}
}

// TestSettleNextObligationOnEmptyQueue exercises the NoPendingObligations
// failure path.
func TestSettleNextObligationOnEmptyQueue(t *testing.T) {
	bank := accounts.NewMemBank()
	q := newTestQueue(t, mustAddr(t, "settlement"), bank)

	if err := q.SettleNextObligation(); !errors.Is(err, ErrNoPendingObligations) {
		t.Fatalf("expected ErrNoPendingObligations, got %v", err)
	}
}

// TestInvalidRecipientIsSwallowed covers the per-obligation validation
// failure path: a malformed recipient address is recorded as an Error
// status rather than rejected outright.
func TestInvalidRecipientIsSwallowed(t *testing.T) {
	bank := accounts.NewMemBank()
	q := newTestQueue(t, mustAddr(t, "settlement"), bank)

	err := q.RegisterObligation(RegisterObligationRequest{ID: 0, RecipientAddr: "not-a-bech32-address", PayoutAmount: big.NewInt(10)})
	if err != nil {
		t.Fatalf("expected invalid recipient to be swallowed, got %v", err)
	}
	status, ok := q.ObligationStatusOf(0)
	if !ok || status.Kind != StatusError {
		t.Fatalf("expected status(0) = Error(...), got %+v (ok=%v)", status, ok)
	}
	if q.QueueInfo() != 0 {
		t.Fatalf("expected nothing enqueued for an invalid recipient")
	}
}

type rejectingSource struct{}

func (rejectingSource) Quote(remainder *big.Int) (types.Coin, error) {
	return types.Coin{}, errors.New("unsupported denom")
}

// TestSupplementarySourceMisconfigurationIsFatal covers the other fatal
// registration error: a rejecting supplementary source aborts the
// registration instead of being swallowed.
func TestSupplementarySourceMisconfigurationIsFatal(t *testing.T) {
	bank := accounts.NewMemBank()
	owner := mustAddr(t, "owner")
	processor := mustAddr(t, "processor")
	cfg := Config{
		Denom:                          "uusdc",
		SettlementRatio:                types.Rational{Numerator: 1, Denominator: 2},
		SettlementAccount:              mustAddr(t, "settlement"),
		SupplementarySettlementSources: []SupplementarySource{rejectingSource{}},
	}
	lib, err := New(mustAddr(t, "clearingqueue"), owner, processor, nil, cfg, bank)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = lib.RegisterObligation(RegisterObligationRequest{ID: 0, RecipientAddr: mustAddr(t, "recipient").String(), PayoutAmount: big.NewInt(100)})
	if !errors.Is(err, ErrSupplementarySourceMisconfigured) {
		t.Fatalf("expected ErrSupplementarySourceMisconfigured, got %v", err)
	}
	if lib.latestID != nil {
		t.Fatalf("expected latest_id unchanged on fatal config error, got %v", lib.latestID)
	}
}
