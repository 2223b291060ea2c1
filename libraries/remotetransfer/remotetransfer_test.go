package remotetransfer

import (
	"errors"
	"math/big"
	"testing"

	"valence/accounts"
	"valence/core/types"
	"valence/libraries"
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

type fakeTransport struct {
	calls []types.Coin
}

func (f *fakeTransport) SendRemote(cfg Config, amount types.Coin) (string, error) {
	f.calls = append(f.calls, amount)
	return "ticket-1", nil
}

func TestRemoteTransferFixedAmount(t *testing.T) {
	input := mustAddr(t, "input")
	processor := mustAddr(t, "processor")
	owner := mustAddr(t, "owner")

	bank := accounts.NewMemBank()
	if err := bank.Mint(input, types.Coins{types.NewCoin("uusdc", big.NewInt(500))}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	transport := &fakeTransport{}

	cfg := Config{
		Transport: TransportCCTP,
		Input:     input,
		Output:    "noble1recipient",
		Denom:     "uusdc",
		Amount:    Amount{Kind: AmountFixed, Fixed: big.NewInt(300)},
	}
	lib, err := New(mustAddr(t, "remotetransfer"), owner, processor, nil, cfg, bank, transport)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "transfer"}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := bank.Balance(input, "uusdc"); got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected remaining balance 200, got %s", got)
	}
	if len(transport.calls) != 1 || transport.calls[0].Amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected transport to receive one call moving 300, got %+v", transport.calls)
	}
}

func TestRemoteTransferFixedAmountInsufficientBalance(t *testing.T) {
	input := mustAddr(t, "input")
	processor := mustAddr(t, "processor")
	owner := mustAddr(t, "owner")

	bank := accounts.NewMemBank()
	if err := bank.Mint(input, types.Coins{types.NewCoin("uusdc", big.NewInt(100))}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	transport := &fakeTransport{}

	cfg := Config{
		Transport: TransportIBC,
		Input:     input,
		Output:    "osmo1recipient",
		Denom:     "uusdc",
		Amount:    Amount{Kind: AmountFixed, Fixed: big.NewInt(300)},
	}
	lib, err := New(mustAddr(t, "remotetransfer"), owner, processor, nil, cfg, bank, transport)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "transfer"}); err == nil {
		t.Fatalf("expected insufficient balance error")
	}
	if len(transport.calls) != 0 {
		t.Fatalf("expected no transport call on failed transfer, got %+v", transport.calls)
	}
}

func TestRemoteTransferFullAmountEmptyBalanceSucceedsWithZero(t *testing.T) {
	input := mustAddr(t, "input")
	processor := mustAddr(t, "processor")
	owner := mustAddr(t, "owner")

	bank := accounts.NewMemBank()
	transport := &fakeTransport{}

	cfg := Config{
		Transport: TransportStandardBridge,
		Input:     input,
		Output:    "0xRecipient",
		Denom:     "weth",
		Amount:    Amount{Kind: AmountFull, AllowZeroFull: true},
	}
	lib, err := New(mustAddr(t, "remotetransfer"), owner, processor, nil, cfg, bank, transport)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "transfer"}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(transport.calls) != 0 {
		t.Fatalf("expected no transport call for a zero-amount full transfer, got %+v", transport.calls)
	}
}

func TestRemoteTransferFullAmountEmptyBalanceFailsWhenNotAllowed(t *testing.T) {
	input := mustAddr(t, "input")
	processor := mustAddr(t, "processor")
	owner := mustAddr(t, "owner")

	bank := accounts.NewMemBank()
	transport := &fakeTransport{}

	cfg := Config{
		Transport: TransportHyperlaneEureka,
		Input:     input,
		Output:    "eureka1recipient",
		Denom:     "weth",
		Amount:    Amount{Kind: AmountFull, AllowZeroFull: false},
	}
	lib, err := New(mustAddr(t, "remotetransfer"), owner, processor, nil, cfg, bank, transport)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "transfer"}); err == nil {
		t.Fatalf("expected error on empty balance with AllowZeroFull=false")
	}
}

func TestRemoteTransferRejectsNonProcessorSender(t *testing.T) {
	input := mustAddr(t, "input")
	processor := mustAddr(t, "processor")
	owner := mustAddr(t, "owner")
	bank := accounts.NewMemBank()
	transport := &fakeTransport{}

	cfg := Config{
		Transport: TransportIBC,
		Input:     input,
		Output:    "osmo1recipient",
		Denom:     "uusdc",
		Amount:    Amount{Kind: AmountFull, AllowZeroFull: true},
	}
	lib, err := New(mustAddr(t, "remotetransfer"), owner, processor, nil, cfg, bank, transport)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = lib.ProcessFunction(owner, libraries.FunctionCall{Name: "transfer"})
	if !errors.Is(err, libraries.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
