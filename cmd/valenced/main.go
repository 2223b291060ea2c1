// Command valenced is a minimal demo wiring binary: it assembles one home
// domain's full Valence stack (accounts, a forwarder library, the
// Authorization contract, the full processor, the bridge adapter and one
// external domain binding) from a BootstrapConfig, runs one SendMsgs /
// Tick / ack round trip, and exits. It is not a production CLI; flag
// parsing and process wiring follow cmd/nhb's layout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"valence/accounts"
	"valence/authorization"
	"valence/bridge"
	"valence/config"
	"valence/core/events"
	"valence/core/types"
	"valence/crypto"
	"valence/libraries"
	"valence/libraries/forwarder"
	"valence/observability/logging"
	"valence/observability/metrics"
	"valence/observability/otel"
	"valence/processor"
	"valence/storage"
	"valence/zkgateway"
)

func main() {
	configFile := flag.String("config", "./valenced.toml", "Path to the bootstrap config file")
	enableOtel := flag.Bool("otel", false, "Export traces/metrics via OTLP instead of running offline")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("VALENCE_ENV"))
	logger := logging.Setup("valenced", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	if *enableOtel {
		shutdown, err := otel.Init(ctx, otel.Config{
			ServiceName: "valenced",
			Environment: env,
			Traces:      true,
			Metrics:     true,
		})
		if err != nil {
			logger.Error("failed to init telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	snapshots := storage.NewSnapshotStore(db)

	homePrefix := types.DomainPrefix(cfg.HomeDomain.Bech32Prefix)
	owner := mustAddress(homePrefix, "owner")
	admin := mustAddress(homePrefix, "processor-admin")
	forwarderAddr := mustAddress(homePrefix, "forwarder")
	forwarderInput := mustAddress(homePrefix, "treasury")
	forwarderOutput := mustAddress(homePrefix, "payout")

	bank := accounts.NewMemBank()
	if err := bank.Mint(forwarderInput, types.Coins{types.NewCoin(cfg.Global.ClearingQueue.Denom, big.NewInt(1_000_000))}); err != nil {
		logger.Error("failed to seed treasury balance", slog.Any("error", err))
		os.Exit(1)
	}

	fwd, err := forwarder.New(forwarderAddr, owner, admin, nil, forwarder.Config{
		Input:  forwarderInput,
		Output: forwarderOutput,
		Forwardings: []forwarder.ForwardingConfig{
			{Denom: cfg.Global.ClearingQueue.Denom, MaxAmount: big.NewInt(10_000)},
		},
	}, bank)
	if err != nil {
		logger.Error("failed to construct forwarder library", slog.Any("error", err))
		os.Exit(1)
	}

	recorder := metrics.EventRecorder{Domain: cfg.HomeDomain.Name, Metrics: metrics.Valence()}
	collector := &events.CollectingEmitter{}
	fanout := fanoutEmitter{recorder, collector}

	dispatcher := &libraryRouter{libraries: map[string]libraries.Library{
		forwarderAddr.String(): fwd,
	}}

	callback := &callbackProxy{}
	fullProcessor := processor.NewFull(cfg.HomeDomain.Name, admin, dispatcher, callback, 10, 5)
	fullProcessor.SetEmitter(fanout)

	encoders := bridge.NewEncoderRegistry()
	encoders.Register(bridge.EncoderKey{ExecutionEnvironment: "cosmwasm", Version: "v1"}, bridge.CosmWasmEncoder{})
	encoders.Register(bridge.EncoderKey{ExecutionEnvironment: "evm", Version: "v1"}, bridge.EVMEncoder{})

	transport := &loopbackTransport{}
	adapter := bridge.NewAdapter(encoders, transport, callback, fanout)

	for _, ext := range cfg.ExternalDomains {
		binding := bridge.DomainBinding{
			Encoder: bridge.EncoderKey{ExecutionEnvironment: ext.ExecutionEnvironment, Version: ext.EncoderVersion},
		}
		if ext.ExecutionEnvironment == "evm" {
			keyPath := filepath.Join(cfg.DataDir, fmt.Sprintf("%s.keystore", ext.Name))
			passphrase := keystorePassphrase()
			logger.Info("provisioning operator key", slog.String("domain", ext.Name), logging.MaskField("passphrase", passphrase))
			operatorKey, err := loadOrCreateOperatorKey(keyPath, passphrase)
			if err != nil {
				logger.Error("failed to provision external domain operator key", slog.String("domain", ext.Name), slog.Any("error", err))
				os.Exit(1)
			}
			binding.ProcessorAddr = operatorKey.PubKey().EVMAddress().Hex()
		} else {
			binding.ProcessorAddr = mustAddress(types.DomainPrefix(ext.Bech32Prefix), "processor").String()
		}
		adapter.RegisterDomain(ext.Name, binding)
		transport.register(ext.Name, ext.ExecutionEnvironment, encoders)
	}

	gateway := zkgateway.NewMemGateway()
	authContract := authorization.New(owner, cfg.HomeDomain.Name, fullProcessor, adapter, gateway, bank)
	authContract.SetEmitter(fanout)
	callback.target = authContract

	if err := authContract.CreateAuthorizations(owner, authorization.AuthorizationRecord{
		Label:     "daily-forward",
		Enabled:   true,
		Priority:  bridge.PriorityHigh,
		Admission: authorization.Admission{Kind: authorization.AdmissionPermissionless},
		Subroutine: authorization.Subroutine{
			Atomic: true,
			Functions: []authorization.FunctionDescriptor{
				{MessageType: "forwarder.Forward", LibraryAddress: forwarderAddr.String(), FunctionName: "forward"},
			},
		},
	}); err != nil {
		logger.Error("failed to create authorization record", slog.Any("error", err))
		os.Exit(1)
	}

	executionID, err := authContract.SendMsgs(owner, authorization.SendMsgsRequest{
		Label:    "daily-forward",
		Messages: []authorization.Message{{MessageType: "forwarder.Forward"}},
		TTL:      bridge.TTL{Kind: bridge.TTLHeight, Value: 1000},
	})
	if err != nil {
		logger.Error("failed to admit SendMsgs", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("admitted execution", slog.Uint64("execution_id", executionID))

	if err := fullProcessor.Tick(processor.Clock{Height: 1, Time: time.Now().Unix()}); err != nil {
		logger.Error("tick failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := snapshots.SaveJSON("demo/last-run", map[string]any{
		"home_domain":  cfg.HomeDomain.Name,
		"execution_id": executionID,
	}); err != nil {
		logger.Error("failed to persist snapshot", slog.Any("error", err))
		os.Exit(1)
	}

	for _, e := range collector.Events {
		logger.Info("event", slog.String("type", e.EventType()))
	}
}

func mustAddress(prefix types.DomainPrefix, seed string) types.Address {
	b := make([]byte, 20)
	copy(b, seed)
	addr, err := types.NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

const keystorePassphraseEnv = "VALENCE_KEYSTORE_PASS"

// keystorePassphrase resolves the operator keystore passphrase from the
// environment, falling back to a fixed demo value so the binary still
// runs standalone; a real deployment always sets VALENCE_KEYSTORE_PASS.
func keystorePassphrase() string {
	if v, ok := os.LookupEnv(keystorePassphraseEnv); ok && v != "" {
		return v
	}
	return "valenced-demo"
}

func loadOrCreateOperatorKey(path, passphrase string) (*crypto.PrivateKey, error) {
	if passphrase == "" {
		passphrase = "valenced-demo"
	}
	if _, err := os.Stat(path); err == nil {
		return crypto.LoadFromKeystore(path, passphrase)
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	if err := crypto.SaveToKeystore(path, key, passphrase); err != nil {
		return nil, err
	}
	return key, nil
}

// fanoutEmitter broadcasts one event to every wrapped emitter.
type fanoutEmitter []events.Emitter

func (f fanoutEmitter) Emit(e events.Event) {
	for _, emitter := range f {
		emitter.Emit(e)
	}
}

// libraryRouter resolves a bridge.Message's library address to a concrete
// Library instance and dispatches ProcessFunction on the home processor's
// behalf. It passes only the function name and an exec context:
// msg.Payload is not decoded into FunctionCall.Args.
type libraryRouter struct {
	libraries map[string]libraries.Library
}

func (r *libraryRouter) Dispatch(msg bridge.Message) error {
	lib, ok := r.libraries[msg.LibraryAddress]
	if !ok {
		return fmt.Errorf("valenced: no library registered at %s", msg.LibraryAddress)
	}
	return lib.ProcessFunction(lib.Processor(), libraries.FunctionCall{
		Name: msg.FunctionName,
		Ctx:  libraries.ExecContext{Height: 1, Time: time.Now()},
	})
}

// callbackProxy breaks the construction cycle between the processor
// (which needs a router at construction) and the Authorization contract
// (which needs the already-constructed processor): the processor is given
// this proxy, and target is set once the contract exists.
type callbackProxy struct {
	target bridge.CallbackRouter
}

func (p *callbackProxy) RouteCallback(executionID uint64, outcome bridge.Outcome) {
	if p.target == nil {
		return
	}
	p.target.RouteCallback(executionID, outcome)
}

// loopbackTransport hands dispatched bytes straight to a registered
// encoder's Decode so the demo can run without a real IBC relayer or
// CCTP-style attestation service; it never interprets the decoded
// envelope beyond handing it back to the caller for a synchronous ack.
type loopbackTransport struct {
	encoders map[string]bridge.Encoder
}

func (t *loopbackTransport) register(domain, executionEnvironment string, registry *bridge.EncoderRegistry) {
	if t.encoders == nil {
		t.encoders = make(map[string]bridge.Encoder)
	}
	enc, err := registry.Get(bridge.EncoderKey{ExecutionEnvironment: executionEnvironment, Version: "v1"})
	if err == nil {
		t.encoders[domain] = enc
	}
}

func (t *loopbackTransport) Send(externalDomain string, payload []byte) (string, error) {
	if enc, ok := t.encoders[externalDomain]; ok {
		if _, err := enc.Decode(payload); err != nil {
			return "", fmt.Errorf("valenced: loopback decode: %w", err)
		}
	}
	return uuid.NewString(), nil
}
