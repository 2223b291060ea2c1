package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valenced.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}

	if cfg.HomeDomain.Name != "neutron" {
		t.Fatalf("unexpected home domain: %+v", cfg.HomeDomain)
	}
	if len(cfg.ExternalDomains) != 1 || cfg.ExternalDomains[0].Name != "osmosis" {
		t.Fatalf("unexpected external domains: %+v", cfg.ExternalDomains)
	}
	if cfg.Global.Processor.TickRatePerSecond != 10 || cfg.Global.Processor.TickBurst != 5 {
		t.Fatalf("unexpected processor defaults: %+v", cfg.Global.Processor)
	}
	if cfg.Global.Authorization.DefaultMaxConcurrent != 4 {
		t.Fatalf("unexpected authorization default: %+v", cfg.Global.Authorization)
	}
	if cfg.Global.ClearingQueue.Denom != "untrn" {
		t.Fatalf("unexpected clearing queue denom: %s", cfg.Global.ClearingQueue.Denom)
	}
	if cfg.Global.ClearingQueue.SettlementRatioBPS != maxBasisPoints {
		t.Fatalf("unexpected settlement ratio: %d", cfg.Global.ClearingQueue.SettlementRatioBPS)
	}
}

func TestLoadRoundTripsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valenced.toml")
	contents := `DataDir = "./data"

[HomeDomain]
Name = "neutron"
Bech32Prefix = "neutron"
ExecutionEnvironment = "cosmwasm"
EncoderVersion = "v1"

[[ExternalDomains]]
Name = "ethereum"
Bech32Prefix = ""
ExecutionEnvironment = "evm"
EncoderVersion = "v1"

[Global.Processor]
TickRatePerSecond = 25.5
TickBurst = 8

[Global.Authorization]
DefaultMaxConcurrent = 2

[Global.ClearingQueue]
Denom = "uosmo"
SettlementRatioBPS = 9500
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.DataDir != "./data" {
		t.Fatalf("unexpected data dir: %s", cfg.DataDir)
	}
	if cfg.HomeDomain.ExecutionEnvironment != "cosmwasm" {
		t.Fatalf("unexpected home domain: %+v", cfg.HomeDomain)
	}
	if len(cfg.ExternalDomains) != 1 || cfg.ExternalDomains[0].ExecutionEnvironment != "evm" {
		t.Fatalf("unexpected external domains: %+v", cfg.ExternalDomains)
	}
	if cfg.Global.Processor.TickRatePerSecond != 25.5 || cfg.Global.Processor.TickBurst != 8 {
		t.Fatalf("unexpected processor policy: %+v", cfg.Global.Processor)
	}
	if cfg.Global.Authorization.DefaultMaxConcurrent != 2 {
		t.Fatalf("unexpected authorization policy: %+v", cfg.Global.Authorization)
	}
	if cfg.Global.ClearingQueue.Denom != "uosmo" || cfg.Global.ClearingQueue.SettlementRatioBPS != 9500 {
		t.Fatalf("unexpected clearing queue policy: %+v", cfg.Global.ClearingQueue)
	}
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valenced.toml")
	contents := `DataDir = "./data"

[HomeDomain]
Name = "neutron"

[Global.Processor]
TickRatePerSecond = 0
TickBurst = 5

[Global.Authorization]
DefaultMaxConcurrent = 1

[Global.ClearingQueue]
Denom = "untrn"
SettlementRatioBPS = 10000
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for non-positive tick rate")
	}
}

func TestValidateConfigChecksEachField(t *testing.T) {
	base := Global{
		Processor:     Processor{TickRatePerSecond: 10, TickBurst: 5},
		Authorization: Authorization{DefaultMaxConcurrent: 1},
		ClearingQueue: ClearingQueue{Denom: "untrn", SettlementRatioBPS: 10_000},
	}
	if err := ValidateConfig(base); err != nil {
		t.Fatalf("expected base config to be valid: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(g *Global)
	}{
		{"tick rate", func(g *Global) { g.Processor.TickRatePerSecond = 0 }},
		{"tick burst", func(g *Global) { g.Processor.TickBurst = 0 }},
		{"max concurrent", func(g *Global) { g.Authorization.DefaultMaxConcurrent = 0 }},
		{"denom", func(g *Global) { g.ClearingQueue.Denom = "" }},
		{"ratio zero", func(g *Global) { g.ClearingQueue.SettlementRatioBPS = 0 }},
		{"ratio overflow", func(g *Global) { g.ClearingQueue.SettlementRatioBPS = maxBasisPoints + 1 }},
	}
	for _, tc := range cases {
		g := base
		tc.mutate(&g)
		if err := ValidateConfig(g); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
