package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads a BootstrapConfig from path, writing and returning a default
// descriptor if no file exists there yet.
func Load(path string) (*BootstrapConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &BootstrapConfig{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg.Global); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createDefault writes and returns a single-home-domain bootstrap
// descriptor, suitable for the cmd/valenced demo wiring.
func createDefault(path string) (*BootstrapConfig, error) {
	cfg := &BootstrapConfig{
		DataDir:    "./valence-data",
		HomeDomain: DomainSpec{Name: "neutron", Bech32Prefix: "neutron", ExecutionEnvironment: "cosmwasm", EncoderVersion: "v1"},
		ExternalDomains: []DomainSpec{
			{Name: "osmosis", Bech32Prefix: "osmo", ExecutionEnvironment: "cosmwasm", EncoderVersion: "v1"},
		},
		Global: Global{
			Processor:     Processor{TickRatePerSecond: 10, TickBurst: 5},
			Authorization: Authorization{DefaultMaxConcurrent: 4},
			ClearingQueue: ClearingQueue{Denom: "untrn", SettlementRatioBPS: maxBasisPoints},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
