package config

import "fmt"

const maxBasisPoints = 10_000

// ValidateConfig checks the runtime policy knobs loaded from a
// BootstrapConfig's Global section.
func ValidateConfig(g Global) error {
	if g.Processor.TickRatePerSecond <= 0 {
		return fmt.Errorf("processor: tick_rate_per_second must be positive")
	}
	if g.Processor.TickBurst <= 0 {
		return fmt.Errorf("processor: tick_burst must be positive")
	}
	if g.Authorization.DefaultMaxConcurrent == 0 {
		return fmt.Errorf("authorization: default_max_concurrent must be positive")
	}
	if g.ClearingQueue.Denom == "" {
		return fmt.Errorf("clearingqueue: denom is required")
	}
	if g.ClearingQueue.SettlementRatioBPS == 0 || g.ClearingQueue.SettlementRatioBPS > maxBasisPoints {
		return fmt.Errorf("clearingqueue: settlement_ratio_bps must be in (0, %d]", maxBasisPoints)
	}
	return nil
}
