// Package config loads per-pool economic parameters. Trade-economics
// constants (fees, leverage, imbalance tolerance) are treated as a
// per-pool configuration value rather than a package-level constant, so
// every RAMM pool carries its own PoolEconomics instead of sharing global
// defaults.
package config

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/viper"

	"github.com/ramm-go/ramm/pkg/kernel"
)

// PoolEconomics holds the trade-economics constants for one pool. All
// fields are kernel fixed-point values (value * 10^PrecisionDecimalPlaces)
// except TauSeconds and OracleStaleSeconds.
type PoolEconomics struct {
	BaseFee             *uint256.Int
	ProtocolFee         *uint256.Int
	BaseLeverage        *uint256.Int
	BaseWithdrawalFee   *uint256.Int
	Delta               *uint256.Int
	Mu                  *uint256.Int
	TauSeconds          int64
	OracleStaleSeconds  int64

	// FeeSensitivity and LeverageSensitivity scale how sharply the dynamic
	// fee grows, and leverage shrinks, as imbalance ratios drift from 1.
	// These are the tunable coefficients of the linear-in-deviation
	// dynamic-fee formula (see DESIGN.md for the derivation).
	FeeSensitivity      *uint256.Int
	LeverageSensitivity *uint256.Int
}

// Default returns the protocol's baseline economic parameters.
func Default() PoolEconomics {
	return PoolEconomics{
		BaseFee:            mustDecimal("0.001"),
		ProtocolFee:        mustDecimal("0.30"),
		BaseLeverage:       mustDecimal("100"),
		BaseWithdrawalFee:  mustDecimal("0.004"),
		Delta:              mustDecimal("0.25"),
		Mu:                 mustDecimal("0.05"),
		TauSeconds:         300,
		OracleStaleSeconds: 3600,
		FeeSensitivity:     mustDecimal("2.0"),
		LeverageSensitivity: mustDecimal("1.0"),
	}
}

func mustDecimal(s string) *uint256.Int {
	v, err := kernel.FromDecimalString(s)
	if err != nil {
		panic(fmt.Sprintf("config: invalid built-in constant %q: %v", s, err))
	}
	return v
}

// LoadFromFile overlays values found in a YAML/TOML/JSON file at path on
// top of Default(), following the scoped-viper-instance pattern used for
// node telemetry configuration elsewhere in the corpus: a fresh
// viper.New() per file so loading a pool config never pollutes global
// viper state shared by other pools or the CLI harness.
func LoadFromFile(path string) (PoolEconomics, error) {
	econ := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return PoolEconomics{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	overlay := func(key string, dst **uint256.Int) error {
		if !v.IsSet(key) {
			return nil
		}
		parsed, err := kernel.FromDecimalString(v.GetString(key))
		if err != nil {
			return fmt.Errorf("config: parsing %s: %w", key, err)
		}
		*dst = parsed
		return nil
	}

	if err := overlay("base_fee", &econ.BaseFee); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("protocol_fee", &econ.ProtocolFee); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("base_leverage", &econ.BaseLeverage); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("base_withdrawal_fee", &econ.BaseWithdrawalFee); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("delta", &econ.Delta); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("mu", &econ.Mu); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("fee_sensitivity", &econ.FeeSensitivity); err != nil {
		return PoolEconomics{}, err
	}
	if err := overlay("leverage_sensitivity", &econ.LeverageSensitivity); err != nil {
		return PoolEconomics{}, err
	}

	if v.IsSet("tau_seconds") {
		econ.TauSeconds = v.GetInt64("tau_seconds")
	}
	if v.IsSet("oracle_stale_seconds") {
		econ.OracleStaleSeconds = v.GetInt64("oracle_stale_seconds")
	}

	return econ, nil
}
