// Command ramm-harness drives a RAMM pool through a scripted sequence of
// operations and prints the resulting state, for manual inspection of the
// pricing/fee/volatility engine outside of the unit test suite.
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/ramm-go/ramm/pkg/config"
	"github.com/ramm-go/ramm/pkg/kernel"
	"github.com/ramm-go/ramm/pkg/obslog"
	"github.com/ramm-go/ramm/pkg/oracle"
	"github.com/ramm-go/ramm/pkg/ramm"
)

var log = obslog.ForComponent("ramm-harness")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "ramm-harness",
		Short: "Replay scripted operations against an in-memory RAMM pool",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Build a 3-asset ETH/MATIC/USDT pool and replay a trade/deposit/withdraw/collect-fees sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			econ := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFromFile(configPath)
				if err != nil {
					return err
				}
				econ = loaded
			}
			return runScenario(econ)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a pool economics config file (YAML/TOML/JSON)")

	root.AddCommand(runCmd)
	return root
}

func runScenario(econ config.PoolEconomics) error {
	admin := ramm.AdminID(common.HexToAddress("0x000000000000000000000000000000000000A1"))
	pool := ramm.NewPool("eth-matic-usdt", admin, econ)
	cap := ramm.NewAssetCap{PoolID: pool.ID()}

	minTrade := rawUnits6("0.0001")
	eth, err := pool.AddAsset(cap, descriptor(1, "ETH"), minTrade, 6)
	if err != nil {
		return err
	}
	matic, err := pool.AddAsset(cap, descriptor(2, "MATIC"), minTrade, 6)
	if err != nil {
		return err
	}
	usdt, err := pool.AddAsset(cap, descriptor(3, "USDT"), minTrade, 6)
	if err != nil {
		return err
	}
	if err := pool.Initialize(cap); err != nil {
		return err
	}

	prices := []oracle.Reading{
		price("1800"),
		price("1.2"),
		price("1"),
	}

	now := int64(1_700_000_000_000)
	if _, err := pool.LiquidityDeposit(eth, rawUnits6("200"), prices, now); err != nil {
		return fmt.Errorf("seeding eth: %w", err)
	}
	if _, err := pool.LiquidityDeposit(matic, rawUnits6("200000"), prices, now); err != nil {
		return fmt.Errorf("seeding matic: %w", err)
	}
	if _, err := pool.LiquidityDeposit(usdt, rawUnits6("400000"), prices, now); err != nil {
		return fmt.Errorf("seeding usdt: %w", err)
	}

	snapshot, err := pool.ImbalanceRatiosEvent(prices)
	if err != nil {
		return err
	}
	log.Info().Int("asset_count", len(snapshot.Weight)).Msg("seeded pool")

	ao, err := pool.TradeAmountIn(eth, usdt, rawUnits6("1"), uint256.NewInt(0), prices, now+100_000)
	if err != nil {
		return fmt.Errorf("trade_amount_in: %w", err)
	}
	log.Info().Str("amount_out", ao.Dec()).Msg("trade_amount_in(ETH -> USDT, 1 ETH) settled")

	minted, err := pool.LiquidityDeposit(matic, rawUnits6("1000"), prices, now+200_000)
	if err != nil {
		return fmt.Errorf("liquidity_deposit: %w", err)
	}
	log.Info().Str("lp_minted", minted.Dec()).Msg("liquidity_deposit(MATIC, 1000) settled")

	payouts, fees, err := pool.LiquidityWithdrawal(matic, minted, prices, now+300_000)
	if err != nil {
		return fmt.Errorf("liquidity_withdrawal: %w", err)
	}
	log.Info().Str("payout", payouts[matic].Dec()).Str("fee", fees[matic].Dec()).Msg("liquidity_withdrawal(MATIC) settled")

	collected, err := pool.CollectFees(ramm.AdminCap{PoolID: pool.ID(), AdminID: admin})
	if err != nil {
		return fmt.Errorf("collect_fees: %w", err)
	}
	for i, c := range collected {
		log.Info().Int("asset_index", i).Str("collected", c.Dec()).Msg("collect_fees settled")
	}

	return nil
}

func descriptor(seed int64, symbol string) ramm.AssetDescriptor {
	addr := common.BigToAddress(big.NewInt(seed))
	d, err := ramm.NewAssetDescriptor(addr, 6, symbol)
	if err != nil {
		panic(err)
	}
	return d
}

func rawUnits6(whole string) *uint256.Int {
	scaled, err := kernel.FromDecimalString(whole)
	if err != nil {
		panic(err)
	}
	// kernel.FromDecimalString returns a value*10^12 fixed-point number;
	// this pool's assets are configured at 6 decimals, so raw units are
	// value*10^6 = (value*10^12) / 10^6.
	divisor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(6))
	return new(uint256.Int).Div(scaled, divisor)
}

func price(s string) oracle.Reading {
	scaled, err := kernel.FromDecimalString(s)
	if err != nil {
		panic(err)
	}
	return oracle.Reading{PriceScaled: scaled, FactorPrice: uint256.NewInt(1)}
}
