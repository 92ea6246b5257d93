package ramm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const tauMillisTest = 300_000 // TauSeconds=300 (config.Default) in milliseconds

// TestVolatilityUpdateScenario pins the worked example: a prior observation
// of 1050, a fresh vol_param of 0.05 set 15s before the new observation
// (itself one TAU after the prior price), and a new price of 945. Everything
// is offset by epochStart rather than starting at t=0, since this
// implementation reserves timestamp 0 as the "no prior observation yet"
// bootstrap sentinel (see DESIGN.md). The price moved 10%, which exceeds
// the still-fresh vol_param, so the fee charged is the fresh candidate
// (0.10) and vol_param/vol_ts both advance to it.
func TestVolatilityUpdateScenario(t *testing.T) {
	const epochStart = 1_000
	tsNew := epochStart + tauMillisTest

	vs := volatilityState{
		prevPrice:   mustDec(t, "1050"),
		prevPriceTS: epochStart,
		volParam:    mustDec(t, "0.05"),
		volTS:       tsNew - 15_000,
	}

	fee, next, err := volatilityUpdate(vs, mustDec(t, "945"), tsNew, tauMillisTest)
	require.NoError(t, err)

	want := mustDec(t, "0.1")
	if fee.Cmp(want) != 0 {
		t.Errorf("fee = %s, want %s", fee.Dec(), want.Dec())
	}
	if next.volParam.Cmp(want) != 0 {
		t.Errorf("next.volParam = %s, want %s", next.volParam.Dec(), want.Dec())
	}
	if next.volTS != tsNew {
		t.Errorf("next.volTS = %d, want %d", next.volTS, tsNew)
	}
	if next.prevPrice.Cmp(mustDec(t, "945")) != 0 {
		t.Errorf("next.prevPrice = %s, want 945", next.prevPrice.Dec())
	}
}

func TestVolatilityUpdateBootstrap(t *testing.T) {
	vs := zeroVolatilityState()

	fee, next, err := volatilityUpdate(vs, mustDec(t, "1050"), 5_000, tauMillisTest)
	require.NoError(t, err)

	if !fee.IsZero() {
		t.Errorf("bootstrap fee = %s, want 0", fee.Dec())
	}
	if next.prevPriceTS != 5_000 {
		t.Errorf("bootstrap prevPriceTS = %d, want 5000", next.prevPriceTS)
	}
	if next.prevPrice.Cmp(mustDec(t, "1050")) != 0 {
		t.Errorf("bootstrap prevPrice = %s, want 1050", next.prevPrice.Dec())
	}
}

func TestVolatilityUpdateStalePriceNoFee(t *testing.T) {
	vs := volatilityState{
		prevPrice:   mustDec(t, "1050"),
		prevPriceTS: 1_000,
		volParam:    mustDec(t, "0.05"),
		volTS:       1_000,
	}

	fee, next, err := volatilityUpdate(vs, mustDec(t, "945"), 1_000+tauMillisTest+1, tauMillisTest)
	require.NoError(t, err)

	if !fee.IsZero() {
		t.Errorf("stale-price fee = %s, want 0", fee.Dec())
	}
	if next.prevPriceTS != 1_000 {
		t.Errorf("stale-price update must leave state untouched, got prevPriceTS=%d", next.prevPriceTS)
	}
}

func TestVolatilityUpdateStaleVolParamResets(t *testing.T) {
	vs := volatilityState{
		prevPrice:   mustDec(t, "1050"),
		prevPriceTS: 1_000,
		volParam:    mustDec(t, "0.2"),
		volTS:       0, // never set within this window -> treated as stale
	}

	fee, next, err := volatilityUpdate(vs, mustDec(t, "945"), 1_000+tauMillisTest, tauMillisTest)
	require.NoError(t, err)

	// The fee charged this call is the old (now-stale) vol_param...
	if fee.Cmp(mustDec(t, "0.2")) != 0 {
		t.Errorf("fee = %s, want stale vol_param 0.2", fee.Dec())
	}
	// ...but the stored vol_param resets to the freshly observed candidate.
	if next.volParam.Cmp(mustDec(t, "0.1")) != 0 {
		t.Errorf("next.volParam = %s, want fresh candidate 0.1", next.volParam.Dec())
	}
}

func TestPeekVolatilityDoesNotMutatePool(t *testing.T) {
	p, prices := newThreeAssetPool(t)
	before := p.assets[0].volatility

	kp, err := kernelPriceOf(prices[0].PriceScaled, prices[0].FactorPrice)
	require.NoError(t, err)
	_, err = p.peekVolatility(0, kp, 2_000_000)
	require.NoError(t, err)

	after := p.assets[0].volatility
	if before.prevPriceTS != after.prevPriceTS {
		t.Errorf("peekVolatility must not mutate pool state; prevPriceTS changed from %d to %d",
			before.prevPriceTS, after.prevPriceTS)
	}
}
