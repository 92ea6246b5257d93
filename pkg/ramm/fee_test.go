package ramm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ramm-go/ramm/pkg/config"
	"github.com/ramm-go/ramm/pkg/kernel"
)

func mustDec(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := kernel.FromDecimalString(s)
	require.NoError(t, err)
	return v
}

func TestInBand(t *testing.T) {
	delta := mustDec(t, "0.25")

	cases := []struct {
		name  string
		ratio string
		want  bool
	}{
		{"equilibrium", "1.0", true},
		{"lower edge", "0.75", true},
		{"upper edge", "1.25", true},
		{"just below lower edge", "0.74", false},
		{"just above upper edge", "1.26", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := inBand(mustDec(t, c.ratio), delta)
			require.NoError(t, err)
			if got != c.want {
				t.Errorf("inBand(%s) = %v, want %v", c.ratio, got, c.want)
			}
		})
	}
}

func TestCheckSingleRatio(t *testing.T) {
	delta := mustDec(t, "0.25")

	cases := []struct {
		name     string
		pre, post string
		want     bool
	}{
		{"in band stays in band", "1.1", "1.2", true},
		{"in band leaves band", "1.1", "1.3", false},
		{"out of band enters band", "1.4", "1.2", true},
		{"out of band moves closer on same side", "1.5", "1.4", true},
		{"out of band moves further on same side", "1.4", "1.5", false},
		{"out of band crosses to the other side", "1.4", "0.6", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := checkSingleRatio(mustDec(t, c.pre), mustDec(t, c.post), delta)
			require.NoError(t, err)
			if got != c.want {
				t.Errorf("checkSingleRatio(%s, %s) = %v, want %v", c.pre, c.post, got, c.want)
			}
		})
	}
}

func TestCheckImbalanceRatiosRequiresBothLegs(t *testing.T) {
	delta := mustDec(t, "0.25")
	one := kernel.ONE()

	// Inbound leg fine, outbound leg leaves the band: rejected overall.
	ok, err := CheckImbalanceRatios(one, one, one, mustDec(t, "1.3"), delta)
	require.NoError(t, err)
	require.False(t, ok)

	// Both legs fine: accepted.
	ok, err = CheckImbalanceRatios(one, one, mustDec(t, "1.1"), mustDec(t, "0.9"), delta)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDynamicFeeAndLeverageAtEquilibrium(t *testing.T) {
	econ := config.Default()
	one := kernel.ONE()

	scaledFee, scaledLeverage, err := DynamicFeeAndLeverage(econ, one, one)
	require.NoError(t, err)

	if scaledFee.Cmp(econ.BaseFee) != 0 {
		t.Errorf("scaledFee at equilibrium = %s, want BaseFee %s", scaledFee.Dec(), econ.BaseFee.Dec())
	}
	if scaledLeverage.Cmp(econ.BaseLeverage) != 0 {
		t.Errorf("scaledLeverage at equilibrium = %s, want BaseLeverage %s", scaledLeverage.Dec(), econ.BaseLeverage.Dec())
	}
}

func TestDynamicFeeAndLeverageMonotonic(t *testing.T) {
	econ := config.Default()

	mild := mustDec(t, "1.1")
	severe := mustDec(t, "1.4")

	mildFee, mildLeverage, err := DynamicFeeAndLeverage(econ, mild, kernel.ONE())
	require.NoError(t, err)
	severeFee, severeLeverage, err := DynamicFeeAndLeverage(econ, severe, kernel.ONE())
	require.NoError(t, err)

	if severeFee.Cmp(mildFee) <= 0 {
		t.Errorf("expected fee to grow with imbalance, mild=%s severe=%s", mildFee.Dec(), severeFee.Dec())
	}
	if severeLeverage.Cmp(mildLeverage) >= 0 {
		t.Errorf("expected leverage to shrink with imbalance, mild=%s severe=%s", mildLeverage.Dec(), severeLeverage.Dec())
	}
	if severeFee.Cmp(kernel.ONE()) > 0 {
		t.Errorf("scaledFee must never exceed ONE, got %s", severeFee.Dec())
	}
	if severeLeverage.Cmp(kernel.ONE()) < 0 {
		t.Errorf("scaledLeverage must never drop below ONE, got %s", severeLeverage.Dec())
	}
}
