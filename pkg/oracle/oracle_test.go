package oracle

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ramm-go/ramm/pkg/errs"
)

type fakeFeed struct {
	asset           string
	mantissa        *big.Int
	scale           uint8
	negative        bool
	timestampMillis int64
	err             error
}

func (f fakeFeed) PriceAt(now time.Time) (*big.Int, uint8, bool, int64, error) {
	return f.mantissa, f.scale, f.negative, f.timestampMillis, f.err
}

func (f fakeFeed) Asset() string { return f.asset }

func TestNormalizeHappyPath(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	feed := fakeFeed{
		asset:           "ETH",
		mantissa:        big.NewInt(180000), // 1.8 at scale 5
		scale:           5,
		timestampMillis: now.UnixMilli() - 1000,
	}

	reading, err := Normalize[string](feed, "ETH", now)
	require.NoError(t, err)

	// factor_price = 10^(12-5) = 10^7; price_scaled * factor_price should
	// equal 1.8 in kernel units (1.8 * 10^12 = 1_800_000_000_000).
	kernelPrice := new(big.Int).Mul(reading.PriceScaled.ToBig(), reading.FactorPrice.ToBig())
	require.Equal(t, "1800000000000", kernelPrice.String())
}

func TestNormalizeRejectsWrongAsset(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	feed := fakeFeed{asset: "ETH", mantissa: big.NewInt(1), scale: 0, timestampMillis: now.UnixMilli()}

	_, err := Normalize[string](feed, "MATIC", now)
	require.ErrorIs(t, err, errs.ErrInvalidAggregator)
}

func TestNormalizeRejectsNegative(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	feed := fakeFeed{asset: "ETH", mantissa: big.NewInt(5), scale: 0, negative: true, timestampMillis: now.UnixMilli()}

	_, err := Normalize[string](feed, "ETH", now)
	require.ErrorIs(t, err, errs.ErrNegativeSbD)
}

func TestNormalizeRejectsStale(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	feed := fakeFeed{
		asset:           "ETH",
		mantissa:        big.NewInt(180000),
		scale:           5,
		timestampMillis: now.UnixMilli() - StalenessWindowMillis - 1,
	}

	_, err := Normalize[string](feed, "ETH", now)
	require.ErrorIs(t, err, errs.ErrStalePrice)
}

func TestNormalizeAcceptsAtStalenessBoundary(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	feed := fakeFeed{
		asset:           "ETH",
		mantissa:        big.NewInt(180000),
		scale:           5,
		timestampMillis: now.UnixMilli() - StalenessWindowMillis,
	}

	_, err := Normalize[string](feed, "ETH", now)
	require.NoError(t, err)
}

func TestNormalizeRejectsScaleAboveKernelPrecision(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	feed := fakeFeed{
		asset:           "ETH",
		mantissa:        big.NewInt(180000),
		scale:           13,
		timestampMillis: now.UnixMilli(),
	}

	_, err := Normalize[string](feed, "ETH", now)
	require.ErrorIs(t, err, errs.ErrInvalidAggregator)
}
