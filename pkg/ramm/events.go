package ramm

import (
	"github.com/ramm-go/ramm/pkg/obslog"
	"github.com/ramm-go/ramm/pkg/oracle"
)

var eventLog = obslog.ForComponent("imbalance-ratios-event")

// ImbalanceRatiosEvent is a pure read that snapshots current weights and
// imbalance ratios and emits them as a structured log line, without
// mutating pool or volatility state.
func (p *Pool) ImbalanceRatiosEvent(prices []oracle.Reading) (WeightsAndImbalance, error) {
	if err := p.requireInitialized(); err != nil {
		return WeightsAndImbalance{}, err
	}

	snapshot, err := p.WeightsAndImbalanceRatios(prices)
	if err != nil {
		return WeightsAndImbalance{}, err
	}

	for i, imbalance := range snapshot.Imbalance {
		eventLog.Info().
			Str("pool_id", p.id).
			Int("asset_index", i).
			Str("weight", snapshot.Weight[i].Dec()).
			Str("imbalance_ratio", imbalance.Dec()).
			Msg("imbalance ratio snapshot")
	}

	return snapshot, nil
}
