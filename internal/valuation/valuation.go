// Package valuation implements Level 3: duty owed per line item under the
// de-minimis rule. Duty depends on the item's importer-day group, so it is
// computed only after identity and classification have run.
package valuation

import (
	"errors"
	"math"

	"github.com/ppiankov/customsgate/internal/model"
)

// Engine computes duty from the tariff table
type Engine struct {
	table       model.TariffTable
	threshold   float64
	defaultRate float64
	gate        string
}

// NewEngine creates a valuation engine. An empty gate means
// model.DutyGateDailyTotal.
func NewEngine(table model.TariffTable, threshold, defaultRate float64, gate string) *Engine {
	if gate == "" {
		gate = model.DutyGateDailyTotal
	}
	return &Engine{
		table:       table,
		threshold:   threshold,
		defaultRate: defaultRate,
		gate:        gate,
	}
}

// Rate returns the fractional duty rate of the first band containing the
// chapter. Uncovered chapters return the default rate with a *LookupError.
func (e *Engine) Rate(chapter int) (float64, error) {
	for _, band := range e.table {
		if band.Contains(chapter) {
			return band.RatePercent / 100, nil
		}
	}
	return e.defaultRate, &model.LookupError{Chapter: chapter}
}

// Dutiable reports whether the item's group passes the duty gate
func (e *Engine) Dutiable(item *model.LineItem) bool {
	if item.Group == nil {
		return false
	}
	if e.gate == model.DutyGateRevenueRisk {
		return item.Group.IsSplitShipment && item.Group.DailyTotal > e.threshold
	}
	return item.Group.DailyTotal > e.threshold
}

// Apply records the rate and duty on the item. The returned error is the
// lookup miss, if any; the item is valued with the default rate anyway.
func (e *Engine) Apply(item *model.LineItem) error {
	rate, err := e.Rate(item.Chapter)
	item.TariffRate = rate
	item.Duty = 0
	if e.Dutiable(item) {
		item.Duty = Round2(item.Price * rate)
	}
	return err
}

// Run values every item and returns the stage statistics
func (e *Engine) Run(items []*model.LineItem) model.ValuationStats {
	var stats model.ValuationStats
	var total float64
	for _, item := range items {
		var lookup *model.LookupError
		if err := e.Apply(item); errors.As(err, &lookup) {
			stats.DefaultRateItems++
		}
		if item.Duty > 0 {
			stats.DutiableItems++
		} else {
			stats.DutyFreeItems++
		}
		total += item.Duty
	}
	stats.TotalDuty = Round2(total)
	return stats
}

// Round2 rounds half away from zero at two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
