// Package identity implements Level 1: detecting shipments split across
// several same-day orders by one importer at one address.
package identity

import (
	"github.com/ppiankov/customsgate/internal/model"
)

// Engine aggregates line items into importer-day groups
type Engine struct {
	threshold float64
}

// NewEngine creates an identity engine with the given de-minimis threshold
func NewEngine(threshold float64) *Engine {
	return &Engine{threshold: threshold}
}

// Result holds the importer-day groups of a run in first-seen order
type Result struct {
	Groups []*model.ImporterDay
	Stats  model.IdentityStats
}

// Detect groups items by their importer-day key, flags split shipments and
// revenue risks, and points every item at its group. Aggregation is by
// importer-day, not by order: a single order over the threshold is never a
// revenue risk on its own.
func (e *Engine) Detect(items []*model.LineItem) *Result {
	byKey := make(map[string]*model.ImporterDay)
	orders := make(map[string]map[string]struct{})
	var groups []*model.ImporterDay

	for _, item := range items {
		g, ok := byKey[item.GroupKey]
		if !ok {
			g = &model.ImporterDay{
				Key:             item.GroupKey,
				ImporterName:    item.ImporterName,
				DeliveryAddress: item.DeliveryAddress,
				Date:            item.Date,
			}
			byKey[item.GroupKey] = g
			orders[item.GroupKey] = make(map[string]struct{})
			groups = append(groups, g)
		}
		g.DailyTotal += item.Price
		g.ItemCount++
		orders[item.GroupKey][item.OrderID] = struct{}{}
		item.Group = g
	}

	result := &Result{Groups: groups}
	for _, g := range groups {
		g.OrderCount = len(orders[g.Key])
		g.IsSplitShipment = g.OrderCount > 1
		g.ExceedsThreshold = g.DailyTotal > e.threshold
		g.RevenueRisk = g.IsSplitShipment && g.ExceedsThreshold

		if g.IsSplitShipment {
			result.Stats.SplitShipmentGroups++
		}
		if g.RevenueRisk {
			result.Stats.RevenueRiskGroups++
			result.Stats.RevenueRisks += g.ItemCount
			result.Stats.AffectedValue += g.DailyTotal
		}
	}
	result.Stats.ImporterDays = len(groups)

	// An order id may recur across dates, so count distinct ids
	splitOrders := make(map[string]struct{})
	for _, item := range items {
		if item.Group.IsSplitShipment {
			splitOrders[item.OrderID] = struct{}{}
		}
	}
	result.Stats.SplitShipmentsDetected = len(splitOrders)

	return result
}
