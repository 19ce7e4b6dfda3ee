package identity

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ppiankov/customsgate/internal/model"
)

// buildItems spreads prices over a few importer-day keys and order ids
func buildItems(prices []float64, slots []int) []*model.LineItem {
	n := len(prices)
	if len(slots) < n {
		n = len(slots)
	}
	items := make([]*model.LineItem, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("importer-%d|addr|2025-03-05", slots[i]%3)
		order := fmt.Sprintf("O%d", slots[i]%5)
		items = append(items, &model.LineItem{OrderID: order, GroupKey: key, Price: prices[i]})
	}
	return items
}

func TestDetectProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	priceGen := gen.SliceOf(gen.Float64Range(0, 800))
	slotGen := gen.SliceOf(gen.IntRange(0, 14))

	properties.Property("group total equals sum of member prices", prop.ForAll(
		func(prices []float64, slots []int) bool {
			items := buildItems(prices, slots)
			res := NewEngine(1000).Detect(items)

			sums := make(map[*model.ImporterDay]float64)
			for _, it := range items {
				sums[it.Group] += it.Price
			}
			for _, g := range res.Groups {
				if math.Abs(sums[g]-g.DailyTotal) > 1e-6 {
					return false
				}
			}
			return len(sums) == len(res.Groups)
		},
		priceGen, slotGen,
	))

	properties.Property("split iff more than one order, risk iff split and over threshold", prop.ForAll(
		func(prices []float64, slots []int) bool {
			items := buildItems(prices, slots)
			res := NewEngine(1000).Detect(items)

			orders := make(map[*model.ImporterDay]map[string]bool)
			for _, it := range items {
				if orders[it.Group] == nil {
					orders[it.Group] = make(map[string]bool)
				}
				orders[it.Group][it.OrderID] = true
			}
			for _, g := range res.Groups {
				if g.IsSplitShipment != (len(orders[g]) > 1) {
					return false
				}
				if g.RevenueRisk != (g.IsSplitShipment && g.DailyTotal > 1000) {
					return false
				}
			}
			return true
		},
		priceGen, slotGen,
	))

	properties.TestingRun(t)
}
