package valuation

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/customsgate/internal/model"
)

func testTable() model.TariffTable {
	return model.TariffTable{
		{Section: "XI", ChapterStart: 50, ChapterEnd: 63, RatePercent: 5},
		{Section: "XIV", ChapterStart: 71, ChapterEnd: 71, RatePercent: 10},
		{Section: "XVI", ChapterStart: 84, ChapterEnd: 85, RatePercent: 0},
		{Section: "dup", ChapterStart: 62, ChapterEnd: 62, RatePercent: 40},
	}
}

func group(orders int, total float64) *model.ImporterDay {
	return &model.ImporterDay{
		OrderCount:      orders,
		DailyTotal:      total,
		IsSplitShipment: orders > 1,
	}
}

func TestRate(t *testing.T) {
	e := NewEngine(testTable(), 1000, 0.05, "")

	rate, err := e.Rate(62)
	require.NoError(t, err)
	assert.Equal(t, 0.05, rate, "first containing band wins")

	rate, err = e.Rate(71)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-12)

	rate, err = e.Rate(85)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)

	rate, err = e.Rate(99)
	var lookup *model.LookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, 99, lookup.Chapter)
	assert.Equal(t, 0.05, rate)
}

func TestApply_SplitShipmentOverThreshold(t *testing.T) {
	e := NewEngine(testTable(), 1000, 0.05, "")
	g := group(2, 1500)
	a := &model.LineItem{Price: 900, Chapter: 62, Group: g}
	b := &model.LineItem{Price: 600, Chapter: 71, Group: g}

	require.NoError(t, e.Apply(a))
	require.NoError(t, e.Apply(b))

	assert.Equal(t, 45.0, a.Duty)
	assert.Equal(t, 60.0, b.Duty)
}

func TestApply_AtThresholdIsDutyFree(t *testing.T) {
	e := NewEngine(testTable(), 1000, 0.05, "")
	item := &model.LineItem{Price: 1000, Chapter: 62, Group: group(3, 1000)}

	require.NoError(t, e.Apply(item))
	assert.Equal(t, 0.0, item.Duty)
	assert.Equal(t, 0.05, item.TariffRate)
}

func TestApply_Gates(t *testing.T) {
	single := func() *model.LineItem {
		return &model.LineItem{Price: 1500, Chapter: 62, Group: group(1, 1500)}
	}

	item := single()
	require.NoError(t, NewEngine(testTable(), 1000, 0.05, model.DutyGateDailyTotal).Apply(item))
	assert.Equal(t, 75.0, item.Duty)

	item = single()
	require.NoError(t, NewEngine(testTable(), 1000, 0.05, model.DutyGateRevenueRisk).Apply(item))
	assert.Equal(t, 0.0, item.Duty, "single order is never dutiable under the revenue risk gate")
}

func TestApply_UnknownChapterUsesDefault(t *testing.T) {
	e := NewEngine(testTable(), 1000, 0.05, "")
	item := &model.LineItem{Price: 333.4, Chapter: 99, Group: group(2, 2000)}

	err := e.Apply(item)
	assert.Error(t, err)
	assert.Equal(t, 16.67, item.Duty)
}

func TestRun_Stats(t *testing.T) {
	e := NewEngine(testTable(), 1000, 0.05, "")
	g := group(2, 1500)
	items := []*model.LineItem{
		{Price: 900, Chapter: 62, Group: g},
		{Price: 600, Chapter: 99, Group: g},
		{Price: 100, Chapter: 62, Group: group(1, 100)},
		{Price: 500, Chapter: 85, Group: g},
	}

	stats := e.Run(items)
	assert.Equal(t, 75.0, stats.TotalDuty)
	assert.Equal(t, 2, stats.DutiableItems)
	assert.Equal(t, 2, stats.DutyFreeItems)
	assert.Equal(t, 1, stats.DefaultRateItems)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 0.0, Round2(0.004))
}

func TestDutyGateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	e := NewEngine(testTable(), 1000, 0.05, "")

	properties.Property("positive duty implies daily total above threshold", prop.ForAll(
		func(price, total float64, orders, chapter int) bool {
			item := &model.LineItem{Price: price, Chapter: chapter, Group: group(orders, total)}
			_ = e.Apply(item)
			return item.Duty <= 0 || item.Group.DailyTotal > 1000
		},
		gen.Float64Range(0, 5000),
		gen.Float64Range(0, 3000),
		gen.IntRange(1, 5),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}
