package pipeline

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ppiankov/customsgate/internal/identity"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/protection"
	"github.com/ppiankov/customsgate/internal/valuation"
)

func buildSummary(in *Input, ident *identity.Result, mode string, serviceErrors int, val model.ValuationStats, res *Result) *model.Summary {
	items := res.Items
	s := &model.Summary{
		RunID:               in.RunID,
		RowsRead:            in.Batch.RowsRead,
		TotalItemsProcessed: len(items),
		ItemsExcluded:       len(in.Batch.Excluded),
		Identity:            ident.Stats,
		Valuation:           val,
		Protection:          protection.Stats(items),
		Alerts:              len(res.Alerts),
	}
	s.Identity.AffectedValue = valuation.Round2(s.Identity.AffectedValue)

	orders := make(map[string]struct{})
	importers := make(map[string]struct{})
	codes := make(map[string]struct{})
	folder := cases.Fold()
	s.Classification.Mode = mode
	s.Classification.ServiceErrors = serviceErrors

	for _, item := range items {
		orders[item.OrderID] = struct{}{}
		importers[folder.String(strings.TrimSpace(item.ImporterName))] = struct{}{}
		codes[item.HSCode] = struct{}{}

		if item.ClassificationStatus.IsMatch() {
			s.Classification.ItemsClassified++
		}
		if item.ClassificationStatus == model.StatusNoMatch {
			s.Classification.ItemsRequiringReview++
		}

		if s.DateRange.Start == "" || item.Date < s.DateRange.Start {
			s.DateRange.Start = item.Date
		}
		if item.Date > s.DateRange.End {
			s.DateRange.End = item.Date
		}
	}

	s.TotalOrders = len(orders)
	s.UniqueImporters = len(importers)
	s.Classification.UniqueHSCodes = len(codes)
	return s
}

// Alerts returns, in input order, every item that is a revenue risk, fired
// a risk profile, or could not be classified by rule
func Alerts(items []*model.LineItem) []*model.LineItem {
	alerts := make([]*model.LineItem, 0)
	for _, item := range items {
		if item.IsAlert() {
			alerts = append(alerts, item)
		}
	}
	return alerts
}

// RollupOrders summarizes items per order id in first-seen order. Risk
// codes and reasons are the distinct non-NONE values in first-seen order.
func RollupOrders(items []*model.LineItem) []model.OrderSummary {
	type acc struct {
		summary model.OrderSummary
		codes   *orderedSet
		reasons *orderedSet
	}

	byID := make(map[string]*acc)
	var order []*acc

	for _, item := range items {
		a, ok := byID[item.OrderID]
		if !ok {
			a = &acc{
				summary: model.OrderSummary{
					OrderID:         item.OrderID,
					SplitShipment:   item.SplitFlag(),
					ImporterName:    item.ImporterName,
					DailyTotalValue: valuation.Round2(item.DailyTotal()),
				},
				codes:   newOrderedSet(),
				reasons: newOrderedSet(),
			}
			byID[item.OrderID] = a
			order = append(order, a)
		}
		a.summary.TotalDuty += item.Duty
		a.summary.OrderValue += item.Price
		if item.IsFlagged() {
			a.codes.addAll(strings.Split(item.RiskCode, protection.Delimiter))
			a.reasons.addAll(strings.Split(item.RiskReason, protection.Delimiter))
		}
	}

	out := make([]model.OrderSummary, 0, len(order))
	for _, a := range order {
		s := a.summary
		s.TotalDuty = valuation.Round2(s.TotalDuty)
		s.OrderValue = valuation.Round2(s.OrderValue)
		s.RiskCode = a.codes.join(protection.Delimiter)
		s.RiskReason = a.reasons.join(protection.Delimiter)
		out = append(out, s)
	}
	return out
}

type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) addAll(values []string) {
	for _, v := range values {
		if v == "" || v == model.NoRisk {
			continue
		}
		if _, ok := s.seen[v]; !ok {
			s.seen[v] = struct{}{}
			s.values = append(s.values, v)
		}
	}
}

func (s *orderedSet) join(sep string) string {
	if len(s.values) == 0 {
		return model.NoRisk
	}
	return strings.Join(s.values, sep)
}
