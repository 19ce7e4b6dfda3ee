// Package pipeline runs the four customs stages over one order export:
// identity, classification, valuation and protection.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/customsgate/internal/catalog"
	"github.com/ppiankov/customsgate/internal/classify"
	"github.com/ppiankov/customsgate/internal/identity"
	"github.com/ppiankov/customsgate/internal/metrics"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/prepare"
	"github.com/ppiankov/customsgate/internal/protection"
	"github.com/ppiankov/customsgate/internal/valuation"
	"github.com/ppiankov/customsgate/internal/worker"
)

// runNamespace scopes run ids derived from input content
var runNamespace = uuid.MustParse("6f1c2b0e-6a55-4a57-9f0e-8f2f2c1d7e44")

// Pipeline orchestrates a complete run
type Pipeline struct {
	config     *model.Config
	preparer   *prepare.Preparer
	identity   *identity.Engine
	classifier classify.Classifier
	protection *protection.Engine
	metrics    *metrics.Metrics // Optional
}

// New creates a pipeline. The catalog supplies the risk profiles; the
// classifier was already built from the same catalog or a service.
func New(cfg *model.Config, cat *catalog.Catalog, classifier classify.Classifier, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		config:     cfg,
		preparer:   prepare.New(cfg.ConversionRate),
		identity:   identity.NewEngine(cfg.DeMinimisThreshold),
		classifier: classifier,
		protection: protection.NewEngine(cat.Profiles),
		metrics:    m,
	}
}

// Input is a validated pair of input documents
type Input struct {
	Batch  *prepare.Batch
	Tariff model.TariffTable
	RunID  string
}

// Result contains everything a run produces
type Result struct {
	Items    []*model.LineItem
	Groups   []*model.ImporterDay
	Excluded []*model.ParseError
	Alerts   []*model.LineItem
	Orders   []model.OrderSummary
	Summary  *model.Summary
}

// Run reads both inputs fully and processes them
func (p *Pipeline) Run(ctx context.Context, orders, tariff io.Reader) (*Result, error) {
	ordersData, err := io.ReadAll(orders)
	if err != nil {
		return nil, &model.DataError{File: "orders", Msg: "cannot read orders", Err: err}
	}
	tariffData, err := io.ReadAll(tariff)
	if err != nil {
		return nil, &model.DataError{File: "tariff", Msg: "cannot read tariff table", Err: err}
	}

	in, err := p.Load(ctx, "orders", ordersData, "tariff", tariffData)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, in)
}

// RunFiles loads the two input files and processes them
func (p *Pipeline) RunFiles(ctx context.Context, ordersPath, tariffPath string) (*Result, error) {
	in, err := p.LoadFiles(ctx, ordersPath, tariffPath)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, in)
}

// LoadFiles reads and validates both input files concurrently
func (p *Pipeline) LoadFiles(ctx context.Context, ordersPath, tariffPath string) (*Input, error) {
	var ordersData, tariffData []byte

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := os.ReadFile(ordersPath)
		if err != nil {
			return &model.DataError{File: ordersPath, Msg: "cannot read orders file", Err: err}
		}
		ordersData = data
		return nil
	})
	g.Go(func() error {
		data, err := os.ReadFile(tariffPath)
		if err != nil {
			return &model.DataError{File: tariffPath, Msg: "cannot read tariff file", Err: err}
		}
		tariffData = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p.Load(ctx, ordersPath, ordersData, tariffPath, tariffData)
}

// Load parses both documents concurrently. Any structural problem is a
// *model.DataError and nothing is processed.
func (p *Pipeline) Load(ctx context.Context, ordersName string, ordersData []byte, tariffName string, tariffData []byte) (*Input, error) {
	start := time.Now()
	in := &Input{RunID: p.runID(ordersData, tariffData)}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		batch, err := p.preparer.ReadOrders(bytes.NewReader(ordersData), ordersName)
		if err != nil {
			return err
		}
		in.Batch = batch
		return nil
	})
	g.Go(func() error {
		table, err := prepare.ReadTariff(bytes.NewReader(tariffData), tariffName)
		if err != nil {
			return err
		}
		in.Tariff = table
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.metrics.ObserveStage("prepare", time.Since(start))
	p.metrics.AddItems(len(in.Batch.Items), len(in.Batch.Excluded))
	slog.Info("data prepared",
		"stage", "prepare",
		"rows", in.Batch.RowsRead,
		"items", len(in.Batch.Items),
		"excluded", len(in.Batch.Excluded),
		"tariff_bands", len(in.Tariff))

	return in, nil
}

// runID derives a stable id from the inputs and the settings that change
// the outcome, so identical reruns share an id
func (p *Pipeline) runID(ordersData, tariffData []byte) string {
	h := sha256.New()
	h.Write(ordersData)
	h.Write([]byte{0})
	h.Write(tariffData)
	_, _ = fmt.Fprintf(h, "\x00%g|%g|%g|%s|%s",
		p.config.ConversionRate,
		p.config.DeMinimisThreshold,
		p.config.DefaultDutyRate,
		p.config.DutyGate,
		p.classifier.Name())
	return uuid.NewSHA1(runNamespace, h.Sum(nil)).String()
}

// Process runs the four stages over loaded input
func (p *Pipeline) Process(ctx context.Context, in *Input) (*Result, error) {
	items := in.Batch.Items

	// Level 1
	start := time.Now()
	ident := p.identity.Detect(items)
	p.metrics.ObserveStage("identity", time.Since(start))
	p.metrics.AddGroups(ident.Stats.SplitShipmentGroups, ident.Stats.RevenueRiskGroups)
	slog.Info("identity complete",
		"stage", "identity",
		"importer_days", ident.Stats.ImporterDays,
		"split_groups", ident.Stats.SplitShipmentGroups,
		"revenue_risk_groups", ident.Stats.RevenueRiskGroups)

	// Levels 2 and 4 are independent per item
	start = time.Now()
	eval := &itemEvaluator{classifier: p.classifier, protection: p.protection, metrics: p.metrics}
	results, err := worker.NewBatchProcessor(eval, p.config.Workers).ProcessItems(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("classify items: %w", err)
	}
	serviceErrors := 0
	for _, r := range results {
		var svcErr *model.ClassificationServiceError
		if errors.As(r.GetError(), &svcErr) {
			serviceErrors++
			slog.Debug("classification degraded", "row", r.Item.Row, "error", svcErr)
		}
	}
	p.metrics.ObserveStage("classify_protect", time.Since(start))
	if serviceErrors > 0 {
		slog.Warn("classification service errors", "count", serviceErrors, "classifier", p.classifier.Name())
	}

	// Level 3 reads group flags, so it runs last
	start = time.Now()
	val := valuation.NewEngine(in.Tariff, p.config.DeMinimisThreshold, p.config.DefaultDutyRate, p.config.DutyGate)
	valStats := val.Run(items)
	p.metrics.ObserveStage("valuation", time.Since(start))
	p.metrics.AddDuty(valStats.TotalDuty)
	slog.Info("valuation complete",
		"stage", "valuation",
		"total_duty", valStats.TotalDuty,
		"dutiable", valStats.DutiableItems,
		"default_rate", valStats.DefaultRateItems)

	res := &Result{
		Items:    items,
		Groups:   ident.Groups,
		Excluded: in.Batch.Excluded,
		Alerts:   Alerts(items),
		Orders:   RollupOrders(items),
	}
	res.Summary = buildSummary(in, ident, p.classifier.Name(), serviceErrors, valStats, res)
	return res, nil
}

// itemEvaluator runs classification then protection on one item
type itemEvaluator struct {
	classifier classify.Classifier
	protection *protection.Engine
	metrics    *metrics.Metrics
}

func (e *itemEvaluator) Evaluate(ctx context.Context, item *model.LineItem) error {
	text := classify.ItemText(item)

	start := time.Now()
	res := classify.Apply(ctx, e.classifier, item)
	e.metrics.ObserveClassify(e.classifier.Name(), string(res.Status), time.Since(start))

	a := e.protection.Apply(item, text)
	for _, code := range a.Codes {
		e.metrics.IncrementRiskFlag(code)
	}
	return res.Err
}
