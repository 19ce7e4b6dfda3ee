package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/valuation"
)

// Output file names inside the output directory
const (
	ResultsCSV  = "customs_processing_results.csv"
	OrdersJSON  = "customs_processing_results.json"
	SummaryJSON = "processing_summary.json"
	AlertsCSV   = "high_priority_alerts.csv"
)

// ItemColumns is the column order of the enriched item CSV
var ItemColumns = []string{
	"order_id",
	"split_shipment_detected",
	"duty",
	"risk_flag_code",
	"risk_reason",
	"timestamp",
	"date",
	"importer_name",
	"delivery_address",
	"product_category",
	"product_title",
	"description",
	"pid",
	"item_price_inr",
	"total_order_value_inr",
	"item_price_aed",
	"total_order_value_aed",
	"daily_total_value_aed",
	"order_count",
	"exceeds_threshold",
	"revenue_risk",
	"hs_code",
	"tariff_rate",
	"classification_status",
}

// Renderer writes run outputs into one directory
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer for the given output directory
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// RenderAll writes every output file. Files are staged under temporary
// names and only renamed into place once all of them were written.
func (r *Renderer) RenderAll(res *Result) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ResultsCSV, func(w io.Writer) error { return WriteItemsCSV(w, res.Items) }},
		{OrdersJSON, func(w io.Writer) error { return writeJSON(w, res.Orders) }},
		{SummaryJSON, func(w io.Writer) error { return writeJSON(w, res.Summary) }},
		{AlertsCSV, func(w io.Writer) error { return WriteItemsCSV(w, res.Alerts) }},
	}

	staged := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, out := range outputs {
		tmp, err := r.stage(out.name, out.write)
		if tmp != "" {
			staged = append(staged, tmp)
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("write %s: %w", out.name, err)
		}
	}

	names := make([]string, len(outputs))
	for i, out := range outputs {
		names[i] = out.name
	}
	paths, err := commit(r.dir, names, staged)
	if err != nil {
		cleanup()
		return nil, err
	}
	return paths, nil
}

// commit renames staged files into place. Existing outputs are set aside
// first; on any failure the directory is restored to its previous state.
func commit(dir string, names, staged []string) ([]string, error) {
	type placed struct {
		final  string
		backup string
	}
	var done []placed

	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			_ = os.Remove(done[i].final)
			if done[i].backup != "" {
				_ = os.Rename(done[i].backup, done[i].final)
			}
		}
	}

	for i, name := range names {
		final := filepath.Join(dir, name)

		backup := ""
		if fi, err := os.Lstat(final); err == nil && fi.Mode().IsRegular() {
			backup = staged[i] + ".prev"
			if err := os.Rename(final, backup); err != nil {
				rollback()
				return nil, fmt.Errorf("set aside %s: %w", name, err)
			}
		}

		if err := os.Rename(staged[i], final); err != nil {
			if backup != "" {
				_ = os.Rename(backup, final)
			}
			rollback()
			return nil, fmt.Errorf("rename %s: %w", name, err)
		}
		done = append(done, placed{final: final, backup: backup})
	}

	paths := make([]string, 0, len(done))
	for _, d := range done {
		if d.backup != "" {
			_ = os.Remove(d.backup)
		}
		paths = append(paths, d.final)
	}
	return paths, nil
}

func (r *Renderer) stage(name string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(r.dir, "."+name+".*.tmp")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		_ = f.Close()
		return tmp, err
	}
	if err := f.Close(); err != nil {
		return tmp, err
	}
	return tmp, nil
}

// WriteItemsCSV writes items with the enriched column set
func WriteItemsCSV(w io.Writer, items []*model.LineItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ItemColumns); err != nil {
		return err
	}

	for _, item := range items {
		orderCount, exceeds := 0, false
		if item.Group != nil {
			orderCount = item.Group.OrderCount
			exceeds = item.Group.ExceedsThreshold
		}
		record := []string{
			item.OrderID,
			item.SplitFlag(),
			formatFloat(item.Duty),
			item.RiskCode,
			item.RiskReason,
			item.Timestamp.Format(model.TimestampLayout),
			item.Date,
			item.ImporterName,
			item.DeliveryAddress,
			item.Category,
			item.Title,
			item.Description,
			item.ProductID,
			formatFloat(item.PriceSource),
			formatFloat(item.OrderValueSource),
			formatFloat(valuation.Round2(item.Price)),
			formatFloat(valuation.Round2(item.OrderValue)),
			formatFloat(valuation.Round2(item.DailyTotal())),
			strconv.Itoa(orderCount),
			strconv.FormatBool(exceeds),
			strconv.FormatBool(item.RevenueRisk()),
			item.HSCode,
			formatFloat(item.TariffRate),
			string(item.ClassificationStatus),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintBanner writes the human-readable run summary
func PrintBanner(w io.Writer, s *model.Summary, paths []string) {
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	_, _ = fmt.Fprintf(w, "  Customs Processing Complete\n")
	_, _ = fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "  Run:            %s\n", s.RunID)
	_, _ = fmt.Fprintf(w, "  Items:          %s processed, %s excluded\n", comma(s.TotalItemsProcessed), comma(s.ItemsExcluded))
	_, _ = fmt.Fprintf(w, "  Orders:         %s from %s importers\n", comma(s.TotalOrders), comma(s.UniqueImporters))
	if s.DateRange.Start != "" {
		_, _ = fmt.Fprintf(w, "  Dates:          %s to %s\n", s.DateRange.Start, s.DateRange.End)
	}
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "  L1 Identity:    %s split-shipment orders, %s revenue risks (%s AED)\n",
		comma(s.Identity.SplitShipmentsDetected), comma(s.Identity.RevenueRisks), money(s.Identity.AffectedValue))
	_, _ = fmt.Fprintf(w, "  L2 Classify:    %s classified, %s need review (%s)\n",
		comma(s.Classification.ItemsClassified), comma(s.Classification.ItemsRequiringReview), s.Classification.Mode)
	if s.Classification.ServiceErrors > 0 {
		_, _ = fmt.Fprintf(w, "                  %s service errors\n", comma(s.Classification.ServiceErrors))
	}
	_, _ = fmt.Fprintf(w, "  L3 Valuation:   %s AED duty on %s items, %s duty-free\n",
		money(s.Valuation.TotalDuty), comma(s.Valuation.DutiableItems), comma(s.Valuation.DutyFreeItems))
	_, _ = fmt.Fprintf(w, "  L4 Protection:  %s flagged (A: %s, B: %s)\n",
		comma(s.Protection.ItemsFlagged), comma(s.Protection.CategoryADangerous), comma(s.Protection.CategoryBRestricted))

	codes := make([]string, 0, len(s.Protection.ByCode))
	for code := range s.Protection.ByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		_, _ = fmt.Fprintf(w, "                  %-4s %s\n", code, comma(s.Protection.ByCode[code]))
	}

	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "  High-priority alerts: %s\n", comma(s.Alerts))
	for _, p := range paths {
		_, _ = fmt.Fprintf(w, "  ✓ %s\n", p)
	}
	_, _ = fmt.Fprintf(w, "\n")
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}
