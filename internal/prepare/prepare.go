// Package prepare decodes order and tariff exports and derives the fields
// every later stage depends on: parsed timestamps, normalized prices and the
// importer-day grouping key.
package prepare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/customsgate/internal/model"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
)

// timestampParseLayout accepts one or two digit day, month and hour
const timestampParseLayout = "2/1/2006 15:04"

// Order export columns
const (
	ColOrderID    = "order_id"
	ColTimestamp  = "timestamp"
	ColImporter   = "importer_name"
	ColAddress    = "delivery_address"
	ColCategory   = "product_category"
	ColTitle      = "product_title"
	ColDesc       = "description"
	ColItemPrice  = "item_price_inr"
	ColOrderValue = "total_order_value_inr"
	ColProductID  = "pid"
)

// RequiredOrderColumns lists the order export columns the pipeline cannot run without
var RequiredOrderColumns = []string{
	ColOrderID, ColTimestamp, ColImporter, ColAddress, ColCategory,
	ColTitle, ColDesc, ColItemPrice, ColOrderValue, ColProductID,
}

// Batch is the prepared record set of one orders file
type Batch struct {
	Items    []*model.LineItem
	RowsRead int
	Excluded []*model.ParseError
}

// Preparer converts raw order rows into line items
type Preparer struct {
	conversionRate float64
}

// New creates a preparer normalizing prices with the given multiplicative rate
func New(conversionRate float64) *Preparer {
	return &Preparer{conversionRate: conversionRate}
}

// ReadOrdersFile opens and prepares an orders CSV file
func (p *Preparer) ReadOrdersFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.DataError{File: path, Msg: "cannot open orders file", Err: err}
	}
	defer func() { _ = f.Close() }()

	return p.ReadOrders(f, path)
}

// ReadOrders decodes an orders CSV stream. Structural problems (unreadable
// CSV, missing required columns) return a *model.DataError. Rows with an
// unparsable timestamp or price are excluded and reported in Batch.Excluded.
func (p *Preparer) ReadOrders(r io.Reader, name string) (*Batch, error) {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.DataError{File: name, Columns: RequiredOrderColumns, Msg: "empty file"}
		}
		return nil, &model.DataError{File: name, Msg: "read header", Err: err}
	}

	idx, missing := indexColumns(header, RequiredOrderColumns)
	if len(missing) > 0 {
		return nil, &model.DataError{File: name, Columns: missing}
	}

	folder := cases.Fold()
	batch := &Batch{}

	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &model.DataError{File: name, Row: row, Msg: "malformed CSV", Err: err}
		}
		batch.RowsRead++

		get := func(col string) string {
			i := idx[col]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}

		item, perr := p.prepareRow(row, get)
		if perr != nil {
			batch.Excluded = append(batch.Excluded, perr)
			continue
		}
		item.GroupKey = GroupKey(folder, item.ImporterName, item.DeliveryAddress, item.Date)
		batch.Items = append(batch.Items, item)
	}

	return batch, nil
}

func (p *Preparer) prepareRow(row int, get func(string) string) (*model.LineItem, *model.ParseError) {
	rawTS := strings.TrimSpace(get(ColTimestamp))
	ts, err := ParseTimestamp(rawTS)
	if err != nil {
		return nil, &model.ParseError{Row: row, Column: ColTimestamp, Value: rawTS, Err: err}
	}

	price, err := ParseAmount(get(ColItemPrice))
	if err != nil {
		return nil, &model.ParseError{Row: row, Column: ColItemPrice, Value: get(ColItemPrice), Err: err}
	}

	orderValue, err := ParseAmount(get(ColOrderValue))
	if err != nil {
		return nil, &model.ParseError{Row: row, Column: ColOrderValue, Value: get(ColOrderValue), Err: err}
	}

	return &model.LineItem{
		Row:              row,
		OrderID:          strings.TrimSpace(get(ColOrderID)),
		Timestamp:        ts,
		ImporterName:     get(ColImporter),
		DeliveryAddress:  get(ColAddress),
		Category:         get(ColCategory),
		Title:            get(ColTitle),
		Description:      get(ColDesc),
		ProductID:        strings.TrimSpace(get(ColProductID)),
		PriceSource:      price,
		OrderValueSource: orderValue,
		Price:            price * p.conversionRate,
		OrderValue:       orderValue * p.conversionRate,
		Date:             ts.Format(model.DateLayout),
	}, nil
}

// ParseTimestamp parses a day/month/year hour:minute timestamp in UTC
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(timestampParseLayout, s, time.UTC)
}

// ParseAmount parses a monetary field, tolerating surrounding spaces and
// thousands separators
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, errors.New("empty value")
	}
	return parseFinite(s)
}

// parseFinite rejects NaN and infinities, including values that overflow
// float64
func parseFinite(s string) (float64, error) {
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// GroupKey derives the importer-day key from case-folded, trimmed importer
// name and delivery address plus the calendar date
func GroupKey(folder cases.Caser, importer, address, date string) string {
	return folder.String(strings.TrimSpace(importer)) + "|" +
		folder.String(strings.TrimSpace(address)) + "|" + date
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// indexColumns maps required column names to their header positions
func indexColumns(header []string, required []string) (map[string]int, []string) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return idx, missing
}
