package prepare

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/customsgate/internal/model"
)

// Tariff book columns
const (
	ColChapterStart = "Chapter_Start"
	ColChapterEnd   = "Chapter_End"
	ColDutyRate     = "Simplified_Duty_Rate"
	ColSection      = "Section"
	ColSectionDesc  = "Description"
)

// RequiredTariffColumns lists the tariff book columns valuation needs
var RequiredTariffColumns = []string{ColChapterStart, ColChapterEnd, ColDutyRate}

// ReadTariffFile opens and decodes a tariff book CSV file
func ReadTariffFile(path string) (model.TariffTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.DataError{File: path, Msg: "cannot open tariff file", Err: err}
	}
	defer func() { _ = f.Close() }()

	return ReadTariff(f, path)
}

// ReadTariff decodes a tariff book. The book is structural input, so any
// unreadable band is a *model.DataError rather than a skipped row.
func ReadTariff(r io.Reader, name string) (model.TariffTable, error) {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.DataError{File: name, Columns: RequiredTariffColumns, Msg: "empty file"}
		}
		return nil, &model.DataError{File: name, Msg: "read header", Err: err}
	}

	idx, missing := indexColumns(header, RequiredTariffColumns)
	if len(missing) > 0 {
		return nil, &model.DataError{File: name, Columns: missing}
	}

	var table model.TariffTable
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &model.DataError{File: name, Row: row, Msg: "malformed CSV", Err: err}
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		start, err := parseFinite(get(ColChapterStart))
		if err != nil {
			return nil, &model.DataError{File: name, Row: row, Msg: "invalid " + ColChapterStart, Err: err}
		}
		end, err := parseFinite(get(ColChapterEnd))
		if err != nil {
			return nil, &model.DataError{File: name, Row: row, Msg: "invalid " + ColChapterEnd, Err: err}
		}
		rate, err := parseFinite(strings.TrimSuffix(get(ColDutyRate), "%"))
		if err != nil {
			return nil, &model.DataError{File: name, Row: row, Msg: "invalid " + ColDutyRate, Err: err}
		}

		table = append(table, model.TariffBand{
			Section:      get(ColSection),
			ChapterStart: int(start),
			ChapterEnd:   int(end),
			RatePercent:  rate,
			Description:  get(ColSectionDesc),
		})
	}

	return table, nil
}
