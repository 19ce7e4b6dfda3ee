package prepare

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/customsgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
)

const ordersHeader = "order_id,timestamp,importer_name,delivery_address,product_category,product_title,description,item_price_inr,total_order_value_inr,pid\n"

func TestReadOrders_PreparesItems(t *testing.T) {
	input := ordersHeader +
		"O1,05/03/2025 14:30,  Asha Rao ,12 Palm St,Clothing,Mens Shirt,cotton,1000,2500,P1\n" +
		"O2,5/3/2025 9:05,ASHA RAO,12 palm st ,Electronics,Phone,smartphone,\"1,500\",1500,P2\n"

	batch, err := New(0.044).ReadOrders(strings.NewReader(input), "orders.csv")
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, 2, batch.RowsRead)
	assert.Empty(t, batch.Excluded)

	first := batch.Items[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "O1", first.OrderID)
	assert.Equal(t, time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, "2025-03-05", first.Date)
	assert.InDelta(t, 44.0, first.Price, 1e-9)
	assert.InDelta(t, 110.0, first.OrderValue, 1e-9)

	second := batch.Items[1]
	assert.InDelta(t, 1500.0, second.PriceSource, 1e-9)
	assert.Equal(t, first.GroupKey, second.GroupKey, "case and whitespace must not split a group")
	assert.Equal(t, "asha rao|12 palm st|2025-03-05", first.GroupKey)
}

func TestReadOrders_ExcludesUnparsableRows(t *testing.T) {
	input := ordersHeader +
		"O1,2025-03-05 14:30,A,Addr,c,t,d,100,100,P1\n" +
		"O2,05/03/2025 14:30,A,Addr,c,t,d,abc,100,P2\n" +
		"O3,05/03/2025 14:30,A,Addr,c,t,d,,100,P3\n" +
		"O4,31/02/2025 10:00,A,Addr,c,t,d,100,100,P4\n" +
		"O5,05/03/2025 14:30,A,Addr,c,t,d,100,100,P5\n"

	batch, err := New(1).ReadOrders(strings.NewReader(input), "orders.csv")
	require.NoError(t, err)
	assert.Equal(t, 5, batch.RowsRead)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "O5", batch.Items[0].OrderID)

	require.Len(t, batch.Excluded, 4)
	assert.Equal(t, ColTimestamp, batch.Excluded[0].Column)
	assert.Equal(t, 1, batch.Excluded[0].Row)
	assert.Equal(t, ColItemPrice, batch.Excluded[1].Column)
	assert.Equal(t, ColItemPrice, batch.Excluded[2].Column)
	assert.Equal(t, ColTimestamp, batch.Excluded[3].Column)
}

func TestReadOrders_MissingColumnsIsDataError(t *testing.T) {
	input := "order_id,timestamp,importer_name\nO1,05/03/2025 14:30,A\n"

	_, err := New(1).ReadOrders(strings.NewReader(input), "orders.csv")
	require.Error(t, err)

	var de *model.DataError
	require.True(t, errors.As(err, &de))
	assert.True(t, model.IsFatal(err))
	assert.Equal(t, "orders.csv", de.File)
	assert.Contains(t, de.Columns, ColAddress)
	assert.Contains(t, de.Columns, ColProductID)
	assert.NotContains(t, de.Columns, ColOrderID)
	assert.Contains(t, err.Error(), "delivery_address")
}

func TestReadOrders_EmptyFile(t *testing.T) {
	_, err := New(1).ReadOrders(strings.NewReader(""), "orders.csv")
	assert.True(t, model.IsFatal(err))
}

func TestReadOrders_ShortRowIsExcluded(t *testing.T) {
	input := ordersHeader + "O1,05/03/2025 14:30,A\n"

	batch, err := New(1).ReadOrders(strings.NewReader(input), "orders.csv")
	require.NoError(t, err)
	assert.Empty(t, batch.Items)
	assert.Len(t, batch.Excluded, 1)
}

func TestReadOrders_HeaderWithBOM(t *testing.T) {
	input := "\ufeff" + ordersHeader + "O1,05/03/2025 14:30,A,Addr,c,t,d,100,100,P1\n"

	batch, err := New(1).ReadOrders(strings.NewReader(input), "orders.csv")
	require.NoError(t, err)
	assert.Len(t, batch.Items, 1)
}

func TestReadOrdersFile_NotFound(t *testing.T) {
	_, err := New(1).ReadOrdersFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, model.IsFatal(err))
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestGroupKey(t *testing.T) {
	folder := cases.Fold()
	assert.Equal(t,
		GroupKey(folder, "Mohammed", "Villa 3", "2025-01-01"),
		GroupKey(folder, "  MOHAMMED", "villa 3  ", "2025-01-01"))
	assert.NotEqual(t,
		GroupKey(folder, "Mohammed", "Villa 3", "2025-01-01"),
		GroupKey(folder, "Mohammed", "Villa 3", "2025-01-02"))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 1,234.50 ")
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, v, 1e-9)

	_, err = ParseAmount("")
	assert.Error(t, err)

	_, err = ParseAmount("n/a")
	assert.Error(t, err)

	for _, in := range []string{"NaN", "nan", "Inf", "-Inf", "+Inf", "1e400"} {
		_, err = ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestReadOrders_NonFinitePriceIsExcluded(t *testing.T) {
	input := ordersHeader +
		"O1,05/03/2025 09:00,Acme,12 Palm,c,t,d,900,900,P1\n" +
		"O2,05/03/2025 10:00,Acme,12 Palm,c,t,d,NaN,900,P2\n" +
		"O3,05/03/2025 11:00,Acme,12 Palm,c,t,d,900,900,P3\n" +
		"O4,05/03/2025 12:00,Acme,12 Palm,c,t,d,100,Inf,P4\n" +
		"O5,05/03/2025 13:00,Acme,12 Palm,c,t,d,1e400,100,P5\n"

	batch, err := New(1).ReadOrders(strings.NewReader(input), "orders.csv")
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "O1", batch.Items[0].OrderID)
	assert.Equal(t, "O3", batch.Items[1].OrderID)

	require.Len(t, batch.Excluded, 3)
	assert.Equal(t, ColItemPrice, batch.Excluded[0].Column)
	assert.Equal(t, ColOrderValue, batch.Excluded[1].Column)
	assert.Equal(t, ColItemPrice, batch.Excluded[2].Column)
}

func TestReadTariff(t *testing.T) {
	input := "Section,Chapter_Start,Chapter_End,Simplified_Duty_Rate,Description\n" +
		"XI,50,63,12,Textiles\n" +
		"XVI,84,85,5%,Machinery\n"

	table, err := ReadTariff(strings.NewReader(input), "tariff.csv")
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, model.TariffBand{Section: "XI", ChapterStart: 50, ChapterEnd: 63, RatePercent: 12, Description: "Textiles"}, table[0])
	assert.InDelta(t, 5.0, table[1].RatePercent, 1e-9)
}

func TestReadTariff_MissingColumn(t *testing.T) {
	_, err := ReadTariff(strings.NewReader("Chapter_Start,Chapter_End\n1,2\n"), "tariff.csv")
	var de *model.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, []string{ColDutyRate}, de.Columns)
}

func TestReadTariff_BadRowIsDataError(t *testing.T) {
	input := "Chapter_Start,Chapter_End,Simplified_Duty_Rate\n1,x,5\n"
	_, err := ReadTariff(strings.NewReader(input), "tariff.csv")
	var de *model.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Row)
}

func TestReadTariff_NonFiniteRateIsDataError(t *testing.T) {
	for _, rate := range []string{"NaN", "Inf", "1e400"} {
		input := "Chapter_Start,Chapter_End,Simplified_Duty_Rate\n50,63," + rate + "\n"
		_, err := ReadTariff(strings.NewReader(input), "tariff.csv")
		var de *model.DataError
		require.True(t, errors.As(err, &de), rate)
		assert.Equal(t, 1, de.Row)
	}
}

func TestReadTariffFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariff.csv")
	require.NoError(t, os.WriteFile(path, []byte("Chapter_Start,Chapter_End,Simplified_Duty_Rate\n1,24,0\n"), 0o644))

	table, err := ReadTariffFile(path)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}
