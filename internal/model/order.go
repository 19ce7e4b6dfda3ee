package model

import "time"

// TimestampLayout is the day/month/year hour:minute layout used by order exports
const TimestampLayout = "02/01/2006 15:04"

// DateLayout is the calendar date layout used in group keys and outputs
const DateLayout = "2006-01-02"

// NoRisk is the risk code and reason of an item that fired no risk profile
const NoRisk = "NONE"

// LineItem is one declared product within an order.
// Parsed fields are never changed after preparation; each stage only fills
// in its own derived fields.
type LineItem struct {
	Row int `json:"row"` // 1-based data row in the source file

	OrderID         string    `json:"order_id"`
	Timestamp       time.Time `json:"timestamp"`
	ImporterName    string    `json:"importer_name"`
	DeliveryAddress string    `json:"delivery_address"`
	Category        string    `json:"product_category"`
	Title           string    `json:"product_title"`
	Description     string    `json:"description"`
	ProductID       string    `json:"pid"`

	PriceSource      float64 `json:"item_price_inr"`
	OrderValueSource float64 `json:"total_order_value_inr"`

	// Data preparation
	Price      float64 `json:"item_price_aed"`
	OrderValue float64 `json:"total_order_value_aed"`
	Date       string  `json:"date"`
	GroupKey   string  `json:"-"`

	// Level 1
	Group *ImporterDay `json:"-"`

	// Level 2
	HSCode               string               `json:"hs_code"`
	ClassificationStatus ClassificationStatus `json:"classification_status"`
	Chapter              int                  `json:"hs_chapter"`

	// Level 3
	TariffRate float64 `json:"tariff_rate"`
	Duty       float64 `json:"duty"`

	// Level 4
	RiskCode   string `json:"risk_flag_code"`
	RiskReason string `json:"risk_reason"`
}

// SplitFlag renders the split shipment flag as Y or N
func (i *LineItem) SplitFlag() string {
	if i.Group != nil && i.Group.IsSplitShipment {
		return "Y"
	}
	return "N"
}

// DailyTotal returns the owning group's summed normalized value
func (i *LineItem) DailyTotal() float64 {
	if i.Group == nil {
		return 0
	}
	return i.Group.DailyTotal
}

// RevenueRisk reports whether the owning group is a revenue risk
func (i *LineItem) RevenueRisk() bool {
	return i.Group != nil && i.Group.RevenueRisk
}

// IsFlagged reports whether any risk profile fired for the item
func (i *LineItem) IsFlagged() bool {
	return i.RiskCode != "" && i.RiskCode != NoRisk
}

// IsAlert reports whether the item belongs in the high-priority alerts subset
func (i *LineItem) IsAlert() bool {
	return i.RevenueRisk() || i.IsFlagged() || i.ClassificationStatus == StatusNoMatch
}

// ImporterDay is the aggregate of every line item sharing an importer,
// delivery address and calendar date. Created once per run, read-only after.
type ImporterDay struct {
	Key             string  `json:"key"`
	ImporterName    string  `json:"importer_name"`
	DeliveryAddress string  `json:"delivery_address"`
	Date            string  `json:"date"`
	OrderCount      int     `json:"order_count"`
	DailyTotal      float64 `json:"daily_total_value_aed"`
	ItemCount       int     `json:"item_count"`

	IsSplitShipment  bool `json:"is_split_shipment"`
	ExceedsThreshold bool `json:"exceeds_threshold"`
	RevenueRisk      bool `json:"revenue_risk"`
}
