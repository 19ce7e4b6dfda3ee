package model

// Summary is the run-level statistics record handed to reporting.
// It carries no wall-clock fields so reruns are byte-identical.
type Summary struct {
	RunID               string    `json:"run_id"`
	RowsRead            int       `json:"rows_read"`
	TotalItemsProcessed int       `json:"total_items_processed"`
	ItemsExcluded       int       `json:"items_excluded"`
	TotalOrders         int       `json:"total_orders"`
	UniqueImporters     int       `json:"unique_importers"`
	DateRange           DateRange `json:"date_range"`

	Identity       IdentityStats       `json:"level_1_identity"`
	Classification ClassificationStats `json:"level_2_classification"`
	Valuation      ValuationStats      `json:"level_3_valuation"`
	Protection     ProtectionStats     `json:"level_4_protection"`

	Alerts int `json:"high_priority_alerts"`
}

// DateRange is the first and last calendar date among processed items
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IdentityStats summarizes Level 1
type IdentityStats struct {
	ImporterDays           int     `json:"importer_days"`
	SplitShipmentGroups    int     `json:"split_shipment_groups"`
	SplitShipmentsDetected int     `json:"split_shipments_detected"` // Distinct orders inside split groups
	RevenueRiskGroups      int     `json:"revenue_risk_groups"`
	RevenueRisks           int     `json:"revenue_risks"` // Items inside revenue-risk groups
	AffectedValue          float64 `json:"affected_value_aed"`
}

// ClassificationStats summarizes Level 2
type ClassificationStats struct {
	Mode                 string `json:"mode"`
	ItemsClassified      int    `json:"items_classified"`
	ItemsRequiringReview int    `json:"items_requiring_review"`
	ServiceErrors        int    `json:"service_errors"`
	UniqueHSCodes        int    `json:"unique_hs_codes"`
}

// ValuationStats summarizes Level 3
type ValuationStats struct {
	TotalDuty        float64 `json:"total_duty_collected_aed"`
	DutiableItems    int     `json:"dutiable_items"`
	DutyFreeItems    int     `json:"duty_free_items"`
	DefaultRateItems int     `json:"default_rate_items"`
}

// ProtectionStats summarizes Level 4
type ProtectionStats struct {
	ItemsFlagged        int            `json:"items_flagged"`
	CategoryADangerous  int            `json:"category_a_dangerous"`
	CategoryBRestricted int            `json:"category_b_restricted"`
	ByCode              map[string]int `json:"by_code"`
}

// OrderSummary rolls an order's items up for per-order review
type OrderSummary struct {
	OrderID         string  `json:"order_id"`
	SplitShipment   string  `json:"split_shipment_detected"`
	TotalDuty       float64 `json:"total_duty_aed"`
	RiskCode        string  `json:"risk_flag_code"`
	RiskReason      string  `json:"risk_reason"`
	ImporterName    string  `json:"importer_name"`
	DailyTotalValue float64 `json:"daily_total_value_aed"`
	OrderValue      float64 `json:"item_price_aed"`
}
