package catalog

import "github.com/ppiankov/customsgate/internal/model"

// PreciousMetalsThreshold is the normalized price above which precious
// metal items are flagged
const PreciousMetalsThreshold = 5000.0

// defaultRules is the built-in tariff classification catalog. Order is
// significant: "ring" precedes "earring", phone rules precede case rules.
var defaultRules = []model.ClassificationRule{
	// Clothing & textiles
	{Pattern: `mens.*shirt`, HSCode: "620520", Group: "clothing"},
	{Pattern: `mens.*jeans`, HSCode: "620342", Group: "clothing"},
	{Pattern: `mens.*trouser|mens.*pant`, HSCode: "620349", Group: "clothing"},
	{Pattern: `mens.*jacket`, HSCode: "620333", Group: "clothing"},
	{Pattern: `womens.*shirt|ladies.*shirt|womens.*top|ladies.*top`, HSCode: "620640", Group: "clothing"},
	{Pattern: `womens.*jeans|ladies.*jeans`, HSCode: "620462", Group: "clothing"},
	{Pattern: `womens.*dress|ladies.*dress`, HSCode: "620444", Group: "clothing"},
	{Pattern: `muffler|scarf`, HSCode: "621410", Group: "clothing"},
	{Pattern: `towel`, HSCode: "630260", Group: "clothing"},

	// Electronics
	{Pattern: `power bank|portable charger`, HSCode: "850760", Group: "electronics"},
	{Pattern: `battery|lithium`, HSCode: "850760", Group: "electronics"},
	{Pattern: `mobile|phone|smartphone`, HSCode: "851712", Group: "electronics"},
	{Pattern: `tablet|ipad`, HSCode: "847130", Group: "electronics"},
	{Pattern: `router|modem`, HSCode: "851762", Group: "electronics"},
	{Pattern: `camera|webcam`, HSCode: "852580", Group: "electronics"},
	{Pattern: `drone|quadcopter|uav`, HSCode: "880692", Group: "electronics"},

	// Automotive
	{Pattern: `car mat|floor mat|car interior`, HSCode: "570500", Group: "automotive"},
	{Pattern: `car accessory|auto accessory`, HSCode: "870899", Group: "automotive"},

	// Jewellery
	{Pattern: `necklace|chain`, HSCode: "711719", Group: "jewellery"},
	{Pattern: `bangle|bracelet`, HSCode: "711719", Group: "jewellery"},
	{Pattern: `ring`, HSCode: "711319", Group: "jewellery"},
	{Pattern: `earring`, HSCode: "711711", Group: "jewellery"},

	// Home & garden
	{Pattern: `plant container|pot|planter`, HSCode: "691390", Group: "home"},
	{Pattern: `furniture`, HSCode: "940380", Group: "home"},

	// Cases & covers
	{Pattern: `case.*phone|cover.*phone|phone.*case|phone.*cover`, HSCode: "392690", Group: "cases"},
	{Pattern: `case.*tablet|cover.*tablet|tablet.*case|tablet.*cover`, HSCode: "420292", Group: "cases"},
}

func defaultProfiles() []model.RiskProfile {
	threshold := PreciousMetalsThreshold
	return []model.RiskProfile{
		{
			Name:     "A1_LITHIUM_BATTERIES",
			Code:     "A1",
			Category: "A - DANGEROUS GOODS",
			Keywords: []string{"power bank", "lithium", "li-ion", "li ion", "battery", "portable charger"},
			Reason:   "Fire hazard / Thermal runaway",
			Action:   "FLAG FOR INSPECTION - Verify if battery is contained in equipment",
		},
		{
			Name:     "A2_WEAPONS",
			Code:     "A2",
			Category: "A - DANGEROUS GOODS",
			Keywords: []string{"knife", "dagger", "blade", "sword", "cutter", "machete"},
			Reason:   "Physical security threat / Prohibited items",
			Action:   "FLAG FOR PHYSICAL EXAM - Check if kitchenware or prohibited weapon",
		},
		{
			Name:     "B1_DRONES",
			Code:     "B1",
			Category: "B - RESTRICTED & CONTROLLED",
			Keywords: []string{"drone", "quadcopter", "spy camera", "hidden camera", "uav"},
			Reason:   "Security / Privacy / Airspace regulation",
			Action:   "HOLD FOR PERMIT CHECK",
		},
		{
			Name:           "B2_PRECIOUS_METALS",
			Code:           "B2",
			Category:       "B - RESTRICTED & CONTROLLED",
			Keywords:       []string{"gold", "diamond", "silver", "jewellery", "jewelry"},
			Reason:         "Money Laundering / Smuggling / Revenue Leakage",
			Action:         "VALUATION ALERT - Cross-reference with Level 3 Engine",
			ValueThreshold: &threshold,
		},
	}
}
