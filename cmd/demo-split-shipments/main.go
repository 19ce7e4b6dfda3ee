// Demo program showing split-shipment detection and the de-minimis gate
// on small in-memory exports
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/customsgate/internal/catalog"
	"github.com/ppiankov/customsgate/internal/classify"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/pipeline"
)

const header = "order_id,timestamp,importer_name,delivery_address,product_category,product_title,description,item_price_inr,total_order_value_inr,pid\n"

const tariff = `Section,Chapter_Start,Chapter_End,Simplified_Duty_Rate,Description
XI,50,63,5,Textiles
XVI,84,85,10,Machinery and electrical
XIV,71,71,10,Jewellery
`

func main() {
	fmt.Println("=== Split Shipment Detection Demo ===")
	fmt.Println()

	scenarios := []struct {
		name string
		rows string
	}{
		{
			name: "Two same-day orders totaling 1,500 AED",
			rows: "D1,05/03/2025 09:15,Acme Traders,12 Palm St,Apparel,Mens Shirt,cotton,18000,18000,P1\n" +
				"D2,05/03/2025 17:40,ACME TRADERS ,12 palm st,Electronics,Smartphone,mobile phone,16090.91,16090.91,P2\n",
		},
		{
			name: "One order of 1,500 AED",
			rows: "S1,05/03/2025 11:00,Solo Imports,7 Creek Rd,Apparel,Mens Shirt,cotton,34090.91,34090.91,P3\n",
		},
		{
			name: "Same importer on two different days",
			rows: "T1,05/03/2025 11:00,Twice LLC,3 Marina,Apparel,Mens Jeans,denim,15000,15000,P4\n" +
				"T2,06/03/2025 11:00,Twice LLC,3 Marina,Apparel,Mens Jeans,denim,15000,15000,P5\n",
		},
		{
			name: "Gold above the precious metals threshold",
			rows: "G1,07/03/2025 10:00,Gilt Co,1 Souk Ln,Jewellery,Gold Chain,22k gold,150000,150000,P6\n",
		},
	}

	for _, gate := range []string{model.DutyGateDailyTotal, model.DutyGateRevenueRisk} {
		fmt.Printf("Duty gate: %s\n", gate)
		fmt.Println(strings.Repeat("-", 60))

		cfg := model.DefaultConfig()
		cfg.DutyGate = gate
		cat := catalog.Default()
		c, err := classify.New(cfg, cat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classifier: %v\n", err)
			os.Exit(1)
		}
		p := pipeline.New(cfg, cat, c, nil)

		for _, sc := range scenarios {
			res, err := p.Run(context.Background(), strings.NewReader(header+sc.rows), strings.NewReader(tariff))
			if err != nil {
				fmt.Printf("  %s: error: %v\n", sc.name, err)
				continue
			}

			fmt.Printf("  %s\n", sc.name)
			for _, item := range res.Items {
				fmt.Printf("     - %s split=%s daily=%.2f risk=%v hs=%s duty=%.2f flags=%s\n",
					item.OrderID, item.SplitFlag(), item.DailyTotal(), item.RevenueRisk(),
					item.HSCode, item.Duty, item.RiskCode)
			}
		}
		fmt.Println()
	}

	fmt.Println("=== Demo Complete ===")
}
