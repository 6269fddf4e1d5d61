package costs

import "fmt"

// SummaryRow is one display row. Section headers carry a Category and no Amount.
type SummaryRow struct {
	Category   string   `json:"category"`
	Item       string   `json:"item"`
	Amount     *float64 `json:"amount,omitempty"`
	Percentage string   `json:"percentage"`
}

func header(category string) SummaryRow { return SummaryRow{Category: category} }

func line(item string, amount float64, pct string) SummaryRow {
	return SummaryRow{Item: item, Amount: &amount, Percentage: pct}
}

// SummaryTable flattens a breakdown into hard / soft / total sections.
func SummaryTable(b *Breakdown) []SummaryRow {
	s := b.Summary
	rows := []SummaryRow{
		header("HARD COSTS"),
		line("Land Purchase", b.LandCosts.PurchasePrice, ""),
		line("Land Acquisition Costs", b.LandCosts.AcquisitionCosts, ""),
		line("Base Construction", b.ConstructionCosts.BaseCost, ""),
		line("Site Works", b.SiteWorks.Total, ""),
		line("Contingency", b.Contingency.Total, ""),
		line("Subtotal Hard Costs", s.TotalHardCosts, fmt.Sprintf("%.1f%%", s.HardCostPct)),

		header("SOFT COSTS"),
		line("Professional Fees", b.ProfessionalFees.Total, ""),
		line("Government Charges", b.GovernmentCharges.Total, ""),
		line("Other Costs", b.OtherCosts.Total, ""),
	}
	if b.FinanceCosts > 0 {
		rows = append(rows, line("Finance Costs", b.FinanceCosts, ""))
	}
	rows = append(rows,
		line("Subtotal Soft Costs", s.TotalSoftCosts, fmt.Sprintf("%.1f%%", s.SoftCostPct)),
		header("TOTAL"),
		line("Total Development Cost", s.TotalDevelopmentCost, "100%"),
		line("Cost per sqm (GFA)", s.CostPerSqmGFA, ""),
	)
	return rows
}

// SunshineCoastWarehouse is a 4,200 sqm standard warehouse on 8,500 sqm of land.
func SunshineCoastWarehouse() Assumptions {
	a := DefaultAssumptions()
	a.ProjectName = "Sunshine Coast Industrial Warehouse"
	a.Location = "sunshine_coast"
	a.PropertyType = WarehouseStandard
	a.LandAreaSqm = 8500
	a.LandPricePerSqm = 350
	a.GrossFloorArea = 4200
	a.SiteCoveragePct = 49.4
	a.ConstructionRatePerSqm = 1250
	a.SiteWorks = SiteWorks{
		SiteClearing:         25000,
		Earthworks:           150000,
		StormwaterDrainage:   80000,
		SewerConnection:      35000,
		WaterConnection:      25000,
		ElectricalConnection: 45000,
		RoadWorks:            120000,
		CarParking:           85000,
		Hardstand:            180000,
		Landscaping:          35000,
		Fencing:              45000,
	}
	a.LegalFees = 30000
	a.ValuationFees = 8000
	return a
}
