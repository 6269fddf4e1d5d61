package costs

import (
	"dev_feasibility/pkg/core/fin"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// AcquisitionBreakdown is the indicative split of acquisition costs.
type AcquisitionBreakdown struct {
	StampDuty         float64 `json:"stamp_duty_estimate"`
	LegalConveyancing float64 `json:"legal_conveyancing"`
	DueDiligence      float64 `json:"due_diligence"`
}

type LandCosts struct {
	LandAreaSqm          float64              `json:"land_area_sqm"`
	LandPricePerSqm      float64              `json:"land_price_per_sqm"`
	PurchasePrice        float64              `json:"land_purchase_price"`
	AcquisitionCosts     float64              `json:"acquisition_costs"`
	AcquisitionBreakdown AcquisitionBreakdown `json:"acquisition_costs_breakdown"`
	Total                float64              `json:"total_land_cost"`
}

type BenchmarkComparison struct {
	RateUsed float64 `json:"rate_used"`
	Min      float64 `json:"benchmark_min"`
	Max      float64 `json:"benchmark_max"`
}

type ConstructionCosts struct {
	GrossFloorArea float64             `json:"gross_floor_area"`
	RatePerSqm     float64             `json:"construction_rate_per_sqm"`
	BaseCost       float64             `json:"base_construction_cost"`
	Benchmark      BenchmarkComparison `json:"benchmark_comparison"`
}

type SiteWorksCosts struct {
	Items SiteWorks `json:"items"`
	Total float64   `json:"total"`
}

type Contingency struct {
	DesignPct       float64 `json:"design_contingency_pct"`
	Design          float64 `json:"design_contingency"`
	ConstructionPct float64 `json:"construction_contingency_pct"`
	Construction    float64 `json:"construction_contingency"`
	Total           float64 `json:"total_contingency"`
}

type ProfessionalFees struct {
	Architect          float64 `json:"architect"`
	StructuralEngineer float64 `json:"structural_engineer"`
	CivilEngineer      float64 `json:"civil_engineer"`
	MEPEngineer        float64 `json:"mep_engineer"`
	QuantitySurveyor   float64 `json:"quantity_surveyor"`
	ProjectManager     float64 `json:"project_manager"`
	TownPlanner        float64 `json:"town_planner"`
	Surveyor           float64 `json:"surveyor"`
	Geotechnical       float64 `json:"geotechnical"`
	Environmental      float64 `json:"environmental"`
	LegalFees          float64 `json:"legal_fees"`
	ValuationFees      float64 `json:"valuation_fees"`
	Total              float64 `json:"total"`
}

type GovernmentCharges struct {
	InfrastructureContribution float64 `json:"infrastructure_contribution"`
	DevelopmentApplication     float64 `json:"development_application"`
	BuildingApproval           float64 `json:"building_approval"`
	PlumbingApproval           float64 `json:"plumbing_approval"`
	OperationalWorks           float64 `json:"operational_works"`
	ComplianceCertificate      float64 `json:"compliance_certificate"`
	HeadworksWater             float64 `json:"headworks_water"`
	HeadworksSewer             float64 `json:"headworks_sewer"`
	FireServicesLevy           float64 `json:"fire_services_levy"`
	Total                      float64 `json:"total"`
}

type OtherCosts struct {
	Marketing float64 `json:"marketing"`
	Insurance float64 `json:"insurance_during_construction"`
	BankFees  float64 `json:"bank_fees_estimate"`
	Total     float64 `json:"total"`
}

// Summary carries the roll-up totals. TotalDevelopmentCost is always
// TotalHardCosts + TotalSoftCosts.
type Summary struct {
	TotalLand            float64 `json:"total_land"`
	TotalConstruction    float64 `json:"total_construction"`
	TotalSiteWorks       float64 `json:"total_site_works"`
	TotalContingency     float64 `json:"total_contingency"`
	TotalHardCosts       float64 `json:"total_hard_costs"`
	TotalSoftCosts       float64 `json:"total_soft_costs"`
	TotalDevelopmentCost float64 `json:"total_development_cost"`
	HardCostPct          float64 `json:"hard_cost_percentage"`
	SoftCostPct          float64 `json:"soft_cost_percentage"`
	CostPerSqmGFA        float64 `json:"cost_per_sqm_gfa"`
	CostPerSqmLand       float64 `json:"cost_per_sqm_land"`
}

// Breakdown is the full estimator output.
type Breakdown struct {
	ProjectName       string            `json:"project_name"`
	Location          string            `json:"location"`
	PropertyType      PropertyType      `json:"property_type"`
	LandCosts         LandCosts         `json:"land_costs"`
	ConstructionCosts ConstructionCosts `json:"construction_costs"`
	SiteWorks         SiteWorksCosts    `json:"site_works"`
	Contingency       Contingency       `json:"contingency"`
	ProfessionalFees  ProfessionalFees  `json:"professional_fees"`
	GovernmentCharges GovernmentCharges `json:"government_charges"`
	OtherCosts        OtherCosts        `json:"other_costs"`
	FinanceCosts      float64           `json:"finance_costs"`
	Summary           Summary           `json:"summary"`
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate rejects negative money/areas and percentages outside [0, 100].
// Zero areas are allowed and simply produce zero costs.
func (a Assumptions) Validate() error {
	checks := []error{
		fin.NonNegative("land_area_sqm", a.LandAreaSqm),
		fin.NonNegative("land_price_per_sqm", a.LandPricePerSqm),
		fin.NonNegative("gross_floor_area", a.GrossFloorArea),
		fin.NonNegative("construction_rate_per_sqm", a.ConstructionRatePerSqm),
		fin.NonNegative("legal_fees", a.LegalFees),
		fin.NonNegative("valuation_fees", a.ValuationFees),
		fin.NonNegative("marketing_costs", a.MarketingCosts),
		fin.NonNegative("finance_costs", a.FinanceCosts),
		fin.Within("land_acquisition_costs_pct", a.AcquisitionCostsPct, 0, maxPercentage),
		fin.Within("site_coverage_pct", a.SiteCoveragePct, 0, maxPercentage),
		fin.Within("design_contingency_pct", a.DesignContingencyPct, 0, maxPercentage),
		fin.Within("construction_contingency_pct", a.ConstructionContingencyPct, 0, maxPercentage),
	}
	if err := fin.FirstError(checks...); err != nil {
		return err
	}
	for _, f := range a.Fees.fields() {
		if err := fin.Within(f.name, f.value, 0, maxPercentage); err != nil {
			return err
		}
	}
	for _, item := range a.SiteWorks.items() {
		if err := fin.NonNegative("site_works."+item.name, item.value); err != nil {
			return err
		}
	}
	return nil
}

// resolve fills the benchmark construction rate and the council fallback
// without touching the caller's copy.
func (a Assumptions) resolve() Assumptions {
	if a.PropertyType == "" {
		a.PropertyType = DefaultPropertyType
	}
	if a.ConstructionRatePerSqm == 0 {
		if b, ok := ConstructionBenchmarks[a.PropertyType]; ok {
			a.ConstructionRatePerSqm = b.Typical
		} else {
			a.ConstructionRatePerSqm = fallbackConstructionRate
		}
	}
	if _, ok := CouncilCharges[a.Location]; !ok {
		a.Location = DefaultCouncil
	}
	return a
}

// =============================================================================
// ESTIMATE
// =============================================================================

// Estimate produces the full cost breakdown.
//
// FORMULA:
//
//	Hard = Land + Acquisition + Construction + SiteWorks + Contingency
//	Soft = ProfessionalFees + GovernmentCharges + Other (+ Finance)
//	TDC  = Hard + Soft
func Estimate(input Assumptions) (*Breakdown, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	a := input.resolve()

	b := &Breakdown{
		ProjectName:  a.ProjectName,
		Location:     a.Location,
		PropertyType: a.PropertyType,
	}

	b.LandCosts = landCosts(a)
	b.ConstructionCosts = constructionCosts(a)
	b.SiteWorks = SiteWorksCosts{Items: a.SiteWorks, Total: a.SiteWorks.Total()}
	b.Contingency = contingency(a, b.ConstructionCosts.BaseCost+b.SiteWorks.Total)
	b.ProfessionalFees = professionalFees(a, b.ConstructionCosts.BaseCost)
	b.GovernmentCharges = governmentCharges(a, b.ConstructionCosts.BaseCost)
	b.OtherCosts = otherCosts(a, b.ConstructionCosts.BaseCost)
	if a.IncludeFinanceCosts {
		b.FinanceCosts = a.FinanceCosts
	}

	s := &b.Summary
	s.TotalLand = b.LandCosts.Total
	s.TotalConstruction = b.ConstructionCosts.BaseCost
	s.TotalSiteWorks = b.SiteWorks.Total
	s.TotalContingency = b.Contingency.Total
	s.TotalHardCosts = s.TotalLand + s.TotalConstruction + s.TotalSiteWorks + s.TotalContingency
	s.TotalSoftCosts = b.ProfessionalFees.Total + b.GovernmentCharges.Total + b.OtherCosts.Total + b.FinanceCosts
	s.TotalDevelopmentCost = s.TotalHardCosts + s.TotalSoftCosts

	if s.TotalDevelopmentCost > 0 {
		s.HardCostPct = s.TotalHardCosts / s.TotalDevelopmentCost * 100
		s.SoftCostPct = s.TotalSoftCosts / s.TotalDevelopmentCost * 100
	}
	s.CostPerSqmGFA = fin.SafeDiv(s.TotalDevelopmentCost, a.GrossFloorArea)
	s.CostPerSqmLand = fin.SafeDiv(s.TotalDevelopmentCost, a.LandAreaSqm)

	return b, nil
}

func landCosts(a Assumptions) LandCosts {
	purchase := a.LandAreaSqm * a.LandPricePerSqm
	acquisition := purchase * a.AcquisitionCostsPct / 100
	return LandCosts{
		LandAreaSqm:      a.LandAreaSqm,
		LandPricePerSqm:  a.LandPricePerSqm,
		PurchasePrice:    purchase,
		AcquisitionCosts: acquisition,
		AcquisitionBreakdown: AcquisitionBreakdown{
			StampDuty:         purchase * stampDutyRate,
			LegalConveyancing: purchase * legalConveyancingRate,
			DueDiligence:      purchase * dueDiligenceRate,
		},
		Total: purchase + acquisition,
	}
}

func constructionCosts(a Assumptions) ConstructionCosts {
	bench := ConstructionBenchmarks[a.PropertyType]
	return ConstructionCosts{
		GrossFloorArea: a.GrossFloorArea,
		RatePerSqm:     a.ConstructionRatePerSqm,
		BaseCost:       a.GrossFloorArea * a.ConstructionRatePerSqm,
		Benchmark: BenchmarkComparison{
			RateUsed: a.ConstructionRatePerSqm,
			Min:      bench.Min,
			Max:      bench.Max,
		},
	}
}

// contingency applies to construction plus site works, never to land.
func contingency(a Assumptions, base float64) Contingency {
	design := base * a.DesignContingencyPct / 100
	construction := base * a.ConstructionContingencyPct / 100
	return Contingency{
		DesignPct:       a.DesignContingencyPct,
		Design:          design,
		ConstructionPct: a.ConstructionContingencyPct,
		Construction:    construction,
		Total:           design + construction,
	}
}

// professionalFees are a percentage of base construction only. Site works and
// contingency are excluded.
func professionalFees(a Assumptions, base float64) ProfessionalFees {
	pct := func(p float64) float64 { return base * p / 100 }
	f := ProfessionalFees{
		Architect:          pct(a.Fees.ArchitectPct),
		StructuralEngineer: pct(a.Fees.StructuralEngineerPct),
		CivilEngineer:      pct(a.Fees.CivilEngineerPct),
		MEPEngineer:        pct(a.Fees.MEPEngineerPct),
		QuantitySurveyor:   pct(a.Fees.QuantitySurveyorPct),
		ProjectManager:     pct(a.Fees.ProjectManagerPct),
		TownPlanner:        pct(a.Fees.TownPlannerPct),
		Surveyor:           pct(a.Fees.SurveyorPct),
		Geotechnical:       pct(a.Fees.GeotechnicalPct),
		Environmental:      pct(a.Fees.EnvironmentalPct),
		LegalFees:          a.LegalFees,
		ValuationFees:      a.ValuationFees,
	}
	f.Total = f.Architect + f.StructuralEngineer + f.CivilEngineer + f.MEPEngineer +
		f.QuantitySurveyor + f.ProjectManager + f.TownPlanner + f.Surveyor +
		f.Geotechnical + f.Environmental + f.LegalFees + f.ValuationFees
	return f
}

// governmentCharges uses the council table; DA fee carries a surcharge on GFA
// above 2,000 sqm.
func governmentCharges(a Assumptions, base float64) GovernmentCharges {
	rates := CouncilCharges[a.Location]

	da := rates.DABaseFee
	if a.GrossFloorArea > daThresholdSqm {
		da += (a.GrossFloorArea - daThresholdSqm) * rates.DAPerSqmOver2000
	}

	g := GovernmentCharges{
		InfrastructureContribution: a.GrossFloorArea * rates.InfrastructurePerSqm,
		DevelopmentApplication:     da,
		BuildingApproval:           base * rates.BuildingApprovalPct / 100,
		PlumbingApproval:           rates.PlumbingApproval,
		OperationalWorks:           rates.OperationalWorksBase,
		ComplianceCertificate:      complianceCertificate,
		HeadworksWater:             a.GrossFloorArea * headworksWaterPerSqm,
		HeadworksSewer:             a.GrossFloorArea * headworksSewerPerSqm,
		FireServicesLevy:           base * fireLevyRate,
	}
	g.Total = g.InfrastructureContribution + g.DevelopmentApplication + g.BuildingApproval +
		g.PlumbingApproval + g.OperationalWorks + g.ComplianceCertificate +
		g.HeadworksWater + g.HeadworksSewer + g.FireServicesLevy
	return g
}

func otherCosts(a Assumptions, base float64) OtherCosts {
	o := OtherCosts{
		Marketing: a.MarketingCosts,
		Insurance: base * insuranceRate,
	}
	o.Total = o.Marketing + o.Insurance + o.BankFees
	return o
}
