// Package costs rolls up an industrial development's land, construction,
// site-works, contingency, professional-fee and government-charge line items
// into hard/soft cost totals. Rates are indicative Queensland benchmarks.
package costs

// =============================================================================
// PROPERTY TYPES & CONSTRUCTION BENCHMARKS
// =============================================================================

// PropertyType selects the construction-rate benchmark.
type PropertyType string

const (
	WarehouseBasic      PropertyType = "basic_warehouse"
	WarehouseStandard   PropertyType = "standard_warehouse"
	WarehouseHighSpec   PropertyType = "high_spec_warehouse"
	DistributionCenter  PropertyType = "distribution_center"
	Manufacturing       PropertyType = "manufacturing"
	ColdStorage         PropertyType = "cold_storage"
	DefaultPropertyType              = WarehouseStandard
)

// RateBenchmark is a $/sqm GFA construction range.
type RateBenchmark struct {
	Min     float64 `json:"min"`
	Typical float64 `json:"typical"`
	Max     float64 `json:"max"`
}

// ConstructionBenchmarks holds 2024-25 QLD industrial build rates.
var ConstructionBenchmarks = map[PropertyType]RateBenchmark{
	WarehouseBasic:     {Min: 900, Typical: 1000, Max: 1100},
	WarehouseStandard:  {Min: 1100, Typical: 1250, Max: 1400},
	WarehouseHighSpec:  {Min: 1400, Typical: 1550, Max: 1800},
	DistributionCenter: {Min: 1200, Typical: 1400, Max: 1600},
	Manufacturing:      {Min: 1300, Typical: 1500, Max: 1800},
	ColdStorage:        {Min: 2000, Typical: 2500, Max: 3000},
}

// fallbackConstructionRate applies when the property type is not in the table.
const fallbackConstructionRate = 1250.0

// =============================================================================
// COUNCIL CHARGES
// =============================================================================

// CouncilRates are the per-council government charge inputs.
type CouncilRates struct {
	InfrastructurePerSqm float64 `json:"infrastructure_charge_per_sqm"`
	DABaseFee            float64 `json:"da_base_fee"`
	DAPerSqmOver2000     float64 `json:"da_per_sqm_over_2000"`
	BuildingApprovalPct  float64 `json:"building_approval_pct"`
	PlumbingApproval     float64 `json:"plumbing_approval"`
	OperationalWorksBase float64 `json:"operational_works_base"`
}

// DefaultCouncil is used for any location missing from CouncilCharges.
const DefaultCouncil = "brisbane"

// CouncilCharges is indicative QLD charging for industrial GFA.
var CouncilCharges = map[string]CouncilRates{
	"brisbane": {
		InfrastructurePerSqm: 30.0,
		DABaseFee:            1547.0,
		DAPerSqmOver2000:     0.85,
		BuildingApprovalPct:  0.25,
		PlumbingApproval:     450.0,
		OperationalWorksBase: 2500.0,
	},
	"sunshine_coast": {
		InfrastructurePerSqm: 35.0,
		DABaseFee:            1450.0,
		DAPerSqmOver2000:     0.80,
		BuildingApprovalPct:  0.25,
		PlumbingApproval:     400.0,
		OperationalWorksBase: 2200.0,
	},
	"moreton_bay": {
		InfrastructurePerSqm: 28.0,
		DABaseFee:            1400.0,
		DAPerSqmOver2000:     0.75,
		BuildingApprovalPct:  0.25,
		PlumbingApproval:     380.0,
		OperationalWorksBase: 2000.0,
	},
}

const (
	daThresholdSqm          = 2000.0
	complianceCertificate   = 1500.0
	headworksWaterPerSqm    = 5.0
	headworksSewerPerSqm    = 8.0
	fireLevyRate            = 0.001
	insuranceRate           = 0.01
	stampDutyRate           = 0.045
	legalConveyancingRate   = 0.005
	dueDiligenceRate        = 0.01
	defaultAcquisitionPct   = 6.0
	defaultContingencyPct   = 5.0
	defaultLegalFees        = 25000.0
	defaultValuationFees    = 5000.0
	defaultSiteCoveragePct  = 50.0
	maxPercentage           = 100.0
)

// =============================================================================
// PROFESSIONAL FEES
// =============================================================================

// FeeBenchmark is a % of base construction range.
type FeeBenchmark struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Typical float64 `json:"typical"`
}

// ProfessionalFeeBenchmarks is informational; Estimate never enforces it.
var ProfessionalFeeBenchmarks = map[string]FeeBenchmark{
	"architect":           {Min: 2.0, Max: 5.0, Typical: 3.0},
	"structural_engineer": {Min: 1.0, Max: 2.5, Typical: 1.5},
	"civil_engineer":      {Min: 1.0, Max: 2.0, Typical: 1.5},
	"mep_engineer":        {Min: 1.5, Max: 3.0, Typical: 2.0},
	"quantity_surveyor":   {Min: 0.5, Max: 1.5, Typical: 1.0},
	"project_manager":     {Min: 2.0, Max: 5.0, Typical: 3.0},
	"town_planner":        {Min: 0.3, Max: 1.0, Typical: 0.5},
	"surveyor":            {Min: 0.2, Max: 0.5, Typical: 0.3},
	"geotechnical":        {Min: 0.2, Max: 0.5, Typical: 0.3},
	"environmental":       {Min: 0.1, Max: 0.5, Typical: 0.2},
}

// FeeRates are professional fee percentages of base construction cost.
type FeeRates struct {
	ArchitectPct          float64 `json:"architect_pct"`
	StructuralEngineerPct float64 `json:"structural_engineer_pct"`
	CivilEngineerPct      float64 `json:"civil_engineer_pct"`
	MEPEngineerPct        float64 `json:"mep_engineer_pct"`
	QuantitySurveyorPct   float64 `json:"quantity_surveyor_pct"`
	ProjectManagerPct     float64 `json:"project_manager_pct"`
	TownPlannerPct        float64 `json:"town_planner_pct"`
	SurveyorPct           float64 `json:"surveyor_pct"`
	GeotechnicalPct       float64 `json:"geotechnical_pct"`
	EnvironmentalPct      float64 `json:"environmental_pct"`
}

// DefaultFeeRates returns the typical benchmark for every discipline.
func DefaultFeeRates() FeeRates {
	return FeeRates{
		ArchitectPct:          3.0,
		StructuralEngineerPct: 1.5,
		CivilEngineerPct:      1.5,
		MEPEngineerPct:        2.0,
		QuantitySurveyorPct:   1.0,
		ProjectManagerPct:     3.0,
		TownPlannerPct:        0.5,
		SurveyorPct:           0.3,
		GeotechnicalPct:       0.3,
		EnvironmentalPct:      0.2,
	}
}

// namedValue pairs a JSON field name with its value, in declaration order.
type namedValue struct {
	name  string
	value float64
}

func (f FeeRates) fields() []namedValue {
	return []namedValue{
		{"architect_pct", f.ArchitectPct},
		{"structural_engineer_pct", f.StructuralEngineerPct},
		{"civil_engineer_pct", f.CivilEngineerPct},
		{"mep_engineer_pct", f.MEPEngineerPct},
		{"quantity_surveyor_pct", f.QuantitySurveyorPct},
		{"project_manager_pct", f.ProjectManagerPct},
		{"town_planner_pct", f.TownPlannerPct},
		{"surveyor_pct", f.SurveyorPct},
		{"geotechnical_pct", f.GeotechnicalPct},
		{"environmental_pct", f.EnvironmentalPct},
	}
}

// =============================================================================
// SITE WORKS
// =============================================================================

// SiteWorks itemizes external works in dollars.
type SiteWorks struct {
	SiteClearing         float64 `json:"site_clearing"`
	Demolition           float64 `json:"demolition"`
	Earthworks           float64 `json:"earthworks"`
	RetainingWalls       float64 `json:"retaining_walls"`
	StormwaterDrainage   float64 `json:"stormwater_drainage"`
	SewerConnection      float64 `json:"sewer_connection"`
	WaterConnection      float64 `json:"water_connection"`
	ElectricalConnection float64 `json:"electrical_connection"`
	GasConnection        float64 `json:"gas_connection"`
	Telecommunications   float64 `json:"telecommunications"`
	RoadWorks            float64 `json:"road_works"`
	CarParking           float64 `json:"car_parking"`
	Hardstand            float64 `json:"hardstand"`
	Landscaping          float64 `json:"landscaping"`
	Fencing              float64 `json:"fencing"`
	Signage              float64 `json:"signage"`
}

func (s SiteWorks) items() []namedValue {
	return []namedValue{
		{"site_clearing", s.SiteClearing},
		{"demolition", s.Demolition},
		{"earthworks", s.Earthworks},
		{"retaining_walls", s.RetainingWalls},
		{"stormwater_drainage", s.StormwaterDrainage},
		{"sewer_connection", s.SewerConnection},
		{"water_connection", s.WaterConnection},
		{"electrical_connection", s.ElectricalConnection},
		{"gas_connection", s.GasConnection},
		{"telecommunications", s.Telecommunications},
		{"road_works", s.RoadWorks},
		{"car_parking", s.CarParking},
		{"hardstand", s.Hardstand},
		{"landscaping", s.Landscaping},
		{"fencing", s.Fencing},
		{"signage", s.Signage},
	}
}

// Total sums every site-works item.
func (s SiteWorks) Total() float64 {
	return s.SiteClearing + s.Demolition + s.Earthworks + s.RetainingWalls +
		s.StormwaterDrainage + s.SewerConnection + s.WaterConnection +
		s.ElectricalConnection + s.GasConnection + s.Telecommunications +
		s.RoadWorks + s.CarParking + s.Hardstand + s.Landscaping +
		s.Fencing + s.Signage
}

// =============================================================================
// ASSUMPTIONS
// =============================================================================

// Assumptions is the full cost-estimator input.
type Assumptions struct {
	ProjectName  string       `json:"project_name"`
	Location     string       `json:"location"`
	PropertyType PropertyType `json:"property_type"`

	LandAreaSqm         float64 `json:"land_area_sqm"`
	LandPricePerSqm     float64 `json:"land_price_per_sqm"`
	AcquisitionCostsPct float64 `json:"land_acquisition_costs_pct"`

	GrossFloorArea         float64 `json:"gross_floor_area"`
	SiteCoveragePct        float64 `json:"site_coverage_pct"`
	ConstructionRatePerSqm float64 `json:"construction_rate_per_sqm"` // 0 = use benchmark

	SiteWorks SiteWorks `json:"site_works"`

	DesignContingencyPct       float64 `json:"design_contingency_pct"`
	ConstructionContingencyPct float64 `json:"construction_contingency_pct"`

	Fees           FeeRates `json:"professional_fees"`
	LegalFees      float64  `json:"legal_fees"`
	ValuationFees  float64  `json:"valuation_fees"`
	MarketingCosts float64  `json:"marketing_costs"`

	IncludeFinanceCosts bool    `json:"include_finance_costs"`
	FinanceCosts        float64 `json:"finance_costs"`
}

// DefaultAssumptions returns an empty project with every rate at its default.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Location:                   DefaultCouncil,
		PropertyType:               DefaultPropertyType,
		AcquisitionCostsPct:        defaultAcquisitionPct,
		SiteCoveragePct:            defaultSiteCoveragePct,
		DesignContingencyPct:       defaultContingencyPct,
		ConstructionContingencyPct: defaultContingencyPct,
		Fees:                       DefaultFeeRates(),
		LegalFees:                  defaultLegalFees,
		ValuationFees:              defaultValuationFees,
	}
}
