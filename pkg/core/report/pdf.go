package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/metrics"
	"dev_feasibility/pkg/core/returns"
	"dev_feasibility/pkg/core/utils"

	"github.com/jung-kurt/gofpdf"
)

const (
	headingR, headingG, headingB = 0x2c, 0x5a, 0xa0
	pageWidth                    = 180.0
)

type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) heading(title string) {
	w.pdf.Ln(4)
	w.pdf.SetFont("Arial", "B", 16)
	w.pdf.SetTextColor(headingR, headingG, headingB)
	w.pdf.CellFormat(0, 9, w.tr(title), "", 1, "L", false, 0, "")
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetFont("Arial", "", 10)
}

func (w *pdfWriter) subheading(title string) {
	w.pdf.Ln(2)
	w.pdf.SetFont("Arial", "B", 12)
	w.pdf.CellFormat(0, 7, w.tr(title), "", 1, "L", false, 0, "")
	w.pdf.SetFont("Arial", "", 10)
}

func (w *pdfWriter) paragraph(text string) {
	w.pdf.MultiCell(0, 5, w.tr(text), "", "J", false)
	w.pdf.Ln(1)
}

// table draws a bordered grid. The first column is left aligned and the rest
// right aligned.
func (w *pdfWriter) table(widths []float64, header []string, rows [][]string) {
	w.pdf.SetFont("Arial", "B", 10)
	w.pdf.SetFillColor(headingR, headingG, headingB)
	w.pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		w.pdf.CellFormat(widths[i], 7, w.tr(h), "1", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			w.pdf.CellFormat(widths[i], 6, w.tr(cell), "1", 0, align, false, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(3)
}

// BuildPDF renders the investment report. commentaryHTML is optional
// assistant output rendered by utils.RenderMarkdown.
func BuildPDF(an *feasibility.Analysis, commentaryHTML string) ([]byte, error) {
	if an == nil || an.Returns == nil {
		return nil, fmt.Errorf("report: analysis has no returns")
	}
	commentary, err := CommentaryBlocks(commentaryHTML)
	if err != nil {
		return nil, err
	}
	summary := Summarize(an)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	// Cover
	pdf.AddPage()
	pdf.Ln(50)
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0x1f, 0x47, 0x88)
	pdf.CellFormat(0, 12, "Investment Analysis Report", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, w.tr(an.ProjectName), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 7, "Report Date: "+an.GeneratedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	if an.Scenario != "" {
		pdf.CellFormat(0, 7, "Scenario: "+scenarioTitle(an.Scenario), "", 1, "C", false, 0, "")
	}

	// Executive summary
	pdf.AddPage()
	w.heading("Executive Summary")
	r, g, b := RecommendationColor(summary.Recommendation)
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(r, g, b)
	pdf.CellFormat(0, 10, "Investment Recommendation: "+summary.Recommendation, "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 10)

	cfm := an.Returns.CashFlowModel
	w.paragraph(fmt.Sprintf("This report presents the financial feasibility of %s with an estimated total development cost of %s held for %d years.",
		an.ProjectName, utils.Money(cfm.DevelopmentCosts.TotalDevelopmentCost), an.Params.HoldingPeriodYears))

	w.subheading("Key Investment Metrics")
	metricRows := make([][]string, 0, len(summary.Metrics))
	for _, m := range summary.Metrics {
		metricRows = append(metricRows, []string{m.Metric, m.Value, m.Assessment})
	}
	w.table([]float64{70, 60, 50}, []string{"Metric", "Value", "Assessment"}, metricRows)

	// Costs
	pdf.AddPage()
	w.heading("Financial Analysis")
	w.subheading("Development Cost Breakdown")
	dc := cfm.DevelopmentCosts
	w.table([]float64{110, 70}, []string{"Cost Category", "Amount"}, [][]string{
		{"Land Acquisition", utils.Money(dc.LandCost)},
		{"Acquisition Costs", utils.Money(dc.AcquisitionCosts)},
		{"Hard Costs", utils.Money(dc.HardCosts)},
		{"Contingency", utils.Money(dc.Contingency)},
		{"Soft Costs", utils.Money(dc.SoftCosts)},
		{"Total Development Cost", utils.Money(dc.TotalDevelopmentCost)},
	})

	if len(an.CostSummary) > 0 {
		w.subheading("Detailed Cost Estimate")
		var rows [][]string
		for _, row := range an.CostSummary {
			if row.Amount == nil {
				rows = append(rows, []string{row.Category, "", ""})
				continue
			}
			rows = append(rows, []string{"  " + row.Item, utils.FormatCurrency(row.Amount), row.Percentage})
		}
		w.table([]float64{100, 50, 30}, []string{"Item", "Amount", "Share"}, rows)
	}

	w.subheading("Financing Structure")
	fs := cfm.Financing
	w.table([]float64{90, 50, 40}, []string{"Component", "Amount", "% of Total"}, [][]string{
		{"Equity Investment", utils.Money(fs.EquityRequired), fmt.Sprintf("%.0f%%", an.Params.EquityPct)},
		{"Debt Financing", utils.Money(fs.DebtAmount), fmt.Sprintf("%.0f%%", an.Params.DebtPct)},
		{"Capitalized Interest", utils.Money(cfm.CapitalizedInterest), ""},
		{"Total Loan at Completion", utils.Money(cfm.TotalLoanAtCompletion), ""},
	})

	if f := an.Financing; f != nil {
		w.subheading("Construction to Investment Refinance")
		var rows [][]string
		for _, row := range f.ComparisonTable() {
			rows = append(rows, []string{row.Parameter, formatComparison(row.Value, row.Unit)})
		}
		w.table([]float64{110, 70}, []string{"Parameter", "Value"}, rows)
	}

	// Scenarios
	if len(an.Scenarios) > 0 {
		pdf.AddPage()
		w.heading("Scenario Analysis")
		w.paragraph("Three scenarios have been modelled to assess the range of potential outcomes.")
		var rows [][]string
		for _, s := range returns.Scenarios {
			res, ok := an.Scenarios[s.Name]
			if !ok {
				continue
			}
			rows = append(rows, []string{scenarioTitle(s.Name), utils.FormatPercentage(res.IRR), utils.FormatCurrency(res.NPV), utils.FormatMultiple(res.EquityMultiple)})
		}
		w.table([]float64{50, 40, 50, 40}, []string{"Scenario", "IRR", "NPV", "Equity Multiple"}, rows)
		w.subheading("Scenario Assumptions")
		for _, line := range ScenarioAssumptions() {
			w.paragraph("- " + line)
		}
	}

	if t := an.Tornado; t != nil && len(t.TornadoData) > 0 {
		w.subheading("Sensitivity Ranking")
		var rows [][]string
		for _, item := range t.TornadoData {
			rows = append(rows, []string{
				returns.VariableLabel(item.Variable),
				utils.FormatPercentage(item.LowIRR),
				utils.FormatPercentage(item.HighIRR),
				fmt.Sprintf("%.2f", item.Impact),
			})
		}
		w.table([]float64{60, 40, 40, 40}, []string{"Variable", "Low IRR", "High IRR", "Impact (pts)"}, rows)
	}

	// Risks
	pdf.AddPage()
	w.heading("Risk Assessment")
	w.paragraph("The following key risks have been identified for this investment.")
	var riskRows [][]string
	for _, risk := range summary.Risks {
		riskRows = append(riskRows, []string{risk.Category, risk.Probability, risk.Impact, risk.Mitigation})
	}
	w.table([]float64{50, 22, 22, 86}, []string{"Risk Category", "Probability", "Impact", "Mitigation"}, riskRows)

	if len(commentary) > 0 {
		w.heading("Analyst Commentary")
		for _, block := range commentary {
			switch block.Kind {
			case BlockHeading:
				w.subheading(block.Text)
			case BlockBullet:
				w.paragraph("- " + block.Text)
			default:
				w.paragraph(block.Text)
			}
		}
	}

	w.heading("Conclusion & Recommendation")
	w.paragraph(conclusionText(an, summary))

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	metrics.IncReport("pdf")
	return buf.Bytes(), nil
}

func conclusionText(an *feasibility.Analysis, s Summary) string {
	r := an.Returns
	var b strings.Builder
	fmt.Fprintf(&b, "This opportunity presents a %s case for investment. ", strings.ToLower(s.Recommendation))
	relation := "below"
	if r.IRR != nil && *r.IRR >= TargetIRR {
		relation = "exceeding"
	}
	fmt.Fprintf(&b, "The projected IRR of %s is %s the %.0f%% hurdle rate. ", utils.FormatPercentage(r.IRR), relation, TargetIRR)
	fmt.Fprintf(&b, "The equity multiple is %s over the %d-year hold and NPV is %s. ",
		utils.FormatMultiple(r.EquityMultiple), an.Params.HoldingPeriodYears, utils.FormatCurrency(r.NPV))
	b.WriteString(s.Conclusion)
	return b.String()
}

func formatComparison(v interface{}, unit string) string {
	switch x := v.(type) {
	case float64:
		switch unit {
		case "AUD":
			return utils.Money(x)
		case "%":
			return fmt.Sprintf("%.2f%%", x)
		default:
			return fmt.Sprintf("%.2f %s", x, unit)
		}
	case int:
		return fmt.Sprintf("%d %s", x, unit)
	default:
		return fmt.Sprint(v)
	}
}
