package report

import (
	"bytes"
	"fmt"

	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/metrics"
	"dev_feasibility/pkg/core/returns"

	"github.com/xuri/excelize/v2"
)

// Sheet names in workbook order.
const (
	SheetSummary      = "Summary"
	SheetCosts        = "Costs"
	SheetDraws        = "Draws"
	SheetAmortization = "Amortization"
	SheetCashFlow     = "Cash Flow"
	SheetScenarios    = "Scenarios"
	SheetTornado      = "Tornado"
)

type sheetWriter struct {
	f     *excelize.File
	bold  int
	money int
	errs  []error
}

func (w *sheetWriter) row(sheet string, r int, values ...interface{}) {
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		w.errs = append(w.errs, err)
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.errs = append(w.errs, fmt.Errorf("%s row %d: %w", sheet, r, err))
	}
}

func (w *sheetWriter) header(sheet string, values ...interface{}) {
	w.row(sheet, 1, values...)
	end, _ := excelize.CoordinatesToCellName(len(values), 1)
	_ = w.f.SetCellStyle(sheet, "A1", end, w.bold)
	_ = w.f.SetColWidth(sheet, "A", "A", 28)
}

func (w *sheetWriter) moneyCols(sheet string, from, to string) {
	_ = w.f.SetColStyle(sheet, from+":"+to, w.money)
	_ = w.f.SetColWidth(sheet, from, to, 16)
}

func (w *sheetWriter) sheet(name string) {
	if _, err := w.f.NewSheet(name); err != nil {
		w.errs = append(w.errs, err)
	}
}

// BuildXLSX exports the analysis as a workbook with one sheet per schedule.
func BuildXLSX(an *feasibility.Analysis) ([]byte, error) {
	if an == nil || an.Returns == nil || an.Returns.CashFlowModel == nil {
		return nil, fmt.Errorf("report: analysis has no returns")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, bold: bold, money: money}
	cfm := an.Returns.CashFlowModel

	f.SetSheetName("Sheet1", SheetSummary)
	summary := Summarize(an)
	w.header(SheetSummary, "Investment Analysis", an.ProjectName)
	w.row(SheetSummary, 2, "Generated", an.GeneratedAt.Format("2006-01-02"))
	w.row(SheetSummary, 3, "Recommendation", summary.Recommendation)
	r := 5
	w.row(SheetSummary, r, "Metric", "Value", "Assessment")
	for _, m := range summary.Metrics {
		r++
		w.row(SheetSummary, r, m.Metric, m.Value, m.Assessment)
	}
	r += 2
	w.row(SheetSummary, r, "Risk Category", "Probability", "Impact", "Mitigation")
	for _, risk := range summary.Risks {
		r++
		w.row(SheetSummary, r, risk.Category, risk.Probability, risk.Impact, risk.Mitigation)
	}

	w.sheet(SheetCosts)
	w.header(SheetCosts, "Item", "Amount", "Share")
	dc := cfm.DevelopmentCosts
	r = 1
	for _, line := range []struct {
		item   string
		amount float64
	}{
		{"Land Acquisition", dc.LandCost},
		{"Acquisition Costs", dc.AcquisitionCosts},
		{"Hard Costs", dc.HardCosts},
		{"Contingency", dc.Contingency},
		{"Soft Costs", dc.SoftCosts},
		{"Total Development Cost", dc.TotalDevelopmentCost},
	} {
		r++
		w.row(SheetCosts, r, line.item, line.amount)
	}
	if len(an.CostSummary) > 0 {
		r += 2
		w.row(SheetCosts, r, "Detailed Estimate")
		for _, row := range an.CostSummary {
			r++
			if row.Amount == nil {
				w.row(SheetCosts, r, row.Category)
				continue
			}
			w.row(SheetCosts, r, row.Item, *row.Amount, row.Percentage)
		}
	}
	w.moneyCols(SheetCosts, "B", "B")

	w.sheet(SheetDraws)
	w.header(SheetDraws, "Month", "Draw %", "Draw", "Cumulative Draw", "Interest", "Cumulative Interest", "Outstanding")
	for i, d := range cfm.ConstructionDraws {
		w.row(SheetDraws, i+2, d.Month, d.DrawPct, d.DrawAmount, d.CumulativeDraw, d.MonthlyInterest, d.CumulativeInterest, d.OutstandingBalance)
	}
	w.moneyCols(SheetDraws, "C", "G")

	w.sheet(SheetAmortization)
	w.header(SheetAmortization, "Period", "Date", "Phase", "Payment", "Principal", "Interest", "Balance")
	if an.Financing != nil && an.Financing.Investment != nil {
		for i, e := range an.Financing.Investment.Schedule {
			w.row(SheetAmortization, i+2, e.Period, e.Date.Format("2006-01-02"), e.Phase, e.Payment, e.Principal, e.Interest, e.Balance)
		}
	}
	w.moneyCols(SheetAmortization, "D", "G")

	w.sheet(SheetCashFlow)
	w.header(SheetCashFlow, "Year", "Period", "Equity Invested", "NOI", "Debt Service", "Cash Flow", "Cumulative", "Exit Value", "Loan Payoff", "Equity Proceeds")
	for i, e := range cfm.AnnualCashFlows {
		w.row(SheetCashFlow, i+2, e.Year, e.Period, e.EquityInvested, e.NOI, e.DebtService, e.CashFlow, e.CumulativeCashFlow, e.ExitValue, e.LoanPayoff, e.EquityProceeds)
	}
	w.moneyCols(SheetCashFlow, "C", "J")

	w.sheet(SheetScenarios)
	w.header(SheetScenarios, "Scenario", "IRR %", "NPV", "Equity Multiple", "Avg DSCR", "Total Profit")
	r = 1
	for _, s := range returns.Scenarios {
		res, ok := an.Scenarios[s.Name]
		if !ok {
			continue
		}
		r++
		w.row(SheetScenarios, r, scenarioTitle(s.Name), cellValue(res.IRR), cellValue(res.NPV), cellValue(res.EquityMultiple), cellValue(res.AvgDSCR), res.TotalProfit)
	}
	w.moneyCols(SheetScenarios, "C", "C")

	w.sheet(SheetTornado)
	w.header(SheetTornado, "Variable", "Low", "Low IRR %", "High", "High IRR %", "Impact (pts)", "Sensitivity")
	if an.Tornado != nil {
		for i, item := range an.Tornado.TornadoData {
			w.row(SheetTornado, i+2, returns.VariableLabel(item.Variable), item.LowLabel, cellValue(item.LowIRR), item.HighLabel, cellValue(item.HighIRR), item.Impact, returns.SensitivityBand(item.Impact))
		}
	}

	if len(w.errs) > 0 {
		return nil, fmt.Errorf("write workbook: %w", w.errs[0])
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	metrics.IncReport("xlsx")
	return buf.Bytes(), nil
}

// cellValue leaves undefined metrics as blank cells.
func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
