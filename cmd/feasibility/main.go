// Command feasibility runs an assumption file through every engine and prints
// the verdict, optionally writing the PDF and XLSX reports.
//
//	feasibility analyze project.hjson --pdf report.pdf --xlsx model.xlsx
//	feasibility token --role analyst --subject alice
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"dev_feasibility/pkg/api/auth"
	"dev_feasibility/pkg/core/assumption"
	appConfig "dev_feasibility/pkg/core/config"
	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/report"
	"dev_feasibility/pkg/core/returns"
	"dev_feasibility/pkg/core/store"
	"dev_feasibility/pkg/core/utils"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: feasibility <analyze|token> [flags]")
	fmt.Fprintln(os.Stderr, "  analyze FILE   run the engines over an assumptions file (JSON or Hjson)")
	fmt.Fprintln(os.Stderr, "  token          issue an API bearer token")
}

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "token":
		err = runToken(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func runAnalyze(args []string) error {
	fs := pflag.NewFlagSet("analyze", pflag.ExitOnError)
	pdfOut := fs.String("pdf", "", "write the PDF report to this path")
	xlsxOut := fs.String("xlsx", "", "write the XLSX workbook to this path")
	asJSON := fs.Bool("json", false, "print the full analysis as JSON")
	scenario := fs.String("scenario", "", "override the scenario (base, pessimistic, optimistic)")
	tornadoRange := fs.Float64("tornado-range", feasibility.DefaultTornadoRange, "tornado swing in percent")
	save := fs.String("save", "", "save the project to this SQLite database")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("analyze needs exactly one assumptions file")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	set, err := assumption.Parse(data)
	if err != nil {
		return err
	}
	if *scenario != "" {
		set.Scenario = *scenario
		if err := set.Validate(); err != nil {
			return err
		}
	}

	ctx := context.Background()
	an, err := feasibility.Run(ctx, set, feasibility.Options{TornadoRange: *tornadoRange})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(an); err != nil {
			return err
		}
	} else if err := printSummary(os.Stdout, an); err != nil {
		return err
	}

	if *pdfOut != "" {
		b, err := report.BuildPDF(an, "")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pdfOut, b, 0o644); err != nil {
			return err
		}
		fmt.Printf("[REPORT] PDF written to %s\n", *pdfOut)
	}
	if *xlsxOut != "" {
		b, err := report.BuildXLSX(an)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*xlsxOut, b, 0o644); err != nil {
			return err
		}
		fmt.Printf("[REPORT] Workbook written to %s\n", *xlsxOut)
	}
	if *save != "" {
		repo, err := store.NewSQLiteProjectRepo(*save)
		if err != nil {
			return err
		}
		defer repo.Close()
		p := store.NewProject(set, an)
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		fmt.Printf("[STORE] Saved project %s\n", p.ID)
	}
	return nil
}

func printSummary(w io.Writer, an *feasibility.Analysis) error {
	s := report.Summarize(an)
	fmt.Fprintf(w, "%s\n", an.ProjectName)
	fmt.Fprintf(w, "Recommendation: %s\n\n", s.Recommendation)

	metricsTable := tablewriter.NewWriter(w)
	metricsTable.Header("Metric", "Value", "Assessment")
	for _, m := range s.Metrics {
		if err := metricsTable.Append(m.Metric, m.Value, m.Assessment); err != nil {
			return err
		}
	}
	if err := metricsTable.Render(); err != nil {
		return err
	}

	scenarioTable := tablewriter.NewWriter(w)
	scenarioTable.Header("Scenario", "IRR", "NPV", "Equity Multiple")
	for _, sc := range returns.Scenarios {
		r, ok := an.Scenarios[sc.Name]
		if !ok {
			continue
		}
		if err := scenarioTable.Append(sc.Name, utils.FormatPercentage(r.IRR), utils.FormatCurrency(r.NPV), utils.FormatMultiple(r.EquityMultiple)); err != nil {
			return err
		}
	}
	if err := scenarioTable.Render(); err != nil {
		return err
	}

	if an.Tornado != nil {
		if top, ok := an.Tornado.MostCritical(); ok {
			fmt.Fprintf(w, "\nMost sensitive: %s (%.2f pts IRR swing, %s)\n", returns.VariableLabel(top.Variable), top.Impact, returns.SensitivityBand(top.Impact))
		}
	}
	if an.Costs != nil {
		fmt.Fprintf(w, "Estimated development cost: %s\n", utils.Money(an.Costs.Summary.TotalDevelopmentCost))
	}
	if an.Financing != nil {
		rf := an.Financing.Refinance
		fmt.Fprintf(w, "Refinance feasible: %t (cash difference %s)\n", rf.Feasible, utils.Money(rf.CashDifference))
	}
	fmt.Fprintf(w, "\n%s\n", s.Conclusion)
	return nil
}

func runToken(args []string) error {
	fs := pflag.NewFlagSet("token", pflag.ExitOnError)
	role := fs.String("role", auth.RoleAnalyst, "viewer or analyst")
	subject := fs.String("subject", "cli", "token subject")
	ttl := fs.Duration("ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	configPath := fs.String("config", "config/app.yaml", "server config file")
	fs.Parse(args)

	cfg, err := appConfig.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not set (FEASIBILITY_AUTH_JWT_SECRET)")
	}
	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}
	tok, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, *subject, *role, lifetime)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
