package journal

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"text/template"
	"time"
)

var runOrgFuncs = template.FuncMap{
	"pct": func(x float64) string { return fmt.Sprintf("%.2f", x*100) },
	"pf": func(x float64) string {
		if math.IsInf(x, +1) {
			return "inf"
		}
		return fmt.Sprintf("%.2f", x)
	},
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// WriteOrg renders the run summary as an Org-mode block and writes it to
// path.
func (r *RunRecord) WriteOrg(path string) error {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return fmt.Errorf("parse run template: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return fmt.Errorf("render run %s: %w", r.RunID, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const runOrgTemplate = `
* RUN: {{.Strategy}} {{.Symbol}}
:PROPERTIES:
:RUN_ID:       {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:     {{if .Strategy}}{{.Strategy}}{{else}}(strategy?){{end}}
:SYMBOL:       {{.Symbol}}
:DATASET:      {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_CAP:    {{printf "%.2f" .InitialCapital}}
:END_CAP:      {{printf "%.2f" .FinalCapital}}
:RETURN_PCT:   {{pct .TotalReturn}}
:SHARPE:       {{printf "%.2f" .SharpeRatio}}
:MAX_DD_PCT:   {{pct .MaxDrawdown}}
:WIN_RATE:     {{pct .WinRate}}
:PROFIT_FAC:   {{pf .ProfitFactor}}
:TRADES:       {{.TotalTrades}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Return:        *{{pct .TotalReturn}}%*
- Sharpe Ratio:  *{{printf "%.2f" .SharpeRatio}}*
- Max Drawdown:  *{{pct .MaxDrawdown}}%*
- Win Rate:      *{{pct .WinRate}}%*
- Profit Factor: *{{pf .ProfitFactor}}*
- Round Trips:   *{{.TotalTrades}}*
`
