package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/trendgate/core/rules"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// fallbackCategory labels the policy used for unregistered categories.
const fallbackCategory = "*"

// ruleRow is one decision table entry of a policy.
type ruleRow struct {
	Order   int            `json:"order"`
	Name    string         `json:"name"`
	Verdict schema.Verdict `json:"verdict"`
	Reason  string         `json:"reason"`
}

// policyView is the printable form of a registered policy.
type policyView struct {
	Policy         string           `json:"policy"`
	MainCategory   string           `json:"main_category"`
	SubCategory    string           `json:"sub_category"`
	Rows           []ruleRow        `json:"rows"`
	PriceTable     rules.PriceTable `json:"price_table,omitempty"`
	SalesThreshold int              `json:"sales_threshold,omitempty"`
}

// buildPolicyViews flattens the registry in registration order, fallback last.
func buildPolicyViews(registry *rules.Registry) []policyView {
	regs := registry.Registrations()
	views := make([]policyView, 0, len(regs)+1)
	for _, reg := range regs {
		views = append(views, newPolicyView(reg.MainCategory, reg.SubCategory, reg.Policy))
	}
	views = append(views, newPolicyView(fallbackCategory, fallbackCategory, registry.Fallback()))
	return views
}

func newPolicyView(main, sub string, p rules.Policy) policyView {
	view := policyView{
		Policy:       p.Name(),
		MainCategory: main,
		SubCategory:  sub,
	}
	for i, e := range p.Table() {
		view.Rows = append(view.Rows, ruleRow{Order: i + 1, Name: e.Name, Verdict: e.Verdict, Reason: e.Reason})
	}
	switch typed := p.(type) {
	case *rules.SizeGated:
		view.PriceTable = typed.Thresholds()
	case *rules.VolumeGated:
		view.SalesThreshold = typed.Threshold()
	}
	return view
}

// PrintRules writes the decision tables to the configured output file, or stdout.
func PrintRules(registry *rules.Registry, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRules(w, registry, cfg)
	}, "Wrote "+string(cfg.Output))
}

// WriteRules outputs every configured policy with its ordered decision table.
func WriteRules(w io.Writer, registry *rules.Registry, cfg *contract.Config) error {
	views := buildPolicyViews(registry)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, views); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVWithHeader(w, rulesCSVHeader, func(cw *csv.Writer) error {
			return writeCSVRules(cw, views)
		}); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TextOut:
		return writeRuleTables(w, views, cfg)
	default:
		return fmt.Errorf("output format %s is not supported for rules", cfg.Output)
	}
	return nil
}

func writeRuleTables(w io.Writer, views []policyView, cfg *contract.Config) error {
	for _, v := range views {
		if _, err := fmt.Fprintf(w, "Policy %s (%s / %s)\n", v.Policy, v.MainCategory, v.SubCategory); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"#", "Rule", "Verdict", "Reason"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})
		data := make([][]string, 0, len(v.Rows))
		for _, r := range v.Rows {
			data = append(data, []string{strconv.Itoa(r.Order), r.Name, verdictLabel(r.Verdict, cfg), r.Reason})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}

		if len(v.PriceTable) > 0 {
			if _, err := fmt.Fprintln(w, "Price thresholds:"); err != nil {
				return err
			}
			for _, units := range v.PriceTable.UnitCounts() {
				if _, err := fmt.Fprintf(w, "  %dpcs: %s\n", units, formatThreshold(v.PriceTable[units])); err != nil {
					return err
				}
			}
		}
		if v.SalesThreshold > 0 {
			if _, err := fmt.Fprintf(w, "Sales threshold: %d\n", v.SalesThreshold); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

var rulesCSVHeader = []string{"policy", "main_category", "sub_category", "order", "rule", "verdict", "reason"}

func writeCSVRules(w *csv.Writer, views []policyView) error {
	for _, v := range views {
		for _, r := range v.Rows {
			rec := []string{
				v.Policy,
				v.MainCategory,
				v.SubCategory,
				strconv.Itoa(r.Order),
				r.Name,
				string(r.Verdict),
				r.Reason,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatThreshold renders a threshold as "15.99" or "7inch=11.99, 9inch=14.99".
func formatThreshold(t rules.Threshold) string {
	if len(t.BySize) == 0 {
		return strconv.FormatFloat(t.Flat, 'f', 2, 64)
	}
	parts := make([]string, 0, len(t.BySize))
	for _, size := range slices.Sorted(maps.Keys(t.BySize)) {
		parts = append(parts, size+"="+strconv.FormatFloat(t.BySize[size], 'f', 2, 64))
	}
	return strings.Join(parts, ", ")
}
