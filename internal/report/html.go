package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/carson-networks/ledger-forensics/internal/detector"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"amount":  formatAmount,
			"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
			"fixed":   func(prec int, v float64) string { return fmt.Sprintf("%.*f", prec, v) },
			"join":    strings.Join,
		}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

type htmlData struct {
	GeneratedAt string
	Metadata    Metadata
	TotalAmount string
	Statistical *detector.StatisticalFinding
	Temporal    *detector.TemporalFinding
	Network     *detector.NetworkFinding
	Fuzzy       *detector.FuzzyFinding
	Failures    []Failure
}

// RenderHTML writes a human readable version of r. Detectors without a
// finding are omitted; failures are listed at the end.
func RenderHTML(w io.Writer, r *Report, generatedAt time.Time) error {
	data := htmlData{
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05"),
		Metadata:    r.Metadata,
		TotalAmount: formatAmount(r.Metadata.TotalAmount.InexactFloat64()),
	}
	for _, f := range r.Findings {
		switch finding := f.(type) {
		case *detector.StatisticalFinding:
			data.Statistical = finding
		case *detector.TemporalFinding:
			data.Temporal = finding
		case *detector.NetworkFinding:
			data.Network = finding
		case *detector.FuzzyFinding:
			data.Fuzzy = finding
		}
	}
	for _, failure := range r.Failures {
		data.Failures = append(data.Failures, failure)
	}
	sort.Slice(data.Failures, func(i, j int) bool {
		return data.Failures[i].Detector < data.Failures[j].Detector
	})

	return htmlTemplate.Execute(w, data)
}

// SaveHTML renders r to path.
func SaveHTML(path string, r *Report, generatedAt time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report %s: %w", path, err)
	}
	if err := RenderHTML(f, r, generatedAt); err != nil {
		f.Close()
		return fmt.Errorf("render html report %s: %w", path, err)
	}
	return f.Close()
}

// formatAmount prints v with two decimals and comma thousands separators.
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
