// Package report renders classification results into XLSX workbooks for
// sharing outside the pipeline.
package report

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/predict"
)

// Meta identifies the inputs a report was produced from.
type Meta struct {
	GridName  string
	ModelPath string // empty for rule-based runs
}

// WriteDistribution writes a class-distribution workbook: a summary sheet
// with run totals and a distribution sheet with per-label cell counts and
// shares, ordered by descending count.
func WriteDistribution(path string, res *predict.Result, meta Meta) error {
	f := xlsx.NewFile()
	p := message.NewPrinter(language.English)

	if err := writeSummary(f, p, res, meta); err != nil {
		return err
	}
	if err := writeCounts(f, p, res); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func writeSummary(f *xlsx.File, p *message.Printer, res *predict.Result, meta Meta) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	method := "naive bayes"
	if meta.ModelPath == "" {
		method = "rule engine"
	}

	total := int64(res.Width() * res.Height())
	rows := [][2]string{
		{"Generated", time.Now().UTC().Format(time.RFC3339)},
		{"Grid", meta.GridName},
		{"Method", method},
		{"Model", meta.ModelPath},
		{"Dimensions", p.Sprintf("%d x %d", res.Width(), res.Height())},
		{"Cells", p.Sprintf("%d", total)},
		{"Classified", p.Sprintf("%d", res.Classified())},
		{"Skipped", p.Sprintf("%d", total-res.Classified())},
	}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r[0])
		row.AddCell().SetString(r[1])
	}
	return nil
}

func writeCounts(f *xlsx.File, p *message.Printer, res *predict.Result) error {
	sheet, err := f.AddSheet("Distribution")
	if err != nil {
		return eris.Wrap(err, "report: add distribution sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Label", "Code", "Color", "Cells", "Share"} {
		header.AddCell().SetString(h)
	}

	counts := res.ClassCounts()
	labels := make([]koppen.Label, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	classified := res.Classified()
	for _, label := range labels {
		row := sheet.AddRow()
		row.AddCell().SetString(string(label))
		row.AddCell().SetInt(label.Code())
		row.AddCell().SetString(label.Color())
		row.AddCell().SetString(p.Sprintf("%d", counts[label]))
		row.AddCell().SetString(p.Sprintf("%.2f%%", 100*float64(counts[label])/float64(classified)))
	}
	return nil
}
