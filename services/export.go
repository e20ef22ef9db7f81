package services

import (
	"time"

	"rate-comparison/models"
)

// FullDumpHeader is the header of the raw observation export.
var FullDumpHeader = []string{
	"Store ID", "Store Name", "Distance (mi)", "Unit Size", "Features", "Feature Code",
	"Date", "Asking Price", "In-Store Price",
}

// FullDumpRows flattens every observation, selected size or not, into
// export rows in input order.
func FullDumpRows(in models.ReportInput) [][]string {
	stores := make(map[string]models.Store, len(in.Stores))
	for _, s := range in.Stores {
		stores[s.ID] = s
	}

	rows := make([][]string, 0, len(in.Observations))
	for _, o := range in.Observations {
		var dist *float64
		if s, ok := stores[o.StoreID]; ok {
			d := s.Distance
			dist = &d
		}
		date := NotAvailable
		if !o.Date.IsZero() {
			date = o.Date.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			o.StoreID,
			displayName(o.StoreID, in.CustomNames, stores),
			FormatDistance(dist),
			o.Size,
			FeatureTag(o),
			FeatureCodeFor(o, in.FeatureCodes),
			date,
			FormatCurrency(o.Asking),
			FormatCurrency(o.InStore),
		})
	}
	return rows
}

// SummaryHeader is the header of the grouped summary export.
func SummaryHeader() []string {
	header := []string{"Store", "Distance (mi)", "Year Built"}
	for _, w := range models.Windows {
		header = append(header,
			w.Label+" Adjusted Asking",
			w.Label+" Asking",
			w.Label+" In-Store",
		)
	}
	return header
}

// SummaryRows flattens a report: per group a label row, one row per store
// and a closing group-average row whose adjusted figures are N/A.
func SummaryRows(r *models.GroupedReport) [][]string {
	width := len(SummaryHeader())
	var rows [][]string

	for _, g := range r.Groups {
		label := make([]string, width)
		label[0] = g.Size + " " + g.FeatureCode
		label[1] = "Market share " + FormatPercent(g.MarketShare)
		rows = append(rows, label)

		for _, row := range g.Rows {
			out := []string{row.Name, FormatDistance(row.Distance), FormatYear(row.YearBuilt)}
			for _, w := range row.Windows {
				out = append(out,
					FormatCurrency(w.AdjustedAsking),
					FormatCurrency(w.Asking),
					FormatCurrency(w.InStore),
				)
			}
			rows = append(rows, out)
		}

		avg := []string{"Group Average", "", ""}
		for _, w := range g.Average.Windows {
			avg = append(avg, NotAvailable, FormatCurrency(w.Asking), FormatCurrency(w.InStore))
		}
		rows = append(rows, avg)
	}
	return rows
}
