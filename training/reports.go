package training

import (
	"sort"
	"strconv"

	"airbnb-pricer/storage"
)

// WriteModelComparison exports every candidate's held-out metrics to a CSV
// report, best R² first. Failed candidates are listed with an error marker
// so the report accounts for the full registry.
func WriteModelComparison(results []Result, path string) error {
	w, err := storage.NewReportWriter(path, []string{"model", "r2", "mae", "mse", "rmse", "mape"})
	if err != nil {
		return err
	}
	return writeComparison(w, results)
}

func writeComparison(w storage.RowWriter, results []Result) error {
	defer w.Close()

	ordered := make([]Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := ordered[i], ordered[j]
		if ri.Ok() != rj.Ok() {
			return ri.Ok()
		}
		if !ri.Ok() {
			return ri.Name < rj.Name
		}
		return ri.Metrics.R2 > rj.Metrics.R2
	})

	rows := make([][]string, 0, len(ordered))
	for _, r := range ordered {
		if !r.Ok() {
			rows = append(rows, []string{r.Name, "error", "error", "error", "error", "error"})
			continue
		}
		rows = append(rows, []string{
			r.Name,
			formatFloat(r.Metrics.R2),
			formatFloat(r.Metrics.MAE),
			formatFloat(r.Metrics.MSE),
			formatFloat(r.Metrics.RMSE),
			formatFloat(r.Metrics.MAPE),
		})
	}
	return w.WriteRows(rows)
}

// WriteFeatureImportance exports ranked feature importances to a CSV report.
func WriteFeatureImportance(imps []FeatureImportance, path string) error {
	w, err := storage.NewReportWriter(path, []string{"feature", "importance"})
	if err != nil {
		return err
	}
	return writeImportances(w, imps)
}

func writeImportances(w storage.RowWriter, imps []FeatureImportance) error {
	defer w.Close()

	rows := make([][]string, 0, len(imps))
	for _, fi := range imps {
		rows = append(rows, []string{fi.Feature, formatFloat(fi.Importance)})
	}
	return w.WriteRows(rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
