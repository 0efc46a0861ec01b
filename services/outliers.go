package services

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"airbnb-pricer/dataset"
)

// Outlier removal methods.
const (
	MethodIQR        = "iqr"
	MethodPercentile = "percentile"
	MethodZScore     = "zscore"
)

// RemoveOutliers drops rows whose value in the named column is an outlier
// under the chosen method. The input frame is never mutated; a filtered copy
// is returned. Rows with a missing value in the column are dropped as well,
// since they cannot satisfy any bound.
//
//	iqr:        keep values in [Q1 - factor*IQR, Q3 + factor*IQR]
//	percentile: symmetric trim, factor is the retained fraction (e.g. 0.98)
//	zscore:     drop rows where |z| >= factor
func RemoveOutliers(f *dataset.Frame, column, method string, factor float64) (*dataset.Frame, error) {
	switch method {
	case MethodIQR:
		if factor < 0 {
			return nil, fmt.Errorf("outliers: iqr factor %v must be non-negative", factor)
		}
	case MethodPercentile:
		if factor <= 0 || factor > 1 {
			return nil, fmt.Errorf("outliers: percentile retained fraction %v outside (0, 1]", factor)
		}
	case MethodZScore:
		if factor <= 0 {
			return nil, fmt.Errorf("outliers: zscore factor %v must be positive", factor)
		}
	default:
		return nil, fmt.Errorf("outliers: unknown method %q", method)
	}

	vals, err := f.Numbers(column)
	if err != nil {
		return nil, fmt.Errorf("outliers: %w", err)
	}

	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return f.Copy(), nil
	}
	sort.Float64s(clean)

	switch method {
	case MethodIQR:
		q1 := stat.Quantile(0.25, stat.LinInterp, clean, nil)
		q3 := stat.Quantile(0.75, stat.LinInterp, clean, nil)
		iqr := q3 - q1
		lower, upper := q1-factor*iqr, q3+factor*iqr
		return keepWithin(f, vals, lower, upper), nil

	case MethodPercentile:
		lowerP := (1 - factor) / 2
		upperP := 1 - lowerP
		lower := stat.Quantile(lowerP, stat.LinInterp, clean, nil)
		upper := stat.Quantile(upperP, stat.LinInterp, clean, nil)
		return keepWithin(f, vals, lower, upper), nil

	case MethodZScore:
		mean, std := stat.MeanStdDev(clean, nil)
		if std == 0 {
			return f.Copy(), nil
		}
		return f.Filter(func(i int) bool {
			if math.IsNaN(vals[i]) {
				return false
			}
			return math.Abs((vals[i]-mean)/std) < factor
		}), nil

	default:
		return nil, fmt.Errorf("outliers: unknown method %q", method)
	}
}

func keepWithin(f *dataset.Frame, vals []float64, lower, upper float64) *dataset.Frame {
	return f.Filter(func(i int) bool {
		v := vals[i]
		if math.IsNaN(v) {
			return false
		}
		return v >= lower && v <= upper
	})
}
