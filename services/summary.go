package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"airbnb-pricer/dataset"
	"airbnb-pricer/utils"
)

// FeatureSummary describes one column of a processed frame.
type FeatureSummary struct {
	Name         string
	Kind         dataset.Kind
	NonNullCount int
	NullCount    int
	UniqueValues int
	Mean         float64
	Min          float64
	Max          float64
}

// SummaryService computes per-feature diagnostics over a frame.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate builds a summary entry per column, in frame order.
func (s *SummaryService) Generate(f *dataset.Frame) []FeatureSummary {
	summaries := make([]FeatureSummary, 0, f.Width())

	for _, name := range f.Names() {
		col, _ := f.Column(name)
		entry := FeatureSummary{
			Name:      name,
			Kind:      col.Kind,
			NullCount: col.NullCount(),
		}
		entry.NonNullCount = col.Len() - entry.NullCount

		if col.Kind == dataset.Numeric {
			clean := make([]float64, 0, len(col.Nums))
			uniq := map[float64]struct{}{}
			for _, v := range col.Nums {
				if math.IsNaN(v) {
					continue
				}
				clean = append(clean, v)
				uniq[v] = struct{}{}
			}
			entry.UniqueValues = len(uniq)
			if len(clean) > 0 {
				entry.Mean = stat.Mean(clean, nil)
				sort.Float64s(clean)
				entry.Min = clean[0]
				entry.Max = clean[len(clean)-1]
			}
		} else {
			uniq := map[string]struct{}{}
			for _, v := range col.Strs {
				if v != "" {
					uniq[v] = struct{}{}
				}
			}
			entry.UniqueValues = len(uniq)
		}

		summaries = append(summaries, entry)
	}

	return summaries
}

// Print writes a formatted feature summary table to stdout.
func (s *SummaryService) Print(summaries []FeatureSummary) {
	thin := strings.Repeat("─", 72)

	fmt.Printf("\n  Feature Summary\n  %s\n", thin)
	fmt.Printf("  %-34s %8s %8s %10s\n", "feature", "nulls", "unique", "mean")
	for _, e := range summaries {
		if e.Kind == dataset.Numeric {
			fmt.Printf("  %-34s %8d %8d %10.2f\n", truncate(e.Name, 34), e.NullCount, e.UniqueValues, e.Mean)
		} else {
			fmt.Printf("  %-34s %8d %8d %10s\n", truncate(e.Name, 34), e.NullCount, e.UniqueValues, "-")
		}
	}
	fmt.Printf("  %s\n\n", thin)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
