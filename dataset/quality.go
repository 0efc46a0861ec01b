package dataset

// QualityReport is a read-only snapshot of dataset health, computed once
// after ingestion and used only for logging and diagnostics.
type QualityReport struct {
	TotalRows        int
	TotalColumns     int
	MissingValues    int
	DuplicateRows    int
	MemoryUsageMB    float64
	ColumnsWithNulls []string
}

// Quality computes a quality report over the frame.
func Quality(f *Frame) QualityReport {
	report := QualityReport{
		TotalRows:    f.Rows(),
		TotalColumns: f.Width(),
	}

	var bytes int
	for i := range f.cols {
		c := &f.cols[i]
		nulls := c.NullCount()
		report.MissingValues += nulls
		if nulls > 0 {
			report.ColumnsWithNulls = append(report.ColumnsWithNulls, c.Name)
		}
		if c.Kind == Numeric {
			bytes += 8 * len(c.Nums)
		} else {
			for _, s := range c.Strs {
				bytes += 16 + len(s)
			}
		}
	}
	report.MemoryUsageMB = float64(bytes) / (1024 * 1024)

	seen := make(map[string]struct{}, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		key := f.rowKey(i)
		if _, dup := seen[key]; dup {
			report.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}
	}

	return report
}

// NullFraction returns the fraction of missing values in the named column.
func (f *Frame) NullFraction(name string) float64 {
	c, ok := f.Column(name)
	if !ok || c.Len() == 0 {
		return 0
	}
	return float64(c.NullCount()) / float64(c.Len())
}
