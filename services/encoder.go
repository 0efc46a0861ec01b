package services

import (
	"fmt"
	"sort"

	"airbnb-pricer/dataset"
	"airbnb-pricer/utils"
)

// Encoder expands nominal columns into one-hot indicator columns. The
// indicator names it produces become part of the persisted feature schema:
// they must be captured at training time, never recomputed at inference
// time, or categories absent from a batch would silently disappear.
type Encoder struct {
	logger *utils.Logger
}

// NewEncoder creates an Encoder with the given logger.
func NewEncoder(logger *utils.Logger) *Encoder {
	return &Encoder{logger: logger}
}

// Encode one-hot encodes the given columns and drops the originals. When
// columns is nil every string-kind column is encoded. It returns the new
// frame and the ordered list of indicator column names created.
func (e *Encoder) Encode(f *dataset.Frame, columns []string) (*dataset.Frame, []string, error) {
	if columns == nil {
		columns = f.StringNames()
	}

	out := f.Copy()
	var indicators []string

	for _, name := range columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}
		if col.Kind != dataset.String {
			return nil, nil, fmt.Errorf("encoder: column %q is not categorical", name)
		}

		// Categories are sorted so the indicator order is stable across runs.
		uniq := map[string]struct{}{}
		for _, v := range col.Strs {
			if v != "" {
				uniq[v] = struct{}{}
			}
		}
		values := make([]string, 0, len(uniq))
		for v := range uniq {
			values = append(values, v)
		}
		sort.Strings(values)

		strs := col.Strs
		for _, value := range values {
			indicator := fmt.Sprintf("%s_%s", name, value)
			nums := make([]float64, len(strs))
			for i, v := range strs {
				if v == value {
					nums[i] = 1
				}
			}
			out.AddNumeric(indicator, nums)
			indicators = append(indicators, indicator)
		}

		out = out.Drop(name)
		e.logger.Info("[encoder] Encoded %s into %d indicator columns", name, len(values))
	}

	return out, indicators, nil
}
