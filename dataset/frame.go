package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the storage type of a column.
type Kind int

const (
	Numeric Kind = iota
	String
)

// ErrAllRowsDropped is returned when a filtering step discards every row.
var ErrAllRowsDropped = errors.New("dataset: operation dropped all rows")

// Column is a single named column. Numeric columns mark missing values with
// NaN, string columns with the empty string.
type Column struct {
	Name string
	Kind Kind
	Nums []float64
	Strs []string
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// IsNull reports whether the value at row i is missing.
func (c *Column) IsNull(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Nums[i])
	}
	return c.Strs[i] == ""
}

// NullCount returns the number of missing values in the column.
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

func (c *Column) copyColumn() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Nums = append([]float64(nil), c.Nums...)
	} else {
		out.Strs = append([]string(nil), c.Strs...)
	}
	return out
}

// Frame is an ordered collection of equally sized columns. Pipeline stages
// consume a frame and produce a new one; none of the methods below mutate
// the receiver's data unless explicitly named so.
type Frame struct {
	cols  []Column
	index map[string]int
}

// New returns an empty frame.
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column, or false if absent.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return &f.cols[i], true
}

// Numbers returns the values of a numeric column.
func (f *Frame) Numbers(name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("dataset: column %q not found", name)
	}
	if c.Kind != Numeric {
		return nil, fmt.Errorf("dataset: column %q is not numeric", name)
	}
	return c.Nums, nil
}

// AddNumeric appends (or replaces) a numeric column.
func (f *Frame) AddNumeric(name string, vals []float64) {
	f.setColumn(Column{Name: name, Kind: Numeric, Nums: vals})
}

// AddString appends (or replaces) a string column.
func (f *Frame) AddString(name string, vals []string) {
	f.setColumn(Column{Name: name, Kind: String, Strs: vals})
}

func (f *Frame) setColumn(c Column) {
	if i, ok := f.index[c.Name]; ok {
		f.cols[i] = c
		return
	}
	f.index[c.Name] = len(f.cols)
	f.cols = append(f.cols, c)
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	out := New()
	for i := range f.cols {
		out.setColumn(f.cols[i].copyColumn())
	}
	return out
}

// Drop returns a copy of the frame without the given columns. Names that do
// not exist are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	dropped := make(map[string]struct{}, len(names))
	for _, n := range names {
		dropped[n] = struct{}{}
	}
	out := New()
	for i := range f.cols {
		if _, skip := dropped[f.cols[i].Name]; skip {
			continue
		}
		out.setColumn(f.cols[i].copyColumn())
	}
	return out
}

// Select returns a copy of the frame restricted to the given columns, in the
// given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := New()
	for _, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, fmt.Errorf("dataset: column %q not found", n)
		}
		out.setColumn(c.copyColumn())
	}
	return out, nil
}

// Filter returns a copy of the frame keeping only rows where keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	rows := f.Rows()
	kept := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	return f.take(kept)
}

func (f *Frame) take(rows []int) *Frame {
	out := New()
	for i := range f.cols {
		src := &f.cols[i]
		c := Column{Name: src.Name, Kind: src.Kind}
		if src.Kind == Numeric {
			c.Nums = make([]float64, len(rows))
			for j, r := range rows {
				c.Nums[j] = src.Nums[r]
			}
		} else {
			c.Strs = make([]string, len(rows))
			for j, r := range rows {
				c.Strs[j] = src.Strs[r]
			}
		}
		out.setColumn(c)
	}
	return out
}

// NumericNames returns the names of numeric columns, in frame order.
func (f *Frame) NumericNames() []string {
	var out []string
	for i := range f.cols {
		if f.cols[i].Kind == Numeric {
			out = append(out, f.cols[i].Name)
		}
	}
	return out
}

// StringNames returns the names of string columns, in frame order.
func (f *Frame) StringNames() []string {
	var out []string
	for i := range f.cols {
		if f.cols[i].Kind == String {
			out = append(out, f.cols[i].Name)
		}
	}
	return out
}

// Matrix extracts the named numeric columns as a row-major matrix.
func (f *Frame) Matrix(names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for j, n := range names {
		vals, err := f.Numbers(n)
		if err != nil {
			return nil, err
		}
		cols[j] = vals
	}
	rows := f.Rows()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		out[i] = row
	}
	return out, nil
}

// DropNullRows returns a copy without rows containing any missing value,
// along with the number of rows removed.
func (f *Frame) DropNullRows() (*Frame, int) {
	rows := f.Rows()
	out := f.Filter(func(i int) bool {
		for j := range f.cols {
			if f.cols[j].IsNull(i) {
				return false
			}
		}
		return true
	})
	return out, rows - out.Rows()
}

// Deduplicate returns a copy without exact duplicate rows, along with the
// number of rows removed.
func (f *Frame) Deduplicate() (*Frame, int) {
	rows := f.Rows()
	seen := make(map[string]struct{}, rows)
	kept := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		key := f.rowKey(i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, i)
	}
	return f.take(kept), rows - len(kept)
}

func (f *Frame) rowKey(i int) string {
	var b strings.Builder
	for j := range f.cols {
		c := &f.cols[j]
		if c.Kind == Numeric {
			b.WriteString(strconv.FormatFloat(c.Nums[i], 'g', -1, 64))
		} else {
			b.WriteString(c.Strs[i])
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// Concat appends the frames row-wise, taking the union of their columns.
// Columns absent from a frame are filled with missing values, matching how
// monthly extracts with drifting schemas are consolidated.
func Concat(frames ...*Frame) *Frame {
	out := New()
	total := 0
	for _, fr := range frames {
		total += fr.Rows()
	}

	// Establish union column order and kinds. A column that is numeric in
	// every frame that carries it stays numeric; otherwise it degrades to
	// string.
	order := []string{}
	kinds := map[string]Kind{}
	for _, fr := range frames {
		for i := range fr.cols {
			c := &fr.cols[i]
			if k, ok := kinds[c.Name]; ok {
				if k != c.Kind {
					kinds[c.Name] = String
				}
				continue
			}
			kinds[c.Name] = c.Kind
			order = append(order, c.Name)
		}
	}

	for _, name := range order {
		kind := kinds[name]
		col := Column{Name: name, Kind: kind}
		if kind == Numeric {
			col.Nums = make([]float64, 0, total)
		} else {
			col.Strs = make([]string, 0, total)
		}
		for _, fr := range frames {
			rows := fr.Rows()
			src, ok := fr.Column(name)
			for i := 0; i < rows; i++ {
				if !ok {
					if kind == Numeric {
						col.Nums = append(col.Nums, math.NaN())
					} else {
						col.Strs = append(col.Strs, "")
					}
					continue
				}
				if kind == Numeric {
					col.Nums = append(col.Nums, src.Nums[i])
				} else if src.Kind == String {
					col.Strs = append(col.Strs, src.Strs[i])
				} else if math.IsNaN(src.Nums[i]) {
					col.Strs = append(col.Strs, "")
				} else {
					col.Strs = append(col.Strs, strconv.FormatFloat(src.Nums[i], 'g', -1, 64))
				}
			}
		}
		out.setColumn(col)
	}
	return out
}
