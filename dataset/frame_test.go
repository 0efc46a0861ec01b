package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVInfersColumnKinds(t *testing.T) {
	in := strings.NewReader(
		"price,room_type,beds\n" +
			"100,Private room,1\n" +
			"250.5,Entire home/apt,\n" +
			"NA,Shared room,2\n")

	f, err := ReadCSV(in)
	require.NoError(t, err)

	price, ok := f.Column("price")
	require.True(t, ok)
	assert.Equal(t, Numeric, price.Kind)
	assert.True(t, math.IsNaN(price.Nums[2]))

	room, ok := f.Column("room_type")
	require.True(t, ok)
	assert.Equal(t, String, room.Kind)

	beds, _ := f.Column("beds")
	assert.Equal(t, Numeric, beds.Kind)
	assert.True(t, beds.IsNull(1))
}

func TestReadCSVMixedColumnIsString(t *testing.T) {
	in := strings.NewReader("col\n12\nabc\n")
	f, err := ReadCSV(in)
	require.NoError(t, err)

	c, _ := f.Column("col")
	assert.Equal(t, String, c.Kind)
}

func TestCSVRoundTrip(t *testing.T) {
	f := New()
	f.AddNumeric("price", []float64{100, math.NaN(), 250.5})
	f.AddString("room_type", []string{"Private room", "Shared room", ""})

	var buf strings.Builder
	require.NoError(t, f.WriteCSV(&buf))

	back, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, f.Names(), back.Names())
	assert.Equal(t, f.Rows(), back.Rows())

	price, _ := back.Numbers("price")
	assert.Equal(t, 100.0, price[0])
	assert.True(t, math.IsNaN(price[1]))
	assert.Equal(t, 250.5, price[2])

	room, _ := back.Column("room_type")
	assert.True(t, room.IsNull(2))
}

func TestConcatUnionOfColumns(t *testing.T) {
	a := New()
	a.AddNumeric("price", []float64{100, 200})
	a.AddNumeric("beds", []float64{1, 2})

	b := New()
	b.AddNumeric("price", []float64{300})
	b.AddString("room_type", []string{"Private room"})

	out := Concat(a, b)

	assert.Equal(t, 3, out.Rows())
	assert.ElementsMatch(t, []string{"price", "beds", "room_type"}, out.Names())

	beds, _ := out.Numbers("beds")
	assert.True(t, math.IsNaN(beds[2]))

	room, _ := out.Column("room_type")
	assert.True(t, room.IsNull(0))
	assert.Equal(t, "Private room", room.Strs[2])
}

func TestConcatKindConflictDegradesToString(t *testing.T) {
	a := New()
	a.AddNumeric("zipcode", []float64{22041})
	b := New()
	b.AddString("zipcode", []string{"22041-001"})

	out := Concat(a, b)
	c, _ := out.Column("zipcode")
	assert.Equal(t, String, c.Kind)
	assert.Equal(t, "22041", c.Strs[0])
	assert.Equal(t, "22041-001", c.Strs[1])
}

func TestDeduplicate(t *testing.T) {
	f := New()
	f.AddNumeric("price", []float64{100, 100, 200})
	f.AddString("room_type", []string{"a", "a", "a"})

	out, removed := f.Deduplicate()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 3, f.Rows())
}

func TestDropNullRows(t *testing.T) {
	f := New()
	f.AddNumeric("price", []float64{100, math.NaN(), 300})
	f.AddString("room_type", []string{"a", "b", ""})

	out, removed := f.DropNullRows()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, out.Rows())
}

func TestSelectPreservesOrder(t *testing.T) {
	f := New()
	f.AddNumeric("a", []float64{1})
	f.AddNumeric("b", []float64{2})
	f.AddNumeric("c", []float64{3})

	out, err := f.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, out.Names())

	_, err = f.Select("missing")
	assert.Error(t, err)
}

func TestMatrixRowMajor(t *testing.T) {
	f := New()
	f.AddNumeric("x1", []float64{1, 2})
	f.AddNumeric("x2", []float64{10, 20})

	m, err := f.Matrix([]string{"x1", "x2"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 10}, {2, 20}}, m)
}

func TestQualityReport(t *testing.T) {
	f := New()
	f.AddNumeric("price", []float64{100, 100, math.NaN()})
	f.AddString("room_type", []string{"a", "a", "b"})

	q := Quality(f)
	assert.Equal(t, 3, q.TotalRows)
	assert.Equal(t, 2, q.TotalColumns)
	assert.Equal(t, 1, q.MissingValues)
	assert.Equal(t, 1, q.DuplicateRows)
}
