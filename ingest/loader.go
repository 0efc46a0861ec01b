package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"airbnb-pricer/dataset"
	"airbnb-pricer/utils"
)

// ErrNoFilesLoaded is returned when no raw extract could be loaded at all.
// Individual malformed files are skipped with a warning.
var ErrNoFilesLoaded = errors.New("ingest: no csv files loaded successfully")

var yearPattern = regexp.MustCompile(`\d{4}`)

// monthToken maps a Portuguese month-name substring to its month number.
// "maro" and "novrmbro" are misspellings present in the historical extract
// filenames and are kept so those files keep loading.
type monthToken struct {
	name  string
	month int
}

var monthTokens = []monthToken{
	{"janeiro", 1},
	{"fevereiro", 2},
	{"março", 3},
	{"maro", 3},
	{"abril", 4},
	{"maio", 5},
	{"junho", 6},
	{"julho", 7},
	{"agosto", 8},
	{"setembro", 9},
	{"outubro", 10},
	{"novembro", 11},
	{"novrmbro", 11},
	{"dezembro", 12},
}

// ExtractPeriod derives (year, month) from a raw extract filename such as
// "abril2018" or "novrmbro2018.csv".
func ExtractPeriod(filename string) (int, int, error) {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	yearStr := yearPattern.FindString(name)
	if yearStr == "" {
		return 0, 0, fmt.Errorf("ingest: no 4-digit year in filename %q", filename)
	}
	year, _ := strconv.Atoi(yearStr)

	for _, tok := range monthTokens {
		if strings.Contains(name, tok.name) {
			return year, tok.month, nil
		}
	}
	return 0, 0, fmt.Errorf("ingest: no recognized month token in filename %q", filename)
}

// Loader reads a directory of per-month CSV extracts and consolidates them
// into a single frame.
type Loader struct {
	logger *utils.Logger
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadDir loads every *.csv file under dir, tags each with its reporting
// period and source file, and concatenates them. Files that fail to parse
// are skipped with a warning; the call fails only when nothing loads.
func (l *Loader) LoadDir(dir string) (*dataset.Frame, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("ingest: list %q: %w", dir, err)
	}
	sort.Strings(paths)

	l.logger.Info("[ingest] Loading %d csv files from %s", len(paths), dir)

	var frames []*dataset.Frame
	for _, path := range paths {
		name := filepath.Base(path)

		year, month, err := ExtractPeriod(name)
		if err != nil {
			l.logger.Warn("[ingest] Skipping %s: %v", name, err)
			continue
		}

		frame, err := dataset.ReadCSVFile(path)
		if err != nil {
			l.logger.Warn("[ingest] Skipping %s: %v", name, err)
			continue
		}

		rows := frame.Rows()
		years := make([]float64, rows)
		months := make([]float64, rows)
		sources := make([]string, rows)
		for i := 0; i < rows; i++ {
			years[i] = float64(year)
			months[i] = float64(month)
			sources[i] = name
		}
		frame.AddNumeric("year", years)
		frame.AddNumeric("month", months)
		frame.AddString("source_file", sources)

		l.logger.Debug("[ingest] Loaded %s: %d rows (%d-%02d)", name, rows, year, month)
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, ErrNoFilesLoaded
	}

	consolidated := dataset.Concat(frames...)
	l.logger.Info("[ingest] Consolidated %d files: %d rows, %d columns",
		len(frames), consolidated.Rows(), consolidated.Width())
	return consolidated, nil
}
