package storage

// RowWriter is the interface any tabular report sink must satisfy.
type RowWriter interface {
	WriteRows(rows [][]string) error
	Close() error
}

// RunStore persists and retrieves training-run history.
type RunStore interface {
	SaveRun(runs []TrainingRun) error
	FetchRuns(runID string) ([]TrainingRun, error)
	Close() error
}
