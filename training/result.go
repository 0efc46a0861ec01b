package training

import "airbnb-pricer/regress"

// Metrics is the held-out evaluation metric set for one candidate model.
type Metrics struct {
	R2   float64
	MAE  float64
	MSE  float64
	RMSE float64
	MAPE float64
}

// TrainScore records how a candidate scored during training. Cross-validated
// scores and plain in-sample scores are different measurements; the
// CrossValidated flag keeps callers from conflating them.
type TrainScore struct {
	CrossValidated bool
	CVMeanR2       float64
	CVStdR2        float64
	TrainR2        float64
}

// Result is the tagged outcome for one candidate model. A failed fit or
// evaluation is recorded in Err and never aborts the other candidates.
type Result struct {
	Name    string
	Model   regress.Regressor
	Train   TrainScore
	Metrics *Metrics
	Err     error
}

// Ok reports whether the candidate trained and evaluated without error.
func (r Result) Ok() bool {
	return r.Err == nil && r.Metrics != nil
}

// FeatureImportance pairs a feature name with its importance score.
type FeatureImportance struct {
	Feature    string
	Importance float64
}
