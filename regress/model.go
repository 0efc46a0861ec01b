package regress

// Regressor is a supervised regression model.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// FeatureImporter is implemented by models that expose per-feature
// importances. Tree ensembles do; linear models do not.
type FeatureImporter interface {
	FeatureImportances() []float64
}
