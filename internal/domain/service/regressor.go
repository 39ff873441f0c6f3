package service

// Regressor maps a standardized feature vector to a price.
type Regressor interface {
	Predict(x []float64) float64
}

// Transformer applies fitted per-feature preprocessing to a raw feature vector.
type Transformer interface {
	Transform(x []float64) []float64
}
