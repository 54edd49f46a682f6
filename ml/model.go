package ml

import "errors"

var (
	ErrNotTrained      = errors.New("model not trained")
	ErrUnknownCategory = errors.New("unknown category")
	ErrFeatureCount    = errors.New("feature index out of range")
)

// Classifier maps one encoded row to a cluster id and a confidence in [0,1].
type Classifier interface {
	Predict(features []float64) (int, float64, error)
	Classes() []int
}

// CategoryEncoder is the fitted string -> integer mapping of one categorical column.
type CategoryEncoder interface {
	Transform(value string) (int, error)
	Classes() []string
}

// Closer is implemented by classifiers that hold native resources.
type Closer interface {
	Close() error
}
