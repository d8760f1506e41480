package analytics

import "errors"

// Sentinel errors for the failure modes an analysis can report. Callers
// match with errors.Is; the CLI and HTTP layers translate them into exit
// codes and status codes.
var (
	// ErrMissingData indicates a required input table was empty or a
	// required column was absent at load time.
	ErrMissingData = errors.New("missing or empty input data")

	// ErrUndefinedStatistic indicates a requested statistic has no defined
	// value for the given input, e.g. a correlation over a zero-variance
	// column. Distinct from a legitimate 0.0 result.
	ErrUndefinedStatistic = errors.New("statistic undefined for this input")

	// ErrDegenerateTraining indicates the predictor was invoked with no
	// rows to fit. The prediction set is empty in that case.
	ErrDegenerateTraining = errors.New("degenerate training input")
)
