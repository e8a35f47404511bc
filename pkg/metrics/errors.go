package metrics

import "errors"

// ErrObserveFailed wraps failures to read back gathered pipeline counters.
var ErrObserveFailed = errors.New("gather pipeline metrics")
