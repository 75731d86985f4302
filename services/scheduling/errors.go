package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// InvalidIntervalError reports a time range whose start is not strictly
// before its end.
type InvalidIntervalError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval: start %s is not before end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// ErrMissingCoordinates is returned when exactly one side of a distance
// calculation has no coordinates. Distance degrades to zero only when both
// sides legitimately lack them.
var ErrMissingCoordinates = errors.New("coordinates missing on one side of distance calculation")
