package aiusage

import (
	"errors"
	"time"
)

// ErrQuotaExceeded is returned when a client has no pipeline runs left for the current day.
var ErrQuotaExceeded = errors.New("daily plan quota exceeded")

// DefaultRunsPerDay is the number of pipeline runs granted per client per day.
const DefaultRunsPerDay = 20

// counterTTL outlives the day bucket so late increments still expire.
const counterTTL = 25 * time.Hour
