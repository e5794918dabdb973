// README: Session plan holder and in-flight guard.
package session

import (
	"errors"
	"time"

	"tripcrew/internal/maps"
	"tripcrew/internal/modules/trip"
)

// ErrRunInFlight is returned when the session already has a pipeline run going.
var ErrRunInFlight = errors.New("a plan is already being generated for this session")

// DefaultTTL is how long an idle session keeps its last plan.
const DefaultTTL = 24 * time.Hour

// Plan is what the result page renders for a session.
type Plan struct {
	Preferences trip.Preferences  `json:"preferences"`
	Result      trip.Result       `json:"result"`
	City        string            `json:"city,omitempty"`
	Destination *maps.Destination `json:"destination,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Failed reports whether the run behind this plan ended with an LLM error.
func (p Plan) Failed() bool {
	return p.Error != ""
}
