// README: Trip preferences, task kinds and the four-panel plan result.
package trip

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidPreferences = errors.New("invalid trip preferences")
	ErrUnknownTask        = errors.New("unknown task kind")
)

const (
	MinDuration     = 1
	MaxDuration     = 14
	DefaultDuration = 7
)

var (
	TravelTypes      = []string{"Leisure", "Business", "Adventure", "Romantic", "Family", "Cultural"}
	Interests        = []string{"Beach", "Mountains", "History", "Art", "Shopping", "Food", "Nature", "Nightlife", "Sports"}
	DefaultInterests = []string{"History", "Art", "Shopping"}
	Seasons          = []string{"Spring", "Summer", "Fall", "Winter"}
	Budgets          = []string{"Budget", "Mid-range", "Luxury"}
)

// Preferences is one submitted preference set. Build it with NewPreferences so the
// interests slice is owned by the value.
type Preferences struct {
	TravelType string   `json:"travel_type"`
	Interests  []string `json:"interests"`
	Season     string   `json:"season"`
	Duration   int      `json:"duration"`
	Budget     string   `json:"budget"`
}

// NewPreferences copies interests, trimming blanks and dropping repeats while keeping
// the user's selection order.
func NewPreferences(travelType string, interests []string, season string, duration int, budget string) Preferences {
	seen := make(map[string]struct{}, len(interests))
	ordered := make([]string, 0, len(interests))
	for _, in := range interests {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		if _, dup := seen[in]; dup {
			continue
		}
		seen[in] = struct{}{}
		ordered = append(ordered, in)
	}
	return Preferences{
		TravelType: strings.TrimSpace(travelType),
		Interests:  ordered,
		Season:     strings.TrimSpace(season),
		Duration:   duration,
		Budget:     strings.TrimSpace(budget),
	}
}

// DefaultPreferences mirrors the initial state of the preference form.
func DefaultPreferences() Preferences {
	return NewPreferences(TravelTypes[0], DefaultInterests, Seasons[0], DefaultDuration, Budgets[0])
}

func (p Preferences) Validate() error {
	if !slices.Contains(TravelTypes, p.TravelType) {
		return fmt.Errorf("%w: travel_type %q", ErrInvalidPreferences, p.TravelType)
	}
	for _, in := range p.Interests {
		if !slices.Contains(Interests, in) {
			return fmt.Errorf("%w: interest %q", ErrInvalidPreferences, in)
		}
	}
	if !slices.Contains(Seasons, p.Season) {
		return fmt.Errorf("%w: season %q", ErrInvalidPreferences, p.Season)
	}
	if p.Duration < MinDuration || p.Duration > MaxDuration {
		return fmt.Errorf("%w: duration %d outside %d-%d days", ErrInvalidPreferences, p.Duration, MinDuration, MaxDuration)
	}
	if !slices.Contains(Budgets, p.Budget) {
		return fmt.Errorf("%w: budget %q", ErrInvalidPreferences, p.Budget)
	}
	return nil
}

// HasInterest reports whether the interest was selected. Used by the form template.
func (p Preferences) HasInterest(in string) bool {
	return slices.Contains(p.Interests, in)
}

// TaskKind identifies which fixed prompt template a pipeline step uses.
type TaskKind string

const (
	TaskCitySelection TaskKind = "city_selection"
	TaskCityResearch  TaskKind = "city_research"
	TaskItinerary     TaskKind = "itinerary"
	TaskBudget        TaskKind = "budget"
)

// TaskOrder is the fixed execution order of a pipeline run.
var TaskOrder = []TaskKind{TaskCitySelection, TaskCityResearch, TaskItinerary, TaskBudget}

// Placeholder texts shown while a step has not produced output yet, or when a run
// ends early without an error.
const (
	PendingResearch  = "Please wait, researching selected city..."
	PendingItinerary = "Please wait, creating itinerary..."
	PendingBudget    = "Please wait, generating budget..."

	NoCityDetermined = "Could not determine a city from the selection."
	NoCitySelection  = "No city selection found."
	NoCityResearch   = "No city research found."
	NoItinerary      = "No itinerary generated."
	NoBudget         = "No budget breakdown available."
)

// Result holds the displayable text of every task. All four fields are always set.
type Result struct {
	CitySelection string `json:"city_selection"`
	CityResearch  string `json:"city_research"`
	Itinerary     string `json:"itinerary"`
	Budget        string `json:"budget"`
}

// EmptyResult is the state before any step ran.
func EmptyResult() Result {
	return Result{
		CitySelection: NoCitySelection,
		CityResearch:  NoCityResearch,
		Itinerary:     NoItinerary,
		Budget:        NoBudget,
	}
}

// FailedResult replaces a whole run's output after an LLM error.
func FailedResult(err error) Result {
	return Result{CitySelection: "Error: " + err.Error()}
}

func (r Result) Get(kind TaskKind) string {
	switch kind {
	case TaskCitySelection:
		return r.CitySelection
	case TaskCityResearch:
		return r.CityResearch
	case TaskItinerary:
		return r.Itinerary
	case TaskBudget:
		return r.Budget
	}
	return ""
}

// Set stores text for kind. Unknown kinds are ignored.
func (r *Result) Set(kind TaskKind, text string) {
	switch kind {
	case TaskCitySelection:
		r.CitySelection = text
	case TaskCityResearch:
		r.CityResearch = text
	case TaskItinerary:
		r.Itinerary = text
	case TaskBudget:
		r.Budget = text
	}
}

// FormOptions lists the choices and defaults of the preference form.
type FormOptions struct {
	TravelTypes      []string `json:"travel_types"`
	Interests        []string `json:"interests"`
	DefaultInterests []string `json:"default_interests"`
	Seasons          []string `json:"seasons"`
	Budgets          []string `json:"budgets"`
	MinDuration      int      `json:"min_duration"`
	MaxDuration      int      `json:"max_duration"`
	DefaultDuration  int      `json:"default_duration"`
}

func Options() FormOptions {
	return FormOptions{
		TravelTypes:      slices.Clone(TravelTypes),
		Interests:        slices.Clone(Interests),
		DefaultInterests: slices.Clone(DefaultInterests),
		Seasons:          slices.Clone(Seasons),
		Budgets:          slices.Clone(Budgets),
		MinDuration:      MinDuration,
		MaxDuration:      MaxDuration,
		DefaultDuration:  DefaultDuration,
	}
}
