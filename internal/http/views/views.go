// README: Embedded HTML templates for the preference form and plan panels.
package views

import (
	"embed"
	"html/template"
	"strings"

	"tripcrew/internal/modules/session"
	"tripcrew/internal/modules/trip"
)

//go:embed templates/*.html
var files embed.FS

// Page is the data the index template renders.
type Page struct {
	Title   string
	Options trip.FormOptions
	Form    trip.Preferences
	Plan    *session.Plan
	Panels  []Panel
	// Banner is a one-line status message; BannerKind is "success" or "error".
	Banner     string
	BannerKind string
}

// Panel is one expandable result section.
type Panel struct {
	Title string
	Body  string
}

var panelTitles = map[trip.TaskKind]string{
	trip.TaskCitySelection: "🌍 Recommended Cities",
	trip.TaskCityResearch:  "🔍 Destination Insights",
	trip.TaskItinerary:     "📅 Detailed Itinerary",
	trip.TaskBudget:        "💰 Budget Breakdown",
}

// Panels lays out a result in task order. Empty sections show their "not found" text.
func Panels(r trip.Result) []Panel {
	empty := trip.EmptyResult()
	panels := make([]Panel, 0, len(trip.TaskOrder))
	for _, kind := range trip.TaskOrder {
		body := r.Get(kind)
		if strings.TrimSpace(body) == "" {
			body = empty.Get(kind)
		}
		panels = append(panels, Panel{Title: panelTitles[kind], Body: body})
	}
	return panels
}

// Templates parses the embedded templates. It panics if they are malformed.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(files, "templates/*.html"))
}
