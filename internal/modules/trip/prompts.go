// README: Prompt builder; renders the fixed task templates and agent personas.
package trip

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"tripcrew/internal/ai"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Persona describes the "agent" a task is assigned to. It becomes the system message.
type Persona struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

type taskSpec struct {
	Agent          string `yaml:"agent"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`

	tmpl *template.Template
}

type catalog struct {
	Agents map[string]Persona    `yaml:"agents"`
	Tasks  map[TaskKind]taskSpec `yaml:"tasks"`
}

// templateData is what task descriptions may reference.
type templateData struct {
	TravelType string
	Interests  string
	Season     string
	Duration   int
	Budget     string
	Prior      string
}

var prompts = mustLoadCatalog(promptsYAML)

func mustLoadCatalog(raw []byte) catalog {
	c, err := loadCatalog(raw)
	if err != nil {
		panic(fmt.Sprintf("trip: load prompt catalog: %v", err))
	}
	return c
}

func loadCatalog(raw []byte) (catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return catalog{}, err
	}
	for _, kind := range TaskOrder {
		task, ok := c.Tasks[kind]
		if !ok {
			return catalog{}, fmt.Errorf("missing task %q", kind)
		}
		if _, ok := c.Agents[task.Agent]; !ok {
			return catalog{}, fmt.Errorf("task %q references unknown agent %q", kind, task.Agent)
		}
		tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(task.Description)
		if err != nil {
			return catalog{}, fmt.Errorf("parse task %q: %w", kind, err)
		}
		task.tmpl = tmpl
		c.Tasks[kind] = task
	}
	return c, nil
}

// PersonaFor returns the persona assigned to kind.
func PersonaFor(kind TaskKind) (Persona, error) {
	task, ok := prompts.Tasks[kind]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownTask, kind)
	}
	return prompts.Agents[task.Agent], nil
}

// ExpectedOutput documents the intended answer shape for kind. It is sent to the
// model but never checked.
func ExpectedOutput(kind TaskKind) string {
	return prompts.Tasks[kind].ExpectedOutput
}

// TaskDescription renders the task text for kind. prior is the city for research and
// itinerary, and the itinerary brief for the budget task.
func TaskDescription(kind TaskKind, prefs Preferences, prior string) (string, error) {
	task, ok := prompts.Tasks[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, kind)
	}
	var b strings.Builder
	err := task.tmpl.Execute(&b, templateData{
		TravelType: prefs.TravelType,
		Interests:  strings.Join(prefs.Interests, ", "),
		Season:     prefs.Season,
		Duration:   prefs.Duration,
		Budget:     prefs.Budget,
		Prior:      strings.TrimSpace(prior),
	})
	if err != nil {
		return "", fmt.Errorf("render task %q: %w", kind, err)
	}
	return b.String(), nil
}

// BuildPrompt maps a task kind, the preferences and an optional prior-step value to
// the messages sent to the model. It has no side effects.
func BuildPrompt(kind TaskKind, prefs Preferences, prior string) (ai.Prompt, error) {
	persona, err := PersonaFor(kind)
	if err != nil {
		return ai.Prompt{}, err
	}
	desc, err := TaskDescription(kind, prefs, prior)
	if err != nil {
		return ai.Prompt{}, err
	}
	return ai.Prompt{
		System: fmt.Sprintf("You are %s. %s\nYour personal goal is: %s", persona.Role, persona.Backstory, persona.Goal),
		User: fmt.Sprintf("Current task:\n%s\n\nExpected output: %s\nReturn the complete content as your final answer, not a summary.",
			desc, ExpectedOutput(kind)),
	}, nil
}
