package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tripcrew/internal/ai"
	"tripcrew/internal/maps"
	"tripcrew/internal/modules/trip"
)

// CityResolver turns an extracted city name into a geocoded destination.
type CityResolver interface {
	ResolveCity(ctx context.Context, city string) (*maps.Destination, error)
}

// PlannerOptions tunes how the pipeline chains step outputs.
type PlannerOptions struct {
	// BudgetFromItinerary feeds the generated itinerary text into the budget task.
	// By default the budget task receives the itinerary task description instead.
	BudgetFromItinerary bool
}

// Outcome is the product of one pipeline run.
type Outcome struct {
	Result      trip.Result
	City        string
	Destination *maps.Destination
	// Err is the LLM error that aborted the run, if any. Result already carries its text.
	Err error
}

// TripPlanner runs the four planning tasks in strict sequence against one model.
type TripPlanner struct {
	llm      ai.Completer
	resolver CityResolver
	logger   *zap.Logger
	tracer   trace.Tracer
	opts     PlannerOptions
}

// NewTripPlanner creates a TripPlanner. resolver may be nil to skip geocoding.
func NewTripPlanner(llm ai.Completer, resolver CityResolver, logger *zap.Logger, opts PlannerOptions) *TripPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripPlanner{
		llm:      llm,
		resolver: resolver,
		logger:   logger.Named("trip_planner"),
		tracer:   otel.Tracer("tripcrew/internal/service"),
		opts:     opts,
	}
}

// Run executes select cities → research first city → itinerary → budget.
// It never returns a partially filled Result: a failed LLM call replaces the whole
// result with the error text in CitySelection and empty strings elsewhere.
func (p *TripPlanner) Run(ctx context.Context, prefs trip.Preferences) Outcome {
	ctx, span := p.tracer.Start(ctx, "TripPlanner.Run", trace.WithAttributes(
		attribute.String("trip.travel_type", prefs.TravelType),
		attribute.String("trip.season", prefs.Season),
		attribute.Int("trip.duration", prefs.Duration),
		attribute.String("trip.budget", prefs.Budget),
	))
	defer span.End()

	start := time.Now()
	out, err := p.run(ctx, prefs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline aborted")
		p.logger.Error("pipeline aborted", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Outcome{Result: trip.FailedResult(err), Err: err}
	}

	span.SetAttributes(attribute.String("trip.city", out.City))
	p.logger.Info("pipeline finished",
		zap.String("city", out.City),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (p *TripPlanner) run(ctx context.Context, prefs trip.Preferences) (Outcome, error) {
	if err := prefs.Validate(); err != nil {
		return Outcome{}, err
	}

	// 1. City selection
	selection, err := p.step(ctx, trip.TaskCitySelection, prefs, "")
	if err != nil {
		return Outcome{}, err
	}
	result := trip.Result{
		CitySelection: selection,
		CityResearch:  trip.PendingResearch,
		Itinerary:     trip.PendingItinerary,
		Budget:        trip.PendingBudget,
	}

	// 2. Pick the first city. A blank selection ends the run without an error.
	if strings.TrimSpace(selection) == "" {
		p.logger.Warn("city selection came back empty; skipping remaining tasks")
		result.CityResearch = trip.NoCityDetermined
		result.Itinerary = trip.NoItinerary
		result.Budget = trip.NoBudget
		return Outcome{Result: result}, nil
	}
	city := trip.ExtractCity(trip.Text(selection))
	p.logger.Info("city extracted", zap.String("city", city))
	dest := p.resolve(ctx, city)

	// 3. Research
	research, err := p.step(ctx, trip.TaskCityResearch, prefs, city)
	if err != nil {
		return Outcome{}, err
	}
	result.Set(trip.TaskCityResearch, research)

	// 4. Itinerary
	itinerary, err := p.step(ctx, trip.TaskItinerary, prefs, city)
	if err != nil {
		return Outcome{}, err
	}
	result.Set(trip.TaskItinerary, itinerary)

	// 5. Budget. It is chained to the itinerary task description, not to its output,
	// unless BudgetFromItinerary is set.
	budgetInput, err := trip.TaskDescription(trip.TaskItinerary, prefs, city)
	if err != nil {
		return Outcome{}, err
	}
	if p.opts.BudgetFromItinerary {
		budgetInput = itinerary
	}
	budget, err := p.step(ctx, trip.TaskBudget, prefs, budgetInput)
	if err != nil {
		return Outcome{}, err
	}
	result.Set(trip.TaskBudget, budget)

	return Outcome{Result: result, City: city, Destination: dest}, nil
}

// step builds the prompt for kind and sends it to the model.
func (p *TripPlanner) step(ctx context.Context, kind trip.TaskKind, prefs trip.Preferences, prior string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "TripPlanner."+string(kind))
	defer span.End()

	prompt, err := trip.BuildPrompt(kind, prefs, prior)
	if err != nil {
		return "", fmt.Errorf("%s: %w", kind, err)
	}
	span.SetAttributes(attribute.Int("prompt.length", len(prompt.System)+len(prompt.User)))

	start := time.Now()
	text, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", fmt.Errorf("%s: %w", kind, err)
	}
	p.logger.Debug("task completed",
		zap.String("task", string(kind)),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// resolve geocodes city when a resolver is configured. Failures only cost the extra detail.
func (p *TripPlanner) resolve(ctx context.Context, city string) *maps.Destination {
	if p.resolver == nil {
		return nil
	}
	dest, err := p.resolver.ResolveCity(ctx, city)
	if err != nil {
		p.logger.Warn("geocoding failed", zap.String("city", city), zap.Error(err))
		return nil
	}
	return dest
}
