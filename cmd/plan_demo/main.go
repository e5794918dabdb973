// README: Terminal demo; runs one planning pipeline from flags and prints the four sections.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"tripcrew/internal/ai"
	"tripcrew/internal/config"
	"tripcrew/internal/http/views"
	"tripcrew/internal/infra"
	"tripcrew/internal/modules/trip"
	"tripcrew/internal/service"
)

func main() {
	def := trip.DefaultPreferences()
	travelType := flag.String("type", def.TravelType, "travel type: "+strings.Join(trip.TravelTypes, ", "))
	interests := flag.String("interests", strings.Join(def.Interests, ","), "comma separated interests")
	season := flag.String("season", def.Season, "season: "+strings.Join(trip.Seasons, ", "))
	duration := flag.Int("days", def.Duration, fmt.Sprintf("trip length in days (%d-%d)", trip.MinDuration, trip.MaxDuration))
	budget := flag.String("budget", def.Budget, "budget level: "+strings.Join(trip.Budgets, ", "))
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			log.Fatalf("%v. Please set it in your environment or .env file", err)
		}
		log.Fatal(err)
	}
	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Planner.RunTimeout)
	defer cancel()

	llm, closeLLM, err := ai.NewCompleter(ctx, cfg.LLM.Provider, cfg.LLM.Options())
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer closeLLM()

	prefs := trip.NewPreferences(*travelType, strings.Split(*interests, ","), *season, *duration, *budget)
	if err := prefs.Validate(); err != nil {
		log.Fatal(err)
	}

	planner := service.NewTripPlanner(llm, nil, logger, service.PlannerOptions{
		BudgetFromItinerary: cfg.Planner.BudgetFromItinerary,
	})

	start := time.Now()
	out := planner.Run(ctx, prefs)
	for _, p := range views.Panels(out.Result) {
		fmt.Printf("\n== %s ==\n%s\n", p.Title, p.Body)
	}
	if out.Err != nil {
		fmt.Fprintf(os.Stderr, "\nAn error occurred: %v\n", out.Err)
		os.Exit(1)
	}
	fmt.Printf("\nTrip planning completed in %s. Enjoy your journey!\n", time.Since(start).Round(time.Second))
}
